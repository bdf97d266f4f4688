package scene

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/google/uuid"
)

// NodeID is the stable identity of a node. It survives re-parenting and is what the
// editor keeps in its selection state; the node pointer itself belongs to the graph.
type NodeID string

// NewNodeID returns a fresh random id.
func NewNodeID() NodeID {
	return NodeID(uuid.NewString())
}

// Kind is the structural role of a node.
type Kind uint8

const (
	KindMesh Kind = iota
	KindGroup
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindMesh:
		return "mesh"
	case KindGroup:
		return "group"
	default:
		return "other"
	}
}

// ParseKind is the inverse of Kind.String. Unknown names map to KindOther.
func ParseKind(s string) Kind {
	switch s {
	case "mesh":
		return KindMesh
	case "group":
		return KindGroup
	default:
		return KindOther
	}
}

// MaterialModel decides how a material is brightened when highlighted.
type MaterialModel uint8

const (
	// MaterialBasic is unlit; highlighting nudges Color toward white.
	MaterialBasic MaterialModel = iota
	// MaterialStandard is lit; highlighting overrides Emissive.
	MaterialStandard
)

// Material is the per-node surface state the renderer reads. Color channels are 0..1.
type Material struct {
	Model     MaterialModel
	Color     rl.Vector4
	Emissive  rl.Vector3
	Wireframe bool
}

// DefaultMaterial is the mid-gray lit material used for new meshes.
func DefaultMaterial() Material {
	return Material{
		Model: MaterialStandard,
		Color: rl.NewVector4(0.5, 0.5, 0.5, 1),
	}
}

// Highlight is the record attached to a highlighted node. Saved is the material as it
// was before highlighting; Overlay is the generated outline child (nil for groups).
// Holders lists who asked for the highlight: the node itself and/or highlighted
// ancestor groups. The record is removed when the last holder releases it. Members is
// set on group records: the meshes that were given a record on the group's behalf.
type Highlight struct {
	Saved   Material
	Overlay *Node
	Group   bool
	Holders map[NodeID]struct{}
	Members []*Node
}

// Node is one element of the scene graph. Parent and children are managed by Graph;
// callers read them through Parent and Children.
type Node struct {
	id        NodeID
	Name      string
	Kind      Kind
	Shape     string // primitive shape for meshes: cube, sphere, cylinder, plane
	Tags      Tags
	Transform Transform
	Material  Material

	parent    *Node
	children  []*Node
	disposed  bool
	highlight *Highlight
}

// ID returns the node's stable id.
func (n *Node) ID() NodeID {
	return n.id
}

// Parent returns the current parent, or nil for the root and detached nodes.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns a copy of the ordered child list.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// Disposed reports whether the node was destroyed.
func (n *Node) Disposed() bool {
	return n.disposed
}

// CanTransform reports whether the node still exposes a usable transform: it has not
// been destroyed and its transform is finite with non-zero scale.
func (n *Node) CanTransform() bool {
	return n != nil && !n.disposed && n.Transform.Valid()
}

// Highlight returns the node's highlight record, or nil.
func (n *Node) Highlight() *Highlight {
	return n.highlight
}

// SetHighlight replaces the node's highlight record. Pass nil to clear it.
func (n *Node) SetHighlight(h *Highlight) {
	n.highlight = h
}

func (n *Node) removeChild(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}
