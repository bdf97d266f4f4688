package scene

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// RootName is the name of the permanent container every graph starts with.
const RootName = "Scene"

type listener[F any] struct {
	id int
	fn F
}

// Graph owns the node hierarchy. The editor and external collaborators (AI edits, scene
// file reloads) mutate it through these methods on the UI thread; there is no lock.
//
// Nodes are indexed by id while attached. Detached or destroyed nodes drop out of the
// index but the pointers held elsewhere stay readable, which is how stale references
// are detected.
type Graph struct {
	root     *Node
	index    map[NodeID]*Node
	maxNodes int
	version  uint64

	nextListener int
	onCommit     []listener[func(*Node)]
	onStructure  []listener[func()]
}

// New returns a graph containing only the root container.
func New() *Graph {
	return NewWithLimit(DefaultMaxNodes)
}

// NewWithLimit returns a graph whose traversals stop after maxNodes nodes.
func NewWithLimit(maxNodes int) *Graph {
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}
	root := &Node{
		id:        NewNodeID(),
		Name:      RootName,
		Kind:      KindGroup,
		Transform: IdentityTransform(),
	}
	return &Graph{
		root:     root,
		index:    map[NodeID]*Node{root.id: root},
		maxNodes: maxNodes,
	}
}

// Root returns the permanent root container. It is never selectable and cannot be
// detached, destroyed or ungrouped.
func (g *Graph) Root() *Node {
	return g.root
}

// MaxNodes returns the traversal bound.
func (g *Graph) MaxNodes() int {
	return g.maxNodes
}

// Version increases on every structural change (add, detach, destroy).
func (g *Graph) Version() uint64 {
	return g.version
}

// Len returns the number of attached nodes, root included.
func (g *Graph) Len() int {
	return len(g.index)
}

// NewNode creates a detached node with a fresh id. Meshes and groups start selectable.
func (g *Graph) NewNode(name string, kind Kind) *Node {
	return g.NewNodeWithID(NewNodeID(), name, kind)
}

// NewNodeWithID is NewNode with a caller-chosen id (used when loading a scene file).
func (g *Graph) NewNodeWithID(id NodeID, name string, kind Kind) *Node {
	n := &Node{
		id:        id,
		Name:      name,
		Kind:      kind,
		Transform: IdentityTransform(),
		Material:  DefaultMaterial(),
	}
	if kind == KindMesh || kind == KindGroup {
		n.Tags = TagSelectable
	}
	if kind == KindMesh {
		n.Shape = "cube"
	}
	return n
}

// Lookup returns the attached node with the given id.
func (g *Graph) Lookup(id NodeID) (*Node, bool) {
	n, ok := g.index[id]
	return n, ok
}

// FindByName returns the first attached node with the given name in pre-order, or nil.
// Helper, outline and gizmo subtrees are skipped.
func (g *Graph) FindByName(name string) *Node {
	var found *Node
	_ = Walk(g.root, g.maxNodes, func(n *Node) bool {
		if found != nil || (n != g.root && !IsPickCandidate(n)) {
			return false
		}
		if n != g.root && n.Name == name {
			found = n
			return false
		}
		return true
	})
	return found
}

// IsAttached reports whether n has a parent path to the root.
func (g *Graph) IsAttached(n *Node) bool {
	if n == nil || n.disposed {
		return false
	}
	for steps := 0; n != nil && steps <= g.maxNodes; steps++ {
		if n == g.root {
			return true
		}
		n = n.parent
	}
	return false
}

// Add makes child the last child of parent, removing it from its previous parent in
// the same step. It refuses to create cycles or to move the root.
func (g *Graph) Add(parent, child *Node) error {
	if err := g.link(parent, child); err != nil {
		return err
	}
	g.changed()
	return nil
}

func (g *Graph) link(parent, child *Node) error {
	if parent == nil || child == nil {
		return ErrNilNode
	}
	if child == g.root {
		return ErrRootImmutable
	}
	if parent.disposed || child.disposed {
		return ErrDisposed
	}
	for p, steps := parent, 0; p != nil; p, steps = p.parent, steps+1 {
		if p == child {
			return fmt.Errorf("add %s under %s: %w", child.id, parent.id, ErrCycle)
		}
		if steps > g.maxNodes {
			return fmt.Errorf("add %s: %w", child.id, ErrTraversalBound)
		}
	}
	if old := child.parent; old != nil {
		old.removeChild(child)
	}
	child.parent = parent
	parent.children = append(parent.children, child)
	if g.IsAttached(parent) {
		return g.indexSubtree(child)
	}
	g.unindexSubtree(child)
	return nil
}

// Detach removes n (and its subtree) from the graph without destroying it. The nodes
// stay usable and can be re-added.
func (g *Graph) Detach(n *Node) error {
	if n == nil {
		return ErrNilNode
	}
	if n == g.root {
		return ErrRootImmutable
	}
	if n.parent == nil {
		return nil
	}
	n.parent.removeChild(n)
	g.unindexSubtree(n)
	g.changed()
	return nil
}

// Destroy detaches n and marks its whole subtree disposed. Disposed nodes fail
// CanTransform and IsAttached forever.
func (g *Graph) Destroy(n *Node) error {
	if n == nil {
		return ErrNilNode
	}
	if n == g.root {
		return ErrRootImmutable
	}
	if n.disposed {
		return fmt.Errorf("destroy %s: %w", n.id, ErrDisposed)
	}
	if n.parent != nil {
		n.parent.removeChild(n)
	}
	g.unindexSubtree(n)
	err := Walk(n, g.maxNodes, func(d *Node) bool {
		d.disposed = true
		return true
	})
	g.changed()
	return err
}

// Reparent moves child under newParent keeping its world transform unchanged.
func (g *Graph) Reparent(child, newParent *Node) error {
	if child == nil || newParent == nil {
		return ErrNilNode
	}
	world := g.WorldMatrix(child)
	parentWorld := g.WorldMatrix(newParent)
	local := Decompose(rl.MatrixMultiply(world, rl.MatrixInvert(parentWorld)))
	if err := g.link(newParent, child); err != nil {
		return err
	}
	child.Transform = local
	g.changed()
	return nil
}

// WorldMatrix returns the node's matrix in world space by walking up its parents.
// For a detached node this is relative to the top of its detached subtree.
func (g *Graph) WorldMatrix(n *Node) rl.Matrix {
	if n == nil {
		return rl.MatrixIdentity()
	}
	m := n.Transform.Matrix()
	for p, steps := n.parent, 0; p != nil && steps <= g.maxNodes; p, steps = p.parent, steps+1 {
		m = rl.MatrixMultiply(m, p.Transform.Matrix())
	}
	return m
}

// WorldPosition returns the node's origin in world space.
func (g *Graph) WorldPosition(n *Node) rl.Vector3 {
	return rl.Vector3Transform(rl.NewVector3(0, 0, 0), g.WorldMatrix(n))
}

// WorldTransform decomposes WorldMatrix.
func (g *Graph) WorldTransform(n *Node) Transform {
	return Decompose(g.WorldMatrix(n))
}

// CommitTransform tells transform-commit listeners that n's transform changed (e.g. so
// the persisted scene description is refreshed). It is a notification only.
func (g *Graph) CommitTransform(n *Node) {
	if n == nil {
		return
	}
	for _, l := range g.onCommit {
		l.fn(n)
	}
}

// OnTransformCommit registers fn for CommitTransform calls. The returned func unregisters it.
func (g *Graph) OnTransformCommit(fn func(n *Node)) (cancel func()) {
	id := g.nextID()
	g.onCommit = append(g.onCommit, listener[func(*Node)]{id: id, fn: fn})
	return func() {
		g.onCommit = removeListener(g.onCommit, id)
	}
}

// OnStructureChange registers fn to be called after every add, detach, reparent or destroy.
func (g *Graph) OnStructureChange(fn func()) (cancel func()) {
	id := g.nextID()
	g.onStructure = append(g.onStructure, listener[func()]{id: id, fn: fn})
	return func() {
		g.onStructure = removeListener(g.onStructure, id)
	}
}

func (g *Graph) nextID() int {
	g.nextListener++
	return g.nextListener
}

func removeListener[F any](ls []listener[F], id int) []listener[F] {
	for i, l := range ls {
		if l.id == id {
			return append(ls[:i:i], ls[i+1:]...)
		}
	}
	return ls
}

func (g *Graph) changed() {
	g.version++
	for _, l := range g.onStructure {
		l.fn()
	}
}

func (g *Graph) indexSubtree(n *Node) error {
	return Walk(n, g.maxNodes, func(d *Node) bool {
		g.index[d.id] = d
		return true
	})
}

func (g *Graph) unindexSubtree(n *Node) {
	_ = Walk(n, g.maxNodes, func(d *Node) bool {
		delete(g.index, d.id)
		return true
	})
}
