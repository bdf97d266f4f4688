// Package scenefile persists the scene graph as YAML and applies externally edited
// versions of that file back onto a live graph.
package scenefile

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"scene-editor/internal/scene"
)

// FormatVersion is written into every document.
const FormatVersion = 1

// Document is the persisted scene: the root's children, recursively.
type Document struct {
	Version int       `yaml:"version"`
	Nodes   []NodeDoc `yaml:"nodes" validate:"dive"`
}

// NodeDoc is one persisted node.
type NodeDoc struct {
	ID       string     `yaml:"id" validate:"required"`
	Name     string     `yaml:"name"`
	Kind     string     `yaml:"kind" validate:"oneof=mesh group other"`
	Shape    string     `yaml:"shape,omitempty" validate:"omitempty,oneof=cube sphere cylinder plane"`
	Locked   bool       `yaml:"locked,omitempty"`
	Material string     `yaml:"material,omitempty" validate:"omitempty,oneof=basic standard"`
	Position [3]float32 `yaml:"position,flow"`
	Rotation [4]float32 `yaml:"rotation,flow"`
	Scale    [3]float32 `yaml:"scale,flow"`
	Color    [4]float32 `yaml:"color,flow"`
	Children []NodeDoc  `yaml:"children,omitempty" validate:"dive"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Snapshot captures g as a document. Helper, outline and gizmo subtrees are editor
// state and are left out.
func Snapshot(g *scene.Graph) Document {
	doc := Document{Version: FormatVersion}
	for _, c := range g.Root().Children() {
		if scene.IsPickCandidate(c) && !c.Disposed() {
			doc.Nodes = append(doc.Nodes, snapshotNode(c))
		}
	}
	return doc
}

func snapshotNode(n *scene.Node) NodeDoc {
	t := n.Transform
	m := n.Material
	if h := n.Highlight(); h != nil && !h.Group {
		m = h.Saved
	}
	d := NodeDoc{
		ID:       string(n.ID()),
		Name:     n.Name,
		Kind:     n.Kind.String(),
		Locked:   !n.Tags.Has(scene.TagSelectable),
		Position: [3]float32{t.Position.X, t.Position.Y, t.Position.Z},
		Rotation: [4]float32{t.Rotation.X, t.Rotation.Y, t.Rotation.Z, t.Rotation.W},
		Scale:    [3]float32{t.Scale.X, t.Scale.Y, t.Scale.Z},
		Color:    [4]float32{m.Color.X, m.Color.Y, m.Color.Z, m.Color.W},
	}
	if n.Kind == scene.KindMesh {
		d.Shape = n.Shape
		d.Material = "standard"
		if m.Model == scene.MaterialBasic {
			d.Material = "basic"
		}
	}
	for _, c := range n.Children() {
		if scene.IsPickCandidate(c) && !c.Disposed() {
			d.Children = append(d.Children, snapshotNode(c))
		}
	}
	return d
}

// Encode renders doc as YAML.
func Encode(doc Document) ([]byte, error) {
	return yaml.Marshal(doc)
}

// Decode parses and validates a document. Ids must be unique across the whole tree.
func Decode(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parse scene: %w", err)
	}
	if err := validate.Struct(doc); err != nil {
		return Document{}, fmt.Errorf("validate scene: %w", err)
	}
	seen := make(map[string]struct{})
	var dup string
	walkDocs(doc.Nodes, func(d *NodeDoc) {
		if _, ok := seen[d.ID]; ok && dup == "" {
			dup = d.ID
		}
		seen[d.ID] = struct{}{}
	})
	if dup != "" {
		return Document{}, fmt.Errorf("validate scene: duplicate id %q", dup)
	}
	return doc, nil
}

func walkDocs(docs []NodeDoc, fn func(d *NodeDoc)) {
	for i := range docs {
		fn(&docs[i])
		walkDocs(docs[i].Children, fn)
	}
}

// apply copies d's fields onto n. A highlighted node gets the new material in its saved
// slot so releasing the highlight restores the file's look.
func apply(n *scene.Node, d *NodeDoc) {
	n.Name = d.Name
	n.Kind = scene.ParseKind(d.Kind)
	n.Tags = n.Tags.Without(scene.TagSelectable)
	if !d.Locked {
		n.Tags = n.Tags.With(scene.TagSelectable)
	}
	n.Shape = d.Shape
	if n.Kind == scene.KindMesh && n.Shape == "" {
		n.Shape = "cube"
	}
	n.Transform = scene.Transform{
		Position: rl.NewVector3(d.Position[0], d.Position[1], d.Position[2]),
		Rotation: rl.NewQuaternion(d.Rotation[0], d.Rotation[1], d.Rotation[2], d.Rotation[3]),
		Scale:    rl.NewVector3(d.Scale[0], d.Scale[1], d.Scale[2]),
	}
	if d.Rotation == [4]float32{} {
		n.Transform.Rotation = rl.QuaternionIdentity()
	}
	// Hand-written files may leave these out.
	if d.Scale == [3]float32{} {
		n.Transform.Scale = rl.NewVector3(1, 1, 1)
	}
	m := &n.Material
	if h := n.Highlight(); h != nil && !h.Group {
		m = &h.Saved
	}
	m.Color = rl.NewVector4(d.Color[0], d.Color[1], d.Color[2], d.Color[3])
	if d.Color == [4]float32{} {
		m.Color = scene.DefaultMaterial().Color
	}
	m.Model = scene.MaterialStandard
	if d.Material == "basic" {
		m.Model = scene.MaterialBasic
	}
}
