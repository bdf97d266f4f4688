package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"scene-editor/internal/scene"
)

// Inspector is the right-side panel describing the primary selection.
type Inspector struct {
	panel    *Node
	title    *Node
	name     *Node
	kind     *Node
	position *Node
	rotation *Node
	scale    *Node
	count    *Node
}

// NewInspector creates the inspector nodes (.inspector, .inspector-title, .inspector-row).
func NewInspector() *Inspector {
	row := func(id string) *Node { return NewNode("label", "inspector-row", id, "") }
	return &Inspector{
		panel:    NewNode("panel", "inspector", "inspector", ""),
		title:    NewNode("label", "inspector-title", "inspector-title", "Inspector"),
		name:     row("inspector-name"),
		kind:     row("inspector-kind"),
		position: row("inspector-position"),
		rotation: row("inspector-rotation"),
		scale:    row("inspector-scale"),
		count:    row("inspector-count"),
	}
}

// Selection is what the inspector shows. Rotation is Euler angles in degrees.
type Selection struct {
	Name     string
	Kind     string
	Children int
	Position rl.Vector3
	Rotation rl.Vector3
	Scale    rl.Vector3
	Count    int
}

// Inspect describes n with world position, local rotation and local scale.
func Inspect(g *scene.Graph, n *scene.Node, count int) Selection {
	euler := rl.QuaternionToEuler(n.Transform.Rotation)
	return Selection{
		Name:     n.Name,
		Kind:     n.Kind.String(),
		Children: n.ChildCount(),
		Position: g.WorldPosition(n),
		Rotation: rl.Vector3Scale(euler, rl.Rad2deg),
		Scale:    n.Transform.Scale,
		Count:    count,
	}
}

// AppendNodes appends the inspector nodes to dst when visible, after updating their text.
func (in *Inspector) AppendNodes(dst []*Node, visible bool, sel Selection) []*Node {
	if !visible {
		return dst
	}
	in.name.Text = "Name: " + sel.Name
	in.kind.Text = "Kind: " + sel.Kind
	if sel.Kind == scene.KindGroup.String() {
		in.kind.Text = fmt.Sprintf("Kind: group (%d children)", sel.Children)
	}
	in.position.Text = fmt.Sprintf("Position: %.2f, %.2f, %.2f", sel.Position.X, sel.Position.Y, sel.Position.Z)
	in.rotation.Text = fmt.Sprintf("Rotation: %.1f, %.1f, %.1f", sel.Rotation.X, sel.Rotation.Y, sel.Rotation.Z)
	in.scale.Text = fmt.Sprintf("Scale: %.2f, %.2f, %.2f", sel.Scale.X, sel.Scale.Y, sel.Scale.Z)
	in.count.Text = fmt.Sprintf("Selected: %d", sel.Count)
	return append(dst, in.panel, in.title, in.name, in.kind, in.position, in.rotation, in.scale, in.count)
}
