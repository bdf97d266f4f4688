package editor

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"scene-editor/internal/primitives"
	"scene-editor/internal/scene"
)

// MeshSpec describes a mesh to add under the scene root. Zero Scale means unit scale and
// a zero Color keeps the default material.
type MeshSpec struct {
	Name     string
	Shape    string
	Position rl.Vector3
	Scale    rl.Vector3
	Color    rl.Vector4
}

// Spawn adds a mesh under the scene root. An empty name picks "<shape> N".
func (s *Session) Spawn(spec MeshSpec) (*scene.Node, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	if spec.Shape == "" {
		spec.Shape = "cube"
	}
	if !primitives.Known(spec.Shape) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownShape, spec.Shape)
	}
	if spec.Name == "" {
		s.spawnSeq++
		spec.Name = fmt.Sprintf("%s %d", spec.Shape, s.spawnSeq)
	}
	n := s.graph.NewNode(spec.Name, scene.KindMesh)
	n.Shape = spec.Shape
	n.Transform.Position = spec.Position
	if spec.Scale != (rl.Vector3{}) {
		n.Transform.Scale = spec.Scale
	}
	if spec.Color != (rl.Vector4{}) {
		n.Material.Color = spec.Color
	}
	if err := s.graph.Add(s.graph.Root(), n); err != nil {
		return nil, err
	}
	return n, nil
}

// MoveTo places n at the world position pos and commits the change.
func (s *Session) MoveTo(n *scene.Node, pos rl.Vector3) error {
	if s.closed {
		return ErrSessionClosed
	}
	if !s.graph.IsAttached(n) || n == s.graph.Root() || !n.CanTransform() {
		return ErrNotAttached
	}
	if !scene.IsPickCandidate(n) {
		return fmt.Errorf("move %s: %w", n.ID(), ErrEditorOwned)
	}
	if p := n.Parent(); p != nil && p != s.graph.Root() {
		pos = rl.Vector3Transform(pos, rl.MatrixInvert(s.graph.WorldMatrix(p)))
	}
	n.Transform.Position = pos
	s.graph.CommitTransform(n)
	return nil
}

// Destroy removes n from the graph like any external edit would. The selection and
// gizmo catch up on the next sweep. Editor-owned nodes are refused.
func (s *Session) Destroy(n *scene.Node) error {
	if s.closed {
		return ErrSessionClosed
	}
	if n != nil && !scene.IsPickCandidate(n) {
		return fmt.Errorf("destroy %s: %w", n.ID(), ErrEditorOwned)
	}
	return s.graph.Destroy(n)
}
