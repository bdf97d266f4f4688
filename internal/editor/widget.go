package editor

import (
	"fmt"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"scene-editor/internal/scene"
)

const (
	handleLength    float32 = 2.0
	handleHitDist   float32 = 0.3
	handleThickness float32 = 0.06
	ringHitDist     float32 = 0.4
	rotateDegrees   float32 = 45 // per unit of drag along the axis
	minScaleFactor  float32 = 0.1
)

var handleAxes = [3]rl.Vector3{
	{X: 1, Y: 0, Z: 0},
	{X: 0, Y: 1, Z: 0},
	{X: 0, Y: 0, Z: 1},
}

var handleColors = [3]rl.Vector4{
	{X: 0.9, Y: 0.2, Z: 0.2, W: 1},
	{X: 0.2, Y: 0.85, Z: 0.3, W: 1},
	{X: 0.25, Y: 0.4, Z: 0.95, W: 1},
}

// TransformWidget is the three-axis manipulator. Its handles are real scene nodes under
// the root, tagged gizmoInternal so picking skips them.
type TransformWidget struct {
	graph   *scene.Graph
	root    *scene.Node
	handles [3]*scene.Node
	target  *scene.Node

	dragAxis   int
	dragNormal rl.Vector3
	dragStart  float32
	initWorld  rl.Vector3
	initLocal  scene.Transform
	released   bool
}

// NewTransformWidget returns a widget for g. Handle nodes are created on first attach.
func NewTransformWidget(g *scene.Graph) *TransformWidget {
	return &TransformWidget{graph: g, dragAxis: -1}
}

// Root returns the handle container, or nil before the first attach.
func (w *TransformWidget) Root() *scene.Node {
	return w.root
}

// Target returns the node the widget is attached to.
func (w *TransformWidget) Target() *scene.Node {
	return w.target
}

// Handles returns the axis handle nodes (nil before the first attach).
func (w *TransformWidget) Handles() [3]*scene.Node {
	return w.handles
}

// ActiveAxis returns the axis being dragged, or -1.
func (w *TransformWidget) ActiveAxis() int {
	return w.dragAxis
}

func (w *TransformWidget) Attach(n *scene.Node) error {
	if w.released {
		return fmt.Errorf("attach %s: widget released", n.ID())
	}
	// Rebuild if something outside the widget destroyed the handles.
	if w.root == nil || w.root.Disposed() {
		w.build()
	}
	if w.root.Parent() == nil {
		if err := w.graph.Add(w.graph.Root(), w.root); err != nil {
			return fmt.Errorf("attach %s: %w", n.ID(), err)
		}
	}
	w.target = n
	w.dragAxis = -1
	w.Sync()
	return nil
}

func (w *TransformWidget) Detach() error {
	w.target = nil
	w.dragAxis = -1
	if w.root == nil || w.root.Parent() == nil {
		return nil
	}
	return w.graph.Detach(w.root)
}

func (w *TransformWidget) Release() error {
	if w.released {
		return nil
	}
	w.released = true
	w.target = nil
	if w.root == nil || w.root.Disposed() {
		return nil
	}
	return w.graph.Destroy(w.root)
}

func (w *TransformWidget) Sync() {
	if w.root == nil || w.target == nil {
		return
	}
	w.root.Transform.Position = w.graph.WorldPosition(w.target)
}

func (w *TransformWidget) HitAxis(ray rl.Ray, mode Mode) int {
	if w.target == nil {
		return -1
	}
	center := w.graph.WorldPosition(w.target)
	best := float32(999)
	axis := -1
	if mode == ModeRotate {
		radius := handleLength * 0.8
		for i, normal := range handleAxes {
			pt, ok := rayPlane(ray, center, normal)
			if !ok {
				continue
			}
			d := math32.Abs(rl.Vector3Length(rl.Vector3Subtract(pt, center)) - radius)
			if d < ringHitDist && d < best {
				best, axis = d, i
			}
		}
		return axis
	}
	for i, dir := range handleAxes {
		_, t, d := closestBetweenRays(ray.Position, ray.Direction, center, dir)
		if t > 0 && t < handleLength && d < handleHitDist && d < best {
			best, axis = d, i
		}
	}
	return axis
}

func (w *TransformWidget) BeginDrag(axis int, ray rl.Ray, eye rl.Vector3) {
	if w.target == nil || axis < 0 || axis >= len(handleAxes) {
		return
	}
	dir := handleAxes[axis]
	w.dragAxis = axis
	w.initWorld = w.graph.WorldPosition(w.target)
	w.initLocal = w.target.Transform

	view := rl.Vector3Normalize(rl.Vector3Subtract(w.initWorld, eye))
	w.dragNormal = rl.Vector3Normalize(rl.Vector3CrossProduct(dir, rl.Vector3CrossProduct(view, dir)))
	w.dragStart = 0
	if pt, ok := rayPlane(ray, w.initWorld, w.dragNormal); ok {
		w.dragStart = rl.Vector3DotProduct(rl.Vector3Subtract(pt, w.initWorld), dir)
	}
}

func (w *TransformWidget) Drag(ray rl.Ray, mode Mode) bool {
	if w.target == nil || w.dragAxis < 0 {
		return false
	}
	pt, ok := rayPlane(ray, w.initWorld, w.dragNormal)
	if !ok {
		return false
	}
	dir := handleAxes[w.dragAxis]
	delta := rl.Vector3DotProduct(rl.Vector3Subtract(pt, w.initWorld), dir) - w.dragStart

	t := w.initLocal
	switch mode {
	case ModeTranslate:
		world := rl.Vector3Add(w.initWorld, rl.Vector3Scale(dir, delta))
		t.Position = w.toParentSpace(world)
	case ModeRotate:
		spin := rl.QuaternionFromAxisAngle(dir, delta*rotateDegrees*rl.Deg2rad)
		t.Rotation = rl.QuaternionNormalize(rl.QuaternionMultiply(spin, w.initLocal.Rotation))
	case ModeScale:
		f := math32.Max(minScaleFactor, 1+delta*0.5)
		switch w.dragAxis {
		case 0:
			t.Scale.X *= f
		case 1:
			t.Scale.Y *= f
		case 2:
			t.Scale.Z *= f
		}
	}
	if t == w.target.Transform {
		return false
	}
	w.target.Transform = t
	w.Sync()
	return true
}

// EndDrag forgets the active axis.
func (w *TransformWidget) EndDrag() {
	w.dragAxis = -1
}

func (w *TransformWidget) toParentSpace(world rl.Vector3) rl.Vector3 {
	p := w.target.Parent()
	if p == nil {
		return world
	}
	return rl.Vector3Transform(world, rl.MatrixInvert(w.graph.WorldMatrix(p)))
}

func (w *TransformWidget) build() {
	w.root = w.graph.NewNode("gizmo", scene.KindGroup)
	w.root.Tags = scene.TagGizmoInternal | scene.TagHelper
	for i, dir := range handleAxes {
		h := w.graph.NewNode(fmt.Sprintf("gizmo.axis%d", i), scene.KindMesh)
		h.Tags = scene.TagGizmoInternal | scene.TagHelper
		h.Shape = "cube"
		h.Material = scene.Material{Model: scene.MaterialBasic, Color: handleColors[i]}
		half := rl.Vector3Scale(dir, handleLength/2)
		h.Transform.Position = half
		h.Transform.Scale = rl.Vector3Add(
			rl.Vector3Scale(dir, handleLength-handleThickness),
			rl.NewVector3(handleThickness, handleThickness, handleThickness),
		)
		w.handles[i] = h
		// Both nodes are fresh and detached, so linking cannot fail.
		_ = w.graph.Add(w.root, h)
	}
}

// closestBetweenRays returns the parameters of the closest approach between the rays
// a+t1*u and b+t2*v and the distance at that approach.
func closestBetweenRays(a, u, b, v rl.Vector3) (t1, t2, dist float32) {
	r := rl.Vector3Subtract(a, b)
	uu := rl.Vector3DotProduct(u, u)
	uv := rl.Vector3DotProduct(u, v)
	vv := rl.Vector3DotProduct(v, v)
	ur := rl.Vector3DotProduct(u, r)
	vr := rl.Vector3DotProduct(v, r)

	denom := uu*vv - uv*uv
	if denom < 1e-6 {
		return 0, 0, 999
	}
	t1 = (uv*vr - vv*ur) / denom
	t2 = (uu*vr - uv*ur) / denom
	p1 := rl.Vector3Add(a, rl.Vector3Scale(u, t1))
	p2 := rl.Vector3Add(b, rl.Vector3Scale(v, t2))
	return t1, t2, rl.Vector3Length(rl.Vector3Subtract(p1, p2))
}

func rayPlane(ray rl.Ray, point, normal rl.Vector3) (rl.Vector3, bool) {
	denom := rl.Vector3DotProduct(ray.Direction, normal)
	if math32.Abs(denom) < 1e-6 {
		return rl.Vector3{}, false
	}
	t := rl.Vector3DotProduct(rl.Vector3Subtract(point, ray.Position), normal) / denom
	if t < 0 {
		return rl.Vector3{}, false
	}
	return rl.Vector3Add(ray.Position, rl.Vector3Scale(ray.Direction, t)), true
}
