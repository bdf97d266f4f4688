package viewport

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"scene-editor/internal/primitives"
	"scene-editor/internal/scene"
)

const (
	gridExtent     = 50
	gridMinorStep  = 1
	gridMajorStep  = 10
	gridMinorAlpha = 50
	gridMajorAlpha = 120
	axisLineAlpha  = 220

	minDistance = 1
	maxDistance = 500
	maxPitch    = 89 * rl.Deg2rad
	orbitSpeed  = 0.005
	panSpeed    = 0.0015
	zoomStep    = 0.1
)

var (
	gridMinor = rl.NewColor(128, 128, 128, gridMinorAlpha)
	gridMajor = rl.NewColor(160, 160, 160, gridMajorAlpha)
	axisX     = rl.NewColor(220, 80, 80, axisLineAlpha)
	axisY     = rl.NewColor(80, 220, 80, axisLineAlpha)
	axisZ     = rl.NewColor(80, 80, 220, axisLineAlpha)
)

// Viewport owns the editor camera and draws the graph. It is the editor's render
// surface: it converts pointer positions to rays and lets the gizmo switch camera
// navigation off while a handle is dragged.
type Viewport struct {
	Camera      rl.Camera3D
	GridVisible bool

	graph  *scene.Graph
	prims  *primitives.Registry
	log    *slog.Logger
	width  int32
	height int32

	yaw, pitch, distance float32
	navigation           bool
}

// New returns a viewport looking at the origin from (10,10,10) with navigation on.
func New(g *scene.Graph, prims *primitives.Registry, log *slog.Logger) *Viewport {
	if log == nil {
		log = slog.Default()
	}
	v := &Viewport{
		GridVisible: true,
		graph:       g,
		prims:       prims,
		log:         log,
		width:       1,
		height:      1,
		navigation:  true,
	}
	v.Camera.Up = rl.NewVector3(0, 1, 0)
	v.Camera.Fovy = 45
	v.Camera.Projection = rl.CameraPerspective
	v.LookFrom(rl.NewVector3(10, 10, 10), rl.Vector3Zero())
	return v
}

// SetSize records the render target size in pixels.
func (v *Viewport) SetSize(w, h int32) {
	v.width, v.height = max(w, 1), max(h, 1)
}

// Size returns the render target size in pixels.
func (v *Viewport) Size() (int32, int32) {
	return v.width, v.height
}

// LookFrom places the camera at eye looking at target.
func (v *Viewport) LookFrom(eye, target rl.Vector3) {
	off := rl.Vector3Subtract(eye, target)
	v.distance = math32.Max(rl.Vector3Length(off), minDistance)
	v.pitch = math32.Asin(off.Y / v.distance)
	v.yaw = math32.Atan2(off.X, off.Z)
	v.Camera.Target = target
	v.place()
}

func (v *Viewport) place() {
	cp := math32.Cos(v.pitch)
	off := rl.NewVector3(cp*math32.Sin(v.yaw), math32.Sin(v.pitch), cp*math32.Cos(v.yaw))
	v.Camera.Position = rl.Vector3Add(v.Camera.Target, rl.Vector3Scale(off, v.distance))
}

// RayFromNormalized implements pick.Viewport.
func (v *Viewport) RayFromNormalized(p rl.Vector2) rl.Ray {
	px := rl.NewVector2(p.X*float32(v.width), p.Y*float32(v.height))
	return rl.GetScreenToWorldRayEx(px, v.Camera, v.width, v.height)
}

// CameraPosition returns the eye position.
func (v *Viewport) CameraPosition() rl.Vector3 {
	return v.Camera.Position
}

// SetNavigationEnabled turns orbit/pan/zoom on or off.
func (v *Viewport) SetNavigationEnabled(on bool) {
	v.navigation = on
}

// NavigationEnabled reports whether the camera follows the mouse.
func (v *Viewport) NavigationEnabled() bool {
	return v.navigation
}

// Orbit turns the camera around its target by a mouse delta in pixels.
func (v *Viewport) Orbit(dx, dy float32) {
	if !v.navigation {
		return
	}
	v.yaw -= dx * orbitSpeed
	v.pitch = math32.Max(-maxPitch, math32.Min(maxPitch, v.pitch+dy*orbitSpeed))
	v.place()
}

// Pan slides the target in the view plane by a mouse delta in pixels.
func (v *Viewport) Pan(dx, dy float32) {
	if !v.navigation {
		return
	}
	forward := rl.Vector3Normalize(rl.Vector3Subtract(v.Camera.Target, v.Camera.Position))
	right := rl.Vector3Normalize(rl.Vector3CrossProduct(forward, v.Camera.Up))
	up := rl.Vector3CrossProduct(right, forward)
	k := v.distance * panSpeed
	move := rl.Vector3Add(rl.Vector3Scale(right, -dx*k), rl.Vector3Scale(up, dy*k))
	v.Camera.Target = rl.Vector3Add(v.Camera.Target, move)
	v.place()
}

// Zoom moves the camera toward (positive wheel) or away from the target.
func (v *Viewport) Zoom(wheel float32) {
	if !v.navigation || wheel == 0 {
		return
	}
	v.distance = math32.Max(minDistance, math32.Min(maxDistance, v.distance*(1-wheel*zoomStep)))
	v.place()
}

// Distance returns the eye-target distance.
func (v *Viewport) Distance() float32 {
	return v.distance
}

// Draw renders the grid and every mesh in the graph. Call between BeginDrawing and
// EndDrawing.
func (v *Viewport) Draw() {
	eye := v.Camera.Position
	v.prims.SetView([3]float32{eye.X, eye.Y, eye.Z}, [3]float32{0.4, 1, 0.3})
	rl.BeginMode3D(v.Camera)
	if v.GridVisible {
		drawGrid()
	}
	err := scene.Walk(v.graph.Root(), v.graph.MaxNodes(), func(n *scene.Node) bool {
		if n.Disposed() {
			return false
		}
		if n.Kind == scene.KindMesh && n.CanTransform() {
			v.prims.Draw(n.Shape, v.graph.WorldMatrix(n), n.Material)
		}
		return true
	})
	rl.EndMode3D()
	if err != nil {
		v.log.Warn("draw scene", "err", err)
	}
}

func drawGrid() {
	var start, end rl.Vector3
	for i := -gridExtent; i <= gridExtent; i += gridMinorStep {
		c := gridMajor
		if i%gridMajorStep != 0 {
			c = gridMinor
		}
		start.X, start.Y, start.Z = float32(i), 0, -gridExtent
		end.X, end.Y, end.Z = float32(i), 0, gridExtent
		rl.DrawLine3D(start, end, c)
		start.X, start.Y, start.Z = -gridExtent, 0, float32(i)
		end.X, end.Y, end.Z = gridExtent, 0, float32(i)
		rl.DrawLine3D(start, end, c)
	}
	rl.DrawLine3D(rl.NewVector3(-gridExtent, 0, 0), rl.NewVector3(gridExtent, 0, 0), axisX)
	rl.DrawLine3D(rl.NewVector3(0, -gridExtent, 0), rl.NewVector3(0, gridExtent, 0), axisY)
	rl.DrawLine3D(rl.NewVector3(0, 0, -gridExtent), rl.NewVector3(0, 0, gridExtent), axisZ)
}

// Describe lists the user-visible nodes with their world positions, one per line, for
// the natural-language agent.
func (v *Viewport) Describe() string {
	var b strings.Builder
	_ = scene.Walk(v.graph.Root(), v.graph.MaxNodes(), func(n *scene.Node) bool {
		if !scene.IsPickCandidate(n) {
			return false
		}
		if n == v.graph.Root() {
			return true
		}
		p := v.graph.WorldPosition(n)
		what := n.Kind.String()
		if n.Kind == scene.KindMesh {
			what = n.Shape
		}
		fmt.Fprintf(&b, "%s (%s) at (%.2f, %.2f, %.2f)", n.Name, what, p.X, p.Y, p.Z)
		if pn := n.Parent(); pn != nil && pn != v.graph.Root() {
			fmt.Fprintf(&b, " in %s", pn.Name)
		}
		b.WriteByte('\n')
		return true
	})
	return b.String()
}
