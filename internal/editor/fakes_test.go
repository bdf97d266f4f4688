package editor

import (
	"testing"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/require"

	"scene-editor/internal/scene"
)

type fakeSurface struct {
	ray      rl.Ray
	eye      rl.Vector3
	nav      bool
	navCalls int
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{nav: true, eye: rl.NewVector3(0, 0, 10)}
}

func (f *fakeSurface) RayFromNormalized(rl.Vector2) rl.Ray { return f.ray }
func (f *fakeSurface) CameraPosition() rl.Vector3 { return f.eye }

func (f *fakeSurface) SetNavigationEnabled(on bool) {
	f.nav = on
	f.navCalls++
}

// aim points the next ray straight down -Z through (x, 0).
func (f *fakeSurface) aim(x float32) {
	f.ray = rl.NewRay(rl.NewVector3(x, 0, 10), rl.NewVector3(0, 0, -1))
}

type fakeWidget struct {
	axis       int
	target     *scene.Node
	attachErr  error
	detachErr  error
	releaseErr error
	attaches   int
	detaches   int
	released   bool
	drags      int
	dragEnds   int
}

func newFakeWidget() *fakeWidget {
	return &fakeWidget{axis: -1}
}

func (w *fakeWidget) Attach(n *scene.Node) error {
	if w.attachErr != nil {
		return w.attachErr
	}
	w.attaches++
	w.target = n
	return nil
}

func (w *fakeWidget) Detach() error {
	w.detaches++
	w.target = nil
	return w.detachErr
}

func (w *fakeWidget) Release() error {
	w.released = true
	return w.releaseErr
}

func (w *fakeWidget) HitAxis(rl.Ray, Mode) int {
	if w.target == nil {
		return -1
	}
	return w.axis
}

func (w *fakeWidget) BeginDrag(int, rl.Ray, rl.Vector3) {}

func (w *fakeWidget) Drag(rl.Ray, Mode) bool {
	w.drags++
	w.target.Transform.Position.X += 0.1
	return true
}

func (w *fakeWidget) EndDrag() { w.dragEnds++ }
func (w *fakeWidget) Sync() {}

type fixture struct {
	s      *Session
	g      *scene.Graph
	surf   *fakeSurface
	widget *fakeWidget
	m1, m2 *scene.Node
	now    time.Time
}

func newFixture(t *testing.T, tweak ...func(*Options)) *fixture {
	t.Helper()
	g := scene.New()
	f := &fixture{
		g:      g,
		surf:   newFakeSurface(),
		widget: newFakeWidget(),
		now:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	f.m1 = addMesh(t, g, g.Root(), "M1", 0)
	f.m2 = addMesh(t, g, g.Root(), "M2", 3)

	opts := Options{
		Config:  DefaultConfig(),
		Surface: f.surf,
		Widget:  f.widget,
		Now:     f.now,
	}
	for _, fn := range tweak {
		fn(&opts)
	}
	f.s = NewSession(g, opts)
	t.Cleanup(f.s.Close)
	return f
}

func addMesh(t *testing.T, g *scene.Graph, parent *scene.Node, name string, x float32) *scene.Node {
	t.Helper()
	n := g.NewNode(name, scene.KindMesh)
	n.Transform.Position = rl.NewVector3(x, 0, 0)
	require.NoError(t, g.Add(parent, n))
	return n
}

func (f *fixture) click(x float32, modifier bool) {
	f.surf.aim(x)
	f.s.Input().PointerDown(PointerEvent{Button: ButtonPrimary, Modifier: modifier})
}

func (f *fixture) release() {
	f.s.Input().PointerUp(PointerEvent{Button: ButtonPrimary})
}

// advance moves the clock forward by d and ticks the session.
func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
	f.s.Tick(f.now)
}

func outlines(n *scene.Node) int {
	count := 0
	for _, c := range n.Children() {
		if scene.IsOutline(c) {
			count++
		}
	}
	return count
}
