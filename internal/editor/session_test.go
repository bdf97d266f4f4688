package editor

import (
	"errors"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-editor/internal/pick"
	"scene-editor/internal/scene"
)

func TestClickEmptySpaceInEmptyScene(t *testing.T) {
	g := scene.New()
	surf := newFakeSurface()
	s := NewSession(g, Options{Config: DefaultConfig(), Surface: surf, Widget: newFakeWidget()})
	defer s.Close()

	surf.aim(0)
	s.Input().PointerDown(PointerEvent{Button: ButtonPrimary})

	assert.Equal(t, 0, s.CurrentSelectionCount())
	assert.Nil(t, s.CurrentPrimary())
	assert.Equal(t, GizmoDetached, s.GizmoState())
}

func TestClickMeshSelectsAndAttaches(t *testing.T) {
	f := newFixture(t)

	f.click(0, false)

	assert.Equal(t, 1, f.s.CurrentSelectionCount())
	assert.Same(t, f.m1, f.s.CurrentPrimary())
	assert.Equal(t, GizmoAttached, f.s.GizmoState())
	assert.Same(t, f.m1, f.s.Gizmo().Node())
	require.NotNil(t, f.m1.Highlight())
	assert.Equal(t, rl.NewVector3(0.5, 0.5, 0.5), f.m1.Material.Emissive)
	assert.Equal(t, 1, outlines(f.m1))
	assert.Nil(t, f.m2.Highlight())
}

func TestModifierClickTwiceRestoresSelection(t *testing.T) {
	f := newFixture(t)

	f.click(0, false)
	f.click(3, true)
	assert.Equal(t, []scene.NodeID{f.m1.ID(), f.m2.ID()}, f.s.Selection().IDs())
	assert.Same(t, f.m2, f.s.CurrentPrimary())
	assert.Same(t, f.m2, f.s.Gizmo().Node())

	f.click(3, true)
	assert.Equal(t, []scene.NodeID{f.m1.ID()}, f.s.Selection().IDs())
	assert.Same(t, f.m1, f.s.CurrentPrimary())
	assert.Same(t, f.m1, f.s.Gizmo().Node())
	assert.Nil(t, f.m2.Highlight())
	assert.Zero(t, outlines(f.m2))
	assert.Equal(t, scene.DefaultMaterial(), f.m2.Material)
}

func TestGroupKeepsWorldTransformsAndSelection(t *testing.T) {
	f := newFixture(t)
	f.m1.Transform.Rotation = rl.QuaternionFromAxisAngle(rl.NewVector3(0, 1, 0), 0.7)
	f.m2.Transform.Scale = rl.NewVector3(2, 1, 1)
	w1 := f.g.WorldMatrix(f.m1)
	w2 := f.g.WorldMatrix(f.m2)

	f.click(0, true)
	f.click(3, true)
	g, err := f.s.GroupNodes(f.s.SelectedNodes(), "G")
	require.NoError(t, err)

	assert.Equal(t, scene.KindGroup, g.Kind)
	assert.Equal(t, "G", g.Name)
	assert.Equal(t, 2, g.ChildCount())
	assert.Same(t, g, f.m1.Parent())
	assert.Same(t, g, f.m2.Parent())
	assert.InDelta(t, 1.5, g.Transform.Position.X, 1e-5)
	assert.Equal(t, []scene.NodeID{f.m1.ID(), f.m2.ID()}, f.s.Selection().IDs())
	assertMatrixNear(t, w1, f.g.WorldMatrix(f.m1))
	assertMatrixNear(t, w2, f.g.WorldMatrix(f.m2))
}

func TestUngroupClearsSelectionAndRemovesGroup(t *testing.T) {
	f := newFixture(t)
	g, err := f.s.GroupNodes([]*scene.Node{f.m1, f.m2}, "G")
	require.NoError(t, err)
	f.s.Select(g, false)
	require.Same(t, g, f.s.CurrentPrimary())

	require.NoError(t, f.s.Ungroup())

	assert.True(t, g.Disposed())
	assert.False(t, f.g.IsAttached(g))
	assert.Same(t, f.g.Root(), f.m1.Parent())
	assert.Same(t, f.g.Root(), f.m2.Parent())
	assert.Zero(t, f.s.CurrentSelectionCount())
	assert.Equal(t, GizmoDetached, f.s.GizmoState())
	assert.Nil(t, f.m1.Highlight())
	assert.Nil(t, f.m2.Highlight())
	assert.Zero(t, outlines(f.m1))
}

func TestGroupUngroupRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.m1.Transform.Position = rl.NewVector3(-1, 2, 0.5)
	f.m1.Transform.Rotation = rl.QuaternionFromEuler(0.3, 0.2, 0.1)
	f.m2.Transform.Scale = rl.NewVector3(1, 3, 1)
	w1 := f.g.WorldMatrix(f.m1)
	w2 := f.g.WorldMatrix(f.m2)

	g, err := f.s.GroupNodes([]*scene.Node{f.m1, f.m2}, "G")
	require.NoError(t, err)
	require.NoError(t, f.s.UngroupNode(g))

	assert.Same(t, f.g.Root(), f.m1.Parent())
	assert.Same(t, f.g.Root(), f.m2.Parent())
	assertMatrixNear(t, w1, f.g.WorldMatrix(f.m1))
	assertMatrixNear(t, w2, f.g.WorldMatrix(f.m2))
}

func TestToggleTwiceReturnsToEmpty(t *testing.T) {
	f := newFixture(t)
	sel := f.s.Selection()

	sel.Toggle(f.m1)
	sel.Toggle(f.m1)

	assert.Zero(t, sel.Len())
	assert.Nil(t, f.m1.Highlight())
	assert.Equal(t, GizmoDetached, f.s.GizmoState())
}

func TestIdempotentRevertAndEvict(t *testing.T) {
	f := newFixture(t)
	f.s.Select(f.m1, false)
	before := f.m2.Material

	f.s.Highlighter().Revert(f.m2)
	assert.False(t, f.s.Selection().Evict(f.m2.ID()))

	assert.Equal(t, before, f.m2.Material)
	assert.Equal(t, []scene.NodeID{f.m1.ID()}, f.s.Selection().IDs())
	assert.NotNil(t, f.m1.Highlight())
}

func TestHighlightFollowsSelection(t *testing.T) {
	f := newFixture(t)
	m3 := addMesh(t, f.g, f.g.Root(), "M3", 6)
	meshes := []*scene.Node{f.m1, f.m2, m3}
	check := func() {
		t.Helper()
		for _, n := range meshes {
			assert.Equal(t, f.s.Selection().Contains(n.ID()), n.Highlight() != nil, n.Name)
			want := 0
			if n.Highlight() != nil {
				want = 1
			}
			assert.Equal(t, want, outlines(n), n.Name)
		}
	}

	steps := []func(){
		func() { f.click(0, false) },
		func() { f.click(3, true) },
		func() { f.click(6, true) },
		func() { f.click(3, true) },
		func() { f.click(6, false) },
		func() { f.click(50, false) },
		func() { f.click(0, true) },
		func() { f.click(50, true) },
	}
	for _, step := range steps {
		step()
		check()
	}
	assert.Equal(t, []scene.NodeID{f.m1.ID()}, f.s.Selection().IDs())
}

func TestReselectingSameNodeIsNoop(t *testing.T) {
	f := newFixture(t)
	f.click(0, false)
	overlay := f.m1.Highlight().Overlay
	var changes int
	cancel := f.s.Subscribe(func(Change) { changes++ })
	defer cancel()

	f.click(0, false)

	assert.Zero(t, changes)
	assert.Same(t, overlay, f.m1.Highlight().Overlay)
	assert.Equal(t, 1, f.widget.attaches)
}

func TestClickRouting(t *testing.T) {
	t.Run("secondary click clears even with modifier", func(t *testing.T) {
		f := newFixture(t)
		f.click(0, false)
		f.surf.aim(0)
		f.s.Input().PointerDown(PointerEvent{Button: ButtonSecondary, Modifier: true})
		assert.Zero(t, f.s.CurrentSelectionCount())
	})
	t.Run("empty click without modifier clears", func(t *testing.T) {
		f := newFixture(t)
		f.click(0, false)
		f.click(50, false)
		assert.Zero(t, f.s.CurrentSelectionCount())
	})
	t.Run("empty click with modifier keeps selection", func(t *testing.T) {
		f := newFixture(t)
		f.click(0, false)
		f.click(50, true)
		assert.Equal(t, 1, f.s.CurrentSelectionCount())
	})
	t.Run("held modifier key acts like modifier click", func(t *testing.T) {
		f := newFixture(t)
		f.click(0, false)
		f.s.Input().KeyDown(KeyModifier)
		f.click(3, false)
		f.click(50, false)
		assert.Equal(t, 2, f.s.CurrentSelectionCount())
		f.s.Input().KeyUp(KeyModifier)
		f.click(50, false)
		assert.Zero(t, f.s.CurrentSelectionCount())
	})
}

func TestChildClickResolvesToSelectableAncestor(t *testing.T) {
	f := newFixture(t)
	model := f.g.NewNode("model", scene.KindGroup)
	model.Transform.Position = rl.NewVector3(10, 0, 0)
	require.NoError(t, f.g.Add(f.g.Root(), model))
	part := addMesh(t, f.g, model, "part", 0)
	part.Tags = 0

	f.click(10, false)

	assert.Same(t, model, f.s.CurrentPrimary())
	require.NotNil(t, part.Highlight())
	assert.Equal(t, 1, outlines(part))
}

func TestSafetyGateRefusesBrokenTransform(t *testing.T) {
	f := newFixture(t)
	f.m1.Transform.Scale = rl.NewVector3(0, 0, 0)

	f.s.Select(f.m1, false)

	assert.Zero(t, f.s.CurrentSelectionCount())
	assert.Equal(t, GizmoDetached, f.s.GizmoState())
	assert.Nil(t, f.m1.Highlight())
	assert.Zero(t, outlines(f.m1))
}

func TestSafetyGateRefusesHelperTargets(t *testing.T) {
	f := newFixture(t)
	helper := f.g.NewNode("helper", scene.KindMesh)
	helper.Tags = scene.TagSelectable | scene.TagHelper
	require.NoError(t, f.g.Add(f.g.Root(), helper))

	f.s.Select(f.m1, false)
	f.s.Select(helper, false)

	assert.Zero(t, f.s.CurrentSelectionCount())
	assert.False(t, f.s.Gizmo().Attachable(helper))
	assert.False(t, f.s.Gizmo().Attachable(f.g.Root()))
}

func TestAttachFailureDegradesToNothingSelected(t *testing.T) {
	f := newFixture(t)
	f.widget.attachErr = errors.New("no gpu")

	f.click(0, false)

	assert.Zero(t, f.s.CurrentSelectionCount())
	assert.Equal(t, GizmoDetached, f.s.GizmoState())
	assert.Nil(t, f.m1.Highlight())
}

func TestDragDisablesNavigationAndCommits(t *testing.T) {
	f := newFixture(t)
	var commits []scene.NodeID
	cancel := f.g.OnTransformCommit(func(n *scene.Node) { commits = append(commits, n.ID()) })
	defer cancel()

	f.click(0, false)
	f.widget.axis = 0
	f.click(0, false)
	require.Equal(t, GizmoDragging, f.s.GizmoState())
	assert.False(t, f.surf.nav)
	assert.Equal(t, CursorMove, f.s.UI().Cursor())

	f.s.Input().PointerMove(PointerEvent{})
	f.s.Input().PointerMove(PointerEvent{})
	assert.Equal(t, []scene.NodeID{f.m1.ID(), f.m1.ID()}, commits)
	assert.InDelta(t, 0.2, f.m1.Transform.Position.X, 1e-5)

	f.release()
	assert.Equal(t, GizmoAttached, f.s.GizmoState())
	assert.True(t, f.surf.nav)
	assert.Equal(t, 1, f.widget.dragEnds)
	assert.Same(t, f.m1, f.s.CurrentPrimary())
}

func TestModeIsIndependentOfGizmoState(t *testing.T) {
	f := newFixture(t)
	var modes []Mode
	cancel := f.s.Subscribe(func(c Change) {
		if c.Kind == ChangeMode {
			modes = append(modes, c.Mode)
		}
	})
	defer cancel()

	f.s.Input().KeyDown(KeyRotate)
	assert.Equal(t, GizmoDetached, f.s.GizmoState())

	f.click(0, false)
	f.s.Input().KeyDown(KeyScale)
	assert.Equal(t, GizmoAttached, f.s.GizmoState())

	f.widget.axis = 1
	f.click(0, false)
	f.s.SetMode(ModeTranslate)
	assert.Equal(t, GizmoDragging, f.s.GizmoState())
	assert.Equal(t, []Mode{ModeRotate, ModeScale, ModeTranslate}, modes)
}

func TestSelectionChangeStream(t *testing.T) {
	f := newFixture(t)
	var last Change
	cancel := f.s.Subscribe(func(c Change) {
		if c.Kind == ChangeSelection {
			last = c
		}
	})
	defer cancel()

	f.click(0, false)
	assert.Equal(t, 1, last.Count)
	assert.Equal(t, f.m1.ID(), last.Primary)
	assert.Equal(t, GizmoAttached, last.Gizmo)

	f.click(3, true)
	assert.Equal(t, 2, last.Count)
	assert.Equal(t, f.m2.ID(), last.Primary)

	f.s.ClearSelection()
	assert.Zero(t, last.Count)
	assert.Empty(t, last.Primary)
}

func TestGroupSelectsNewGroupAndHighlightsMembers(t *testing.T) {
	f := newFixture(t)
	f.click(0, true)
	f.click(3, true)

	g, err := f.s.Group("")
	require.NoError(t, err)

	assert.Equal(t, "Group 1", g.Name)
	assert.Same(t, g, f.s.CurrentPrimary())
	require.NotNil(t, g.Highlight())
	assert.True(t, g.Highlight().Group)
	for _, m := range []*scene.Node{f.m1, f.m2} {
		rec := m.Highlight()
		require.NotNil(t, rec, m.Name)
		assert.Contains(t, rec.Holders, g.ID())
		assert.NotContains(t, rec.Holders, m.ID())
		assert.Equal(t, 1, outlines(m))
	}
	assert.Equal(t, 1, f.s.Highlighter().Active())
}

func TestMeshHeldByGroupAndDirectly(t *testing.T) {
	f := newFixture(t)
	g, err := f.s.GroupNodes([]*scene.Node{f.m1, f.m2}, "G")
	require.NoError(t, err)

	f.s.Select(g, false)
	f.s.Select(f.m1, true)
	require.Len(t, f.m1.Highlight().Holders, 2)
	assert.Equal(t, 1, outlines(f.m1))

	f.s.Select(g, true)
	assert.Equal(t, []scene.NodeID{f.m1.ID()}, f.s.Selection().IDs())
	assert.NotNil(t, f.m1.Highlight())
	assert.Nil(t, f.m2.Highlight())
	assert.Nil(t, g.Highlight())
	assert.Equal(t, 1, outlines(f.m1))
}

func TestStructuralRejections(t *testing.T) {
	f := newFixture(t)
	var advisories []string
	cancel := f.s.Subscribe(func(c Change) {
		if c.Kind == ChangeAdvisory {
			advisories = append(advisories, c.Message)
		}
	})
	defer cancel()

	f.s.Select(f.m1, false)
	_, err := f.s.Group("")
	assert.ErrorIs(t, err, ErrGroupTooFew)
	assert.Same(t, f.g.Root(), f.m1.Parent())

	child := addMesh(t, f.g, f.m1, "child", 1)
	_, err = f.s.GroupNodes([]*scene.Node{f.m1, child}, "bad")
	assert.ErrorIs(t, err, ErrNestedSelection)

	assert.ErrorIs(t, f.s.UngroupNode(f.g.Root()), ErrUngroupRoot)
	assert.ErrorIs(t, f.s.UngroupNode(f.m1), ErrNotGroup)

	empty := f.g.NewNode("empty", scene.KindGroup)
	require.NoError(t, f.g.Add(f.g.Root(), empty))
	assert.ErrorIs(t, f.s.UngroupNode(empty), ErrEmptyGroup)

	loose := f.g.NewNode("loose", scene.KindMesh)
	_, err = f.s.GroupNodes([]*scene.Node{f.m2, loose}, "bad")
	assert.ErrorIs(t, err, ErrNotAttached)

	assert.Len(t, advisories, 6)
	assert.Equal(t, []scene.NodeID{f.m1.ID()}, f.s.Selection().IDs(), "rejections leave the selection alone")
	assert.Equal(t, GizmoAttached, f.s.GizmoState())
}

func TestDeleteSelectionDestroysNodes(t *testing.T) {
	f := newFixture(t)
	f.click(0, true)
	f.click(3, true)

	f.s.Input().KeyDown(KeyDelete)

	assert.True(t, f.m1.Disposed())
	assert.True(t, f.m2.Disposed())
	assert.Zero(t, f.s.CurrentSelectionCount())
	assert.Equal(t, GizmoDetached, f.s.GizmoState())
	assert.Equal(t, 0, f.g.Root().ChildCount())
}

func TestKeyBindings(t *testing.T) {
	f := newFixture(t)
	in := f.s.Input()

	in.KeyDown(KeyRotate)
	assert.Equal(t, ModeRotate, f.s.Mode())
	in.KeyDown(KeyScale)
	assert.Equal(t, ModeScale, f.s.Mode())
	in.KeyDown(KeyTranslate)
	assert.Equal(t, ModeTranslate, f.s.Mode())

	in.KeyDown(KeyModifier)
	assert.True(t, f.s.UI().MultiSelect())
	assert.Equal(t, CursorCrosshair, f.s.UI().Cursor())
	in.KeyUp(KeyModifier)
	assert.False(t, f.s.UI().MultiSelect())
	assert.Equal(t, CursorDefault, f.s.UI().Cursor())

	f.click(0, true)
	f.click(3, true)
	in.KeyDown(KeyGroup)
	require.NotNil(t, f.s.CurrentPrimary())
	assert.Equal(t, scene.KindGroup, f.s.CurrentPrimary().Kind)

	in.KeyDown(KeyUngroup)
	assert.Zero(t, f.s.CurrentSelectionCount())
	assert.Same(t, f.g.Root(), f.m1.Parent())

	f.click(0, false)
	in.KeyDown(KeyClear)
	assert.Zero(t, f.s.CurrentSelectionCount())
}

func TestHoverCursor(t *testing.T) {
	f := newFixture(t)
	f.surf.aim(0)
	f.s.Input().PointerMove(PointerEvent{})
	assert.Equal(t, CursorPointer, f.s.UI().Cursor())

	f.surf.aim(50)
	f.s.Input().PointerMove(PointerEvent{})
	assert.Equal(t, CursorDefault, f.s.UI().Cursor())
}

func TestPostedWorkRunsOnTick(t *testing.T) {
	f := newFixture(t)
	done := make(chan struct{})
	go func() {
		f.s.Post(func() { f.s.Select(f.m2, false) })
		close(done)
	}()
	<-done
	assert.Zero(t, f.s.CurrentSelectionCount())

	f.advance(0)

	assert.Same(t, f.m2, f.s.CurrentPrimary())
}

func TestCloseTearsDownInOrder(t *testing.T) {
	f := newFixture(t)
	f.click(0, true)
	f.click(3, true)
	f.widget.axis = 0
	f.click(3, false)
	require.Equal(t, GizmoDragging, f.s.GizmoState())
	require.False(t, f.surf.nav)

	f.s.Close()

	assert.True(t, f.surf.nav, "navigation re-enabled")
	assert.True(t, f.widget.released)
	assert.Equal(t, GizmoDetached, f.s.GizmoState())
	assert.Nil(t, f.m1.Highlight())
	assert.Nil(t, f.m2.Highlight())
	assert.Zero(t, outlines(f.m1)+outlines(f.m2))
	assert.Equal(t, scene.DefaultMaterial(), f.m1.Material)
	assert.Zero(t, f.s.CurrentSelectionCount())
	assert.False(t, f.s.Monitor().Running())
	assert.True(t, f.s.Input().Closed())
	assert.True(t, f.s.Closed())

	f.click(0, false)
	assert.Zero(t, f.s.CurrentSelectionCount(), "input ignored after close")
	_, err := f.s.Group("")
	assert.ErrorIs(t, err, ErrSessionClosed)

	f.s.Close()
}

func TestTeardownFailuresForceSafeState(t *testing.T) {
	f := newFixture(t)
	f.widget.detachErr = errors.New("widget stuck")
	f.widget.releaseErr = errors.New("widget stuck")
	f.click(0, false)
	require.NoError(t, f.g.Destroy(f.m1.Highlight().Overlay))

	f.s.Close()

	assert.Equal(t, GizmoDetached, f.s.GizmoState())
	assert.Nil(t, f.m1.Highlight())
	assert.Equal(t, scene.DefaultMaterial(), f.m1.Material)
}

func TestPollModeSessionPrunesIndex(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.Config.IndexMode = pick.ModePoll })
	idx := f.s.Picker().Index()
	require.NoError(t, idx.Rebuild(f.g.Root()))
	require.True(t, idx.Contains(f.m1.ID()))

	require.NoError(t, f.g.Detach(f.m1))
	f.advance(f.s.Monitor().sweepTimer.Period())

	assert.False(t, idx.Contains(f.m1.ID()))
}

func assertMatrixNear(t *testing.T, want, got rl.Matrix) {
	t.Helper()
	w := rl.MatrixToFloat(want)
	g := rl.MatrixToFloat(got)
	for i := range w {
		assert.InDelta(t, w[i], g[i], 1e-4, "element %d", i)
	}
}
