package editor

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-editor/internal/pick"
	"scene-editor/internal/scene"
)

func TestDetachedSelectionEvictedWithinOneSweep(t *testing.T) {
	f := newFixture(t)
	f.click(0, true)
	f.click(3, true)
	require.Same(t, f.m2, f.s.Gizmo().Node())
	overlay := f.m2.Highlight().Overlay

	require.NoError(t, f.g.Detach(f.m2))
	f.advance(100 * time.Millisecond)
	assert.Equal(t, 2, f.s.CurrentSelectionCount(), "nothing happens before the sweep is due")

	f.advance(400 * time.Millisecond)

	assert.Equal(t, 1, f.s.CurrentSelectionCount())
	assert.Same(t, f.m1, f.s.CurrentPrimary())
	assert.Same(t, f.m1, f.s.Gizmo().Node(), "gizmo moves to the new primary")
	assert.Nil(t, f.m2.Highlight())
	assert.True(t, overlay.Disposed())
}

func TestSweepDetachesGizmoFromStaleNode(t *testing.T) {
	f := newFixture(t)
	f.click(0, false)
	f.m1.Transform.Position.X = float32(math.NaN())

	res := f.s.Monitor().Sweep()

	assert.Equal(t, 1, res.Evicted)
	assert.Zero(t, f.s.CurrentSelectionCount())
	assert.Equal(t, GizmoDetached, f.s.GizmoState())
	assert.Nil(t, f.m1.Highlight())
}

func TestSweepForcesDetachWhenOnlyGizmoIsStale(t *testing.T) {
	f := newFixture(t)
	f.click(0, false)
	// Forget the selection behind the monitor's back; the gizmo still points at m1.
	f.s.Selection().reset()
	require.NoError(t, f.g.Destroy(f.m1))

	res := f.s.Monitor().Sweep()

	assert.Zero(t, res.Evicted)
	assert.True(t, res.Detached)
	assert.Equal(t, GizmoDetached, f.s.GizmoState())
}

func TestSweepWaitsForDragToEnd(t *testing.T) {
	f := newFixture(t)
	f.click(0, false)
	f.widget.axis = 0
	f.click(0, false)
	require.Equal(t, GizmoDragging, f.s.GizmoState())

	require.NoError(t, f.g.Detach(f.m1))
	f.advance(time.Second)

	assert.True(t, f.s.Monitor().Pending())
	assert.Equal(t, GizmoDragging, f.s.GizmoState())
	assert.Equal(t, 1, f.s.CurrentSelectionCount())
	assert.False(t, f.surf.nav)

	f.release()

	assert.False(t, f.s.Monitor().Pending())
	assert.Zero(t, f.s.CurrentSelectionCount())
	assert.Equal(t, GizmoDetached, f.s.GizmoState())
	assert.True(t, f.surf.nav)
}

func TestDragOnInvalidNodeDetachesAndClears(t *testing.T) {
	f := newFixture(t)
	f.click(0, false)
	f.widget.axis = 0
	f.click(0, false)
	require.Equal(t, GizmoDragging, f.s.GizmoState())

	require.NoError(t, f.g.Destroy(f.m1))
	f.s.Input().PointerMove(PointerEvent{})

	assert.Equal(t, GizmoDetached, f.s.GizmoState())
	assert.Zero(t, f.s.CurrentSelectionCount())
	assert.True(t, f.surf.nav)
	assert.Zero(t, f.widget.drags)
}

func TestSweepFollowsGroupMembership(t *testing.T) {
	f := newFixture(t)
	g, err := f.s.GroupNodes([]*scene.Node{f.m1, f.m2}, "G")
	require.NoError(t, err)
	require.Same(t, g, f.s.CurrentPrimary())

	require.NoError(t, f.g.Reparent(f.m1, f.g.Root()))
	m3 := addMesh(t, f.g, g, "M3", 6)

	res := f.s.Monitor().Sweep()

	assert.Equal(t, 2, res.Regroup)
	assert.Nil(t, f.m1.Highlight())
	assert.Zero(t, outlines(f.m1))
	assert.Equal(t, scene.DefaultMaterial(), f.m1.Material)
	require.NotNil(t, m3.Highlight())
	assert.Contains(t, m3.Highlight().Holders, g.ID())
	assert.Equal(t, 1, outlines(m3))
	require.NotNil(t, f.m2.Highlight())

	f.s.ClearSelection()
	assert.Nil(t, m3.Highlight())
	assert.Nil(t, f.m2.Highlight())
	assert.Equal(t, scene.DefaultMaterial(), m3.Material)
}

func TestIndexTickWithoutGizmo(t *testing.T) {
	g := scene.New()
	addMesh(t, g, g.Root(), "m", 0)
	idx := pick.NewIndex(g)
	idx.SetMode(pick.ModePoll)
	defer idx.Close()
	sel := NewSelectionManager(g, nil, nil, nil, nil)
	m := NewConsistencyMonitor(g, sel, nil, idx, time.Second, 100*time.Millisecond, nil)

	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.Start(t0)
	assert.NotPanics(t, func() { m.Tick(t0.Add(200 * time.Millisecond)) })
	assert.Equal(t, 1, idx.Len())
}

func TestSweepOnEmptySelection(t *testing.T) {
	f := newFixture(t)

	res := f.s.Monitor().Sweep()

	assert.Equal(t, SweepResult{}, res)
	assert.Equal(t, GizmoDetached, f.s.GizmoState())
}

func TestTickerFiresOncePerPeriod(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tk := NewTicker(time.Second)
	assert.False(t, tk.Due(t0.Add(time.Hour)), "stopped ticker never fires")

	tk.Start(t0)
	assert.False(t, tk.Due(t0.Add(999*time.Millisecond)))
	assert.True(t, tk.Due(t0.Add(time.Second)))
	assert.False(t, tk.Due(t0.Add(1500*time.Millisecond)))
	assert.True(t, tk.Due(t0.Add(5*time.Second)), "missed periods collapse into one tick")
	assert.False(t, tk.Due(t0.Add(5500*time.Millisecond)))

	tk.Stop()
	assert.False(t, tk.Due(t0.Add(time.Hour)))

	zero := NewTicker(0)
	zero.Start(t0)
	assert.False(t, zero.Running())
}

func TestMailboxDrainsInOrder(t *testing.T) {
	var mb Mailbox
	var got []int
	mb.Post(func() { got = append(got, 1) })
	mb.Post(nil)
	mb.Post(func() {
		got = append(got, 2)
		mb.Post(func() { got = append(got, 3) })
	})
	require.Equal(t, 2, mb.Len())

	assert.Equal(t, 2, mb.Drain())
	assert.Equal(t, []int{1, 2}, got)
	assert.Equal(t, 1, mb.Drain())
	assert.Equal(t, []int{1, 2, 3}, got)
}

var (
	_ Surface = (*fakeSurface)(nil)
	_ Widget  = (*fakeWidget)(nil)
	_ Widget  = (*TransformWidget)(nil)
)
