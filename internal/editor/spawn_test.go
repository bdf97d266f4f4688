package editor

import (
	"testing"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-editor/internal/scene"
)

func TestSpawnAddsMeshUnderRoot(t *testing.T) {
	f := newFixture(t)

	n, err := f.s.Spawn(MeshSpec{Shape: "sphere", Position: rl.NewVector3(1, 2, 3)})
	require.NoError(t, err)
	assert.Equal(t, "sphere 1", n.Name)
	assert.Equal(t, f.g.Root(), n.Parent())
	assert.Equal(t, rl.NewVector3(1, 1, 1), n.Transform.Scale)
	assert.True(t, f.s.Selection().Selectable(n))

	named, err := f.s.Spawn(MeshSpec{Name: "Crate", Color: rl.NewVector4(1, 0, 0, 1)})
	require.NoError(t, err)
	assert.Equal(t, "cube", named.Shape)
	assert.Equal(t, rl.NewVector4(1, 0, 0, 1), named.Material.Color)

	_, err = f.s.Spawn(MeshSpec{Shape: "teapot"})
	assert.ErrorIs(t, err, ErrUnknownShape)
}

func TestMoveToUsesWorldCoordinates(t *testing.T) {
	f := newFixture(t)
	parent := addMesh(t, f.g, f.g.Root(), "P", 5)
	child := addMesh(t, f.g, parent, "C", 1)

	var committed int
	cancel := f.g.OnTransformCommit(func(n *scene.Node) { committed++ })
	defer cancel()

	require.NoError(t, f.s.MoveTo(child, rl.NewVector3(7, 0, 0)))
	assert.InDelta(t, 2, child.Transform.Position.X, 1e-5)
	assert.InDelta(t, 7, f.g.WorldPosition(child).X, 1e-5)
	assert.Equal(t, 1, committed)

	require.NoError(t, f.g.Detach(child))
	assert.ErrorIs(t, f.s.MoveTo(child, rl.Vector3{}), ErrNotAttached)
}

func TestDestroyLeavesEvictionToSweep(t *testing.T) {
	f := newFixture(t)
	f.s.Select(f.m1, false)

	require.NoError(t, f.s.Destroy(f.m1))
	assert.Equal(t, 1, f.s.CurrentSelectionCount())

	f.advance(DefaultConfig().SweepPeriod + time.Millisecond)
	assert.Equal(t, 0, f.s.CurrentSelectionCount())
	assert.Equal(t, GizmoDetached, f.s.GizmoState())
}
