package pick

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-editor/internal/scene"
)

// straightDown is a ray from +Z toward the origin along -Z.
var straightDown = rl.Ray{Position: rl.NewVector3(0, 0, 10), Direction: rl.NewVector3(0, 0, -1)}

type fixedViewport struct{ ray rl.Ray }

func (f fixedViewport) RayFromNormalized(rl.Vector2) rl.Ray { return f.ray }

func addMesh(t *testing.T, g *scene.Graph, parent *scene.Node, name string, z float32) *scene.Node {
	t.Helper()
	m := g.NewNode(name, scene.KindMesh)
	m.Transform.Position = rl.NewVector3(0, 0, z)
	require.NoError(t, g.Add(parent, m))
	return m
}

func TestPickOrdersByDistance(t *testing.T) {
	g := scene.New()
	far := addMesh(t, g, g.Root(), "far", -5)
	near := addMesh(t, g, g.Root(), "near", 0)
	addMesh(t, g, g.Root(), "offaxis", 0).Transform.Position.X = 4

	hits := NewService(g).Pick(straightDown, g.Root())
	require.Len(t, hits, 2)
	assert.Same(t, near, hits[0].Node)
	assert.Same(t, far, hits[1].Node)
	assert.InDelta(t, 9.5, hits[0].Distance, 1e-4)
	assert.InDelta(t, 14.5, hits[1].Distance, 1e-4)
	assert.InDelta(t, 0.5, hits[0].Point.Z, 1e-4)
}

func TestPickSkipsGizmoSubtreesAndOverlays(t *testing.T) {
	g := scene.New()
	target := addMesh(t, g, g.Root(), "target", 0)

	gizmo := g.NewNode("gizmo", scene.KindOther)
	gizmo.Tags = scene.TagGizmoInternal
	require.NoError(t, g.Add(g.Root(), gizmo))
	// An untagged handle under the gizmo root is still excluded by subtree.
	addMesh(t, g, gizmo, "handle", 5)

	overlay := addMesh(t, g, target, "outline", 0)
	overlay.Tags = scene.TagOutline | scene.TagHelper
	overlay.Transform.Scale = rl.NewVector3(1.03, 1.03, 1.03)

	hits := NewService(g).Pick(straightDown, g.Root())
	require.Len(t, hits, 1)
	assert.Same(t, target, hits[0].Node)
}

func TestPickNilRootAndViewport(t *testing.T) {
	g := scene.New()
	addMesh(t, g, g.Root(), "m", 0)
	s := NewService(g)
	assert.Empty(t, s.Pick(straightDown, nil))
	assert.Empty(t, s.PickAt(nil, rl.NewVector2(0.5, 0.5), g.Root()))
	assert.Len(t, s.PickAt(fixedViewport{straightDown}, rl.NewVector2(0.5, 0.5), g.Root()), 1)
}

func TestPickIsDeterministic(t *testing.T) {
	g := scene.New()
	addMesh(t, g, g.Root(), "a", 0)
	addMesh(t, g, g.Root(), "b", 0) // same spot: ties keep traversal order
	s := NewService(g)
	first := s.Pick(straightDown, g.Root())
	second := s.Pick(straightDown, g.Root())
	require.Len(t, first, 2)
	assert.Equal(t, first[0].Node.Name, second[0].Node.Name)
	assert.Equal(t, "a", first[0].Node.Name)
}

func TestSelectableAncestor(t *testing.T) {
	g := scene.New()
	model := g.NewNode("robot", scene.KindGroup)
	require.NoError(t, g.Add(g.Root(), model))
	arm := g.NewNode("arm", scene.KindGroup)
	arm.Tags = 0
	require.NoError(t, g.Add(model, arm))
	hand := addMesh(t, g, arm, "hand", 0)
	hand.Tags = 0

	assert.Same(t, model, SelectableAncestor(hand, g.Root(), 0))

	loose := addMesh(t, g, g.Root(), "loose", 0)
	assert.Same(t, loose, SelectableAncestor(loose, g.Root(), 0))

	orphan := addMesh(t, g, g.Root(), "orphan", 0)
	orphan.Tags = 0
	assert.Nil(t, SelectableAncestor(orphan, g.Root(), 0), "root itself is never returned")

	overlay := addMesh(t, g, loose, "overlay", 0)
	overlay.Tags = scene.TagOutline | scene.TagHelper | scene.TagSelectable
	assert.Nil(t, SelectableAncestor(overlay, g.Root(), 0))

	hits := []Hit{{Node: orphan}, {Node: hand}}
	assert.Same(t, model, FirstSelectable(hits, g.Root(), 0))
}

func TestIndexNotifyModeTracksChanges(t *testing.T) {
	g := scene.New()
	s := NewService(g)
	addMesh(t, g, g.Root(), "a", 0)
	assert.Len(t, s.Index().Candidates(g.Root()), 1)

	addMesh(t, g, g.Root(), "b", -3)
	assert.Len(t, s.Index().Candidates(g.Root()), 2)
}

func TestIndexPollModeNeedsRebuildAndPrunes(t *testing.T) {
	g := scene.New()
	s := NewService(g)
	idx := s.Index()
	idx.SetMode(ModePoll)
	a := addMesh(t, g, g.Root(), "a", 0)
	require.Len(t, idx.Candidates(g.Root()), 1)

	b := addMesh(t, g, g.Root(), "b", -3)
	assert.Len(t, idx.Candidates(g.Root()), 1, "poll mode waits for the coarse rebuild")
	assert.False(t, idx.Contains(b.ID()))

	require.NoError(t, idx.Rebuild(g.Root()))
	assert.True(t, idx.Contains(b.ID()))

	require.NoError(t, g.Detach(a))
	removed := idx.Prune(func(n *scene.Node) bool { return !g.IsAttached(n) })
	assert.Equal(t, 1, removed)
	assert.False(t, idx.Contains(a.ID()))
	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, ModePoll, idx.Mode())
	assert.Equal(t, ModePoll, ParseMode("poll"))
	assert.Equal(t, ModeNotify, ParseMode("anything"))
	idx.Close()
}
