// Package pick turns a pointer position into ordered ray/node intersections and resolves
// hits to the node the user meant to select.
package pick

import (
	"slices"

	rl "github.com/gen2brain/raylib-go/raylib"

	"scene-editor/internal/primitives"
	"scene-editor/internal/scene"
)

// Viewport converts a viewport-normalized pointer position (0..1 on both axes, origin top
// left) into a world-space ray using the current camera. Implemented by the render surface.
type Viewport interface {
	RayFromNormalized(p rl.Vector2) rl.Ray
}

// Hit is one ray/node intersection.
type Hit struct {
	Node     *scene.Node
	Point    rl.Vector3
	Distance float32
}

// Service performs hit tests against a graph. It keeps a cached candidate index per root
// that is rebuilt when marked dirty (structure notifications) or on the coarse poll
// timer, and pruned by consistency sweeps.
type Service struct {
	graph *scene.Graph
	index *Index
}

// NewService returns a picking service over g.
func NewService(g *scene.Graph) *Service {
	return &Service{graph: g, index: NewIndex(g)}
}

// Index exposes the candidate cache so the consistency monitor can prune and rebuild it.
func (s *Service) Index() *Index {
	return s.index
}

// PickAt builds a ray through the normalized pointer position and picks along it.
func (s *Service) PickAt(vp Viewport, pointer rl.Vector2, root *scene.Node) []Hit {
	if vp == nil {
		return nil
	}
	return s.Pick(vp.RayFromNormalized(pointer), root)
}

// Pick returns every candidate mesh reachable from root that the ray intersects, nearest
// first. Subtrees rooted at gizmo-internal nodes are skipped, as are helper and outline
// nodes. A nil root yields no hits. Pick has no side effects on the graph.
func (s *Service) Pick(ray rl.Ray, root *scene.Node) []Hit {
	if root == nil {
		return nil
	}
	candidates := s.index.Candidates(root)
	var hits []Hit
	for _, n := range candidates {
		box := primitives.WorldBounds(n.Shape, s.graph.WorldMatrix(n))
		col := rl.GetRayCollisionBox(ray, box)
		if !col.Hit || col.Distance < 0 {
			continue
		}
		hits = append(hits, Hit{Node: n, Point: col.Point, Distance: col.Distance})
	}
	slices.SortStableFunc(hits, func(a, b Hit) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		}
		return 0
	})
	return hits
}

// SelectableAncestor walks from hit up its parent chain, stopping at root, and returns
// the closest node (hit included) that is selectable. Clicking a part of a compound model
// therefore resolves to the model's logical root. It returns nil when the chain crosses a
// helper/outline/gizmo node, leaves the graph without meeting root, or nothing qualifies.
func SelectableAncestor(hit, root *scene.Node, maxDepth int) *scene.Node {
	if maxDepth <= 0 {
		maxDepth = scene.DefaultMaxNodes
	}
	for n, depth := hit, 0; n != nil && depth <= maxDepth; n, depth = n.Parent(), depth+1 {
		if n == root {
			return nil
		}
		if !scene.IsPickCandidate(n) {
			return nil
		}
		if scene.IsSelectable(n) {
			return n
		}
	}
	return nil
}

// FirstSelectable resolves hits in order and returns the first selectable target.
func FirstSelectable(hits []Hit, root *scene.Node, maxDepth int) *scene.Node {
	for _, h := range hits {
		if n := SelectableAncestor(h.Node, root, maxDepth); n != nil {
			return n
		}
	}
	return nil
}
