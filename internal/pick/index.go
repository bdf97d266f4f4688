package pick

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"scene-editor/internal/scene"
)

var indexRebuilds = promauto.NewCounter(prometheus.CounterOpts{
	Name: "editor_pick_index_rebuilds_total",
	Help: "Number of pick candidate index rebuilds.",
})

// Mode selects how the candidate index learns about graph changes.
type Mode int

const (
	// ModeNotify rebuilds lazily after the graph reports a structural change.
	ModeNotify Mode = iota
	// ModePoll only rebuilds when the caller's coarse timer asks for it; between
	// rebuilds, sweeps prune entries that left the graph.
	ModePoll
)

// ParseMode maps "notify"/"poll" to a Mode. Anything else is ModeNotify.
func ParseMode(s string) Mode {
	if s == "poll" {
		return ModePoll
	}
	return ModeNotify
}

// Index caches the pick candidates (mesh nodes outside helper/outline/gizmo subtrees)
// under one root.
type Index struct {
	graph  *scene.Graph
	mode   Mode
	root   *scene.Node
	nodes  []*scene.Node
	ids    map[scene.NodeID]struct{}
	built  bool
	dirty  bool
	cancel func()
}

// NewIndex returns an empty index in ModeNotify.
func NewIndex(g *scene.Graph) *Index {
	idx := &Index{graph: g}
	idx.SetMode(ModeNotify)
	return idx
}

// SetMode switches between notification-driven and poll-driven invalidation.
func (idx *Index) SetMode(m Mode) {
	if idx.cancel != nil {
		idx.cancel()
		idx.cancel = nil
	}
	idx.mode = m
	if m == ModeNotify {
		idx.cancel = idx.graph.OnStructureChange(func() { idx.dirty = true })
	}
}

// Mode returns the current invalidation mode.
func (idx *Index) Mode() Mode {
	return idx.mode
}

// Close stops listening for graph changes.
func (idx *Index) Close() {
	if idx.cancel != nil {
		idx.cancel()
		idx.cancel = nil
	}
}

// Candidates returns the cached candidates for root, rebuilding first when the cache is
// empty, built for another root, or (in ModeNotify) invalidated.
func (idx *Index) Candidates(root *scene.Node) []*scene.Node {
	if !idx.built || idx.root != root || (idx.mode == ModeNotify && idx.dirty) {
		_ = idx.Rebuild(root)
	}
	return idx.nodes
}

// Rebuild re-scans root. On a traversal error the partial result is kept and returned
// alongside the error.
func (idx *Index) Rebuild(root *scene.Node) error {
	nodes, err := scene.Descendants(root, idx.graph.MaxNodes(),
		scene.IsGizmoInternal,
		func(n *scene.Node) bool { return n.Kind == scene.KindMesh && scene.IsPickCandidate(n) })
	if root != nil && root.Kind == scene.KindMesh && scene.IsPickCandidate(root) {
		nodes = append([]*scene.Node{root}, nodes...)
	}
	idx.root = root
	idx.nodes = nodes
	idx.ids = make(map[scene.NodeID]struct{}, len(nodes))
	for _, n := range nodes {
		idx.ids[n.ID()] = struct{}{}
	}
	idx.built = true
	idx.dirty = false
	indexRebuilds.Inc()
	return err
}

// Prune drops every cached entry for which stale returns true and reports how many went.
func (idx *Index) Prune(stale func(n *scene.Node) bool) int {
	kept := idx.nodes[:0]
	removed := 0
	for _, n := range idx.nodes {
		if stale(n) {
			delete(idx.ids, n.ID())
			removed++
			continue
		}
		kept = append(kept, n)
	}
	idx.nodes = kept
	return removed
}

// Contains reports whether id is cached.
func (idx *Index) Contains(id scene.NodeID) bool {
	_, ok := idx.ids[id]
	return ok
}

// Len returns the number of cached candidates.
func (idx *Index) Len() int {
	return len(idx.nodes)
}
