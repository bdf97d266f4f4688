package editor

import (
	"log/slog"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/jinzhu/copier"

	"scene-editor/internal/scene"
)

// HighlightConfig tunes the selected look.
type HighlightConfig struct {
	Emissive     float32 // emissive gray written into lit materials
	ColorDelta   float32 // nudge toward white for unlit materials
	OutlineScale float32 // overlay scale relative to the mesh
}

// DefaultHighlightConfig returns the stock highlight look.
func DefaultHighlightConfig() HighlightConfig {
	return HighlightConfig{Emissive: 0.5, ColorDelta: 0.2, OutlineScale: 1.03}
}

// Highlighter owns highlight records. A record is created by the first holder and
// removed, with the material restored and the overlay discarded, when the last holder
// lets go.
type Highlighter struct {
	graph  *scene.Graph
	cfg    HighlightConfig
	log    *slog.Logger
	active map[scene.NodeID]*scene.Node
}

// NewHighlighter returns a highlighter for g.
func NewHighlighter(g *scene.Graph, cfg HighlightConfig, log *slog.Logger) *Highlighter {
	if log == nil {
		log = slog.Default()
	}
	return &Highlighter{
		graph:  g,
		cfg:    cfg,
		log:    log,
		active: make(map[scene.NodeID]*scene.Node),
	}
}

// Apply highlights n on its own behalf. Groups pass the highlight down to every
// descendant mesh and keep a bookkeeping record themselves.
func (h *Highlighter) Apply(n *scene.Node) {
	if n == nil {
		return
	}
	if rec := n.Highlight(); rec != nil {
		if _, own := rec.Holders[n.ID()]; own {
			return
		}
	}
	if n.Kind != scene.KindGroup {
		h.hold(n, n.ID())
		h.active[n.ID()] = n
		return
	}

	members := h.members(n)
	rec := h.hold(n, n.ID())
	rec.Group = true
	for _, m := range members {
		h.hold(m, n.ID())
	}
	rec.Members = members
	h.active[n.ID()] = n
}

// Revert drops n's own claim on its highlight and, for groups, the claims the group
// placed on its members. Nodes without their own claim are left alone.
func (h *Highlighter) Revert(n *scene.Node) {
	if n == nil {
		return
	}
	rec := n.Highlight()
	if rec == nil {
		return
	}
	if _, own := rec.Holders[n.ID()]; !own {
		return
	}
	for _, m := range rec.Members {
		h.release(m, n.ID())
	}
	h.release(n, n.ID())
	delete(h.active, n.ID())
}

// RevertAll reverts every node that was applied and not yet reverted.
func (h *Highlighter) RevertAll() int {
	nodes := make([]*scene.Node, 0, len(h.active))
	for _, n := range h.active {
		nodes = append(nodes, n)
	}
	for _, n := range nodes {
		h.Revert(n)
	}
	return len(nodes)
}

// Refresh re-derives the descendant meshes of every highlighted group. Meshes that
// left a group lose its claim and newly added ones gain it. It returns how many
// claims changed.
func (h *Highlighter) Refresh() int {
	changed := 0
	for id, g := range h.active {
		rec := g.Highlight()
		if rec == nil || !rec.Group {
			continue
		}
		var current []*scene.Node
		if !g.Disposed() {
			current = h.members(g)
		}
		keep := make(map[scene.NodeID]struct{}, len(current))
		for _, m := range current {
			keep[m.ID()] = struct{}{}
		}
		had := make(map[scene.NodeID]struct{}, len(rec.Members))
		for _, m := range rec.Members {
			had[m.ID()] = struct{}{}
			if _, ok := keep[m.ID()]; !ok {
				h.release(m, id)
				changed++
			}
		}
		for _, m := range current {
			if _, ok := had[m.ID()]; !ok {
				h.hold(m, id)
				changed++
			}
		}
		rec.Members = current
	}
	return changed
}

// Active returns how many nodes currently hold their own highlight.
func (h *Highlighter) Active() int {
	return len(h.active)
}

// members lists the meshes below a group, skipping editor-owned subtrees.
func (h *Highlighter) members(n *scene.Node) []*scene.Node {
	members, err := scene.Descendants(n, h.graph.MaxNodes(), func(d *scene.Node) bool {
		return !scene.IsPickCandidate(d)
	}, func(d *scene.Node) bool {
		return d.Kind == scene.KindMesh
	})
	if err != nil {
		h.log.Warn("highlight group traversal cut short", "node", n.ID(), "err", err)
	}
	return members
}

func (h *Highlighter) hold(n *scene.Node, holder scene.NodeID) *scene.Highlight {
	rec := n.Highlight()
	if rec == nil {
		rec = &scene.Highlight{
			Saved:   n.Material,
			Holders: make(map[scene.NodeID]struct{}),
		}
		n.SetHighlight(rec)
		if n.Kind == scene.KindMesh {
			n.Material = h.brighten(n.Material)
			rec.Overlay = h.attachOverlay(n, rec.Saved)
		}
	}
	rec.Holders[holder] = struct{}{}
	return rec
}

func (h *Highlighter) release(n *scene.Node, holder scene.NodeID) {
	rec := n.Highlight()
	if rec == nil {
		return
	}
	delete(rec.Holders, holder)
	if len(rec.Holders) > 0 {
		return
	}
	if n.Kind == scene.KindMesh {
		n.Material = rec.Saved
	}
	h.discardOverlay(n, rec.Overlay)
	n.SetHighlight(nil)
}

func (h *Highlighter) brighten(m scene.Material) scene.Material {
	switch m.Model {
	case scene.MaterialStandard:
		e := clamp01(h.cfg.Emissive)
		m.Emissive = rl.NewVector3(e, e, e)
	default:
		d := h.cfg.ColorDelta
		m.Color.X = clamp01(m.Color.X + d)
		m.Color.Y = clamp01(m.Color.Y + d)
		m.Color.Z = clamp01(m.Color.Z + d)
	}
	return m
}

func (h *Highlighter) attachOverlay(n *scene.Node, saved scene.Material) *scene.Node {
	ov := h.graph.NewNode(n.Name+".outline", scene.KindMesh)
	ov.Shape = n.Shape
	ov.Tags = scene.TagOutline | scene.TagHelper
	if err := copier.Copy(&ov.Material, &saved); err != nil {
		h.log.Warn("copy overlay material", "node", n.ID(), "err", err)
	}
	ov.Material.Model = scene.MaterialBasic
	ov.Material.Emissive = rl.Vector3{}
	ov.Material.Wireframe = true
	s := h.cfg.OutlineScale
	ov.Transform.Scale = rl.NewVector3(s, s, s)
	if err := h.graph.Add(n, ov); err != nil {
		h.log.Warn("attach highlight overlay", "node", n.ID(), "err", err)
		return nil
	}
	return ov
}

func (h *Highlighter) discardOverlay(n *scene.Node, ov *scene.Node) {
	if ov == nil || ov.Disposed() {
		return
	}
	if err := h.graph.Destroy(ov); err != nil {
		h.log.Warn("discard highlight overlay", "node", n.ID(), "err", err)
	}
}

func clamp01(v float32) float32 {
	return math32.Max(0, math32.Min(1, v))
}
