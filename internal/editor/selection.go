package editor

import (
	"log/slog"

	"scene-editor/internal/scene"
)

type entry struct {
	id   scene.NodeID
	node *scene.Node
}

// SelectionManager owns the ordered selection set. The last entry is the primary.
// Every change highlights the difference and then tells the gizmo about the primary.
type SelectionManager struct {
	graph      *scene.Graph
	highlights *Highlighter
	gizmo      *GizmoController
	events     *Notifier
	log        *slog.Logger

	entries []entry

	applying     bool
	pendingClear bool
}

// NewSelectionManager returns an empty selection. gizmo may be nil.
func NewSelectionManager(g *scene.Graph, h *Highlighter, gizmo *GizmoController, events *Notifier, log *slog.Logger) *SelectionManager {
	if log == nil {
		log = slog.Default()
	}
	if events == nil {
		events = &Notifier{}
	}
	m := &SelectionManager{graph: g, highlights: h, gizmo: gizmo, events: events, log: log}
	if gizmo != nil {
		gizmo.selection = m
	}
	return m
}

// Len returns the number of selected nodes.
func (m *SelectionManager) Len() int {
	return len(m.entries)
}

// Primary returns the primary node, or nil when nothing is selected.
func (m *SelectionManager) Primary() *scene.Node {
	if len(m.entries) == 0 {
		return nil
	}
	return m.entries[len(m.entries)-1].node
}

// Contains reports whether id is selected.
func (m *SelectionManager) Contains(id scene.NodeID) bool {
	return m.indexOf(id) >= 0
}

// Nodes returns the selected nodes in selection order.
func (m *SelectionManager) Nodes() []*scene.Node {
	out := make([]*scene.Node, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.node
	}
	return out
}

// IDs returns the selected ids in selection order.
func (m *SelectionManager) IDs() []scene.NodeID {
	out := make([]scene.NodeID, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.id
	}
	return out
}

// Selectable reports whether n may enter the set.
func (m *SelectionManager) Selectable(n *scene.Node) bool {
	return scene.IsSelectable(n) && m.graph.IsAttached(n) && n != m.graph.Root()
}

// SelectOnly replaces the selection with n. An invalid or nil n clears the selection.
// Selecting the node that is already the only selection changes nothing.
func (m *SelectionManager) SelectOnly(n *scene.Node) {
	if !m.Selectable(n) {
		if n != nil {
			m.log.Debug("refused selection target", "node", n.ID())
		}
		m.Clear()
		return
	}
	if len(m.entries) == 1 && m.entries[0].node == n {
		return
	}
	m.apply([]entry{{id: n.ID(), node: n}})
}

// Toggle removes n if selected, otherwise appends it as the new primary. Invalid
// targets are ignored.
func (m *SelectionManager) Toggle(n *scene.Node) {
	if n == nil {
		return
	}
	if i := m.indexOf(n.ID()); i >= 0 {
		m.apply(without(m.entries, i))
		return
	}
	if !m.Selectable(n) {
		m.log.Debug("refused toggle target", "node", n.ID())
		return
	}
	next := make([]entry, len(m.entries), len(m.entries)+1)
	copy(next, m.entries)
	m.apply(append(next, entry{id: n.ID(), node: n}))
}

// Clear empties the selection.
func (m *SelectionManager) Clear() {
	if m.applying {
		m.pendingClear = true
		return
	}
	if len(m.entries) == 0 {
		return
	}
	m.apply(nil)
}

// Evict removes id unconditionally and reports whether it was selected.
func (m *SelectionManager) Evict(id scene.NodeID) bool {
	i := m.indexOf(id)
	if i < 0 {
		return false
	}
	m.apply(without(m.entries, i))
	return true
}

func (m *SelectionManager) apply(next []entry) {
	if m.applying {
		m.log.Warn("nested selection change dropped")
		return
	}
	m.applying = true
	for {
		prev := m.entries
		m.entries = next

		for _, e := range prev {
			if !containsID(next, e.id) {
				m.highlights.Revert(e.node)
			}
		}
		for _, e := range next {
			if !containsID(prev, e.id) {
				m.highlights.Apply(e.node)
			}
		}
		if m.gizmo != nil {
			m.gizmo.PrimaryChanged(m.Primary())
		}
		m.publish()

		if !m.pendingClear {
			break
		}
		m.pendingClear = false
		if len(m.entries) == 0 {
			break
		}
		next = nil
	}
	m.applying = false
}

// reset forgets the set without touching highlights or the gizmo. Teardown only.
func (m *SelectionManager) reset() {
	m.entries = nil
	m.pendingClear = false
}

func (m *SelectionManager) publish() {
	c := Change{Kind: ChangeSelection, Count: len(m.entries)}
	if p := m.Primary(); p != nil {
		c.Primary = p.ID()
	}
	if m.gizmo != nil {
		c.Mode = m.gizmo.Mode()
		c.Gizmo = m.gizmo.State()
	}
	m.events.Publish(c)
}

func (m *SelectionManager) indexOf(id scene.NodeID) int {
	for i, e := range m.entries {
		if e.id == id {
			return i
		}
	}
	return -1
}

func without(entries []entry, i int) []entry {
	out := make([]entry, 0, len(entries)-1)
	out = append(out, entries[:i]...)
	return append(out, entries[i+1:]...)
}

func containsID(entries []entry, id scene.NodeID) bool {
	for _, e := range entries {
		if e.id == id {
			return true
		}
	}
	return false
}
