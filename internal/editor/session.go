package editor

import (
	"fmt"
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"scene-editor/internal/pick"
	"scene-editor/internal/scene"
)

// Surface is what the editor needs from the render surface.
type Surface interface {
	pick.Viewport
	NavigationSwitch
	CameraPosition() rl.Vector3
}

// Config holds the editor tunables.
type Config struct {
	SweepPeriod        time.Duration
	IndexRebuildPeriod time.Duration
	IndexMode          pick.Mode
	Highlight          HighlightConfig
}

// DefaultConfig returns the stock tunables.
func DefaultConfig() Config {
	return Config{
		SweepPeriod:        500 * time.Millisecond,
		IndexRebuildPeriod: 2 * time.Second,
		IndexMode:          pick.ModeNotify,
		Highlight:          DefaultHighlightConfig(),
	}
}

// Options configures NewSession. Widget defaults to a TransformWidget and Now to
// time.Now().
type Options struct {
	Config  Config
	Surface Surface
	Widget  Widget
	Logger  *slog.Logger
	Now     time.Time
}

// Session is one editing session over a graph: the surface the UI shell talks to.
// Everything except Post runs on the UI thread.
type Session struct {
	graph   *scene.Graph
	surface Surface
	log     *slog.Logger

	events     *Notifier
	picker     *pick.Service
	highlights *Highlighter
	widget     Widget
	gizmo      *GizmoController
	selection  *SelectionManager
	groups     *GroupOperator
	monitor    *ConsistencyMonitor
	ui         *UIState
	input      *InputDispatcher
	mailbox    *Mailbox

	groupSeq int
	spawnSeq int
	closed   bool
}

// NewSession wires the editor components over g and starts the monitor timers.
func NewSession(g *scene.Graph, opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	w := opts.Widget
	if w == nil {
		w = NewTransformWidget(g)
	}
	cfg := opts.Config

	s := &Session{
		graph:   g,
		surface: opts.Surface,
		log:     log,
		events:  &Notifier{},
		picker:  pick.NewService(g),
		widget:  w,
		ui:      &UIState{},
		mailbox: &Mailbox{},
	}
	s.picker.Index().SetMode(cfg.IndexMode)
	s.highlights = NewHighlighter(g, cfg.Highlight, log.With("component", "highlight"))
	s.gizmo = NewGizmoController(g, w, opts.Surface, s.events, log.With("component", "gizmo"))
	s.selection = NewSelectionManager(g, s.highlights, s.gizmo, s.events, log.With("component", "selection"))
	s.groups = NewGroupOperator(g, log.With("component", "group"))
	s.monitor = NewConsistencyMonitor(g, s.selection, s.gizmo, s.picker.Index(),
		cfg.SweepPeriod, cfg.IndexRebuildPeriod, log.With("component", "monitor"))
	s.input = newInputDispatcher(s, s.ui)
	s.monitor.Start(now)
	return s
}

// Graph returns the scene graph the session edits.
func (s *Session) Graph() *scene.Graph {
	return s.graph
}

// Input returns the dispatcher the host feeds pointer and key events to.
func (s *Session) Input() *InputDispatcher {
	return s.input
}

// UI returns the shared cursor and multi-select state.
func (s *Session) UI() *UIState {
	return s.ui
}

// Picker returns the hit-testing service.
func (s *Session) Picker() *pick.Service {
	return s.picker
}

// Monitor returns the consistency monitor.
func (s *Session) Monitor() *ConsistencyMonitor {
	return s.monitor
}

// Highlighter returns the selection highlighter.
func (s *Session) Highlighter() *Highlighter {
	return s.highlights
}

// Gizmo returns the gizmo controller.
func (s *Session) Gizmo() *GizmoController {
	return s.gizmo
}

// Selection returns the selection manager.
func (s *Session) Selection() *SelectionManager {
	return s.selection
}

// Widget returns the manipulator the gizmo drives.
func (s *Session) Widget() Widget {
	return s.widget
}

// Closed reports whether Close has run.
func (s *Session) Closed() bool {
	return s.closed
}

// Subscribe registers fn for selection and gizmo changes and returns its cancel func.
func (s *Session) Subscribe(fn func(Change)) func() {
	return s.events.Subscribe(fn)
}

// CurrentPrimary returns the primary selected node, or nil.
func (s *Session) CurrentPrimary() *scene.Node {
	return s.selection.Primary()
}

// CurrentSelectionCount returns how many nodes are selected.
func (s *Session) CurrentSelectionCount() int {
	return s.selection.Len()
}

// SelectedNodes returns the selection in order, primary last.
func (s *Session) SelectedNodes() []*scene.Node {
	return s.selection.Nodes()
}

// Mode returns the manipulation mode.
func (s *Session) Mode() Mode {
	return s.gizmo.Mode()
}

// GizmoState returns the gizmo's lifecycle state.
func (s *Session) GizmoState() GizmoState {
	return s.gizmo.State()
}

// SetMode switches translate/rotate/scale.
func (s *Session) SetMode(m Mode) {
	if s.closed {
		return
	}
	s.gizmo.SetMode(m)
}

// Select replaces the selection with n, or toggles n when additive is set.
func (s *Session) Select(n *scene.Node, additive bool) {
	if s.closed {
		return
	}
	if additive {
		s.selection.Toggle(n)
		return
	}
	s.selection.SelectOnly(n)
}

// ClearSelection empties the selection.
func (s *Session) ClearSelection() {
	if s.closed {
		return
	}
	s.selection.Clear()
}

// Group groups the current selection and selects the new group. An empty name picks
// "Group N".
func (s *Session) Group(name string) (*scene.Node, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	if name == "" {
		s.groupSeq++
		name = fmt.Sprintf("Group %d", s.groupSeq)
	}
	g, err := s.groups.Group(s.selection.Nodes(), name)
	if err != nil {
		s.advise(err)
		return nil, err
	}
	s.selection.SelectOnly(g)
	return g, nil
}

// GroupNodes groups nodes without touching the selection.
func (s *Session) GroupNodes(nodes []*scene.Node, name string) (*scene.Node, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	g, err := s.groups.Group(nodes, name)
	if err != nil {
		s.advise(err)
	}
	return g, err
}

// Ungroup dissolves the primary selection.
func (s *Session) Ungroup() error {
	return s.UngroupNode(s.selection.Primary())
}

// UngroupNode dissolves g. The selection is cleared first; a refused ungroup leaves
// everything as it was.
func (s *Session) UngroupNode(g *scene.Node) error {
	if s.closed {
		return ErrSessionClosed
	}
	if err := s.groups.CheckUngroup(g); err != nil {
		s.advise(err)
		return err
	}
	s.selection.Clear()
	if _, err := s.groups.Ungroup(g); err != nil {
		s.advise(err)
		return err
	}
	return nil
}

// DeleteSelection destroys every selected node and returns how many were destroyed.
func (s *Session) DeleteSelection() int {
	if s.closed {
		return 0
	}
	nodes := s.selection.Nodes()
	s.selection.Clear()
	deleted := 0
	for _, n := range nodes {
		if err := s.graph.Destroy(n); err != nil {
			s.log.Warn("delete node", "node", n.ID(), "err", err)
			continue
		}
		deleted++
	}
	return deleted
}

// Post queues fn to run on the UI thread at the next Tick. Safe from any goroutine.
func (s *Session) Post(fn func()) {
	s.mailbox.Post(fn)
}

// Tick runs posted work, due timers, and keeps the widget on its node.
func (s *Session) Tick(now time.Time) {
	if s.closed {
		return
	}
	s.mailbox.Drain()
	s.monitor.Tick(now)
	s.gizmo.Sync()
}

// Close ends the session: the gizmo detaches and releases its widget (navigation back
// on), every highlight is reverted, timers stop, and input is ignored from then on.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.gizmo.Release()
	reverted := s.highlights.RevertAll()
	s.selection.reset()
	s.monitor.Stop()
	s.input.Close()
	s.picker.Index().Close()
	s.closed = true
	s.log.Info("editor session closed", "highlights_reverted", reverted)
}

func (s *Session) advise(err error) {
	s.log.Info("operation refused", "err", err)
	s.events.Publish(Change{
		Kind:    ChangeAdvisory,
		Count:   s.selection.Len(),
		Mode:    s.gizmo.Mode(),
		Gizmo:   s.gizmo.State(),
		Message: err.Error(),
	})
}
