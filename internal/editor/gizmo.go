package editor

import (
	"log/slog"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"scene-editor/internal/scene"
)

var forcedDetaches = promauto.NewCounter(prometheus.CounterOpts{
	Name: "editor_gizmo_forced_detach_total",
	Help: "Gizmo detachments forced by a stale or invalid attached node.",
})

// Mode is the manipulation mode. It is independent of the gizmo state.
type Mode int

const (
	ModeTranslate Mode = iota
	ModeRotate
	ModeScale
)

func (m Mode) String() string {
	switch m {
	case ModeRotate:
		return "rotate"
	case ModeScale:
		return "scale"
	}
	return "translate"
}

// ParseMode accepts "translate", "rotate" and "scale" (and the move/t/r/s shorthands).
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "translate", "move", "t":
		return ModeTranslate, true
	case "rotate", "r":
		return ModeRotate, true
	case "scale", "s":
		return ModeScale, true
	}
	return ModeTranslate, false
}

// GizmoState is the attach/drag state of the controller.
type GizmoState int

const (
	GizmoDetached GizmoState = iota
	GizmoAttached
	GizmoDragging
)

func (s GizmoState) String() string {
	switch s {
	case GizmoAttached:
		return "attached"
	case GizmoDragging:
		return "dragging"
	}
	return "detached"
}

// NavigationSwitch turns the orbit camera controls on and off.
type NavigationSwitch interface {
	SetNavigationEnabled(enabled bool)
}

// Widget is the on-screen manipulator the controller drives.
type Widget interface {
	Attach(n *scene.Node) error
	Detach() error
	Release() error
	// HitAxis returns the handle under ray, or -1.
	HitAxis(ray rl.Ray, mode Mode) int
	BeginDrag(axis int, ray rl.Ray, eye rl.Vector3)
	// Drag applies the pointer motion to the attached node's transform and reports
	// whether the transform changed.
	Drag(ray rl.Ray, mode Mode) bool
	EndDrag()
	// Sync follows the attached node after external transform changes.
	Sync()
}

// GizmoController runs the Detached/Attached/Dragging state machine.
type GizmoController struct {
	graph     *scene.Graph
	widget    Widget
	nav       NavigationSwitch
	selection *SelectionManager
	events    *Notifier
	log       *slog.Logger

	state     GizmoState
	node      *scene.Node
	mode      Mode
	released  bool
	onDragEnd func()
}

// NewGizmoController returns a detached controller in translate mode.
func NewGizmoController(g *scene.Graph, w Widget, nav NavigationSwitch, events *Notifier, log *slog.Logger) *GizmoController {
	if log == nil {
		log = slog.Default()
	}
	if events == nil {
		events = &Notifier{}
	}
	return &GizmoController{graph: g, widget: w, nav: nav, events: events, log: log}
}

// State returns the current state.
func (c *GizmoController) State() GizmoState {
	return c.state
}

// Node returns the attached node, or nil when detached.
func (c *GizmoController) Node() *scene.Node {
	return c.node
}

// Mode returns the manipulation mode.
func (c *GizmoController) Mode() Mode {
	return c.mode
}

// SetMode switches the manipulation mode in any state.
func (c *GizmoController) SetMode(m Mode) {
	if c.mode == m {
		return
	}
	c.mode = m
	c.events.Publish(Change{Kind: ChangeMode, Mode: m, Gizmo: c.state})
}

// Attachable is the safety gate: n must be in the graph, not an editor helper, and
// still have a usable transform.
func (c *GizmoController) Attachable(n *scene.Node) bool {
	return n != nil &&
		c.graph.IsAttached(n) &&
		n != c.graph.Root() &&
		!scene.IsHelper(n) && !scene.IsOutline(n) && !scene.IsGizmoInternal(n) &&
		n.CanTransform()
}

// PrimaryChanged follows the selection's primary node. A node that fails the safety
// gate is refused and the selection is asked to clear.
func (c *GizmoController) PrimaryChanged(n *scene.Node) {
	if c.released {
		return
	}
	if n == nil {
		c.detach()
		return
	}
	if c.state != GizmoDetached && c.node == n {
		return
	}
	if !c.Attachable(n) {
		c.log.Debug("gizmo refused node", "node", n.ID())
		c.detach()
		c.clearSelection()
		return
	}
	c.detach()
	if err := c.widget.Attach(n); err != nil {
		c.log.Warn("attach gizmo widget", "node", n.ID(), "err", err)
		c.clearSelection()
		return
	}
	c.node = n
	c.setState(GizmoAttached)
}

// TryBeginDrag starts a drag when ray hits a handle of the attached widget.
func (c *GizmoController) TryBeginDrag(ray rl.Ray, eye rl.Vector3) bool {
	if c.state != GizmoAttached {
		return false
	}
	axis := c.widget.HitAxis(ray, c.mode)
	if axis < 0 {
		return false
	}
	if !c.BeginDrag() {
		return false
	}
	c.widget.BeginDrag(axis, ray, eye)
	return true
}

// BeginDrag moves Attached to Dragging and disables camera navigation.
func (c *GizmoController) BeginDrag() bool {
	if c.state != GizmoAttached {
		return false
	}
	if !c.Attachable(c.node) {
		c.ForceDetach()
		c.clearSelection()
		return false
	}
	c.setNavigation(false)
	c.setState(GizmoDragging)
	return true
}

// DragTo feeds pointer motion to the widget. If the dragged node went invalid the
// drag ends, the gizmo detaches and the selection clears.
func (c *GizmoController) DragTo(ray rl.Ray) {
	if c.state != GizmoDragging {
		return
	}
	if !c.Attachable(c.node) {
		c.log.Info("dragged node became invalid", "node", c.node.ID())
		c.ForceDetach()
		c.clearSelection()
		return
	}
	if c.widget.Drag(ray, c.mode) {
		c.Commit()
	}
}

// Commit reports a transform change of the dragged node to the graph.
func (c *GizmoController) Commit() {
	if c.state != GizmoDragging || c.node == nil {
		return
	}
	c.graph.CommitTransform(c.node)
}

// EndDrag moves Dragging back to Attached and re-enables navigation.
func (c *GizmoController) EndDrag() {
	if c.state != GizmoDragging {
		return
	}
	c.widget.EndDrag()
	c.setNavigation(true)
	c.setState(GizmoAttached)
	if c.onDragEnd != nil {
		c.onDragEnd()
	}
}

// ForceDetach drops the widget regardless of state.
func (c *GizmoController) ForceDetach() {
	if c.state == GizmoDetached {
		return
	}
	forcedDetaches.Inc()
	c.detach()
}

// Sync keeps the widget on its node.
func (c *GizmoController) Sync() {
	if c.state != GizmoDetached {
		c.widget.Sync()
	}
}

// Release detaches and frees the widget. The controller ignores primaries afterwards.
func (c *GizmoController) Release() {
	if c.released {
		return
	}
	c.detach()
	if err := c.widget.Release(); err != nil {
		c.log.Warn("release gizmo widget", "err", err)
	}
	c.released = true
}

func (c *GizmoController) detach() {
	if c.state == GizmoDetached {
		return
	}
	if c.state == GizmoDragging {
		c.setNavigation(true)
	}
	if err := c.widget.Detach(); err != nil {
		c.log.Warn("detach gizmo widget", "err", err)
	}
	c.node = nil
	c.setState(GizmoDetached)
}

func (c *GizmoController) clearSelection() {
	if c.selection != nil {
		c.selection.Clear()
	}
}

func (c *GizmoController) setNavigation(on bool) {
	if c.nav != nil {
		c.nav.SetNavigationEnabled(on)
	}
}

func (c *GizmoController) setState(s GizmoState) {
	c.state = s
	var id scene.NodeID
	if c.node != nil {
		id = c.node.ID()
	}
	c.events.Publish(Change{Kind: ChangeGizmo, Gizmo: s, Primary: id, Mode: c.mode})
}
