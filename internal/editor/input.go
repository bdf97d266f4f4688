package editor

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"scene-editor/internal/pick"
	"scene-editor/internal/scene"
)

// Button identifies a pointer button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
)

// PointerEvent is a pointer action in viewport-normalized coordinates (0..1 on both
// axes, origin top-left).
type PointerEvent struct {
	Pos      rl.Vector2
	Button   Button
	Modifier bool
}

// Key is an editor key binding, already decoded from the platform key code.
type Key int

const (
	KeyModifier Key = iota
	KeyTranslate
	KeyRotate
	KeyScale
	KeyClear
	KeyGroup
	KeyUngroup
	KeyDelete
)

// InputDispatcher turns pointer and key events into selection, gizmo and group
// operations. It is the only writer of UIState.
type InputDispatcher struct {
	session *Session
	ui      *UIState
	closed  bool
}

func newInputDispatcher(s *Session, ui *UIState) *InputDispatcher {
	return &InputDispatcher{session: s, ui: ui}
}

// Closed reports whether the dispatcher stopped listening.
func (d *InputDispatcher) Closed() bool {
	return d.closed
}

// Close stops event handling. Later events are ignored.
func (d *InputDispatcher) Close() {
	d.closed = true
	d.ui.setMultiSelect(false)
	d.ui.setCursor(CursorDefault)
}

// PointerDown routes a click. Secondary clicks always clear. A primary click on a
// gizmo handle starts a drag; otherwise it selects, toggles, or clears on empty space
// unless the multi-select modifier is held.
func (d *InputDispatcher) PointerDown(ev PointerEvent) {
	if d.closed {
		return
	}
	s := d.session
	if ev.Button == ButtonSecondary {
		s.selection.Clear()
		return
	}
	ray := s.surface.RayFromNormalized(ev.Pos)
	if s.gizmo.TryBeginDrag(ray, s.surface.CameraPosition()) {
		d.ui.setCursor(CursorMove)
		return
	}

	multi := ev.Modifier || d.ui.MultiSelect()
	target := d.target(ray)
	switch {
	case target == nil && multi:
	case target == nil:
		s.selection.Clear()
	case multi:
		s.selection.Toggle(target)
	default:
		s.selection.SelectOnly(target)
	}
}

// PointerMove drags the gizmo or updates the hover cursor.
func (d *InputDispatcher) PointerMove(ev PointerEvent) {
	if d.closed {
		return
	}
	s := d.session
	ray := s.surface.RayFromNormalized(ev.Pos)
	if s.gizmo.State() == GizmoDragging {
		s.gizmo.DragTo(ray)
		return
	}
	d.hover(ray)
}

// PointerUp ends a drag.
func (d *InputDispatcher) PointerUp(ev PointerEvent) {
	if d.closed {
		return
	}
	s := d.session
	s.gizmo.EndDrag()
	d.hover(s.surface.RayFromNormalized(ev.Pos))
}

// KeyDown handles bindings. The modifier key only changes multi-select state.
func (d *InputDispatcher) KeyDown(k Key) {
	if d.closed {
		return
	}
	s := d.session
	switch k {
	case KeyModifier:
		d.ui.setMultiSelect(true)
		if d.ui.Cursor() == CursorDefault {
			d.ui.setCursor(CursorCrosshair)
		}
	case KeyTranslate:
		s.SetMode(ModeTranslate)
	case KeyRotate:
		s.SetMode(ModeRotate)
	case KeyScale:
		s.SetMode(ModeScale)
	case KeyClear:
		s.ClearSelection()
	case KeyGroup:
		_, _ = s.Group("")
	case KeyUngroup:
		_ = s.Ungroup()
	case KeyDelete:
		s.DeleteSelection()
	}
}

// KeyUp releases the modifier.
func (d *InputDispatcher) KeyUp(k Key) {
	if d.closed || k != KeyModifier {
		return
	}
	d.ui.setMultiSelect(false)
	if d.ui.Cursor() == CursorCrosshair {
		d.ui.setCursor(CursorDefault)
	}
}

func (d *InputDispatcher) target(ray rl.Ray) *scene.Node {
	s := d.session
	root := s.graph.Root()
	return pick.FirstSelectable(s.picker.Pick(ray, root), root, s.graph.MaxNodes())
}

func (d *InputDispatcher) hover(ray rl.Ray) {
	s := d.session
	switch {
	case s.gizmo.State() != GizmoDetached && s.widget.HitAxis(ray, s.gizmo.Mode()) >= 0:
		d.ui.setCursor(CursorMove)
	case d.target(ray) != nil:
		d.ui.setCursor(CursorPointer)
	case d.ui.MultiSelect():
		d.ui.setCursor(CursorCrosshair)
	default:
		d.ui.setCursor(CursorDefault)
	}
}
