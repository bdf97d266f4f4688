package ui

import (
	"scene-editor/internal/editor"
	"scene-editor/internal/scene"
)

// Actions are the session operations the toolbar buttons trigger.
type Actions interface {
	SetMode(m editor.Mode)
	Group(name string) (*scene.Node, error)
	Ungroup() error
	ClearSelection()
}

var toolbarModes = []editor.Mode{editor.ModeTranslate, editor.ModeRotate, editor.ModeScale}

// Toolbar is the row of mode buttons plus group/ungroup/clear. The button for the
// current mode carries the "active" class.
type Toolbar struct {
	panel   *Node
	modes   map[editor.Mode]*Node
	actions []*Node
}

// NewToolbar builds the toolbar nodes. Styling comes from .toolbar, .tool, .active and
// the #tool-* ids.
func NewToolbar(a Actions) *Toolbar {
	t := &Toolbar{
		panel: NewNode("panel", "toolbar", "toolbar", ""),
		modes: make(map[editor.Mode]*Node, len(toolbarModes)),
	}
	labels := map[editor.Mode]string{
		editor.ModeTranslate: "Move (W)",
		editor.ModeRotate:    "Rotate (E)",
		editor.ModeScale:     "Scale (R)",
	}
	for _, m := range toolbarModes {
		b := NewNode("button", "tool", "tool-"+m.String(), labels[m])
		b.OnClick = func() { a.SetMode(m) }
		t.modes[m] = b
	}
	group := NewNode("button", "tool", "tool-group", "Group (G)")
	group.OnClick = func() { _, _ = a.Group("") }
	ungroup := NewNode("button", "tool", "tool-ungroup", "Ungroup (U)")
	ungroup.OnClick = func() { _ = a.Ungroup() }
	clearSel := NewNode("button", "tool", "tool-clear", "Clear (Esc)")
	clearSel.OnClick = a.ClearSelection
	t.actions = []*Node{group, ungroup, clearSel}
	t.setActive(editor.ModeTranslate)
	return t
}

// OnChange keeps the active button in step with the session's mode.
func (t *Toolbar) OnChange(c editor.Change) {
	if c.Kind == editor.ChangeMode {
		t.setActive(c.Mode)
	}
}

// Active returns the mode whose button is highlighted.
func (t *Toolbar) Active() editor.Mode {
	for m, b := range t.modes {
		if b.HasClass("active") {
			return m
		}
	}
	return editor.ModeTranslate
}

// Button returns the node for mode m.
func (t *Toolbar) Button(m editor.Mode) *Node {
	return t.modes[m]
}

// AppendNodes appends the toolbar's nodes to dst.
func (t *Toolbar) AppendNodes(dst []*Node) []*Node {
	dst = append(dst, t.panel)
	for _, m := range toolbarModes {
		dst = append(dst, t.modes[m])
	}
	return append(dst, t.actions...)
}

func (t *Toolbar) setActive(mode editor.Mode) {
	for m, b := range t.modes {
		if m == mode {
			b.Class = "tool active"
		} else {
			b.Class = "tool"
		}
	}
}
