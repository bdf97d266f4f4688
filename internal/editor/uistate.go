package editor

// Cursor is the shared pointer-style indicator.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorPointer        // hovering something selectable
	CursorCrosshair      // multi-select modifier held
	CursorMove           // hovering or dragging a gizmo handle
)

func (c Cursor) String() string {
	switch c {
	case CursorPointer:
		return "pointer"
	case CursorCrosshair:
		return "crosshair"
	case CursorMove:
		return "move"
	}
	return "default"
}

// UIState holds shared UI affordances. Only InputDispatcher writes it (the setters are
// unexported and called from input.go); renderers only read.
type UIState struct {
	cursor      Cursor
	multiSelect bool
}

// Cursor returns the cursor the viewport should show.
func (u *UIState) Cursor() Cursor {
	return u.cursor
}

// MultiSelect reports whether the multi-select modifier is held.
func (u *UIState) MultiSelect() bool {
	return u.multiSelect
}

func (u *UIState) setCursor(c Cursor) {
	u.cursor = c
}

func (u *UIState) setMultiSelect(on bool) {
	u.multiSelect = on
}
