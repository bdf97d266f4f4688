package viewport

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"scene-editor/internal/editor"
)

// Bindings maps raylib key codes to editor keys.
var Bindings = map[int32]editor.Key{
	rl.KeyW:      editor.KeyTranslate,
	rl.KeyE:      editor.KeyRotate,
	rl.KeyR:      editor.KeyScale,
	rl.KeyEscape: editor.KeyClear,
	rl.KeyG:      editor.KeyGroup,
	rl.KeyU:      editor.KeyUngroup,
	rl.KeyDelete: editor.KeyDelete,
}

// Dispatcher receives decoded input. *editor.InputDispatcher implements it.
type Dispatcher interface {
	PointerDown(ev editor.PointerEvent)
	PointerMove(ev editor.PointerEvent)
	PointerUp(ev editor.PointerEvent)
	KeyDown(k editor.Key)
	KeyUp(k editor.Key)
}

// Overlay is 2D UI drawn over the viewport. Click reports whether it consumed the press.
type Overlay interface {
	Click(pt rl.Vector2) bool
}

// Frame is one frame of raw input state.
type Frame struct {
	Mouse            rl.Vector2 // pixels
	MouseDelta       rl.Vector2
	Wheel            float32
	PrimaryPressed   bool
	PrimaryReleased  bool
	SecondaryPressed bool
	MiddleDown       bool
	ShiftDown        bool
	Pressed          []int32 // key codes pressed this frame
}

// ReadFrame samples raylib's input state.
func ReadFrame() Frame {
	f := Frame{
		Mouse:            rl.GetMousePosition(),
		MouseDelta:       rl.GetMouseDelta(),
		Wheel:            rl.GetMouseWheelMove(),
		PrimaryPressed:   rl.IsMouseButtonPressed(rl.MouseButtonLeft),
		PrimaryReleased:  rl.IsMouseButtonReleased(rl.MouseButtonLeft),
		SecondaryPressed: rl.IsMouseButtonPressed(rl.MouseButtonRight),
		MiddleDown:       rl.IsMouseButtonDown(rl.MouseButtonMiddle),
		ShiftDown:        rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift),
	}
	for code := range Bindings {
		if rl.IsKeyPressed(code) {
			f.Pressed = append(f.Pressed, code)
		}
	}
	return f
}

// Input turns raw frames into camera navigation and editor events. While
// KeyboardBlocked reports true (the terminal is open) keys are not forwarded.
type Input struct {
	KeyboardBlocked func() bool

	vp        *Viewport
	d         Dispatcher
	overlay   Overlay
	lastMouse rl.Vector2
	shift     bool
	pressed   bool
}

// NewInput wires vp, the dispatcher and an optional overlay.
func NewInput(vp *Viewport, d Dispatcher, overlay Overlay) *Input {
	return &Input{vp: vp, d: d, overlay: overlay, lastMouse: rl.NewVector2(-1, -1)}
}

// Poll reads this frame's raylib input and applies it.
func (in *Input) Poll() {
	in.Apply(ReadFrame())
}

// Normalize converts a pixel position to 0..1 viewport coordinates.
func (v *Viewport) Normalize(px rl.Vector2) rl.Vector2 {
	return rl.NewVector2(px.X/float32(v.width), px.Y/float32(v.height))
}

// Apply feeds one frame of input.
func (in *Input) Apply(f Frame) {
	blocked := in.KeyboardBlocked != nil && in.KeyboardBlocked()
	shift := f.ShiftDown && !blocked
	if shift != in.shift {
		in.shift = shift
		if shift {
			in.d.KeyDown(editor.KeyModifier)
		} else {
			in.d.KeyUp(editor.KeyModifier)
		}
	}
	if !blocked {
		for _, code := range f.Pressed {
			if k, ok := Bindings[code]; ok {
				in.d.KeyDown(k)
			}
		}
	}

	if f.MiddleDown {
		if shift {
			in.vp.Pan(f.MouseDelta.X, f.MouseDelta.Y)
		} else {
			in.vp.Orbit(f.MouseDelta.X, f.MouseDelta.Y)
		}
	}
	in.vp.Zoom(f.Wheel)

	pos := in.vp.Normalize(f.Mouse)
	if f.PrimaryPressed && (in.overlay == nil || !in.overlay.Click(f.Mouse)) {
		in.pressed = true
		in.d.PointerDown(editor.PointerEvent{Pos: pos, Button: editor.ButtonPrimary, Modifier: shift})
	}
	if f.SecondaryPressed {
		in.d.PointerDown(editor.PointerEvent{Pos: pos, Button: editor.ButtonSecondary, Modifier: shift})
	}
	if f.Mouse != in.lastMouse {
		in.lastMouse = f.Mouse
		in.d.PointerMove(editor.PointerEvent{Pos: pos, Modifier: shift})
	}
	if f.PrimaryReleased && in.pressed {
		in.pressed = false
		in.d.PointerUp(editor.PointerEvent{Pos: pos, Button: editor.ButtonPrimary, Modifier: shift})
	}
}
