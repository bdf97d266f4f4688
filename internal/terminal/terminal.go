package terminal

import (
	"unicode/utf8"

	rl "github.com/gen2brain/raylib-go/raylib"

	"scene-editor/internal/commands"
	"scene-editor/internal/logger"
)

const (
	BarHeight = 40
	// When windowed, move bar up by this many pixels so it stays visible (avoids being cut off by taskbar/window bounds).
	WindowedBarOffset = 56
	// ToggleKey opens and closes the terminal. Escape belongs to the editor (clear selection).
	ToggleKey        = rl.KeyGrave
	prompt           = "> "
	fontSize         = 20
	padding          = 8
	maxLinesOnScreen = 14
	lineHeight       = fontSize + 4
	maxLineChars     = 200
)

var (
	termBarColor    = rl.NewColor(40, 40, 40, 255)
	termLineColor   = rl.NewColor(80, 80, 80, 255)
	termChatBgColor = rl.NewColor(24, 24, 24, 240)
)

// Terminal is the command bar at the bottom of the screen, toggled with ToggleKey.
// While it is open it owns the keyboard; the editor's shortcuts are suspended.
// Lines starting with "cmd " run through the command registry. Other lines go to
// OnNaturalLanguage on the main thread; GetViewContext, if set, describes the scene for it.
type Terminal struct {
	log               *logger.Logger
	reg               *commands.Registry
	inputBuf          string
	open              bool
	font              rl.Font
	GetViewContext    func() string
	OnNaturalLanguage func(line, viewContext string)
}

// New returns a closed Terminal that logs lines to log and runs "cmd ..." through reg.
func New(log *logger.Logger, reg *commands.Registry) *Terminal {
	return &Terminal{log: log, reg: reg}
}

// IsOpen reports whether the terminal is visible and capturing keys.
func (t *Terminal) IsOpen() bool {
	return t.open
}

// SetOpen shows or hides the terminal.
func (t *Terminal) SetOpen(open bool) {
	t.open = open
}

// Input returns the text typed so far.
func (t *Terminal) Input() string {
	return t.inputBuf
}

// SetFont sets the font used to draw the bar. Zero texture ID = raylib default.
func (t *Terminal) SetFont(font rl.Font) {
	t.font = font
}

// Update handles the toggle key and, when open, typing, paste, backspace and enter.
// Call once per frame before the editor polls its own input.
func (t *Terminal) Update() {
	if rl.IsKeyPressed(ToggleKey) {
		t.open = !t.open
		// Drain the grave character so it does not land in the buffer.
		for rl.GetCharPressed() != 0 {
		}
		return
	}
	if !t.open {
		return
	}
	if rl.IsKeyPressed(rl.KeyV) && (rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl) || rl.IsKeyDown(rl.KeyLeftSuper) || rl.IsKeyDown(rl.KeyRightSuper)) {
		t.Type(rl.GetClipboardText())
	} else {
		for {
			c := rl.GetCharPressed()
			if c == 0 {
				break
			}
			t.Type(string(rune(c)))
		}
	}
	if rl.IsKeyPressed(rl.KeyBackspace) {
		t.Backspace()
	}
	if rl.IsKeyPressed(rl.KeyEnter) || rl.IsKeyPressed(rl.KeyKpEnter) {
		t.Enter()
	}
}

// Type appends s to the input line.
func (t *Terminal) Type(s string) {
	t.inputBuf += s
}

// Backspace removes the last rune of the input line.
func (t *Terminal) Backspace() {
	if t.inputBuf == "" {
		return
	}
	_, size := utf8.DecodeLastRuneInString(t.inputBuf)
	t.inputBuf = t.inputBuf[:len(t.inputBuf)-size]
}

// Enter submits the input line.
func (t *Terminal) Enter() {
	if t.inputBuf == "" {
		return
	}
	line := t.inputBuf
	t.inputBuf = ""
	t.Submit(line)
}

// Submit logs line and dispatches it: commands run immediately, anything else goes to
// OnNaturalLanguage.
func (t *Terminal) Submit(line string) {
	t.log.Log(prompt + line)
	if args, isCmd := commands.Parse(line); isCmd {
		if err := t.reg.Execute(args); err != nil {
			t.log.Log(err.Error())
		}
		return
	}
	if t.OnNaturalLanguage == nil {
		t.log.Log("natural-language edits are not configured (set an API key)")
		return
	}
	viewCtx := ""
	if t.GetViewContext != nil {
		viewCtx = t.GetViewContext()
	}
	t.OnNaturalLanguage(line, viewCtx)
}

// Draw draws the bar and the most recent log lines above it when open.
func (t *Terminal) Draw() {
	if !t.open {
		return
	}
	screenW := int(rl.GetScreenWidth())
	screenH := int(rl.GetScreenHeight())
	barY := screenH - BarHeight
	if !rl.IsWindowFullscreen() {
		barY -= WindowedBarOffset
	}

	chatHeight := maxLinesOnScreen * lineHeight
	chatY := barY - chatHeight
	if chatY < 0 {
		chatHeight = barY
		chatY = 0
	}
	if chatHeight > 0 {
		rl.DrawRectangle(0, int32(chatY), int32(screenW), int32(chatHeight), termChatBgColor)
	}
	for i, line := range t.log.Tail(maxLinesOnScreen) {
		y := chatY + i*lineHeight + padding
		t.text(clip(line), padding, y, rl.LightGray)
	}

	rl.DrawRectangle(0, int32(barY), int32(screenW), int32(BarHeight), termBarColor)
	rl.DrawRectangle(0, int32(barY), int32(screenW), 1, termLineColor)
	t.text(prompt+t.inputBuf+"|", padding, barY+padding, rl.White)
}

func (t *Terminal) text(s string, x, y int, c rl.Color) {
	if t.font.Texture.ID != 0 {
		rl.DrawTextEx(t.font, s, rl.NewVector2(float32(x), float32(y)), fontSize, 1, c)
		return
	}
	rl.DrawText(s, int32(x), int32(y), fontSize, c)
}

func clip(line string) string {
	if len(line) <= maxLineChars {
		return line
	}
	return line[:maxLineChars-3] + "..."
}
