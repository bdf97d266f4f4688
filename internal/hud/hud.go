package hud

import (
	"fmt"
	"runtime"

	rl "github.com/gen2brain/raylib-go/raylib"

	"scene-editor/internal/editor"
	"scene-editor/internal/scene"
)

const (
	fontSize   = 20
	padding    = 12
	lineHeight = fontSize + 4
	// updateInterval: only refresh FPS/Mem text every N frames to reduce allocations.
	updateInterval = 30
	advisoryFrames = 180
)

var advisoryColor = rl.NewColor(255, 170, 60, 255)

// Resolver maps a node id to a display name.
type Resolver func(id scene.NodeID) string

// HUD draws the overlay text: FPS and heap in the top-right, the selection badge and the
// last refused operation in the top-left. Badge text only changes when the editor
// publishes a change.
type HUD struct {
	ShowFPS      bool
	ShowMemAlloc bool

	font       rl.Font
	resolve    Resolver
	frameCount uint32
	fpsText    string
	memText    string
	memStats   runtime.MemStats

	badge        string
	modeText     string
	advisory     string
	advisoryLeft int
}

// New returns a HUD with FPS and memory hidden. resolve may be nil.
func New(resolve Resolver) *HUD {
	h := &HUD{resolve: resolve}
	h.OnChange(editor.Change{Kind: editor.ChangeSelection})
	h.OnChange(editor.Change{Kind: editor.ChangeMode, Mode: editor.ModeTranslate})
	return h
}

// SetFont sets the overlay font. Zero texture ID = raylib default.
func (h *HUD) SetFont(font rl.Font) {
	h.font = font
}

// OnChange updates the cached text for c. Subscribe it to the session's change stream.
func (h *HUD) OnChange(c editor.Change) {
	switch c.Kind {
	case editor.ChangeSelection:
		h.badge = h.selectionText(c)
	case editor.ChangeMode:
		h.modeText = "Mode: " + c.Mode.String()
	case editor.ChangeAdvisory:
		h.advisory = c.Message
		h.advisoryLeft = advisoryFrames
	}
}

// Badge returns the selection badge text.
func (h *HUD) Badge() string {
	return h.badge
}

// ModeText returns the transform mode line.
func (h *HUD) ModeText() string {
	return h.modeText
}

// Advisory returns the last refused-operation message while it is still on screen.
func (h *HUD) Advisory() string {
	if h.advisoryLeft <= 0 {
		return ""
	}
	return h.advisory
}

func (h *HUD) selectionText(c editor.Change) string {
	switch {
	case c.Count == 0:
		return "Nothing selected"
	case c.Count == 1:
		return "1 selected: " + h.name(c.Primary)
	default:
		return fmt.Sprintf("%d selected, primary: %s", c.Count, h.name(c.Primary))
	}
}

func (h *HUD) name(id scene.NodeID) string {
	if h.resolve != nil {
		if n := h.resolve(id); n != "" {
			return n
		}
	}
	return string(id)
}

// Draw renders the overlay. Call after the scene and before the terminal.
func (h *HUD) Draw() {
	h.frameCount++
	if h.advisoryLeft > 0 {
		h.advisoryLeft--
	}
	update := h.frameCount%updateInterval == 0 ||
		(h.ShowFPS && h.fpsText == "") || (h.ShowMemAlloc && h.memText == "")

	y := int32(padding)
	h.text(h.badge, padding, y, rl.RayWhite)
	y += lineHeight
	h.text(h.modeText, padding, y, rl.LightGray)
	if msg := h.Advisory(); msg != "" {
		y += lineHeight
		h.text(msg, padding, y, advisoryColor)
	}

	screenW := int32(rl.GetScreenWidth())
	y = padding
	if h.ShowFPS {
		if update {
			h.fpsText = fmt.Sprintf("FPS: %d", rl.GetFPS())
		}
		h.rightText(h.fpsText, screenW, y)
		y += lineHeight
	}
	if h.ShowMemAlloc {
		if update {
			runtime.ReadMemStats(&h.memStats)
			h.memText = fmt.Sprintf("Mem: %.2f MiB", float64(h.memStats.Alloc)/(1024*1024))
		}
		h.rightText(h.memText, screenW, y)
	}
}

func (h *HUD) text(s string, x, y int32, c rl.Color) {
	if h.font.Texture.ID != 0 {
		rl.DrawTextEx(h.font, s, rl.NewVector2(float32(x), float32(y)), fontSize, 1, c)
		return
	}
	rl.DrawText(s, x, y, fontSize, c)
}

func (h *HUD) rightText(s string, screenW, y int32) {
	if s == "" {
		return
	}
	var w int32
	if h.font.Texture.ID != 0 {
		w = int32(rl.MeasureTextEx(h.font, s, fontSize, 1).X)
	} else {
		w = rl.MeasureText(s, fontSize)
	}
	h.text(s, screenW-w-padding, y, rl.Green)
}
