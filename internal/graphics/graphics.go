package graphics

import rl "github.com/gen2brain/raylib-go/raylib"

// Config describes the window.
type Config struct {
	Title      string
	Width      int32 // 0 = monitor width
	Height     int32 // 0 = monitor height
	Fullscreen bool
	TargetFPS  int32
	Background rl.Color
}

// DefaultConfig is a resizable 1600x900 window at 60 FPS.
func DefaultConfig() Config {
	return Config{
		Title:      "scene editor",
		Width:      1600,
		Height:     900,
		TargetFPS:  60,
		Background: rl.NewColor(30, 31, 36, 255),
	}
}

// Run opens the window and drives the main loop: update, then draw between
// BeginDrawing/EndDrawing. It returns when the window is closed or update reports
// false; teardown, if set, runs while the GL context still exists.
func Run(cfg Config, update func() bool, draw func(), teardown func()) {
	flags := uint32(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	if cfg.Fullscreen {
		flags |= rl.FlagFullscreenMode
	}
	rl.SetConfigFlags(flags)
	w, h := cfg.Width, cfg.Height
	if w == 0 || h == 0 {
		w, h = int32(rl.GetMonitorWidth(0)), int32(rl.GetMonitorHeight(0))
	}
	rl.InitWindow(w, h, cfg.Title)
	defer rl.CloseWindow()

	// Escape clears the selection; quitting goes through the window button.
	rl.SetExitKey(rl.KeyNull)
	rl.SetTargetFPS(cfg.TargetFPS)

	for !rl.WindowShouldClose() {
		if !update() {
			break
		}
		rl.BeginDrawing()
		rl.ClearBackground(cfg.Background)
		draw()
		rl.EndDrawing()
	}
	if teardown != nil {
		teardown()
	}
}
