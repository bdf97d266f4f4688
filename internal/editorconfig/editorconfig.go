package editorconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"scene-editor/internal/editor"
	"scene-editor/internal/pick"
	"scene-editor/internal/scene"
)

// DefaultPath is the editor config file, relative to the process working directory.
const DefaultPath = "config/editor.yaml"

// Highlight tunes the selected look.
type Highlight struct {
	Emissive     float32 `yaml:"emissive" validate:"gte=0,lte=1"`
	ColorDelta   float32 `yaml:"color_delta" validate:"gte=0,lte=1"`
	OutlineScale float32 `yaml:"outline_scale" validate:"gt=1,lte=2"`
}

// Prefs holds editor preferences (timers, highlight look, overlays, AI model). Persisted
// across runs. The scene itself lives in SceneFile.
type Prefs struct {
	SweepPeriod        time.Duration `yaml:"sweep_period" validate:"gte=10ms"`
	IndexRebuildPeriod time.Duration `yaml:"index_rebuild_period" validate:"gte=100ms"`
	IndexMode          string        `yaml:"index_mode" validate:"oneof=notify poll"`
	Highlight          Highlight     `yaml:"highlight"`
	MaxTraversalNodes  int           `yaml:"max_traversal_nodes" validate:"gte=16"`
	GridVisible        bool          `yaml:"grid_visible"`
	ShowFPS            bool          `yaml:"show_fps"`
	ShowMemAlloc       bool          `yaml:"show_memalloc"`
	AIModel            string        `yaml:"ai_model,omitempty"`
	AIProvider         string        `yaml:"ai_provider,omitempty" validate:"omitempty,oneof=openai groq ollama"`
	UIFont             string        `yaml:"ui_font,omitempty"`
	SceneFile          string        `yaml:"scene_file" validate:"required"`
}

// Default returns default preferences (grid on, overlays off).
func Default() Prefs {
	return Prefs{
		SweepPeriod:        500 * time.Millisecond,
		IndexRebuildPeriod: 2 * time.Second,
		IndexMode:          "notify",
		Highlight:          Highlight{Emissive: 0.5, ColorDelta: 0.2, OutlineScale: 1.03},
		MaxTraversalNodes:  scene.DefaultMaxNodes,
		GridVisible:        true,
		AIModel:            "gpt-4o-mini",
		SceneFile:          "scene/scene.yaml",
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks value ranges.
func (p Prefs) Validate() error {
	return validate.Struct(p)
}

// Load reads preferences from path. Keys missing from the file keep their defaults. A
// missing file gives Default() and no error; an unreadable or invalid file gives
// Default() and the error so the caller can report it.
func Load(path string) (Prefs, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("read %s: %w", path, err)
	}
	p := Default()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Default(), fmt.Errorf("parse %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Default(), fmt.Errorf("validate %s: %w", path, err)
	}
	return p, nil
}

// Save writes preferences to path, creating the directory if needed.
func Save(path string, p Prefs) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// EditorConfig converts the preferences into session tunables.
func (p Prefs) EditorConfig() editor.Config {
	return editor.Config{
		SweepPeriod:        p.SweepPeriod,
		IndexRebuildPeriod: p.IndexRebuildPeriod,
		IndexMode:          pick.ParseMode(p.IndexMode),
		Highlight: editor.HighlightConfig{
			Emissive:     p.Highlight.Emissive,
			ColorDelta:   p.Highlight.ColorDelta,
			OutlineScale: p.Highlight.OutlineScale,
		},
	}
}
