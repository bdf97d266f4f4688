package commands

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"scene-editor/internal/editor"
	"scene-editor/internal/scene"
)

var errUnavailable = errors.New("not available in this build")

// Host is what the editor commands drive. Only Session is required; a nil hook makes its
// command report that it is unavailable.
type Host struct {
	Session  *editor.Session
	Out      func(line string)
	Save     func() error
	SetGrid  func(on bool)
	SetFPS   func(on bool)
	SetModel func(model string)
	SetFont  func(name string) error
}

func (h Host) print(format string, args ...any) {
	if h.Out != nil {
		h.Out(fmt.Sprintf(format, args...))
	}
}

// RegisterEditor adds the editor command set to r.
func RegisterEditor(r *Registry, h Host) {
	s := h.Session

	r.Register("mode", "mode translate|rotate|scale", nil, func(args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("mode: want one of translate, rotate, scale")
		}
		m, ok := editor.ParseMode(args[0])
		if !ok {
			return fmt.Errorf("mode: unknown mode %q", args[0])
		}
		s.SetMode(m)
		return nil
	})

	groupFlags := flag.NewFlagSet("group", flag.ContinueOnError)
	groupName := groupFlags.String("name", "", "group name")
	r.Register("group", "group [-name N]: group the selection", groupFlags, func([]string) error {
		g, err := s.Group(*groupName)
		*groupName = ""
		if err != nil {
			return err
		}
		h.print("grouped into %s", g.Name)
		return nil
	})

	r.Register("ungroup", "ungroup the selected group", nil, func([]string) error {
		return s.Ungroup()
	})

	r.Register("clear", "clear the selection", nil, func([]string) error {
		s.ClearSelection()
		return nil
	})

	selectFlags := flag.NewFlagSet("select", flag.ContinueOnError)
	selectAdd := selectFlags.Bool("add", false, "toggle into the current selection")
	r.Register("select", "select [-add] NAME...", selectFlags, func(args []string) error {
		additive := *selectAdd
		*selectAdd = false
		if len(args) == 0 {
			return fmt.Errorf("select: no names given")
		}
		nodes := make([]*scene.Node, 0, len(args))
		for _, name := range args {
			n := s.Graph().FindByName(name)
			if n == nil {
				return fmt.Errorf("select: no node named %q", name)
			}
			nodes = append(nodes, n)
		}
		for i, n := range nodes {
			s.Select(n, additive || i > 0)
		}
		return nil
	})

	spawnFlags := flag.NewFlagSet("spawn", flag.ContinueOnError)
	spawnShape := spawnFlags.String("shape", "cube", "cube, sphere, cylinder or plane")
	spawnName := spawnFlags.String("name", "", "node name")
	spawnAt := spawnFlags.String("at", "0,0,0", "position x,y,z")
	spawnScale := spawnFlags.String("scale", "1", "uniform scale or x,y,z")
	spawnColor := spawnFlags.String("color", "", "color r,g,b in 0..1")
	r.Register("spawn", "spawn [-shape S] [-name N] [-at x,y,z] [-scale s] [-color r,g,b]", spawnFlags, func([]string) error {
		defer func() {
			*spawnShape, *spawnName, *spawnAt, *spawnScale, *spawnColor = "cube", "", "0,0,0", "1", ""
		}()
		pos, err := ParseVec3(*spawnAt)
		if err != nil {
			return fmt.Errorf("spawn -at: %w", err)
		}
		scale, err := ParseVec3(*spawnScale)
		if err != nil {
			return fmt.Errorf("spawn -scale: %w", err)
		}
		spec := editor.MeshSpec{Name: *spawnName, Shape: *spawnShape, Position: pos, Scale: scale}
		if *spawnColor != "" {
			c, err := ParseVec3(*spawnColor)
			if err != nil {
				return fmt.Errorf("spawn -color: %w", err)
			}
			spec.Color = rl.NewVector4(c.X, c.Y, c.Z, 1)
		}
		n, err := s.Spawn(spec)
		if err != nil {
			return err
		}
		h.print("spawned %s", n.Name)
		return nil
	})

	r.Register("delete", "delete the selection", nil, func([]string) error {
		h.print("deleted %d node(s)", s.DeleteSelection())
		return nil
	})

	r.Register("save", "write the scene file", nil, func([]string) error {
		if h.Save == nil {
			return fmt.Errorf("save: %w", errUnavailable)
		}
		return h.Save()
	})

	r.Register("grid", "grid on|off", nil, toggle("grid", h.SetGrid))
	r.Register("fps", "fps on|off", nil, toggle("fps", h.SetFPS))

	r.Register("model", "model NAME: LLM model for natural-language edits", nil, func(args []string) error {
		if h.SetModel == nil {
			return fmt.Errorf("model: %w", errUnavailable)
		}
		if len(args) != 1 {
			return fmt.Errorf("model: want exactly one model name")
		}
		h.SetModel(args[0])
		h.print("model set to %s", args[0])
		return nil
	})

	r.Register("font", "font NAME: UI font from assets/fonts", nil, func(args []string) error {
		if h.SetFont == nil {
			return fmt.Errorf("font: %w", errUnavailable)
		}
		if len(args) == 0 {
			return fmt.Errorf("font: want a font name")
		}
		name := strings.Join(args, " ")
		if err := h.SetFont(name); err != nil {
			return fmt.Errorf("font: %w", err)
		}
		h.print("font set to %s", name)
		return nil
	})

	r.Register("help", "list commands", nil, func([]string) error {
		for _, line := range r.Help() {
			h.print("%s", line)
		}
		return nil
	})
}

func toggle(name string, set func(bool)) func(args []string) error {
	return func(args []string) error {
		if set == nil {
			return fmt.Errorf("%s: %w", name, errUnavailable)
		}
		if len(args) != 1 {
			return fmt.Errorf("%s: want on or off", name)
		}
		on, err := ParseSwitch(args[0])
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		set(on)
		return nil
	}
}

// ParseSwitch accepts on/off as well as anything strconv.ParseBool does.
func ParseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	return strconv.ParseBool(s)
}

// ParseVec3 reads "x,y,z". A single number is used for all three components.
func ParseVec3(s string) (rl.Vector3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 1 && len(parts) != 3 {
		return rl.Vector3{}, fmt.Errorf("want x,y,z, got %q", s)
	}
	var v [3]float32
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return rl.Vector3{}, err
		}
		v[i] = float32(f)
	}
	if len(parts) == 1 {
		v[1], v[2] = v[0], v[0]
	}
	return rl.NewVector3(v[0], v[1], v[2]), nil
}
