package agent

import (
	"fmt"
	"math"
	"math/rand/v2"

	rl "github.com/gen2brain/raylib-go/raylib"

	"scene-editor/internal/commands"
	"scene-editor/internal/editor"
	"scene-editor/internal/primitives"
	"scene-editor/internal/scene"
)

const maxBatch = 500

// RegisterSceneHandlers registers the scene-editing actions on a. reg may be nil, in
// which case run_cmd is not offered.
func RegisterSceneHandlers(a *Agent, s *editor.Session, reg *commands.Registry) {
	a.RegisterHandler("add_object", func(payload map[string]any) error {
		spec, err := meshSpec(payload)
		if err != nil {
			return err
		}
		spec.Name, _ = payload["name"].(string)
		if pos, err := parseFloat3(payload["position"]); err == nil {
			spec.Position = pos
		}
		_, err = s.Spawn(spec)
		return err
	})

	a.RegisterHandler("add_objects", func(payload map[string]any) error {
		shape := shapeOf(payload)
		randomShape := shape == "random" || shape == "any"
		if !randomShape && !primitives.Known(shape) {
			return fmt.Errorf("unknown shape %q (use cube, sphere, cylinder, plane, or random)", shape)
		}
		count := 1
		if n, ok := payload["count"].(float64); ok && n >= 1 {
			count = min(int(n), maxBatch)
		}
		spacing := float32(2)
		if v, err := parseFloat1(payload["spacing"]); err == nil && v > 0 {
			spacing = v
		}
		origin, _ := parseFloat3(payload["origin"])
		pattern, _ := payload["pattern"].(string)
		spec, err := meshSpec(map[string]any{"shape": "cube", "scale": payload["scale"], "color": payload["color"]})
		if err != nil {
			return err
		}
		for i := 0; i < count; i++ {
			spec.Position = layout(pattern, i, count, spacing, origin)
			spec.Shape = shape
			if randomShape {
				spec.Shape = primitives.Shapes[rand.IntN(len(primitives.Shapes))]
			}
			if _, err := s.Spawn(spec); err != nil {
				return err
			}
		}
		return nil
	})

	a.RegisterHandler("delete_object", func(payload map[string]any) error {
		n, err := lookup(s, payload)
		if err != nil {
			return err
		}
		return s.Destroy(n)
	})

	a.RegisterHandler("move_object", func(payload map[string]any) error {
		n, err := lookup(s, payload)
		if err != nil {
			return err
		}
		pos, err := parseFloat3(payload["position"])
		if err != nil {
			return fmt.Errorf("position: %w", err)
		}
		return s.MoveTo(n, pos)
	})

	a.RegisterHandler("select", func(payload map[string]any) error {
		nodes, err := lookupAll(s, payload["names"])
		if err != nil {
			return err
		}
		if len(nodes) == 0 {
			s.ClearSelection()
			return nil
		}
		additive := parseBoolOpt(payload["add"], false)
		for i, n := range nodes {
			extend := additive || i > 0
			// Selecting additively toggles, so a repeated or already selected name
			// would drop the node.
			if extend && s.Selection().Contains(n.ID()) {
				continue
			}
			s.Select(n, extend)
		}
		return nil
	})

	a.RegisterHandler("group", func(payload map[string]any) error {
		name, _ := payload["name"].(string)
		if payload["names"] == nil {
			_, err := s.Group(name)
			return err
		}
		nodes, err := lookupAll(s, payload["names"])
		if err != nil {
			return err
		}
		_, err = s.GroupNodes(nodes, name)
		return err
	})

	a.RegisterHandler("ungroup", func(payload map[string]any) error {
		if payload["name"] == nil {
			return s.Ungroup()
		}
		n, err := lookup(s, payload)
		if err != nil {
			return err
		}
		return s.UngroupNode(n)
	})

	if reg == nil {
		return
	}
	a.RegisterHandler("run_cmd", func(payload map[string]any) error {
		args, ok := payload["args"].([]any)
		if !ok || len(args) == 0 {
			return fmt.Errorf("missing or empty args")
		}
		strs := make([]string, 0, len(args))
		for _, v := range args {
			str, ok := v.(string)
			if !ok {
				return fmt.Errorf("args must be strings")
			}
			strs = append(strs, str)
		}
		return reg.Execute(strs)
	})
}

// layout places item i of count according to pattern: line, random (spread) or grid.
func layout(pattern string, i, count int, spacing float32, origin rl.Vector3) rl.Vector3 {
	switch pattern {
	case "line":
		return rl.NewVector3(origin.X+float32(i)*spacing, origin.Y, origin.Z)
	case "random", "spread":
		half := max(spacing*float32(count)/4, 5)
		return rl.NewVector3(
			origin.X+(rand.Float32()*2-1)*half,
			origin.Y,
			origin.Z+(rand.Float32()*2-1)*half,
		)
	default:
		cols := int(math.Ceil(math.Sqrt(float64(count))))
		row, col := i/cols, i%cols
		return rl.NewVector3(origin.X+float32(col)*spacing, origin.Y, origin.Z+float32(row)*spacing)
	}
}

func shapeOf(payload map[string]any) string {
	if shape, _ := payload["shape"].(string); shape != "" {
		return shape
	}
	if typ, _ := payload["type"].(string); typ != "" {
		return typ
	}
	return "cube"
}

func meshSpec(payload map[string]any) (editor.MeshSpec, error) {
	spec := editor.MeshSpec{Shape: shapeOf(payload)}
	if payload["scale"] != nil {
		if v, err := parseFloat1(payload["scale"]); err == nil {
			spec.Scale = rl.NewVector3(v, v, v)
		} else if v, err := parseFloat3(payload["scale"]); err == nil {
			spec.Scale = v
		} else {
			return spec, fmt.Errorf("scale: %w", err)
		}
	}
	if payload["color"] != nil {
		c, err := parseFloat3(payload["color"])
		if err != nil {
			return spec, fmt.Errorf("color: %w", err)
		}
		spec.Color = rl.NewVector4(c.X, c.Y, c.Z, 1)
	}
	return spec, nil
}

func lookup(s *editor.Session, payload map[string]any) (*scene.Node, error) {
	name, _ := payload["name"].(string)
	if name == "" {
		return nil, fmt.Errorf("missing name")
	}
	n := s.Graph().FindByName(name)
	if n == nil {
		return nil, fmt.Errorf("no object named %q", name)
	}
	return n, nil
}

func lookupAll(s *editor.Session, v any) ([]*scene.Node, error) {
	if v == nil {
		return nil, nil
	}
	names, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("names must be an array of strings")
	}
	nodes := make([]*scene.Node, 0, len(names))
	for _, raw := range names {
		n, err := lookup(s, map[string]any{"name": raw})
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func parseBoolOpt(v any, def bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

func parseFloat1(v any) (float32, error) {
	switch n := v.(type) {
	case float64:
		return float32(n), nil
	case float32:
		return n, nil
	case int:
		return float32(n), nil
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}

func parseFloat3(v any) (rl.Vector3, error) {
	arr, ok := v.([]any)
	if !ok || len(arr) != 3 {
		return rl.Vector3{}, fmt.Errorf("expected [x,y,z]")
	}
	var out [3]float32
	for i, e := range arr {
		f, err := parseFloat1(e)
		if err != nil {
			return rl.Vector3{}, err
		}
		out[i] = f
	}
	return rl.NewVector3(out[0], out[1], out[2]), nil
}
