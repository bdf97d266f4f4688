package ui

import (
	"fmt"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const defaultFontSize = 20

type cachedStyle struct {
	key   string
	style ComputedStyle
}

// Engine holds the stylesheet and nodes and draws them with raylib in node order.
// Styles are cached per node and recomputed only when the sheet or a node's class/id
// changes.
type Engine struct {
	sheet  *Stylesheet
	nodes  []*Node
	styles map[*Node]cachedStyle
	font   rl.Font
}

// New creates an empty UI engine.
func New() *Engine {
	return &Engine{styles: make(map[*Node]cachedStyle)}
}

// LoadCSS parses the file at path and replaces the stylesheet.
func (e *Engine) LoadCSS(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	sheet, err := ParseCSS(string(data))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	e.SetStylesheet(sheet)
	return nil
}

// SetStylesheet replaces the stylesheet.
func (e *Engine) SetStylesheet(sheet *Stylesheet) {
	e.sheet = sheet
	clear(e.styles)
}

// Stylesheet returns the current stylesheet (may be nil).
func (e *Engine) Stylesheet() *Stylesheet {
	return e.sheet
}

// LoadFont loads a TTF font for text. Call after the window exists. On failure the
// default font stays in use.
func (e *Engine) LoadFont(path string) error {
	f := rl.LoadFont(path)
	if f.Texture.ID == 0 {
		return os.ErrNotExist
	}
	e.UnloadFont()
	e.font = f
	return nil
}

// Font returns the loaded font, or the zero Font when the raylib default is in use.
func (e *Engine) Font() rl.Font {
	return e.font
}

// UnloadFont releases a loaded font.
func (e *Engine) UnloadFont() {
	if e.font.Texture.ID != 0 {
		rl.UnloadFont(e.font)
		e.font = rl.Font{}
	}
}

// SetNodes replaces the node list for the next Layout/Draw.
func (e *Engine) SetNodes(nodes []*Node) {
	e.nodes = nodes
}

// Style returns n's computed style.
func (e *Engine) Style(n *Node) ComputedStyle {
	key := n.Class + "#" + n.ID
	if c, ok := e.styles[n]; ok && c.key == key {
		return c.style
	}
	merged := make(map[string]string)
	if e.sheet != nil {
		for _, rule := range e.sheet.Rules {
			if n.matches(rule.Selector) {
				for k, v := range rule.Props {
					merged[k] = v
				}
			}
		}
	}
	style := ResolveProps(merged)
	e.styles[n] = cachedStyle{key: key, style: style}
	return style
}

// Layout sets every node's Bounds for a screen of the given size.
func (e *Engine) Layout(screenW, screenH int32) {
	for _, n := range e.nodes {
		st := e.Style(n)
		w, h := st.Width, st.Height
		x, y := st.Left, st.Top
		if st.LeftPct >= 0 {
			x = (screenW - w) * st.LeftPct / 100
		} else if x < 0 {
			x = screenW - w + x
		}
		if st.TopPct >= 0 {
			y = (screenH - h) * st.TopPct / 100
		} else if y < 0 {
			y = screenH - h + y
		}
		n.Bounds = rl.NewRectangle(float32(x), float32(y), float32(w), float32(h))
	}
}

// Click runs the OnClick of the topmost visible clickable node under pt. It reports
// whether a node took the click. Call after Layout.
func (e *Engine) Click(pt rl.Vector2) bool {
	n := e.NodeAt(pt)
	if n == nil || n.OnClick == nil {
		return false
	}
	n.OnClick()
	return true
}

// NodeAt returns the topmost visible node containing pt that has an OnClick, or nil.
func (e *Engine) NodeAt(pt rl.Vector2) *Node {
	for i := len(e.nodes) - 1; i >= 0; i-- {
		n := e.nodes[i]
		if n.OnClick == nil || e.Style(n).Hidden {
			continue
		}
		if rl.CheckCollisionPointRec(pt, n.Bounds) {
			return n
		}
	}
	return nil
}

// Draw lays out and draws all nodes: background, 1px border, then text.
func (e *Engine) Draw() {
	e.Layout(int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight()))
	for _, n := range e.nodes {
		st := e.Style(n)
		if st.Hidden {
			continue
		}
		x, y := int32(n.Bounds.X), int32(n.Bounds.Y)
		w, h := int32(n.Bounds.Width), int32(n.Bounds.Height)
		if st.Background.A > 0 && w > 0 && h > 0 {
			rl.DrawRectangle(x, y, w, h, st.Background)
		}
		if st.HasBorder && w > 0 && h > 0 {
			rl.DrawRectangleLines(x, y, w, h, st.Border)
		}
		if n.Text == "" {
			continue
		}
		tx, ty := x+st.Padding, y+st.Padding
		if e.font.Texture.ID != 0 {
			rl.DrawTextEx(e.font, n.Text, rl.NewVector2(float32(tx), float32(ty)), float32(st.FontSize), 1, st.Color)
		} else {
			rl.DrawText(n.Text, tx, ty, st.FontSize, st.Color)
		}
	}
}
