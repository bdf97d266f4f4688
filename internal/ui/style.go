package ui

import (
	"strconv"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Rule is one selector with its declarations (raw strings).
type Rule struct {
	Selector string            // ".panel" or "#menu"
	Props    map[string]string // "background" -> "#333"
}

// Stylesheet is an ordered list of rules; later rules win.
type Stylesheet struct {
	Rules []Rule
}

// ComputedStyle holds resolved values used for drawing. LeftPct/TopPct are 0..100 for
// percentage positioning; -1 means Left/Top are pixels. Negative pixel Left/Top count
// from the right/bottom edge.
type ComputedStyle struct {
	Background rl.Color
	Color      rl.Color
	Border     rl.Color
	HasBorder  bool
	Width      int32
	Height     int32
	Left       int32
	Top        int32
	LeftPct    int32
	TopPct     int32
	Padding    int32
	FontSize   int32
	Hidden     bool
}

// DefaultComputedStyle returns a transparent, borderless, zero-size style with white text.
func DefaultComputedStyle() ComputedStyle {
	return ComputedStyle{
		Background: rl.NewColor(0, 0, 0, 0),
		Color:      rl.White,
		Border:     rl.Black,
		LeftPct:    -1,
		TopPct:     -1,
		Padding:    4,
		FontSize:   defaultFontSize,
	}
}

// ParseColor accepts #RGB, #RRGGBB, #RRGGBBAA and rgb()/rgba() with 0..255 channels and
// an alpha in 0..1.
func ParseColor(s string) (rl.Color, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(s, "rgb(") || strings.HasPrefix(s, "rgba("):
		return parseRGB(s)
	case s == "transparent":
		return rl.NewColor(0, 0, 0, 0), true
	}
	return rl.Black, false
}

func parseHex(hex string) (rl.Color, bool) {
	var v [4]uint8
	v[3] = 255
	switch len(hex) {
	case 3:
		for i := 0; i < 3; i++ {
			d, ok := hexDigit(hex[i])
			if !ok {
				return rl.Black, false
			}
			v[i] = d * 17
		}
	case 6, 8:
		for i := 0; i < len(hex)/2; i++ {
			hi, ok1 := hexDigit(hex[2*i])
			lo, ok2 := hexDigit(hex[2*i+1])
			if !ok1 || !ok2 {
				return rl.Black, false
			}
			v[i] = hi<<4 | lo
		}
	default:
		return rl.Black, false
	}
	return rl.NewColor(v[0], v[1], v[2], v[3]), true
}

func hexDigit(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	}
	return 0, false
}

func parseRGB(s string) (rl.Color, bool) {
	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return rl.Black, false
	}
	parts := strings.Split(s[open+1:end], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return rl.Black, false
	}
	var v [4]uint8
	v[3] = 255
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return rl.Black, false
		}
		if i == 3 {
			f *= 255
		}
		v[i] = uint8(min(max(f, 0), 255))
	}
	return rl.NewColor(v[0], v[1], v[2], v[3]), true
}

// ParsePx parses a number with an optional "px" suffix. Unitless is pixels.
func ParsePx(s string) (int32, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "px"))
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return int32(n), true
}

// ParsePct parses "N%" with N in 0..100.
func ParsePct(s string) (int32, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[len(s)-1] != '%' {
		return 0, false
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n < 0 || n > 100 {
		return 0, false
	}
	return int32(n), true
}

// ResolveProps builds a ComputedStyle from merged properties.
func ResolveProps(props map[string]string) ComputedStyle {
	out := DefaultComputedStyle()
	for k, v := range props {
		switch k {
		case "background", "background-color":
			if c, ok := ParseColor(v); ok {
				out.Background = c
			}
		case "color":
			if c, ok := ParseColor(v); ok {
				out.Color = c
			}
		case "border", "border-color":
			if c, ok := ParseColor(v); ok {
				out.Border = c
				out.HasBorder = true
			}
		case "width":
			if n, ok := ParsePx(v); ok {
				out.Width = n
			}
		case "height":
			if n, ok := ParsePx(v); ok {
				out.Height = n
			}
		case "left":
			if pct, ok := ParsePct(v); ok {
				out.LeftPct = pct
			} else if n, ok := ParsePx(v); ok {
				out.Left = n
			}
		case "top":
			if pct, ok := ParsePct(v); ok {
				out.TopPct = pct
			} else if n, ok := ParsePx(v); ok {
				out.Top = n
			}
		case "padding":
			if n, ok := ParsePx(v); ok && n >= 0 {
				out.Padding = n
			}
		case "font-size":
			if n, ok := ParsePx(v); ok && n > 0 {
				out.FontSize = n
			}
		case "display":
			out.Hidden = strings.TrimSpace(v) == "none"
		}
	}
	return out
}
