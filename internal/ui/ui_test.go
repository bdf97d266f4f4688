package ui

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-editor/internal/editor"
	"scene-editor/internal/scene"
)

func TestParseCSS(t *testing.T) {
	sheet, err := ParseCSS(`
/* theme */
.panel { background: #333; width: 120px }
#main, .menu { color: #ff0000; left: 50%; }
@media screen { .ignored { color: #fff; } }
div { color: #000; }
.a .b { color: #000; }
.panel { width: 80px; }
`)
	require.NoError(t, err)

	var selectors []string
	for _, r := range sheet.Rules {
		selectors = append(selectors, r.Selector)
	}
	assert.Equal(t, []string{".panel", "#main", ".menu", ".panel"}, selectors)
	assert.Equal(t, "#333", sheet.Rules[0].Props["background"])
	assert.Equal(t, "120px", sheet.Rules[0].Props["width"])
	assert.Equal(t, "50%", sheet.Rules[2].Props["left"])
}

func TestDefaultThemeParses(t *testing.T) {
	sheet, err := ParseCSS(DefaultCSS)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(sheet.Rules), 10)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want rl.Color
		ok   bool
	}{
		{"#fff", rl.NewColor(255, 255, 255, 255), true},
		{"#3D6FD9", rl.NewColor(0x3d, 0x6f, 0xd9, 255), true},
		{"#11223344", rl.NewColor(0x11, 0x22, 0x33, 0x44), true},
		{"rgb(10, 20, 30)", rl.NewColor(10, 20, 30, 255), true},
		{"rgba(10,20,30,0.5)", rl.NewColor(10, 20, 30, 127), true},
		{"transparent", rl.NewColor(0, 0, 0, 0), true},
		{"#12", rl.Black, false},
		{"#zzz", rl.Black, false},
		{"red", rl.Black, false},
	}
	for _, tt := range tests {
		got, ok := ParseColor(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestResolveProps(t *testing.T) {
	st := ResolveProps(map[string]string{
		"background": "#000", "border": "#fff", "width": "10px", "height": "20",
		"left": "25%", "top": "-8px", "font-size": "14px", "display": "none",
	})
	assert.True(t, st.HasBorder)
	assert.Equal(t, int32(10), st.Width)
	assert.Equal(t, int32(20), st.Height)
	assert.Equal(t, int32(25), st.LeftPct)
	assert.Equal(t, int32(-1), st.TopPct)
	assert.Equal(t, int32(-8), st.Top)
	assert.Equal(t, int32(14), st.FontSize)
	assert.True(t, st.Hidden)
}

func TestLayoutAndClick(t *testing.T) {
	sheet, err := ParseCSS(`
.btn { width: 100px; height: 20px; left: 10px; top: 10px; }
#right { left: -10px; }
#center { left: 50%; top: 50%; }
`)
	require.NoError(t, err)
	e := New()
	e.SetStylesheet(sheet)

	var clicked []string
	left := NewNode("button", "btn", "left", "L")
	left.OnClick = func() { clicked = append(clicked, "left") }
	right := NewNode("button", "btn", "right", "R")
	right.OnClick = func() { clicked = append(clicked, "right") }
	center := NewNode("panel", "btn", "center", "")
	e.SetNodes([]*Node{left, right, center})
	e.Layout(800, 600)

	assert.Equal(t, rl.NewRectangle(10, 10, 100, 20), left.Bounds)
	assert.Equal(t, rl.NewRectangle(690, 10, 100, 20), right.Bounds)
	assert.Equal(t, rl.NewRectangle(350, 290, 100, 20), center.Bounds)

	assert.True(t, e.Click(rl.NewVector2(20, 15)))
	assert.True(t, e.Click(rl.NewVector2(700, 15)))
	assert.False(t, e.Click(rl.NewVector2(400, 300)), "panels without OnClick do not take clicks")
	assert.Equal(t, []string{"left", "right"}, clicked)
}

func TestStyleCacheFollowsClassChanges(t *testing.T) {
	sheet, err := ParseCSS(`.tool { color: #111; } .active { color: #fff; }`)
	require.NoError(t, err)
	e := New()
	e.SetStylesheet(sheet)
	n := NewNode("button", "tool", "", "")

	assert.Equal(t, rl.NewColor(0x11, 0x11, 0x11, 255), e.Style(n).Color)
	n.Class = "tool active"
	assert.Equal(t, rl.NewColor(255, 255, 255, 255), e.Style(n).Color)
}

type fakeActions struct {
	mode     editor.Mode
	groups   int
	ungroups int
	clears   int
}

func (f *fakeActions) SetMode(m editor.Mode)             { f.mode = m }
func (f *fakeActions) Group(string) (*scene.Node, error) { f.groups++; return nil, nil }
func (f *fakeActions) Ungroup() error                    { f.ungroups++; return nil }
func (f *fakeActions) ClearSelection()                   { f.clears++ }

func TestToolbarButtonsAndActiveState(t *testing.T) {
	a := &fakeActions{}
	tb := NewToolbar(a)
	assert.Equal(t, editor.ModeTranslate, tb.Active())

	nodes := tb.AppendNodes(nil)
	require.Len(t, nodes, 7)

	tb.Button(editor.ModeRotate).OnClick()
	assert.Equal(t, editor.ModeRotate, a.mode)
	for _, n := range nodes {
		if n.ID == "tool-group" || n.ID == "tool-ungroup" || n.ID == "tool-clear" {
			n.OnClick()
		}
	}
	assert.Equal(t, 1, a.groups)
	assert.Equal(t, 1, a.ungroups)
	assert.Equal(t, 1, a.clears)

	tb.OnChange(editor.Change{Kind: editor.ChangeMode, Mode: editor.ModeScale})
	assert.Equal(t, editor.ModeScale, tb.Active())
	assert.True(t, tb.Button(editor.ModeScale).HasClass("active"))
	assert.False(t, tb.Button(editor.ModeTranslate).HasClass("active"))
}

func TestToolbarDrivesSession(t *testing.T) {
	g := scene.New()
	s := editor.NewSession(g, editor.Options{Config: editor.DefaultConfig()})
	t.Cleanup(s.Close)
	tb := NewToolbar(s)
	cancel := s.Subscribe(tb.OnChange)
	defer cancel()

	tb.Button(editor.ModeRotate).OnClick()
	assert.Equal(t, editor.ModeRotate, s.Mode())
	assert.Equal(t, editor.ModeRotate, tb.Active())
}

func TestInspector(t *testing.T) {
	g := scene.New()
	grp := g.NewNode("Rack", scene.KindGroup)
	grp.Transform.Position = rl.NewVector3(1, 2, 3)
	require.NoError(t, g.Add(g.Root(), grp))
	require.NoError(t, g.Add(grp, g.NewNode("Box", scene.KindMesh)))

	sel := Inspect(g, grp, 2)
	in := NewInspector()
	assert.Empty(t, in.AppendNodes(nil, false, sel))

	nodes := in.AppendNodes(nil, true, sel)
	require.Len(t, nodes, 8)
	texts := map[string]string{}
	for _, n := range nodes {
		texts[n.ID] = n.Text
	}
	assert.Equal(t, "Name: Rack", texts["inspector-name"])
	assert.Equal(t, "Kind: group (1 children)", texts["inspector-kind"])
	assert.Equal(t, "Position: 1.00, 2.00, 3.00", texts["inspector-position"])
	assert.Equal(t, "Rotation: 0.0, 0.0, 0.0", texts["inspector-rotation"])
	assert.Equal(t, "Selected: 2", texts["inspector-count"])
}
