package ui

import (
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Node is a single UI element: panel, label or button. Class may hold several
// space-separated classes; Bounds is filled in by Engine.Layout.
type Node struct {
	Type    string
	Class   string
	ID      string
	Bounds  rl.Rectangle
	Text    string
	OnClick func()
}

// NewNode creates a node with type and optional class, id, and text.
func NewNode(typ, class, id, text string) *Node {
	return &Node{Type: typ, Class: class, ID: id, Text: text}
}

// HasClass reports whether c is one of the node's classes.
func (n *Node) HasClass(c string) bool {
	for _, have := range strings.Fields(n.Class) {
		if have == c {
			return true
		}
	}
	return false
}

func (n *Node) matches(sel string) bool {
	switch {
	case len(sel) < 2:
		return false
	case sel[0] == '.':
		return n.HasClass(sel[1:])
	case sel[0] == '#':
		return n.ID == sel[1:]
	}
	return false
}
