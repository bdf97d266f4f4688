package scene

// Tags is the small flag set every node carries. The classifier predicates below are
// the only place tag semantics are decided.
type Tags uint8

const (
	TagSelectable Tags = 1 << iota
	TagHelper
	TagOutline
	TagGizmoInternal
)

// excluding tags disqualify a node from selection and picking regardless of TagSelectable.
const excluding = TagHelper | TagOutline | TagGizmoInternal

// Has reports whether all bits of t2 are set.
func (t Tags) Has(t2 Tags) bool {
	return t&t2 == t2
}

// With returns t with t2 set.
func (t Tags) With(t2 Tags) Tags {
	return t | t2
}

// Without returns t with t2 cleared.
func (t Tags) Without(t2 Tags) Tags {
	return t &^ t2
}

func (t Tags) String() string {
	if t == 0 {
		return "none"
	}
	names := []struct {
		tag  Tags
		name string
	}{
		{TagSelectable, "selectable"},
		{TagHelper, "helper"},
		{TagOutline, "outline"},
		{TagGizmoInternal, "gizmoInternal"},
	}
	out := ""
	for _, n := range names {
		if t.Has(n.tag) {
			if out != "" {
				out += "|"
			}
			out += n.name
		}
	}
	return out
}

// ParseTag maps a tag name (as produced by String) to its bit. ok is false for unknown names.
func ParseTag(name string) (Tags, bool) {
	switch name {
	case "selectable":
		return TagSelectable, true
	case "helper":
		return TagHelper, true
	case "outline":
		return TagOutline, true
	case "gizmoInternal":
		return TagGizmoInternal, true
	}
	return 0, false
}

// IsHelper reports whether n is an editor helper (overlays, grid, gizmo parts).
func IsHelper(n *Node) bool {
	return n != nil && n.Tags.Has(TagHelper)
}

// IsOutline reports whether n is a generated highlight overlay.
func IsOutline(n *Node) bool {
	return n != nil && n.Tags.Has(TagOutline)
}

// IsGizmoInternal reports whether n belongs to the transform widget.
func IsGizmoInternal(n *Node) bool {
	return n != nil && n.Tags.Has(TagGizmoInternal)
}

// IsSelectable reports whether n may enter the selection set. Helper, outline and
// gizmo-internal nodes are never selectable even if TagSelectable is set.
func IsSelectable(n *Node) bool {
	return n != nil && n.Tags.Has(TagSelectable) && n.Tags&excluding == 0
}

// IsPickCandidate reports whether n may be hit-tested at all.
func IsPickCandidate(n *Node) bool {
	return n != nil && n.Tags&excluding == 0
}
