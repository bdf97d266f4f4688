package editor

import "scene-editor/internal/scene"

// ChangeKind says what a Change is about.
type ChangeKind int

const (
	ChangeSelection ChangeKind = iota
	ChangeMode
	ChangeGizmo
	ChangeAdvisory
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeSelection:
		return "selection"
	case ChangeMode:
		return "mode"
	case ChangeGizmo:
		return "gizmo"
	case ChangeAdvisory:
		return "advisory"
	}
	return "unknown"
}

// Change is one entry of the notification stream the UI shell renders from (selection
// badge, mode buttons, status line). Every field reflects the state after the change.
type Change struct {
	Kind    ChangeKind
	Count   int
	Primary scene.NodeID
	Mode    Mode
	Gizmo   GizmoState
	Message string
}

type subscriber struct {
	id int
	fn func(Change)
}

// Notifier fans changes out to subscribers synchronously, on the caller's goroutine.
type Notifier struct {
	subs []subscriber
	next int
}

// Subscribe registers fn and returns a func that unregisters it.
func (n *Notifier) Subscribe(fn func(Change)) (cancel func()) {
	n.next++
	id := n.next
	n.subs = append(n.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range n.subs {
			if s.id == id {
				n.subs = append(n.subs[:i:i], n.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers c to every current subscriber in subscription order.
func (n *Notifier) Publish(c Change) {
	for _, s := range n.subs {
		s.fn(c)
	}
}
