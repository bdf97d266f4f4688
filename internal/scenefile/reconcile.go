package scenefile

import (
	"errors"
	"fmt"

	"scene-editor/internal/scene"
)

// ErrIDConflict is returned when a document id names an editor-owned node.
var ErrIDConflict = errors.New("id belongs to an editor node")

// Stats counts what Reconcile changed.
type Stats struct {
	Created   int
	Updated   int
	Destroyed int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d created, %d updated, %d destroyed", s.Created, s.Updated, s.Destroyed)
}

// Reconcile makes g match doc. Nodes are matched by id: existing ones are updated in
// place (and moved when their parent differs), missing ones are created, and user nodes
// absent from doc are destroyed. Helper, outline and gizmo subtrees are left alone.
//
// Transforms are written directly; no transform-commit notifications fire, so a reload
// never reads as a user edit.
func Reconcile(g *scene.Graph, doc Document) (Stats, error) {
	var st Stats
	keep := make(map[scene.NodeID]struct{})
	if err := reconcileChildren(g, g.Root(), doc.Nodes, keep, &st); err != nil {
		return st, err
	}

	var stale []*scene.Node
	err := scene.Walk(g.Root(), g.MaxNodes(), func(n *scene.Node) bool {
		if n == g.Root() {
			return true
		}
		if !scene.IsPickCandidate(n) {
			return false
		}
		if _, ok := keep[n.ID()]; !ok {
			stale = append(stale, n)
			return false
		}
		return true
	})
	if err != nil {
		return st, err
	}
	for _, n := range stale {
		if n.Disposed() {
			continue
		}
		if err := g.Destroy(n); err != nil {
			return st, fmt.Errorf("destroy %s: %w", n.ID(), err)
		}
		st.Destroyed++
	}
	return st, nil
}

// reconcileChildren runs top-down so a parent is already in place before its children
// are moved under it; that order keeps every Add cycle-free.
func reconcileChildren(g *scene.Graph, parent *scene.Node, docs []NodeDoc, keep map[scene.NodeID]struct{}, st *Stats) error {
	for i := range docs {
		d := &docs[i]
		id := scene.NodeID(d.ID)
		n, ok := g.Lookup(id)
		switch {
		case ok && !scene.IsPickCandidate(n):
			return fmt.Errorf("node %s: %w", id, ErrIDConflict)
		case ok:
			st.Updated++
		default:
			n = g.NewNodeWithID(id, d.Name, scene.ParseKind(d.Kind))
			st.Created++
		}
		apply(n, d)
		if n.Parent() != parent {
			if err := g.Add(parent, n); err != nil {
				return fmt.Errorf("place %s: %w", id, err)
			}
		}
		keep[id] = struct{}{}
		if err := reconcileChildren(g, n, d.Children, keep, st); err != nil {
			return err
		}
	}
	return nil
}
