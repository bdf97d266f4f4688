package editor

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"scene-editor/internal/scene"
)

// GroupOperator builds and dissolves groups while keeping world transforms fixed.
type GroupOperator struct {
	graph *scene.Graph
	log   *slog.Logger
}

// NewGroupOperator returns an operator for g.
func NewGroupOperator(g *scene.Graph, log *slog.Logger) *GroupOperator {
	if log == nil {
		log = slog.Default()
	}
	return &GroupOperator{graph: g, log: log}
}

// Group creates a group named name under the scene root, centred on the nodes, and
// moves the nodes into it. The selection is left to the caller.
func (o *GroupOperator) Group(nodes []*scene.Node, name string) (*scene.Node, error) {
	members := make([]*scene.Node, 0, len(nodes))
	seen := make(map[scene.NodeID]struct{}, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if _, dup := seen[n.ID()]; dup {
			continue
		}
		seen[n.ID()] = struct{}{}
		members = append(members, n)
	}
	if len(members) < 2 {
		return nil, ErrGroupTooFew
	}
	for _, n := range members {
		if n == o.graph.Root() || !o.graph.IsAttached(n) {
			return nil, fmt.Errorf("group %q: %s: %w", name, n.ID(), ErrNotAttached)
		}
	}
	for _, n := range members {
		for p, steps := n.Parent(), 0; p != nil && steps <= o.graph.MaxNodes(); p, steps = p.Parent(), steps+1 {
			if _, in := seen[p.ID()]; in {
				return nil, fmt.Errorf("group %q: %s is inside %s: %w", name, n.ID(), p.ID(), ErrNestedSelection)
			}
		}
	}

	if name == "" {
		name = "Group"
	}
	g := o.graph.NewNode(name, scene.KindGroup)
	var center rl.Vector3
	for _, n := range members {
		center = rl.Vector3Add(center, o.graph.WorldPosition(n))
	}
	g.Transform.Position = rl.Vector3Scale(center, 1/float32(len(members)))
	if err := o.graph.Add(o.graph.Root(), g); err != nil {
		return nil, fmt.Errorf("group %q: %w", name, err)
	}
	for _, n := range members {
		if err := o.graph.Reparent(n, g); err != nil {
			return g, fmt.Errorf("group %q: move %s: %w", name, n.ID(), err)
		}
	}
	o.log.Info("grouped nodes", "group", g.ID(), "name", name, "count", len(members))
	return g, nil
}

// Ungroup moves every child of g to g's parent, keeping world transforms, and destroys
// g. The caller clears the selection first.
func (o *GroupOperator) Ungroup(g *scene.Node) ([]*scene.Node, error) {
	if err := o.CheckUngroup(g); err != nil {
		return nil, err
	}

	parent := g.Parent()
	children := g.Children()
	freed := make([]*scene.Node, 0, len(children))
	for _, c := range children {
		if err := o.graph.Reparent(c, parent); err != nil {
			return freed, fmt.Errorf("ungroup %s: move %s: %w", g.ID(), c.ID(), err)
		}
		freed = append(freed, c)
	}
	if err := o.graph.Destroy(g); err != nil {
		return freed, fmt.Errorf("ungroup %s: %w", g.ID(), err)
	}
	o.log.Info("ungrouped", "group", g.ID(), "count", len(freed))
	return freed, nil
}

// CheckUngroup reports why g cannot be ungrouped, or nil.
func (o *GroupOperator) CheckUngroup(g *scene.Node) error {
	switch {
	case g == nil:
		return ErrNotGroup
	case g == o.graph.Root():
		return ErrUngroupRoot
	case g.Kind != scene.KindGroup:
		return fmt.Errorf("ungroup %s: %w", g.ID(), ErrNotGroup)
	case !o.graph.IsAttached(g):
		return fmt.Errorf("ungroup %s: %w", g.ID(), ErrNotAttached)
	case g.ChildCount() == 0:
		return fmt.Errorf("ungroup %s: %w", g.ID(), ErrEmptyGroup)
	}
	return nil
}
