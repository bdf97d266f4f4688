package scene

import "fmt"

// DefaultMaxNodes bounds traversals when a graph is created without an explicit limit.
const DefaultMaxNodes = 100000

// Walk visits start and its descendants in pre-order using an explicit stack. fn returns
// false to skip a node's subtree. The scene graph is expected to be acyclic; Walk does not
// trust that and fails with ErrCycle if an id repeats, or ErrTraversalBound after
// maxNodes visits.
func Walk(start *Node, maxNodes int, fn func(n *Node) bool) error {
	if start == nil {
		return nil
	}
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}
	visited := make(map[NodeID]struct{})
	stack := []*Node{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[n.id]; seen {
			return fmt.Errorf("walk %s: %w", n.id, ErrCycle)
		}
		visited[n.id] = struct{}{}
		if len(visited) > maxNodes {
			return fmt.Errorf("walk from %s: %w", start.id, ErrTraversalBound)
		}
		if !fn(n) {
			continue
		}
		// Push in reverse so children pop in declaration order.
		for i := len(n.children) - 1; i >= 0; i-- {
			stack = append(stack, n.children[i])
		}
	}
	return nil
}

// Descendants returns every node below start (start excluded) that satisfies keep,
// in pre-order. Subtrees whose root fails prune are skipped; pass nil to descend everywhere.
func Descendants(start *Node, maxNodes int, prune func(n *Node) bool, keep func(n *Node) bool) ([]*Node, error) {
	var out []*Node
	err := Walk(start, maxNodes, func(n *Node) bool {
		if n == start {
			return true
		}
		if prune != nil && prune(n) {
			return false
		}
		if keep == nil || keep(n) {
			out = append(out, n)
		}
		return true
	})
	return out, err
}
