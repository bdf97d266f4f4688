package scene

import "errors"

var (
	// ErrNilNode is returned when a graph operation receives a nil node.
	ErrNilNode = errors.New("scene: nil node")

	// ErrCycle is returned when an operation would make a node its own ancestor, or a
	// traversal meets the same id twice.
	ErrCycle = errors.New("scene: cycle in node hierarchy")

	// ErrTraversalBound is returned when a traversal visits more nodes than the graph allows.
	ErrTraversalBound = errors.New("scene: traversal bound exceeded")

	// ErrDisposed is returned for operations on destroyed nodes.
	ErrDisposed = errors.New("scene: node disposed")

	// ErrRootImmutable is returned when trying to move, detach or destroy the root container.
	ErrRootImmutable = errors.New("scene: root container cannot be moved or removed")

	// ErrNotAttached is returned when a node has no path to the root.
	ErrNotAttached = errors.New("scene: node not attached to graph")
)
