package editor

import "errors"

// Structural rejections. They are returned to the caller, logged, and published as an
// advisory change; none of them is fatal.
var (
	// ErrGroupTooFew is returned when grouping fewer than two nodes.
	ErrGroupTooFew = errors.New("group needs at least two nodes")

	// ErrNestedSelection is returned when one node to group is an ancestor of another.
	ErrNestedSelection = errors.New("cannot group a node together with its ancestor")

	// ErrNotGroup is returned when ungrouping something that is not a group node.
	ErrNotGroup = errors.New("node is not a group")

	// ErrUngroupRoot is returned when ungrouping the permanent scene container.
	ErrUngroupRoot = errors.New("cannot ungroup the scene root")

	// ErrEmptyGroup is returned when ungrouping a group without children.
	ErrEmptyGroup = errors.New("group has no children")

	// ErrNotAttached is returned when an operation names a node outside the graph.
	ErrNotAttached = errors.New("node is not attached to the scene")

	// ErrUnknownShape is returned when spawning a mesh with a shape the renderer lacks.
	ErrUnknownShape = errors.New("unknown mesh shape")

	// ErrEditorOwned is returned when an operation names a helper, outline or gizmo node.
	ErrEditorOwned = errors.New("node belongs to the editor")

	// ErrSessionClosed is returned by session operations after Close.
	ErrSessionClosed = errors.New("editor session closed")
)
