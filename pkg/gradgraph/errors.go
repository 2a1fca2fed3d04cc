// Package gradgraph provides a reverse-mode automatic-differentiation engine
// over scalar computation graphs.
package gradgraph

import (
	"errors"
	"fmt"
)

// Sentinel errors for graph building and registration.
var (
	// ErrGraphFrozen indicates a node registration was attempted after the
	// topological order was computed.
	ErrGraphFrozen = errors.New("graph is frozen: topological order already computed")

	// ErrNilGraph indicates a node constructor was called on a nil graph.
	ErrNilGraph = errors.New("graph is nil")

	// ErrDetachedNode indicates a zero Node handle was used as an input.
	ErrDetachedNode = errors.New("node is not attached to a graph")

	// ErrForeignNode indicates an input node belongs to a different graph.
	ErrForeignNode = errors.New("node belongs to a different graph")

	// ErrDuplicateName indicates a node name is already registered in the graph.
	ErrDuplicateName = errors.New("node name already registered")

	// ErrBadArity indicates an operation was applied with the wrong number of
	// inputs, or declares an arity other than 1 or 2.
	ErrBadArity = errors.New("operation arity must be 1 or 2")
)

// Sentinel errors for the forward and backward passes.
var (
	// ErrEmptyGraph indicates a pass was requested on a graph with no nodes.
	ErrEmptyGraph = errors.New("graph has no nodes")

	// ErrCycleDetected indicates the dependency edges are not acyclic.
	ErrCycleDetected = errors.New("cycle detected in graph")

	// ErrUnsetInput indicates the forward pass read a value that was never set.
	ErrUnsetInput = errors.New("input value not set")

	// ErrNoForwardPass indicates Backward() was called before any completed
	// forward pass.
	ErrNoForwardPass = errors.New("backward requires a completed forward pass")
)

// Sentinel errors for lookup and leaf assignment.
var (
	// ErrUnknownOp indicates an operation name was not found in the registry.
	ErrUnknownOp = errors.New("operation not registered")

	// ErrNodeNotFound indicates a name did not resolve to a registered node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNotLeaf indicates a value assignment targeted an operation node.
	ErrNotLeaf = errors.New("node is not a leaf")
)

// NodeError wraps an error with node context.
// It provides information about which node failed and during which phase.
type NodeError struct {
	// Node is the name of the node that failed, or "#<id>" if unnamed.
	Node string
	// Op is the phase that failed (e.g., "forward", "backward", "order").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s: %s: %v", e.Node, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *NodeError) Unwrap() error {
	return e.Err
}

// PanicError captures panic information from a user-supplied operation.
// It includes the stack trace for debugging.
type PanicError struct {
	// Node is the name of the node whose operation panicked, or "#<id>".
	Node string
	// Value is the value passed to panic().
	Value any
	// Stack is the full stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("node %s panicked: %v", e.Node, e.Value)
}
