package flowgraph

import (
	"errors"
	"fmt"
)

// Compile errors. Compile joins every problem it finds, so test with errors.Is.
var (
	ErrNoEntryPoint  = errors.New("entry point not set")
	ErrEntryNotFound = errors.New("entry point node not found")
	ErrNodeNotFound  = errors.New("node not found")
	ErrNoPathToEnd   = errors.New("no path to END from entry")
)

// Run errors.
var (
	ErrMaxIterations = errors.New("exceeded maximum iterations")
	ErrNilContext    = errors.New("context cannot be nil")

	// ErrUnmappedRoute is returned inside a RouterError when a router
	// produces a label missing from its route table. It is a wiring bug
	// and always ends the run.
	ErrUnmappedRoute = errors.New("router returned unmapped label")
)

// NodeError reports a failure while running or leaving a node. Op is
// "execute" for errors returned by the node function, "lookup" when the
// node is missing at run time and "routing" when the node has nowhere to go.
type NodeError struct {
	NodeID string
	Op     string
	Err    error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s: %s: %v", e.NodeID, e.Op, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }

// PanicError is a recovered node panic with the goroutine stack.
type PanicError struct {
	NodeID string
	Value  any
	Stack  string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("node %s panicked: %v", e.NodeID, e.Value)
}

// CancellationError means the context ended before NodeID could run.
// State holds the last committed state.
type CancellationError struct {
	NodeID string
	State  any
	Cause  error
}

func (e *CancellationError) Error() string {
	return fmt.Sprintf("cancelled before node %s: %v", e.NodeID, e.Cause)
}

func (e *CancellationError) Unwrap() error { return e.Cause }

// RouterError reports a conditional edge that could not be followed.
type RouterError struct {
	FromNode string
	Returned string
	Err      error
}

func (e *RouterError) Error() string {
	return fmt.Sprintf("router from %s returned %q: %v", e.FromNode, e.Returned, e.Err)
}

func (e *RouterError) Unwrap() error { return e.Err }

// MaxIterationsError is returned when a WithMaxIterations bound is hit.
// LastNodeID is the node that would have run next.
type MaxIterationsError struct {
	Max        int
	LastNodeID string
	State      any
}

func (e *MaxIterationsError) Error() string {
	return fmt.Sprintf("exceeded maximum iterations (%d) at node %s", e.Max, e.LastNodeID)
}

func (e *MaxIterationsError) Unwrap() error { return ErrMaxIterations }

// lastNodeOf names the node an execution error is attributed to, or "".
func lastNodeOf(err error) string {
	var (
		nodeErr   *NodeError
		panicErr  *PanicError
		routerErr *RouterError
		maxErr    *MaxIterationsError
		cancelErr *CancellationError
	)
	switch {
	case errors.As(err, &nodeErr):
		return nodeErr.NodeID
	case errors.As(err, &panicErr):
		return panicErr.NodeID
	case errors.As(err, &routerErr):
		return routerErr.FromNode
	case errors.As(err, &maxErr):
		return maxErr.LastNodeID
	case errors.As(err, &cancelErr):
		return cancelErr.NodeID
	default:
		return ""
	}
}
