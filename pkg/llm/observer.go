package llm

import "context"

// Delta is one piece of a streamed completion reported to a DeltaObserver.
type Delta struct {
	// Node is the graph node that issued the invocation.
	Node    string
	AgentID string
	Content string
	// Done marks the last delta of an invocation.
	Done bool
}

// DeltaObserver receives deltas while an invocation streams.
// It runs on the invoking goroutine and must not block for long.
type DeltaObserver func(Delta)

type observerKey struct{}

// WithDeltaObserver returns a context that makes Invoker.Invoke stream and
// report every delta to fn.
func WithDeltaObserver(ctx context.Context, fn DeltaObserver) context.Context {
	return context.WithValue(ctx, observerKey{}, fn)
}

// DeltaObserverFrom returns the observer attached to ctx, or nil.
func DeltaObserverFrom(ctx context.Context) DeltaObserver {
	fn, _ := ctx.Value(observerKey{}).(DeltaObserver)
	return fn
}
