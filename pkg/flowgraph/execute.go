package flowgraph

import (
	"context"
	"fmt"
	"iter"
	"runtime/debug"
	"time"

	"github.com/randalmurphal/debategraph/pkg/flowgraph/observability"
	"go.opentelemetry.io/otel/trace"
)

// Step is what Stream yields: the node that just finished and the state it
// returned. A failed run ends with one extra Step carrying Err and the last
// committed state.
type Step[S any] struct {
	NodeID string
	State  S
	Err    error
}

// Run executes the graph from the entry point until a node routes to END,
// and returns the final state. On failure it returns the state committed
// before the failing node together with a *NodeError, *PanicError,
// *RouterError, *CancellationError or *MaxIterationsError.
//
// The executor is a flat loop, one iteration per node, so a cyclic graph
// can run any number of rounds without growing the stack. Cancellation is
// checked before each node.
func (cg *CompiledGraph[S]) Run(ctx Context, state S, opts ...RunOption) (S, error) {
	if ctx == nil {
		return state, ErrNilContext
	}
	return cg.run(ctx, state, opts, nil)
}

// Stream is Run driven by the consumer. Each node runs only when the
// previous Step has been taken, and breaking out of the range loop stops
// the run before the next node starts.
//
//	for step := range compiled.Stream(ctx, state) {
//	    if step.Err != nil {
//	        return step.Err
//	    }
//	    emit(step.NodeID, step.State)
//	}
func (cg *CompiledGraph[S]) Stream(ctx Context, state S, opts ...RunOption) iter.Seq[Step[S]] {
	return func(yield func(Step[S]) bool) {
		if ctx == nil {
			yield(Step[S]{State: state, Err: ErrNilContext})
			return
		}
		consumerLeft := false
		final, err := cg.run(ctx, state, opts, func(nodeID string, s S) bool {
			consumerLeft = !yield(Step[S]{NodeID: nodeID, State: s})
			return !consumerLeft
		})
		if err != nil && !consumerLeft {
			yield(Step[S]{NodeID: lastNodeOf(err), State: final, Err: err})
		}
	}
}

// run adds run-level logging, metrics and the run span around loop.
func (cg *CompiledGraph[S]) run(ctx Context, state S, opts []RunOption, observe func(string, S) bool) (final S, err error) {
	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	runID := cfg.runID
	if runID == "" {
		runID = ctx.RunID()
	}

	started := time.Now()
	observability.LogRunStart(cfg.logger, runID)

	if cfg.tracingEnabled {
		spanCtx, span := cfg.spans.StartRunSpan(ctx, cfg.graphName, runID)
		ctx = rebase(ctx, spanCtx)
		defer func() { cfg.spans.EndSpanWithError(span, err) }()
	}

	final, executed, err := cg.loop(ctx, state, &cfg, observe)

	elapsed := time.Since(started)
	cfg.metrics.RecordGraphRun(ctx, err == nil, elapsed)
	ms := float64(elapsed.Milliseconds())
	if err != nil {
		observability.LogRunError(cfg.logger, runID, err, ms, lastNodeOf(err))
	} else {
		observability.LogRunComplete(cfg.logger, runID, ms, executed)
	}
	return final, err
}

// loop runs nodes until END. observe sees every committed state and can
// stop the run, without error, by returning false.
func (cg *CompiledGraph[S]) loop(ctx Context, state S, cfg *runConfig, observe func(string, S) bool) (S, int, error) {
	executed := 0
	for current := cg.entryPoint; current != END; {
		if cfg.maxIterations > 0 && executed >= cfg.maxIterations {
			return state, executed, &MaxIterationsError{Max: cfg.maxIterations, LastNodeID: current, State: state}
		}
		if cause := ctx.Err(); cause != nil {
			return state, executed, &CancellationError{NodeID: current, State: state, Cause: cause}
		}

		next, err := cg.traced(ctx, current, state, cfg)
		if err != nil {
			return state, executed, err
		}
		state = next
		executed++

		if observe != nil && !observe(current, state) {
			return state, executed, nil
		}

		if current, err = cg.route(ctx, current, state); err != nil {
			return state, executed, err
		}
	}
	return state, executed, nil
}

// traced runs one node inside its span with node-level logs and metrics.
func (cg *CompiledGraph[S]) traced(ctx Context, nodeID string, state S, cfg *runConfig) (S, error) {
	observability.LogNodeStart(cfg.logger, nodeID)

	var span trace.Span
	if cfg.tracingEnabled {
		var spanCtx context.Context
		spanCtx, span = cfg.spans.StartNodeSpan(ctx, nodeID)
		ctx = rebase(ctx, spanCtx)
	}

	started := time.Now()
	next, err := cg.call(ctx, nodeID, state)
	elapsed := time.Since(started)

	cfg.metrics.RecordNodeExecution(ctx, nodeID, elapsed, err)
	if cfg.tracingEnabled {
		cfg.spans.EndSpanWithError(span, err)
	}
	if err != nil {
		observability.LogNodeError(cfg.logger, nodeID, err)
		return state, err
	}
	observability.LogNodeComplete(cfg.logger, nodeID, float64(elapsed.Milliseconds()))
	return next, nil
}

// call invokes the node function, turning errors and panics into the
// package error types. A failed node leaves state unchanged.
func (cg *CompiledGraph[S]) call(ctx Context, nodeID string, state S) (next S, err error) {
	fn, ok := cg.nodes[nodeID]
	if !ok {
		return state, &NodeError{NodeID: nodeID, Op: "lookup", Err: fmt.Errorf("node not found: %s", nodeID)}
	}

	defer func() {
		if r := recover(); r != nil {
			next, err = state, &PanicError{NodeID: nodeID, Value: r, Stack: string(debug.Stack())}
		}
	}()

	next, err = fn(forNode(ctx, nodeID), state)
	if err != nil {
		return state, &NodeError{NodeID: nodeID, Op: "execute", Err: err}
	}
	return next, nil
}

// route picks the node after current: the router's mapped label when the
// node is conditional, otherwise its first plain edge.
func (cg *CompiledGraph[S]) route(ctx Context, current string, state S) (string, error) {
	if ce, ok := cg.routers[current]; ok {
		label := ce.router(forNode(ctx, current), state)
		to, mapped := ce.routes[label]
		if !mapped {
			return "", &RouterError{FromNode: current, Returned: label, Err: ErrUnmappedRoute}
		}
		return to, nil
	}

	if edges := cg.edges[current]; len(edges) > 0 {
		return edges[0], nil
	}
	return "", &NodeError{NodeID: current, Op: "routing", Err: fmt.Errorf("no outgoing edge from node %s", current)}
}

// forNode scopes the logger and NodeID of ctx to nodeID.
func forNode(ctx Context, nodeID string) Context {
	if ec, ok := ctx.(*executionContext); ok {
		return ec.withNodeID(nodeID)
	}
	return ctx
}

// rebase swaps the embedded context.Context of an execution context.
// Contexts implemented outside this package are returned unchanged.
func rebase(ctx Context, inner context.Context) Context {
	if ec, ok := ctx.(*executionContext); ok {
		return ec.withTracing(inner)
	}
	return ctx
}
