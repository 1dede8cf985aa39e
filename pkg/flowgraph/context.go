package flowgraph

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/randalmurphal/debategraph/pkg/flowgraph/observability"
)

// Context is what nodes and routers receive: a context.Context carrying
// cancellation and request values, plus the run's identity and a logger
// tagged with run_id and node_id. The executor derives a fresh Context for
// every node; implementations are never mutated.
type Context interface {
	context.Context

	// Logger is never nil.
	Logger() *slog.Logger
	RunID() string
	// NodeID is empty outside node execution.
	NodeID() string
}

type executionContext struct {
	context.Context

	logger *slog.Logger
	runID  string
	nodeID string
}

func (c *executionContext) Logger() *slog.Logger { return c.logger }

func (c *executionContext) RunID() string { return c.runID }

func (c *executionContext) NodeID() string { return c.nodeID }

// ContextOption configures a Context.
type ContextOption func(*executionContext)

// WithLogger replaces the default slog.Default() logger. Nil is ignored.
func WithLogger(logger *slog.Logger) ContextOption {
	return func(c *executionContext) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithContextRunID fixes the run ID instead of generating a UUID.
func WithContextRunID(id string) ContextOption {
	return func(c *executionContext) {
		c.runID = id
	}
}

// NewContext creates an execution context from a standard context.
//
// Example:
//
//	ctx := flowgraph.NewContext(context.Background(),
//	    flowgraph.WithLogger(myLogger),
//	    flowgraph.WithContextRunID("run-123"))
func NewContext(ctx context.Context, opts ...ContextOption) Context {
	ec := &executionContext{
		Context: ctx,
		logger:  slog.Default(),
		runID:   uuid.New().String(),
	}

	for _, opt := range opts {
		opt(ec)
	}

	return ec
}

// withNodeID returns a new context with the given node ID set.
func (c *executionContext) withNodeID(nodeID string) *executionContext {
	return &executionContext{
		Context: c.Context,
		logger:  observability.EnrichLogger(c.logger, c.runID, nodeID),
		runID:   c.runID,
		nodeID:  nodeID,
	}
}

// withTracing returns a copy whose embedded context carries the span context.
func (c *executionContext) withTracing(ctx context.Context) *executionContext {
	cp := *c
	cp.Context = ctx
	return &cp
}
