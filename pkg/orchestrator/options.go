package orchestrator

import (
	"context"
	"log/slog"

	"github.com/randalmurphal/debategraph/pkg/debate"
	"github.com/randalmurphal/debategraph/pkg/flowgraph"
	"github.com/randalmurphal/debategraph/pkg/memory"
	"github.com/randalmurphal/debategraph/pkg/store"
)

// DefaultProject is the project debates land in when none is given.
const DefaultProject = "Default"

// Store is the persistence used by Creator and Runner.
type Store interface {
	debate.Store
	EnsureProject(ctx context.Context, orgID, name string) (*store.Project, error)
	GetProject(ctx context.Context, orgID, id string) (*store.Project, error)
	CreateDebate(ctx context.Context, orgID string, d *store.Debate) error
	CreateAgent(ctx context.Context, orgID string, a *store.Agent) error
	AddParticipants(ctx context.Context, orgID, debateID string, agentIDs ...string) error
	DeleteDebate(ctx context.Context, orgID, id string) error
	DeleteAgents(ctx context.Context, orgID string, ids ...string) error
}

// Invoker runs model calls and counts tokens.
type Invoker = memory.Invoker

type options struct {
	logger        *slog.Logger
	memory        []memory.Option
	runOpts       []flowgraph.RunOption
	maxConcurrent int
}

// Option configures a Creator or Runner.
type Option func(*options)

// WithLogger sets the logger handed to graph runs.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMemoryOptions configures the memory manager of debate runs.
func WithMemoryOptions(opts ...memory.Option) Option {
	return func(o *options) { o.memory = append(o.memory, opts...) }
}

// WithRunOptions adds options to every graph run, such as metrics or
// tracing.
func WithRunOptions(opts ...flowgraph.RunOption) Option {
	return func(o *options) { o.runOpts = append(o.runOpts, opts...) }
}

// WithMaxConcurrent bounds how many debates RunMany runs at once.
func WithMaxConcurrent(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxConcurrent = n
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default(), maxConcurrent: 4}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
