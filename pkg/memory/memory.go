// Package memory builds the text context handed to debate agents and keeps
// it under a token budget by folding older messages into a running summary.
//
// Compaction is one-way. Folded messages are marked disabled and never
// reconsidered; their content survives only through the summary.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/randalmurphal/debategraph/pkg/flowgraph/observability"
	"github.com/randalmurphal/debategraph/pkg/llm"
	"github.com/randalmurphal/debategraph/pkg/prompt"
	"github.com/randalmurphal/debategraph/pkg/store"
)

// Defaults used when no option overrides them.
const (
	DefaultTokenBudget  = 4000
	DefaultRecentWindow = 10
)

// Store is the persistence the manager reads and updates.
type Store interface {
	GetDebate(ctx context.Context, orgID, id string) (*store.Debate, error)
	ListActiveMessages(ctx context.Context, orgID, debateID string) ([]store.Message, error)
	CompactMemory(ctx context.Context, orgID, debateID, summary string, ids ...string) (int, error)
}

// Invoker runs the summarization call and counts tokens.
type Invoker interface {
	Invoke(ctx context.Context, req llm.Request) (*llm.CompletionResponse, error)
	CountTokens(text string) int
}

// Scope identifies the debate and the agent credited with summaries.
type Scope struct {
	OrgID          string
	ProjectID      string
	DebateID       string
	SummaryAgentID string
}

// Manager computes debate memory.
type Manager struct {
	store   Store
	invoker Invoker
	budget  int
	window  int
	logger  *slog.Logger
	metrics observability.MetricsRecorder
}

// Option configures a Manager.
type Option func(*Manager)

// WithTokenBudget sets the token count above which memory is compacted.
func WithTokenBudget(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.budget = n
		}
	}
}

// WithRecentWindow sets how many of the newest messages survive compaction.
func WithRecentWindow(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.window = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r observability.MetricsRecorder) Option {
	return func(m *Manager) {
		if r != nil {
			m.metrics = r
		}
	}
}

// NewManager creates a Manager.
func NewManager(s Store, inv Invoker, opts ...Option) *Manager {
	m := &Manager{
		store:   s,
		invoker: inv,
		budget:  DefaultTokenBudget,
		window:  DefaultRecentWindow,
		logger:  slog.Default(),
		metrics: observability.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Memory returns the summary followed by every active message, in order.
// When that exceeds the budget, all but the newest messages are summarized
// into a new summary and disabled, and the compacted memory is returned.
//
// With no new messages in between, repeated calls return the same string.
func (m *Manager) Memory(ctx context.Context, scope Scope) (string, error) {
	debate, err := m.store.GetDebate(ctx, scope.OrgID, scope.DebateID)
	if err != nil {
		return "", err
	}
	messages, err := m.store.ListActiveMessages(ctx, scope.OrgID, scope.DebateID)
	if err != nil {
		return "", err
	}

	memory := join(debate.Summary, messages)
	tokens := m.invoker.CountTokens(memory)
	if tokens <= m.budget || len(messages) <= m.window {
		return memory, nil
	}

	split := len(messages) - m.window
	older, recent := messages[:split], messages[split:]

	resp, err := m.invoker.Invoke(ctx, llm.Request{
		Messages:  llm.Prompt(prompt.Summary(debate.Summary, contents(older))),
		ProjectID: scope.ProjectID,
		OrgID:     scope.OrgID,
		DebateID:  scope.DebateID,
		AgentID:   scope.SummaryAgentID,
	})
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	summary := strings.TrimSpace(resp.Content)

	ids := make([]string, len(older))
	for i, msg := range older {
		ids[i] = msg.ID
	}
	disabled, err := m.store.CompactMemory(ctx, scope.OrgID, scope.DebateID, summary, ids...)
	if err != nil {
		return "", err
	}

	observability.LogCompaction(m.logger, scope.DebateID, tokens, disabled)
	m.metrics.RecordCompaction(ctx, int64(disabled))

	return join(summary, recent), nil
}

func join(summary string, messages []store.Message) string {
	return summary + "\n" + contents(messages)
}

func contents(messages []store.Message) string {
	parts := make([]string, len(messages))
	for i, msg := range messages {
		parts[i] = msg.Content
	}
	return strings.Join(parts, "\n")
}
