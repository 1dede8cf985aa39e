package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/randalmurphal/debategraph/pkg/flowgraph/observability"
)

// Interaction status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Request is one invocation on behalf of a debate participant.
type Request struct {
	Messages []Message

	// Identifiers recorded with the interaction.
	ProjectID string
	OrgID     string
	DebateID  string
	AgentID   string

	// Node names the graph node issuing the call. It tags streamed deltas.
	Node string
}

// Interaction is the audit record of one invocation.
type Interaction struct {
	ProjectID string
	OrgID     string
	DebateID  string
	AgentID   string
	Model     string
	Input     []Message
	Output    string
	Usage     TokenUsage
	Status    string
	Error     string
	Duration  time.Duration
}

// AuditLogger persists interactions.
type AuditLogger interface {
	LogInteraction(ctx context.Context, in Interaction) error
}

// Invoker performs LLM calls for graph nodes: it picks streaming when a
// DeltaObserver is attached, records metrics, spans and an audit entry, and
// never lets a failed audit write affect the result.
type Invoker struct {
	client    Client
	model     string
	audit     AuditLogger
	logger    *slog.Logger
	metrics   observability.MetricsRecorder
	spans     observability.SpanManager
	tokenizer Tokenizer
}

// InvokerOption configures an Invoker.
type InvokerOption func(*Invoker)

// WithModel sets the model name requested and recorded.
func WithModel(name string) InvokerOption {
	return func(iv *Invoker) { iv.model = name }
}

// WithAuditLogger sets where interactions are recorded.
func WithAuditLogger(a AuditLogger) InvokerOption {
	return func(iv *Invoker) { iv.audit = a }
}

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) InvokerOption {
	return func(iv *Invoker) {
		if l != nil {
			iv.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observability.MetricsRecorder) InvokerOption {
	return func(iv *Invoker) {
		if m != nil {
			iv.metrics = m
		}
	}
}

// WithSpans sets the span manager.
func WithSpans(s observability.SpanManager) InvokerOption {
	return func(iv *Invoker) {
		if s != nil {
			iv.spans = s
		}
	}
}

// NewInvoker wraps client. Without options it logs to slog.Default and
// records neither metrics, spans nor audit entries.
func NewInvoker(client Client, opts ...InvokerOption) *Invoker {
	iv := &Invoker{
		client:  client,
		logger:  slog.Default(),
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
	if t, ok := client.(Tokenizer); ok {
		iv.tokenizer = t
	}
	for _, opt := range opts {
		opt(iv)
	}
	return iv
}

// Model returns the configured model name.
func (iv *Invoker) Model() string { return iv.model }

// CountTokens counts text with the client's tokenizer, or estimates it.
func (iv *Invoker) CountTokens(text string) int {
	if iv.tokenizer != nil {
		return iv.tokenizer.CountTokens(text)
	}
	return EstimateTokens(text)
}

// Invoke runs one completion. Cancelling ctx aborts the call.
func (iv *Invoker) Invoke(ctx context.Context, req Request) (resp *CompletionResponse, err error) {
	ctx, span := iv.spans.StartInvocationSpan(ctx, iv.model, req.AgentID)
	defer func() { iv.spans.EndSpanWithError(span, err) }()

	start := time.Now()
	creq := CompletionRequest{Messages: req.Messages, Model: iv.model}

	if observe := DeltaObserverFrom(ctx); observe != nil {
		resp, err = iv.stream(ctx, creq, req, observe)
	} else {
		resp, err = iv.client.Complete(ctx, creq)
	}
	duration := time.Since(start)

	entry := Interaction{
		ProjectID: req.ProjectID,
		OrgID:     req.OrgID,
		DebateID:  req.DebateID,
		AgentID:   req.AgentID,
		Model:     iv.model,
		Input:     req.Messages,
		Duration:  duration,
		Status:    StatusSuccess,
	}
	if err != nil {
		entry.Status = StatusError
		entry.Error = err.Error()
		iv.record(ctx, entry)
		return nil, err
	}

	if resp.Usage.TotalTokens == 0 {
		resp.Usage = iv.estimateUsage(req.Messages, resp.Content)
	}
	if resp.Model == "" {
		resp.Model = iv.model
	}
	resp.Duration = duration

	entry.Output = resp.Content
	entry.Usage = resp.Usage
	iv.record(ctx, entry)

	iv.metrics.RecordTokens(ctx, iv.model, int64(resp.Usage.InputTokens), int64(resp.Usage.OutputTokens))
	observability.LogInvocation(iv.logger, iv.model, resp.Usage.InputTokens, resp.Usage.OutputTokens, float64(duration.Milliseconds()))

	return resp, nil
}

// stream drains a streaming completion, reporting deltas as they arrive.
func (iv *Invoker) stream(ctx context.Context, creq CompletionRequest, req Request, observe DeltaObserver) (*CompletionResponse, error) {
	ch, err := iv.client.Stream(ctx, creq)
	if err != nil {
		return nil, err
	}

	var content strings.Builder
	resp := &CompletionResponse{}
	for chunk := range ch {
		if chunk.Error != nil {
			return nil, chunk.Error
		}
		if chunk.Content != "" {
			content.WriteString(chunk.Content)
			observe(Delta{Node: req.Node, AgentID: req.AgentID, Content: chunk.Content})
		}
		if chunk.Usage != nil {
			resp.Usage = *chunk.Usage
		}
		if chunk.Done {
			break
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	observe(Delta{Node: req.Node, AgentID: req.AgentID, Done: true})
	resp.Content = content.String()
	resp.FinishReason = "stop"
	return resp, nil
}

// record writes the audit entry. Failures, including panics, are logged
// and dropped.
func (iv *Invoker) record(ctx context.Context, entry Interaction) {
	if iv.audit == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			observability.LogAuditFailure(iv.logger, entry.DebateID, entry.AgentID, fmt.Errorf("panic: %v", r))
		}
	}()
	if err := iv.audit.LogInteraction(context.WithoutCancel(ctx), entry); err != nil {
		observability.LogAuditFailure(iv.logger, entry.DebateID, entry.AgentID, err)
	}
}

func (iv *Invoker) estimateUsage(msgs []Message, output string) TokenUsage {
	in := 0
	for _, m := range msgs {
		in += iv.CountTokens(m.Content)
	}
	out := iv.CountTokens(output)
	return TokenUsage{InputTokens: in, OutputTokens: out, TotalTokens: in + out}
}
