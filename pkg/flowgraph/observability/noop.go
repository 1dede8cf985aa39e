package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var (
	_ MetricsRecorder = NoopMetrics{}
	_ SpanManager     = NoopSpanManager{}
)

// NoopMetrics discards every measurement. It is the executor default.
type NoopMetrics struct{}

func (NoopMetrics) RecordNodeExecution(context.Context, string, time.Duration, error) {}
func (NoopMetrics) RecordGraphRun(context.Context, bool, time.Duration)               {}
func (NoopMetrics) RecordTokens(context.Context, string, int64, int64)                {}
func (NoopMetrics) RecordCompaction(context.Context, int64)                           {}

// NoopSpanManager hands out non-recording spans and leaves the context as is.
type NoopSpanManager struct{}

func (NoopSpanManager) StartRunSpan(ctx context.Context, _, _ string) (context.Context, trace.Span) {
	return ctx, noop.Span{}
}

func (NoopSpanManager) StartNodeSpan(ctx context.Context, _ string) (context.Context, trace.Span) {
	return ctx, noop.Span{}
}

func (NoopSpanManager) StartInvocationSpan(ctx context.Context, _, _ string) (context.Context, trace.Span) {
	return ctx, noop.Span{}
}

func (NoopSpanManager) EndSpanWithError(trace.Span, error) {}

func (NoopSpanManager) AddSpanEvent(context.Context, string, ...attribute.KeyValue) {}
