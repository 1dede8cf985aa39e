package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/randalmurphal/debategraph"

// Span names. Node spans are suffixed with the node ID.
const (
	SpanRun        = "graph.run"
	SpanNodePrefix = "graph.node "
	SpanInvocation = "llm.invoke"
)

// SpanManager starts and ends the spans of a graph run: one run span, a
// child span per node, and a client span per LLM invocation.
type SpanManager interface {
	StartRunSpan(ctx context.Context, graphName, runID string) (context.Context, trace.Span)
	StartNodeSpan(ctx context.Context, nodeID string) (context.Context, trace.Span)
	StartInvocationSpan(ctx context.Context, model, agentID string) (context.Context, trace.Span)

	// EndSpanWithError sets the span status from err and ends it.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent annotates the span carried by ctx, if it is recording.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// SpanOption configures NewSpanManager.
type SpanOption func(*otelSpanManager)

// WithTracerProvider uses tp instead of the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) SpanOption {
	return func(m *otelSpanManager) {
		if tp != nil {
			m.tracer = tp.Tracer(instrumentationName)
		}
	}
}

type otelSpanManager struct {
	tracer trace.Tracer
}

// NewSpanManager returns an OpenTelemetry SpanManager. Without
// WithTracerProvider it uses otel.GetTracerProvider(), so set the global
// provider first.
func NewSpanManager(opts ...SpanOption) SpanManager {
	m := &otelSpanManager{tracer: otel.GetTracerProvider().Tracer(instrumentationName)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *otelSpanManager) StartRunSpan(ctx context.Context, graphName, runID string) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, SpanRun,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("graph.name", graphName),
			attribute.String("run.id", runID),
		),
	)
}

func (m *otelSpanManager) StartNodeSpan(ctx context.Context, nodeID string) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, SpanNodePrefix+nodeID,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("node.id", nodeID)),
	)
}

func (m *otelSpanManager) StartInvocationSpan(ctx context.Context, model, agentID string) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, SpanInvocation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("llm.model", model),
			attribute.String("agent.id", agentID),
		),
	)
}

func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	defer span.End()
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.AddEvent(name, trace.WithAttributes(attrs...))
	}
}
