package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecordingSpans(t *testing.T) (SpanManager, *tracetest.SpanRecorder) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return NewSpanManager(WithTracerProvider(tp)), rec
}

func attrOf(attrs []attribute.KeyValue, key string) string {
	for _, a := range attrs {
		if string(a.Key) == key {
			return a.Value.Emit()
		}
	}
	return ""
}

func TestSpanManager_RunAndNodeSpans(t *testing.T) {
	sm, rec := newRecordingSpans(t)

	ctx, run := sm.StartRunSpan(context.Background(), "debate", "run-123")
	_, node := sm.StartNodeSpan(ctx, "Super Agent Decision")
	sm.EndSpanWithError(node, nil)
	sm.EndSpanWithError(run, nil)

	spans := rec.Ended()
	require.Len(t, spans, 2)

	nodeSpan, runSpan := spans[0], spans[1]
	assert.Equal(t, SpanRun, runSpan.Name())
	assert.Equal(t, "debate", attrOf(runSpan.Attributes(), "graph.name"))
	assert.Equal(t, "run-123", attrOf(runSpan.Attributes(), "run.id"))

	assert.Equal(t, "graph.node Super Agent Decision", nodeSpan.Name())
	assert.Equal(t, "Super Agent Decision", attrOf(nodeSpan.Attributes(), "node.id"))
	assert.Equal(t, runSpan.SpanContext().SpanID(), nodeSpan.Parent().SpanID())
	assert.Equal(t, codes.Ok, nodeSpan.Status().Code)
}

func TestSpanManager_InvocationSpan(t *testing.T) {
	sm, rec := newRecordingSpans(t)

	_, span := sm.StartInvocationSpan(context.Background(), "llama-3.3-70b-versatile", "agent-7")
	sm.EndSpanWithError(span, errors.New("rate limited"))

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, SpanInvocation, spans[0].Name())
	assert.Equal(t, "llama-3.3-70b-versatile", attrOf(spans[0].Attributes(), "llm.model"))
	assert.Equal(t, "agent-7", attrOf(spans[0].Attributes(), "agent.id"))
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "rate limited", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1, "recorded error")
}

func TestSpanManager_AddSpanEvent(t *testing.T) {
	sm, rec := newRecordingSpans(t)

	ctx, span := sm.StartRunSpan(context.Background(), "g", "r")
	sm.AddSpanEvent(ctx, "memory.compacted", attribute.Int("disabled", 4))
	span.End()

	spans := rec.Ended()
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "memory.compacted", spans[0].Events()[0].Name)

	assert.NotPanics(t, func() {
		sm.AddSpanEvent(context.Background(), "no span")
		sm.EndSpanWithError(nil, errors.New("ignored"))
	})
}
