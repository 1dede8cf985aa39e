package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestNoopMetrics_DoesNothing(t *testing.T) {
	var m MetricsRecorder = NoopMetrics{}
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordNodeExecution(ctx, "n", time.Millisecond, errors.New("x"))
		m.RecordGraphRun(ctx, false, time.Millisecond)
		m.RecordTokens(ctx, "model", 1, 2)
		m.RecordCompaction(ctx, 3)
	})
}

func TestNoopSpanManager_ReturnsContextUnchanged(t *testing.T) {
	var sm SpanManager = NoopSpanManager{}
	ctx := context.Background()

	runCtx, runSpan := sm.StartRunSpan(ctx, "graph", "run")
	assert.Equal(t, ctx, runCtx)
	assert.False(t, runSpan.IsRecording())

	nodeCtx, nodeSpan := sm.StartNodeSpan(ctx, "node")
	assert.Equal(t, ctx, nodeCtx)
	assert.False(t, nodeSpan.IsRecording())

	invCtx, invSpan := sm.StartInvocationSpan(ctx, "model", "agent")
	assert.Equal(t, ctx, invCtx)
	assert.False(t, invSpan.IsRecording())

	assert.NotPanics(t, func() {
		sm.EndSpanWithError(runSpan, errors.New("x"))
		sm.AddSpanEvent(ctx, "event", attribute.String("k", "v"))
	})
}
