package observability

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instrument names.
const (
	MetricNodeExecutions   = "graph.node.executions"
	MetricNodeErrors       = "graph.node.errors"
	MetricNodeLatency      = "graph.node.latency_ms"
	MetricGraphRuns        = "graph.runs"
	MetricGraphLatency     = "graph.latency_ms"
	MetricPromptTokens     = "llm.prompt_tokens"
	MetricCompletionTokens = "llm.completion_tokens"
	MetricCompactions      = "memory.compactions"
	MetricDisabledMessages = "memory.disabled_messages"
)

// MetricsRecorder receives measurements from the executor (nodes and
// runs), the LLM invoker (tokens) and the memory manager (compactions).
type MetricsRecorder interface {
	RecordNodeExecution(ctx context.Context, nodeID string, duration time.Duration, err error)
	RecordGraphRun(ctx context.Context, success bool, duration time.Duration)
	RecordTokens(ctx context.Context, model string, promptTokens, completionTokens int64)
	// RecordCompaction counts one compaction that disabled the given
	// number of messages.
	RecordCompaction(ctx context.Context, disabled int64)
}

// MetricsOption configures NewMetricsRecorder.
type MetricsOption func(*metricsConfig)

type metricsConfig struct {
	provider metric.MeterProvider
}

// WithMeterProvider uses mp instead of the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) MetricsOption {
	return func(c *metricsConfig) {
		if mp != nil {
			c.provider = mp
		}
	}
}

type otelMetrics struct {
	nodeExecutions   metric.Int64Counter
	nodeErrors       metric.Int64Counter
	nodeLatency      metric.Float64Histogram
	graphRuns        metric.Int64Counter
	graphLatency     metric.Float64Histogram
	promptTokens     metric.Int64Counter
	completionTokens metric.Int64Counter
	compactions      metric.Int64Counter
	disabledMessages metric.Int64Counter
}

// NewMetricsRecorder returns an OpenTelemetry MetricsRecorder. Without
// WithMeterProvider it reads otel.GetMeterProvider(), so set the global
// provider first. If an instrument cannot be created the failure is
// logged and a NoopMetrics is returned.
func NewMetricsRecorder(opts ...MetricsOption) MetricsRecorder {
	cfg := metricsConfig{provider: otel.GetMeterProvider()}
	for _, opt := range opts {
		opt(&cfg)
	}
	m, err := newOtelMetrics(cfg.provider.Meter(instrumentationName))
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder", slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

func newOtelMetrics(meter metric.Meter) (*otelMetrics, error) {
	var errs []error
	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		errs = append(errs, err)
		return c
	}
	histogram := func(name, desc string) metric.Float64Histogram {
		h, err := meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("ms"))
		errs = append(errs, err)
		return h
	}

	m := &otelMetrics{
		nodeExecutions:   counter(MetricNodeExecutions, "Node executions"),
		nodeErrors:       counter(MetricNodeErrors, "Node executions that failed"),
		nodeLatency:      histogram(MetricNodeLatency, "Node execution latency"),
		graphRuns:        counter(MetricGraphRuns, "Graph runs"),
		graphLatency:     histogram(MetricGraphLatency, "Graph run latency"),
		promptTokens:     counter(MetricPromptTokens, "Prompt tokens sent to the model"),
		completionTokens: counter(MetricCompletionTokens, "Completion tokens returned by the model"),
		compactions:      counter(MetricCompactions, "Memory compactions"),
		disabledMessages: counter(MetricDisabledMessages, "Messages folded into a debate summary"),
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *otelMetrics) RecordNodeExecution(ctx context.Context, nodeID string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("node_id", nodeID))
	m.nodeExecutions.Add(ctx, 1, attrs)
	m.nodeLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
	if err != nil {
		m.nodeErrors.Add(ctx, 1, attrs)
	}
}

func (m *otelMetrics) RecordGraphRun(ctx context.Context, success bool, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.Bool("success", success))
	m.graphRuns.Add(ctx, 1, attrs)
	m.graphLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
}

func (m *otelMetrics) RecordTokens(ctx context.Context, model string, promptTokens, completionTokens int64) {
	attrs := metric.WithAttributes(attribute.String("model", model))
	m.promptTokens.Add(ctx, promptTokens, attrs)
	m.completionTokens.Add(ctx, completionTokens, attrs)
}

func (m *otelMetrics) RecordCompaction(ctx context.Context, disabled int64) {
	m.compactions.Add(ctx, 1)
	m.disabledMessages.Add(ctx, disabled)
}
