package flowgraph

import (
	"fmt"
	"log/slog"

	"github.com/randalmurphal/debategraph/pkg/flowgraph/observability"
)

// MaxIterationsLimit is the largest value accepted by WithMaxIterations.
const MaxIterationsLimit = 100000

// runConfig holds configuration for graph execution.
type runConfig struct {
	// maxIterations of 0 means unbounded.
	maxIterations int
	runID         string
	graphName     string

	logger         *slog.Logger
	metricsEnabled bool
	metrics        observability.MetricsRecorder
	tracingEnabled bool
	spans          observability.SpanManager
}

// defaultRunConfig returns the default execution configuration:
// no iteration bound, no logging, no-op metrics and tracing.
func defaultRunConfig() runConfig {
	return runConfig{
		graphName: "flowgraph",
		metrics:   observability.NoopMetrics{},
		spans:     observability.NoopSpanManager{},
	}
}

// RunOption configures execution behavior.
type RunOption func(*runConfig)

// WithMaxIterations bounds the number of node executions in a run.
// Graphs run unbounded by default, since cyclic workflows such as a
// moderated debate may legitimately loop for a long time.
//
// Panics if n <= 0 or n > MaxIterationsLimit.
//
// Example:
//
//	result, err := compiled.Run(ctx, state, flowgraph.WithMaxIterations(100))
func WithMaxIterations(n int) RunOption {
	if n <= 0 {
		panic("flowgraph: max iterations must be > 0")
	}
	if n > MaxIterationsLimit {
		panic(fmt.Sprintf("flowgraph: max iterations exceeds limit (%d)", MaxIterationsLimit))
	}
	return func(c *runConfig) {
		c.maxIterations = n
	}
}

// WithRunID overrides the run identifier taken from the Context.
func WithRunID(id string) RunOption {
	return func(c *runConfig) {
		c.runID = id
	}
}

// WithGraphName names the graph in run spans.
func WithGraphName(name string) RunOption {
	return func(c *runConfig) {
		if name != "" {
			c.graphName = name
		}
	}
}

// WithObservabilityLogger enables run and node lifecycle logging.
func WithObservabilityLogger(logger *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics using the global meter provider.
func WithMetrics(enabled bool) RunOption {
	return func(c *runConfig) {
		c.metricsEnabled = enabled
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithMetricsRecorder enables metrics with an explicit recorder.
func WithMetricsRecorder(r observability.MetricsRecorder) RunOption {
	return func(c *runConfig) {
		if r == nil {
			return
		}
		c.metricsEnabled = true
		c.metrics = r
	}
}

// WithTracing enables OpenTelemetry tracing using the global tracer provider.
func WithTracing(enabled bool) RunOption {
	return func(c *runConfig) {
		c.tracingEnabled = enabled
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithSpanManager enables tracing with an explicit span manager.
func WithSpanManager(m observability.SpanManager) RunOption {
	return func(c *runConfig) {
		if m == nil {
			return
		}
		c.tracingEnabled = true
		c.spans = m
	}
}
