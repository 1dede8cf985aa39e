// Package observability holds the slog helpers, OpenTelemetry metrics and
// OpenTelemetry tracing shared by the graph executor, the LLM invoker and
// the memory manager. Each concern has a no-op form used when it is off.
package observability

import (
	"context"
	"log/slog"
)

// emit writes one record. A nil logger disables logging.
func emit(logger *slog.Logger, level slog.Level, msg string, attrs ...slog.Attr) {
	if logger == nil {
		return
	}
	logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// EnrichLogger tags logger with the run and node being executed.
func EnrichLogger(logger *slog.Logger, runID, nodeID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("run_id", runID), slog.String("node_id", nodeID))
}

func LogRunStart(logger *slog.Logger, runID string) {
	emit(logger, slog.LevelInfo, "graph run starting", slog.String("run_id", runID))
}

func LogRunComplete(logger *slog.Logger, runID string, durationMs float64, nodeCount int) {
	emit(logger, slog.LevelInfo, "graph run completed",
		slog.String("run_id", runID),
		slog.Float64("duration_ms", durationMs),
		slog.Int("nodes_executed", nodeCount))
}

// LogRunError reports a failed run and the node it failed at.
func LogRunError(logger *slog.Logger, runID string, err error, durationMs float64, lastNode string) {
	emit(logger, slog.LevelError, "graph run failed",
		slog.String("run_id", runID),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
		slog.String("last_node", lastNode))
}

func LogNodeStart(logger *slog.Logger, nodeID string) {
	emit(logger, slog.LevelDebug, "node starting", slog.String("node_id", nodeID))
}

func LogNodeComplete(logger *slog.Logger, nodeID string, durationMs float64) {
	emit(logger, slog.LevelDebug, "node completed",
		slog.String("node_id", nodeID),
		slog.Float64("duration_ms", durationMs))
}

func LogNodeError(logger *slog.Logger, nodeID string, err error) {
	emit(logger, slog.LevelError, "node failed",
		slog.String("node_id", nodeID),
		slog.String("error", err.Error()))
}

// LogInvocation records one finished model call.
func LogInvocation(logger *slog.Logger, model string, promptTokens, completionTokens int, durationMs float64) {
	emit(logger, slog.LevelDebug, "llm invocation completed",
		slog.String("model", model),
		slog.Int("prompt_tokens", promptTokens),
		slog.Int("completion_tokens", completionTokens),
		slog.Float64("duration_ms", durationMs))
}

// LogAuditFailure reports an interaction log write that failed. The
// invocation itself still succeeds.
func LogAuditFailure(logger *slog.Logger, debateID, agentID string, err error) {
	emit(logger, slog.LevelWarn, "interaction audit failed",
		slog.String("debate_id", debateID),
		slog.String("agent_id", agentID),
		slog.String("error", err.Error()))
}

func LogCompaction(logger *slog.Logger, debateID string, tokensBefore, disabled int) {
	emit(logger, slog.LevelInfo, "memory compacted",
		slog.String("debate_id", debateID),
		slog.Int("tokens_before", tokensBefore),
		slog.Int("messages_disabled", disabled))
}
