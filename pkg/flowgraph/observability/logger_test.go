package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captured returns a debug-level JSON logger and a function decoding
// everything it wrote so far.
func captured(t *testing.T) (*slog.Logger, func() []map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() []map[string]any {
		var out []map[string]any
		dec := json.NewDecoder(bytes.NewReader(buf.Bytes()))
		for dec.More() {
			var rec map[string]any
			require.NoError(t, dec.Decode(&rec))
			out = append(out, rec)
		}
		return out
	}
}

func TestEnrichLogger(t *testing.T) {
	logger, records := captured(t)
	EnrichLogger(logger, "run-123", "Super Agent Decision").Info("deciding")

	recs := records()
	require.Len(t, recs, 1)
	assert.Equal(t, "run-123", recs[0]["run_id"])
	assert.Equal(t, "Super Agent Decision", recs[0]["node_id"])
	assert.Equal(t, "deciding", recs[0]["msg"])

	assert.Nil(t, EnrichLogger(nil, "run-123", "x"))
}

func TestRunLifecycleLogs(t *testing.T) {
	logger, records := captured(t)
	decodeErr := errors.New("decode failed")

	LogRunStart(logger, "run-1")
	LogNodeStart(logger, "Connect Org")
	LogNodeComplete(logger, "Connect Org", 1.5)
	LogNodeError(logger, "Super Agent Decision", decodeErr)
	LogRunError(logger, "run-1", decodeErr, 12, "Super Agent Decision")
	LogRunComplete(logger, "run-2", 10, 3)

	recs := records()
	require.Len(t, recs, 6)

	wantMsgs := []string{
		"graph run starting", "node starting", "node completed",
		"node failed", "graph run failed", "graph run completed",
	}
	wantLevels := []string{"INFO", "DEBUG", "DEBUG", "ERROR", "ERROR", "INFO"}
	for i, rec := range recs {
		assert.Equal(t, wantMsgs[i], rec["msg"], "record %d", i)
		assert.Equal(t, wantLevels[i], rec["level"], "record %d", i)
	}

	assert.Equal(t, 1.5, recs[2]["duration_ms"])
	assert.Equal(t, "decode failed", recs[3]["error"])
	assert.Equal(t, "Super Agent Decision", recs[4]["last_node"])
	assert.EqualValues(t, 3, recs[5]["nodes_executed"])
}

func TestDebateLogs(t *testing.T) {
	logger, records := captured(t)

	LogInvocation(logger, "llama-3.3-70b-versatile", 120, 40, 250)
	LogAuditFailure(logger, "debate-1", "agent-1", errors.New("disk full"))
	LogCompaction(logger, "debate-1", 5120, 14)

	recs := records()
	require.Len(t, recs, 3)

	assert.Equal(t, "llm invocation completed", recs[0]["msg"])
	assert.Equal(t, "llama-3.3-70b-versatile", recs[0]["model"])
	assert.EqualValues(t, 120, recs[0]["prompt_tokens"])
	assert.EqualValues(t, 40, recs[0]["completion_tokens"])

	assert.Equal(t, "WARN", recs[1]["level"])
	assert.Equal(t, "interaction audit failed", recs[1]["msg"])
	assert.Equal(t, "debate-1", recs[1]["debate_id"])
	assert.Equal(t, "disk full", recs[1]["error"])

	assert.Equal(t, "memory compacted", recs[2]["msg"])
	assert.EqualValues(t, 5120, recs[2]["tokens_before"])
	assert.EqualValues(t, 14, recs[2]["messages_disabled"])
}

func TestNilLoggerIsSafe(t *testing.T) {
	boom := errors.New("x")
	assert.NotPanics(t, func() {
		LogRunStart(nil, "r")
		LogRunComplete(nil, "r", 1, 1)
		LogRunError(nil, "r", boom, 1, "n")
		LogNodeStart(nil, "n")
		LogNodeComplete(nil, "n", 1)
		LogNodeError(nil, "n", boom)
		LogInvocation(nil, "m", 1, 1, 1)
		LogAuditFailure(nil, "d", "a", boom)
		LogCompaction(nil, "d", 1, 1)
	})
}
