package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name     string
		event    Event
		expected string
	}{
		{
			name:     "map payload",
			event:    New(DebateCreated, map[string]string{"debate_id": "d1"}),
			expected: "event: debate_created\ndata: {\"debate_id\":\"d1\"}\n\n",
		},
		{
			name:     "nil payload is an empty object",
			event:    New(AgentResponseEnd, nil),
			expected: "event: agent_response_end\ndata: {}\n\n",
		},
		{
			name:     "newlines stay inside the data line",
			event:    New(AgentResponseToken, map[string]string{"content": "a\n\nb"}),
			expected: "event: agent_response_token\ndata: {\"content\":\"a\\n\\nb\"}\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, tt.event))
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestEncode_UnmarshalableData(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, New(Status, map[string]any{"bad": make(chan int)}))
	require.Error(t, err)
	assert.Empty(t, buf.String())
}

func TestDecode_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, New(Status, map[string]string{"message": "Super Agent is evaluating the debate..."})))
	require.NoError(t, Encode(&buf, New(AgentResponseToken, map[string]string{"content": "line\n\nbreak"})))
	require.NoError(t, Encode(&buf, New(AgentResponseEnd, nil)))

	got, err := Decode(&buf)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, Status, got[0].Name)
	assert.Equal(t, map[string]any{"content": "line\n\nbreak"}, got[1].Data)
	assert.Equal(t, map[string]any{}, got[2].Data)
}

func TestNodeEventName(t *testing.T) {
	assert.Equal(t, "generate_initial_agents", NodeEventName("Generate Initial Agents"))
	assert.Equal(t, "connect_to_current_organization", NodeEventName("Connect to Current Organization"))
	assert.Equal(t, "x", NodeEventName("x"))
}

func TestStatePayload(t *testing.T) {
	type state struct {
		Topic    string            `json:"user_topic"`
		Cursor   int               `json:"current_initial_agent_index"`
		Stubs    []string          `json:"initial_agents"`
		Meta     map[string]string `json:"meta"`
		Verbose  bool              `json:"verbose"`
		Missing  *string           `json:"missing"`
		internal string
	}

	payload, err := StatePayload(state{
		Topic:    "Should AI be regulated?",
		Cursor:   2,
		Stubs:    []string{"a", "b"},
		Meta:     map[string]string{"k": "v"},
		Verbose:  true,
		internal: "hidden",
	})
	require.NoError(t, err)

	assert.Equal(t, "Should AI be regulated?", payload["user_topic"])
	assert.Equal(t, json.Number("2"), payload["current_initial_agent_index"])
	assert.Equal(t, []any{"a", "b"}, payload["initial_agents"])
	assert.Equal(t, map[string]any{"k": "v"}, payload["meta"])
	assert.NotContains(t, payload, "verbose")
	assert.NotContains(t, payload, "missing")
	assert.Len(t, payload, 4)

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"current_initial_agent_index":2`)
}

func TestStatePayload_NotAnObject(t *testing.T) {
	_, err := StatePayload([]int{1, 2})
	assert.Error(t, err)
}

func TestWriterSink_FlushesHTTP(t *testing.T) {
	rec := httptest.NewRecorder()
	sink := NewWriterSink(rec)

	require.NoError(t, sink.Emit(context.Background(), New(Status, map[string]string{"message": "hi"})))
	assert.True(t, rec.Flushed)
	assert.Equal(t, "event: status\ndata: {\"message\":\"hi\"}\n\n", rec.Body.String())
}

func TestWriterSink_CancelledContext(t *testing.T) {
	var buf bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewWriterSink(&buf).Emit(ctx, New(Status, nil))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, buf.Len())
}

func TestMultiSink(t *testing.T) {
	boom := errors.New("boom")
	var first, last Collector
	failing := SinkFunc(func(context.Context, Event) error { return boom })

	m := MultiSink{&first, nil, failing, &last}
	err := m.Emit(context.Background(), New(AgentSaved, nil))

	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{AgentSaved}, first.Names())
	assert.Equal(t, []string{AgentSaved}, last.Names(), "later sinks still receive the event")
}

func TestCollector_EventsIsACopy(t *testing.T) {
	var c Collector
	require.NoError(t, c.Emit(context.Background(), New(Status, nil)))

	got := c.Events()
	got[0].Name = "changed"
	assert.Equal(t, Status, c.Events()[0].Name)
}

func TestDiscard(t *testing.T) {
	assert.NoError(t, Discard.Emit(context.Background(), New(Status, nil)))
}
