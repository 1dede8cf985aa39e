package llm_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/randalmurphal/debategraph/pkg/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const moderatorReply = "AGENT: Super Agent\nTASK: final_decision\nREASONING: done\nNEXT AGENT: ALL\nEND"

func complete(t *testing.T, c llm.Client, prompt string) *llm.CompletionResponse {
	t.Helper()
	resp, err := c.Complete(context.Background(), llm.CompletionRequest{Model: "test-model", Messages: llm.Prompt(prompt)})
	require.NoError(t, err)
	return resp
}

func drain(t *testing.T, ch <-chan llm.StreamChunk) []llm.StreamChunk {
	t.Helper()
	var out []llm.StreamChunk
	for c := range ch {
		out = append(out, c)
	}
	return out
}

func TestMockClient_Scripts(t *testing.T) {
	t.Run("fixed", func(t *testing.T) {
		mock := llm.NewMockClient(moderatorReply)
		resp := complete(t, mock, "who speaks next?")
		assert.Equal(t, moderatorReply, resp.Content)
		assert.Equal(t, "test-model", resp.Model)
		assert.Equal(t, "stop", resp.FinishReason)
	})

	t.Run("sequence cycles", func(t *testing.T) {
		mock := llm.NewMockClient("unused").WithResponses("opening", "rebuttal")
		var got []string
		for range 3 {
			got = append(got, complete(t, mock, "go").Content)
		}
		assert.Equal(t, []string{"opening", "rebuttal", "opening"}, got)
	})

	t.Run("func sees the request", func(t *testing.T) {
		mock := llm.NewMockClient("").WithCompleteFunc(func(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
			return &llm.CompletionResponse{Content: strings.ToUpper(req.Messages[0].Content)}, nil
		})
		assert.Equal(t, "SUMMARIZE", complete(t, mock, "summarize").Content)
	})
}

func TestMockClient_Errors(t *testing.T) {
	boom := errors.New("provider unavailable")
	mock := llm.NewMockClient("never").WithError(boom)

	_, err := mock.Complete(context.Background(), llm.CompletionRequest{})
	assert.ErrorIs(t, err, boom)
	_, err = mock.Stream(context.Background(), llm.CompletionRequest{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, mock.CallCount(), "failed calls are still recorded")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = llm.NewMockClient("x").Complete(ctx, llm.CompletionRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMockClient_RecordsAndResets(t *testing.T) {
	mock := llm.NewMockClient("").WithResponses("first", "second")
	assert.Nil(t, mock.LastCall())

	complete(t, mock, "Dr. Lin, your opening?")
	complete(t, mock, "Maya, your rebuttal?")

	require.Equal(t, 2, mock.CallCount())
	assert.Equal(t, "Dr. Lin, your opening?", mock.Calls[0].Messages[0].Content)
	assert.Equal(t, "Maya, your rebuttal?", mock.LastCall().Messages[0].Content)

	mock.Reset()
	assert.Zero(t, mock.CallCount())
	assert.Equal(t, "first", complete(t, mock, "again").Content, "sequence rewound")
}

func TestMockClient_Stream(t *testing.T) {
	tests := []struct {
		name  string
		size  int
		parts []string
	}{
		{"whole", 0, []string{"RESPONSE: yes"}},
		{"chunked", 4, []string{"RESP", "ONSE", ": ye", "s"}},
		{"exact multiple", 13, []string{"RESPONSE: yes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockClient("RESPONSE: yes").WithChunkSize(tt.size)
			ch, err := mock.Stream(context.Background(), llm.CompletionRequest{})
			require.NoError(t, err)

			chunks := drain(t, ch)
			var parts []string
			for _, c := range chunks {
				parts = append(parts, c.Content)
			}
			assert.Equal(t, tt.parts, parts)

			last := chunks[len(chunks)-1]
			assert.True(t, last.Done)
			require.NotNil(t, last.Usage)
			for _, c := range chunks[:len(chunks)-1] {
				assert.False(t, c.Done)
				assert.Nil(t, c.Usage)
			}
		})
	}
}

func TestMockClient_Usage(t *testing.T) {
	resp := complete(t, llm.NewMockClient("a reasonably long answer"), "question")

	assert.Positive(t, resp.Usage.InputTokens)
	assert.Positive(t, resp.Usage.OutputTokens)
	assert.Equal(t, resp.Usage.InputTokens+resp.Usage.OutputTokens, resp.Usage.TotalTokens)
}
