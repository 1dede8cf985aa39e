package llm

import (
	"context"
	"sync"
)

// MockClient is a scripted Client for tests.
type MockClient struct {
	mu           sync.Mutex
	response     string
	responses    []string
	next         int
	err          error
	completeFunc func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	chunkSize    int

	// Calls records every request in order.
	Calls []CompletionRequest
}

// NewMockClient returns a client that always answers response.
func NewMockClient(response string) *MockClient {
	return &MockClient{response: response}
}

// WithResponses makes the client answer with each response in turn,
// cycling back to the first after the last.
func (m *MockClient) WithResponses(responses ...string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = responses
	m.next = 0
	return m
}

// WithError makes every call fail with err.
func (m *MockClient) WithError(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithCompleteFunc computes responses with fn. Streaming uses it too.
func (m *MockClient) WithCompleteFunc(fn func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completeFunc = fn
	return m
}

// WithChunkSize makes Stream deliver content in pieces of n bytes.
// Zero delivers the whole content in the final chunk.
func (m *MockClient) WithChunkSize(n int) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunkSize = n
	return m
}

// Complete implements Client.
func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	fn := m.completeFunc
	if m.err != nil {
		err := m.err
		m.mu.Unlock()
		return nil, err
	}
	content := m.nextResponse()
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return &CompletionResponse{
		Content:      content,
		Usage:        mockUsage(req, content),
		Model:        req.Model,
		FinishReason: "stop",
	}, nil
}

// Stream implements Client.
func (m *MockClient) Stream(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error) {
	resp, err := m.Complete(ctx, req)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	size := m.chunkSize
	m.mu.Unlock()

	var chunks []StreamChunk
	content := resp.Content
	if size > 0 {
		for len(content) > size {
			chunks = append(chunks, StreamChunk{Content: content[:size]})
			content = content[size:]
		}
	}
	usage := resp.Usage
	chunks = append(chunks, StreamChunk{Content: content, Done: true, Usage: &usage})

	ch := make(chan StreamChunk, len(chunks))
	for _, c := range chunks {
		ch <- c
	}
	close(ch)
	return ch, nil
}

// CallCount returns the number of calls made.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// LastCall returns the most recent request, or nil.
func (m *MockClient) LastCall() *CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return nil
	}
	last := m.Calls[len(m.Calls)-1]
	return &last
}

// Reset clears recorded calls and rewinds the response sequence.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
	m.next = 0
}

// nextResponse must be called with mu held.
func (m *MockClient) nextResponse() string {
	if len(m.responses) == 0 {
		return m.response
	}
	r := m.responses[m.next%len(m.responses)]
	m.next++
	return r
}

func mockUsage(req CompletionRequest, content string) TokenUsage {
	in := 1
	for _, msg := range req.Messages {
		in += EstimateTokens(msg.Content)
	}
	out := max(EstimateTokens(content), 1)
	return TokenUsage{InputTokens: in, OutputTokens: out, TotalTokens: in + out}
}
