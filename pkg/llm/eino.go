package llm

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// EinoClient adapts an eino chat model to Client.
type EinoClient struct {
	model       model.BaseChatModel
	modelName   string
	maxTokens   int
	temperature float64
	tokenizer   Tokenizer
}

// EinoOption configures an EinoClient.
type EinoOption func(*EinoClient)

// WithModelName records the model name reported in responses.
func WithModelName(name string) EinoOption {
	return func(c *EinoClient) { c.modelName = name }
}

// WithMaxTokens caps completion length when a request does not.
func WithMaxTokens(n int) EinoOption {
	return func(c *EinoClient) { c.maxTokens = n }
}

// WithTemperature sets the sampling temperature when a request does not.
func WithTemperature(t float64) EinoOption {
	return func(c *EinoClient) { c.temperature = t }
}

// WithTokenizer sets the tokenizer behind CountTokens.
func WithTokenizer(t Tokenizer) EinoOption {
	return func(c *EinoClient) { c.tokenizer = t }
}

// NewEinoClient wraps m.
func NewEinoClient(m model.BaseChatModel, opts ...EinoOption) *EinoClient {
	c := &EinoClient{model: m}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CountTokens implements Tokenizer, estimating when no tokenizer is set.
func (c *EinoClient) CountTokens(text string) int {
	if c.tokenizer == nil {
		return EstimateTokens(text)
	}
	return c.tokenizer.CountTokens(text)
}

// Complete implements Client.
func (c *EinoClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	msg, err := c.model.Generate(ctx, toSchema(req.Messages), c.options(req)...)
	if err != nil {
		return nil, NewError("complete", err)
	}

	resp := &CompletionResponse{
		Content:  msg.Content,
		Model:    c.modelFor(req),
		Duration: time.Since(start),
	}
	if msg.ResponseMeta != nil {
		resp.FinishReason = msg.ResponseMeta.FinishReason
		if u := usageOf(msg.ResponseMeta); u != nil {
			resp.Usage = *u
		}
	}
	return resp, nil
}

// Stream implements Client.
func (c *EinoClient) Stream(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error) {
	reader, err := c.model.Stream(ctx, toSchema(req.Messages), c.options(req)...)
	if err != nil {
		return nil, NewError("stream", err)
	}

	ch := make(chan StreamChunk)
	go func() {
		defer close(ch)
		defer reader.Close()

		var usage *TokenUsage
		for {
			msg, err := reader.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				send(ctx, ch, StreamChunk{Error: NewError("stream", err)})
				return
			}
			if msg.ResponseMeta != nil {
				if u := usageOf(msg.ResponseMeta); u != nil {
					usage = u
				}
			}
			if msg.Content == "" {
				continue
			}
			if !send(ctx, ch, StreamChunk{Content: msg.Content}) {
				return
			}
		}
		send(ctx, ch, StreamChunk{Done: true, Usage: usage})
	}()

	return ch, nil
}

func (c *EinoClient) options(req CompletionRequest) []model.Option {
	var opts []model.Option
	if req.Model != "" {
		opts = append(opts, model.WithModel(req.Model))
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}
	if maxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(maxTokens))
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}
	if temperature > 0 {
		opts = append(opts, model.WithTemperature(float32(temperature)))
	}
	return opts
}

func (c *EinoClient) modelFor(req CompletionRequest) string {
	if req.Model != "" {
		return req.Model
	}
	return c.modelName
}

// send delivers chunk unless ctx is done first. A cancelled consumer gets
// the context error as its last chunk when it is still receiving.
func send(ctx context.Context, ch chan<- StreamChunk, chunk StreamChunk) bool {
	select {
	case ch <- chunk:
		return true
	case <-ctx.Done():
		select {
		case ch <- StreamChunk{Error: ctx.Err()}:
		default:
		}
		return false
	}
}

func toSchema(msgs []Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			out = append(out, schema.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, schema.AssistantMessage(m.Content, nil))
		default:
			out = append(out, schema.UserMessage(m.Content))
		}
	}
	return out
}

func usageOf(meta *schema.ResponseMeta) *TokenUsage {
	if meta.Usage == nil {
		return nil
	}
	return &TokenUsage{
		InputTokens:  meta.Usage.PromptTokens,
		OutputTokens: meta.Usage.CompletionTokens,
		TotalTokens:  meta.Usage.TotalTokens,
	}
}
