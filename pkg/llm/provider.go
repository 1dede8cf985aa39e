package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/randalmurphal/debategraph/pkg/config"
)

// Supported providers.
const (
	ProviderGroq     = "groq"
	ProviderOpenAI   = "openai"
	ProviderClaude   = "claude"
	ProviderDeepSeek = "deepseek"
	ProviderOllama   = "ollama"
)

// defaultClaudeMaxTokens is required by the Anthropic API.
const defaultClaudeMaxTokens = 1024

// NewChatModel builds the eino chat model for the configured provider.
// Groq is reached through its OpenAI-compatible endpoint.
func NewChatModel(ctx context.Context, s config.LLMSettings) (model.BaseChatModel, error) {
	switch strings.ToLower(s.Provider) {
	case ProviderGroq, ProviderOpenAI, "custom":
		baseURL := s.BaseURL
		if baseURL == "" && strings.EqualFold(s.Provider, ProviderGroq) {
			baseURL = config.DefaultGroqBaseURL
		}
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL: baseURL,
			APIKey:  s.APIKey,
			Model:   s.Model,
			Timeout: s.Timeout,
		})

	case ProviderClaude, "anthropic":
		cfg := &claude.Config{
			APIKey:    s.APIKey,
			Model:     s.Model,
			MaxTokens: s.MaxTokens,
		}
		if cfg.MaxTokens == 0 {
			cfg.MaxTokens = defaultClaudeMaxTokens
		}
		if s.BaseURL != "" {
			baseURL := s.BaseURL
			cfg.BaseURL = &baseURL
		}
		return claude.NewChatModel(ctx, cfg)

	case ProviderDeepSeek:
		return deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			BaseURL: s.BaseURL,
			APIKey:  s.APIKey,
			Model:   s.Model,
			Timeout: s.Timeout,
		})

	case ProviderOllama:
		return ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
			BaseURL: s.BaseURL,
			Model:   s.Model,
			Timeout: s.Timeout,
		})

	default:
		return nil, fmt.Errorf("unknown llm provider %q", s.Provider)
	}
}

// NewClient builds a Client for the configured provider.
func NewClient(ctx context.Context, s config.LLMSettings) (*EinoClient, error) {
	m, err := NewChatModel(ctx, s)
	if err != nil {
		return nil, NewError("init", err)
	}
	tok, err := NewTokenizer(s.Provider, s.Model)
	if err != nil {
		return nil, NewError("init", err)
	}
	return NewEinoClient(m,
		WithModelName(s.Model),
		WithMaxTokens(s.MaxTokens),
		WithTemperature(s.Temperature),
		WithTokenizer(tok),
	), nil
}
