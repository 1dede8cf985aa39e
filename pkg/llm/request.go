package llm

import "time"

// CompletionRequest configures an LLM completion call.
type CompletionRequest struct {
	Messages []Message `json:"messages"`

	// Model configuration. Zero values defer to the client's defaults.
	Model       string  `json:"model,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// Message is a conversation turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Role identifies the message sender.
type Role string

// Standard message roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Prompt wraps a bare prompt string as a single user message.
func Prompt(text string) []Message {
	return []Message{{Role: RoleUser, Content: text}}
}

// SystemAndUser builds a system instruction followed by a user message.
func SystemAndUser(system, user string) []Message {
	return []Message{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: user},
	}
}

// CompletionResponse is the output of a completion call.
type CompletionResponse struct {
	Content      string        `json:"content"`
	Usage        TokenUsage    `json:"usage"`
	Model        string        `json:"model"`
	FinishReason string        `json:"finish_reason"`
	Duration     time.Duration `json:"duration"`
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Add adds other to u.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.TotalTokens += other.TotalTokens
}

// StreamChunk is a piece of a streaming response.
type StreamChunk struct {
	Content string      `json:"content,omitempty"`
	Usage   *TokenUsage `json:"usage,omitempty"` // Only set in final chunk
	Done    bool        `json:"done"`
	Error   error       `json:"-"` // Non-nil if streaming failed
}
