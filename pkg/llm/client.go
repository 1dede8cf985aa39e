package llm

import (
	"context"
	"fmt"
	"unicode/utf8"
)

// Client is a chat completion backend.
type Client interface {
	// Complete returns the whole response at once.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Stream returns response chunks as they arrive. The channel is closed
	// after a chunk with Done or Error set.
	Stream(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error)
}

// Tokenizer counts tokens the way a model does.
// Clients that know their model's tokenizer implement it.
type Tokenizer interface {
	CountTokens(text string) int
}

// EstimateTokens approximates a token count at four characters per token.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + 3) / 4
}

// Error wraps a failure from a Client operation.
type Error struct {
	Op  string
	Err error
}

// NewError creates an Error for op.
func NewError(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("llm %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}
