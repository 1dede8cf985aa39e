package llm

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// baseEncoding counts tokens for OpenAI-compatible models tiktoken does not
// know by name, such as the Llama models served by Groq.
const baseEncoding = "cl100k_base"

var offlineBPE sync.Once

// BPETokenizer counts tokens with a tiktoken byte-pair encoding.
type BPETokenizer struct {
	enc *tiktoken.Tiktoken
}

// NewTokenizer returns the tokenizer for a provider's model. It returns nil
// without error for providers whose tokenizer is not public (claude,
// ollama); callers then estimate.
func NewTokenizer(provider, model string) (Tokenizer, error) {
	switch strings.ToLower(provider) {
	case ProviderGroq, ProviderOpenAI, ProviderDeepSeek, "custom":
	default:
		return nil, nil
	}

	offlineBPE.Do(func() { tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader()) })

	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(baseEncoding)
		if err != nil {
			return nil, fmt.Errorf("load %s encoding: %w", baseEncoding, err)
		}
	}
	return &BPETokenizer{enc: enc}, nil
}

// CountTokens implements Tokenizer. Special-token text such as
// <|endoftext|> is counted as ordinary input.
func (t *BPETokenizer) CountTokens(text string) int {
	return len(t.enc.Encode(text, []string{"all"}, nil))
}
