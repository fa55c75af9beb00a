package llm

import (
	"context"
)

// LLMClient produces a completion for a single prompt.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Options tunes sampling for providers that support it.
type Options struct {
	Temperature float32
	MaxTokens   int
}
