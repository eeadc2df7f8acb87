// Package narration generates per-subtitle speech clips and maintains the
// manifest that records them.
package narration

import (
	"context"
	"fmt"

	"github.com/mgpai22/vachak/internal/align"
)

// one narration clip plus the text it was synthesized from
type Result struct {
	align.Narration
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

// interface for speech synthesis
type Narrator interface {
	Synthesize(ctx context.Context, text, outputPath string) error
}

// speech synthesis provider
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// synthesis options
type Options struct {
	Model string
	Voice string
}

// creates narrator based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Narrator, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiNarrator(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAINarrator(apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
