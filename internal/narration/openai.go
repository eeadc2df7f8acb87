package narration

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// implements Narrator interface using the OpenAI speech API
type OpenAINarrator struct {
	client  openai.Client
	model   string
	options Options
}

func NewOpenAINarrator(apiKey string, opts Options) (*OpenAINarrator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	model := opts.Model
	if model == "" {
		model = "gpt-4o-mini-tts"
	}
	if opts.Voice == "" {
		opts.Voice = "alloy"
	}

	return &OpenAINarrator{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

// synthesizes one clip; the API returns a complete wav container which is
// streamed straight to disk
func (n *OpenAINarrator) Synthesize(
	ctx context.Context,
	text string,
	outputPath string,
) error {
	resp, err := n.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(n.model),
		Input:          text,
		Voice:          openai.AudioSpeechNewParamsVoice(n.options.Voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatWAV,
	})
	if err != nil {
		return fmt.Errorf("speech synthesis failed: %w", err)
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create clip directory: %w", err)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create clip file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to write clip: %w", err)
	}
	return nil
}
