package narration

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/mgpai22/vachak/internal/audio"
)

// Gemini TTS returns raw little-endian 16-bit PCM at this rate
const geminiPCMRate = 24000

// implements Narrator interface using Google Gemini TTS
type GeminiNarrator struct {
	client  *genai.Client
	model   string
	options Options
}

func NewGeminiNarrator(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*GeminiNarrator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash-preview-tts"
	}
	if opts.Voice == "" {
		opts.Voice = "Kore"
	}

	return &GeminiNarrator{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

// synthesizes one clip and writes it as a wav file
func (n *GeminiNarrator) Synthesize(
	ctx context.Context,
	text string,
	outputPath string,
) error {
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: n.options.Voice,
				},
			},
		},
	}

	result, err := n.client.Models.GenerateContent(
		ctx, n.model, genai.Text(text), config,
	)
	if err != nil {
		return fmt.Errorf("speech synthesis failed: %w", err)
	}

	pcm, err := extractAudioData(result)
	if err != nil {
		return err
	}

	buf := audio.FromPCM16(pcm, geminiPCMRate)
	if err := audio.EncodeFile(ctx, buf, outputPath); err != nil {
		return fmt.Errorf("failed to write clip: %w", err)
	}
	return nil
}

// pulls the inline PCM bytes out of a generate response
func extractAudioData(result *genai.GenerateContentResponse) ([]byte, error) {
	if result == nil || len(result.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}

	return nil, fmt.Errorf("no audio in Gemini response")
}
