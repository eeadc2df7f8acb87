package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgpai22/vachak/internal/subtitle"
	"github.com/mgpai22/vachak/internal/translate"
	"github.com/spf13/cobra"
)

var translateCmd = &cobra.Command{
	Use:   "translate [subtitle_file]",
	Short: "Translate subtitles to another language using AI",
	Long: `Translate an existing subtitle file to another language using AI.

Supports SRT and VTT formats. The translation is phrased for narration, so
the output reads naturally when spoken aloud by 'vachak narrate'.

The --overlay flag creates bilingual subtitles with the translated text
first, followed by the original text on the next line.

Examples:
  vachak translate video.srt --target-language japanese
  vachak translate video.vtt -l english --target-language spanish -o translated.vtt
  vachak translate video.srt -t french --overlay`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().
		StringP("target-language", "t", "", "Target language for translation (required)")
	translateCmd.Flags().
		Bool("overlay", false, "Overlay translated text with original (bilingual subtitles)")
	translateCmd.Flags().
		StringP("api-key", "k", "", "API key (or set ANTHROPIC_API_KEY env var)")
	translateCmd.Flags().
		String("model", "", "Model to use for translation (uses a sensible default)")
	translateCmd.Flags().
		Bool("model-override", false, "Allow any custom model, bypassing model validation")
	translateCmd.Flags().
		Int("batch-size", translate.DefaultBatchSize, "Number of subtitle entries per API request")

	_ = translateCmd.MarkFlagRequired("target-language")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]
	ctx := context.Background()

	targetLang, _ := cmd.Flags().GetString("target-language")
	overlay, _ := cmd.Flags().GetBool("overlay")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	modelOverride, _ := cmd.Flags().GetBool("model-override")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	outputPath, _ := cmd.Flags().GetString("output")
	inputLang, _ := cmd.Flags().GetString("language")

	if _, err := os.Stat(subtitlePath); os.IsNotExist(err) {
		return fmt.Errorf("subtitle file not found: %s", subtitlePath)
	}

	ext := strings.ToLower(filepath.Ext(subtitlePath))
	if ext != ".srt" && ext != ".vtt" {
		return fmt.Errorf(
			"unsupported subtitle format %q: use .srt or .vtt", ext,
		)
	}

	if targetLang == "" {
		return fmt.Errorf("target language is required")
	}

	if inputLang != "" &&
		strings.EqualFold(
			strings.TrimSpace(inputLang),
			strings.TrimSpace(targetLang),
		) {
		return fmt.Errorf(
			"input language %q and target language %q cannot be the same",
			inputLang,
			targetLang,
		)
	}

	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf(
			"API key is required: use --api-key flag or set ANTHROPIC_API_KEY environment variable",
		)
	}

	if model != "" && !modelOverride && !isValidAnthropicModel(model) {
		return fmt.Errorf(
			"unsupported model %q: valid models are claude-opus-4-5, claude-sonnet-4-5, claude-haiku-4-5 (use --model-override to bypass)",
			model,
		)
	}

	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be positive, got %d", batchSize)
	}

	if outputPath == "" {
		baseName := strings.TrimSuffix(subtitlePath, filepath.Ext(subtitlePath))
		if overlay {
			outputPath = fmt.Sprintf("%s.%s.overlay%s", baseName, targetLang, ext)
		} else {
			outputPath = fmt.Sprintf("%s.%s%s", baseName, targetLang, ext)
		}
	}

	logger.Infow("Starting subtitle translation",
		"input", subtitlePath,
		"output", outputPath,
		"target_language", targetLang,
		"input_language", inputLang,
		"overlay", overlay,
		"model", model,
	)

	subFile, err := subtitle.Open(subtitlePath)
	if err != nil {
		return fmt.Errorf("failed to parse subtitle file: %w", err)
	}

	sub := subFile.Subtitle()
	if len(sub.Entries) == 0 {
		return fmt.Errorf("subtitle file contains no entries")
	}

	logger.Infow("Parsed subtitle file",
		"entries", len(sub.Entries),
		"format", subFile.Format(),
	)

	opts := translate.Options{
		InputLanguage:  inputLang,
		TargetLanguage: targetLang,
		Model:          model,
		BatchSize:      batchSize,
	}

	translator, err := translate.Factory(
		ctx, translate.ProviderAnthropic, apiKey, opts,
	)
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}

	items := make([]translate.TranslationItem, len(sub.Entries))
	for i, entry := range sub.Entries {
		items[i] = translate.TranslationItem{
			Index: i,
			Text:  entry.Text,
		}
	}

	logger.Infow("Translating subtitles", "items", len(items))

	results, err := translator.Translate(ctx, items)
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}

	logger.Infow("Translation complete", "results", len(results))

	for _, result := range results {
		if result.Index < 0 || result.Index >= len(sub.Entries) {
			logger.Warnw("Skipping invalid result index",
				"index", result.Index,
				"max", len(sub.Entries)-1,
			)
			continue
		}

		text := result.Text
		if overlay {
			// translated + newline + original
			text = result.Text + "\n" + sub.Entries[result.Index].Text
		}
		if err := subFile.SetText(result.Index, text); err != nil {
			return fmt.Errorf(
				"failed to set text for entry %d: %w", result.Index, err,
			)
		}
	}

	if err := subFile.Write(outputPath); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Subtitles translated successfully: %s\n", absOutput)
	fmt.Printf("  Entries: %d\n", len(sub.Entries))
	fmt.Printf("  Target language: %s\n", targetLang)
	if overlay {
		fmt.Printf("  Mode: bilingual overlay\n")
	}

	return nil
}
