package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mgpai22/vachak/internal/align"
	"github.com/mgpai22/vachak/internal/narration"
	"github.com/mgpai22/vachak/internal/translate"
	"github.com/spf13/cobra"
)

var narrateCmd = &cobra.Command{
	Use:   "narrate [subtitle_file]",
	Short: "Generate narration clips for a subtitle file",
	Long: `Generate one speech clip per subtitle entry using AI text-to-speech.

Clips and a manifest describing them are written to the clip directory; the
manifest is what 'vachak align' consumes. Adjacent subtitles can be merged
into a single spoken unit with --group-gap so short back-to-back lines are
read in one breath.

With --translate-to, subtitle text is translated before synthesis so the
narration is spoken in the target language.

A failed clip can be regenerated individually with --retry without touching
the rest of the manifest.

Examples:
  vachak narrate video.srt
  vachak narrate video.srt --provider openai --voice nova
  vachak narrate video.srt --group-gap 0.5 --concurrency 5
  vachak narrate video.srt --translate-to japanese
  vachak narrate video.srt --retry 42`,
	Args: cobra.ExactArgs(1),
	RunE: runNarrate,
}

func init() {
	rootCmd.AddCommand(narrateCmd)

	narrateCmd.Flags().
		String("provider", "gemini", "Speech provider (gemini, openai)")
	narrateCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY env var)")
	narrateCmd.Flags().
		String("model", "", "Speech model (provider-specific, uses sensible defaults)")
	narrateCmd.Flags().
		String("voice", "", "Voice name (provider-specific, uses sensible defaults)")
	narrateCmd.Flags().
		Float64("group-gap", 0, "Merge adjacent subtitles closer than this many seconds into one clip")
	narrateCmd.Flags().
		Int("concurrency", 3, "Number of parallel synthesis workers")
	narrateCmd.Flags().
		String("clip-dir", "", "Clip output directory (default: <subtitle_name>_clips)")
	narrateCmd.Flags().
		String("translate-to", "", "Translate subtitle text to this language before synthesis (requires ANTHROPIC_API_KEY)")
	narrateCmd.Flags().
		Int("retry", 0, "Regenerate a single clip by subtitle id in an existing manifest")
}

func runNarrate(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]
	ctx := context.Background()

	providerStr, _ := cmd.Flags().GetString("provider")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	voice, _ := cmd.Flags().GetString("voice")
	groupGap, _ := cmd.Flags().GetFloat64("group-gap")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	clipDir, _ := cmd.Flags().GetString("clip-dir")
	translateTo, _ := cmd.Flags().GetString("translate-to")
	retryID, _ := cmd.Flags().GetInt("retry")
	inputLang, _ := cmd.Flags().GetString("language")

	if _, err := os.Stat(subtitlePath); os.IsNotExist(err) {
		return fmt.Errorf("subtitle file not found: %s", subtitlePath)
	}
	if concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}

	provider := narration.Provider(providerStr)
	apiKey, err := resolveSpeechAPIKey(provider, apiKey)
	if err != nil {
		return err
	}

	if clipDir == "" {
		clipDir = strings.TrimSuffix(
			subtitlePath, filepath.Ext(subtitlePath),
		) + "_clips"
	}
	manifestPath := filepath.Join(clipDir, "manifest.json")

	narrator, err := narration.Factory(ctx, provider, apiKey, narration.Options{
		Model: model,
		Voice: voice,
	})
	if err != nil {
		return fmt.Errorf("failed to create narrator: %w", err)
	}

	generator := narration.NewGenerator(narrator, clipDir, voice, logger)

	if retryID > 0 {
		return runRetry(ctx, generator, manifestPath, retryID)
	}

	subs, err := loadSubtitles(subtitlePath)
	if err != nil {
		return err
	}

	if translateTo != "" {
		logger.Infow("Translating subtitles before synthesis",
			"target_language", translateTo,
		)
		if err := translateSubtitles(
			ctx, subs, inputLang, translateTo,
		); err != nil {
			return err
		}
	}

	units := narration.GroupSubtitles(subs, groupGap)

	logger.Infow("Starting narration generation",
		"input", subtitlePath,
		"clip_dir", clipDir,
		"provider", providerStr,
		"units", len(units),
		"concurrency", concurrency,
	)

	results, err := generator.GenerateAll(ctx, units, concurrency)
	if err != nil {
		return fmt.Errorf("narration generation failed: %w", err)
	}

	manifest := &narration.Manifest{
		GeneratedAt: time.Now().UTC(),
		Provider:    providerStr,
		Model:       model,
		Voice:       voice,
		Results:     results,
	}
	if err := manifest.Save(manifestPath); err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		if !res.Success {
			failed++
		}
	}

	absManifest, _ := filepath.Abs(manifestPath)
	fmt.Printf("Narration clips generated: %s\n", absManifest)
	fmt.Printf("  Clips: %d\n", len(results))
	if failed > 0 {
		fmt.Printf("  Failed: %d (retry with --retry <id>)\n", failed)
	}

	return nil
}

func runRetry(
	ctx context.Context,
	generator *narration.Generator,
	manifestPath string,
	subtitleID int,
) error {
	manifest, err := narration.LoadManifest(manifestPath)
	if err != nil {
		return err
	}

	res, ok := manifest.Get(subtitleID)
	if !ok {
		return fmt.Errorf("no narration for subtitle %d in %s",
			subtitleID, manifestPath)
	}

	retryErr := generator.Retry(ctx, res)

	// the bumped revision is persisted even on failure so consumers see the
	// attempt
	if err := manifest.Save(manifestPath); err != nil {
		return err
	}
	if retryErr != nil {
		return retryErr
	}

	fmt.Printf(
		"Regenerated clip for subtitle %d (revision %d)\n",
		subtitleID, res.Revision,
	)
	return nil
}

func resolveSpeechAPIKey(
	provider narration.Provider,
	apiKey string,
) (string, error) {
	if apiKey != "" {
		return apiKey, nil
	}

	var envVar string
	switch provider {
	case narration.ProviderGemini:
		envVar = "GEMINI_API_KEY"
	case narration.ProviderOpenAI:
		envVar = "OPENAI_API_KEY"
	default:
		return "", fmt.Errorf("unsupported provider: %s", provider)
	}

	if key := os.Getenv(envVar); key != "" {
		return key, nil
	}
	return "", fmt.Errorf(
		"API key is required: use --api-key flag or set %s environment variable",
		envVar,
	)
}

// translates subtitle texts in place so synthesis speaks the target language
func translateSubtitles(
	ctx context.Context,
	subs []align.Subtitle,
	inputLang string,
	targetLang string,
) error {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return fmt.Errorf(
			"translation requires the ANTHROPIC_API_KEY environment variable",
		)
	}

	translator, err := translate.Factory(
		ctx,
		translate.ProviderAnthropic,
		apiKey,
		translate.Options{
			InputLanguage:  inputLang,
			TargetLanguage: targetLang,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}

	items := make([]translate.TranslationItem, len(subs))
	for i, sub := range subs {
		items[i] = translate.TranslationItem{Index: i, Text: sub.Text}
	}

	results, err := translator.Translate(ctx, items)
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}

	for _, result := range results {
		if result.Index < 0 || result.Index >= len(subs) {
			logger.Warnw("Skipping invalid result index",
				"index", result.Index,
				"max", len(subs)-1,
			)
			continue
		}
		subs[result.Index].Text = result.Text
	}

	return nil
}
