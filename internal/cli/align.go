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
	"github.com/mgpai22/vachak/internal/video"
	"github.com/spf13/cobra"
)

var alignCmd = &cobra.Command{
	Use:   "align [video_file] [subtitle_file]",
	Short: "Render an aligned narration track for a video",
	Long: `Render a single narration track where every generated clip plays
at its subtitle's timestamp.

Clip timing always follows the subtitle file, not the timestamps recorded
when the clips were generated, so subtitles can be retimed after narration
without regenerating any audio. Narrations whose subtitle no longer exists
fall back to their recorded timing.

The track spans the full video by default (padded with silence past the
last clip); --duration overrides the probed length.

Examples:
  vachak align video.mp4 video.srt
  vachak align video.mp4 video.srt --manifest clips/manifest.json
  vachak align video.mp4 video.srt -o narration.mp3 --duration 3600`,
	Args: cobra.ExactArgs(2),
	RunE: runAlign,
}

func init() {
	rootCmd.AddCommand(alignCmd)

	alignCmd.Flags().
		StringP("manifest", "m", "", "Narration manifest (default: <subtitle_name>_clips/manifest.json)")
	alignCmd.Flags().
		Float64("duration", 0, "Track duration in seconds (default: probed from the video)")
	alignCmd.Flags().
		Int("sample-rate", 44100, "Sample rate of the rendered track")
	alignCmd.Flags().
		Float64("fallback-duration", 5, "Assumed clip duration when a narration's subtitle is missing")
}

func runAlign(cmd *cobra.Command, args []string) error {
	videoPath := args[0]
	subtitlePath := args[1]
	ctx := context.Background()

	manifestPath, _ := cmd.Flags().GetString("manifest")
	durationOverride, _ := cmd.Flags().GetFloat64("duration")
	sampleRate, _ := cmd.Flags().GetInt("sample-rate")
	fallbackDur, _ := cmd.Flags().GetFloat64("fallback-duration")
	outputPath, _ := cmd.Flags().GetString("output")

	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("video file not found: %s", videoPath)
	}
	if sampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	if manifestPath == "" {
		manifestPath = filepath.Join(
			strings.TrimSuffix(subtitlePath, filepath.Ext(subtitlePath))+
				"_clips",
			"manifest.json",
		)
	}
	if outputPath == "" {
		outputPath = strings.TrimSuffix(
			videoPath, filepath.Ext(videoPath),
		) + ".narration.wav"
	}

	subs, err := loadSubtitles(subtitlePath)
	if err != nil {
		return err
	}

	manifest, err := narration.LoadManifest(manifestPath)
	if err != nil {
		return err
	}
	narrations := manifest.Narrations()

	logger.Infow("Rendering aligned narration",
		"video", videoPath,
		"subtitles", subtitlePath,
		"manifest", manifestPath,
		"narrations", len(narrations),
		"sample_rate", sampleRate,
	)

	cfg := align.DefaultConfig()
	cfg.SampleRate = sampleRate
	if fallbackDur > 0 {
		cfg.FallbackClipSeconds = fallbackDur
	}

	store := narration.NewDirStore(filepath.Dir(manifestPath), sampleRate)
	builder := align.NewBuilder(store, cfg, logger)

	track, err := builder.Build(ctx, narrations, subs, func(u align.StatusUpdate) {
		logger.Infow("Build status",
			"status", string(u.Status),
			"message", u.Message,
		)
	})
	if err != nil {
		return fmt.Errorf("failed to build aligned track: %w", err)
	}

	// pad the track to the video so players see one continuous stream
	duration := durationOverride
	if duration <= 0 {
		info, err := video.GetInfo(ctx, videoPath)
		if err != nil {
			return fmt.Errorf("failed to probe video: %w", err)
		}
		duration = info.Duration.Seconds()
	}
	track.Audio.PadTo(time.Duration(duration * float64(time.Second)))

	if err := track.Encode(ctx, outputPath); err != nil {
		return fmt.Errorf("failed to encode aligned track: %w", err)
	}

	placed, skipped, fallbacks := 0, 0, 0
	for _, p := range track.Placements {
		switch {
		case p.Skipped:
			skipped++
		case p.Unresolved:
			fallbacks++
			placed++
		default:
			placed++
		}
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Aligned narration rendered: %s\n", absOutput)
	fmt.Printf("  Clips placed: %d\n", placed)
	if fallbacks > 0 {
		fmt.Printf("  Fallback timings: %d\n", fallbacks)
	}
	if skipped > 0 {
		fmt.Printf("  Skipped: %d\n", skipped)
	}
	fmt.Printf("  Duration: %.1fs\n", duration)

	return nil
}
