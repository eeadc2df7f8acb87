package align

import (
	"context"
	"fmt"
	"time"

	"github.com/mgpai22/vachak/internal/audio"
	"github.com/mgpai22/vachak/internal/logging"
)

// where a narration ended up on the rendered track
type Placement struct {
	SubtitleID int
	Start      float64
	End        float64
	Unresolved bool
	Skipped    bool
	SkipReason string
}

// the rendered aligned-narration artifact: one mono track spanning the
// whole timeline, silent outside clip placements
type Track struct {
	Audio      *audio.Buffer
	Duration   float64
	Placements []Placement
}

// encodes the rendered track to a playable file
func (t *Track) Encode(ctx context.Context, outputPath string) error {
	if err := audio.EncodeFile(ctx, t.Audio, outputPath); err != nil {
		return newAlignmentError(ErrEncodeFailed, err)
	}
	return nil
}

// Builder renders aligned narration tracks. Clips are fetched through the
// injected ClipStore and mixed additively where their windows overlap:
// later clips layer on top of earlier ones, summed and clamped, mirroring
// independent clip placement rather than truncating the earlier clip.
type Builder struct {
	store ClipStore
	cfg   Config
	log   *logging.Logger
}

func NewBuilder(store ClipStore, cfg Config, log *logging.Logger) *Builder {
	if log == nil {
		log = logging.NewNop()
	}
	return &Builder{store: store, cfg: cfg, log: log}
}

// Build resolves timing for every narration against the given subtitles and
// renders the concatenated track. onStatus observes
// preparing -> generating -> complete on success, or an error terminal;
// exactly one terminal fires per call. Per-clip fetch failures leave that
// window silent and the build continues.
func (b *Builder) Build(
	ctx context.Context,
	narrations []Narration,
	subtitles []Subtitle,
	onStatus StatusFunc,
) (*Track, error) {
	emit := func(s Status, msg string) {
		if onStatus != nil {
			onStatus(StatusUpdate{Status: s, Message: msg})
		}
	}

	emit(StatusPreparing, "resolving narration timings")

	if len(narrations) == 0 {
		err := newAlignmentError(ErrEmptyInput, fmt.Errorf("no narrations to align"))
		emit(StatusError, err.Error())
		return nil, err
	}

	byID := SubtitleIndex(subtitles)

	timings := make([]ResolvedTiming, len(narrations))
	duration := 0.0
	for i, n := range narrations {
		t := ResolveTiming(n, byID, b.cfg.FallbackClipSeconds)
		timings[i] = t
		if t.Unresolved {
			b.log.Debugw("narration timing unresolved, using fallback",
				"subtitle_id", n.SubtitleID,
				"start", t.Start,
				"end", t.End,
			)
		}
		if t.End > duration {
			duration = t.End
		}
	}
	if duration < b.cfg.MinTrackSeconds {
		duration = b.cfg.MinTrackSeconds
	}

	if b.cfg.SampleRate <= 0 {
		err := newAlignmentError(
			ErrEncodeFailed,
			fmt.Errorf("invalid sample rate %d", b.cfg.SampleRate),
		)
		emit(StatusError, err.Error())
		return nil, err
	}

	emit(StatusGenerating, "mixing narration clips")

	track := &Track{
		Audio: audio.Silence(
			time.Duration(duration*float64(time.Second)),
			b.cfg.SampleRate,
		),
		Duration:   duration,
		Placements: make([]Placement, len(narrations)),
	}

	for i, n := range narrations {
		t := timings[i]
		place := Placement{
			SubtitleID: n.SubtitleID,
			Start:      t.Start,
			End:        t.End,
			Unresolved: t.Unresolved,
		}

		switch {
		case !n.Success:
			place.Skipped = true
			place.SkipReason = "generation failed"
			b.log.Warnw("skipping failed narration",
				"subtitle_id", n.SubtitleID,
			)
		default:
			clip, err := b.store.Fetch(ctx, n.ClipRef)
			if err != nil {
				place.Skipped = true
				place.SkipReason = err.Error()
				b.log.Warnw("failed to fetch narration clip, leaving silence",
					"subtitle_id", n.SubtitleID,
					"clip_ref", n.ClipRef,
					"error", err,
				)
				break
			}
			track.Audio.MixAt(
				clip,
				time.Duration(t.Start*float64(time.Second)),
			)
		}

		track.Placements[i] = place

		if ctx.Err() != nil {
			err := newAlignmentError(ErrEncodeFailed, ctx.Err())
			emit(StatusError, err.Error())
			return nil, err
		}
	}

	emit(StatusComplete, "aligned narration ready")
	return track, nil
}
