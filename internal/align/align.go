// Package align builds a single narration track spanning a whole video from
// per-subtitle narration clips and keeps its playback locked to the video.
package align

import (
	"context"
	"time"

	"github.com/mgpai22/vachak/internal/audio"
)

// timed subtitle record, times in seconds
type Subtitle struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// one generated narration clip tied to a subtitle or subtitle group.
// Revision increases every time the clip is regenerated, so staleness is a
// plain equality check on (SubtitleID, Revision).
type Narration struct {
	SubtitleID  int       `json:"subtitle_id"`
	OriginalIDs []int     `json:"original_ids,omitempty"`
	ClipRef     string    `json:"clip_ref"`
	Revision    int       `json:"revision"`
	Success     bool      `json:"success"`
	Start       float64   `json:"start,omitempty"`
	End         float64   `json:"end,omitempty"`
	RetriedAt   time.Time `json:"retried_at,omitzero"`
}

// authoritative timing for a narration after joining against the current
// subtitle set. Unresolved timings are usable fallbacks, but stale: they
// should be recomputed on the next subtitle update.
type ResolvedTiming struct {
	SubtitleID int
	Start      float64
	End        float64
	Unresolved bool
}

// build/playback status reported through the subscription interface
type Status string

const (
	StatusIdle       Status = "idle"
	StatusPreparing  Status = "preparing"
	StatusGenerating Status = "generating"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

type StatusUpdate struct {
	Status  Status
	Message string
}

type StatusFunc func(StatusUpdate)

// session state owned by the Controller
type SyncState struct {
	IsGenerating         bool
	IsAvailable          bool
	LastStatus           Status
	LastRegenerationTime time.Time
	LastFingerprint      string
	LastSubFingerprint   string
}

// resolves a clip reference to decoded audio; may fail transiently
type ClipStore interface {
	Fetch(ctx context.Context, clipRef string) (*audio.Buffer, error)
}

// transport event types mirroring an HTML media element
type EventType string

const (
	EventTimeUpdate EventType = "timeupdate"
	EventSeeking    EventType = "seeking"
	EventSeeked     EventType = "seeked"
	EventPlay       EventType = "play"
	EventPause      EventType = "pause"
	EventRateChange EventType = "ratechange"
)

type TransportEvent struct {
	Type   EventType
	Time   float64
	Rate   float64
	Paused bool
}

// playable video element abstraction driving the synchronizer
type VideoTransport interface {
	CurrentTime() float64
	Paused() bool
	PlaybackRate() float64

	// Subscribe registers an event callback and returns an unsubscribe func.
	Subscribe(fn func(TransportEvent)) (unsubscribe func())
}

// tunables for the whole subsystem
type Config struct {
	// sample rate of the rendered narration track
	SampleRate int

	// duration assumed for a narration whose subtitle cannot be found
	FallbackClipSeconds float64

	// minimum track duration even when all timings end earlier
	MinTrackSeconds float64

	// window collapsing bursts of change events into one rebuild
	DebounceWindow time.Duration

	// quiet period after a rebuild during which non-forced triggers drop
	Cooldown time.Duration

	// steady-state timeupdate throttle
	TimeUpdateThrottle time.Duration

	// position drift beyond which a rate change also resnaps position
	DriftTolerance float64
}

func DefaultConfig() Config {
	return Config{
		SampleRate:          44100,
		FallbackClipSeconds: 5,
		MinTrackSeconds:     1,
		DebounceWindow:      100 * time.Millisecond,
		Cooldown:            500 * time.Millisecond,
		TimeUpdateThrottle:  500 * time.Millisecond,
		DriftTolerance:      0.3,
	}
}
