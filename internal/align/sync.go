package align

import (
	"math"
	"sync"
	"time"

	"github.com/mgpai22/vachak/internal/logging"
)

// Synchronizer keeps an asset's playhead locked to a video transport.
// Steady-state timeupdate events are throttled; the sync-critical
// transitions (seeked, play, pause, ratechange) always apply immediately.
type Synchronizer struct {
	mu sync.Mutex

	video VideoTransport
	cfg   Config
	log   *logging.Logger

	asset       *Asset
	unsubscribe func()
	seeking     bool
	lastUpdate  time.Time

	now func() time.Time
}

func NewSynchronizer(
	video VideoTransport,
	cfg Config,
	log *logging.Logger,
) *Synchronizer {
	if log == nil {
		log = logging.NewNop()
	}
	return &Synchronizer{
		video: video,
		cfg:   cfg,
		log:   log,
		now:   time.Now,
	}
}

// Attach binds an asset to the video transport, replacing any previous
// binding. If the video is already playing, the asset snaps to the video's
// current position and rate and starts immediately, so there is no silent
// gap after enabling aligned mode or finishing a rebuild mid-playback.
func (s *Synchronizer) Attach(asset *Asset) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.detachLocked()

	s.asset = asset
	s.seeking = false
	s.lastUpdate = time.Time{}

	asset.SetRate(s.video.PlaybackRate())
	asset.Seek(s.video.CurrentTime())
	if !s.video.Paused() {
		asset.Play()
	}

	s.unsubscribe = s.video.Subscribe(s.handleEvent)
}

// Detach unbinds the current asset, pausing it and resetting its position
// so no residual audio can play.
func (s *Synchronizer) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detachLocked()
}

func (s *Synchronizer) Attached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.asset != nil
}

func (s *Synchronizer) detachLocked() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	if s.asset != nil {
		s.asset.Pause()
		s.asset.Seek(0)
		s.asset = nil
	}
}

func (s *Synchronizer) handleEvent(ev TransportEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	asset := s.asset
	if asset == nil {
		return
	}

	switch ev.Type {
	case EventTimeUpdate:
		// intermediate scrub positions would cause stutter
		if s.seeking {
			return
		}
		if s.now().Sub(s.lastUpdate) < s.cfg.TimeUpdateThrottle {
			return
		}
		s.lastUpdate = s.now()
		asset.Seek(ev.Time)
		s.mirrorPlayState(asset, ev.Paused)

	case EventSeeking:
		s.seeking = true

	case EventSeeked:
		s.seeking = false
		s.lastUpdate = s.now()
		asset.Seek(ev.Time)
		s.mirrorPlayState(asset, ev.Paused)

	case EventPlay:
		asset.Seek(ev.Time)
		asset.Play()

	case EventPause:
		asset.Pause()
		asset.Seek(ev.Time)

	case EventRateChange:
		asset.SetRate(ev.Rate)
		drift := math.Abs(asset.Position() - ev.Time)
		if drift > s.cfg.DriftTolerance {
			s.log.Debugw("resnapping after rate change",
				"drift", drift,
			)
			asset.Seek(ev.Time)
		}
	}
}

func (s *Synchronizer) mirrorPlayState(asset *Asset, paused bool) {
	if paused {
		asset.Pause()
	} else {
		asset.Play()
	}
}
