package align

import (
	"sync"
	"time"
)

// Asset is the transport surface over a built track. It models the playhead
// the synchronizer drives: position advances in wall-clock time while
// playing, scaled by rate, and clamps to the track bounds. The rendered
// audio stays reachable through Track for whoever feeds an output device or
// encoder.
type Asset struct {
	mu sync.Mutex

	track    *Track
	playing  bool
	rate     float64
	base     float64
	baseAt   time.Time
	released bool

	now func() time.Time
}

func NewAsset(track *Track) *Asset {
	return &Asset{
		track: track,
		rate:  1,
		now:   time.Now,
	}
}

func (a *Asset) Track() *Track {
	return a.track
}

func (a *Asset) Duration() float64 {
	return a.track.Duration
}

func (a *Asset) Play() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released || a.playing {
		return
	}
	a.base = a.positionLocked()
	a.baseAt = a.now()
	a.playing = true
}

func (a *Asset) Pause() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.playing {
		return
	}
	a.base = a.positionLocked()
	a.playing = false
}

func (a *Asset) Playing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.playing
}

func (a *Asset) Seek(position float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if position < 0 {
		position = 0
	}
	if position > a.track.Duration {
		position = a.track.Duration
	}
	a.base = position
	a.baseAt = a.now()
}

func (a *Asset) Position() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.positionLocked()
}

func (a *Asset) SetRate(rate float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if rate <= 0 {
		return
	}
	// rebase so the rate change applies from the current position
	a.base = a.positionLocked()
	a.baseAt = a.now()
	a.rate = rate
}

func (a *Asset) Rate() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rate
}

// stops playback and drops the playhead; the asset must stay silent after
// release
func (a *Asset) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.playing = false
	a.base = 0
	a.baseAt = a.now()
	a.released = true
}

func (a *Asset) positionLocked() float64 {
	pos := a.base
	if a.playing {
		pos += a.now().Sub(a.baseAt).Seconds() * a.rate
	}
	if pos < 0 {
		pos = 0
	}
	if pos > a.track.Duration {
		pos = a.track.Duration
	}
	return pos
}
