package align

import (
	"context"
	"sync"
	"time"

	"github.com/mgpai22/vachak/internal/logging"
)

// Controller decides when the aligned track must be rebuilt and owns the
// current asset. Change events are fingerprint-gated, debounced, and
// cooldown-gated; rebuilds are suppressed while the video is audibly
// playing unless forced. A build request racing an in-flight build is
// queued and supersedes it: the in-flight result is discarded and a fresh
// build starts as soon as the old one finishes.
type Controller struct {
	mu sync.Mutex

	cfg     Config
	builder *Builder
	video   VideoTransport
	syncer  *Synchronizer
	log     *logging.Logger

	narrations []Narration
	subtitles  []Subtitle

	state   SyncState
	enabled bool
	asset   *Asset

	debounce     *time.Timer
	building     bool
	buildDone    chan struct{}
	rerun        bool
	lastBuildErr error

	statusSubs map[int]StatusFunc
	nextSubID  int

	now func() time.Time
}

func NewController(
	builder *Builder,
	video VideoTransport,
	cfg Config,
	log *logging.Logger,
) *Controller {
	if log == nil {
		log = logging.NewNop()
	}
	return &Controller{
		cfg:        cfg,
		builder:    builder,
		video:      video,
		syncer:     NewSynchronizer(video, cfg, log),
		log:        log,
		state:      SyncState{LastStatus: StatusIdle},
		statusSubs: make(map[int]StatusFunc),
		now:        time.Now,
	}
}

// bulk replacement of the narration set
func (c *Controller) OnNarrationsChanged(narrations []Narration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fp := FingerprintNarrations(narrations)
	if fp == c.state.LastFingerprint {
		return
	}
	c.narrations = narrations
	c.queueTriggerLocked()
}

// subtitle timing edits
func (c *Controller) OnSubtitlesChanged(subs []Subtitle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fp := FingerprintSubtitles(subs)
	if fp == c.state.LastSubFingerprint {
		return
	}
	c.subtitles = subs
	c.queueTriggerLocked()
}

// user-triggered regeneration of a single clip. Retries bypass both
// playback suppression and the cooldown, and skip the debounce window.
func (c *Controller) OnRetry(updated Narration, narrations []Narration) {
	c.mu.Lock()
	c.narrations = narrations
	c.stopDebounceLocked()
	c.log.Infow("retry requested",
		"subtitle_id", updated.SubtitleID,
		"revision", updated.Revision,
	)
	c.startOrQueueLocked()
	c.mu.Unlock()
}

// Regenerate rebuilds the aligned track and blocks until the controller
// settles (including any superseding rebuild queued meanwhile). Non-forced
// calls respect playback suppression and the cooldown and may return
// without building.
func (c *Controller) Regenerate(ctx context.Context, force bool) error {
	c.mu.Lock()
	if !force && (c.suppressedLocked() || c.inCooldownLocked()) {
		c.mu.Unlock()
		return nil
	}
	c.stopDebounceLocked()
	c.startOrQueueLocked()
	c.mu.Unlock()

	return c.wait(ctx)
}

// EnableAlignedMode binds the current asset to the video transport. With no
// asset built yet, the first activation triggers a build.
func (c *Controller) EnableAlignedMode() {
	c.mu.Lock()
	c.enabled = true
	asset := c.asset
	needBuild := asset == nil && !c.building
	c.mu.Unlock()

	if asset != nil {
		c.syncer.Attach(asset)
	}
	if needBuild {
		c.mu.Lock()
		c.startOrQueueLocked()
		c.mu.Unlock()
	}
}

// DisableAlignedMode detaches from the video, leaving no residual audible
// output. The built asset is kept for the next activation.
func (c *Controller) DisableAlignedMode() {
	c.mu.Lock()
	c.enabled = false
	c.mu.Unlock()

	c.syncer.Detach()
}

func (c *Controller) IsAvailable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.IsAvailable
}

func (c *Controller) IsGenerating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.IsGenerating
}

func (c *Controller) State() SyncState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// current asset, nil until the first successful build
func (c *Controller) Asset() *Asset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.asset
}

// Subscribe registers a status observer and returns an unsubscribe func.
func (c *Controller) Subscribe(fn StatusFunc) func() {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.statusSubs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.statusSubs, id)
		c.mu.Unlock()
	}
}

func (c *Controller) suppressedLocked() bool {
	return c.state.IsAvailable && c.video != nil && !c.video.Paused()
}

func (c *Controller) inCooldownLocked() bool {
	if c.state.LastRegenerationTime.IsZero() {
		return false
	}
	return c.now().Sub(c.state.LastRegenerationTime) < c.cfg.Cooldown
}

// gatekeeping for non-forced change events
func (c *Controller) queueTriggerLocked() {
	if c.suppressedLocked() {
		c.log.Debugw("suppressing rebuild during playback")
		return
	}
	if c.inCooldownLocked() {
		c.log.Debugw("dropping trigger inside cooldown")
		return
	}

	if c.debounce == nil {
		c.debounce = time.AfterFunc(c.cfg.DebounceWindow, c.debounceFired)
	} else {
		c.debounce.Reset(c.cfg.DebounceWindow)
	}
}

func (c *Controller) debounceFired() {
	c.mu.Lock()
	c.debounce = nil
	c.startOrQueueLocked()
	c.mu.Unlock()
}

func (c *Controller) stopDebounceLocked() {
	if c.debounce != nil {
		c.debounce.Stop()
		c.debounce = nil
	}
}

// either starts a build or queues a superseding one behind the in-flight
// build
func (c *Controller) startOrQueueLocked() {
	if c.building {
		c.rerun = true
		return
	}
	c.startBuildLocked()
}

func (c *Controller) startBuildLocked() {
	c.building = true
	c.state.IsGenerating = true
	c.buildDone = make(chan struct{})

	narrations := c.narrations
	subtitles := c.subtitles
	done := c.buildDone

	go c.runBuild(narrations, subtitles, done)
}

func (c *Controller) runBuild(
	narrations []Narration,
	subtitles []Subtitle,
	done chan struct{},
) {
	nfp := FingerprintNarrations(narrations)
	sfp := FingerprintSubtitles(subtitles)

	track, err := c.builder.Build(
		context.Background(),
		narrations,
		subtitles,
		c.emitStatus,
	)

	var attach *Asset

	c.mu.Lock()
	c.lastBuildErr = err
	stale := c.rerun

	switch {
	case err != nil:
		// previous asset is retained so playback is not interrupted by a
		// failed rebuild
		c.log.Warnw("aligned narration build failed", "error", err)
	case stale:
		// a newer change arrived mid-build; this result no longer matches
		// current state, discard it and rebuild
		c.log.Debugw("discarding superseded build result")
	default:
		old := c.asset
		c.asset = NewAsset(track)
		c.state.IsAvailable = true
		c.state.LastFingerprint = nfp
		c.state.LastSubFingerprint = sfp
		c.state.LastRegenerationTime = c.now()
		if old != nil {
			old.Release()
		}
		if c.enabled {
			attach = c.asset
		}
	}

	if c.rerun {
		c.rerun = false
		c.startBuildLocked()
	} else {
		c.building = false
		c.state.IsGenerating = false
	}
	close(done)
	c.mu.Unlock()

	// mid-playback handoff: resume in sync at the video's current position
	if attach != nil {
		c.syncer.Attach(attach)
	}
}

// blocks until no build is in flight or queued
func (c *Controller) wait(ctx context.Context) error {
	for {
		c.mu.Lock()
		if !c.building {
			err := c.lastBuildErr
			c.mu.Unlock()
			return err
		}
		done := c.buildDone
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
		}
	}
}

func (c *Controller) emitStatus(u StatusUpdate) {
	c.mu.Lock()
	c.state.LastStatus = u.Status
	subs := make([]StatusFunc, 0, len(c.statusSubs))
	for _, fn := range c.statusSubs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(u)
	}
}
