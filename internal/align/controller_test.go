package align

import (
	"context"
	"testing"
	"time"

	"github.com/mgpai22/vachak/internal/logging"
)

func newTestController(
	store *fakeClipStore,
	video *fakeTransport,
) (*Controller, *statusRecorder) {
	cfg := testConfig()
	cfg.DebounceWindow = 15 * time.Millisecond
	cfg.Cooldown = 150 * time.Millisecond
	cfg.TimeUpdateThrottle = 0

	builder := NewBuilder(store, cfg, logging.NewNop())
	c := NewController(builder, video, cfg, logging.NewNop())

	rec := &statusRecorder{}
	c.Subscribe(rec.record)
	return c, rec
}

func waitSettled(t *testing.T, c *Controller) {
	t.Helper()
	if !eventually(2*time.Second, func() bool { return !c.IsGenerating() }) {
		t.Fatal("controller never settled")
	}
}

func TestRegenerateBuildsAsset(t *testing.T) {
	c, rec := newTestController(storeWithClips(), newFakeTransport())
	c.OnSubtitlesChanged(testSubtitles())
	c.OnNarrationsChanged(testNarrations())

	if err := c.Regenerate(context.Background(), true); err != nil {
		t.Fatalf("Regenerate returned error: %v", err)
	}

	if !c.IsAvailable() {
		t.Error("asset not available after build")
	}
	asset := c.Asset()
	if asset == nil {
		t.Fatal("Asset() returned nil after build")
	}
	if asset.Duration() != 9 {
		t.Errorf("asset duration = %v, want 9", asset.Duration())
	}
	if rec.count(StatusComplete) != 1 {
		t.Errorf("complete statuses = %d, want 1", rec.count(StatusComplete))
	}
}

func TestRegenerateEmptyInput(t *testing.T) {
	c, _ := newTestController(newFakeClipStore(), newFakeTransport())

	err := c.Regenerate(context.Background(), true)
	if !IsKind(err, ErrEmptyInput) {
		t.Fatalf("Regenerate error = %v, want empty-input failure", err)
	}
	if c.IsAvailable() {
		t.Error("asset marked available after failed build")
	}
}

func TestDebounceCollapsesBurst(t *testing.T) {
	c, rec := newTestController(storeWithClips(), newFakeTransport())
	c.OnNarrationsChanged(testNarrations())
	waitSettled(t, c)
	time.Sleep(160 * time.Millisecond) // leave the cooldown
	completes := rec.count(StatusComplete)

	// rapid timing nudges within one debounce window
	subs := testSubtitles()
	for i := 0; i < 5; i++ {
		subs[0].Start += 0.1
		c.OnSubtitlesChanged(subs)
		time.Sleep(2 * time.Millisecond)
	}

	if !eventually(2*time.Second, func() bool {
		return rec.count(StatusComplete) > completes
	}) {
		t.Fatal("debounced build never ran")
	}
	waitSettled(t, c)
	time.Sleep(50 * time.Millisecond)

	if got := rec.count(StatusComplete) - completes; got != 1 {
		t.Errorf("burst produced %d builds, want 1", got)
	}
}

func TestUnchangedFingerprintIsIgnored(t *testing.T) {
	c, rec := newTestController(storeWithClips(), newFakeTransport())
	c.OnSubtitlesChanged(testSubtitles())
	c.OnNarrationsChanged(testNarrations())
	waitSettled(t, c)
	completes := rec.count(StatusComplete)

	// identical payloads must not queue another build
	c.OnNarrationsChanged(testNarrations())
	c.OnSubtitlesChanged(testSubtitles())
	time.Sleep(60 * time.Millisecond)

	if got := rec.count(StatusComplete); got != completes {
		t.Errorf("unchanged input triggered %d extra builds", got-completes)
	}
}

func TestSuppressionDuringPlayback(t *testing.T) {
	video := newFakeTransport()
	c, rec := newTestController(storeWithClips(), video)
	c.OnNarrationsChanged(testNarrations())
	waitSettled(t, c)
	time.Sleep(160 * time.Millisecond) // leave the cooldown
	completes := rec.count(StatusComplete)

	video.set(3, false, 1)
	subs := testSubtitles()
	subs[1].Start = 2.5
	c.OnSubtitlesChanged(subs)
	time.Sleep(60 * time.Millisecond)

	if got := rec.count(StatusComplete); got != completes {
		t.Error("rebuild ran while video was playing")
	}

	// non-forced Regenerate honors the same suppression
	if err := c.Regenerate(context.Background(), false); err != nil {
		t.Fatalf("Regenerate returned error: %v", err)
	}
	if got := rec.count(StatusComplete); got != completes {
		t.Error("non-forced Regenerate ran during playback")
	}

	// forced Regenerate punches through
	if err := c.Regenerate(context.Background(), true); err != nil {
		t.Fatalf("forced Regenerate returned error: %v", err)
	}
	if got := rec.count(StatusComplete); got != completes+1 {
		t.Errorf("forced builds = %d, want 1", got-completes)
	}
}

func TestCooldownDropsTriggers(t *testing.T) {
	c, rec := newTestController(storeWithClips(), newFakeTransport())
	c.OnNarrationsChanged(testNarrations())
	waitSettled(t, c)
	completes := rec.count(StatusComplete)

	// inside the cooldown: trigger dropped outright, not deferred
	subs := testSubtitles()
	subs[0].End = 2.5
	c.OnSubtitlesChanged(subs)
	time.Sleep(60 * time.Millisecond)
	if got := rec.count(StatusComplete); got != completes {
		t.Error("trigger ran inside cooldown")
	}

	// after the cooldown the next change builds normally
	time.Sleep(120 * time.Millisecond)
	subs[0].End = 3
	c.OnSubtitlesChanged(subs)
	if !eventually(2*time.Second, func() bool {
		return rec.count(StatusComplete) > completes
	}) {
		t.Fatal("post-cooldown trigger never built")
	}
}

func TestRetryBypassesGates(t *testing.T) {
	video := newFakeTransport()
	c, rec := newTestController(storeWithClips(), video)
	c.OnSubtitlesChanged(testSubtitles())
	c.OnNarrationsChanged(testNarrations())
	waitSettled(t, c)
	completes := rec.count(StatusComplete)

	// playing video and fresh cooldown, both gates armed
	video.set(1, false, 1)

	narrations := testNarrations()
	narrations[1].Revision = 2
	narrations[1].RetriedAt = time.Now()
	c.OnRetry(narrations[1], narrations)

	if !eventually(2*time.Second, func() bool {
		return rec.count(StatusComplete) > completes
	}) {
		t.Fatal("retry build never ran")
	}
	waitSettled(t, c)

	if c.State().LastFingerprint != FingerprintNarrations(narrations) {
		t.Error("state fingerprint not updated after retry build")
	}
}

func TestSupersedingBuildWins(t *testing.T) {
	store := storeWithClips()
	store.delay = 40 * time.Millisecond
	c, rec := newTestController(store, newFakeTransport())
	c.OnSubtitlesChanged(testSubtitles())

	first := testNarrations()
	c.OnNarrationsChanged(first)
	if !eventually(time.Second, c.IsGenerating) {
		t.Fatal("first build never started")
	}

	// arrives mid-build: the in-flight result must be discarded and the
	// final asset reflect this set
	second := testNarrations()
	second[2].Success = false
	c.OnNarrationsChanged(second)

	if !eventually(2*time.Second, func() bool {
		return !c.IsGenerating() &&
			c.State().LastFingerprint == FingerprintNarrations(second)
	}) {
		t.Errorf("stale build result was kept, fingerprint = %q",
			c.State().LastFingerprint)
	}
	if rec.count(StatusComplete) < 2 {
		t.Errorf("complete statuses = %d, want at least 2",
			rec.count(StatusComplete))
	}
}

func TestBuildFailureRetainsPreviousAsset(t *testing.T) {
	store := storeWithClips()
	c, _ := newTestController(store, newFakeTransport())
	c.OnSubtitlesChanged(testSubtitles())
	c.OnNarrationsChanged(testNarrations())
	waitSettled(t, c)
	prev := c.Asset()
	if prev == nil {
		t.Fatal("no asset after first build")
	}

	// emptied narration set makes the next build fail outright
	c.OnNarrationsChanged(nil)
	err := c.Regenerate(context.Background(), true)
	if !IsKind(err, ErrEmptyInput) {
		t.Fatalf("Regenerate error = %v, want empty-input failure", err)
	}
	waitSettled(t, c)

	if c.Asset() == nil {
		t.Error("previous asset dropped after failed rebuild")
	}
}

func TestEnableDisableAlignedMode(t *testing.T) {
	video := newFakeTransport()
	video.set(12, true, 1)
	c, _ := newTestController(storeWithClips(), video)
	c.OnSubtitlesChanged(testSubtitles())
	c.OnNarrationsChanged(testNarrations())
	waitSettled(t, c)

	c.EnableAlignedMode()
	asset := c.Asset()
	if asset == nil {
		t.Fatal("no asset to attach")
	}
	if asset.Position() != 12 {
		t.Errorf("attached position = %v, want 12", asset.Position())
	}

	asset.Seek(30)
	asset.Play()
	c.DisableAlignedMode()
	if asset.Playing() {
		t.Error("asset still playing after disable")
	}
	if asset.Position() != 0 {
		t.Errorf("position after disable = %v, want 0", asset.Position())
	}
}

func TestEnableWithoutAssetTriggersFirstBuild(t *testing.T) {
	c, _ := newTestController(storeWithClips(), newFakeTransport())
	c.mu.Lock()
	c.subtitles = testSubtitles()
	c.narrations = testNarrations()
	c.mu.Unlock()

	c.EnableAlignedMode()
	if !eventually(2*time.Second, func() bool { return c.Asset() != nil }) {
		t.Fatal("enable never produced an asset")
	}
	waitSettled(t, c)
	if !c.syncer.Attached() {
		t.Error("asset not attached after first enabled build")
	}
}

func TestRetryHandoffMidPlayback(t *testing.T) {
	video := newFakeTransport()
	video.set(0, true, 1)
	c, _ := newTestController(storeWithClips(), video)
	c.OnSubtitlesChanged(testSubtitles())
	c.OnNarrationsChanged(testNarrations())
	waitSettled(t, c)

	c.EnableAlignedMode()
	before := c.Asset()
	if before == nil {
		t.Fatal("no asset after enable")
	}

	// playback underway when the retry lands
	video.emit(TransportEvent{Type: EventPlay, Time: 4})

	narrations := testNarrations()
	narrations[1].Revision = 2
	narrations[1].ClipRef = "clip_2.wav"
	narrations[1].Success = true
	narrations[0].ClipRef = "clip_1.wav"
	narrations[2].Success = false // make the set differ so the swap is visible
	c.OnRetry(narrations[1], narrations)

	if !eventually(2*time.Second, func() bool {
		return c.Asset() != before && !c.IsGenerating()
	}) {
		t.Fatal("retry build never swapped the asset")
	}

	// the attach handoff happens just after the swap becomes visible
	after := c.Asset()
	if !eventually(time.Second, after.Playing) {
		t.Error("rebuilt asset should resume playing mid-playback")
	}
	if diff := after.Position() - video.CurrentTime(); diff < -0.1 || diff > 0.1 {
		t.Errorf("resume position drifted %v from video", diff)
	}
	if before.Playing() {
		t.Error("superseded asset still playing after release")
	}
}
