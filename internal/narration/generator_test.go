package narration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/mgpai22/vachak/internal/logging"
)

// scripted narrator writing tiny marker files
type fakeNarrator struct {
	mu    sync.Mutex
	calls int
	fail  map[string]error
}

func (n *fakeNarrator) Synthesize(
	ctx context.Context,
	text string,
	outputPath string,
) error {
	n.mu.Lock()
	n.calls++
	err := n.fail[text]
	n.mu.Unlock()

	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, []byte(text), 0644)
}

func testUnits(n int) []Unit {
	units := make([]Unit, n)
	for i := range units {
		units[i] = Unit{
			ID:    i + 1,
			Start: float64(i * 2),
			End:   float64(i*2 + 2),
			Text:  fmt.Sprintf("line %d", i+1),
		}
	}
	return units
}

func TestGenerateAll(t *testing.T) {
	dir := t.TempDir()
	narrator := &fakeNarrator{}
	g := NewGenerator(narrator, dir, "alloy", logging.NewNop())

	results, err := g.GenerateAll(context.Background(), testUnits(5), 2)
	if err != nil {
		t.Fatalf("GenerateAll returned error: %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("got %d results, want 5", len(results))
	}

	for i, res := range results {
		if res.SubtitleID != i+1 {
			t.Errorf("result %d out of order: subtitle %d", i, res.SubtitleID)
		}
		if !res.Success || res.Revision != 1 {
			t.Errorf("result %d = %+v, want success at revision 1", i, res)
		}
		if res.Voice != "alloy" {
			t.Errorf("result %d voice = %q", i, res.Voice)
		}
		if _, err := os.Stat(filepath.Join(dir, res.ClipRef)); err != nil {
			t.Errorf("clip %s not written: %v", res.ClipRef, err)
		}
	}
}

func TestGenerateAllRecordsFailures(t *testing.T) {
	dir := t.TempDir()
	narrator := &fakeNarrator{
		fail: map[string]error{"line 2": errors.New("quota exceeded")},
	}
	g := NewGenerator(narrator, dir, "", logging.NewNop())

	results, err := g.GenerateAll(context.Background(), testUnits(3), 1)
	if err != nil {
		t.Fatalf("GenerateAll returned error: %v", err)
	}

	if results[0].Success != true || results[2].Success != true {
		t.Error("healthy units marked failed")
	}
	if results[1].Success {
		t.Error("failed unit marked successful")
	}
	// failed entries keep their clip ref so a retry can reuse it
	if results[1].ClipRef != ClipName(2) {
		t.Errorf("failed unit clip ref = %q", results[1].ClipRef)
	}
}

func TestGenerateAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := NewGenerator(&fakeNarrator{}, t.TempDir(), "", logging.NewNop())
	if _, err := g.GenerateAll(ctx, testUnits(3), 2); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestRetryBumpsRevision(t *testing.T) {
	dir := t.TempDir()
	narrator := &fakeNarrator{}
	g := NewGenerator(narrator, dir, "Kore", logging.NewNop())

	results, err := g.GenerateAll(context.Background(), testUnits(1), 1)
	if err != nil {
		t.Fatalf("GenerateAll returned error: %v", err)
	}

	res := &results[0]
	if err := g.Retry(context.Background(), res); err != nil {
		t.Fatalf("Retry returned error: %v", err)
	}
	if res.Revision != 2 {
		t.Errorf("revision = %d, want 2", res.Revision)
	}
	if res.RetriedAt.IsZero() {
		t.Error("RetriedAt not stamped")
	}
	if !res.Success {
		t.Error("successful retry marked failed")
	}
}

func TestRetryFailureStillBumpsRevision(t *testing.T) {
	narrator := &fakeNarrator{
		fail: map[string]error{"line 1": errors.New("backend down")},
	}
	g := NewGenerator(narrator, t.TempDir(), "", logging.NewNop())

	res := &Result{Text: "line 1"}
	res.SubtitleID = 1
	res.ClipRef = ClipName(1)
	res.Revision = 1
	res.Success = true

	if err := g.Retry(context.Background(), res); err == nil {
		t.Fatal("expected retry error")
	}
	if res.Revision != 2 {
		t.Errorf("revision = %d, want 2 even on failure", res.Revision)
	}
	if res.Success {
		t.Error("failed retry left Success set")
	}
}

func TestDirStoreRejectsBadRefs(t *testing.T) {
	store := NewDirStore(t.TempDir(), 8000)

	for _, ref := range []string{"", "../escape.wav", "sub/dir.wav", ".hidden"} {
		if _, err := store.Fetch(context.Background(), ref); err == nil {
			t.Errorf("Fetch(%q) succeeded, want error", ref)
		}
	}
}
