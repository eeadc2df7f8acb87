package align

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mgpai22/vachak/internal/audio"
)

// in-memory clip store for tests
type fakeClipStore struct {
	mu      sync.Mutex
	clips   map[string]*audio.Buffer
	fails   map[string]error
	delay   time.Duration
	fetches int
}

func newFakeClipStore() *fakeClipStore {
	return &fakeClipStore{
		clips: make(map[string]*audio.Buffer),
		fails: make(map[string]error),
	}
}

func (s *fakeClipStore) add(ref string, seconds float64, rate int) {
	n := int(seconds * float64(rate))
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.5
	}
	s.clips[ref] = &audio.Buffer{SampleRate: rate, Samples: samples}
}

func (s *fakeClipStore) Fetch(
	ctx context.Context,
	ref string,
) (*audio.Buffer, error) {
	s.mu.Lock()
	s.fetches++
	delay := s.delay
	err := s.fails[ref]
	clip := s.clips[ref]
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	if clip == nil {
		return nil, fmt.Errorf("unknown clip %q", ref)
	}
	return clip, nil
}

// scriptable video transport for tests
type fakeTransport struct {
	mu     sync.Mutex
	time   float64
	paused bool
	rate   float64
	subs   map[int]func(TransportEvent)
	nextID int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		paused: true,
		rate:   1,
		subs:   make(map[int]func(TransportEvent)),
	}
}

func (f *fakeTransport) CurrentTime() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.time
}

func (f *fakeTransport) Paused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paused
}

func (f *fakeTransport) PlaybackRate() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rate
}

func (f *fakeTransport) Subscribe(fn func(TransportEvent)) func() {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = fn
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

func (f *fakeTransport) set(t float64, paused bool, rate float64) {
	f.mu.Lock()
	f.time = t
	f.paused = paused
	f.rate = rate
	f.mu.Unlock()
}

func (f *fakeTransport) emit(ev TransportEvent) {
	f.mu.Lock()
	f.time = ev.Time
	if ev.Rate != 0 {
		f.rate = ev.Rate
	}
	switch ev.Type {
	case EventPlay:
		f.paused = false
	case EventPause:
		f.paused = true
	default:
		f.paused = ev.Paused
	}
	fns := make([]func(TransportEvent), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// status recorder
type statusRecorder struct {
	mu      sync.Mutex
	updates []StatusUpdate
}

func (r *statusRecorder) record(u StatusUpdate) {
	r.mu.Lock()
	r.updates = append(r.updates, u)
	r.mu.Unlock()
}

func (r *statusRecorder) statuses() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Status, len(r.updates))
	for i, u := range r.updates {
		out[i] = u.Status
	}
	return out
}

func (r *statusRecorder) count(s Status) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, u := range r.updates {
		if u.Status == s {
			n++
		}
	}
	return n
}

// waits until cond holds or the deadline passes
func eventually(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return cond()
}
