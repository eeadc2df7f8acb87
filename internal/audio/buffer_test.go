package audio

import (
	"testing"
	"time"
)

func TestSilenceLength(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		rate     int
		want     int
	}{
		{"one second", time.Second, 8000, 8000},
		{"half second", 500 * time.Millisecond, 8000, 4000},
		{"zero", 0, 8000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := Silence(tt.duration, tt.rate)
			if len(buf.Samples) != tt.want {
				t.Errorf("Silence(%v) = %d samples, want %d",
					tt.duration, len(buf.Samples), tt.want)
			}
			for i, s := range buf.Samples {
				if s != 0 {
					t.Fatalf("sample %d = %v, want silence", i, s)
				}
			}
		})
	}
}

func TestPCM16RoundTrip(t *testing.T) {
	raw := []byte{0x00, 0x00, 0xFF, 0x7F, 0x00, 0x80}
	buf := FromPCM16(raw, 8000)
	if len(buf.Samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(buf.Samples))
	}
	if buf.Samples[0] != 0 {
		t.Errorf("sample 0 = %v, want 0", buf.Samples[0])
	}
	if buf.Samples[1] < 0.99 {
		t.Errorf("sample 1 = %v, want near 1", buf.Samples[1])
	}
	if buf.Samples[2] > -0.99 {
		t.Errorf("sample 2 = %v, want near -1", buf.Samples[2])
	}

	out := buf.PCM16()
	if len(out) != len(raw) {
		t.Fatalf("round trip length = %d, want %d", len(out), len(raw))
	}
}

func TestMixAtSumsAndClamps(t *testing.T) {
	base := Silence(time.Second, 1000)
	for i := range base.Samples {
		base.Samples[i] = 0.8
	}

	clip := &Buffer{SampleRate: 1000, Samples: []float64{0.5, 0.5}}
	base.MixAt(clip, 100*time.Millisecond)

	if base.Samples[99] != 0.8 {
		t.Errorf("sample before offset changed: %v", base.Samples[99])
	}
	// 0.8 + 0.5 clamps to 1
	if base.Samples[100] != 1 {
		t.Errorf("overlapping sample = %v, want clamped 1", base.Samples[100])
	}
	if base.Samples[102] != 0.8 {
		t.Errorf("sample after clip changed: %v", base.Samples[102])
	}
}

func TestMixAtPastEndIsDropped(t *testing.T) {
	base := Silence(10*time.Millisecond, 1000) // 10 samples
	clip := &Buffer{SampleRate: 1000, Samples: []float64{0.5, 0.5, 0.5}}

	base.MixAt(clip, 9*time.Millisecond)

	if base.Samples[9] != 0.5 {
		t.Errorf("last in-range sample = %v, want 0.5", base.Samples[9])
	}
	if len(base.Samples) != 10 {
		t.Errorf("buffer grew to %d samples", len(base.Samples))
	}
}

func TestPadTo(t *testing.T) {
	buf := Silence(time.Second, 1000)
	buf.PadTo(2 * time.Second)
	if len(buf.Samples) != 2000 {
		t.Errorf("padded length = %d, want 2000", len(buf.Samples))
	}

	buf.PadTo(time.Second) // shorter than current, no-op
	if len(buf.Samples) != 2000 {
		t.Errorf("PadTo shrank buffer to %d", len(buf.Samples))
	}
}
