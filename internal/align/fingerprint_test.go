package align

import "testing"

func baseNarrations() []Narration {
	return []Narration{
		{SubtitleID: 1, Start: 0, End: 2, ClipRef: "clip_1.wav", Success: true},
		{SubtitleID: 2, Start: 2, End: 5, ClipRef: "clip_2.wav", Success: true},
	}
}

func TestFingerprintIdempotent(t *testing.T) {
	a := FingerprintNarrations(baseNarrations())
	b := FingerprintNarrations(baseNarrations())
	if a != b {
		t.Errorf("same input produced different fingerprints: %s vs %s", a, b)
	}
}

func TestFingerprintJitterTolerance(t *testing.T) {
	base := FingerprintNarrations(baseNarrations())

	tests := []struct {
		name       string
		delta      float64
		wantChange bool
	}{
		{"sub-hundredth jitter", 0.004, false},
		{"above threshold", 0.006, true},
		{"full hundredth", 0.01, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns := baseNarrations()
			ns[0].Start += tt.delta
			got := FingerprintNarrations(ns)
			changed := got != base
			if changed != tt.wantChange {
				t.Errorf("delta %v: changed=%v, want %v",
					tt.delta, changed, tt.wantChange)
			}
		})
	}
}

func TestFingerprintClipRefSensitivity(t *testing.T) {
	base := FingerprintNarrations(baseNarrations())

	ns := baseNarrations()
	ns[1].ClipRef = "clip_2_r2.wav"
	if FingerprintNarrations(ns) == base {
		t.Error("changing clip_ref did not change fingerprint")
	}
}

func TestFingerprintSuccessSensitivity(t *testing.T) {
	base := FingerprintNarrations(baseNarrations())

	ns := baseNarrations()
	ns[0].Success = false
	if FingerprintNarrations(ns) == base {
		t.Error("changing success did not change fingerprint")
	}
}

func TestFingerprintNilAndEmpty(t *testing.T) {
	if got := FingerprintNarrations(nil); got != NullFingerprint {
		t.Errorf("nil fingerprint = %q, want %q", got, NullFingerprint)
	}

	empty := FingerprintNarrations([]Narration{})
	if empty == NullFingerprint {
		t.Error("empty collection fingerprint must differ from null")
	}
	if empty != FingerprintNarrations([]Narration{}) {
		t.Error("empty fingerprint not stable")
	}

	if FingerprintSubtitles(nil) != NullFingerprint {
		t.Error("nil subtitle fingerprint should be null")
	}
}

func TestSubtitleFingerprintIgnoresText(t *testing.T) {
	a := []Subtitle{{ID: 1, Start: 0, End: 2, Text: "hello"}}
	b := []Subtitle{{ID: 1, Start: 0, End: 2, Text: "edited"}}
	if FingerprintSubtitles(a) != FingerprintSubtitles(b) {
		t.Error("text edits must not affect the subtitle fingerprint")
	}

	c := []Subtitle{{ID: 1, Start: 0, End: 2.5, Text: "hello"}}
	if FingerprintSubtitles(a) == FingerprintSubtitles(c) {
		t.Error("timing edits must affect the subtitle fingerprint")
	}
}
