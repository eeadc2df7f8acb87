package align

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
)

// fingerprint of a nil collection, distinct from the empty collection
const NullFingerprint = "null"

// FingerprintNarrations hashes the alignment-relevant projection of a
// narration list: subtitle id, start, end, clip reference, and success.
// Timestamps are rounded to hundredths of a second first, so sub-hundredth
// jitter never produces a new fingerprint.
func FingerprintNarrations(narrations []Narration) string {
	if narrations == nil {
		return NullFingerprint
	}

	var sb strings.Builder
	sb.WriteString("narrations:")
	for _, n := range narrations {
		fmt.Fprintf(&sb, "%d|%.2f|%.2f|%s|%t;",
			n.SubtitleID,
			roundHundredth(n.Start),
			roundHundredth(n.End),
			n.ClipRef,
			n.Success,
		)
	}
	return hashString(sb.String())
}

// FingerprintSubtitles hashes the alignment-relevant projection of a
// subtitle list: id, start, and end, rounded as above. Text changes do not
// affect alignment and are excluded on purpose.
func FingerprintSubtitles(subs []Subtitle) string {
	if subs == nil {
		return NullFingerprint
	}

	var sb strings.Builder
	sb.WriteString("subtitles:")
	for _, s := range subs {
		fmt.Fprintf(&sb, "%d|%.2f|%.2f;",
			s.ID,
			roundHundredth(s.Start),
			roundHundredth(s.End),
		)
	}
	return hashString(sb.String())
}

func roundHundredth(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
