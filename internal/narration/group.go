package narration

import (
	"sort"
	"strings"

	"github.com/mgpai22/vachak/internal/align"
)

// one narration unit: a single subtitle, or several adjacent subtitles read
// as one breath. The unit id is the first member's subtitle id; OriginalIDs
// is only set for merged units.
type Unit struct {
	ID          int
	OriginalIDs []int
	Start       float64
	End         float64
	Text        string
}

// GroupSubtitles merges adjacent subtitles whose silence gap is at most
// maxGap seconds into single narration units. A non-positive maxGap disables
// merging and yields one unit per subtitle.
func GroupSubtitles(subs []align.Subtitle, maxGap float64) []Unit {
	if len(subs) == 0 {
		return nil
	}

	ordered := make([]align.Subtitle, len(subs))
	copy(ordered, subs)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Start < ordered[j].Start
	})

	units := make([]Unit, 0, len(ordered))
	cur := unitFrom(ordered[0])

	for _, sub := range ordered[1:] {
		if maxGap > 0 && sub.Start-cur.End <= maxGap {
			cur.OriginalIDs = append(cur.OriginalIDs, sub.ID)
			if sub.End > cur.End {
				cur.End = sub.End
			}
			cur.Text = joinText(cur.Text, sub.Text)
			continue
		}
		units = append(units, finishUnit(cur))
		cur = unitFrom(sub)
	}
	units = append(units, finishUnit(cur))

	return units
}

func unitFrom(sub align.Subtitle) Unit {
	return Unit{
		ID:          sub.ID,
		OriginalIDs: []int{sub.ID},
		Start:       sub.Start,
		End:         sub.End,
		Text:        sub.Text,
	}
}

// single-member units carry no OriginalIDs, matching the manifest format
func finishUnit(u Unit) Unit {
	if len(u.OriginalIDs) == 1 {
		u.OriginalIDs = nil
	}
	return u
}

func joinText(a, b string) string {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + " " + b
}
