package align

import "math"

// builds a lookup map from a subtitle slice; later duplicates win, matching
// the order in which edits arrive
func SubtitleIndex(subs []Subtitle) map[int]Subtitle {
	byID := make(map[int]Subtitle, len(subs))
	for _, s := range subs {
		byID[s.ID] = s
	}
	return byID
}

// ResolveTiming derives the authoritative start/end window for a narration
// from the current subtitle set.
//
// A narration covering a single subtitle takes that subtitle's times
// verbatim. A narration covering a merged group spans min(start) to
// max(end) over the group members that still resolve; missing members are
// skipped. When nothing resolves, the narration's own last-known times are
// used, defaulting the end to start+fallbackSeconds, and the timing is
// flagged Unresolved. Absence of timing is a representable state, never an
// error.
func ResolveTiming(
	n Narration,
	subtitleByID map[int]Subtitle,
	fallbackSeconds float64,
) ResolvedTiming {
	if len(n.OriginalIDs) > 1 {
		if t, ok := resolveGroup(n, subtitleByID); ok {
			return t
		}
		return fallbackTiming(n, fallbackSeconds)
	}

	if sub, ok := subtitleByID[n.SubtitleID]; ok &&
		finite(sub.Start) && finite(sub.End) {
		return ResolvedTiming{
			SubtitleID: n.SubtitleID,
			Start:      sub.Start,
			End:        sub.End,
		}
	}

	return fallbackTiming(n, fallbackSeconds)
}

func resolveGroup(
	n Narration,
	subtitleByID map[int]Subtitle,
) (ResolvedTiming, bool) {
	start := math.Inf(1)
	end := math.Inf(-1)
	resolved := false

	for _, id := range n.OriginalIDs {
		sub, ok := subtitleByID[id]
		if !ok || !finite(sub.Start) || !finite(sub.End) {
			continue
		}
		resolved = true
		if sub.Start < start {
			start = sub.Start
		}
		if sub.End > end {
			end = sub.End
		}
	}

	if !resolved {
		return ResolvedTiming{}, false
	}

	return ResolvedTiming{
		SubtitleID: n.SubtitleID,
		Start:      start,
		End:        end,
	}, true
}

func fallbackTiming(n Narration, fallbackSeconds float64) ResolvedTiming {
	start := n.Start
	if !finite(start) || start < 0 {
		start = 0
	}

	end := n.End
	if !finite(end) || end <= start {
		end = start + fallbackSeconds
	}

	return ResolvedTiming{
		SubtitleID: n.SubtitleID,
		Start:      start,
		End:        end,
		Unresolved: true,
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
