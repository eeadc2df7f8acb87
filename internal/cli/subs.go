package cli

import (
	"fmt"

	"github.com/mgpai22/vachak/internal/align"
	"github.com/mgpai22/vachak/internal/subtitle"
)

// parses a subtitle file into the timed records the narration pipeline uses
func loadSubtitles(path string) ([]align.Subtitle, error) {
	subFile, err := subtitle.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse subtitle file: %w", err)
	}

	entries := subFile.Subtitle().Entries
	if len(entries) == 0 {
		return nil, fmt.Errorf("subtitle file contains no entries")
	}

	subs := make([]align.Subtitle, len(entries))
	for i, entry := range entries {
		subs[i] = align.Subtitle{
			ID:    entry.Index,
			Start: entry.StartSeconds(),
			End:   entry.EndSeconds(),
			Text:  entry.Text,
		}
	}
	return subs, nil
}
