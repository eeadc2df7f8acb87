package narration

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mgpai22/vachak/internal/audio"
)

// DirStore resolves clip references against a clip directory, decoding each
// file to the track sample rate. It implements align.ClipStore.
type DirStore struct {
	dir        string
	sampleRate int
}

func NewDirStore(dir string, sampleRate int) *DirStore {
	return &DirStore{dir: dir, sampleRate: sampleRate}
}

func (s *DirStore) Fetch(
	ctx context.Context,
	clipRef string,
) (*audio.Buffer, error) {
	// refs are bare filenames written by the generator; anything else is a
	// corrupt manifest
	if clipRef == "" || clipRef != filepath.Base(clipRef) ||
		strings.HasPrefix(clipRef, ".") {
		return nil, fmt.Errorf("invalid clip reference %q", clipRef)
	}

	return audio.DecodeFile(ctx, filepath.Join(s.dir, clipRef), s.sampleRate)
}
