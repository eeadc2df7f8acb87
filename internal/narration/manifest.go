package narration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mgpai22/vachak/internal/align"
)

// persisted record of a narration run. The manifest is the durable
// NarrationResult collection the align pipeline consumes; clip files live in
// the same directory and are referenced by bare filename.
type Manifest struct {
	GeneratedAt time.Time `json:"generated_at"`
	Provider    string    `json:"provider,omitempty"`
	Model       string    `json:"model,omitempty"`
	Voice       string    `json:"voice,omitempty"`
	Results     []Result  `json:"results"`
}

func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return &m, nil
}

func (m *Manifest) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// Narrations projects the manifest into the records the align package reads.
func (m *Manifest) Narrations() []align.Narration {
	out := make([]align.Narration, len(m.Results))
	for i, r := range m.Results {
		out[i] = r.Narration
	}
	return out
}

// Get returns a pointer into Results so retries can update the entry in
// place before saving.
func (m *Manifest) Get(subtitleID int) (*Result, bool) {
	for i := range m.Results {
		if m.Results[i].SubtitleID == subtitleID {
			return &m.Results[i], true
		}
	}
	return nil, false
}
