package narration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/mgpai22/vachak/internal/logging"
)

// Generator runs a narrator over narration units and records the outcome of
// each clip. Failed units are kept in the results with Success=false so the
// aligner can skip them and the user can retry them individually.
type Generator struct {
	narrator Narrator
	dir      string
	voice    string
	log      *logging.Logger
}

func NewGenerator(
	narrator Narrator,
	dir string,
	voice string,
	log *logging.Logger,
) *Generator {
	if log == nil {
		log = logging.NewNop()
	}
	return &Generator{narrator: narrator, dir: dir, voice: voice, log: log}
}

// holds the outcome of generating one unit
type unitResult struct {
	Index  int
	Result Result
}

// GenerateAll synthesizes one clip per unit with bounded concurrency.
// Results come back in unit order. It only errors when the context is
// cancelled; per-unit synthesis failures are recorded, not returned.
func (g *Generator) GenerateAll(
	ctx context.Context,
	units []Unit,
	concurrency int,
) ([]Result, error) {
	if len(units) == 0 {
		return nil, nil
	}
	if concurrency <= 0 {
		concurrency = 3
	}
	if err := os.MkdirAll(g.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create clip directory: %w", err)
	}

	type job struct {
		Index int
		Unit  Unit
	}

	workChan := make(chan job, len(units))
	resultChan := make(chan unitResult, len(units))

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Go(func() {
			for j := range workChan {
				if ctx.Err() != nil {
					return
				}
				resultChan <- unitResult{
					Index:  j.Index,
					Result: g.generateUnit(ctx, j.Unit),
				}
			}
		})
	}

	for i, unit := range units {
		workChan <- job{Index: i, Unit: unit}
	}
	close(workChan)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]unitResult, 0, len(units))
	for r := range resultChan {
		results = append(results, r)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// restore unit order
	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})

	out := make([]Result, len(results))
	for i, r := range results {
		out[i] = r.Result
	}
	return out, nil
}

// Retry regenerates a single clip, bumping its revision so downstream
// staleness checks see the change.
func (g *Generator) Retry(ctx context.Context, res *Result) error {
	path := filepath.Join(g.dir, res.ClipRef)
	err := g.narrator.Synthesize(ctx, res.Text, path)

	res.Revision++
	res.RetriedAt = time.Now()
	res.Success = err == nil
	res.Voice = g.voice

	if err != nil {
		return fmt.Errorf(
			"retry of subtitle %d failed: %w", res.SubtitleID, err,
		)
	}
	g.log.Infow("regenerated clip",
		"subtitle_id", res.SubtitleID,
		"revision", res.Revision,
	)
	return nil
}

func (g *Generator) generateUnit(ctx context.Context, unit Unit) Result {
	res := Result{Text: unit.Text, Voice: g.voice}
	res.SubtitleID = unit.ID
	res.OriginalIDs = unit.OriginalIDs
	res.Start = unit.Start
	res.End = unit.End
	res.ClipRef = ClipName(unit.ID)
	res.Revision = 1

	path := filepath.Join(g.dir, res.ClipRef)
	if err := g.narrator.Synthesize(ctx, unit.Text, path); err != nil {
		g.log.Warnw("clip generation failed",
			"subtitle_id", unit.ID,
			"error", err,
		)
		return res
	}

	res.Success = true
	return res
}

// canonical clip filename for a narration unit
func ClipName(subtitleID int) string {
	return fmt.Sprintf("clip_%04d.wav", subtitleID)
}
