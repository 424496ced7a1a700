// Package geotag orchestrates a batch run: per-file parse → query → mutate →
// serialize, outcome accounting, and worker sharding. A corrupt file fails
// that file only.
package geotag

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nperony/batchgeotag/pkg/exif"
	"github.com/nperony/batchgeotag/pkg/jpeg"
	"github.com/nperony/batchgeotag/pkg/track"
)

// Outcome classifies what happened to one file.
type Outcome int

const (
	OutcomeTagged Outcome = iota
	OutcomeSkippedNoTimestamp
	OutcomeSkippedOutOfRange
	OutcomeSkippedHasGPS
	OutcomeFailedMalformed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeTagged:
		return "tagged"
	case OutcomeSkippedNoTimestamp:
		return "skipped (no timestamp)"
	case OutcomeSkippedOutOfRange:
		return "skipped (out of track range)"
	case OutcomeSkippedHasGPS:
		return "skipped (already tagged)"
	case OutcomeFailedMalformed:
		return "failed (malformed)"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Result is the per-file record accumulated by the runner.
type Result struct {
	Path     string
	Outcome  Outcome
	Position track.Position // valid when Outcome == OutcomeTagged
	Err      error          // detail for skip/failure outcomes
}

// Tagger applies one interpolated position per file. It is stateless across
// files; the shared Interpolator is read-only.
type Tagger struct {
	Interp    *track.Interpolator
	Overwrite bool           // replace existing EXIF coordinates
	Location  *time.Location // interpretation of naive EXIF timestamps
}

// ProcessFile geotags a single image in place. The file is rewritten only
// for the tagged outcome, via a temporary file in the same directory so a
// crash never leaves a half-written image.
func (g *Tagger) ProcessFile(path string) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Path: path, Outcome: OutcomeFailedMalformed, Err: err}
	}
	out, res := g.process(data)
	res.Path = path
	if res.Outcome != OutcomeTagged {
		return res
	}
	if err := writeInPlace(path, out); err != nil {
		return Result{Path: path, Outcome: OutcomeFailedMalformed, Err: err}
	}
	return res
}

// process runs the metadata round-trip on raw file bytes. Split from
// ProcessFile so tests can drive it without a filesystem.
func (g *Tagger) process(data []byte) ([]byte, Result) {
	blockBytes, _, err := jpeg.ExtractEXIF(data)
	if err != nil {
		// No metadata means no capture time to match against the track.
		if errors.Is(err, jpeg.ErrNoExif) {
			return nil, Result{Outcome: OutcomeSkippedNoTimestamp, Err: err}
		}
		return nil, Result{Outcome: OutcomeFailedMalformed, Err: err}
	}
	block, err := exif.Parse(blockBytes)
	if err != nil {
		return nil, Result{Outcome: OutcomeFailedMalformed, Err: err}
	}

	if block.HasGPSPosition() && !g.Overwrite {
		return nil, Result{Outcome: OutcomeSkippedHasGPS}
	}
	ts, err := block.CaptureTimestamp(g.Location)
	if err != nil {
		return nil, Result{Outcome: OutcomeSkippedNoTimestamp, Err: err}
	}
	pos, err := g.Interp.Nearest(ts)
	if err != nil {
		if errors.Is(err, track.ErrOutOfRange) {
			return nil, Result{Outcome: OutcomeSkippedOutOfRange, Err: err}
		}
		return nil, Result{Outcome: OutcomeFailedMalformed, Err: err}
	}

	block.SetGPSPosition(pos.Lat, pos.Lon)
	newBlock, err := block.Serialize()
	if err != nil {
		return nil, Result{Outcome: OutcomeFailedMalformed, Err: err}
	}
	out, err := jpeg.ReplaceEXIF(data, newBlock)
	if err != nil {
		return nil, Result{Outcome: OutcomeFailedMalformed, Err: err}
	}
	return out, Result{Outcome: OutcomeTagged, Position: pos}
}

func writeInPlace(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".geotag-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, info.Mode()); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
