package geotag

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/nperony/batchgeotag/pkg/logging"
)

// RunStats summarizes a batch run.
type RunStats struct {
	Total       int
	Tagged      int
	NoTimestamp int
	OutOfRange  int
	HasGPS      int
	Failed      int
}

func (s *RunStats) record(r Result) {
	s.Total++
	switch r.Outcome {
	case OutcomeTagged:
		s.Tagged++
	case OutcomeSkippedNoTimestamp:
		s.NoTimestamp++
	case OutcomeSkippedOutOfRange:
		s.OutOfRange++
	case OutcomeSkippedHasGPS:
		s.HasGPS++
	case OutcomeFailedMalformed:
		s.Failed++
	}
}

// Skipped is the count of files left untouched for a per-file reason.
func (s *RunStats) Skipped() int {
	return s.NoTimestamp + s.OutOfRange + s.HasGPS
}

func (s *RunStats) Summary() string {
	return fmt.Sprintf("%d file(s): %d tagged, %d skipped (%d no timestamp, %d out of range, %d already tagged), %d failed",
		s.Total, s.Tagged, s.Skipped(), s.NoTimestamp, s.OutOfRange, s.HasGPS, s.Failed)
}

// Run processes files on a pool of workers and returns the stats plus an
// aggregate of the per-file failures. Skips are not errors.
func Run(tagger *Tagger, files []string, workers int, log *logging.Logger) (RunStats, error) {
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan string)
	results := make(chan Result)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				results <- tagger.ProcessFile(path)
			}
		}()
	}
	go func() {
		for _, f := range files {
			jobs <- f
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	var stats RunStats
	var errs *multierror.Error
	for r := range results {
		stats.record(r)
		switch r.Outcome {
		case OutcomeTagged:
			log.Info("%s: tagged at %.6f, %.6f", r.Path, r.Position.Lat, r.Position.Lon)
		case OutcomeFailedMalformed:
			log.Error("%s: %v", r.Path, r.Err)
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", r.Path, r.Err))
		default:
			if r.Err != nil {
				log.Debug("%s: %s: %v", r.Path, r.Outcome, r.Err)
			} else {
				log.Debug("%s: %s", r.Path, r.Outcome)
			}
		}
	}
	return stats, errs.ErrorOrNil()
}
