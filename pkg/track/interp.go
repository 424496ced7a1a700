package track

import (
	"errors"
	"fmt"
	"time"
)

// DefaultStep is the default resampling grid spacing.
const DefaultStep = 60 * time.Second

var (
	ErrEmptyTrack = errors.New("track: need at least two samples")
	ErrOutOfRange = errors.New("track: query time outside track span")
)

// Position is an estimated location at a grid time.
type Position struct {
	Time time.Time
	Lat  float64
	Lon  float64
}

// Interpolator answers nearest-position queries against a track resampled
// onto a regular time grid. It is immutable after construction and safe to
// share across goroutines.
type Interpolator struct {
	start time.Time
	step  time.Duration
	lats  []float64
	lons  []float64

	// Raw track span; queries outside it have no coverage even when they
	// would round onto the grid.
	first, last time.Time
}

// NewInterpolator normalizes the track and resamples latitude and longitude
// independently by linear interpolation onto a grid spaced step apart,
// starting at the first sample. No grid point is produced beyond the last
// sample (no extrapolation). A non-positive step falls back to DefaultStep.
func NewInterpolator(t Track, step time.Duration) (*Interpolator, error) {
	if step <= 0 {
		step = DefaultStep
	}
	t = t.Normalize()
	if len(t) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrEmptyTrack, len(t))
	}

	first, last := t[0].Time, t[len(t)-1].Time
	n := int(last.Sub(first)/step) + 1
	ip := &Interpolator{
		start: first,
		step:  step,
		lats:  make([]float64, n),
		lons:  make([]float64, n),
		first: first,
		last:  last,
	}

	j := 0 // index of the sample bracketing the grid point from the left
	for k := 0; k < n; k++ {
		gt := first.Add(time.Duration(k) * step)
		for j+2 < len(t) && !t[j+1].Time.After(gt) {
			j++
		}
		a, b := t[j], t[j+1]
		ratio := float64(gt.Sub(a.Time)) / float64(b.Time.Sub(a.Time))
		if ratio < 0 {
			ratio = 0
		} else if ratio > 1 {
			ratio = 1
		}
		ip.lats[k] = a.Lat + ratio*(b.Lat-a.Lat)
		ip.lons[k] = a.Lon + ratio*(b.Lon-a.Lon)
	}
	return ip, nil
}

// Step returns the grid spacing in use.
func (ip *Interpolator) Step() time.Duration {
	return ip.step
}

// Span returns the raw track's first and last sample times.
func (ip *Interpolator) Span() (time.Time, time.Time) {
	return ip.first, ip.last
}

// Nearest returns the grid point closest to q, with ties broken toward the
// earlier point. Queries outside the raw track span return ErrOutOfRange.
// Lookup is pure index arithmetic on the grid, not a search.
func (ip *Interpolator) Nearest(q time.Time) (Position, error) {
	if q.Before(ip.first) || q.After(ip.last) {
		return Position{}, fmt.Errorf("%w: %s not in [%s, %s]",
			ErrOutOfRange, q.Format(time.RFC3339), ip.first.Format(time.RFC3339), ip.last.Format(time.RFC3339))
	}
	d := q.Sub(ip.start)
	idx := int(d / ip.step)
	if rem := d % ip.step; rem*2 > ip.step {
		idx++
	}
	if idx >= len(ip.lats) {
		idx = len(ip.lats) - 1
	}
	return Position{
		Time: ip.start.Add(time.Duration(idx) * ip.step),
		Lat:  ip.lats[idx],
		Lon:  ip.lons[idx],
	}, nil
}
