// Package track turns a sparse, irregularly sampled location history into a
// position estimator queryable at arbitrary times.
package track

import (
	"sort"
	"time"
)

// Sample is one timestamped location record in signed decimal degrees.
type Sample struct {
	Time time.Time
	Lat  float64
	Lon  float64
}

// Track is an ordered sequence of samples. Build it once from the coordinate
// source; after normalization it is consumed read-only.
type Track []Sample

// Normalize returns a copy sorted by time. Samples sharing a timestamp
// collapse to the first occurrence in the input order (stable sort), so a
// duplicated row never averages into its neighbor.
func (t Track) Normalize() Track {
	out := make(Track, len(t))
	copy(out, t)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	dedup := out[:0]
	for _, s := range out {
		if len(dedup) > 0 && s.Time.Equal(dedup[len(dedup)-1].Time) {
			continue
		}
		dedup = append(dedup, s)
	}
	return dedup
}
