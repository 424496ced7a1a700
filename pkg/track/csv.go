package track

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Layouts accepted for the datetime column. Offsets are honored when
// present; naive timestamps are interpreted in the supplied location.
var csvTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006:01:02 15:04:05",
	"2006/01/02 15:04:05",
}

// ReadCSV parses a coordinate stream of (datetime, latitude, longitude)
// rows. When noHeader is false the first row is discarded. loc applies to
// timestamps without an explicit UTC offset; nil means UTC. The returned
// track is in file order; callers normalize it (NewInterpolator does).
func ReadCSV(r io.Reader, noHeader bool, loc *time.Location) (Track, error) {
	if loc == nil {
		loc = time.UTC
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true

	var t Track
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("track: reading coordinates: %w", err)
		}
		line++
		if line == 1 && !noHeader {
			continue
		}
		ts, err := parseTime(rec[0], loc)
		if err != nil {
			return nil, fmt.Errorf("track: row %d: %w", line, err)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("track: row %d: bad latitude %q", line, rec[1])
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("track: row %d: bad longitude %q", line, rec[2])
		}
		t = append(t, Sample{Time: ts, Lat: lat, Lon: lon})
	}
	return t, nil
}

func parseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range csvTimeLayouts {
		if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable datetime %q", s)
}
