package exif

import (
	"fmt"
	"math"
	"time"
)

// secondsDen is the denominator used for the seconds rational when encoding
// coordinates: 1/1000 s of arc is about 0.3 mm of latitude, well below GPS
// accuracy.
const secondsDen = 1000

// SetGPSPosition writes the four positional GPS tags for the given decimal
// coordinates, replacing any previous values. The GPS sub-IFD is created and
// linked from the main IFD when absent. Degrees, minutes and seconds are
// always non-negative; the hemisphere lives only in the reference tag.
func (b *Block) SetGPSPosition(lat, lon float64) {
	gps := b.IFD0.Sub(TagGPSIFD)
	if gps == nil {
		gps = &IFD{}
		b.IFD0.Subs = append(b.IFD0.Subs, SubIFD{Tag: TagGPSIFD, IFD: gps})
	}

	latRef, lonRef := "N", "E"
	if lat < 0 {
		latRef, lat = "S", -lat
	}
	if lon < 0 {
		lonRef, lon = "W", -lon
	}
	gps.Set(TagGPSLatitudeRef, NewASCII(latRef))
	gps.Set(TagGPSLatitude, degreesToRationals(lat))
	gps.Set(TagGPSLongitudeRef, NewASCII(lonRef))
	gps.Set(TagGPSLongitude, degreesToRationals(lon))
	b.dirty = true
}

// degreesToRationals splits non-negative decimal degrees into the
// degrees/minutes/seconds triple the GPS tags require.
func degreesToRationals(deg float64) Rationals {
	d := math.Floor(deg)
	rem := (deg - d) * 60
	m := math.Floor(rem)
	sec := (rem - m) * 60
	return Rationals{
		{Num: uint32(d), Den: 1},
		{Num: uint32(m), Den: 1},
		{Num: uint32(math.Round(sec * secondsDen)), Den: secondsDen},
	}
}

// HasGPSPosition reports whether the block already carries both coordinate
// tags. Used to implement the do-not-overwrite policy upstream.
func (b *Block) HasGPSPosition() bool {
	gps := b.IFD0.Sub(TagGPSIFD)
	if gps == nil {
		return false
	}
	_, hasLat := gps.Find(TagGPSLatitude)
	_, hasLon := gps.Find(TagGPSLongitude)
	return hasLat && hasLon
}

// GPSPosition returns the decoded decimal coordinates, or ErrNotFound.
func (b *Block) GPSPosition() (lat, lon float64, err error) {
	gps := b.IFD0.Sub(TagGPSIFD)
	if gps == nil {
		return 0, 0, fmt.Errorf("%w: no GPS IFD", ErrNotFound)
	}
	lat, err = gpsCoordinate(gps, TagGPSLatitude, TagGPSLatitudeRef, "S")
	if err != nil {
		return 0, 0, err
	}
	lon, err = gpsCoordinate(gps, TagGPSLongitude, TagGPSLongitudeRef, "W")
	if err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}

func gpsCoordinate(gps *IFD, valueTag, refTag uint16, negative string) (float64, error) {
	e, ok := gps.Find(valueTag)
	if !ok {
		return 0, fmt.Errorf("%w: GPS tag 0x%04X", ErrNotFound, valueTag)
	}
	rats, ok := e.Value.(Rationals)
	if !ok || len(rats) == 0 {
		return 0, fmt.Errorf("%w: GPS tag 0x%04X is %s, want Rational", ErrUnsupportedType, valueTag, e.Value.Type())
	}
	deg := rats[0].Float()
	if len(rats) > 1 {
		deg += rats[1].Float() / 60
	}
	if len(rats) > 2 {
		deg += rats[2].Float() / 3600
	}
	if ref, ok := gps.Find(refTag); ok {
		if s, ok := ref.Value.(ASCII); ok && s.String() == negative {
			deg = -deg
		}
	}
	return deg, nil
}

// Textual layouts accepted for EXIF date/time tags. The colon form is the
// standard; cameras and editors have been seen emitting the others.
var captureLayouts = []string{
	"2006:01:02 15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
}

// Tags consulted for the capture time, in preference order.
var captureTags = []struct {
	path Path
	tag  uint16
}{
	{PathExif, TagDateTimeOriginal},
	{PathIFD0, TagDateTime},
	{PathExif, TagDateTimeDigitized},
}

// CaptureTimestamp returns the capture time recorded in the block. EXIF
// date/time strings carry no timezone, so the caller supplies the location
// the value should be interpreted in.
func (b *Block) CaptureTimestamp(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	for _, c := range captureTags {
		e, ok := b.Find(c.path, c.tag)
		if !ok {
			continue
		}
		s, ok := e.Value.(ASCII)
		if !ok {
			continue
		}
		for _, layout := range captureLayouts {
			if t, err := time.ParseInLocation(layout, s.String(), loc); err == nil {
				return t, nil
			}
		}
	}
	return time.Time{}, fmt.Errorf("%w: no parseable date/time tag", ErrNotFound)
}
