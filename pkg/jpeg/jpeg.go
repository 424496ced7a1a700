// Package jpeg locates the APP1 Exif segment inside a JPEG file and splices
// a rewritten metadata block back in, leaving every other byte of the file
// untouched.
package jpeg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	ErrNotJPEG         = errors.New("jpeg: not a JPEG file")
	ErrNoExif          = errors.New("jpeg: no Exif segment")
	ErrSegmentTooLarge = errors.New("jpeg: Exif segment exceeds 64 KiB")
)

const (
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOS  = 0xDA
	markerAPP1 = 0xE1
)

var exifPreamble = []byte("Exif\x00\x00")

// Span marks the byte range of a whole APP1 segment within a file, from its
// 0xFF marker byte to the end of the payload (exclusive).
type Span struct {
	Start, End int
}

// ExtractEXIF scans the segment stream for an APP1 segment with the Exif
// preamble and returns the embedded TIFF block together with the segment's
// span. The scan stops at SOS; entropy-coded data can contain anything.
func ExtractEXIF(data []byte) ([]byte, Span, error) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != markerSOI {
		return nil, Span{}, ErrNotJPEG
	}
	i := 2
	for i+4 <= len(data) {
		if data[i] != 0xFF {
			return nil, Span{}, fmt.Errorf("%w: garbage at offset %d", ErrNotJPEG, i)
		}
		marker := data[i+1]
		switch {
		case marker == 0xFF:
			// Fill byte before a marker.
			i++
			continue
		case marker == markerSOS || marker == markerEOI:
			return nil, Span{}, ErrNoExif
		case marker == markerSOI || (marker >= 0xD0 && marker <= 0xD7):
			// Standalone markers carry no length.
			i += 2
			continue
		}
		segLen := int(binary.BigEndian.Uint16(data[i+2 : i+4]))
		if segLen < 2 || i+2+segLen > len(data) {
			return nil, Span{}, fmt.Errorf("%w: segment 0x%02X at offset %d overruns file", ErrNotJPEG, marker, i)
		}
		if marker == markerAPP1 && segLen >= 2+len(exifPreamble) &&
			bytes.Equal(data[i+4:i+4+len(exifPreamble)], exifPreamble) {
			start := i + 4 + len(exifPreamble)
			end := i + 2 + segLen
			return data[start:end], Span{Start: i, End: end}, nil
		}
		i += 2 + segLen
	}
	return nil, Span{}, ErrNoExif
}

// ReplaceEXIF returns a copy of the file with the APP1 Exif segment replaced
// by one holding block. When the file has no Exif segment, a new APP1 is
// inserted directly after SOI, where the Exif specification puts it.
func ReplaceEXIF(data []byte, block []byte) ([]byte, error) {
	payload := len(exifPreamble) + len(block)
	if payload+2 > 0xFFFF {
		return nil, fmt.Errorf("%w: %d bytes", ErrSegmentTooLarge, payload+2)
	}
	seg := make([]byte, 0, 4+payload)
	seg = append(seg, 0xFF, markerAPP1)
	seg = binary.BigEndian.AppendUint16(seg, uint16(payload+2))
	seg = append(seg, exifPreamble...)
	seg = append(seg, block...)

	_, span, err := ExtractEXIF(data)
	switch {
	case err == nil:
		out := make([]byte, 0, len(data)-(span.End-span.Start)+len(seg))
		out = append(out, data[:span.Start]...)
		out = append(out, seg...)
		out = append(out, data[span.End:]...)
		return out, nil
	case errors.Is(err, ErrNoExif):
		out := make([]byte, 0, len(data)+len(seg))
		out = append(out, data[:2]...)
		out = append(out, seg...)
		out = append(out, data[2:]...)
		return out, nil
	default:
		return nil, err
	}
}
