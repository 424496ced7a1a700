// Package exif decodes and re-encodes the TIFF-structured metadata block
// embedded in JPEG APP1 segments. A parsed Block holds explicit entry
// collections per IFD; serialized offsets are always computed fresh, never
// patched in place.
package exif

import "fmt"

// DataType is a TIFF field type code.
type DataType uint16

// TIFF 6.0 data types.
const (
	TypeByte      DataType = 1
	TypeASCII     DataType = 2
	TypeShort     DataType = 3
	TypeLong      DataType = 4
	TypeRational  DataType = 5
	TypeSByte     DataType = 6
	TypeUndefined DataType = 7
	TypeSShort    DataType = 8
	TypeSLong     DataType = 9
	TypeSRational DataType = 10
	TypeFloat     DataType = 11
	TypeDouble    DataType = 12
	TypeIFD       DataType = 13 // TIFF Supplement 1
)

var typeSizes = map[DataType]uint32{
	TypeByte:      1,
	TypeASCII:     1,
	TypeShort:     2,
	TypeLong:      4,
	TypeRational:  8,
	TypeSByte:     1,
	TypeUndefined: 1,
	TypeSShort:    2,
	TypeSLong:     4,
	TypeSRational: 8,
	TypeFloat:     4,
	TypeDouble:    8,
	TypeIFD:       4,
}

// UnitSize returns the byte size of a single value of the type, or 0 for
// type codes outside the TIFF set.
func (t DataType) UnitSize() uint32 {
	return typeSizes[t]
}

var typeNames = map[DataType]string{
	TypeByte:      "Byte",
	TypeASCII:     "ASCII",
	TypeShort:     "Short",
	TypeLong:      "Long",
	TypeRational:  "Rational",
	TypeSByte:     "SByte",
	TypeUndefined: "Undefined",
	TypeSShort:    "SShort",
	TypeSLong:     "SLong",
	TypeSRational: "SRational",
	TypeFloat:     "Float",
	TypeDouble:    "Double",
	TypeIFD:       "IFD",
}

func (t DataType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", uint16(t))
}

// Rational is an unsigned TIFF rational: numerator over denominator.
type Rational struct {
	Num, Den uint32
}

// Float returns the rational as a float64. A zero denominator yields 0.
func (r Rational) Float() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// SRational is a signed TIFF rational.
type SRational struct {
	Num, Den int32
}

// Float returns the signed rational as a float64. A zero denominator yields 0.
func (r SRational) Float() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// Tags the codec itself needs to know about. Anything else passes through
// opaquely.
const (
	TagDateTime          = 0x0132
	TagExifIFD           = 0x8769
	TagGPSIFD            = 0x8825
	TagInteropIFD        = 0xA005
	TagDateTimeOriginal  = 0x9003
	TagDateTimeDigitized = 0x9004

	TagGPSLatitudeRef  = 0x0001
	TagGPSLatitude     = 0x0002
	TagGPSLongitudeRef = 0x0003
	TagGPSLongitude    = 0x0004
)
