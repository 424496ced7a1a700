package exif

import "encoding/binary"

// Value is the decoded payload of one IFD entry. There is exactly one
// concrete implementation per TIFF data type, plus Opaque for type codes the
// TIFF specification does not define; the closed set means encoding can never
// meet a payload it does not know how to lay out.
type Value interface {
	// Type returns the TIFF type code written to the entry.
	Type() DataType
	// Count returns the value count written to the entry.
	Count() uint32
	// size returns the encoded byte size (UnitSize * Count for regular
	// types).
	size() uint32
	// put encodes the payload into dst, which has at least size() bytes.
	put(dst []byte, order binary.ByteOrder)
}

// Bytes is a BYTE value.
type Bytes []uint8

func (v Bytes) Type() DataType { return TypeByte }
func (v Bytes) Count() uint32  { return uint32(len(v)) }
func (v Bytes) size() uint32   { return uint32(len(v)) }
func (v Bytes) put(dst []byte, order binary.ByteOrder) {
	copy(dst, v)
}

// ASCII is an ASCII value. The raw bytes are kept verbatim, including the
// trailing NUL and any embedded NULs, so unmodified strings re-encode
// byte-for-byte.
type ASCII []byte

func (v ASCII) Type() DataType { return TypeASCII }
func (v ASCII) Count() uint32  { return uint32(len(v)) }
func (v ASCII) size() uint32   { return uint32(len(v)) }
func (v ASCII) put(dst []byte, order binary.ByteOrder) {
	copy(dst, v)
}

// String returns the text without a trailing NUL.
func (v ASCII) String() string {
	if n := len(v); n > 0 && v[n-1] == 0 {
		return string(v[:n-1])
	}
	return string(v)
}

// NewASCII builds an ASCII value from a string, appending the NUL terminator
// the TIFF specification requires.
func NewASCII(s string) ASCII {
	out := make(ASCII, len(s)+1)
	copy(out, s)
	return out
}

// Shorts is a SHORT value.
type Shorts []uint16

func (v Shorts) Type() DataType { return TypeShort }
func (v Shorts) Count() uint32  { return uint32(len(v)) }
func (v Shorts) size() uint32   { return 2 * uint32(len(v)) }
func (v Shorts) put(dst []byte, order binary.ByteOrder) {
	for i, x := range v {
		order.PutUint16(dst[i*2:], x)
	}
}

// Longs is a LONG value.
type Longs []uint32

func (v Longs) Type() DataType { return TypeLong }
func (v Longs) Count() uint32  { return uint32(len(v)) }
func (v Longs) size() uint32   { return 4 * uint32(len(v)) }
func (v Longs) put(dst []byte, order binary.ByteOrder) {
	for i, x := range v {
		order.PutUint32(dst[i*4:], x)
	}
}

// Rationals is a RATIONAL value.
type Rationals []Rational

func (v Rationals) Type() DataType { return TypeRational }
func (v Rationals) Count() uint32  { return uint32(len(v)) }
func (v Rationals) size() uint32   { return 8 * uint32(len(v)) }
func (v Rationals) put(dst []byte, order binary.ByteOrder) {
	for i, r := range v {
		order.PutUint32(dst[i*8:], r.Num)
		order.PutUint32(dst[i*8+4:], r.Den)
	}
}

// SBytes is a SBYTE value.
type SBytes []int8

func (v SBytes) Type() DataType { return TypeSByte }
func (v SBytes) Count() uint32  { return uint32(len(v)) }
func (v SBytes) size() uint32   { return uint32(len(v)) }
func (v SBytes) put(dst []byte, order binary.ByteOrder) {
	for i, x := range v {
		dst[i] = uint8(x)
	}
}

// Undefined is an UNDEFINED value: raw bytes with no interpretation.
type Undefined []byte

func (v Undefined) Type() DataType { return TypeUndefined }
func (v Undefined) Count() uint32  { return uint32(len(v)) }
func (v Undefined) size() uint32   { return uint32(len(v)) }
func (v Undefined) put(dst []byte, order binary.ByteOrder) {
	copy(dst, v)
}

// SShorts is a SSHORT value.
type SShorts []int16

func (v SShorts) Type() DataType { return TypeSShort }
func (v SShorts) Count() uint32  { return uint32(len(v)) }
func (v SShorts) size() uint32   { return 2 * uint32(len(v)) }
func (v SShorts) put(dst []byte, order binary.ByteOrder) {
	for i, x := range v {
		order.PutUint16(dst[i*2:], uint16(x))
	}
}

// SLongs is a SLONG value.
type SLongs []int32

func (v SLongs) Type() DataType { return TypeSLong }
func (v SLongs) Count() uint32  { return uint32(len(v)) }
func (v SLongs) size() uint32   { return 4 * uint32(len(v)) }
func (v SLongs) put(dst []byte, order binary.ByteOrder) {
	for i, x := range v {
		order.PutUint32(dst[i*4:], uint32(x))
	}
}

// SRationals is a SRATIONAL value.
type SRationals []SRational

func (v SRationals) Type() DataType { return TypeSRational }
func (v SRationals) Count() uint32  { return uint32(len(v)) }
func (v SRationals) size() uint32   { return 8 * uint32(len(v)) }
func (v SRationals) put(dst []byte, order binary.ByteOrder) {
	for i, r := range v {
		order.PutUint32(dst[i*8:], uint32(r.Num))
		order.PutUint32(dst[i*8+4:], uint32(r.Den))
	}
}

// Floats is a FLOAT value. The raw IEEE bits are kept so re-encoding is
// lossless for every input, NaN payloads included.
type Floats []uint32

func (v Floats) Type() DataType { return TypeFloat }
func (v Floats) Count() uint32  { return uint32(len(v)) }
func (v Floats) size() uint32   { return 4 * uint32(len(v)) }
func (v Floats) put(dst []byte, order binary.ByteOrder) {
	for i, x := range v {
		order.PutUint32(dst[i*4:], x)
	}
}

// Doubles is a DOUBLE value, stored as raw IEEE bits like Floats.
type Doubles []uint64

func (v Doubles) Type() DataType { return TypeDouble }
func (v Doubles) Count() uint32  { return uint32(len(v)) }
func (v Doubles) size() uint32   { return 8 * uint32(len(v)) }
func (v Doubles) put(dst []byte, order binary.ByteOrder) {
	for i, x := range v {
		order.PutUint64(dst[i*8:], x)
	}
}

// IFDOffsets is an IFD-typed value on a tag the codec does not treat as a
// sub-IFD pointer. The offsets are carried as plain longs.
type IFDOffsets []uint32

func (v IFDOffsets) Type() DataType { return TypeIFD }
func (v IFDOffsets) Count() uint32  { return uint32(len(v)) }
func (v IFDOffsets) size() uint32   { return 4 * uint32(len(v)) }
func (v IFDOffsets) put(dst []byte, order binary.ByteOrder) {
	for i, x := range v {
		order.PutUint32(dst[i*4:], x)
	}
}

// Opaque preserves an entry whose type code is outside the TIFF set. The
// four inline value bytes are carried verbatim; the declared count is kept
// so the entry round-trips unchanged.
type Opaque struct {
	TypeCode      DataType
	DeclaredCount uint32
	Raw           [4]byte
}

func (v Opaque) Type() DataType { return v.TypeCode }
func (v Opaque) Count() uint32  { return v.DeclaredCount }
func (v Opaque) size() uint32   { return 4 }
func (v Opaque) put(dst []byte, order binary.ByteOrder) {
	copy(dst, v.Raw[:])
}

// decodeValue builds the typed payload for a known TIFF type from its raw
// encoded bytes.
func decodeValue(typ DataType, count uint32, data []byte, order binary.ByteOrder) Value {
	switch typ {
	case TypeByte:
		return Bytes(append([]uint8(nil), data...))
	case TypeASCII:
		return ASCII(append([]byte(nil), data...))
	case TypeShort:
		out := make(Shorts, count)
		for i := range out {
			out[i] = order.Uint16(data[i*2:])
		}
		return out
	case TypeLong:
		out := make(Longs, count)
		for i := range out {
			out[i] = order.Uint32(data[i*4:])
		}
		return out
	case TypeRational:
		out := make(Rationals, count)
		for i := range out {
			out[i] = Rational{order.Uint32(data[i*8:]), order.Uint32(data[i*8+4:])}
		}
		return out
	case TypeSByte:
		out := make(SBytes, count)
		for i := range out {
			out[i] = int8(data[i])
		}
		return out
	case TypeUndefined:
		return Undefined(append([]byte(nil), data...))
	case TypeSShort:
		out := make(SShorts, count)
		for i := range out {
			out[i] = int16(order.Uint16(data[i*2:]))
		}
		return out
	case TypeSLong:
		out := make(SLongs, count)
		for i := range out {
			out[i] = int32(order.Uint32(data[i*4:]))
		}
		return out
	case TypeSRational:
		out := make(SRationals, count)
		for i := range out {
			out[i] = SRational{int32(order.Uint32(data[i*8:])), int32(order.Uint32(data[i*8+4:]))}
		}
		return out
	case TypeFloat:
		out := make(Floats, count)
		for i := range out {
			out[i] = order.Uint32(data[i*4:])
		}
		return out
	case TypeDouble:
		out := make(Doubles, count)
		for i := range out {
			out[i] = order.Uint64(data[i*8:])
		}
		return out
	case TypeIFD:
		out := make(IFDOffsets, count)
		for i := range out {
			out[i] = order.Uint32(data[i*4:])
		}
		return out
	}
	panic("exif: decodeValue called with unknown type")
}
