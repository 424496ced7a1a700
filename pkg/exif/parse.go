package exif

import (
	"encoding/binary"
	"fmt"
)

const (
	headerSize = 8
	tiffMagic  = 42

	tableEntrySize = 12
	tableOverhead  = 6 // entry count (2) + next-IFD pointer (4)
)

// Parse decodes a TIFF metadata block into a Block. Offsets in the block are
// relative to buf[0]. Traversal follows the IFD chain and the Exif, GPS and
// Interoperability pointer tags; every other tag is decoded by type and
// carried along, opaquely when the type code is unknown.
func Parse(buf []byte) (*Block, error) {
	if len(buf) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is smaller than a TIFF header", ErrMalformedHeader, len(buf))
	}
	var order binary.ByteOrder
	switch {
	case buf[0] == 'I' && buf[1] == 'I':
		order = binary.LittleEndian
	case buf[0] == 'M' && buf[1] == 'M':
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: bad byte-order marker %02x%02x", ErrMalformedHeader, buf[0], buf[1])
	}
	if magic := order.Uint16(buf[2:]); magic != tiffMagic {
		return nil, fmt.Errorf("%w: bad magic value %d", ErrMalformedHeader, magic)
	}
	ifdPos := order.Uint32(buf[4:])
	if ifdPos == 0 {
		return nil, fmt.Errorf("%w: zero offset to first IFD", ErrMalformedHeader)
	}

	p := &parser{buf: buf, order: order, seen: make(map[uint32]bool)}
	ifd0, err := p.readIFD(ifdPos)
	if err != nil {
		return nil, err
	}
	return &Block{
		Order: order,
		IFD0:  ifd0,
		raw:   append([]byte(nil), buf...),
	}, nil
}

type parser struct {
	buf   []byte
	order binary.ByteOrder
	seen  map[uint32]bool // IFD positions, for cycle detection
}

// pointerTag reports whether a tag links a nested IFD that must be traversed.
func pointerTag(tag uint16) bool {
	return tag == TagExifIFD || tag == TagGPSIFD || tag == TagInteropIFD
}

func (p *parser) readIFD(pos uint32) (*IFD, error) {
	if p.seen[pos] {
		return nil, fmt.Errorf("%w: IFD cycle at offset %d", ErrMalformedHeader, pos)
	}
	p.seen[pos] = true

	bufsize := uint32(len(p.buf))
	if pos+2 < pos || pos+2 > bufsize {
		return nil, fmt.Errorf("%w: IFD at offset %d past end of block", ErrTruncated, pos)
	}
	n := uint32(p.order.Uint16(p.buf[pos:]))
	tabEnd := pos + 2 + n*tableEntrySize + 4
	if tabEnd < pos || tabEnd > bufsize {
		return nil, fmt.Errorf("%w: IFD at offset %d declares %d entries past end of block", ErrTruncated, pos, n)
	}

	ifd := &IFD{}
	for i := uint32(0); i < n; i++ {
		ent := pos + 2 + i*tableEntrySize
		tag := p.order.Uint16(p.buf[ent:])
		typ := DataType(p.order.Uint16(p.buf[ent+2:]))
		count := p.order.Uint32(p.buf[ent+4:])
		valueField := p.buf[ent+8 : ent+12]

		if pointerTag(tag) {
			if typ != TypeLong && typ != TypeIFD {
				return nil, fmt.Errorf("%w: pointer tag 0x%04X has type %s", ErrUnsupportedType, tag, typ)
			}
			off := p.order.Uint32(valueField)
			if off == 0 {
				// Dangling pointer; drop it rather than link an
				// empty IFD.
				continue
			}
			sub, err := p.readIFD(off)
			if err != nil {
				return nil, err
			}
			ifd.Subs = append(ifd.Subs, SubIFD{Tag: tag, IFD: sub})
			continue
		}

		unit := typ.UnitSize()
		if unit == 0 {
			// Unknown type code: keep the entry opaquely. The four
			// inline bytes round-trip verbatim.
			var raw [4]byte
			copy(raw[:], valueField)
			ifd.Entries = append(ifd.Entries, Entry{Tag: tag, Value: Opaque{TypeCode: typ, DeclaredCount: count, Raw: raw}})
			continue
		}
		if count > (1<<31)/unit {
			return nil, fmt.Errorf("%w: tag 0x%04X declares count %d", ErrTruncated, tag, count)
		}
		total := unit * count
		data := valueField[:min(total, 4)]
		if total > 4 {
			off := p.order.Uint32(valueField)
			if off+total < off || off+total > bufsize {
				return nil, fmt.Errorf("%w: tag 0x%04X data (%d bytes at offset %d) past end of block", ErrTruncated, tag, total, off)
			}
			data = p.buf[off : off+total]
		}
		ifd.Entries = append(ifd.Entries, Entry{Tag: tag, Value: decodeValue(typ, count, data, p.order)})
	}

	next := p.order.Uint32(p.buf[pos+2+n*tableEntrySize:])
	if next != 0 {
		var err error
		ifd.Next, err = p.readIFD(next)
		if err != nil {
			return nil, err
		}
	}
	return ifd, nil
}
