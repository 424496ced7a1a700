package exif

import (
	"fmt"
	"sort"
)

// Serialize re-encodes the block. A block that was never modified returns a
// copy of the exact bytes it was parsed from. A dirty block is laid out from
// scratch in two passes: sizes first, then emission into a buffer of the
// final size, so every offset is consistent by construction and no byte
// range can overlap another.
//
// Layout is deterministic: entries in ascending tag order, each IFD's
// external data directly after its table in table order, sub-IFD trees after
// their parent's data, chained IFDs last, everything 2-byte aligned.
func (b *Block) Serialize() ([]byte, error) {
	if !b.dirty {
		return append([]byte(nil), b.raw...), nil
	}
	size := headerSize + b.IFD0.treeSize()
	buf := make([]byte, size)
	if b.Order == nil {
		return nil, fmt.Errorf("exif: block has no byte order")
	}
	putHeader(buf, b)
	if _, err := b.IFD0.put(buf, headerSize, b); err != nil {
		return nil, err
	}
	return buf, nil
}

func putHeader(buf []byte, b *Block) {
	if b.littleEndian() {
		buf[0], buf[1] = 'I', 'I'
	} else {
		buf[0], buf[1] = 'M', 'M'
	}
	b.Order.PutUint16(buf[2:], tiffMagic)
	b.Order.PutUint32(buf[4:], headerSize) // IFD0 directly after the header
}

func (b *Block) littleEndian() bool {
	var probe [2]byte
	b.Order.PutUint16(probe[:], 1)
	return probe[0] == 1
}

// align rounds a position up to the next 2-byte boundary.
func align(pos uint32) uint32 {
	return (pos + 1) &^ 1
}

// tableSize is the byte size of the IFD table itself: entries plus the
// synthesized sub-IFD pointer entries.
func (d *IFD) tableSize() uint32 {
	n := uint32(len(d.Entries) + len(d.Subs))
	return tableOverhead + n*tableEntrySize
}

// nodeSize is tableSize plus the external data area for values over 4 bytes.
func (d *IFD) nodeSize() uint32 {
	size := d.tableSize()
	for _, e := range d.Entries {
		if s := e.Value.size(); s > 4 {
			size += s
		}
	}
	return size
}

// treeSize is the serialized size of the IFD, its sub-IFDs and its chain.
func (d *IFD) treeSize() uint32 {
	size := d.nodeSize()
	for _, s := range d.Subs {
		size = align(size) + s.IFD.treeSize()
	}
	if d.Next != nil {
		size = align(size) + d.Next.treeSize()
	}
	return size
}

// put writes the IFD tree rooted at d into buf at pos and returns the
// position after the last byte written. Sub-IFDs are written first so their
// final positions are known when the parent's pointer entries are emitted.
func (d *IFD) put(buf []byte, pos uint32, b *Block) (uint32, error) {
	next := pos + d.nodeSize()
	subPos := make([]uint32, len(d.Subs))
	var err error
	for i, s := range d.Subs {
		next = align(next)
		subPos[i] = next
		if next, err = s.IFD.put(buf, next, b); err != nil {
			return 0, err
		}
	}
	nextIFDPos := uint32(0)
	if d.Next != nil {
		next = align(next)
		nextIFDPos = next
		if next, err = d.Next.put(buf, next, b); err != nil {
			return 0, err
		}
	}

	type row struct {
		tag   uint16
		typ   DataType
		count uint32
		value Value  // nil for synthesized pointer rows
		ptr   uint32 // sub-IFD position for pointer rows
	}
	rows := make([]row, 0, len(d.Entries)+len(d.Subs))
	for _, e := range d.Entries {
		rows = append(rows, row{tag: e.Tag, typ: e.Value.Type(), count: e.Value.Count(), value: e.Value})
	}
	for i, s := range d.Subs {
		rows = append(rows, row{tag: s.Tag, typ: TypeLong, count: 1, ptr: subPos[i]})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].tag < rows[j].tag })

	order := b.Order
	order.PutUint16(buf[pos:], uint16(len(rows)))
	entPos := pos + 2
	dataPos := pos + d.tableSize()
	for _, r := range rows {
		order.PutUint16(buf[entPos:], r.tag)
		order.PutUint16(buf[entPos+2:], uint16(r.typ))
		order.PutUint32(buf[entPos+4:], r.count)
		switch {
		case r.value == nil:
			order.PutUint32(buf[entPos+8:], r.ptr)
		case r.value.size() <= 4:
			// Inline storage; unused bytes stay zero.
			r.value.put(buf[entPos+8:entPos+12], order)
		default:
			size := r.value.size()
			if dataPos+size > pos+d.nodeSize() {
				return 0, fmt.Errorf("exif: layout overflow at tag 0x%04X", r.tag)
			}
			order.PutUint32(buf[entPos+8:], dataPos)
			r.value.put(buf[dataPos:dataPos+size], order)
			dataPos += size
		}
		entPos += tableEntrySize
	}
	order.PutUint32(buf[entPos:], nextIFDPos)
	return next, nil
}
