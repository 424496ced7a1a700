package exif

import (
	"encoding/binary"
	"errors"
)

// Parse and lookup errors. Parse wraps these with positional detail.
var (
	ErrMalformedHeader = errors.New("exif: malformed TIFF header")
	ErrTruncated       = errors.New("exif: data truncated")
	ErrUnsupportedType = errors.New("exif: unsupported tag type")
	ErrNotFound        = errors.New("exif: tag not found")
)

// Entry is one tag inside an IFD: identifier plus decoded payload. Offsets
// are not stored; they exist only transiently during Serialize.
type Entry struct {
	Tag   uint16
	Value Value
}

// SubIFD links a nested IFD to the pointer tag that referenced it in the
// parent. The pointer entry itself is synthesized on encode.
type SubIFD struct {
	Tag uint16
	IFD *IFD
}

// IFD is one image file directory: an entry collection, nested sub-IFDs, and
// an optional chained next IFD.
type IFD struct {
	Entries []Entry
	Subs    []SubIFD
	Next    *IFD
}

// Find returns the entry with the given tag, if present.
func (d *IFD) Find(tag uint16) (*Entry, bool) {
	for i := range d.Entries {
		if d.Entries[i].Tag == tag {
			return &d.Entries[i], true
		}
	}
	return nil, false
}

// Set replaces the entry with the given tag, or appends one. Entry order is
// irrelevant here; Serialize emits tags in ascending order regardless.
func (d *IFD) Set(tag uint16, v Value) {
	if e, ok := d.Find(tag); ok {
		e.Value = v
		return
	}
	d.Entries = append(d.Entries, Entry{Tag: tag, Value: v})
}

// Sub returns the nested IFD linked via the given pointer tag, or nil.
func (d *IFD) Sub(tag uint16) *IFD {
	for _, s := range d.Subs {
		if s.Tag == tag {
			return s.IFD
		}
	}
	return nil
}

// Path names an IFD within a block for lookups.
type Path int

const (
	PathIFD0 Path = iota // main IFD
	PathExif             // Exif sub-IFD (pointer tag 0x8769)
	PathGPS              // GPS sub-IFD (pointer tag 0x8825)
)

// Block is a parsed metadata block. It remembers the original bytes so
// unmodified blocks serialize byte-identically; any mutation marks it dirty
// and forces a full re-encode.
type Block struct {
	Order binary.ByteOrder
	IFD0  *IFD

	raw   []byte
	dirty bool
}

// Dirty reports whether the block was modified since parsing.
func (b *Block) Dirty() bool {
	return b.dirty
}

// ifd resolves a Path to its IFD, or nil if the block has none.
func (b *Block) ifd(path Path) *IFD {
	switch path {
	case PathIFD0:
		return b.IFD0
	case PathExif:
		return b.IFD0.Sub(TagExifIFD)
	case PathGPS:
		return b.IFD0.Sub(TagGPSIFD)
	}
	return nil
}

// Find looks up a tag in the named IFD. The boolean is false when either the
// IFD or the tag is absent.
func (b *Block) Find(path Path, tag uint16) (*Entry, bool) {
	d := b.ifd(path)
	if d == nil {
		return nil, false
	}
	return d.Find(tag)
}
