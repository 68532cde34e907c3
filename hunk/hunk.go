// Package hunk parses Amiga Hunk executables far enough to report segment
// layout: code/data/bss sizes, relocations, symbols and line-debug info.
// Parsing only; no relocation application or execution.
package hunk

import (
	"encoding/binary"
	"io"
	"sort"

	"github.com/pkg/errors"
)

const (
	headerMagic = 1011

	idCode    = 1001
	idData    = 1002
	idBSS     = 1003
	idReloc32 = 1004
	idSymbol  = 1008
	idDebug   = 1009
	idEnd     = 1010

	debugLineTag = 0x4C494E45

	memChipBit = 1 << 30
	memFastBit = 1 << 31
	memMask    = 0xF0000000
	sizeMask   = 0x0FFFFFFF
)

var (
	ErrBadMagic = errors.New("hunk: bad HUNK_HEADER magic")
	ErrBadTable = errors.New("hunk: bad hunk size table")
)

// MemoryType is the requested allocation pool for a hunk.
type MemoryType int

const (
	MemAny MemoryType = iota
	MemChip
	MemFast
)

func (m MemoryType) String() string {
	switch m {
	case MemChip:
		return "CHIP"
	case MemFast:
		return "FAST"
	default:
		return "ANY"
	}
}

// Kind is a hunk's primary content type.
type Kind int

const (
	KindCode Kind = iota
	KindData
	KindBSS
)

func (k Kind) String() string {
	switch k {
	case KindData:
		return "DATA"
	case KindBSS:
		return "BSS"
	default:
		return "CODE"
	}
}

// Reloc32 is one HUNK_RELOC32 group: a target hunk and the offsets within
// the current hunk that need patching to point into it.
type Reloc32 struct {
	Target  int
	Offsets []uint32
}

// Symbol is one HUNK_SYMBOL entry.
type Symbol struct {
	Name   string
	Offset uint32
}

// SourceLine is one (line number, offset) pair from a HUNK_DEBUG LINE block.
type SourceLine struct {
	Line   uint32
	Offset uint32
}

// SourceFile is one HUNK_DEBUG LINE block: a source file name plus the
// lines it contributes to the enclosing hunk.
type SourceFile struct {
	Name       string
	BaseOffset uint32
	Lines      []SourceLine
}

// Segment is one parsed hunk: its memory/content type plus whichever
// optional sub-blocks were present.
type Segment struct {
	MemType    MemoryType
	Kind       Kind
	AllocSize  int // in bytes: from the size table, or from HUNK_BSS's size word for BSS hunks
	Data       []byte
	Relocs     []Reloc32
	Symbols    []Symbol
	DebugLines []SourceFile
}

// Parse reads a full Hunk executable from r and returns its segments in
// hunk-table order.
func Parse(r io.Reader) ([]Segment, error) {
	if err := validateHeader(r); err != nil {
		return nil, err
	}
	sizes, memTypes, err := readSizeTable(r)
	if err != nil {
		return nil, err
	}

	segments := make([]Segment, len(sizes))
	for i := range segments {
		segments[i].AllocSize = sizes[i]
		segments[i].MemType = memTypes[i]
		if err := parseSegment(r, &segments[i]); err != nil {
			return nil, errors.Wrapf(err, "hunk: segment %d", i)
		}
	}
	return segments, nil
}

func validateHeader(r io.Reader) error {
	magic, err := readU32(r)
	if err != nil {
		return errors.Wrap(err, "hunk: failed to read HUNK_HEADER")
	}
	if magic != headerMagic {
		return errors.Wrapf(ErrBadMagic, "hunk: got %d", magic)
	}
	// Resident-library names table: a sequence of length-prefixed (in
	// longwords) name strings terminated by a zero-length entry.
	for {
		n, err := readU32(r)
		if err != nil {
			return errors.Wrap(err, "hunk: failed to read resident-library table")
		}
		if n == 0 {
			break
		}
		if err := discard(r, int64(n)*4); err != nil {
			return errors.Wrap(err, "hunk: failed to skip resident-library name")
		}
	}
	return nil
}

func readSizeTable(r io.Reader) ([]int, []MemoryType, error) {
	if _, err := readU32(r); err != nil { // table size, unused
		return nil, nil, errors.Wrap(err, "hunk: failed to read table size")
	}
	first, err := readU32(r)
	if err != nil {
		return nil, nil, errors.Wrap(err, "hunk: failed to read first hunk index")
	}
	last, err := readU32(r)
	if err != nil {
		return nil, nil, errors.Wrap(err, "hunk: failed to read last hunk index")
	}
	if last < first {
		return nil, nil, errors.Wrapf(ErrBadTable, "hunk: last %d < first %d", last, first)
	}

	count := int(last-first) + 1
	sizes := make([]int, count)
	memTypes := make([]MemoryType, count)
	for i := 0; i < count; i++ {
		word, err := readU32(r)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "hunk: failed to read size word %d", i)
		}
		size, mem := sizeAndMemType(word)
		sizes[i] = size
		memTypes[i] = mem
	}
	return sizes, memTypes, nil
}

func sizeAndMemType(word uint32) (int, MemoryType) {
	size := int(word&sizeMask) * 4
	switch word & memMask {
	case memChipBit:
		return size, MemChip
	case memFastBit:
		return size, MemFast
	default:
		return size, MemAny
	}
}

func parseSegment(r io.Reader, seg *Segment) error {
	for {
		id, err := readU32(r)
		if err != nil {
			return errors.Wrap(err, "failed to read sub-block id")
		}
		switch id {
		case idCode:
			if err := parseCodeOrData(r, seg, KindCode); err != nil {
				return err
			}
		case idData:
			if err := parseCodeOrData(r, seg, KindData); err != nil {
				return err
			}
		case idBSS:
			if err := parseBSS(r, seg); err != nil {
				return err
			}
		case idReloc32:
			if err := parseReloc32(r, seg); err != nil {
				return err
			}
		case idSymbol:
			if err := parseSymbols(r, seg); err != nil {
				return err
			}
		case idDebug:
			if err := parseDebug(r, seg); err != nil {
				return err
			}
		case idEnd:
			return nil
		default:
			if err := skipUnknown(r); err != nil {
				return err
			}
		}
	}
}

func parseCodeOrData(r io.Reader, seg *Segment, kind Kind) error {
	word, err := readU32(r)
	if err != nil {
		return errors.Wrap(err, "failed to read size word")
	}
	size, mem := sizeAndMemType(word)
	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		return errors.Wrap(err, "failed to read code/data bytes")
	}
	seg.Kind = kind
	seg.MemType = mem
	seg.Data = data
	return nil
}

func parseBSS(r io.Reader, seg *Segment) error {
	word, err := readU32(r)
	if err != nil {
		return errors.Wrap(err, "failed to read BSS size word")
	}
	size, mem := sizeAndMemType(word)
	seg.Kind = KindBSS
	seg.MemType = mem
	seg.AllocSize = size
	return nil
}

func parseReloc32(r io.Reader, seg *Segment) error {
	var relocs []Reloc32
	for {
		count, err := readU32(r)
		if err != nil {
			return errors.Wrap(err, "failed to read reloc32 count")
		}
		if count == 0 {
			break
		}
		target, err := readU32(r)
		if err != nil {
			return errors.Wrap(err, "failed to read reloc32 target")
		}
		offsets := make([]uint32, count)
		for i := range offsets {
			offsets[i], err = readU32(r)
			if err != nil {
				return errors.Wrap(err, "failed to read reloc32 offset")
			}
		}
		relocs = append(relocs, Reloc32{Target: int(target), Offsets: offsets})
	}
	seg.Relocs = relocs
	return nil
}

func parseSymbols(r io.Reader, seg *Segment) error {
	var symbols []Symbol
	for {
		nameLongs, err := readU32(r)
		if err != nil {
			return errors.Wrap(err, "failed to read symbol name length")
		}
		if nameLongs == 0 {
			break
		}
		name, err := readName(r, nameLongs)
		if err != nil {
			return err
		}
		offset, err := readU32(r)
		if err != nil {
			return errors.Wrap(err, "failed to read symbol offset")
		}
		symbols = append(symbols, Symbol{Name: name, Offset: offset})
	}
	sort.Slice(symbols, func(i, j int) bool { return symbols[i].Offset < symbols[j].Offset })
	seg.Symbols = symbols
	return nil
}

func parseDebug(r io.Reader, seg *Segment) error {
	totalLongs, err := readU32(r)
	if err != nil {
		return errors.Wrap(err, "failed to read debug block length")
	}
	remainingLongs := totalLongs - 2
	baseOffset, err := readU32(r)
	if err != nil {
		return errors.Wrap(err, "failed to read debug base offset")
	}
	tag, err := readU32(r)
	if err != nil {
		return errors.Wrap(err, "failed to read debug tag")
	}
	if tag != debugLineTag {
		return discard(r, int64(remainingLongs)*4)
	}

	nameLongs, err := readU32(r)
	if err != nil {
		return errors.Wrap(err, "failed to read debug-line name length")
	}
	name, err := readName(r, nameLongs)
	if err != nil {
		return err
	}
	numLines := (remainingLongs - nameLongs - 1) / 2
	lines := make([]SourceLine, 0, numLines)
	for i := uint32(0); i < numLines; i++ {
		lineWord, err := readU32(r)
		if err != nil {
			return errors.Wrap(err, "failed to read debug line number")
		}
		offset, err := readU32(r)
		if err != nil {
			return errors.Wrap(err, "failed to read debug line offset")
		}
		lines = append(lines, SourceLine{Line: lineWord & 0xFFFFFF, Offset: baseOffset + offset})
	}

	seg.DebugLines = append(seg.DebugLines, SourceFile{Name: name, BaseOffset: baseOffset, Lines: lines})
	return nil
}

func skipUnknown(r io.Reader) error {
	longs, err := readU32(r)
	if err != nil {
		return errors.Wrap(err, "failed to read unknown sub-block length")
	}
	return discard(r, int64(longs)*4)
}

func readName(r io.Reader, nameLongs uint32) (string, error) {
	buf := make([]byte, int(nameLongs)*4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", errors.Wrap(err, "failed to read name bytes")
	}
	end := len(buf)
	for i, b := range buf {
		if b == 0 {
			end = i
			break
		}
	}
	return string(buf[:end]), nil
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func discard(r io.Reader, n int64) error {
	if n == 0 {
		return nil
	}
	_, err := io.CopyN(io.Discard, r, n)
	return err
}
