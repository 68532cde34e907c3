package hunk

import (
	"bytes"
	"encoding/binary"
	"testing"
)

type fileBuilder struct {
	buf bytes.Buffer
}

func (b *fileBuilder) u32(v uint32) *fileBuilder {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	b.buf.Write(tmp[:])
	return b
}

func (b *fileBuilder) bytes_(data []byte) *fileBuilder {
	b.buf.Write(data)
	return b
}

// buildMinimalHunk constructs a one-hunk executable: HUNK_HEADER, an empty
// resident-library table, a size table for a single ANY-memory hunk, one
// HUNK_CODE sub-block, and HUNK_END.
func buildMinimalHunk(code []byte) []byte {
	var b fileBuilder
	b.u32(headerMagic)
	b.u32(0) // resident-library table terminator
	b.u32(1) // table size
	b.u32(0) // first hunk index
	b.u32(0) // last hunk index

	sizeWords := uint32(len(code)+3) / 4
	b.u32(sizeWords)

	b.u32(idCode)
	b.u32(sizeWords)
	padded := make([]byte, sizeWords*4)
	copy(padded, code)
	b.bytes_(padded)
	b.u32(idEnd)
	return b.buf.Bytes()
}

func TestParseMinimalCodeHunk(t *testing.T) {
	code := []byte{0x4E, 0x71, 0x4E, 0x75} // NOP; RTS
	raw := buildMinimalHunk(code)

	segments, err := Parse(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(segments) != 1 {
		t.Fatalf("Parse() returned %d segments, want 1", len(segments))
	}
	seg := segments[0]
	if seg.Kind != KindCode {
		t.Errorf("Kind = %v, want KindCode", seg.Kind)
	}
	if seg.MemType != MemAny {
		t.Errorf("MemType = %v, want MemAny", seg.MemType)
	}
	if !bytes.Equal(seg.Data[:len(code)], code) {
		t.Errorf("Data = %v, want prefix %v", seg.Data, code)
	}
}

func TestParseBadMagic(t *testing.T) {
	var b fileBuilder
	b.u32(0)
	if _, err := Parse(bytes.NewReader(b.buf.Bytes())); err == nil {
		t.Error("Parse() with bad magic should fail")
	}
}

func TestParseBadTable(t *testing.T) {
	var b fileBuilder
	b.u32(headerMagic)
	b.u32(0) // resident-library terminator
	b.u32(1) // table size
	b.u32(5) // first hunk index
	b.u32(2) // last hunk index < first
	if _, err := Parse(bytes.NewReader(b.buf.Bytes())); err == nil {
		t.Error("Parse() with last < first should fail")
	}
}

func TestParseMemoryTypeBits(t *testing.T) {
	size, mem := sizeAndMemType(memChipBit | 3)
	if mem != MemChip {
		t.Errorf("MemType = %v, want MemChip", mem)
	}
	if size != 12 {
		t.Errorf("size = %d, want 12", size)
	}

	_, mem = sizeAndMemType(memFastBit | 1)
	if mem != MemFast {
		t.Errorf("MemType = %v, want MemFast", mem)
	}
}

func TestParseSymbolsSortedByOffset(t *testing.T) {
	var b fileBuilder
	b.u32(headerMagic)
	b.u32(0)
	b.u32(1)
	b.u32(0)
	b.u32(0)
	b.u32(0) // zero-size hunk (an empty BSS below): size word 0

	b.u32(idBSS)
	b.u32(0) // BSS size word: 0 longs

	b.u32(idSymbol)
	// "bb\0\0" (1 long) at offset 20
	b.u32(1).bytes_([]byte("bb\x00\x00")).u32(20)
	// "aa\0\0" (1 long) at offset 4
	b.u32(1).bytes_([]byte("aa\x00\x00")).u32(4)
	b.u32(0) // symbol table terminator

	b.u32(idEnd)

	segments, err := Parse(bytes.NewReader(b.buf.Bytes()))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	syms := segments[0].Symbols
	if len(syms) != 2 {
		t.Fatalf("len(Symbols) = %d, want 2", len(syms))
	}
	if syms[0].Name != "aa" || syms[0].Offset != 4 {
		t.Errorf("Symbols[0] = %+v, want aa@4", syms[0])
	}
	if syms[1].Name != "bb" || syms[1].Offset != 20 {
		t.Errorf("Symbols[1] = %+v, want bb@20", syms[1])
	}
}
