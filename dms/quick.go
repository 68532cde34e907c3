package dms

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// unpackQuick decodes the QUICK packing mode: an LZ77-like bit-coded stream
// over a 256-byte sliding dictionary. r.text/r.loc are archive-wide state,
// carried over between tracks.
//
// Deviation from original_source: the reference decoder refills its bit
// buffer by continuing to read from the archive stream past the track's
// own compressed bytes, which would consume the next track's header. This
// implementation refills only from the track's own compressed buffer, per
// the format's literal wording.
func (r *Reader) unpackQuick(input []byte) ([]byte, error) {
	if len(input) < 4 {
		return nil, errors.Wrap(ErrUnexpectedEOF, "dms: quick track too short for bit buffer")
	}

	bitBuffer := binary.BigEndian.Uint32(input[0:4])
	bitCount := uint8(32)
	pos := 4

	getBits := func(n uint8) uint32 {
		return (bitBuffer >> (32 - n)) & ((1 << n) - 1)
	}
	dropBits := func(n uint8) {
		bitBuffer <<= n
		bitCount -= n
		if bitCount <= 24 && pos < len(input) {
			bitBuffer |= uint32(input[pos]) << (24 - bitCount)
			bitCount += 8
			pos++
		}
	}

	out := make([]byte, 0, quickUnpackSize+8)
	for len(out) < quickUnpackSize {
		if getBits(1) != 0 {
			dropBits(1)
			b := byte(getBits(8))
			dropBits(8)
			r.text[r.loc] = b
			r.loc++
			out = append(out, b)
			continue
		}
		dropBits(1)
		length := int(getBits(2)) + 2
		dropBits(2)
		off := byte(getBits(8))
		dropBits(8)
		start := r.loc - off - 1
		for i := 0; i < length; i++ {
			b := r.text[start]
			r.text[r.loc] = b
			r.loc++
			start++
			out = append(out, b)
		}
	}

	r.loc += 5
	if len(out) > quickUnpackSize {
		out = out[:quickUnpackSize]
	}
	return out, nil
}
