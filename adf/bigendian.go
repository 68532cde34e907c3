package adf

import "encoding/binary"

// Every multi-byte field on an Amiga disk is big-endian. These small
// typed-read/write helpers keep that rule in one place instead of
// re-implementing byte math at each field.

func getU32(b []byte, off int) uint32 {
	return binary.BigEndian.Uint32(b[off : off+4])
}

func putU32(b []byte, off int, v uint32) {
	binary.BigEndian.PutUint32(b[off:off+4], v)
}

func getI32(b []byte, off int) int32 {
	return int32(getU32(b, off))
}

func putI32(b []byte, off int, v int32) {
	putU32(b, off, uint32(v))
}

func getU16(b []byte, off int) uint16 {
	return binary.BigEndian.Uint16(b[off : off+2])
}

func putU16(b []byte, off int, v uint16) {
	binary.BigEndian.PutUint16(b[off:off+2], v)
}
