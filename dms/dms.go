// Package dms decodes DMS (Disk Masher System) archives into raw Amiga
// disk image bytes. Only decoding is supported; the format's encoder side
// is out of scope.
package dms

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

const (
	headerSize      = 56
	trackHeaderSize = 20
	quickUnpackSize = 11360
)

var (
	ErrBadMagic      = errors.New("dms: bad magic")
	ErrUnsupported   = errors.New("dms: unsupported packing mode")
	ErrUnexpectedEOF = errors.New("dms: unexpected end of input")
	ErrBadLength     = errors.New("dms: decoded length mismatch")
)

// PackingMode is a DMS track's per-track compression codec.
type PackingMode byte

const (
	PackingNone PackingMode = iota
	PackingSimple
	PackingQuick
	PackingMedium
	PackingDeep
	PackingHeavy1
	PackingHeavy2
	PackingHeavy3
	PackingHeavy4
	PackingHeavy5
	PackingUnsupported
)

func packingModeFromByte(b byte) PackingMode {
	if b <= byte(PackingHeavy5) {
		return PackingMode(b)
	}
	return PackingUnsupported
}

func (m PackingMode) String() string {
	switch m {
	case PackingNone:
		return "None"
	case PackingSimple:
		return "Simple"
	case PackingQuick:
		return "Quick"
	case PackingMedium:
		return "Medium"
	case PackingDeep:
		return "Deep"
	case PackingHeavy1:
		return "Heavy1"
	case PackingHeavy2:
		return "Heavy2"
	case PackingHeavy3:
		return "Heavy3"
	case PackingHeavy4:
		return "Heavy4"
	case PackingHeavy5:
		return "Heavy5"
	default:
		return "Unsupported"
	}
}

// Header is the 56-byte DMS archive header.
type Header struct {
	HeaderType      string
	InfoBits        uint32
	Date            uint32
	LowTrack        uint16
	HighTrack       uint16
	PackedSize      uint32
	UnpackedSize    uint32
	OSVersion       uint16
	OSRevision      uint16
	MachineCPU      uint16
	CPUCopro        uint16
	MachineType     uint16
	CPUMHz          uint16
	TimeCreate      uint32
	VersionCreator  uint16
	VersionNeeded   uint16
	DisketteType    uint16
	CompressionMode uint16
	// InfoHeaderCRC is parsed but never verified (the CRC polynomial isn't
	// documented for this field) and is not carried into Info.
	InfoHeaderCRC uint16
}

// Info summarizes a Header for `dms info`.
type Info struct {
	HeaderType      string
	InfoBits        uint32
	Date            uint32
	LowTrack        uint16
	HighTrack       uint16
	PackedSize      uint32
	UnpackedSize    uint32
	CompressionMode PackingMode
}

// TrackHeader is the 20-byte record preceding each track's compressed data.
type TrackHeader struct {
	TrackNumber  uint16
	PackLength   uint16
	UnpackLength uint16
	CFlag        byte
	PackingMode  PackingMode
	USum         uint16
	DCRC         uint16
	HCRC         uint16
}

// Reader decodes a DMS archive track by track. The QUICK codec's sliding
// dictionary (text/loc) persists across tracks within one Reader, matching
// the archive-wide state the original packer assumes.
type Reader struct {
	r      io.Reader
	header Header
	loc    uint8
	text   [256]byte
}

// NewReader parses r's 56-byte archive header and returns a Reader
// positioned at the first track record.
func NewReader(r io.Reader) (*Reader, error) {
	buf := make([]byte, headerSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.Wrap(err, "dms: failed to read archive header")
	}
	if string(buf[0:4]) != "DMS!" {
		return nil, errors.Wrapf(ErrBadMagic, "dms: signature %q", buf[0:4])
	}

	h := Header{
		HeaderType:      string(buf[4:8]),
		InfoBits:        binary.BigEndian.Uint32(buf[8:12]),
		Date:            binary.BigEndian.Uint32(buf[12:16]),
		LowTrack:        binary.BigEndian.Uint16(buf[16:18]),
		HighTrack:       binary.BigEndian.Uint16(buf[18:20]),
		PackedSize:      binary.BigEndian.Uint32(buf[20:24]),
		UnpackedSize:    binary.BigEndian.Uint32(buf[24:28]),
		OSVersion:       binary.BigEndian.Uint16(buf[28:30]),
		OSRevision:      binary.BigEndian.Uint16(buf[30:32]),
		MachineCPU:      binary.BigEndian.Uint16(buf[32:34]),
		CPUCopro:        binary.BigEndian.Uint16(buf[34:36]),
		MachineType:     binary.BigEndian.Uint16(buf[36:38]),
		CPUMHz:          binary.BigEndian.Uint16(buf[40:42]),
		TimeCreate:      binary.BigEndian.Uint32(buf[42:46]),
		VersionCreator:  binary.BigEndian.Uint16(buf[46:48]),
		VersionNeeded:   binary.BigEndian.Uint16(buf[48:50]),
		DisketteType:    binary.BigEndian.Uint16(buf[50:52]),
		CompressionMode: binary.BigEndian.Uint16(buf[52:54]),
		InfoHeaderCRC:   binary.BigEndian.Uint16(buf[54:56]),
	}
	return &Reader{r: r, header: h}, nil
}

// Info returns a summary of the archive header.
func (r *Reader) Info() Info {
	return Info{
		HeaderType:      r.header.HeaderType,
		InfoBits:        r.header.InfoBits,
		Date:            r.header.Date,
		LowTrack:        r.header.LowTrack,
		HighTrack:       r.header.HighTrack,
		PackedSize:      r.header.PackedSize,
		UnpackedSize:    r.header.UnpackedSize,
		CompressionMode: packingModeFromByte(byte(r.header.CompressionMode)),
	}
}

// ReadTrack reads and decodes the next track record, returning its header
// and decompressed payload.
func (r *Reader) ReadTrack() (TrackHeader, []byte, error) {
	hbuf := make([]byte, trackHeaderSize)
	if _, err := io.ReadFull(r.r, hbuf); err != nil {
		return TrackHeader{}, nil, errors.Wrap(err, "dms: failed to read track header")
	}
	if string(hbuf[0:2]) != "TR" {
		return TrackHeader{}, nil, errors.Wrapf(ErrBadMagic, "dms: track signature %q", hbuf[0:2])
	}

	th := TrackHeader{
		TrackNumber:  binary.BigEndian.Uint16(hbuf[2:4]),
		PackLength:   binary.BigEndian.Uint16(hbuf[6:8]),
		UnpackLength: binary.BigEndian.Uint16(hbuf[10:12]),
		CFlag:        hbuf[12],
		PackingMode:  packingModeFromByte(hbuf[13]),
		USum:         binary.BigEndian.Uint16(hbuf[14:16]),
		DCRC:         binary.BigEndian.Uint16(hbuf[16:18]),
		HCRC:         binary.BigEndian.Uint16(hbuf[18:20]),
	}

	compressed := make([]byte, th.PackLength)
	if _, err := io.ReadFull(r.r, compressed); err != nil {
		return th, nil, errors.Wrapf(err, "dms: failed to read track %d payload", th.TrackNumber)
	}

	var payload []byte
	var err error
	switch th.PackingMode {
	case PackingNone:
		payload = compressed
	case PackingSimple:
		payload, err = unpackRLE(compressed)
	case PackingQuick:
		payload, err = r.unpackQuick(compressed)
	default:
		err = errors.Wrapf(ErrUnsupported, "dms: track %d packing mode %s", th.TrackNumber, th.PackingMode)
	}
	if err != nil {
		return th, nil, err
	}
	return th, payload, nil
}

// DecodeAll reads every track in [LowTrack, HighTrack] and concatenates
// their decoded payloads into a single disk image.
func (r *Reader) DecodeAll() ([]byte, error) {
	out := make([]byte, 0, r.header.UnpackedSize)
	count := int(r.header.HighTrack) - int(r.header.LowTrack) + 1
	for i := 0; i < count; i++ {
		_, payload, err := r.ReadTrack()
		if err != nil {
			return nil, err
		}
		out = append(out, payload...)
	}
	if uint32(len(out)) != r.header.UnpackedSize {
		return nil, errors.Wrapf(ErrBadLength, "dms: assembled %d bytes, header declares %d", len(out), r.header.UnpackedSize)
	}
	return out, nil
}

// ReadChunk returns the 256-byte chunk at the given flat sector index
// (16 chunks per track), matching the addressing some DMS archives use for
// sub-sector-granularity tools. Forward-only: each call consumes tracks
// from the underlying stream, so chunks must be requested in increasing
// order starting from 0.
func (r *Reader) ReadChunk(sector int) ([]byte, error) {
	track := sector / 16
	chunkInTrack := sector % 16
	for i := 0; i < track; i++ {
		if _, _, err := r.ReadTrack(); err != nil {
			return nil, err
		}
	}
	_, payload, err := r.ReadTrack()
	if err != nil {
		return nil, err
	}
	start := chunkInTrack * 256
	if start+256 > len(payload) {
		return nil, errors.Wrapf(ErrBadLength, "dms: track %d too short for chunk %d", track, chunkInTrack)
	}
	return payload[start : start+256], nil
}

// DecodeImage decodes an entire DMS archive from r into raw disk image
// bytes, suitable for adf.FromBytes.
func DecodeImage(r io.Reader) ([]byte, error) {
	dr, err := NewReader(r)
	if err != nil {
		return nil, err
	}
	return dr.DecodeAll()
}
