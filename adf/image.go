package adf

import (
	"fmt"
	"os"

	"adftool/internal/logx"
)

// Image is an in-memory ADF: a fixed 901,120-byte sector array plus a
// bitmap mirror tracking free/used sectors. The byte buffer is owned by
// Image; the codec in this package borrows it read-only or mutably per
// operation.
type Image struct {
	buf    []byte
	bitmap [TotalSectors]bool // true = free
	strict bool
	log    logx.Logger
}

// Option configures an Image at construction time.
type Option func(*Image)

// WithStrictChecksums makes checksum mismatches on read a hard error
// (BadChecksum) instead of a logged warning.
func WithStrictChecksums(strict bool) Option {
	return func(img *Image) { img.strict = strict }
}

// WithLogger overrides the default logger used to report recoverable
// conditions such as checksum mismatches.
func WithLogger(l logx.Logger) Option {
	return func(img *Image) { img.log = l }
}

func newImage(buf []byte, opts []Option) *Image {
	img := &Image{buf: buf, log: logx.Default()}
	for i := 2; i < TotalSectors; i++ {
		img.bitmap[i] = true
	}
	for _, opt := range opts {
		opt(img)
	}
	return img
}

// New creates a zeroed, unformatted image of exactly ImageSize bytes.
func New(opts ...Option) *Image {
	return newImage(make([]byte, ImageSize), opts)
}

// Load reads an ADF image from filename. The file must be exactly
// ImageSize bytes, else ErrBadSize.
func Load(filename string, opts ...Option) (*Image, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("adf: failed to read %s: %w", filename, err)
	}
	return FromBytes(data, opts...)
}

// FromBytes wraps an existing byte slice as an Image, taking ownership of
// it. len(data) must equal ImageSize.
func FromBytes(data []byte, opts ...Option) (*Image, error) {
	if len(data) != ImageSize {
		return nil, fmt.Errorf("%w: %d bytes (expected %d)", ErrBadSize, len(data), ImageSize)
	}
	img := newImage(data, opts)
	if err := img.loadBitmap(); err != nil {
		return nil, err
	}
	return img, nil
}

// Save flushes the bitmap mirror into the on-disk bitmap block(s) and
// writes the entire buffer to filename.
func (img *Image) Save(filename string) error {
	img.syncBitmap()
	if err := os.WriteFile(filename, img.buf, 0644); err != nil {
		return fmt.Errorf("adf: failed to write %s: %w", filename, err)
	}
	return nil
}

// Bytes returns the image's current backing buffer. The bitmap is flushed
// into it first.
func (img *Image) Bytes() []byte {
	img.syncBitmap()
	return img.buf
}

// Len returns the number of sectors in the image (always TotalSectors).
func (img *Image) Len() int { return TotalSectors }

// ReadSector returns a 512-byte view onto sector i. Mutating the returned
// slice mutates the image.
func (img *Image) ReadSector(i int) ([]byte, error) {
	if i < 0 || i >= TotalSectors {
		return nil, fmt.Errorf("%w: sector %d", ErrOutOfRange, i)
	}
	return img.buf[i*SectorSize : (i+1)*SectorSize], nil
}

// WriteSector copies data (must be exactly SectorSize bytes) into sector i.
func (img *Image) WriteSector(i int, data []byte) error {
	if i < 0 || i >= TotalSectors {
		return fmt.Errorf("%w: sector %d", ErrOutOfRange, i)
	}
	if len(data) != SectorSize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrBadLength, len(data), SectorSize)
	}
	copy(img.buf[i*SectorSize:(i+1)*SectorSize], data)
	return nil
}

// ReadBoot returns the 1024-byte boot block (sectors 0-1).
func (img *Image) ReadBoot() []byte {
	return img.buf[:2*SectorSize]
}
