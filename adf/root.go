package adf

import (
	"fmt"
	"time"
)

// DiskInfo summarizes root-block metadata for external reporting
// (`info` CLI command).
type DiskInfo struct {
	Variant      Variant
	Intl         bool
	Dircache     bool
	DiskName     string
	Created      time.Time
	LastModified time.Time
	BitmapValid  bool
}

// Info reads the boot and root blocks and returns a summary.
func (img *Image) Info() (DiskInfo, error) {
	boot, err := img.readBootInfo()
	if err != nil {
		return DiskInfo{}, err
	}
	root, err := img.ReadSector(RootBlockSector)
	if err != nil {
		return DiskInfo{}, err
	}
	if getU32(root, 0) != TypeHeader || getI32(root, SecTypeOffset) != STRoot {
		return DiskInfo{}, fmt.Errorf("%w: root block", ErrBadMagic)
	}
	if !verifyChecksum(root) {
		if rerr := img.reportChecksum("root block"); rerr != nil {
			return DiskInfo{}, rerr
		}
	}

	name := readPString(root, DiskNameLenOffset, DiskNameOffset, DiskNameMaxLen)
	created := readDate(root, RootCreationOffset)
	lastMod := readDate(root, LastModOffset)

	return DiskInfo{
		Variant:      boot.Variant,
		Intl:         boot.Intl,
		Dircache:     boot.Dircache,
		DiskName:     name,
		Created:      created.Time(),
		LastModified: lastMod.Time(),
		BitmapValid:  root[BitmapValidOffset] == 0xFF,
	}, nil
}

// Format overwrites the entire image with a fresh empty filesystem.
// intl/dircache select the corresponding boot-block flags; most callers
// want both false.
func (img *Image) Format(variant Variant, name string, intl, dircache bool) error {
	if len(name) > DiskNameMaxLen {
		name = name[:DiskNameMaxLen]
	}

	for i := range img.buf {
		img.buf[i] = 0
	}
	for i := 2; i < TotalSectors; i++ {
		img.bitmap[i] = true
	}

	img.writeBoot(variant, intl, dircache)

	root, _ := img.ReadSector(RootBlockSector)
	putU32(root, 0, TypeHeader)
	putI32(root, 12, HashTableSize)
	now := DateFromTime(time.Now())
	writeDate(root, RootCreationOffset, now)
	writeDate(root, LastModOffset, now)
	writeDate(root, AlteredOffset, now)
	writePString(root, DiskNameLenOffset, DiskNameOffset, DiskNameMaxLen, name)
	root[BitmapValidOffset] = 0xFF
	putI32(root, BitmapPagesOffset, BitmapBlockStart)
	putI32(root, SecTypeOffset, STRoot)

	img.bitmap[RootBlockSector] = false
	img.bitmap[BitmapBlockStart] = false
	img.bitmap[BitmapBlockStart+1] = false

	writeChecksum(root, RootChecksumOffset)
	img.syncBitmap()
	return nil
}

// touchRootModified updates the root block's last-modification timestamp,
// used after any directory mutation under the root.
func (img *Image) touchRootModified() error {
	root, err := img.ReadSector(RootBlockSector)
	if err != nil {
		return err
	}
	writeDate(root, LastModOffset, DateFromTime(time.Now()))
	writeChecksum(root, RootChecksumOffset)
	return nil
}
