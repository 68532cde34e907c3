package adf

import "fmt"

// Variant selects the on-disk filesystem variant written by Format.
type Variant int

const (
	OFS Variant = iota
	FFS
)

func (v Variant) String() string {
	if v == FFS {
		return "FFS"
	}
	return "OFS"
}

// BootInfo is the decoded content of the boot block (sectors 0-1).
type BootInfo struct {
	Variant   Variant
	Intl      bool
	Dircache  bool
	Checksum  uint32
	RootBlock int32
}

// readBootInfo decodes the boot block.
func (img *Image) readBootInfo() (BootInfo, error) {
	b := img.ReadBoot()
	if b[0] != 'D' || b[1] != 'O' || b[2] != 'S' {
		return BootInfo{}, fmt.Errorf("%w: boot block signature", ErrBadMagic)
	}
	flag := b[3]
	return BootInfo{
		Variant:   variantFromFlag(flag),
		Intl:      flag&FlagIntl != 0,
		Dircache:  flag&FlagDircache != 0,
		Checksum:  getU32(b, 4),
		RootBlock: getI32(b, 8),
	}, nil
}

func variantFromFlag(flag byte) Variant {
	if flag&FlagFFS != 0 {
		return FFS
	}
	return OFS
}

func flagFromVariant(v Variant, intl, dircache bool) byte {
	var f byte
	if v == FFS {
		f |= FlagFFS
	}
	if intl {
		f |= FlagIntl
	}
	if dircache {
		f |= FlagDircache
	}
	return f
}

// writeBoot writes the "DOS"+flag signature and root-block pointer. The
// boot checksum is only meaningful for bootable disks and is left at zero;
// VerifyBootChecksum treats a zero checksum as not set.
func (img *Image) writeBoot(v Variant, intl, dircache bool) {
	b := img.ReadBoot()
	b[0], b[1], b[2] = 'D', 'O', 'S'
	b[3] = flagFromVariant(v, intl, dircache)
	putU32(b, 4, 0)
	putI32(b, 8, RootBlockSector)
}

// VerifyBootChecksum reports whether the boot block's stored checksum
// (spanning both 512-byte sectors as 256 big-endian words) is valid. A
// zero checksum is treated as "not set" and always verifies.
func (img *Image) VerifyBootChecksum() bool {
	b := img.ReadBoot()
	if getU32(b, 4) == 0 {
		return true
	}
	return verifyChecksum(b)
}
