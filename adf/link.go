package adf

import "bytes"

// LinkInfo is the parsed shape of a hard/soft link block (secondary type
// ST_LINK, -4). Grounded on original_source's adf_blk.rs::Linkblock field
// order; adftool only reads this shape for `dump` and never authors one
// (Non-goal).
type LinkInfo struct {
	Sector       int
	HeaderKey    int
	Name         string
	RealName     string
	RealEntry    int
	NextLink     int
	NextSameHash int
	Parent       int
}

// SecondaryType returns the secondary type (last 4 bytes, signed) of a
// raw 512-byte structural block, letting callers like `dump` branch on
// ST_ROOT/ST_DIR/ST_FILE/ST_LINK without reaching into adf's unexported
// byte-field helpers.
func SecondaryType(block []byte) int32 {
	return getI32(block, SecTypeOffset)
}

// ReadLink parses the link-block fields at sector. It does not check the
// block's secondary type; callers should confirm it's ST_LINK first.
func (img *Image) ReadLink(sector int) (LinkInfo, error) {
	block, err := img.ReadSector(sector)
	if err != nil {
		return LinkInfo{}, err
	}
	return LinkInfo{
		Sector:       sector,
		HeaderKey:    int(getI32(block, LKHeaderKey)),
		Name:         readPString(block, LKNameLen, LKName, LKNameMaxLen),
		RealName:     nullTerminated(block[LKRealName : LKRealName+LKRealNameLen]),
		RealEntry:    int(getI32(block, LKRealEntry)),
		NextLink:     int(getI32(block, LKNextLink)),
		NextSameHash: int(getI32(block, LKNextSameHash)),
		Parent:       int(getI32(block, LKParent)),
	}, nil
}

// nullTerminated trims a fixed-width byte field at its first NUL, matching
// the Linkblock.realname field's C-string convention (no length prefix).
func nullTerminated(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
