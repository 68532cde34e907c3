package adf

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// FileInfo describes one directory entry, as yielded by List.
type FileInfo struct {
	Name       string
	Sector     int
	Size       int64
	IsDir      bool
	Protection uint32
	Created    time.Time
}

func (img *Image) intlMode() (bool, error) {
	boot, err := img.readBootInfo()
	if err != nil {
		return false, err
	}
	return boot.Intl, nil
}

func isDirSecType(st int32) bool {
	return st == STDir || st == STRoot
}

// List traverses dirSector's 72 hash-table buckets in reverse index order,
// walking each bucket's collision chain, and returns one FileInfo per
// header block found, sorted by name for deterministic output.
func (img *Image) List(dirSector int) ([]FileInfo, error) {
	block, err := img.ReadSector(dirSector)
	if err != nil {
		return nil, err
	}
	if getU32(block, 0) != TypeHeader {
		return nil, fmt.Errorf("%w: sector %d is not a header block", ErrNotADirectory, dirSector)
	}

	var entries []FileInfo
	for i := HashTableSize - 1; i >= 0; i-- {
		sector := int(getI32(block, HashTableOffset+i*4))
		for sector != 0 {
			hb, err := img.ReadSector(sector)
			if err != nil {
				return nil, err
			}
			entries = append(entries, headerToFileInfo(sector, hb))
			sector = int(getI32(hb, FHNextSameHash))
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func headerToFileInfo(sector int, hb []byte) FileInfo {
	st := getI32(hb, FHSecType)
	isDir := isDirSecType(st)
	var name string
	var size int64
	var prot uint32
	var created Date
	if isDir {
		name = readPString(hb, DiskNameLenOffset, DiskNameOffset, DiskNameMaxLen)
		created = readDate(hb, RootCreationOffset)
	} else {
		name = readPString(hb, FHNameLen, FHName, FHNameMaxLen)
		size = int64(getU32(hb, FHByteSize))
		prot = getU32(hb, FHProtection)
		created = readDate(hb, FHDate)
	}
	return FileInfo{
		Name:       name,
		Sector:     sector,
		Size:       size,
		IsDir:      isDir,
		Protection: prot,
		Created:    created.Time(),
	}
}

// Lookup resolves name within dirSector's hash bucket and collision chain,
// comparing case-insensitively when the filesystem is in international
// mode.
func (img *Image) Lookup(dirSector int, name string) (int, error) {
	intl, err := img.intlMode()
	if err != nil {
		return 0, err
	}
	block, err := img.ReadSector(dirSector)
	if err != nil {
		return 0, err
	}
	bucket := HashName(name, intl)
	sector := int(getI32(block, HashTableOffset+bucket*4))
	for sector != 0 {
		hb, err := img.ReadSector(sector)
		if err != nil {
			return 0, err
		}
		entryName := headerName(hb)
		if namesEqual(entryName, name, intl) {
			return sector, nil
		}
		sector = int(getI32(hb, FHNextSameHash))
	}
	return 0, fmt.Errorf("%w: %q", ErrNotFound, name)
}

func headerName(hb []byte) string {
	st := getI32(hb, FHSecType)
	if isDirSecType(st) {
		return readPString(hb, DiskNameLenOffset, DiskNameOffset, DiskNameMaxLen)
	}
	return readPString(hb, FHNameLen, FHName, FHNameMaxLen)
}

// insertHash links a newly-written header block into its parent
// directory's hash bucket, appending to the tail of any existing
// collision chain.
func (img *Image) insertHash(parentSector int, name string, entrySector int) error {
	intl, err := img.intlMode()
	if err != nil {
		return err
	}
	parent, err := img.ReadSector(parentSector)
	if err != nil {
		return err
	}
	bucket := HashName(name, intl)
	head := int(getI32(parent, HashTableOffset+bucket*4))
	if head == 0 {
		putI32(parent, HashTableOffset+bucket*4, int32(entrySector))
		writeChecksum(parent, RootChecksumOffset)
		return nil
	}

	sector := head
	for {
		hb, err := img.ReadSector(sector)
		if err != nil {
			return err
		}
		next := int(getI32(hb, FHNextSameHash))
		if next == 0 {
			putI32(hb, FHNextSameHash, int32(entrySector))
			writeChecksum(hb, fhChecksumOffset(hb))
			return nil
		}
		sector = next
	}
}

// unlinkHash removes entrySector from its parent directory's hash chain,
// patching the predecessor's nextsamehash (or the bucket head) in its
// place.
func (img *Image) unlinkHash(parentSector int, name string, entrySector int) error {
	intl, err := img.intlMode()
	if err != nil {
		return err
	}
	parent, err := img.ReadSector(parentSector)
	if err != nil {
		return err
	}
	bucket := HashName(name, intl)
	head := int(getI32(parent, HashTableOffset+bucket*4))

	if head == entrySector {
		entry, err := img.ReadSector(entrySector)
		if err != nil {
			return err
		}
		next := getI32(entry, FHNextSameHash)
		putI32(parent, HashTableOffset+bucket*4, next)
		writeChecksum(parent, RootChecksumOffset)
		return nil
	}

	sector := head
	for sector != 0 {
		hb, err := img.ReadSector(sector)
		if err != nil {
			return err
		}
		next := int(getI32(hb, FHNextSameHash))
		if next == entrySector {
			entry, err := img.ReadSector(entrySector)
			if err != nil {
				return err
			}
			putI32(hb, FHNextSameHash, getI32(entry, FHNextSameHash))
			writeChecksum(hb, fhChecksumOffset(hb))
			return nil
		}
		sector = next
	}
	return fmt.Errorf("%w: entry not linked in parent", ErrCorruptChain)
}

// fhChecksumOffset returns the checksum field offset for a header block:
// root/directory blocks checksum at RootChecksumOffset, file headers at
// FHChecksum.
func fhChecksumOffset(hb []byte) int {
	st := getI32(hb, FHSecType)
	if st == STDir || st == STRoot {
		return RootChecksumOffset
	}
	return FHChecksum
}

// Mkdir creates a new directory block named name under parentSector.
func (img *Image) Mkdir(parentSector int, name string) (int, error) {
	if len(name) > DiskNameMaxLen {
		return 0, fmt.Errorf("%w: name too long", ErrBadLength)
	}
	if _, err := img.Lookup(parentSector, name); err == nil {
		return 0, fmt.Errorf("%w: %q", ErrNameExists, name)
	}

	sector, err := img.Allocate()
	if err != nil {
		return 0, err
	}

	block, _ := img.ReadSector(sector)
	putU32(block, 0, TypeHeader)
	putI32(block, 4, int32(sector))
	now := DateFromTime(time.Now())
	writeDate(block, RootCreationOffset, now)
	writePString(block, DiskNameLenOffset, DiskNameOffset, DiskNameMaxLen, name)
	putI32(block, FHParent, int32(parentSector))
	putI32(block, SecTypeOffset, STDir)
	writeChecksum(block, RootChecksumOffset)

	if err := img.insertHash(parentSector, name, sector); err != nil {
		_ = img.Free(sector)
		return 0, err
	}
	if err := img.touchModified(parentSector); err != nil {
		return 0, err
	}
	return sector, nil
}

// Rmdir removes an empty directory. Returns ErrNotEmpty if any of its 72
// hash buckets is non-zero.
func (img *Image) Rmdir(dirSector int) error {
	block, err := img.ReadSector(dirSector)
	if err != nil {
		return err
	}
	if getI32(block, FHSecType) != STDir {
		return fmt.Errorf("%w: sector %d is not a directory", ErrNotADirectory, dirSector)
	}
	for i := 0; i < HashTableSize; i++ {
		if getI32(block, HashTableOffset+i*4) != 0 {
			return ErrNotEmpty
		}
	}

	parentSector := int(getI32(block, FHParent))
	name := readPString(block, DiskNameLenOffset, DiskNameOffset, DiskNameMaxLen)
	if err := img.unlinkHash(parentSector, name, dirSector); err != nil {
		return err
	}
	if err := img.Free(dirSector); err != nil {
		return err
	}
	return img.touchModified(parentSector)
}

// Rename changes an entry's name in place, or moves it to a different hash
// bucket if the new name hashes differently.
func (img *Image) Rename(entrySector int, newName string) error {
	if len(newName) > DiskNameMaxLen {
		return fmt.Errorf("%w: name too long", ErrBadLength)
	}
	entry, err := img.ReadSector(entrySector)
	if err != nil {
		return err
	}
	parentSector := int(getI32(entry, FHParent))
	oldName := headerName(entry)

	if _, err := img.Lookup(parentSector, newName); err == nil {
		return fmt.Errorf("%w: %q", ErrNameExists, newName)
	}

	intl, err := img.intlMode()
	if err != nil {
		return err
	}
	sameBucket := HashName(oldName, intl) == HashName(newName, intl)

	if !sameBucket {
		if err := img.unlinkHash(parentSector, oldName, entrySector); err != nil {
			return err
		}
	}

	if isDirSecType(getI32(entry, FHSecType)) {
		writePString(entry, DiskNameLenOffset, DiskNameOffset, DiskNameMaxLen, newName)
	} else {
		writePString(entry, FHNameLen, FHName, FHNameMaxLen, newName)
	}
	if !sameBucket {
		putI32(entry, FHNextSameHash, 0)
	}
	writeChecksum(entry, fhChecksumOffset(entry))

	if !sameBucket {
		if err := img.insertHash(parentSector, newName, entrySector); err != nil {
			return err
		}
	}
	return img.touchModified(parentSector)
}

// touchModified updates a directory block's last-modification timestamp.
// For the root block this is RootCreationOffset's sibling LastModOffset;
// subdirectories reuse the same field layout.
func (img *Image) touchModified(dirSector int) error {
	if dirSector == RootBlockSector {
		return img.touchRootModified()
	}
	block, err := img.ReadSector(dirSector)
	if err != nil {
		return err
	}
	writeDate(block, LastModOffset, DateFromTime(time.Now()))
	writeChecksum(block, RootChecksumOffset)
	return nil
}

// Resolve walks a "/"-separated path from the root, failing with
// ErrNotADirectory if a non-terminal component isn't a directory. An empty
// path resolves to root.
func (img *Image) Resolve(path string) (int, error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return RootBlockSector, nil
	}
	sector := RootBlockSector
	parts := strings.Split(path, "/")
	for i, part := range parts {
		next, err := img.Lookup(sector, part)
		if err != nil {
			return 0, err
		}
		if i < len(parts)-1 {
			hb, err := img.ReadSector(next)
			if err != nil {
				return 0, err
			}
			if !isDirSecType(getI32(hb, FHSecType)) {
				return 0, fmt.Errorf("%w: %q", ErrNotADirectory, part)
			}
		}
		sector = next
	}
	return sector, nil
}
