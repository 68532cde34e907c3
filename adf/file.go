package adf

import (
	"fmt"
	"time"
)

// ReadFile returns the concatenated payload bytes of the file whose header
// lives at headerSector, dispatching to the OFS or FFS data-block layout.
func (img *Image) ReadFile(headerSector int) ([]byte, error) {
	header, err := img.ReadSector(headerSector)
	if err != nil {
		return nil, err
	}
	if getI32(header, FHSecType) != STFile {
		return nil, fmt.Errorf("%w: sector %d is not a file", ErrNotFound, headerSector)
	}
	size := int64(getU32(header, FHByteSize))
	if size == 0 {
		return []byte{}, nil
	}

	boot, err := img.readBootInfo()
	if err != nil {
		return nil, err
	}
	if boot.Variant == FFS {
		return img.readFileFFS(header, size)
	}
	return img.readFileOFS(header, headerSector, size)
}

func (img *Image) readFileOFS(header []byte, headerSector int, size int64) ([]byte, error) {
	out := make([]byte, 0, size)
	next := int(getI32(header, FHFirstData))
	expectedSeq := int32(1)

	for next != 0 {
		block, err := img.ReadSector(next)
		if err != nil {
			return nil, err
		}
		if getU32(block, 0) != TypeData {
			return nil, fmt.Errorf("%w: data block %d has wrong type", ErrCorruptChain, next)
		}
		if int(getI32(block, ODHeaderKey)) != headerSector {
			return nil, fmt.Errorf("%w: data block %d has wrong header key", ErrCorruptChain, next)
		}
		if getI32(block, ODSeqNum) != expectedSeq {
			return nil, fmt.Errorf("%w: data block %d has wrong sequence number", ErrCorruptChain, next)
		}
		dataSize := int(getI32(block, ODDataSize))
		if dataSize < 0 || dataSize > ODMaxPayload {
			return nil, fmt.Errorf("%w: data block %d has invalid size %d", ErrCorruptChain, next, dataSize)
		}
		if !verifyChecksum(block) {
			if err := img.reportChecksum(fmt.Sprintf("OFS data block %d", next)); err != nil {
				return nil, err
			}
		}
		out = append(out, block[ODPayload:ODPayload+dataSize]...)
		next = int(getI32(block, ODNextData))
		expectedSeq++
	}

	if int64(len(out)) != size {
		return nil, fmt.Errorf("%w: accumulated %d bytes, expected %d", ErrCorruptChain, len(out), size)
	}
	return out, nil
}

func (img *Image) readFileFFS(header []byte, size int64) ([]byte, error) {
	out := make([]byte, 0, size)
	cur := header

	for {
		pointers := dataBlockPointers(cur)
		for _, sector := range pointers {
			if sector == 0 {
				break
			}
			block, err := img.ReadSector(sector)
			if err != nil {
				return nil, err
			}
			remaining := size - int64(len(out))
			n := int64(SectorSize)
			if remaining < n {
				n = remaining
			}
			out = append(out, block[:n]...)
			if int64(len(out)) >= size {
				return out, nil
			}
		}
		ext := int(getI32(cur, FHExtension))
		if ext == 0 {
			break
		}
		extBlock, err := img.ReadSector(ext)
		if err != nil {
			return nil, err
		}
		cur = extBlock
	}

	if int64(len(out)) != size {
		return nil, fmt.Errorf("%w: accumulated %d bytes, expected %d", ErrCorruptChain, len(out), size)
	}
	return out, nil
}

// dataBlockPointers returns a header's data-block pointer table in forward
// (first-block-first) order. On disk the table is written in reverse,
// slot FHMaxDataBlocks-1 holding the first block.
func dataBlockPointers(header []byte) []int {
	out := make([]int, 0, FHMaxDataBlocks)
	for i := FHMaxDataBlocks - 1; i >= 0; i-- {
		sector := int(getI32(header, FHDataBlocks+i*4))
		if sector == 0 {
			continue
		}
		out = append(out, sector)
	}
	return out
}

func setDataBlockPointers(header []byte, sectors []int) {
	if len(sectors) > FHMaxDataBlocks {
		sectors = sectors[:FHMaxDataBlocks]
	}
	slot := FHMaxDataBlocks - 1
	for _, s := range sectors {
		putI32(header, FHDataBlocks+slot*4, int32(s))
		slot--
	}
}

// WriteFile allocates data blocks and a file header for data, links the
// header into parentSector's hash table, and returns the new header's
// sector. All allocations are released on failure.
func (img *Image) WriteFile(parentSector int, name string, data []byte) (int, error) {
	if len(name) > FHNameMaxLen {
		return 0, fmt.Errorf("%w: name too long", ErrBadLength)
	}
	if _, err := img.Lookup(parentSector, name); err == nil {
		return 0, fmt.Errorf("%w: %q", ErrNameExists, name)
	}

	boot, err := img.readBootInfo()
	if err != nil {
		return 0, err
	}

	var dataSectors []int
	var headerSector int
	if boot.Variant == FFS {
		dataSectors, headerSector, err = img.writeDataFFS(data)
	} else {
		dataSectors, headerSector, err = img.writeDataOFS(data)
	}
	if err != nil {
		return 0, err
	}

	header, _ := img.ReadSector(headerSector)
	putU32(header, 0, TypeHeader)
	putI32(header, 4, int32(headerSector))
	putI32(header, FHHighSeq, int32(len(dataSectors)))
	if len(dataSectors) > 0 {
		putI32(header, FHFirstData, int32(dataSectors[0]))
	}
	setDataBlockPointers(header, dataSectors)
	putU32(header, FHProtection, 0)
	putU32(header, FHByteSize, uint32(len(data)))
	now := DateFromTime(time.Now())
	writeDate(header, FHDate, now)
	writePString(header, FHNameLen, FHName, FHNameMaxLen, name)
	putI32(header, FHParent, int32(parentSector))
	putI32(header, SecTypeOffset, STFile)
	writeChecksum(header, FHChecksum)

	if err := img.insertHash(parentSector, name, headerSector); err != nil {
		_ = img.Free(headerSector)
		for _, s := range dataSectors {
			_ = img.Free(s)
		}
		return 0, err
	}
	if err := img.touchModified(parentSector); err != nil {
		return 0, err
	}
	return headerSector, nil
}

func (img *Image) writeDataOFS(data []byte) (dataSectors []int, headerSector int, err error) {
	n := (len(data) + ODMaxPayload - 1) / ODMaxPayload
	sectors, err := img.allocateN(n + 1)
	if err != nil {
		return nil, 0, err
	}
	dataSectors, headerSector = sectors[:n], sectors[n]

	for i, sector := range dataSectors {
		block, _ := img.ReadSector(sector)
		for j := range block {
			block[j] = 0
		}
		start := i * ODMaxPayload
		end := start + ODMaxPayload
		if end > len(data) {
			end = len(data)
		}
		chunk := data[start:end]

		putU32(block, 0, TypeData)
		putI32(block, ODHeaderKey, int32(headerSector))
		putI32(block, ODSeqNum, int32(i+1))
		putI32(block, ODDataSize, int32(len(chunk)))
		if i+1 < len(dataSectors) {
			putI32(block, ODNextData, int32(dataSectors[i+1]))
		}
		copy(block[ODPayload:], chunk)
		writeChecksum(block, ODChecksum)
	}
	return dataSectors, headerSector, nil
}

func (img *Image) writeDataFFS(data []byte) (dataSectors []int, headerSector int, err error) {
	n := (len(data) + SectorSize - 1) / SectorSize
	sectors, err := img.allocateN(n + 1)
	if err != nil {
		return nil, 0, err
	}
	dataSectors, headerSector = sectors[:n], sectors[n]

	for i, sector := range dataSectors {
		block, _ := img.ReadSector(sector)
		for j := range block {
			block[j] = 0
		}
		start := i * SectorSize
		end := start + SectorSize
		if end > len(data) {
			end = len(data)
		}
		copy(block, data[start:end])
	}
	return dataSectors, headerSector, nil
}

// DeleteFile frees a file's data and header blocks and unlinks it from its
// parent directory.
func (img *Image) DeleteFile(headerSector int) error {
	header, err := img.ReadSector(headerSector)
	if err != nil {
		return err
	}
	if getI32(header, FHSecType) != STFile {
		return fmt.Errorf("%w: sector %d is not a file", ErrNotFound, headerSector)
	}
	parentSector := int(getI32(header, FHParent))
	name := readPString(header, FHNameLen, FHName, FHNameMaxLen)

	boot, err := img.readBootInfo()
	if err != nil {
		return err
	}
	if boot.Variant == FFS {
		for _, s := range dataBlockPointers(header) {
			_ = img.Free(s)
		}
	} else {
		next := int(getI32(header, FHFirstData))
		for next != 0 {
			block, err := img.ReadSector(next)
			if err != nil {
				return err
			}
			following := int(getI32(block, ODNextData))
			_ = img.Free(next)
			next = following
		}
	}

	if err := img.unlinkHash(parentSector, name, headerSector); err != nil {
		return err
	}
	if err := img.Free(headerSector); err != nil {
		return err
	}
	return img.touchModified(parentSector)
}
