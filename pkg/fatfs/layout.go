package fatfs

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Allocation table sentinels.
const (
	// Free marks an unallocated block.
	Free uint16 = 0x0000

	// End marks the last block of a chain.
	End uint16 = 0xFFFF
)

// Superblock layout (bytes from the start of block 0, little endian).
const (
	sbMagic      = "VFAT"
	sbVersion    = 1
	sbSize       = 64
	tableOffset  = sbSize
	tableEntSize = 2

	offSBMagic     = 0  // [4]byte
	offSBVersion   = 4  // uint16
	offSBBlockSize = 6  // uint16
	offSBBlocks    = 8  // uint16
	offSBDataStart = 10 // uint16
	offSBRoot      = 16 // [EntrySize]byte
)

// maxBlockCount keeps every block index below [End].
const maxBlockCount = int(End)

// superblock is the decoded form of block 0's header.
type superblock struct {
	blockSize  int
	blockCount int
	dataStart  uint16
	root       Entry
}

// dataStartFor returns the first block after the superblock and table.
func dataStartFor(blockSize, blockCount int) int {
	reserved := sbSize + tableEntSize*blockCount

	return (reserved + blockSize - 1) / blockSize
}

// validateGeometry rejects devices the layout cannot describe.
func validateGeometry(blockSize, blockCount int) error {
	if blockSize < sbSize || blockSize > 0xFFFF {
		return fmt.Errorf("%w: block size %d not in [%d,%d]", ErrCorrupt, blockSize, sbSize, 0xFFFF)
	}

	if blockCount <= 0 || blockCount > maxBlockCount {
		return fmt.Errorf("%w: block count %d not in [1,%d]", ErrCorrupt, blockCount, maxBlockCount)
	}

	if dataStartFor(blockSize, blockCount) >= blockCount {
		return fmt.Errorf("%w: %d blocks of %d bytes leave no data blocks", ErrCorrupt, blockCount, blockSize)
	}

	return nil
}

// hasMagic reports whether block 0 carries a superblock at all.
func hasMagic(block0 []byte) bool {
	return len(block0) >= sbSize && bytes.Equal(block0[offSBMagic:offSBMagic+len(sbMagic)], []byte(sbMagic))
}

func encodeSuperblock(buf []byte, sb superblock) {
	clear(buf[:sbSize])
	copy(buf[offSBMagic:], sbMagic)
	binary.LittleEndian.PutUint16(buf[offSBVersion:], sbVersion)
	binary.LittleEndian.PutUint16(buf[offSBBlockSize:], uint16(sb.blockSize))
	binary.LittleEndian.PutUint16(buf[offSBBlocks:], uint16(sb.blockCount))
	binary.LittleEndian.PutUint16(buf[offSBDataStart:], sb.dataStart)
	encodeEntry(buf[offSBRoot:offSBRoot+EntrySize], sb.root)
}

// decodeSuperblock parses block 0 and checks it against the device geometry.
func decodeSuperblock(buf []byte, blockSize, blockCount int) (superblock, error) {
	if !hasMagic(buf) {
		return superblock{}, fmt.Errorf("%w: missing superblock magic", ErrCorrupt)
	}

	if v := binary.LittleEndian.Uint16(buf[offSBVersion:]); v != sbVersion {
		return superblock{}, fmt.Errorf("%w: superblock version %d, want %d", ErrCorrupt, v, sbVersion)
	}

	sb := superblock{
		blockSize:  int(binary.LittleEndian.Uint16(buf[offSBBlockSize:])),
		blockCount: int(binary.LittleEndian.Uint16(buf[offSBBlocks:])),
		dataStart:  binary.LittleEndian.Uint16(buf[offSBDataStart:]),
	}

	if sb.blockSize != blockSize || sb.blockCount != blockCount {
		return superblock{}, fmt.Errorf("%w: superblock geometry %dx%d, device %dx%d",
			ErrCorrupt, sb.blockCount, sb.blockSize, blockCount, blockSize)
	}

	if want := dataStartFor(blockSize, blockCount); int(sb.dataStart) != want {
		return superblock{}, fmt.Errorf("%w: data start %d, want %d", ErrCorrupt, sb.dataStart, want)
	}

	root, err := decodeEntry(buf[offSBRoot : offSBRoot+EntrySize])
	if err != nil {
		return superblock{}, fmt.Errorf("root record: %w", err)
	}

	if root.Kind != KindDir {
		return superblock{}, fmt.Errorf("%w: root record is not a directory", ErrCorrupt)
	}

	sb.root = root

	return sb, nil
}
