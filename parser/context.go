package parser

import (
	"fmt"
	"io"
	"math"
	"sync"
)

// NTFSContext carries the geometry of one volume. All offsets handed
// to DiskReader are relative to the start of the volume.
type NTFSContext struct {
	// The reader over the volume.
	DiskReader io.ReaderAt

	Boot *NTFS_BOOT_SECTOR

	ClusterSize int64
	RecordSize  int64

	// Byte offset of the volume within the image it was opened from.
	VolumeOffset int64

	// Byte offset of the $MFT within the volume.
	MFTOffset int64

	mu     sync.Mutex
	config Config
}

// GetNTFSContext opens the NTFS volume starting at offset in image.
// Geometry set in config overrides the boot sector.
func GetNTFSContext(image io.ReaderAt, offset int64, config Config) (*NTFSContext, error) {
	config = config.normalize()

	disk_reader := image
	if offset != 0 {
		disk_reader = &OffsetReader{Offset: offset, Reader: image}
	}

	boot, err := NewBootSector(disk_reader, 0)
	if err != nil {
		return nil, err
	}

	if config.ClusterSize < 0 || config.RecordSize < 0 {
		return nil, formatErrorf("invalid geometry override: cluster size %d, record size %d",
			config.ClusterSize, config.RecordSize)
	}

	// Explicit geometry lets us work with a damaged boot sector.
	if config.ClusterSize == 0 || config.RecordSize == 0 {
		err = boot.IsValid()
		if err != nil {
			return nil, err
		}
	}

	ntfs := &NTFSContext{
		DiskReader:   disk_reader,
		Boot:         boot,
		VolumeOffset: offset,
		ClusterSize:  boot.ClusterSize(),
		RecordSize:   boot.RecordSize(),
		config:       config,
	}

	if config.ClusterSize > 0 {
		ntfs.ClusterSize = config.ClusterSize
	}

	if config.RecordSize > 0 {
		ntfs.RecordSize = config.RecordSize
	}

	if ntfs.ClusterSize <= 0 || ntfs.RecordSize <= 0 {
		return nil, formatErrorf("invalid geometry: cluster size %d, record size %d",
			ntfs.ClusterSize, ntfs.RecordSize)
	}

	if boot.MFTCluster() > uint64(math.MaxInt64/ntfs.ClusterSize) {
		return nil, formatErrorf("$MFT cluster %d out of range", boot.MFTCluster())
	}
	ntfs.MFTOffset = int64(boot.MFTCluster()) * ntfs.ClusterSize

	DebugPrint("NTFS volume at %#x: cluster size %d, record size %d, $MFT at %#x\n",
		offset, ntfs.ClusterSize, ntfs.RecordSize, ntfs.MFTOffset)

	return ntfs, nil
}

func (self *NTFSContext) Config() Config {
	self.mu.Lock()
	defer self.mu.Unlock()

	return self.config
}

func (self *NTFSContext) ChunkSize() int64 {
	self.mu.Lock()
	defer self.mu.Unlock()

	return self.config.ChunkSize
}

// RecordOffset is the volume offset of MFT entry number entry. This
// assumes the $MFT is contiguous, which holds for the first extent.
func (self *NTFSContext) RecordOffset(entry int64) (int64, error) {
	if entry < 0 || entry > (math.MaxInt64-self.MFTOffset)/self.RecordSize {
		return 0, formatErrorf("invalid MFT entry number %d", entry)
	}
	return self.MFTOffset + entry*self.RecordSize, nil
}

// GetRecord loads MFT entry number entry.
func (self *NTFSContext) GetRecord(entry int64) (*FileRecord, error) {
	offset, err := self.RecordOffset(entry)
	if err != nil {
		return nil, err
	}

	record, err := LoadFileRecord(self.DiskReader, offset, self.RecordSize)
	if err != nil {
		return nil, fmt.Errorf("MFT entry %d: %w", entry, err)
	}
	return record, nil
}

func (self *NTFSContext) Close() {
	Printf("%v\n", STATS.DebugString())
	self.Purge()
}

func (self *NTFSContext) Purge() {
	// Try to flush our reader if possible
	flusher, ok := self.DiskReader.(Flusher)
	if ok {
		flusher.Flush()
	}
}
