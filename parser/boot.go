package parser

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	NTFS_BOOT_SECTOR_SIZE = 512
	NTFS_OEM_NAME         = "NTFS    "
)

// NTFS_BOOT_SECTOR holds the first sector of an NTFS volume.
type NTFS_BOOT_SECTOR struct {
	b [NTFS_BOOT_SECTOR_SIZE]byte

	Offset int64
}

func NewBootSector(reader io.ReaderAt, offset int64) (*NTFS_BOOT_SECTOR, error) {
	self := &NTFS_BOOT_SECTOR{Offset: offset}

	n, err := reader.ReadAt(self.b[:], offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, ioErrorf(err, "reading boot sector at %#x", offset)
	}

	if n < len(self.b) {
		return nil, fmt.Errorf("%w: boot sector at %#x: read %d bytes",
			ShortReadError, offset, n)
	}

	return self, nil
}

func (self *NTFS_BOOT_SECTOR) OEMName() string {
	return string(self.b[3:11])
}

func (self *NTFS_BOOT_SECTOR) SectorSize() uint16 {
	return binary.LittleEndian.Uint16(self.b[11:13])
}

func (self *NTFS_BOOT_SECTOR) SectorsPerCluster() uint8 {
	return self.b[13]
}

func (self *NTFS_BOOT_SECTOR) VolumeSize() uint64 {
	return binary.LittleEndian.Uint64(self.b[40:48])
}

func (self *NTFS_BOOT_SECTOR) MFTCluster() uint64 {
	return binary.LittleEndian.Uint64(self.b[48:56])
}

func (self *NTFS_BOOT_SECTOR) MirrorMFTCluster() uint64 {
	return binary.LittleEndian.Uint64(self.b[56:64])
}

// Positive values are clusters per record, negative values are
// log2 of the record size in bytes.
func (self *NTFS_BOOT_SECTOR) ClustersPerRecord() int8 {
	return int8(self.b[64])
}

func (self *NTFS_BOOT_SECTOR) Serial() uint64 {
	return binary.LittleEndian.Uint64(self.b[72:80])
}

func (self *NTFS_BOOT_SECTOR) Magic() uint16 {
	return binary.LittleEndian.Uint16(self.b[510:512])
}

func (self *NTFS_BOOT_SECTOR) ClusterSize() int64 {
	return int64(self.SectorsPerCluster()) * int64(self.SectorSize())
}

func (self *NTFS_BOOT_SECTOR) BlockCount() int64 {
	cluster_size := self.ClusterSize()
	if cluster_size == 0 {
		return 0
	}
	return int64(self.VolumeSize()) * int64(self.SectorSize()) / cluster_size
}

func (self *NTFS_BOOT_SECTOR) RecordSize() int64 {
	record_size := int64(self.ClustersPerRecord())
	if record_size > 0 {
		return record_size * self.ClusterSize()
	}

	// Keep the shift sane, IsValid() rejects the result.
	if record_size < -31 {
		return 0
	}
	return 1 << uint32(-record_size)
}

// MFTOffset is the byte offset of the $MFT relative to the volume.
func (self *NTFS_BOOT_SECTOR) MFTOffset() int64 {
	return int64(self.MFTCluster()) * self.ClusterSize()
}

func (self *NTFS_BOOT_SECTOR) IsValid() error {
	if self.Magic() != 0xaa55 {
		return formatErrorf("invalid boot sector magic %#x", self.Magic())
	}

	if self.OEMName() != NTFS_OEM_NAME {
		return formatErrorf("not an NTFS volume (OEM name %q)", self.OEMName())
	}

	sector_size := self.SectorSize()
	if sector_size == 0 || (sector_size%512 != 0) {
		return formatErrorf("invalid sector size %d", sector_size)
	}

	switch self.ClusterSize() {
	case 0x200, 0x400, 0x800, 0x1000, 0x2000, 0x4000, 0x8000,
		0x10000, 0x20000, 0x40000, 0x80000, 0x100000, 0x200000:
	default:
		return formatErrorf("invalid cluster size %#x", self.ClusterSize())
	}

	record_size := self.RecordSize()
	if record_size < MIN_RECORD_SIZE || record_size > MAX_RECORD_SIZE {
		return formatErrorf("invalid record size %#x", record_size)
	}

	if self.BlockCount() == 0 {
		return formatErrorf("volume size is 0")
	}

	if self.MFTCluster() == 0 || int64(self.MFTCluster()) >= self.BlockCount() {
		return formatErrorf("$MFT cluster %d outside volume", self.MFTCluster())
	}

	return nil
}

func (self *NTFS_BOOT_SECTOR) DebugString() string {
	result := fmt.Sprintf("struct NTFS_BOOT_SECTOR @ %#x:\n", self.Offset)
	result += fmt.Sprintf("  Oemname: %q\n", self.OEMName())
	result += fmt.Sprintf("  Sector_size: %#0x\n", self.SectorSize())
	result += fmt.Sprintf("  Cluster_size: %#0x\n", self.ClusterSize())
	result += fmt.Sprintf("  Volume_size: %#0x\n", self.VolumeSize())
	result += fmt.Sprintf("  Mft_cluster: %#0x\n", self.MFTCluster())
	result += fmt.Sprintf("  Mirror_mft_cluster: %#0x\n", self.MirrorMFTCluster())
	result += fmt.Sprintf("  Record_size: %#0x\n", self.RecordSize())
	result += fmt.Sprintf("  Serial: %#0x\n", self.Serial())
	result += fmt.Sprintf("  Magic: %#0x\n", self.Magic())
	return result
}
