package parser

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	mbr_size                = 512
	mbr_partition_offset    = 0x1BE
	mbr_partition_size      = 16
	MBR_PARTITION_COUNT     = 4
	MBR_TYPE_GPT_PROTECTIVE = 0xEE
)

// Partition is a primary MBR partition table entry. Index is the one
// based partition number.
type Partition struct {
	Index    int
	Type     byte
	Bootable bool
	StartLBA uint32
	SizeLBA  uint32
}

func (self *Partition) IsEmpty() bool {
	return self.Type == 0 || self.StartLBA == 0 || self.SizeLBA == 0
}

func (self *Partition) StartOffset(sector_size int64) int64 {
	return int64(self.StartLBA) * sector_size
}

func (self *Partition) SizeBytes(sector_size int64) int64 {
	return int64(self.SizeLBA) * sector_size
}

func (self *Partition) String() string {
	return fmt.Sprintf("Partition %d: type %#02x start LBA %d (%d sectors)",
		self.Index, self.Type, self.StartLBA, self.SizeLBA)
}

// ParseMBR returns all four primary entries, including empty ones, so
// that entry n is always at index n-1.
func ParseMBR(reader io.ReaderAt) ([]*Partition, error) {
	header := make([]byte, mbr_size)
	n, err := reader.ReadAt(header, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, ioErrorf(err, "reading MBR")
	}

	if n < len(header) {
		return nil, fmt.Errorf("%w: MBR: read %d bytes", ShortReadError, n)
	}

	if header[510] != 0x55 || header[511] != 0xAA {
		return nil, formatErrorf("invalid MBR signature")
	}

	result := make([]*Partition, 0, MBR_PARTITION_COUNT)
	for i := 0; i < MBR_PARTITION_COUNT; i++ {
		entry := header[mbr_partition_offset+i*mbr_partition_size:]

		result = append(result, &Partition{
			Index:    i + 1,
			Bootable: entry[0] == 0x80,
			Type:     entry[4],
			StartLBA: binary.LittleEndian.Uint32(entry[8:12]),
			SizeLBA:  binary.LittleEndian.Uint32(entry[12:16]),
		})
	}

	return result, nil
}

// FindPartitionOffset resolves a one based partition number to the
// byte offset of the partition.
func FindPartitionOffset(reader io.ReaderAt,
	partition_number int, sector_size int64) (int64, error) {
	if partition_number < 1 || partition_number > MBR_PARTITION_COUNT {
		return 0, formatErrorf("partition number %d out of range 1-%d",
			partition_number, MBR_PARTITION_COUNT)
	}

	partitions, err := ParseMBR(reader)
	if err != nil {
		return 0, err
	}

	partition := partitions[partition_number-1]
	if partition.Type == MBR_TYPE_GPT_PROTECTIVE {
		return 0, unsupportedErrorf("GPT partition tables")
	}

	if partition.IsEmpty() {
		return 0, formatErrorf("partition %d is empty", partition_number)
	}

	DebugPrint("%v\n", partition)

	return partition.StartOffset(sector_size), nil
}
