package parser

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// The header fields we use all live in the first 0x30 bytes.
	MIN_RECORD_SIZE = 0x30
	MAX_RECORD_SIZE = 0x10000

	// Fixups protect the last two bytes of every 512 byte stride,
	// independent of the volume's sector size.
	fixup_stride = 512

	FILE_RECORD_MAGIC = "FILE"
)

// A FileRecord is one fixed size MFT entry. It owns its buffer; the
// attributes handed out by the scanner are views into it.
type FileRecord struct {
	buffer []byte

	// Absolute offset of the record on the volume.
	Offset int64
}

// LoadFileRecord reads exactly record_size bytes at offset. Partial
// records are never accepted.
func LoadFileRecord(reader io.ReaderAt, offset, record_size int64) (*FileRecord, error) {
	if record_size < MIN_RECORD_SIZE || record_size > MAX_RECORD_SIZE {
		return nil, formatErrorf("invalid record size %d", record_size)
	}

	if offset < 0 {
		return nil, formatErrorf("invalid record offset %d", offset)
	}

	buffer := make([]byte, record_size)
	n, err := reader.ReadAt(buffer, offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, ioErrorf(err, "reading record at %#x", offset)
	}

	if n < len(buffer) {
		return nil, fmt.Errorf("%w: record at %#x: expected %d bytes, read %d",
			ShortReadError, offset, record_size, n)
	}

	STATS.Inc_FileRecord()

	return NewFileRecord(buffer, offset)
}

// NewFileRecord takes ownership of buffer and applies the update
// sequence fixups if the record carries a FILE signature.
func NewFileRecord(buffer []byte, offset int64) (*FileRecord, error) {
	if len(buffer) < MIN_RECORD_SIZE || len(buffer) > MAX_RECORD_SIZE {
		return nil, formatErrorf("invalid record size %d", len(buffer))
	}

	self := &FileRecord{buffer: buffer, Offset: offset}

	// Damaged (BAAD) or wiped records are still worth looking at so
	// we only fix up records which claim to be intact.
	if self.Magic() == FILE_RECORD_MAGIC {
		err := self.fixup()
		if err != nil {
			return nil, err
		}
	}

	return self, nil
}

// The update sequence array replaces the last two bytes of each
// stride with a magic value. Check the magic and restore the original
// bytes.
func (self *FileRecord) fixup() error {
	fixup_offset := int(self.FixupOffset())
	fixup_count := int(self.FixupCount())
	if fixup_count == 0 {
		return nil
	}

	if fixup_offset+fixup_count*2 > len(self.buffer) {
		return formatErrorf("fixup array at %#x (%d entries) exceeds record",
			fixup_offset, fixup_count)
	}

	var magic [2]byte
	copy(magic[:], self.buffer[fixup_offset:])

	for idx := 1; idx < fixup_count; idx++ {
		stride_end := idx*fixup_stride - 2
		if stride_end+2 > len(self.buffer) {
			break
		}

		if self.buffer[stride_end] != magic[0] ||
			self.buffer[stride_end+1] != magic[1] {
			return formatErrorf("fixup mismatch in stride %d of record at %#x",
				idx-1, self.Offset)
		}

		value_offset := fixup_offset + idx*2
		self.buffer[stride_end] = self.buffer[value_offset]
		self.buffer[stride_end+1] = self.buffer[value_offset+1]
	}

	STATS.Inc_FixUpFileRecord()

	return nil
}

func (self *FileRecord) Size() int64 {
	return int64(len(self.buffer))
}

// Bytes returns the (fixed up) record buffer.
func (self *FileRecord) Bytes() []byte {
	return self.buffer
}

func (self *FileRecord) Magic() string {
	return string(self.buffer[0:4])
}

func (self *FileRecord) FixupOffset() uint16 {
	return binary.LittleEndian.Uint16(self.buffer[4:6])
}

func (self *FileRecord) FixupCount() uint16 {
	return binary.LittleEndian.Uint16(self.buffer[6:8])
}

func (self *FileRecord) LogfileSequenceNumber() uint64 {
	return binary.LittleEndian.Uint64(self.buffer[8:16])
}

func (self *FileRecord) SequenceValue() uint16 {
	return binary.LittleEndian.Uint16(self.buffer[16:18])
}

func (self *FileRecord) LinkCount() uint16 {
	return binary.LittleEndian.Uint16(self.buffer[18:20])
}

func (self *FileRecord) AttributeOffset() uint16 {
	return binary.LittleEndian.Uint16(self.buffer[20:22])
}

func (self *FileRecord) Flags() uint16 {
	return binary.LittleEndian.Uint16(self.buffer[22:24])
}

func (self *FileRecord) UsedSize() uint32 {
	return binary.LittleEndian.Uint32(self.buffer[24:28])
}

func (self *FileRecord) AllocatedSize() uint32 {
	return binary.LittleEndian.Uint32(self.buffer[28:32])
}

func (self *FileRecord) BaseRecordReference() uint64 {
	return binary.LittleEndian.Uint64(self.buffer[32:40])
}

func (self *FileRecord) NextAttributeId() uint16 {
	return binary.LittleEndian.Uint16(self.buffer[40:42])
}

func (self *FileRecord) RecordNumber() uint32 {
	return binary.LittleEndian.Uint32(self.buffer[44:48])
}

func (self *FileRecord) DebugString() string {
	result := fmt.Sprintf("struct FileRecord @ %#x:\n", self.Offset)
	result += fmt.Sprintf("  Magic: %q\n", self.Magic())
	result += fmt.Sprintf("  Fixup_offset: %#0x\n", self.FixupOffset())
	result += fmt.Sprintf("  Fixup_count: %#0x\n", self.FixupCount())
	result += fmt.Sprintf("  Sequence_value: %#0x\n", self.SequenceValue())
	result += fmt.Sprintf("  Link_count: %#0x\n", self.LinkCount())
	result += fmt.Sprintf("  Attribute_offset: %#0x\n", self.AttributeOffset())
	result += fmt.Sprintf("  Flags: %#0x (%v)\n", self.Flags(), self.AllocationStatus())
	result += fmt.Sprintf("  Used_size: %#0x\n", self.UsedSize())
	result += fmt.Sprintf("  Allocated_size: %#0x\n", self.AllocatedSize())
	result += fmt.Sprintf("  Base_record_reference: %#0x\n", self.BaseRecordReference())
	result += fmt.Sprintf("  Record_number: %#0x\n", self.RecordNumber())
	return result
}
