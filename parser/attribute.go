package parser

import (
	"fmt"
	"math"
	"strings"
)

const (
	ATTR_TYPE_STANDARD_INFORMATION  = 0x10
	ATTR_TYPE_ATTRIBUTE_LIST        = 0x20
	ATTR_TYPE_FILE_NAME             = 0x30
	ATTR_TYPE_OBJECT_ID             = 0x40
	ATTR_TYPE_SECURITY_DESCRIPTOR   = 0x50
	ATTR_TYPE_VOLUME_NAME           = 0x60
	ATTR_TYPE_VOLUME_INFORMATION    = 0x70
	ATTR_TYPE_DATA                  = 0x80
	ATTR_TYPE_INDEX_ROOT            = 0x90
	ATTR_TYPE_INDEX_ALLOCATION      = 0xA0
	ATTR_TYPE_BITMAP                = 0xB0
	ATTR_TYPE_REPARSE_POINT         = 0xC0
	ATTR_TYPE_EA_INFORMATION        = 0xD0
	ATTR_TYPE_EA                    = 0xE0
	ATTR_TYPE_LOGGED_UTILITY_STREAM = 0x100

	ATTR_TYPE_END = 0xFFFFFFFF

	// Fields shared by resident and non-resident headers.
	attribute_common_header_size = 0x10
	resident_header_size         = 0x18
	non_resident_header_size     = 0x40
)

func AttributeTypeName(attr_type uint32) string {
	switch attr_type {
	case ATTR_TYPE_STANDARD_INFORMATION:
		return "$STANDARD_INFORMATION"
	case ATTR_TYPE_ATTRIBUTE_LIST:
		return "$ATTRIBUTE_LIST"
	case ATTR_TYPE_FILE_NAME:
		return "$FILE_NAME"
	case ATTR_TYPE_OBJECT_ID:
		return "$OBJECT_ID"
	case ATTR_TYPE_SECURITY_DESCRIPTOR:
		return "$SECURITY_DESCRIPTOR"
	case ATTR_TYPE_VOLUME_NAME:
		return "$VOLUME_NAME"
	case ATTR_TYPE_VOLUME_INFORMATION:
		return "$VOLUME_INFORMATION"
	case ATTR_TYPE_DATA:
		return "$DATA"
	case ATTR_TYPE_INDEX_ROOT:
		return "$INDEX_ROOT"
	case ATTR_TYPE_INDEX_ALLOCATION:
		return "$INDEX_ALLOCATION"
	case ATTR_TYPE_BITMAP:
		return "$BITMAP"
	case ATTR_TYPE_REPARSE_POINT:
		return "$REPARSE_POINT"
	case ATTR_TYPE_EA_INFORMATION:
		return "$EA_INFORMATION"
	case ATTR_TYPE_EA:
		return "$EA"
	case ATTR_TYPE_LOGGED_UTILITY_STREAM:
		return "$LOGGED_UTILITY_STREAM"
	}
	return "Unknown"
}

type AttributeFlags uint16

const (
	ATTR_FLAG_COMPRESSED AttributeFlags = 1 << 0
	ATTR_FLAG_ENCRYPTED  AttributeFlags = 1 << 14
	ATTR_FLAG_SPARSE     AttributeFlags = 1 << 15
)

func (self AttributeFlags) IsCompressed() bool {
	return self&ATTR_FLAG_COMPRESSED != 0
}

func (self AttributeFlags) IsEncrypted() bool {
	return self&ATTR_FLAG_ENCRYPTED != 0
}

func (self AttributeFlags) IsSparse() bool {
	return self&ATTR_FLAG_SPARSE != 0
}

func (self AttributeFlags) DebugString() string {
	names := []string{}

	if self.IsCompressed() {
		names = append(names, "COMPRESSED")
	}

	if self.IsEncrypted() {
		names = append(names, "ENCRYPTED")
	}

	if self.IsSparse() {
		names = append(names, "SPARSE")
	}

	return fmt.Sprintf("%d (%v)", self, strings.Join(names, ","))
}

// An Attribute is a view over exactly Length() bytes of its record.
type Attribute struct {
	b byteView

	// Offset of the attribute within its record.
	Offset int64
}

// The scanner guarantees at least the common header is present so
// these are safe to read directly.
func (self *Attribute) Type() uint32 {
	value, _ := self.b.Uint32(0)
	return value
}

func (self *Attribute) TypeName() string {
	return AttributeTypeName(self.Type())
}

func (self *Attribute) Length() uint32 {
	value, _ := self.b.Uint32(4)
	return value
}

func (self *Attribute) IsResident() bool {
	return self.b[8] == 0
}

func (self *Attribute) NameLength() uint8 {
	return self.b[9]
}

func (self *Attribute) NameOffset() uint16 {
	value, _ := self.b.Uint16(10)
	return value
}

func (self *Attribute) Flags() AttributeFlags {
	value, _ := self.b.Uint16(12)
	return AttributeFlags(value)
}

func (self *Attribute) AttributeId() uint16 {
	value, _ := self.b.Uint16(14)
	return value
}

// Name is the stream name (empty for the default $DATA stream).
func (self *Attribute) Name() (string, error) {
	length := int(self.NameLength())
	if length == 0 {
		return "", nil
	}

	raw, err := self.b.Slice(int(self.NameOffset()), length*2)
	if err != nil {
		return "", err
	}
	return decodeUTF16(raw)
}

// Content returns the inline value of a resident attribute.
func (self *Attribute) Content() ([]byte, error) {
	if !self.IsResident() {
		return nil, formatErrorf("%v attribute at %#x is not resident",
			self.TypeName(), self.Offset)
	}

	if len(self.b) < resident_header_size {
		return nil, formatErrorf("resident attribute at %#x too short (%d bytes)",
			self.Offset, len(self.b))
	}

	content_size, _ := self.b.Uint32(16)
	content_offset, _ := self.b.Uint16(20)

	content, err := self.b.Slice(int(content_offset), int(content_size))
	if err != nil {
		return nil, fmt.Errorf("resident content of %v at %#x: %w",
			self.TypeName(), self.Offset, err)
	}
	return content, nil
}

type NonResidentHeader struct {
	RunlistVcnStart     uint64
	RunlistVcnEnd       uint64
	RunlistOffset       uint16
	CompressionUnitSize uint16
	AllocatedSize       uint64
	ActualSize          uint64
	InitializedSize     uint64
}

func (self *Attribute) NonResident() (*NonResidentHeader, error) {
	if self.IsResident() {
		return nil, formatErrorf("%v attribute at %#x is resident",
			self.TypeName(), self.Offset)
	}

	if len(self.b) < non_resident_header_size {
		return nil, formatErrorf("non-resident attribute at %#x too short (%d bytes)",
			self.Offset, len(self.b))
	}

	result := &NonResidentHeader{}
	result.RunlistVcnStart, _ = self.b.Uint64(16)
	result.RunlistVcnEnd, _ = self.b.Uint64(24)
	result.RunlistOffset, _ = self.b.Uint16(32)
	result.CompressionUnitSize, _ = self.b.Uint16(34)
	result.AllocatedSize, _ = self.b.Uint64(40)
	result.ActualSize, _ = self.b.Uint64(48)
	result.InitializedSize, _ = self.b.Uint64(56)
	return result, nil
}

// RunList decodes the run list of a non-resident attribute. The run
// list extends from the run list offset to the end of the attribute.
func (self *Attribute) RunList() ([]Run, error) {
	header, err := self.NonResident()
	if err != nil {
		return nil, err
	}

	offset := int(header.RunlistOffset)
	if offset < non_resident_header_size || offset > len(self.b) {
		return nil, formatErrorf("run list offset %#x outside attribute at %#x",
			offset, self.Offset)
	}

	return DecodeRunList(self.b[offset:])
}

// DataSize is the logical size of the attribute's content.
func (self *Attribute) DataSize() (int64, error) {
	if self.IsResident() {
		content, err := self.Content()
		if err != nil {
			return 0, err
		}
		return int64(len(content)), nil
	}

	header, err := self.NonResident()
	if err != nil {
		return 0, err
	}
	if header.ActualSize > uint64(math.MaxInt64) {
		return 0, formatErrorf("attribute size %d too large", header.ActualSize)
	}
	return int64(header.ActualSize), nil
}

func (self *Attribute) DebugString() string {
	result := fmt.Sprintf("struct Attribute @ %#x:\n", self.Offset)
	result += fmt.Sprintf("  Type: %#x (%v)\n", self.Type(), self.TypeName())
	result += fmt.Sprintf("  Length: %#0x\n", self.Length())
	result += fmt.Sprintf("  Resident: %v\n", self.IsResident())
	result += fmt.Sprintf("  Name_length: %#0x\n", self.NameLength())
	result += fmt.Sprintf("  Name_offset: %#0x\n", self.NameOffset())
	result += fmt.Sprintf("  Flags: %v\n", self.Flags().DebugString())
	result += fmt.Sprintf("  Attribute_id: %#0x\n", self.AttributeId())

	if self.IsResident() {
		content, err := self.Content()
		if err == nil {
			result += fmt.Sprintf("  Content_size: %#0x\n", len(content))
		}
		return result
	}

	header, err := self.NonResident()
	if err != nil {
		return result
	}
	result += fmt.Sprintf("  Runlist_vcn_start: %#0x\n", header.RunlistVcnStart)
	result += fmt.Sprintf("  Runlist_vcn_end: %#0x\n", header.RunlistVcnEnd)
	result += fmt.Sprintf("  Runlist_offset: %#0x\n", header.RunlistOffset)
	result += fmt.Sprintf("  Compression_unit_size: %#0x\n", header.CompressionUnitSize)
	result += fmt.Sprintf("  Allocated_size: %#0x\n", header.AllocatedSize)
	result += fmt.Sprintf("  Actual_size: %#0x\n", header.ActualSize)
	result += fmt.Sprintf("  Initialized_size: %#0x\n", header.InitializedSize)
	return result
}

// AttributeScanner walks the attribute list of a record, in the
// style of bufio.Scanner:
//
//	scanner := record.Attributes()
//	for scanner.Next() {
//	    attr := scanner.Attribute()
//	}
//	if err := scanner.Err(); err != nil { ... }
type AttributeScanner struct {
	record *FileRecord

	offset  int64
	current *Attribute
	err     error
	done    bool
}

func (self *FileRecord) Attributes() *AttributeScanner {
	result := &AttributeScanner{record: self}
	result.Reset()
	return result
}

// Reset restarts the scan from the first attribute.
func (self *AttributeScanner) Reset() {
	self.offset = int64(self.record.AttributeOffset())
	self.current = nil
	self.err = nil
	self.done = false
}

func (self *AttributeScanner) Next() bool {
	if self.done {
		return false
	}

	attr, err := self.next()
	if err != nil {
		self.err = err
	}
	if attr == nil {
		self.done = true
		self.current = nil
		return false
	}

	self.current = attr
	return true
}

func (self *AttributeScanner) next() (*Attribute, error) {
	record := byteView(self.record.buffer)
	record_size := int64(len(record))
	offset := self.offset

	if offset >= record_size {
		return nil, malformedErrorf(
			"attribute at %#x starts beyond the %d byte record", offset, record_size)
	}

	// Only possible for the first attribute.
	if offset < MIN_RECORD_SIZE {
		return nil, malformedErrorf(
			"first attribute offset %#x overlaps the record header", offset)
	}

	attr_type, err := record.Uint32(int(offset))
	if err != nil {
		return nil, malformedErrorf(
			"attribute header at %#x crosses the end of the record", offset)
	}

	if attr_type == ATTR_TYPE_END {
		return nil, nil
	}

	length, err := record.Uint32(int(offset) + 4)
	if err != nil {
		return nil, malformedErrorf(
			"attribute header at %#x crosses the end of the record", offset)
	}

	if length == 0 {
		return nil, nil
	}

	if offset+int64(length) > record_size {
		return nil, malformedErrorf(
			"attribute at %#x with length %#x exceeds the %d byte record",
			offset, length, record_size)
	}

	if length < attribute_common_header_size {
		return nil, malformedErrorf(
			"attribute at %#x has impossible length %#x", offset, length)
	}

	STATS.Inc_Attribute()

	self.offset += int64(length)

	return &Attribute{
		b:      record[offset : offset+int64(length)],
		Offset: offset,
	}, nil
}

func (self *AttributeScanner) Attribute() *Attribute {
	return self.current
}

func (self *AttributeScanner) Err() error {
	return self.err
}

// EnumerateAttributes materializes all the attributes in the record.
func (self *FileRecord) EnumerateAttributes() ([]*Attribute, error) {
	result := make([]*Attribute, 0, 16)

	scanner := self.Attributes()
	for scanner.Next() {
		result = append(result, scanner.Attribute())
	}
	return result, scanner.Err()
}

// FindAttribute returns the first attribute of the given type. A
// malformed record is reported even if the attribute is not found.
func (self *FileRecord) FindAttribute(attr_type uint32) (*Attribute, error) {
	scanner := self.Attributes()
	for scanner.Next() {
		attr := scanner.Attribute()
		if attr.Type() == attr_type {
			return attr, nil
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return nil, nil
}

// DataAttribute returns the default (unnamed) $DATA stream.
func (self *FileRecord) DataAttribute() (*Attribute, error) {
	scanner := self.Attributes()
	for scanner.Next() {
		attr := scanner.Attribute()
		if attr.Type() == ATTR_TYPE_DATA && attr.NameLength() == 0 {
			return attr, nil
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return nil, ErrNoDataAttribute
}
