package parser

import (
	"fmt"
	"time"

	"golang.org/x/text/encoding/unicode"
)

const (
	FILE_NAME_POSIX     = 0
	FILE_NAME_WIN32     = 1
	FILE_NAME_DOS       = 2
	FILE_NAME_DOS_WIN32 = 3

	file_name_header_size = 0x42
)

func FileNameTypeName(name_type uint8) string {
	switch name_type {
	case FILE_NAME_POSIX:
		return "POSIX"
	case FILE_NAME_WIN32:
		return "Win32"
	case FILE_NAME_DOS:
		return "DOS"
	case FILE_NAME_DOS_WIN32:
		return "DOS+Win32"
	}
	return "Unknown"
}

// FileName is a decoded $FILE_NAME attribute. It owns its data.
type FileName struct {
	// MFT entry of the parent directory (low 48 bits of the file
	// reference) and its sequence number.
	ParentReference uint64
	ParentSequence  uint16

	Times TimeStamps

	AllocatedSize uint64
	RealSize      uint64
	Flags         uint32

	NameLength uint8
	NameType   uint8
	Name       string
}

func (self *FileName) NameTypeName() string {
	return FileNameTypeName(self.NameType)
}

func (self *FileName) DebugString() string {
	result := "struct FILE_NAME:\n"
	result += fmt.Sprintf("  Parent: %d-%d\n", self.ParentReference, self.ParentSequence)
	result += fmt.Sprintf("  Created: %v\n", self.Times.CreateTime)
	result += fmt.Sprintf("  Modified: %v\n", self.Times.FileModifiedTime)
	result += fmt.Sprintf("  Name_length: %#0x\n", self.NameLength)
	result += fmt.Sprintf("  Name_type: %v\n", self.NameTypeName())
	result += fmt.Sprintf("  Name: %v\n", self.Name)
	return result
}

// DecodeFileName decodes a resident $FILE_NAME attribute. The stated
// name length must fit inside the attribute's content.
func DecodeFileName(attr *Attribute) (*FileName, error) {
	if attr.Type() != ATTR_TYPE_FILE_NAME {
		return nil, formatErrorf("attribute at %#x is %v, not $FILE_NAME",
			attr.Offset, attr.TypeName())
	}

	content, err := attr.Content()
	if err != nil {
		return nil, err
	}

	view := byteView(content)
	if len(view) < file_name_header_size {
		return nil, formatErrorf("$FILE_NAME at %#x too short (%d bytes)",
			attr.Offset, len(view))
	}

	STATS.Inc_FILE_NAME()

	result := &FileName{}

	reference, _ := view.Uint64(0)
	result.ParentReference = reference & 0xFFFFFFFFFFFF
	result.ParentSequence = uint16(reference >> 48)

	for idx, target := range []*time.Time{
		&result.Times.CreateTime,
		&result.Times.FileModifiedTime,
		&result.Times.MFTModifiedTime,
		&result.Times.AccessedTime} {
		filetime, _ := view.Uint64(8 + idx*8)
		*target = WinFileTime(filetime)
	}

	result.AllocatedSize, _ = view.Uint64(0x28)
	result.RealSize, _ = view.Uint64(0x30)
	result.Flags, _ = view.Uint32(0x38)
	result.NameLength = view[0x40]
	result.NameType = view[0x41]

	raw, err := view.Slice(file_name_header_size, int(result.NameLength)*2)
	if err != nil {
		return nil, formatErrorf(
			"$FILE_NAME at %#x: name of %d characters overruns the attribute",
			attr.Offset, result.NameLength)
	}

	result.Name, err = decodeUTF16(raw)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// FileName returns the first $FILE_NAME attribute in the record. A
// record may legitimately carry several (one per namespace); using the
// first one is a simplification, see PreferredFileName.
func (self *FileRecord) FileName() (*FileName, error) {
	attr, err := self.FindAttribute(ATTR_TYPE_FILE_NAME)
	if err != nil {
		return nil, err
	}

	if attr == nil {
		return nil, ErrNoFileName
	}

	return DecodeFileName(attr)
}

// FileNames decodes every $FILE_NAME attribute in record order. Names
// which fail to decode are skipped as long as at least one name
// survives, otherwise the first decode error is returned.
func (self *FileRecord) FileNames() ([]*FileName, error) {
	result := []*FileName{}
	var first_err error

	scanner := self.Attributes()
	for scanner.Next() {
		attr := scanner.Attribute()
		if attr.Type() != ATTR_TYPE_FILE_NAME {
			continue
		}

		file_name, err := DecodeFileName(attr)
		if err != nil {
			DebugPrint("Skipping $FILE_NAME at %#x: %v\n", attr.Offset, err)
			if first_err == nil {
				first_err = err
			}
			continue
		}
		result = append(result, file_name)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(result) == 0 {
		if first_err != nil {
			return nil, first_err
		}
		return nil, ErrNoFileName
	}

	return result, nil
}

// PreferredFileName picks the long name when the record has both a
// DOS 8.3 name and a Win32 name. Otherwise the first name wins.
func PreferredFileName(file_names []*FileName) *FileName {
	if len(file_names) == 0 {
		return nil
	}

	for _, file_name := range file_names {
		if file_name.NameType != FILE_NAME_DOS {
			return file_name
		}
	}
	return file_names[0]
}

// Decode little endian UTF-16 into a string. Unpaired surrogates
// become U+FFFD.
func decodeUTF16(raw []byte) (string, error) {
	if len(raw)%2 != 0 {
		return "", formatErrorf("odd length UTF-16 string (%d bytes)", len(raw))
	}

	decoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	decoded, err := decoder.Bytes(raw)
	if err != nil {
		return "", formatErrorf("decoding UTF-16 name: %v", err)
	}
	return string(decoded), nil
}
