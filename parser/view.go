package parser

import "encoding/binary"

// A byteView gives bounds checked little endian access to a region of
// a record. Fields are read relative to the start of the view and any
// read that would leave the view fails with FormatError instead of
// panicking, since offsets and lengths come straight off the disk.
type byteView []byte

func (self byteView) check(offset, length int) error {
	if offset < 0 || length < 0 || offset > len(self) ||
		length > len(self)-offset {
		return formatErrorf("field at %#x (%d bytes) exceeds %d byte region",
			offset, length, len(self))
	}
	return nil
}

func (self byteView) Uint8(offset int) (uint8, error) {
	if err := self.check(offset, 1); err != nil {
		return 0, err
	}
	return self[offset], nil
}

func (self byteView) Uint16(offset int) (uint16, error) {
	if err := self.check(offset, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(self[offset:]), nil
}

func (self byteView) Uint32(offset int) (uint32, error) {
	if err := self.check(offset, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(self[offset:]), nil
}

func (self byteView) Uint64(offset int) (uint64, error) {
	if err := self.check(offset, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(self[offset:]), nil
}

// Slice returns a sub view without copying.
func (self byteView) Slice(offset, length int) (byteView, error) {
	if err := self.check(offset, length); err != nil {
		return nil, err
	}
	return self[offset : offset+length], nil
}
