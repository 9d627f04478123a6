package parser

import "io"

// OffsetReader presents the region of Reader starting at Offset as
// its own address space. It is used to address a partition inside a
// whole disk image so cluster numbers can be used directly.
type OffsetReader struct {
	Offset int64
	Reader io.ReaderAt
}

func (self *OffsetReader) ReadAt(buf []byte, offset int64) (int, error) {
	if offset < 0 {
		return 0, io.EOF
	}
	return self.Reader.ReadAt(buf, offset+self.Offset)
}

func (self *OffsetReader) Flush() {
	flusher, ok := self.Reader.(Flusher)
	if ok {
		flusher.Flush()
	}
}
