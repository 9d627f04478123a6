package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Recorder captures every read made against a device into a directory
// so that a recovery can later be replayed without the original disk.
// Each read is stored in a file named after its offset and length.
type Recorder struct {
	path string

	// Delegate reader. May be nil when replaying.
	reader io.ReaderAt
}

func (self *Recorder) ReadAt(buf []byte, offset int64) (int, error) {
	full_path := filepath.Join(self.path,
		fmt.Sprintf("%#08x-%d.bin", offset, len(buf)))

	fd, err := os.Open(full_path)
	if err == nil {
		defer fd.Close()

		n, err := fd.ReadAt(buf, 0)
		if err != nil && !errors.Is(err, io.EOF) {
			return n, err
		}
		if n < len(buf) {
			return n, io.EOF
		}
		return n, nil
	}

	if self.reader == nil {
		return 0, ioErrorf(err, "no recording for offset %#x", offset)
	}

	// Pass the read to the delegate and keep it for next time.
	n, err := self.reader.ReadAt(buf, offset)
	if err == nil || errors.Is(err, io.EOF) {
		out_fd, err := os.OpenFile(full_path,
			os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0660)
		if err == nil {
			_, _ = out_fd.Write(buf[:n])
			out_fd.Close()
		}
	}
	return n, err
}

func NewRecorder(path string, reader io.ReaderAt) (*Recorder, error) {
	err := os.MkdirAll(path, 0700)
	if err != nil {
		return nil, ioErrorf(err, "creating recorder directory %v", path)
	}
	return &Recorder{path: path, reader: reader}, nil
}
