package parser

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert"
)

func TestReader(t *testing.T) {
	r, _ := NewPagedReader(
		bytes.NewReader([]byte("abcd")),
		3 /* pagesize */, 100 /* cache_size */)

	// Read 1 byte from the end of the buffer.
	buf := make([]byte, 1)
	c, err := r.ReadAt(buf, 3)
	assert.NoError(t, err)
	assert.Equal(t, c, 1)
	assert.Equal(t, buf, []byte{0x64})

	// Read past end (3 byte buffer from offset 3) is short.
	buf = make([]byte, 3)
	c, err = r.ReadAt(buf, 3)
	assert.Equal(t, err, io.EOF)
	assert.Equal(t, c, 1)
	assert.Equal(t, buf[:c], []byte{0x64})

	// Spanning a full page and the short last page.
	buf = make([]byte, 4)
	c, err = r.ReadAt(buf, 1)
	assert.Equal(t, err, io.EOF)
	assert.Equal(t, c, 3)
	assert.Equal(t, string(buf[:c]), "bcd")

	// Entirely outside the file.
	c, err = r.ReadAt(buf, 10)
	assert.Equal(t, err, io.EOF)
	assert.Equal(t, c, 0)
}

func TestReaderCache(t *testing.T) {
	data := clusterPattern(0, 4)
	r, err := NewPagedReader(bytes.NewReader(data), 512, 4)
	assert.NoError(t, err)

	// Straddles two pages.
	buf := make([]byte, 100)
	_, err = r.ReadAt(buf, 500)
	assert.NoError(t, err)
	assert.Equal(t, buf, data[500:600])
	assert.Equal(t, r.Miss, int64(2))

	_, err = r.ReadAt(buf, 520)
	assert.NoError(t, err)
	assert.Equal(t, buf, data[520:620])
	assert.Equal(t, r.Hits, int64(1))

	// Evicts the first pages but keeps returning correct data.
	for offset := int64(0); offset < int64(len(data)); offset += 512 {
		_, err = r.ReadAt(buf, offset)
		assert.NoError(t, err)
		assert.Equal(t, buf, data[offset:offset+100])
	}

	// Large aligned reads go straight through and stay short past
	// the end of the file.
	big := make([]byte, 512*40)
	c, err := r.ReadAt(big, 0)
	assert.Equal(t, err, io.EOF)
	assert.Equal(t, c, len(data))
	assert.Equal(t, big[:c], data)

	// Reads crossing the end of the file are not padded either.
	tail := make([]byte, 100)
	c, err = r.ReadAt(tail, int64(len(data))-40)
	assert.Equal(t, err, io.EOF)
	assert.Equal(t, c, 40)
	assert.Equal(t, tail[:c], data[len(data)-40:])

	r.Flush()

	_, err = NewPagedReader(bytes.NewReader(data), 0, 4)
	assert.Error(t, err)
}

func TestOffsetReader(t *testing.T) {
	r := &OffsetReader{Offset: 2, Reader: bytes.NewReader([]byte("abcdef"))}

	buf := make([]byte, 3)
	c, err := r.ReadAt(buf, 1)
	assert.NoError(t, err)
	assert.Equal(t, c, 3)
	assert.Equal(t, string(buf), "def")

	_, err = r.ReadAt(buf, -3)
	assert.Equal(t, err, io.EOF)
}

func TestRecorder(t *testing.T) {
	dir := t.TempDir()
	data := []byte("0123456789")

	recorder, err := NewRecorder(dir, bytes.NewReader(data))
	assert.NoError(t, err)

	buf := make([]byte, 4)
	_, err = recorder.ReadAt(buf, 2)
	assert.NoError(t, err)
	assert.Equal(t, string(buf), "2345")

	_, err = os.Stat(filepath.Join(dir, "0x00000002-4.bin"))
	assert.NoError(t, err)

	// Replay without the original device.
	replay, err := NewRecorder(dir, nil)
	assert.NoError(t, err)

	buf = make([]byte, 4)
	_, err = replay.ReadAt(buf, 2)
	assert.NoError(t, err)
	assert.Equal(t, string(buf), "2345")

	// Reads which were never recorded fail.
	_, err = replay.ReadAt(buf, 5)
	assert.Error(t, err)

	// A short read at the end of the device is replayed short.
	buf = make([]byte, 4)
	c, err := recorder.ReadAt(buf, 8)
	assert.Equal(t, err, io.EOF)
	assert.Equal(t, c, 2)

	c, err = replay.ReadAt(buf, 8)
	assert.Equal(t, err, io.EOF)
	assert.Equal(t, c, 2)
	assert.Equal(t, string(buf[:c]), "89")
}
