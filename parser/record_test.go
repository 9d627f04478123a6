package parser

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (self failingReader) ReadAt(buf []byte, offset int64) (int, error) {
	return 0, errors.New("device not ready")
}

func TestLoadFileRecord(t *testing.T) {
	raw := newRecord(0x01, 42).addFileName(5, "a.txt", FILE_NAME_WIN32).Bytes()

	// Stride ends carry the update sequence magic on disk.
	assert.Equal(t, []byte{0xCD, 0xAB}, raw[510:512])

	disk := append(make([]byte, 0x2000), raw...)
	record, err := LoadFileRecord(bytes.NewReader(disk), 0x2000, testRecordSize)
	require.NoError(t, err)

	assert.Equal(t, int64(0x2000), record.Offset)
	assert.Equal(t, "FILE", record.Magic())
	assert.Equal(t, uint32(42), record.RecordNumber())
	assert.Equal(t, uint16(0x38), record.AttributeOffset())
	assert.Equal(t, int64(testRecordSize), record.Size())

	// Fixups put the original (zero) bytes back.
	assert.Equal(t, []byte{0, 0}, record.Bytes()[510:512])
	assert.Equal(t, []byte{0, 0}, record.Bytes()[1022:1024])
}

func TestLoadFileRecordShortRead(t *testing.T) {
	raw := newRecord(0x01, 0).Bytes()

	// Only half a record is available.
	_, err := LoadFileRecord(bytes.NewReader(raw[:500]), 0, testRecordSize)
	assert.ErrorIs(t, err, ShortReadError)

	// Reading beyond the image.
	_, err = LoadFileRecord(bytes.NewReader(raw), 4096, testRecordSize)
	assert.ErrorIs(t, err, ShortReadError)
}

func TestLoadFileRecordIOError(t *testing.T) {
	_, err := LoadFileRecord(failingReader{}, 0, testRecordSize)
	assert.ErrorIs(t, err, IOError)
	assert.Contains(t, err.Error(), "device not ready")
	assert.False(t, errors.Is(err, io.EOF))
}

func TestLoadFileRecordInvalidSize(t *testing.T) {
	raw := newRecord(0x01, 0).Bytes()

	_, err := LoadFileRecord(bytes.NewReader(raw), 0, 0)
	assert.ErrorIs(t, err, FormatError)

	_, err = LoadFileRecord(bytes.NewReader(raw), 0, MAX_RECORD_SIZE+1)
	assert.ErrorIs(t, err, FormatError)

	_, err = LoadFileRecord(bytes.NewReader(raw), -1, testRecordSize)
	assert.ErrorIs(t, err, FormatError)
}

func TestFixupMismatch(t *testing.T) {
	raw := newRecord(0x01, 0).Bytes()

	// A torn write: the second stride does not carry the magic.
	raw[1022] = 0x00
	_, err := NewFileRecord(raw, 0)
	assert.ErrorIs(t, err, FormatError)

	// Update sequence array pointing outside the record.
	raw = newRecord(0x01, 0).Bytes()
	raw[4] = 0xFE
	raw[5] = 0x03
	_, err = NewFileRecord(raw, 0)
	assert.ErrorIs(t, err, FormatError)
}

func TestRecordWithoutFixups(t *testing.T) {
	builder := newRecord(0x01, 0).addFileName(5, "plain.txt", FILE_NAME_WIN32)
	builder.fixups = false

	record, err := NewFileRecord(builder.Bytes(), 0)
	require.NoError(t, err)

	file_name, err := record.FileName()
	require.NoError(t, err)
	assert.Equal(t, "plain.txt", file_name.Name)
}

// Records that are not marked FILE are still returned so they can be
// inspected, but without fixups applied.
func TestBadRecordMagic(t *testing.T) {
	raw := newRecord(0x01, 0).Bytes()
	copy(raw, "BAAD")

	record, err := NewFileRecord(raw, 0)
	require.NoError(t, err)
	assert.Equal(t, "BAAD", record.Magic())
	assert.Equal(t, []byte{0xCD, 0xAB}, record.Bytes()[510:512])
}
