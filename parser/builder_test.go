package parser

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"
)

// Helpers to build small synthetic NTFS images in memory.

const (
	testSectorSize  = 512
	testClusterSize = 4096
	testRecordSize  = 1024

	// The volume starts at LBA 2048 (1MiB) of the disk.
	testPartitionLBA    = 2048
	testPartitionOffset = testPartitionLBA * testSectorSize
	testMFTCluster      = 4
	testVolumeClusters  = 256

	// 2020-01-01T00:00:00Z as a windows FILETIME.
	testFileTime = 132223104000000000
)

type testImage struct {
	buf []byte
}

func newTestImage() *testImage {
	size := testPartitionOffset + testVolumeClusters*testClusterSize
	self := &testImage{buf: make([]byte, size)}

	// MBR with the NTFS volume in slot 1.
	mbr := self.buf[0:512]
	entry := mbr[0x1BE:]
	entry[0] = 0x80
	entry[4] = 0x07
	binary.LittleEndian.PutUint32(entry[8:], testPartitionLBA)
	binary.LittleEndian.PutUint32(entry[12:],
		testVolumeClusters*testClusterSize/testSectorSize)
	mbr[510] = 0x55
	mbr[511] = 0xAA

	boot := self.buf[testPartitionOffset : testPartitionOffset+512]
	copy(boot[3:], "NTFS    ")
	binary.LittleEndian.PutUint16(boot[11:], testSectorSize)
	boot[13] = testClusterSize / testSectorSize
	binary.LittleEndian.PutUint64(boot[40:],
		testVolumeClusters*testClusterSize/testSectorSize)
	binary.LittleEndian.PutUint64(boot[48:], testMFTCluster)
	binary.LittleEndian.PutUint64(boot[56:], 8)

	// 2^10 = 1024 byte records.
	boot[64] = 0xF6
	binary.LittleEndian.PutUint64(boot[72:], 0x1122334455667788)
	boot[510] = 0x55
	boot[511] = 0xAA

	return self
}

func (self *testImage) volume() []byte {
	return self.buf[testPartitionOffset:]
}

func (self *testImage) writeCluster(cluster int64, data []byte) {
	copy(self.volume()[cluster*testClusterSize:], data)
}

func (self *testImage) writeRecord(entry int64, record []byte) {
	offset := testMFTCluster*testClusterSize + entry*testRecordSize
	copy(self.volume()[offset:], record)
}

func (self *testImage) reader() *bytes.Reader {
	return bytes.NewReader(self.buf)
}

// Fill cluster range with a recognizable pattern: every byte encodes
// its own cluster and position.
func clusterPattern(cluster int64, count int) []byte {
	result := make([]byte, count*testClusterSize)
	for i := range result {
		result[i] = byte(cluster + int64(i/testClusterSize) + int64(i*7))
	}
	return result
}

type recordBuilder struct {
	flags         byte
	record_number uint32
	attributes    [][]byte
	fixups        bool
}

func newRecord(flags byte, record_number uint32) *recordBuilder {
	return &recordBuilder{
		flags:         flags,
		record_number: record_number,
		fixups:        true,
	}
}

func align8(n int) int {
	return (n + 7) &^ 7
}

func (self *recordBuilder) addRaw(attr []byte) *recordBuilder {
	self.attributes = append(self.attributes, attr)
	return self
}

func residentAttribute(attr_type uint32, content []byte) []byte {
	length := align8(0x18 + len(content))
	result := make([]byte, length)
	binary.LittleEndian.PutUint32(result[0:], attr_type)
	binary.LittleEndian.PutUint32(result[4:], uint32(length))
	result[8] = 0
	binary.LittleEndian.PutUint16(result[10:], 0x18)
	binary.LittleEndian.PutUint32(result[16:], uint32(len(content)))
	binary.LittleEndian.PutUint16(result[20:], 0x18)
	copy(result[0x18:], content)
	return result
}

func fileNameContent(parent uint64, name string, name_type byte) []byte {
	encoded := utf16.Encode([]rune(name))
	result := make([]byte, 0x42+2*len(encoded))
	binary.LittleEndian.PutUint64(result[0:], parent|uint64(3)<<48)
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint64(result[8+i*8:], testFileTime)
	}
	result[0x40] = byte(len(encoded))
	result[0x41] = name_type
	for i, c := range encoded {
		binary.LittleEndian.PutUint16(result[0x42+2*i:], c)
	}
	return result
}

func (self *recordBuilder) addFileName(parent uint64, name string, name_type byte) *recordBuilder {
	return self.addRaw(residentAttribute(ATTR_TYPE_FILE_NAME,
		fileNameContent(parent, name, name_type)))
}

func (self *recordBuilder) addResidentData(data []byte) *recordBuilder {
	return self.addRaw(residentAttribute(ATTR_TYPE_DATA, data))
}

func nonResidentAttribute(attr_type uint32, flags uint16,
	size uint64, runs []byte) []byte {
	length := align8(0x40 + len(runs))
	result := make([]byte, length)
	binary.LittleEndian.PutUint32(result[0:], attr_type)
	binary.LittleEndian.PutUint32(result[4:], uint32(length))
	result[8] = 1
	binary.LittleEndian.PutUint16(result[10:], 0x40)
	binary.LittleEndian.PutUint16(result[12:], flags)
	binary.LittleEndian.PutUint16(result[32:], 0x40)

	allocated := (size + testClusterSize - 1) / testClusterSize * testClusterSize
	binary.LittleEndian.PutUint64(result[40:], allocated)
	binary.LittleEndian.PutUint64(result[48:], size)
	binary.LittleEndian.PutUint64(result[56:], size)
	copy(result[0x40:], runs)
	return result
}

func (self *recordBuilder) addNonResidentData(size uint64, runs []byte) *recordBuilder {
	return self.addRaw(nonResidentAttribute(ATTR_TYPE_DATA, 0, size, runs))
}

// Bytes lays the record out the way NTFS does: header, update
// sequence array at 0x30, attributes from 0x38, end marker.
func (self *recordBuilder) Bytes() []byte {
	result := make([]byte, testRecordSize)
	copy(result[0:], FILE_RECORD_MAGIC)
	binary.LittleEndian.PutUint16(result[4:], 0x30)
	binary.LittleEndian.PutUint16(result[6:], testRecordSize/512+1)
	binary.LittleEndian.PutUint16(result[16:], 1)
	binary.LittleEndian.PutUint16(result[18:], 1)
	binary.LittleEndian.PutUint16(result[20:], 0x38)
	result[22] = self.flags
	binary.LittleEndian.PutUint32(result[28:], testRecordSize)
	binary.LittleEndian.PutUint32(result[44:], self.record_number)

	offset := 0x38
	for _, attr := range self.attributes {
		copy(result[offset:], attr)
		offset += len(attr)
	}
	binary.LittleEndian.PutUint32(result[offset:], ATTR_TYPE_END)
	binary.LittleEndian.PutUint32(result[24:], uint32(offset+8))

	if !self.fixups {
		binary.LittleEndian.PutUint16(result[6:], 0)
		return result
	}

	// Move the last two bytes of each stride into the update sequence
	// array and stamp the magic in their place.
	binary.LittleEndian.PutUint16(result[0x30:], 0xABCD)
	for i := 1; i <= testRecordSize/512; i++ {
		stride_end := i*512 - 2
		copy(result[0x30+2*i:], result[stride_end:stride_end+2])
		binary.LittleEndian.PutUint16(result[stride_end:], 0xABCD)
	}

	return result
}
