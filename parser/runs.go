package parser

import (
	"fmt"
	"math"
)

// A Run is one run list entry as it is encoded on disk. The offset is
// relative to the start of the previous non-sparse run.
type Run struct {
	RelativeOffset int64
	Length         uint64

	// The entry had no offset field and has no backing clusters.
	IsSparse bool
}

// A DataRun is a run resolved to an absolute cluster number.
type DataRun struct {
	StartCluster   int64
	LengthClusters uint64
	IsSparse       bool
}

func (self DataRun) String() string {
	if self.IsSparse {
		return fmt.Sprintf("Sparse (Length %d)", self.LengthClusters)
	}
	return fmt.Sprintf("Cluster %d (Length %d)", self.StartCluster, self.LengthClusters)
}

// DecodeRunList decodes the run list encoding. Each entry starts with
// a header byte: the low nibble is the size of the length field and
// the high nibble the size of the offset field. The length is little
// endian unsigned, the offset little endian two's complement. A zero
// header (or the end of the buffer) terminates the list.
func DecodeRunList(buffer []byte) ([]Run, error) {
	result := []Run{}

	for offset := 0; offset < len(buffer); {
		header := buffer[offset]
		if header == 0 {
			break
		}

		length_size := int(header & 0xF)
		offset_size := int(header >> 4)
		if length_size > 8 || offset_size > 8 {
			return nil, formatErrorf(
				"run header %#02x at %d has field wider than 8 bytes",
				header, offset)
		}

		if offset+1+length_size+offset_size > len(buffer) {
			return nil, formatErrorf(
				"run at %d (header %#02x) overruns the %d byte run list",
				offset, header, len(buffer))
		}
		offset++

		length := uint64(0)
		for i := 0; i < length_size; i++ {
			length |= uint64(buffer[offset+i]) << (8 * i)
		}
		offset += length_size

		relative_offset := int64(0)
		if offset_size > 0 {
			value := uint64(0)
			for i := 0; i < offset_size; i++ {
				value |= uint64(buffer[offset+i]) << (8 * i)
			}

			// Sign extend from the top bit of the field.
			shift := uint(64 - 8*offset_size)
			relative_offset = int64(value<<shift) >> shift
		}
		offset += offset_size

		result = append(result, Run{
			RelativeOffset: relative_offset,
			Length:         length,
			IsSparse:       offset_size == 0,
		})
	}

	STATS.Inc_RunList(len(result))

	return result, nil
}

// MakeDataRuns converts the relative run list into absolute runs. Sparse
// runs do not move the running cluster position.
func MakeDataRuns(runs []Run) ([]DataRun, error) {
	result := make([]DataRun, 0, len(runs))
	current := int64(0)

	for idx, run := range runs {
		if run.IsSparse {
			result = append(result, DataRun{
				LengthClusters: run.Length,
				IsSparse:       true,
			})
			continue
		}

		if (run.RelativeOffset > 0 && current > math.MaxInt64-run.RelativeOffset) ||
			current+run.RelativeOffset < 0 {
			return nil, formatErrorf(
				"run %d moves to invalid cluster (%d%+d)",
				idx, current, run.RelativeOffset)
		}
		current += run.RelativeOffset

		result = append(result, DataRun{
			StartCluster:   current,
			LengthClusters: run.Length,
		})
	}

	return result, nil
}

// EncodeRunList produces the minimal encoding of runs, terminated by
// a zero header.
func EncodeRunList(runs []DataRun) []byte {
	result := []byte{}
	previous := int64(0)

	for _, run := range runs {
		length_size := unsignedSize(run.LengthClusters)

		offset_size := 0
		delta := int64(0)
		if !run.IsSparse {
			delta = run.StartCluster - previous
			offset_size = signedSize(delta)
			previous = run.StartCluster
		}

		result = append(result, byte(offset_size<<4|length_size))
		for i := 0; i < length_size; i++ {
			result = append(result, byte(run.LengthClusters>>(8*i)))
		}
		for i := 0; i < offset_size; i++ {
			result = append(result, byte(uint64(delta)>>(8*i)))
		}
	}

	return append(result, 0)
}

func unsignedSize(value uint64) int {
	for size := 1; size < 8; size++ {
		if value < 1<<(8*size) {
			return size
		}
	}
	return 8
}

func signedSize(value int64) int {
	for size := 1; size < 8; size++ {
		limit := int64(1) << (8*size - 1)
		if value >= -limit && value < limit {
			return size
		}
	}
	return 8
}

// RunsByteLength is the number of bytes covered by the runs.
func RunsByteLength(runs []DataRun, cluster_size int64) (int64, error) {
	result := int64(0)
	for _, run := range runs {
		length, err := runByteLength(run, cluster_size)
		if err != nil {
			return 0, err
		}

		if result > math.MaxInt64-length {
			return 0, formatErrorf("run list length overflows")
		}
		result += length
	}
	return result, nil
}

func runByteLength(run DataRun, cluster_size int64) (int64, error) {
	if cluster_size <= 0 {
		return 0, formatErrorf("invalid cluster size %d", cluster_size)
	}

	if run.LengthClusters > uint64(math.MaxInt64/cluster_size) {
		return 0, formatErrorf("run of %d clusters is too long", run.LengthClusters)
	}
	return int64(run.LengthClusters) * cluster_size, nil
}
