package parser

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// Reconstruct copies the content described by runs from the volume to
// out. Every run is read in chunk_size pieces and written verbatim,
// except that writing stops after exactly file_size bytes: the slack
// at the end of the last cluster is read but never written. Sparse
// runs produce zeros.
//
// Returns the number of bytes written, which is file_size on success.
func Reconstruct(reader io.ReaderAt, out io.Writer,
	runs []DataRun, file_size, cluster_size, chunk_size int64) (int64, error) {

	if cluster_size <= 0 {
		return 0, formatErrorf("invalid cluster size %d", cluster_size)
	}

	if file_size < 0 {
		return 0, formatErrorf("invalid file size %d", file_size)
	}

	if chunk_size <= 0 {
		chunk_size = DefaultChunkSize
	}

	err := CheckRunCoverage(runs, file_size, cluster_size)
	if err != nil {
		return 0, err
	}

	buffer := make([]byte, chunk_size)
	remaining := file_size
	written := int64(0)

	for idx, run := range runs {
		if remaining == 0 {
			break
		}

		run_length, err := runByteLength(run, cluster_size)
		if err != nil {
			return written, err
		}

		disk_offset := int64(0)
		if !run.IsSparse {
			if run.StartCluster < 0 || run.StartCluster > math.MaxInt64/cluster_size ||
				run.StartCluster*cluster_size > math.MaxInt64-run_length {
				return written, formatErrorf("run %d at cluster %d is outside the volume",
					idx, run.StartCluster)
			}
			disk_offset = run.StartCluster * cluster_size
		}

		Printf("Reconstruct run %d: %v -> disk offset %#x (%d bytes)\n",
			idx, run, disk_offset, run_length)

		for run_offset := int64(0); run_offset < run_length && remaining > 0; {
			to_read := CapInt64(chunk_size, run_length-run_offset)
			chunk := buffer[:to_read]

			if run.IsSparse {
				for i := range chunk {
					chunk[i] = 0
				}

			} else {
				n, err := reader.ReadAt(chunk, disk_offset+run_offset)
				if err != nil && !errors.Is(err, io.EOF) {
					return written, ioErrorf(err, "reading cluster data at %#x",
						disk_offset+run_offset)
				}

				if n < len(chunk) {
					return written, fmt.Errorf(
						"%w: cluster data at %#x: expected %d bytes, read %d",
						ShortReadError, disk_offset+run_offset, len(chunk), n)
				}
			}

			// Only the final chunk is ever truncated.
			to_write := CapInt64(to_read, remaining)

			n, err := out.Write(chunk[:to_write])
			written += int64(n)
			if err != nil {
				return written, ioErrorf(err, "writing output")
			}
			if int64(n) < to_write {
				return written, ioErrorf(io.ErrShortWrite, "writing output")
			}

			STATS.Add_ReconstructedBytes(to_write, run.IsSparse)

			remaining -= to_write
			run_offset += to_read
		}
	}

	return written, nil
}

// CheckRunCoverage makes sure the runs describe at least file_size
// bytes. A record whose run list continues in an extension record
// fails here rather than producing a truncated file.
func CheckRunCoverage(runs []DataRun, file_size, cluster_size int64) error {
	covered, err := RunsByteLength(runs, cluster_size)
	if err != nil {
		return err
	}

	if covered < file_size {
		return formatErrorf("run list covers %d bytes but the file is %d bytes",
			covered, file_size)
	}
	return nil
}

// ReconstructResident writes the inline content of a resident file.
func ReconstructResident(data []byte, out io.Writer) (int64, error) {
	n, err := out.Write(data)
	if err != nil {
		return int64(n), ioErrorf(err, "writing output")
	}

	STATS.Add_ReconstructedBytes(int64(n), false)
	return int64(n), nil
}

// RecoverToFile writes the content of file to a new file at path,
// truncating anything already there. The output file is always closed;
// on failure whatever was written so far is left in place.
func RecoverToFile(ntfs *NTFSContext, file *RecoveredFile, path string) (
	written int64, err error) {

	// Catch bad run lists before touching the filesystem.
	if !file.IsResident {
		err = CheckRunCoverage(file.Runs, file.Size, ntfs.ClusterSize)
		if err != nil {
			return 0, err
		}
	}

	out_fd, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, ioErrorf(err, "creating %v", path)
	}
	defer func() {
		close_err := out_fd.Close()
		if close_err != nil && err == nil {
			err = ioErrorf(close_err, "closing %v", path)
		}
	}()

	if file.IsResident {
		return ReconstructResident(file.ResidentData, out_fd)
	}

	return Reconstruct(ntfs.DiskReader, out_fd, file.Runs, file.Size,
		ntfs.ClusterSize, ntfs.ChunkSize())
}
