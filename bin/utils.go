package main

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
	"www.velocidex.com/golang/ntfs-recover/parser"
)

func getReader(reader io.ReaderAt) io.ReaderAt {
	if *record_directory == "" {
		return reader
	}

	// Create a recorder
	parser.Printf("Will record to dir %v\n", *record_directory)
	recorder, err := parser.NewRecorder(*record_directory, reader)
	kingpin.FatalIfError(err, "Recorder")

	return recorder
}

// openVolume opens the NTFS volume in partition of device. Partition
// 0 means the device (starting at image_offset) is the volume itself
// rather than a partitioned disk.
func openVolume(device *os.File, partition int, image_offset int64) (
	*parser.NTFSContext, error) {
	config, err := loadConfig(*config_flag)
	if err != nil {
		return nil, err
	}

	paged_reader, err := parser.NewPagedReader(
		getReader(device), config.PageSize, config.CacheSize)
	if err != nil {
		return nil, err
	}

	var reader io.ReaderAt = paged_reader
	if image_offset != 0 {
		reader = &parser.OffsetReader{
			Offset: image_offset,
			Reader: paged_reader,
		}
	}

	volume_offset := int64(0)
	if partition > 0 {
		volume_offset, err = parser.FindPartitionOffset(
			reader, partition, config.SectorSize)
		if err != nil {
			return nil, err
		}
	}

	Logger.Debug("Opening volume",
		zap.String("device", device.Name()),
		zap.Int("partition", partition),
		zap.Int64("image_offset", image_offset),
		zap.Int64("volume_offset", volume_offset))

	ntfs_ctx, err := parser.GetNTFSContext(reader, volume_offset, config)
	if err != nil {
		return nil, err
	}

	Logger.Debug("Opened NTFS volume",
		zap.Int64("cluster_size", ntfs_ctx.ClusterSize),
		zap.Int64("record_size", ntfs_ctx.RecordSize),
		zap.Int64("mft_offset", ntfs_ctx.MFTOffset))

	return ntfs_ctx, nil
}

func printStats() {
	if *verbose_flag {
		fmt.Println(parser.STATS.DebugString())
	}
}
