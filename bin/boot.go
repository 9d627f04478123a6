package main

import (
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
	"www.velocidex.com/golang/ntfs-recover/parser"
)

var (
	boot_command = app.Command(
		"boot", "inspect the partition table and boot record.")

	boot_command_file_arg = boot_command.Arg(
		"device", "The device or image file to inspect",
	).Required().File()

	boot_command_partition_arg = boot_command.Arg(
		"partition", "The partition number (1-4), or 0 for an unpartitioned volume",
	).Default("1").Int()

	boot_command_image_offset = boot_command.Flag(
		"image_offset", "The offset in the image to use.",
	).Int64()
)

func printPartitions(out io.Writer, partitions []*parser.Partition,
	sector_size int64) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Partition", "Type", "Bootable",
		"Start LBA", "Sectors", "Offset", "Size"})
	defer table.Render()

	for _, partition := range partitions {
		table.Append([]string{
			fmt.Sprintf("%d", partition.Index),
			fmt.Sprintf("%#02x", partition.Type),
			fmt.Sprintf("%v", partition.Bootable),
			fmt.Sprintf("%d", partition.StartLBA),
			fmt.Sprintf("%d", partition.SizeLBA),
			fmt.Sprintf("%#x", partition.StartOffset(sector_size)),
			fmt.Sprintf("%d", partition.SizeBytes(sector_size)),
		})
	}
}

func doBoot() {
	if *boot_command_partition_arg > 0 {
		partitions, err := parser.ParseMBR(&parser.OffsetReader{
			Offset: *boot_command_image_offset,
			Reader: getReader(*boot_command_file_arg),
		})
		kingpin.FatalIfError(err, "Partition table")

		config, err := loadConfig(*config_flag)
		kingpin.FatalIfError(err, "Config")

		printPartitions(os.Stdout, partitions, config.SectorSize)
	}

	ntfs_ctx, err := openVolume(*boot_command_file_arg,
		*boot_command_partition_arg, *boot_command_image_offset)
	kingpin.FatalIfError(err, "Can not open filesystem")
	defer ntfs_ctx.Close()

	if *verbose_flag {
		parser.Debug(ntfs_ctx.Boot)
	}
	fmt.Println(ntfs_ctx.Boot.DebugString())

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Field", "Value"})
	table.Append([]string{"Cluster size", fmt.Sprintf("%d", ntfs_ctx.ClusterSize)})
	table.Append([]string{"Record size", fmt.Sprintf("%d", ntfs_ctx.RecordSize)})
	table.Append([]string{"Clusters", fmt.Sprintf("%d", ntfs_ctx.Boot.BlockCount())})
	table.Append([]string{"$MFT offset", fmt.Sprintf("%#x", ntfs_ctx.MFTOffset)})
	table.Render()
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case "boot":
			doBoot()
		default:
			return false
		}
		return true
	})
}
