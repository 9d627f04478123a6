package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
	"www.velocidex.com/golang/ntfs-recover/parser"
)

var (
	runs_command = app.Command(
		"runs", "Display the data runs of a file.")

	runs_command_file_arg = runs_command.Arg(
		"device", "The device or image file to inspect",
	).Required().File()

	runs_command_partition_arg = runs_command.Arg(
		"partition", "The partition number (1-4), or 0 for an unpartitioned volume",
	).Required().Int()

	runs_command_entry_arg = runs_command.Arg(
		"entry", "The MFT entry number to inspect",
	).Required().Int64()

	runs_command_image_offset = runs_command.Flag(
		"image_offset", "The offset in the image to use.",
	).Int64()

	runs_command_encode = runs_command.Flag(
		"encode", "Also show the run list re-encoded as hex.",
	).Bool()
)

func doRuns() {
	ntfs_ctx, err := openVolume(*runs_command_file_arg,
		*runs_command_partition_arg, *runs_command_image_offset)
	kingpin.FatalIfError(err, "Can not open filesystem")
	defer ntfs_ctx.Close()

	file, err := parser.GetRecoveredFile(ntfs_ctx, *runs_command_entry_arg)
	kingpin.FatalIfError(err, "Can not decode MFT entry")

	if file.IsResident {
		fmt.Printf("%v is resident (%d bytes), it has no runs.\n",
			file.Name, file.Size)
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{
		"Run",
		"Start Cluster",
		"Clusters",
		"Disk Offset",
		"File Offset",
		"Sparse",
	})
	table.SetCaption(true, fmt.Sprintf(
		"%v: %d bytes in %d clusters", file.Name, file.Size,
		file.AllocatedClusters()))

	file_offset := int64(0)
	for idx, run := range file.Runs {
		disk_offset := ""
		if !run.IsSparse {
			disk_offset = fmt.Sprintf("%#x", run.StartCluster*ntfs_ctx.ClusterSize)
		}

		table.Append([]string{
			fmt.Sprintf("%d", idx),
			fmt.Sprintf("%d", run.StartCluster),
			fmt.Sprintf("%d", run.LengthClusters),
			disk_offset,
			fmt.Sprintf("%#x", file_offset),
			fmt.Sprintf("%v", run.IsSparse),
		})

		file_offset += int64(run.LengthClusters) * ntfs_ctx.ClusterSize
	}
	table.Render()

	if *runs_command_encode {
		fmt.Println(hex.Dump(parser.EncodeRunList(file.Runs)))
	}
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case "runs":
			doRuns()
		default:
			return false
		}
		return true
	})
}
