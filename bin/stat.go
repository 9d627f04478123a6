package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Velocidex/ordereddict"
	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
	"www.velocidex.com/golang/ntfs-recover/parser"
)

var (
	stat_command = app.Command(
		"stat", "inspect the MFT record.")

	stat_command_file_arg = stat_command.Arg(
		"device", "The device or image file to inspect",
	).Required().File()

	stat_command_partition_arg = stat_command.Arg(
		"partition", "The partition number (1-4), or 0 for an unpartitioned volume",
	).Required().Int()

	stat_command_entry_arg = stat_command.Arg(
		"entry", "The MFT entry number to inspect",
	).Required().Int64()

	stat_command_image_offset = stat_command.Flag(
		"image_offset", "The offset in the image to use.",
	).Int64()

	stat_command_json = stat_command.Flag(
		"json", "Emit the file summary as JSON").Bool()
)

func printAttributes(out io.Writer, record *parser.FileRecord) error {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{
		"Offset",
		"Type",
		"Name",
		"Resident",
		"Length",
		"Size",
	})
	table.SetCaption(true, fmt.Sprintf(
		"Attributes of record at %#x", record.Offset))
	defer table.Render()

	scanner := record.Attributes()
	for scanner.Next() {
		attr := scanner.Attribute()
		if *verbose_flag {
			fmt.Fprintln(out, attr.DebugString())
		}

		name, _ := attr.Name()
		size, _ := attr.DataSize()

		table.Append([]string{
			fmt.Sprintf("%#x", attr.Offset),
			attr.TypeName(),
			name,
			fmt.Sprintf("%v", attr.IsResident()),
			fmt.Sprintf("%d", attr.Length()),
			fmt.Sprintf("%d", size),
		})
	}

	return scanner.Err()
}

func printSummary(out io.Writer, file *parser.RecoveredFile) {
	summary := file.Summary()

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Field", "Value"})
	table.SetAutoWrapText(false)
	defer table.Render()

	for _, key := range summary.Keys() {
		value, _ := summary.Get(key)
		table.Append([]string{key, fmt.Sprintf("%v", value)})
	}
}

// The JSON report carries the decoded file and the parser counters
// gathered while decoding it.
func summaryJSON(file *parser.RecoveredFile) ([]byte, error) {
	result := ordereddict.NewDict().
		Set("File", file.Summary()).
		Set("Stats", parser.STATS.Dict())

	return json.MarshalIndent(result, " ", " ")
}

func doSTAT() {
	ntfs_ctx, err := openVolume(*stat_command_file_arg,
		*stat_command_partition_arg, *stat_command_image_offset)
	kingpin.FatalIfError(err, "Can not open filesystem")
	defer ntfs_ctx.Close()

	record, err := ntfs_ctx.GetRecord(*stat_command_entry_arg)
	kingpin.FatalIfError(err, "Can not load MFT entry")

	file, err := parser.NewRecoveredFile(record)
	if *stat_command_json {
		kingpin.FatalIfError(err, "Can not decode MFT entry")

		serialized, err := summaryJSON(file)
		kingpin.FatalIfError(err, "Marshal")

		fmt.Println(string(serialized))
		return
	}

	if *verbose_flag {
		fmt.Println(record.DebugString())
	}

	// Show as much of a damaged record as we can.
	attr_err := printAttributes(os.Stdout, record)
	if attr_err != nil {
		Logger.Warn("Attribute list is damaged",
			zap.Int64("entry", *stat_command_entry_arg),
			zap.Error(attr_err))
	}

	kingpin.FatalIfError(err, "Can not decode MFT entry")
	printSummary(os.Stdout, file)
	printStats()
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case "stat":
			doSTAT()
		default:
			return false
		}
		return true
	})
}
