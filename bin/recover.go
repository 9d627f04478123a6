package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
	"www.velocidex.com/golang/ntfs-recover/parser"
)

var (
	recover_command = app.Command(
		"recover", "Recover a file by its MFT entry number.")

	recover_command_file_arg = recover_command.Arg(
		"device", "The device or image file to recover from",
	).Required().File()

	recover_command_partition_arg = recover_command.Arg(
		"partition", "The partition number (1-4), or 0 for an unpartitioned volume",
	).Required().Int()

	recover_command_entry_arg = recover_command.Arg(
		"entry", "The MFT entry number of the file",
	).Required().Int64()

	recover_command_image_offset = recover_command.Flag(
		"image_offset", "The offset in the image to use.",
	).Int64()

	recover_command_out = recover_command.Flag(
		"out", "Directory to write the recovered file into.",
	).Default(".").String()

	recover_command_yes = recover_command.Flag(
		"yes", "Recover without asking for confirmation.",
	).Short('y').Bool()
)

const recover_prompt = "Would you like to recover the file? (Y/n): "

// confirmRecovery asks the user before writing anything. Only an
// explicit y or Y proceeds.
func confirmRecovery(in io.Reader, out io.Writer) bool {
	fmt.Fprint(out, recover_prompt)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}

	answer := strings.TrimSpace(line)
	return answer == "y" || answer == "Y"
}

// printRecoveredFile reports addresses on the device. image_offset is
// where the disk starts within the device.
func printRecoveredFile(out io.Writer, ntfs_ctx *parser.NTFSContext,
	image_offset int64, entry int64, file *parser.RecoveredFile) {
	volume_start := image_offset + ntfs_ctx.VolumeOffset
	fmt.Fprintf(out, "The MFT starts at address %#x\n",
		volume_start+ntfs_ctx.MFTOffset)
	fmt.Fprintf(out, "Entry %d starts at address %#x\n",
		entry, volume_start+file.RecordOffset)
	fmt.Fprintf(out, "Allocation: %v\n", file.Allocation)
	fmt.Fprintf(out, "File Name: %v\n", file.Name)
	fmt.Fprintf(out, "File Size: %d B\n", file.Size)
	for idx, run := range file.Runs {
		fmt.Fprintf(out, "Run %d: %v\n", idx, run)
	}
}

func doRecover() {
	ntfs_ctx, err := openVolume(*recover_command_file_arg,
		*recover_command_partition_arg, *recover_command_image_offset)
	kingpin.FatalIfError(err, "Can not open filesystem")
	defer ntfs_ctx.Close()

	entry := *recover_command_entry_arg
	file, err := parser.GetRecoveredFile(ntfs_ctx, entry)
	kingpin.FatalIfError(err, "Can not decode MFT entry %d", entry)

	printRecoveredFile(os.Stdout, ntfs_ctx,
		*recover_command_image_offset, entry, file)

	if !*recover_command_yes && !confirmRecovery(os.Stdin, os.Stdout) {
		Logger.Info("Recovery cancelled", zap.Int64("entry", entry))
		return
	}

	out_path := filepath.Join(*recover_command_out,
		parser.SanitizeFileName(file.Name))

	Logger.Info("Beginning file recovery",
		zap.Int64("entry", entry),
		zap.Int64("record_offset", file.RecordOffset),
		zap.Int("runs", len(file.Runs)),
		zap.String("path", out_path))

	written, err := parser.RecoverToFile(ntfs_ctx, file, out_path)
	kingpin.FatalIfError(err, "Can not recover %v", out_path)

	Logger.Info("File recovery finished",
		zap.String("path", out_path),
		zap.Int64("bytes_written", written))

	printStats()
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case "recover":
			doRecover()
		default:
			return false
		}
		return true
	})
}
