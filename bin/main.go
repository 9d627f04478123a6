package main

import (
	"os"

	kingpin "gopkg.in/alecthomas/kingpin.v2"
)

type CommandHandler func(command string) bool

var (
	app = kingpin.New("ntfsrecover",
		"A tool for recovering files from ntfs volumes by MFT entry.")

	verbose_flag = app.Flag(
		"verbose", "Show verbose information and parser debug output.").Bool()

	config_flag = app.Flag(
		"config", "Configuration file (yaml, json or toml).").String()

	record_directory = app.Flag(
		"record", "Path to read/write recorded data").
		Default("").String()

	command_handlers []CommandHandler
)

func main() {
	app.HelpFlag.Short('h')
	app.UsageTemplate(kingpin.CompactUsageTemplate)
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	initLogging(*verbose_flag)
	defer Logger.Sync()

	for _, command_handler := range command_handlers {
		if command_handler(command) {
			break
		}
	}
}
