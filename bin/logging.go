package main

import (
	"go.uber.org/zap"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
	"www.velocidex.com/golang/ntfs-recover/parser"
)

// Logger is replaced by initLogging() once flags are parsed.
var Logger = zap.NewNop()

func initLogging(verbose bool) {
	lc := zap.NewDevelopmentConfig()
	lc.EncoderConfig.TimeKey = ""
	lc.Level = zap.NewAtomicLevelAt(zap.InfoLevel)

	if verbose {
		lc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		parser.SetDebug(true)
	}

	logger, err := lc.Build()
	kingpin.FatalIfError(err, "Logging")

	Logger = logger
}
