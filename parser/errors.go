package parser

import (
	"errors"
	"fmt"
)

// Error kinds reported by the recovery pipeline. Specific failures
// wrap one of these so callers can test with errors.Is().
var (
	IOError              = errors.New("IOError")
	ShortReadError       = errors.New("ShortReadError")
	MalformedRecordError = errors.New("MalformedRecordError")
	FormatError          = errors.New("FormatError")
	UnsupportedFeature   = errors.New("UnsupportedFeature")

	ErrNoFileName      = fmt.Errorf("%w: no $FILE_NAME attribute", FormatError)
	ErrNoDataAttribute = fmt.Errorf("%w: no $DATA attribute", FormatError)
)

func formatErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", FormatError, fmt.Sprintf(format, args...))
}

func malformedErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", MalformedRecordError, fmt.Sprintf(format, args...))
}

func unsupportedErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", UnsupportedFeature, fmt.Sprintf(format, args...))
}

// Wrap an underlying I/O failure so it matches both IOError and the
// original error.
func ioErrorf(err error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s: %w", IOError, fmt.Sprintf(format, args...), err)
}
