package parser

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/davecgh/go-spew/spew"
)

var (
	debug_mu sync.Mutex
	debug    = false

	NTFS_DEBUG *bool
)

// SetDebug turns on the parser's debug output regardless of the
// NTFS_DEBUG environment variable.
func SetDebug(value bool) {
	debug_mu.Lock()
	defer debug_mu.Unlock()

	debug = value
	NTFS_DEBUG = &value
}

func Debug(arg interface{}) {
	spew.Dump(arg)
}

type Debugger interface {
	DebugString() string
}

func DebugString(arg interface{}, indent string) string {
	debugger, ok := arg.(Debugger)
	if isDebug() && ok {
		lines := strings.Split(debugger.DebugString(), "\n")
		for idx, line := range lines {
			lines[idx] = indent + line
		}
		return strings.Join(lines, "\n")
	}

	return ""
}

func Printf(fmt_str string, args ...interface{}) {
	if isDebug() {
		fmt.Printf(fmt_str, args...)
	}
}

func DebugPrint(fmt_str string, v ...interface{}) {
	if isDebug() {
		fmt.Printf(fmt_str, v...)
	}
}

func isDebug() bool {
	debug_mu.Lock()
	defer debug_mu.Unlock()

	if NTFS_DEBUG == nil {
		// os.Environ() is expensive so we only look once.
		value := false
		for _, x := range os.Environ() {
			if strings.HasPrefix(x, "NTFS_DEBUG=") {
				value = true
				break
			}
		}
		NTFS_DEBUG = &value
	}

	return debug || *NTFS_DEBUG
}
