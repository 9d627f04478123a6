package parser

import (
	"strings"
)

// SanitizeFileName turns a name decoded from disk into something safe
// to create inside the output directory.
func SanitizeFileName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, name)

	switch name {
	case "":
		return "_"
	case ".", "..":
		return "_" + name
	}
	return name
}

func CapInt64(v int64, max int64) int64 {
	if v > max {
		return max
	}
	return v
}
