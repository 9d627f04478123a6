package parser

import (
	"time"
)

// Number of 100ns intervals between 1601-01-01 and 1970-01-01.
const filetime_epoch_delta = 116444736000000000

// WinFileTime converts a windows FILETIME to UTC. A zero filetime is
// the zero time.Time.
func WinFileTime(filetime uint64) time.Time {
	if filetime == 0 {
		return time.Time{}
	}

	unix_100ns := int64(filetime) - filetime_epoch_delta
	return time.Unix(unix_100ns/10000000, (unix_100ns%10000000)*100).UTC()
}
