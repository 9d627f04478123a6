package parser

import (
	"fmt"
	"time"

	"github.com/Velocidex/ordereddict"
)

// This file defines the model of a file being recovered.

type TimeStamps struct {
	CreateTime       time.Time
	FileModifiedTime time.Time
	MFTModifiedTime  time.Time
	AccessedTime     time.Time
}

// RecoveredFile is everything needed to rebuild a file's content. It
// holds its own copies of the name, runs and resident data so the
// record buffer it was decoded from can be dropped.
type RecoveredFile struct {
	RecordNumber uint32
	RecordOffset int64

	Allocation AllocationStatus

	Name            string
	NameType        string
	ParentReference uint64
	Times           TimeStamps

	// Other names the record carries (e.g. the DOS 8.3 name).
	ExtraNames []string

	// Logical size of the file in bytes.
	Size int64

	IsResident   bool
	ResidentData []byte

	Runs []DataRun
}

// AllocatedClusters is the total number of clusters in the run list.
func (self *RecoveredFile) AllocatedClusters() uint64 {
	result := uint64(0)
	for _, run := range self.Runs {
		result += run.LengthClusters
	}
	return result
}

func (self *RecoveredFile) Summary() *ordereddict.Dict {
	runs := make([]string, 0, len(self.Runs))
	for _, run := range self.Runs {
		runs = append(runs, run.String())
	}

	return ordereddict.NewDict().
		Set("RecordNumber", self.RecordNumber).
		Set("RecordOffset", self.RecordOffset).
		Set("Allocation", self.Allocation.String()).
		Set("Name", self.Name).
		Set("NameType", self.NameType).
		Set("ExtraNames", self.ExtraNames).
		Set("ParentReference", self.ParentReference).
		Set("Created", self.Times.CreateTime).
		Set("Modified", self.Times.FileModifiedTime).
		Set("Size", self.Size).
		Set("IsResident", self.IsResident).
		Set("Runs", runs)
}

func (self *RecoveredFile) DebugString() string {
	result := fmt.Sprintf("RecoveredFile %v (entry %d @ %#x):\n",
		self.Name, self.RecordNumber, self.RecordOffset)
	result += fmt.Sprintf("  Allocation: %v\n", self.Allocation)
	result += fmt.Sprintf("  Size: %d\n", self.Size)
	result += fmt.Sprintf("  Resident: %v\n", self.IsResident)
	for idx, run := range self.Runs {
		result += fmt.Sprintf("  Run %d: %v\n", idx, run)
	}
	return result
}
