package parser

import (
	"encoding/json"
	"sync"

	"github.com/Velocidex/ordereddict"
)

var (
	STATS = Stats{}
)

type Stats struct {
	mu sync.Mutex

	FileRecord         int
	FixUpFileRecord    int
	Attribute          int
	FILE_NAME          int
	RunList            int
	Runs               int
	ReconstructedBytes int64
	SparseBytes        int64
}

func (self *Stats) DebugString() string {
	self.mu.Lock()
	defer self.mu.Unlock()

	serialized, _ := json.MarshalIndent(self, " ", " ")
	return string(serialized)
}

func (self *Stats) Dict() *ordereddict.Dict {
	self.mu.Lock()
	defer self.mu.Unlock()

	return ordereddict.NewDict().
		Set("FileRecord", self.FileRecord).
		Set("FixUpFileRecord", self.FixUpFileRecord).
		Set("Attribute", self.Attribute).
		Set("FILE_NAME", self.FILE_NAME).
		Set("RunList", self.RunList).
		Set("Runs", self.Runs).
		Set("ReconstructedBytes", self.ReconstructedBytes).
		Set("SparseBytes", self.SparseBytes)
}

func (self *Stats) Reset() {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.FileRecord = 0
	self.FixUpFileRecord = 0
	self.Attribute = 0
	self.FILE_NAME = 0
	self.RunList = 0
	self.Runs = 0
	self.ReconstructedBytes = 0
	self.SparseBytes = 0
}

func (self *Stats) Inc_FileRecord() {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.FileRecord++
}

func (self *Stats) Inc_FixUpFileRecord() {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.FixUpFileRecord++
}

func (self *Stats) Inc_Attribute() {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.Attribute++
}

func (self *Stats) Inc_FILE_NAME() {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.FILE_NAME++
}

func (self *Stats) Inc_RunList(runs int) {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.RunList++
	self.Runs += runs
}

func (self *Stats) Add_ReconstructedBytes(n int64, sparse bool) {
	self.mu.Lock()
	defer self.mu.Unlock()

	self.ReconstructedBytes += n
	if sparse {
		self.SparseBytes += n
	}
}
