package parser

// AllocationStatus is the low byte of the record header flags: bit 0
// is "in use", bit 1 is "directory".
type AllocationStatus int

const (
	DeletedFile AllocationStatus = iota
	AllocatedFile
	DeletedDirectory
	AllocatedDirectory
	UnknownAllocationStatus
)

const allocation_status_offset = 0x16

func (self *FileRecord) AllocationStatus() AllocationStatus {
	return AllocationStatusFromByte(self.buffer[allocation_status_offset])
}

// AllocationStatusFromByte maps the raw header byte. Values outside
// the four known states are reported as UnknownAllocationStatus; this
// is informational only and does not stop recovery.
func AllocationStatusFromByte(value byte) AllocationStatus {
	switch value {
	case 0x00:
		return DeletedFile
	case 0x01:
		return AllocatedFile
	case 0x02:
		return DeletedDirectory
	case 0x03:
		return AllocatedDirectory
	}
	return UnknownAllocationStatus
}

func (self AllocationStatus) IsDeleted() bool {
	return self == DeletedFile || self == DeletedDirectory
}

func (self AllocationStatus) IsDirectory() bool {
	return self == DeletedDirectory || self == AllocatedDirectory
}

func (self AllocationStatus) IsKnown() bool {
	return self != UnknownAllocationStatus
}

func (self AllocationStatus) String() string {
	switch self {
	case DeletedFile:
		return "File that is deleted"
	case AllocatedFile:
		return "File that is in use"
	case DeletedDirectory:
		return "Directory that is deleted"
	case AllocatedDirectory:
		return "Directory that is in use"
	}
	return "Unknown allocation status"
}
