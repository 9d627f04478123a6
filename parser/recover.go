package parser

import "fmt"

// GetRecoveredFile decodes MFT entry number entry into a RecoveredFile.
func GetRecoveredFile(ntfs *NTFSContext, entry int64) (*RecoveredFile, error) {
	record, err := ntfs.GetRecord(entry)
	if err != nil {
		return nil, err
	}

	result, err := NewRecoveredFile(record)
	if err != nil {
		return nil, fmt.Errorf("MFT entry %d: %w", entry, err)
	}
	return result, nil
}

// NewRecoveredFile runs the decode pipeline over a loaded record. An
// unknown allocation status is recorded but does not fail the decode.
func NewRecoveredFile(record *FileRecord) (*RecoveredFile, error) {
	result := &RecoveredFile{
		RecordNumber: record.RecordNumber(),
		RecordOffset: record.Offset,
		Allocation:   record.AllocationStatus(),
	}

	if !result.Allocation.IsKnown() {
		DebugPrint("Record at %#x has unknown allocation status %#x\n",
			record.Offset, record.Flags())
	}

	file_names, err := record.FileNames()
	if err != nil {
		return nil, err
	}

	preferred := PreferredFileName(file_names)
	result.Name = preferred.Name
	result.NameType = preferred.NameTypeName()
	result.ParentReference = preferred.ParentReference
	result.Times = preferred.Times

	for _, file_name := range file_names {
		if file_name != preferred && file_name.Name != preferred.Name {
			result.ExtraNames = append(result.ExtraNames, file_name.Name)
		}
	}

	data, err := record.DataAttribute()
	if err != nil {
		return nil, err
	}

	flags := data.Flags()
	if flags.IsCompressed() {
		return nil, unsupportedErrorf("compressed $DATA attribute")
	}

	if flags.IsEncrypted() {
		return nil, unsupportedErrorf("encrypted $DATA attribute")
	}

	if data.IsResident() {
		content, err := data.Content()
		if err != nil {
			return nil, err
		}

		result.IsResident = true
		result.ResidentData = append([]byte{}, content...)
		result.Size = int64(len(content))
		return result, nil
	}

	header, err := data.NonResident()
	if err != nil {
		return nil, err
	}

	// Files with a huge number of fragments continue their run list
	// in extension records reachable only through $ATTRIBUTE_LIST.
	if header.RunlistVcnStart != 0 {
		return nil, unsupportedErrorf(
			"$DATA attribute starts at VCN %d (attribute list continuation)",
			header.RunlistVcnStart)
	}

	result.Size, err = data.DataSize()
	if err != nil {
		return nil, err
	}

	runs, err := data.RunList()
	if err != nil {
		return nil, err
	}

	result.Runs, err = MakeDataRuns(runs)
	if err != nil {
		return nil, err
	}

	return result, nil
}
