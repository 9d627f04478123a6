package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"www.velocidex.com/golang/ntfs-recover/parser"
)

func TestSummaryJSON(t *testing.T) {
	parser.STATS.Reset()
	parser.STATS.Inc_FileRecord()
	parser.STATS.Add_ReconstructedBytes(4096, false)

	file := &parser.RecoveredFile{
		RecordNumber: 40,
		Name:         "report.docx",
		Size:         4000,
		Runs:         []parser.DataRun{{StartCluster: 100, LengthClusters: 1}},
	}

	serialized, err := summaryJSON(file)
	require.NoError(t, err)

	result := make(map[string]map[string]interface{})
	require.NoError(t, json.Unmarshal(serialized, &result))

	assert.Equal(t, "report.docx", result["File"]["Name"])
	assert.Equal(t, float64(4000), result["File"]["Size"])
	assert.Equal(t, float64(1), result["Stats"]["FileRecord"])
	assert.Equal(t, float64(4096), result["Stats"]["ReconstructedBytes"])
}
