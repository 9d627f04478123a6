package parser

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runListTestCase struct {
	name    string
	encoded []byte
	runs    []Run
	out     []DataRun
}

var (
	RunListTestCases = []runListTestCase{
		{
			name:    "single run",
			encoded: []byte{0x11, 0x18, 0x64, 0x00},
			runs:    []Run{{100, 24, false}},
			out:     []DataRun{{100, 24, false}},
		},
		{
			// Second run goes backwards: 0xF0 is -16.
			name: "negative offset",
			encoded: []byte{
				0x21, 0x10, 0x00, 0x01,
				0x11, 0x08, 0xF0,
				0x00},
			runs: []Run{{256, 16, false}, {-16, 8, false}},
			out:  []DataRun{{256, 16, false}, {240, 8, false}},
		},
		{
			// A sparse run in the middle does not move the
			// current cluster.
			name: "sparse",
			encoded: []byte{
				0x11, 0x04, 0x20,
				0x01, 0x10,
				0x11, 0x02, 0x08,
				0x00},
			runs: []Run{{32, 4, false}, {0, 16, true}, {8, 2, false}},
			out:  []DataRun{{32, 4, false}, {0, 16, true}, {40, 2, false}},
		},
		{
			// 0x80 in a one byte offset field is negative so the
			// encoder must use two bytes for +128.
			name: "sign bit",
			encoded: []byte{
				0x21, 0x01, 0x80, 0x00,
				0x00},
			runs: []Run{{128, 1, false}},
			out:  []DataRun{{128, 1, false}},
		},
		{
			name: "wide fields",
			encoded: []byte{
				0x32, 0x00, 0x01, 0x56, 0x34, 0x12,
				0x00},
			runs: []Run{{0x123456, 256, false}},
			out:  []DataRun{{0x123456, 256, false}},
		},
	}
)

func TestDecodeRunList(t *testing.T) {
	for _, testcase := range RunListTestCases {
		runs, err := DecodeRunList(testcase.encoded)
		require.NoError(t, err, testcase.name)
		assert.Equal(t, testcase.runs, runs, testcase.name)

		data_runs, err := MakeDataRuns(runs)
		require.NoError(t, err, testcase.name)
		assert.Equal(t, testcase.out, data_runs, testcase.name)
	}
}

func TestEncodeRunList(t *testing.T) {
	for _, testcase := range RunListTestCases {
		assert.Equal(t, testcase.encoded, EncodeRunList(testcase.out),
			testcase.name)
	}
}

func TestDecodeRunListTermination(t *testing.T) {
	// Anything after the terminator is ignored.
	runs, err := DecodeRunList([]byte{0x11, 0x18, 0x64, 0x00, 0xFF, 0xFF})
	require.NoError(t, err)
	assert.Equal(t, []Run{{100, 24, false}}, runs)

	// Running off the end of the attribute also ends the list.
	runs, err = DecodeRunList([]byte{0x11, 0x18, 0x64})
	require.NoError(t, err)
	assert.Equal(t, []Run{{100, 24, false}}, runs)

	runs, err = DecodeRunList(nil)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestDecodeRunListErrors(t *testing.T) {
	// Header claims 4 bytes of offset but only 1 remains.
	_, err := DecodeRunList([]byte{0x41, 0x18, 0x64})
	assert.ErrorIs(t, err, FormatError)

	// Field wider than 8 bytes.
	_, err = DecodeRunList([]byte{0x19, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1})
	assert.ErrorIs(t, err, FormatError)

	// A first run cannot go below cluster 0.
	runs, err := DecodeRunList([]byte{0x11, 0x01, 0xF0, 0x00})
	require.NoError(t, err)

	_, err = MakeDataRuns(runs)
	assert.ErrorIs(t, err, FormatError)
}

// Random run lists survive an encode/decode cycle.
func TestRunListRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 200; i++ {
		runs := []DataRun{}
		count := 1 + rng.Intn(10)
		for j := 0; j < count; j++ {
			if rng.Intn(5) == 0 {
				runs = append(runs, DataRun{
					LengthClusters: uint64(1 + rng.Intn(1000)),
					IsSparse:       true,
				})
				continue
			}

			runs = append(runs, DataRun{
				StartCluster:   rng.Int63n(1 << 40),
				LengthClusters: uint64(1 + rng.Int63n(1<<32)),
			})
		}

		decoded, err := DecodeRunList(EncodeRunList(runs))
		require.NoError(t, err)

		data_runs, err := MakeDataRuns(decoded)
		require.NoError(t, err)
		assert.Equal(t, runs, data_runs)
	}
}

func TestRunsByteLength(t *testing.T) {
	length, err := RunsByteLength([]DataRun{
		{100, 2, false}, {0, 3, true}}, 4096)
	require.NoError(t, err)
	assert.Equal(t, int64(5*4096), length)

	_, err = RunsByteLength([]DataRun{{0, 1 << 62, false}}, 4096)
	assert.ErrorIs(t, err, FormatError)

	assert.Equal(t, "Cluster 100 (Length 2)", DataRun{100, 2, false}.String())
	assert.Equal(t, "Sparse (Length 3)", DataRun{0, 3, true}.String())
}
