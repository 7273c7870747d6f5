package dispatch_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/camac-tools/camacdaq/internal/capture"
	"github.com/camac-tools/camacdaq/internal/cratecfg"
	"github.com/camac-tools/camacdaq/internal/dispatch"
	"github.com/camac-tools/camacdaq/internal/scan"
	"github.com/camac-tools/camacdaq/pkg/types"
)

const benchCrateCfg = `* bench crate
QVT   1 1 2   LeCroy qVt
GATE  1 1 9   gate generator
`

// TestAcquisitionSessionFlow walks the full operator path against the
// simulated crate: load the crate map, open a session, run named
// operations, sweep the crate, and capture samples to CSV.
func TestAcquisitionSessionFlow(t *testing.T) {
	crateMap := cratecfg.Parse(benchCrateCfg)
	require.Len(t, crateMap, 2)

	d, err := dispatch.New(types.Config{Mode: types.ModeMock}, crateMap)
	require.NoError(t, err)
	require.NoError(t, d.Open())
	defer d.Close()
	require.Equal(t, types.ModeMock, d.Mode())

	// Write then read back, with the module name in either case.
	word := uint32(0xBEEF)
	res, err := d.Run("qvt", 0, 16, &word)
	require.NoError(t, err)
	require.True(t, res.Q)

	res, err = d.Run("QVT", 0, 0, nil)
	require.NoError(t, err)
	require.Equal(t, uint32(0xBEEF), res.Data)

	// Control-class operations carry no data word.
	res, err = d.Run("GATE", 0, 9, nil)
	require.NoError(t, err)
	require.True(t, res.Q)
	require.Zero(t, res.Data)

	// The sweep finds the two occupied stations on every subaddress and
	// nothing else.
	hits, err := scan.Run(d, scan.Options{})
	require.NoError(t, err)
	require.Len(t, hits, 32)
	require.Equal(t, 2, hits[0].Station)
	require.Equal(t, 9, hits[16].Station)

	// One capture cycle across both modules lands in the CSV.
	targets, err := capture.ParseTargets("QVT:0:0;GATE:0:0")
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := capture.Run(d, targets, capture.Options{Count: 1}, capture.NewCSVRecorder(&buf))
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Contains(t, buf.String(), "QVT")
	require.Contains(t, buf.String(), "GATE")
}
