package zonestats

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildKeysFixture(t *testing.T) []byte {
	t.Helper()
	buf := make([]byte, gridLongitudes*gridColats*4)
	k := 0
	for i := 0; i < gridColats; i++ {
		for j := 0; j < gridLongitudes; j++ {
			var v int32 = -2
			if i == 0 && j == 0 {
				v = 3 // decodes to index 1
			}
			binary.LittleEndian.PutUint32(buf[k*4:k*4+4], uint32(v))
			k++
		}
	}
	return buf
}

func buildStatsFixture(t *testing.T, numCells int) []byte {
	t.Helper()
	buf := make([]byte, zoneStatHeaderBytes+numCells*zoneStatRecordBytes)
	binary.LittleEndian.PutUint32(buf[0:4], 42) // numberOfYears

	pos := zoneStatHeaderBytes
	for idx := 0; idx < numCells; idx++ {
		rec := buf[pos : pos+zoneStatRecordBytes]
		binary.LittleEndian.PutUint32(rec[0:4], 1) // ndeg
		putF32(rec, 4, 0.5)                        // peryr
		putF32(rec, 8, 6.0)                        // maxmag
		putF32(rec, 12, 4.0)                       // minmag (reused below for offsets)
		if idx == 1 {
			putF32(rec, 12, 10) // minDepth
			putF32(rec, 16, 50) // maxDepth
			putF32(rec, 20, 1)  // pctfre > 0
			putF32(rec, 24, 30) // meanDepth
		} else {
			putF32(rec, 12, 950) // minDepth >= 900 => excluded
			putF32(rec, 20, 1)
		}
		pos += zoneStatRecordBytes
	}
	return buf
}

func putF32(b []byte, offset int, v float32) {
	binary.LittleEndian.PutUint32(b[offset:offset+4], math.Float32bits(v))
}

func TestReadZoneKeysAndStats(t *testing.T) {
	keys := buildKeysFixture(t)
	table, err := ReadZoneKeys(bytes.NewReader(keys))
	require.NoError(t, err)

	stats := buildStatsFixture(t, 2)
	require.NoError(t, table.AddStats(bytes.NewReader(stats)))
	require.Equal(t, 42, table.NumberOfYears())

	stat := table.Lookup(0, 0)
	require.NotNil(t, stat)
	require.InDelta(t, 30, stat.MeanDepth, 1e-6)

	require.Nil(t, table.Lookup(10, 10))
}

func TestBayesianDepthPrior(t *testing.T) {
	keys := buildKeysFixture(t)
	table, err := ReadZoneKeys(bytes.NewReader(keys))
	require.NoError(t, err)
	require.NoError(t, table.AddStats(bytes.NewReader(buildStatsFixture(t, 2))))

	mean, spread, ok := table.BayesianDepthPrior(0, 0)
	require.True(t, ok)
	require.InDelta(t, 30, mean, 1e-6)
	require.GreaterOrEqual(t, spread, 5.0)

	_, _, ok = table.BayesianDepthPrior(180, 90)
	require.False(t, ok)
}

func TestReadZoneKeysTooShort(t *testing.T) {
	_, err := ReadZoneKeys(bytes.NewReader([]byte{1, 2, 3}))
	require.Error(t, err)
}
