package auxref

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCratons(t *testing.T) {
	raw := []byte("North American Craton 4\n0 0\n0 10\n10 10\n10 0\nSiberian Craton 3\n50 90\n60 90\n55 100\n")
	polygons, err := parseCratons(raw)
	require.NoError(t, err)
	require.Len(t, polygons, 2)
	require.Equal(t, "North American Craton", polygons[0].Name)
	require.Len(t, polygons[0].Latitude, 4)
	require.Equal(t, "Siberian Craton", polygons[1].Name)
	require.Len(t, polygons[1].Longitude, 3)
}

func writeZoneKeyFixture(t *testing.T, path string) {
	t.Helper()
	buf := make([]byte, 360*180*4)
	for i := range buf {
		buf[i] = 0
	}
	// All cells point at key value 2 -> decoded index 0.
	for k := 0; k < 360*180; k++ {
		binary.LittleEndian.PutUint32(buf[k*4:k*4+4], 2)
	}
	require.NoError(t, os.WriteFile(path, buf, 0o644))
}

func writeZoneStatFixture(t *testing.T, path string) {
	t.Helper()
	buf := make([]byte, 40+40)
	binary.LittleEndian.PutUint32(buf[0:4], 10)
	rec := buf[40:80]
	binary.LittleEndian.PutUint32(rec[0:4], 1)
	putF32(rec, 12, 5)  // minDepth
	putF32(rec, 16, 15) // maxDepth
	putF32(rec, 20, 1)  // pctfre
	putF32(rec, 24, 10) // meanDepth
	require.NoError(t, os.WriteFile(path, buf, 0o644))
}

func putF32(b []byte, offset int, v float32) {
	binary.LittleEndian.PutUint32(b[offset:offset+4], math.Float32bits(v))
}

func TestLoadRegeneratesAndCaches(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, CratonsFileName),
		[]byte("Test Craton 4\n0 0\n0 10\n10 10\n10 0\n"), 0o644))
	writeZoneKeyFixture(t, filepath.Join(dir, ZoneKeyFileName))
	writeZoneStatFixture(t, filepath.Join(dir, ZoneStatFileName))

	data, err := Load(dir)
	require.NoError(t, err)
	require.True(t, data.Cratons.IsCraton(5, 5))
	mean, _, ok := data.ZoneStats.BayesianDepthPrior(0, 0)
	require.True(t, ok)
	require.InDelta(t, 10, mean, 1e-6)

	_, err = os.Stat(filepath.Join(dir, CacheFileName))
	require.NoError(t, err)

	data2, err := Load(dir)
	require.NoError(t, err)
	require.True(t, data2.Cratons.IsCraton(5, 5))
}
