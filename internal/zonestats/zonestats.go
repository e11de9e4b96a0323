// Package zonestats holds the gridded seismicity table used to derive a
// Bayesian depth prior for an epicenter: a 360x180 one-degree-cell grid
// keyed by (longitude, colatitude) indexing into a sparse table of
// per-cell depth statistics.
//
// Ported from gov.usgs.locator.AuxLocRef's readZoneKeys/readZoneStats (see
// _examples/original_source); the ZoneStats/ZoneStat types themselves were
// not present in the retrieved original source and are reconstructed here
// from AuxLocRef's usage and spec §3/§6 (see DESIGN.md).
package zonestats

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/usgs-neic/go-locator/internal/locutil"
)

const (
	gridLongitudes = 360
	gridColats     = 180

	// zoneStatHeaderBytes is the fixed header length of the zone-stat
	// file. The first 4 bytes are the year count; the remaining bytes up
	// to offset 40 are reserved/unused by this reader.
	zoneStatHeaderBytes = 40

	// zoneStatRecordBytes is the per-cell record size, ten 4-byte values;
	// the record shape is {ndeg int32, peryr, maxmag, minmag, minDepth,
	// maxDepth, pctfre, meanDepth float32, dpmode int32, pctge float32}.
	zoneStatRecordBytes = 4 * 10
)

// Stat is one zone cell's historical depth statistics.
type Stat struct {
	MeanDepth float64
	MinDepth  float64
	MaxDepth  float64
}

// Table is the full gridded seismicity table: immutable once loaded, and
// safe to share across concurrently running engine instances (spec §5).
type Table struct {
	// keys[lon][colat] is an index into stats, or -1 if the cell has no
	// zone-stat record (Fortran-indexed source data is pre-decremented by
	// 2 on load, see readZoneKeys).
	keys  [gridLongitudes][gridColats]int
	stats []*Stat
	years int
}

// NumberOfYears returns the historical year span the loaded statistics
// cover, or -1 if no zone-stat file has been loaded.
func (t *Table) NumberOfYears() int { return t.years }

// Lookup returns the depth statistics for the one-degree cell containing
// the given geographic longitude and colatitude (degrees), or nil if the
// cell carries no usable statistics.
func (t *Table) Lookup(lonDeg, coLatDeg float64) *Stat {
	lonIdx := int(lonDeg)
	if lonDeg < 0 {
		lonIdx += gridLongitudes
	}
	lonIdx = ((lonIdx % gridLongitudes) + gridLongitudes) % gridLongitudes

	colatIdx := int(coLatDeg)
	if colatIdx < 0 {
		colatIdx = 0
	}
	if colatIdx >= gridColats {
		colatIdx = gridColats - 1
	}

	idx := t.keys[lonIdx][colatIdx]
	if idx < 0 || idx >= len(t.stats) {
		return nil
	}
	return t.stats[idx]
}

// BayesianDepthPrior derives the (mean, spread) depth prior for the cell at
// (lonDeg, coLatDeg), per spec §4.1's setEnvironment rule: spread is the
// larger of 0.75 times the half depth range and the configured minimum.
func (t *Table) BayesianDepthPrior(lonDeg, coLatDeg float64) (mean, spread float64, ok bool) {
	stat := t.Lookup(lonDeg, coLatDeg)
	if stat == nil {
		return 0, 0, false
	}
	spread = 0.75 * (stat.MaxDepth - stat.MinDepth) / 2
	if spread < locutil.DefaultDepthSE {
		spread = locutil.DefaultDepthSE
	}
	return stat.MeanDepth, spread, true
}

// ExportKeys flattens the grid key table into a [][]int32 suitable for
// serialization (e.g. by the auxref cache), one []int32 per longitude
// column.
func (t *Table) ExportKeys() [][]int32 {
	out := make([][]int32, gridLongitudes)
	for j := 0; j < gridLongitudes; j++ {
		col := make([]int32, gridColats)
		for i := 0; i < gridColats; i++ {
			col[i] = int32(t.keys[j][i])
		}
		out[j] = col
	}
	return out
}

// ExportStats returns the sparse statistics table for serialization.
func (t *Table) ExportStats() []*Stat {
	return t.stats
}

// RebuildTable reconstructs a Table from previously exported grid keys and
// statistics, as read back from a persisted cache.
func RebuildTable(years int, gridKeys [][]int32, stats []*Stat) *Table {
	t := &Table{years: years, stats: stats}
	for j := 0; j < gridLongitudes && j < len(gridKeys); j++ {
		for i := 0; i < gridColats && i < len(gridKeys[j]); i++ {
			t.keys[j][i] = int(gridKeys[j][i])
		}
	}
	return t
}

// ReadZoneKeys parses the 360x180 little-endian int32 zone-key grid file,
// organized by longitude (Greenwich heading east) then colatitude (north
// pole to south pole). Each raw value is decremented by 2 to correct for
// Fortran's 1-based indexing plus the statistics file's leading header
// record.
func ReadZoneKeys(r io.Reader) (*Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("zonestats: read zone keys: %w", err)
	}
	want := gridLongitudes * gridColats * 4
	if len(raw) < want {
		return nil, fmt.Errorf("zonestats: zone key file too short: got %d bytes, want %d", len(raw), want)
	}

	t := &Table{years: -1}
	k := 0
	for i := 0; i < gridColats; i++ {
		for j := 0; j < gridLongitudes; j++ {
			v := int32(binary.LittleEndian.Uint32(raw[k*4 : k*4+4]))
			t.keys[j][i] = int(v) - 2
			k++
		}
	}
	return t, nil
}

// AddStats parses the zone-stat file (40-byte header whose first int32 is
// the historical year span, followed by fixed-size records) and attaches
// the surviving statistics to t. Cells with zero percent-free or a minimum
// depth at or beyond 900 km carry no Locator-relevant prior and are left
// unset, per AuxLocRef.readZoneStats.
func (t *Table) AddStats(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("zonestats: read zone stats: %w", err)
	}
	if len(raw) < zoneStatHeaderBytes {
		return fmt.Errorf("zonestats: zone stat file too short for header: got %d bytes", len(raw))
	}

	t.years = int(int32(binary.LittleEndian.Uint32(raw[0:4])))

	numCells := 0
	for i := 0; i < gridColats; i++ {
		for j := 0; j < gridLongitudes; j++ {
			if t.keys[j][i] >= numCells {
				numCells = t.keys[j][i] + 1
			}
		}
	}

	stats := make([]*Stat, numCells)
	pos := zoneStatHeaderBytes
	for idx := 0; idx < numCells; idx++ {
		if pos+zoneStatRecordBytes > len(raw) {
			return fmt.Errorf("zonestats: zone stat file truncated at record %d", idx)
		}
		rec := raw[pos : pos+zoneStatRecordBytes]
		pos += zoneStatRecordBytes

		minDepth := float64(readFloat32(rec, 12))
		maxDepth := float64(readFloat32(rec, 16))
		pctfre := readFloat32(rec, 20)
		meanDepth := float64(readFloat32(rec, 24))

		if pctfre > 0 && minDepth < 900 {
			stats[idx] = &Stat{MeanDepth: meanDepth, MinDepth: minDepth, MaxDepth: maxDepth}
		}
	}
	t.stats = stats
	return nil
}

func readFloat32(b []byte, offset int) float32 {
	bits := binary.LittleEndian.Uint32(b[offset : offset+4])
	return math.Float32frombits(bits)
}
