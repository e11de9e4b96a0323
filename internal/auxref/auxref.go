// Package auxref loads and caches the static auxiliary reference data the
// location engine needs: continental craton boundaries and the gridded
// seismicity table used for Bayesian depth priors. This data does not
// change during a location run and is shared, read-only, across all
// concurrently running engine instances (spec §5).
//
// Ported from gov.usgs.locator.AuxLocRef (see _examples/original_source),
// which serialized the parsed data with Java's ObjectOutputStream; this
// port uses vmihailenco/msgpack, following the serialization library
// chrissnell-remoteweather uses for its wire format.
package auxref

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/usgs-neic/go-locator/internal/craton"
	"github.com/usgs-neic/go-locator/internal/zonestats"
)

// Default raw input file names, relative to a model path.
const (
	CratonsFileName  = "cratons.txt"
	ZoneKeyFileName  = "zonekey.dat"
	ZoneStatFileName = "zonestat.dat"
	CacheFileName    = "locaux.cache"
)

// Data bundles the loaded craton map and zone-statistics table. It is
// immutable after Load returns and safe for concurrent read access from
// multiple Event/engine goroutines.
type Data struct {
	Cratons   *craton.Map
	ZoneStats *zonestats.Table
}

// cacheEnvelope is the on-disk msgpack structure persisted to CacheFileName.
// ZoneStats.Table's internal fields are unexported, so the cache stores a
// flattened form the Table can be rebuilt from.
type cacheEnvelope struct {
	Polygons  []craton.Polygon
	GridKeys  [][]int32
	Stats     []*zonestats.Stat
	Years     int
}

// Load reads the cratons/zone-key/zone-stat files under modelPath, or, if
// none of them have changed since the last run, the persisted cache. A
// changed source file triggers regeneration and a cache rewrite, mirroring
// AuxLocRef's FileChanged.isChanged check.
func Load(modelPath string) (*Data, error) {
	sourcePaths := []string{
		filepath.Join(modelPath, CratonsFileName),
		filepath.Join(modelPath, ZoneKeyFileName),
		filepath.Join(modelPath, ZoneStatFileName),
	}
	cachePath := filepath.Join(modelPath, CacheFileName)

	changed, err := isChanged(cachePath, sourcePaths)
	if err != nil {
		return nil, err
	}

	if !changed {
		data, err := loadCache(cachePath)
		if err == nil {
			return data, nil
		}
		// Fall through and regenerate if the cache is unreadable.
	}

	return regenerate(sourcePaths, cachePath)
}

func regenerate(sourcePaths []string, cachePath string) (*Data, error) {
	cratonsRaw, err := os.ReadFile(sourcePaths[0])
	if err != nil {
		return nil, fmt.Errorf("auxref: reading cratons file: %w", err)
	}
	polygons, err := parseCratons(cratonsRaw)
	if err != nil {
		return nil, fmt.Errorf("auxref: parsing cratons file: %w", err)
	}

	keysFile, err := os.Open(sourcePaths[1])
	if err != nil {
		return nil, fmt.Errorf("auxref: opening zone key file: %w", err)
	}
	defer keysFile.Close()
	table, err := zonestats.ReadZoneKeys(keysFile)
	if err != nil {
		return nil, fmt.Errorf("auxref: reading zone keys: %w", err)
	}

	statsFile, err := os.Open(sourcePaths[2])
	if err != nil {
		return nil, fmt.Errorf("auxref: opening zone stat file: %w", err)
	}
	defer statsFile.Close()
	if err := table.AddStats(statsFile); err != nil {
		return nil, fmt.Errorf("auxref: reading zone stats: %w", err)
	}

	data := &Data{
		Cratons:   craton.NewMap(polygons),
		ZoneStats: table,
	}

	if err := writeCache(cachePath, polygons, table); err != nil {
		return nil, fmt.Errorf("auxref: writing cache: %w", err)
	}
	return data, nil
}

// parseCratons parses the whitespace-delimited craton boundary text
// format: repeating blocks of "<name tokens...> <count> <lat lon>*count".
// Ported from AuxLocRef.readCraton, which used java.util.Scanner's
// token-at-a-time model; here the whole file is tokenized up front.
func parseCratons(raw []byte) ([]craton.Polygon, error) {
	fields := strings.Fields(string(raw))
	var polygons []craton.Polygon

	i := 0
	for i < len(fields) {
		var nameParts []string
		for i < len(fields) {
			if _, err := strconv.Atoi(fields[i]); err == nil {
				break
			}
			nameParts = append(nameParts, fields[i])
			i++
		}
		if i >= len(fields) {
			break
		}
		count, err := strconv.Atoi(fields[i])
		if err != nil {
			return nil, fmt.Errorf("expected boundary point count, got %q", fields[i])
		}
		i++

		lats := make([]float64, 0, count)
		lons := make([]float64, 0, count)
		for j := 0; j < count; j++ {
			if i+1 >= len(fields) {
				return nil, fmt.Errorf("truncated boundary points for %q", strings.Join(nameParts, " "))
			}
			lat, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, fmt.Errorf("parsing latitude: %w", err)
			}
			lon, err := strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("parsing longitude: %w", err)
			}
			lats = append(lats, lat)
			lons = append(lons, lon)
			i += 2
		}

		polygons = append(polygons, craton.Polygon{
			Name:      strings.Join(nameParts, " "),
			Latitude:  lats,
			Longitude: lons,
		})
	}

	return polygons, nil
}

func isChanged(cachePath string, sourcePaths []string) (bool, error) {
	cacheInfo, err := os.Stat(cachePath)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("auxref: stat cache: %w", err)
	}

	for _, p := range sourcePaths {
		srcInfo, err := os.Stat(p)
		if err != nil {
			return false, fmt.Errorf("auxref: stat source %s: %w", p, err)
		}
		if srcInfo.ModTime().After(cacheInfo.ModTime()) {
			return true, nil
		}
	}
	return false, nil
}

func writeCache(cachePath string, polygons []craton.Polygon, table *zonestats.Table) error {
	env := cacheEnvelope{
		Polygons: polygons,
		GridKeys: table.ExportKeys(),
		Stats:    table.ExportStats(),
		Years:    table.NumberOfYears(),
	}

	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(env); err != nil {
		return err
	}
	return os.WriteFile(cachePath, buf.Bytes(), 0o644)
}

func loadCache(cachePath string) (*Data, error) {
	raw, err := os.ReadFile(cachePath)
	if err != nil {
		return nil, err
	}

	var env cacheEnvelope
	if err := msgpack.NewDecoder(bytes.NewReader(raw)).Decode(&env); err != nil {
		return nil, fmt.Errorf("auxref: decoding cache: %w", err)
	}

	table := zonestats.RebuildTable(env.Years, env.GridKeys, env.Stats)
	return &Data{
		Cratons:   craton.NewMap(env.Polygons),
		ZoneStats: table,
	}, nil
}
