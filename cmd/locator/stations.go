package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/usgs-neic/go-locator/model"
)

// stationMeta is one row of the station metadata sidecar file: the Hydra
// pick record (spec §6) carries station/network/location/channel codes
// but, unlike the JSON wire format, no latitude/longitude/elevation, so
// --csvFile supplies the code-to-geometry lookup the legacy format
// relied on an external station database for.
type stationMeta struct {
	Latitude  float64
	Longitude float64
	Elevation float64
}

// loadStationMetadata reads a CSV of stationCode,networkCode,locationCode,
// latitude,longitude,elevation rows (no header) into a lookup table keyed
// by model.StationID. An empty path returns an empty table.
func loadStationMetadata(path string) (map[model.StationID]stationMeta, error) {
	table := map[model.StationID]stationMeta{}
	if path == "" {
		return table, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("locator: opening station metadata %q: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 6
	reader.TrimLeadingSpace = true

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("locator: parsing station metadata %q: %w", path, err)
		}
		if strings.HasPrefix(strings.TrimSpace(record[0]), "#") {
			continue
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
		if err != nil {
			return nil, fmt.Errorf("locator: invalid latitude in %q: %w", path, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(record[4]), 64)
		if err != nil {
			return nil, fmt.Errorf("locator: invalid longitude in %q: %w", path, err)
		}
		elev, err := strconv.ParseFloat(strings.TrimSpace(record[5]), 64)
		if err != nil {
			return nil, fmt.Errorf("locator: invalid elevation in %q: %w", path, err)
		}

		id := model.StationID{
			StationCode:  strings.TrimSpace(record[0]),
			NetworkCode:  strings.TrimSpace(record[1]),
			LocationCode: strings.TrimSpace(record[2]),
		}
		table[id] = stationMeta{Latitude: lat, Longitude: lon, Elevation: elev}
	}

	return table, nil
}
