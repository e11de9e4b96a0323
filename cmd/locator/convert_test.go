package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/usgs-neic/go-locator/hydra"
	"github.com/usgs-neic/go-locator/locservice"
	"github.com/usgs-neic/go-locator/model"
)

func TestRequestFromHydraUsesStationMetadata(t *testing.T) {
	header := hydra.Header{
		OriginTime: time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC),
		Latitude:   35,
		Longitude:  -118,
		Depth:      10,
	}
	picks := []hydra.PickRecord{
		{StationCode: "ABC", NetworkCode: "US", PhaseCode: "P", ArrivalTime: header.OriginTime.Add(20 * time.Second), Used: true},
	}
	stations := map[model.StationID]stationMeta{
		{StationCode: "ABC", NetworkCode: "US"}: {Latitude: 36, Longitude: -117, Elevation: 0.5},
	}

	req := requestFromHydra(header, picks, stations)

	require.Equal(t, header.Latitude, req.SourceLatitude)
	require.Len(t, req.InputData, 1)
	require.Equal(t, 36.0, req.InputData[0].StationLatitude)
	require.Equal(t, -117.0, req.InputData[0].StationLongitude)
	require.True(t, req.InputData[0].Use)
}

func TestRequestFromHydraMissingStationDefaultsToZero(t *testing.T) {
	header := hydra.Header{OriginTime: time.Now().UTC()}
	picks := []hydra.PickRecord{{StationCode: "XYZ", PhaseCode: "P", ArrivalTime: header.OriginTime}}

	req := requestFromHydra(header, picks, map[model.StationID]stationMeta{})

	require.Equal(t, 0.0, req.InputData[0].StationLatitude)
	require.Equal(t, 0.0, req.InputData[0].StationLongitude)
}

func TestWriteHydraResultRoundTrips(t *testing.T) {
	result := locservice.LocationResult{}
	result.Hypocenter.OriginTime = time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC).UnixMilli()
	result.Hypocenter.Latitude = 35
	result.Hypocenter.Longitude = -118
	result.Hypocenter.Depth = 10
	result.Picks = []locservice.PickOutput{
		{StationCode: "ABC", NetworkCode: "US", Channel: "BHZ", Phase: "P", ArrivalTime: result.Hypocenter.OriginTime, Distance: 1.5, Azimuth: 90, Used: true},
	}

	var buf bytes.Buffer
	require.NoError(t, writeHydraResult(&buf, result))

	header, picks, err := hydra.ReadBulletin(&buf)
	require.NoError(t, err)
	require.Equal(t, 35.0, header.Latitude)
	require.Len(t, picks, 1)
	require.Equal(t, "ABC", picks[0].StationCode)
	require.Equal(t, "P", picks[0].PhaseCode)
}
