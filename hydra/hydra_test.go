package hydra

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/usgs-neic/go-locator/model"
)

func sampleHeader() Header {
	return Header{
		OriginTime:       time.Date(2026, 8, 2, 13, 45, 30, 250000000, time.UTC),
		Latitude:         35.1234,
		Longitude:        -118.9876,
		Depth:            12.5,
		IsLocationHeld:   false,
		IsDepthHeld:      true,
		IsDepthManual:    true,
		BayesianDepth:    10.0,
		BayesianSpread:   5.0,
		UseDecorrelation: true,
	}
}

func TestWriteReadHeaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	header := sampleHeader()
	require.NoError(t, WriteHeader(&buf, header))

	got, err := ReadHeader(buf.String())
	require.NoError(t, err)
	require.True(t, got.OriginTime.Equal(header.OriginTime))
	require.InDelta(t, header.Latitude, got.Latitude, 1e-9)
	require.InDelta(t, header.Longitude, got.Longitude, 1e-9)
	require.InDelta(t, header.Depth, got.Depth, 1e-9)
	require.Equal(t, header.IsDepthHeld, got.IsDepthHeld)
	require.Equal(t, header.IsDepthManual, got.IsDepthManual)
	require.InDelta(t, header.BayesianDepth, got.BayesianDepth, 1e-9)
	require.InDelta(t, header.BayesianSpread, got.BayesianSpread, 1e-9)
}

func TestReadHeaderRejectsWrongFieldCount(t *testing.T) {
	_, err := ReadHeader("not enough fields here")
	require.Error(t, err)
}

func TestHeaderFromEvent(t *testing.T) {
	hypo := model.NewHypocenter(1754142330, 35.0, -118.0, 10.0)
	event := model.NewEvent(hypo)
	event.IsDepthManual = true
	event.UseDecorrelation = true

	header := HeaderFromEvent(event)
	require.InDelta(t, 35.0, header.Latitude, 1e-9)
	require.InDelta(t, -118.0, header.Longitude, 1e-9)
	require.True(t, header.IsDepthManual)
	require.True(t, header.UseDecorrelation)
}

func TestWriteReadPickRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	pick := PickRecord{
		StationCode:  "ANMO",
		NetworkCode:  "IU",
		LocationCode: "00",
		Channel:      "BHZ",
		Distance:     23.45,
		Azimuth:      312.1,
		PhaseCode:    "P",
		ArrivalTime:  time.Date(2026, 8, 2, 13, 46, 10, 125000000, time.UTC),
		Residual:     0.532,
		Weight:       1.0,
		Used:         true,
	}
	require.NoError(t, WritePick(&buf, pick))

	got, err := ReadPick(buf.String())
	require.NoError(t, err)
	require.Equal(t, pick.StationCode, got.StationCode)
	require.Equal(t, pick.NetworkCode, got.NetworkCode)
	require.Equal(t, pick.LocationCode, got.LocationCode)
	require.Equal(t, pick.Channel, got.Channel)
	require.InDelta(t, pick.Distance, got.Distance, 1e-9)
	require.InDelta(t, pick.Azimuth, got.Azimuth, 1e-9)
	require.Equal(t, pick.PhaseCode, got.PhaseCode)
	require.True(t, got.ArrivalTime.Equal(pick.ArrivalTime))
	require.InDelta(t, pick.Residual, got.Residual, 1e-9)
	require.InDelta(t, pick.Weight, got.Weight, 1e-9)
	require.Equal(t, pick.Used, got.Used)
}

func TestReadPickRejectsShortLine(t *testing.T) {
	_, err := ReadPick("short")
	require.Error(t, err)
}

func TestReadBulletinParsesHeaderAndPicks(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHeader(&buf, sampleHeader()))
	require.NoError(t, WritePick(&buf, PickRecord{
		StationCode: "ANMO", NetworkCode: "IU", LocationCode: "00", Channel: "BHZ",
		Distance: 10, Azimuth: 20, PhaseCode: "P",
		ArrivalTime: time.Date(2026, 8, 2, 13, 46, 0, 0, time.UTC),
		Residual:    0.1, Weight: 1,
	}))
	require.NoError(t, WritePick(&buf, PickRecord{
		StationCode: "BOCO", NetworkCode: "IU", LocationCode: "00", Channel: "BHZ",
		Distance: 30, Azimuth: 200, PhaseCode: "S",
		ArrivalTime: time.Date(2026, 8, 2, 13, 47, 0, 0, time.UTC),
		Residual:    -0.2, Weight: 0.5,
	}))

	header, picks, err := ReadBulletin(&buf)
	require.NoError(t, err)
	require.True(t, header.OriginTime.Equal(sampleHeader().OriginTime))
	require.Len(t, picks, 2)
	require.Equal(t, "ANMO", picks[0].StationCode)
	require.Equal(t, "BOCO", picks[1].StationCode)
}

func TestReadBulletinStopsAtBlankLine(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHeader(&buf, sampleHeader()))
	require.NoError(t, WritePick(&buf, PickRecord{
		StationCode: "ANMO", NetworkCode: "IU", LocationCode: "00", Channel: "BHZ",
		Distance: 10, Azimuth: 20, PhaseCode: "P",
		ArrivalTime: time.Date(2026, 8, 2, 13, 46, 0, 0, time.UTC),
		Residual:    0.1, Weight: 1,
	}))
	buf.WriteString("\n")
	buf.WriteString("this line should be ignored\n")

	_, picks, err := ReadBulletin(&buf)
	require.NoError(t, err)
	require.Len(t, picks, 1)
}

func TestReadBulletinErrorsOnEmptyInput(t *testing.T) {
	_, _, err := ReadBulletin(&bytes.Buffer{})
	require.Error(t, err)
}
