package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestPick(code string, lat, lon float64) *Pick {
	sta := NewStation(StationID{StationCode: code}, lat, lon, 0)
	return NewPick(sta, "BHZ", "us", AuthorLocalHuman, time.Unix(0, 0), "P", 1)
}

func TestGroupPicksByStation(t *testing.T) {
	e := NewEvent(NewHypocenter(0, 0, 0, 10))
	e.Picks = []*Pick{newTestPick("AAA", 1, 1), newTestPick("BBB", 2, 2), newTestPick("AAA", 1, 1)}
	e.GroupPicksByStation()
	require.Len(t, e.Groups, 2)
}

func TestComputeAzimuthGapNoStations(t *testing.T) {
	e := NewEvent(NewHypocenter(0, 0, 0, 10))
	e.ComputeAzimuthGap()
	require.Equal(t, 360.0, e.AzimuthGap)
	require.Equal(t, 360.0, e.RobustAzimuthGap)
}

func TestComputeAzimuthGapSingleStation(t *testing.T) {
	e := NewEvent(NewHypocenter(0, 0, 0, 10))
	g := NewPickGroup(newTestPick("AAA", 1, 1).Station, []*Pick{newTestPick("AAA", 1, 1)})
	g.SetGeometry(10, 90)
	e.Groups = []*PickGroup{g}
	e.StationsUsed = 1
	e.ComputeAzimuthGap()
	require.Equal(t, 360.0, e.AzimuthGap)
	require.Equal(t, 360.0, e.RobustAzimuthGap)
}

func TestSetQualFlagsInsufficientData(t *testing.T) {
	e := NewEvent(NewHypocenter(0, 0, 0, 10))
	e.SetQualFlags(StatusInsufficientData, DefaultQualityLimits())
	require.Equal(t, "D  ", e.Quality)
}

func TestSetExitCodeDidNotMove(t *testing.T) {
	e := NewEvent(NewHypocenter(0, 0, 0, 10))
	e.SetExitCode(StatusSuccess, 0.01, 0.01)
	require.Equal(t, StatusDidNotMove, e.ExitCode)
}

func TestSetExitCodeSuccessfulLocation(t *testing.T) {
	e := NewEvent(NewHypocenter(0, 0, 0, 10))
	e.Hypo.DeltaH = 5
	e.SetExitCode(StatusSuccess, 0.01, 0.01)
	require.Equal(t, StatusSuccessfulLocation, e.ExitCode)
}
