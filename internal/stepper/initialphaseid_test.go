package stepper

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/usgs-neic/go-locator/model"
)

func TestRunInitialPhaseIDSucceedsWithEnoughStations(t *testing.T) {
	event := buildTestEvent(t, 5)
	s := newTestStepper(event)

	status, err := s.RunInitialPhaseID()
	require.NoError(t, err)
	require.Equal(t, model.StatusSuccess, status)
}

func TestRunInitialPhaseIDShiftsOriginTimeTowardMedianResidual(t *testing.T) {
	event := buildTestEvent(t, 5)
	s := newTestStepper(event)

	before := event.Hypo.OriginTime
	_, err := s.RunInitialPhaseID()
	require.NoError(t, err)
	require.NotEqual(t, before, event.Hypo.OriginTime)
}

func TestRunInitialPhaseIDOnRestartSkipsCleanupAndReidentifies(t *testing.T) {
	event := buildTestEvent(t, 5)
	event.IsLocationRestarted = true
	s := newTestStepper(event)

	status, err := s.RunInitialPhaseID()
	require.NoError(t, err)
	require.Equal(t, model.StatusSuccess, status)
	require.NotZero(t, event.Hypo.Dispersion)
}

func TestRunInitialPhaseIDDropsSecondaryAutomaticPicks(t *testing.T) {
	event := buildTestEvent(t, 5)
	secondPick := model.NewPick(event.Groups[0].Station, "BHZ", "US", model.AuthorLocalAutomatic,
		event.Groups[0].Picks[0].ArrivalTime.Add(1), "S", 1.0)
	event.Groups[0].Picks = append(event.Groups[0].Picks, secondPick)

	s := newTestStepper(event)
	_, err := s.RunInitialPhaseID()
	require.NoError(t, err)
	require.False(t, secondPick.Used)
}

func TestRunInitialPhaseIDReassessForcesComplexPath(t *testing.T) {
	event := buildTestEvent(t, 5)
	event.ReassessInitialPhaseIDs = true
	s := newTestStepper(event)

	status, err := s.RunInitialPhaseID()
	require.NoError(t, err)
	require.Equal(t, model.StatusSuccess, status)
}

func TestIsExcludedFromInitialID(t *testing.T) {
	require.True(t, isExcludedFromInitialID("PKP"))
	require.True(t, isExcludedFromInitialID("P'P'"))
	require.True(t, isExcludedFromInitialID("ScS"))
	require.True(t, isExcludedFromInitialID("Lg"))
	require.False(t, isExcludedFromInitialID("P"))
	require.False(t, isExcludedFromInitialID("Pg"))
}

func TestIsCommonCrustalP(t *testing.T) {
	require.True(t, isCommonCrustalP("Pg"))
	require.True(t, isCommonCrustalP("P"))
	require.False(t, isCommonCrustalP("PKP"))
}
