package stepper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/usgs-neic/go-locator/internal/craton"
	"github.com/usgs-neic/go-locator/internal/locutil"
	"github.com/usgs-neic/go-locator/internal/phaseid"
	"github.com/usgs-neic/go-locator/model"
	"github.com/usgs-neic/go-locator/traveltime"
)

func buildTestEvent(t *testing.T, numStations int) *model.Event {
	t.Helper()
	hypo := model.NewHypocenter(0, 10, 20, 33)
	hypo.SetDegreesOfFreedom(false, false)
	event := model.NewEvent(hypo)
	event.UseDecorrelation = false
	event.IsDepthManual = true // skip the ZoneStats lookup path in this test

	distances := []float64{10, 20, 30, 40, 50}
	for i := 0; i < numStations; i++ {
		station := &model.Station{ID: model.StationID{StationCode: string(rune('A' + i))}, Latitude: 10 + float64(i), Longitude: 20 + float64(i)}
		pick := model.NewPick(station, "BHZ", "US", model.AuthorLocalAutomatic, time.Unix(int64(1000+i), 0), "P", locutil.NullAffinity)
		pick.TravelTime = 100 + float64(i)
		event.Picks = append(event.Picks, pick)
		event.Stations[station.ID] = station
		group := model.NewPickGroup(station, []*model.Pick{pick})
		group.SetGeometry(distances[i%len(distances)], float64(i)*60)
		event.Groups = append(event.Groups, group)
	}
	return event
}

func newTestStepper(event *model.Event) *Stepper {
	identifier := phaseid.New(phaseid.NewStaticGroups())
	travelTimeService := traveltime.NewLocalService()
	cratons := craton.NewMap(nil)
	return New(event, identifier, travelTimeService, cratons, nil)
}

func TestSetEnvironmentMarksTectonicOutsideCratons(t *testing.T) {
	event := buildTestEvent(t, 3)
	s := newTestStepper(event)
	s.SetEnvironment()
	require.True(t, s.isTectonic)
}

func TestDoPhaseIdentificationInsufficientData(t *testing.T) {
	event := buildTestEvent(t, 2)
	s := newTestStepper(event)

	status, err := s.DoPhaseIdentification(StageParams{OtherWeight: 3, StickyWeight: 1, Reidentify: true, Reweight: true})
	require.NoError(t, err)
	require.Equal(t, model.StatusInsufficientData, status)
}

func TestDoPhaseIdentificationSuccess(t *testing.T) {
	event := buildTestEvent(t, 5)
	s := newTestStepper(event)

	status, err := s.DoPhaseIdentification(StageParams{OtherWeight: 3, StickyWeight: 1, Reidentify: true, Reweight: true})
	require.NoError(t, err)
	require.Equal(t, model.StatusSuccess, status)
	require.GreaterOrEqual(t, event.Hypo.Dispersion, 0.0)
	require.Len(t, event.Hypo.StepDir, 3)
}

func TestMakeStepProducesAStatus(t *testing.T) {
	event := buildTestEvent(t, 5)
	s := newTestStepper(event)

	params := StageParams{OtherWeight: 3, StickyWeight: 1, Reidentify: true, Reweight: true, EpsilonStage: 2.0, MaxStepLen: 50.0, MaxIterations: 20}
	status, err := s.DoPhaseIdentification(params)
	require.NoError(t, err)
	require.Equal(t, model.StatusSuccess, status)

	status, err = s.MakeStep(0, 0, params)
	require.NoError(t, err)
	require.Contains(t, []model.LocationStatus{
		model.StatusSuccess,
		model.StatusPhaseIDChanged,
		model.StatusNearlyConverged,
		model.StatusDidNotConverge,
		model.StatusUnstableSolution,
	}, status)
}
