package locloop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/usgs-neic/go-locator/internal/craton"
	"github.com/usgs-neic/go-locator/internal/locutil"
	"github.com/usgs-neic/go-locator/internal/phaseid"
	"github.com/usgs-neic/go-locator/internal/stepper"
	"github.com/usgs-neic/go-locator/model"
	"github.com/usgs-neic/go-locator/traveltime"
)

func buildTestEvent(numStations int) *model.Event {
	hypo := model.NewHypocenter(0, 10, 20, 33)
	hypo.SetDegreesOfFreedom(false, false)
	event := model.NewEvent(hypo)
	event.IsDepthManual = true

	distances := []float64{10, 20, 30, 40, 50, 60, 70}
	for i := 0; i < numStations; i++ {
		station := &model.Station{ID: model.StationID{StationCode: string(rune('A' + i))}, Latitude: 10 + float64(i), Longitude: 20 + float64(i)}
		pick := model.NewPick(station, "BHZ", "US", model.AuthorLocalAutomatic, time.Unix(int64(1000+i), 0), "P", locutil.NullAffinity)
		pick.TravelTime = 100 + float64(i)
		event.Picks = append(event.Picks, pick)
		event.Stations[station.ID] = station
		group := model.NewPickGroup(station, []*model.Pick{pick})
		group.SetGeometry(distances[i%len(distances)], float64(i)*45)
		event.Groups = append(event.Groups, group)
	}
	return event
}

func newTestLoop(event *model.Event, stages []stepper.StageParams) *Loop {
	identifier := phaseid.New(phaseid.NewStaticGroups())
	travelTimeService := traveltime.NewLocalService()
	cratons := craton.NewMap(nil)
	st := stepper.New(event, identifier, travelTimeService, cratons, nil)
	return New(event, st, stages)
}

func TestDefaultStagesShape(t *testing.T) {
	stages := DefaultStages()
	require.Len(t, stages, 4)
	require.Equal(t, 1, stages[3].MaxIterations)
	require.False(t, stages[3].Reidentify)
	require.False(t, stages[3].Reweight)
}

func TestLocateInsufficientDataStopsEarly(t *testing.T) {
	event := buildTestEvent(2)
	loop := newTestLoop(event, DefaultStages())

	status, err := loop.Locate()
	require.NoError(t, err)
	require.Equal(t, model.StatusInsufficientData, status)
}

func TestLocateRunsAllStagesWithEnoughData(t *testing.T) {
	event := buildTestEvent(6)
	// Stages of at most two iterations keep this test fast; the stage shape
	// (reidentify/reweight flags) is exercised, not full convergence.
	stages := []stepper.StageParams{
		{OtherWeight: 3.0, StickyWeight: 1.0, Reidentify: true, Reweight: true, EpsilonStage: 2.0, MaxStepLen: 50.0, MaxIterations: 2},
		{OtherWeight: 0.05, StickyWeight: 30.0, Reidentify: false, Reweight: false, EpsilonStage: 0.1, MaxStepLen: 5.0, MaxIterations: 1},
	}
	loop := newTestLoop(event, stages)

	status, err := loop.Locate()
	require.NoError(t, err)
	require.NotEqual(t, model.StatusInsufficientData, status)
	require.NotEqual(t, model.StatusLocationFailed, status)
}

func TestResetTriageAndUseFlags(t *testing.T) {
	event := buildTestEvent(3)
	event.Picks[0].Triage = true
	event.Picks[0].Used = false
	event.Picks[1].Used = false

	loop := newTestLoop(event, DefaultStages())
	loop.resetTriage()
	loop.resetUseFlags()

	for _, p := range event.Picks {
		require.False(t, p.Triage)
		require.True(t, p.Used)
	}
}
