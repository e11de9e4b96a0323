package phaseid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/usgs-neic/go-locator/internal/locutil"
	"github.com/usgs-neic/go-locator/model"
	"github.com/usgs-neic/go-locator/traveltime"
)

type fakeSession struct {
	phases []traveltime.Phase
}

func (s *fakeSession) GetPhases(traveltime.Request) ([]traveltime.Phase, error) {
	return s.phases, nil
}

func newTestGroup(travelTimeSeconds float64, code string) (*model.Event, *model.PickGroup, *model.Pick) {
	station := &model.Station{ID: model.StationID{StationCode: "ABC"}, Latitude: 10, Longitude: 20}
	pick := model.NewPick(station, "BHZ", "US", model.AuthorLocalAutomatic, time.Unix(1000, 0), code, locutil.NullAffinity)
	pick.TravelTime = travelTimeSeconds
	group := model.NewPickGroup(station, []*model.Pick{pick})
	group.SetGeometry(40, 90)

	event := model.NewEvent(model.NewHypocenter(0, 10, 20, 33))
	event.Stations = map[model.StationID]*model.Station{station.ID: station}
	event.Groups = []*model.PickGroup{group}
	event.Hypo.DepthResidual = 0
	event.Hypo.DepthWeight = 1

	return event, group, pick
}

func TestReidentifyPicksNearestArrival(t *testing.T) {
	event, _, pick := newTestGroup(100.0, "P")
	session := &fakeSession{phases: []traveltime.Phase{
		{Code: "P", Group: "P", AuxiliaryGroup: "Any", TravelTime: 100.5, Spread: 2, Observability: 1},
		{Code: "S", Group: "S", AuxiliaryGroup: "Any", TravelTime: 180, Spread: 2, Observability: 1},
	}}

	id := New(NewStaticGroups())
	changed, residuals, err := id.Identify(event, session, 1.0, 1.0, true, true)
	require.NoError(t, err)
	require.False(t, changed) // "P" -> "P" is not a change
	require.Equal(t, "P", pick.BestPhaseCode)
	require.NotEmpty(t, residuals)
}

func TestReidentifyChangesPhaseCode(t *testing.T) {
	event, _, pick := newTestGroup(181.0, "P")
	session := &fakeSession{phases: []traveltime.Phase{
		{Code: "P", Group: "P", AuxiliaryGroup: "Any", TravelTime: 100, Spread: 2, Observability: 1},
		{Code: "S", Group: "S", AuxiliaryGroup: "Any", TravelTime: 180.2, Spread: 2, Observability: 1},
	}}

	id := New(NewStaticGroups())
	changed, _, err := id.Identify(event, session, 1.0, 1.0, true, true)
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, "S", pick.CurrentPhaseCode)
}

func TestNoReidentificationKeepsCloseMatch(t *testing.T) {
	event, _, pick := newTestGroup(100.2, "P")
	session := &fakeSession{phases: []traveltime.Phase{
		{Code: "P", Group: "P", AuxiliaryGroup: "Any", TravelTime: 100, Spread: 2, Observability: 1},
	}}

	id := New(NewStaticGroups())
	_, _, err := id.Identify(event, session, 1.0, 1.0, false, true)
	require.NoError(t, err)
	require.Equal(t, "P", pick.BestPhaseCode)
	require.True(t, pick.ForceAssociation)
}

func TestNoReidentificationFallsBackWhenFar(t *testing.T) {
	event, _, pick := newTestGroup(500.0, "P")
	pick.Used = true
	session := &fakeSession{phases: []traveltime.Phase{
		{Code: "P", Group: "P", AuxiliaryGroup: "Any", TravelTime: 100, Spread: 2, Observability: 1},
		{Code: "S", Group: "S", AuxiliaryGroup: "Any", TravelTime: 499.5, Spread: 2, Observability: 1},
	}}

	id := New(NewStaticGroups())
	_, _, err := id.Identify(event, session, 1.0, 1.0, false, true)
	require.NoError(t, err)
	// Neither exact-code nor group match is within tolerance, and the pick
	// is used, so noReidentification must fall through to a full
	// reidentifyPhases pass for this group, which should land on "S".
	require.Equal(t, "S", pick.BestPhaseCode)
}

func TestIdentifySkipsEmptyArrivalGroups(t *testing.T) {
	event, _, _ := newTestGroup(100, "P")
	session := &fakeSession{phases: nil}

	id := New(NewStaticGroups())
	_, residuals, err := id.Identify(event, session, 1.0, 1.0, true, true)
	require.NoError(t, err)
	// Only the trailing Bayesian depth-prior residual should be present.
	require.Len(t, residuals, 1)
	require.True(t, residuals[0].IsDepthPrior)
}
