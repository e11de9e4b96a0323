package traveltime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalServiceReturnsPAndS(t *testing.T) {
	svc := NewLocalService()
	session, err := svc.NewSession(SessionParams{EarthModel: "default", SourceDepth: 10})
	require.NoError(t, err)

	phases, err := session.GetPhases(Request{DistanceDeg: 30, StationElevation: 0})
	require.NoError(t, err)

	var haveP, haveS bool
	for _, p := range phases {
		if p.Code == "P" {
			haveP = true
		}
		if p.Code == "S" {
			haveS = true
		}
		require.Greater(t, p.TravelTime, 0.0)
	}
	require.True(t, haveP)
	require.True(t, haveS)
}

func TestLocalServiceCachesTablesByDepthBin(t *testing.T) {
	svc := NewLocalService().(*localService)
	_, err := svc.NewSession(SessionParams{EarthModel: "default", SourceDepth: 10})
	require.NoError(t, err)
	require.Len(t, svc.tables, 1)

	_, err = svc.NewSession(SessionParams{EarthModel: "default", SourceDepth: 10})
	require.NoError(t, err)
	require.Len(t, svc.tables, 1)
}

func TestPKPOnlyBeyondCoreShadow(t *testing.T) {
	svc := NewLocalService()
	session, err := svc.NewSession(SessionParams{EarthModel: "default", SourceDepth: 0})
	require.NoError(t, err)

	phases, err := session.GetPhases(Request{DistanceDeg: 50})
	require.NoError(t, err)
	for _, p := range phases {
		require.NotEqual(t, "PKP", p.Code)
	}

	phases, err = session.GetPhases(Request{DistanceDeg: 140})
	require.NoError(t, err)
	var havePKP bool
	for _, p := range phases {
		if p.Code == "PKP" {
			havePKP = true
		}
	}
	require.True(t, havePKP)
}
