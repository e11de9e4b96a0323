package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewHypocenterClampsDepth(t *testing.T) {
	h := NewHypocenter(0, 10, 20, -5)
	require.Equal(t, 0.0, h.Depth)

	h = NewHypocenter(0, 10, 20, 900)
	require.Equal(t, 800.0, h.Depth)
}

func TestAddBayesForcesDepth(t *testing.T) {
	h := NewHypocenter(0, 10, 20, 50)
	h.AddBayes(30, 10)
	require.Equal(t, 30.0, h.Depth)
	require.Equal(t, 0.0, h.DepthResidual)
	require.InDelta(t, 0.3, h.DepthWeight, 1e-9)
}

func TestUpdateHypoWraparound(t *testing.T) {
	h := NewHypocenter(0, 89, 179, 10)
	h.SetDegreesOfFreedom(false, false)
	h.StepDir = []float64{1, 0, 0}
	h.UpdateHypo(50000, 0)
	require.GreaterOrEqual(t, h.CoLatitude, 0.0)
	require.LessOrEqual(t, h.CoLatitude, 180.0)
	require.GreaterOrEqual(t, h.Longitude, -180.0)
	require.LessOrEqual(t, h.Longitude, 180.0)
}

func TestUpdateHypoSinesStayNormalized(t *testing.T) {
	h := NewHypocenter(0, 10, 20, 10)
	h.SetDegreesOfFreedom(false, false)
	h.StepDir = []float64{0.6, 0.8, 0}
	h.UpdateHypo(5, 1.5)
	require.InDelta(t, 1.0, h.SinLat*h.SinLat+h.CosLat*h.CosLat, 1e-12)
	require.InDelta(t, 1.0, h.SinLon*h.SinLon+h.CosLon*h.CosLon, 1e-12)
}

func TestResetHypoRestoresBackup(t *testing.T) {
	h := NewHypocenter(100, 10, 20, 30)
	backup := NewHypoAudit(h, 0, 0, 10, StatusSuccess)
	h.SetCoordinates(200, 11, 21, 31)
	h.ResetHypo(backup)
	require.Equal(t, 100.0, h.OriginTime)
	require.Equal(t, 10.0, h.Latitude)
	require.Equal(t, 20.0, h.Longitude)
	require.Equal(t, 30.0, h.Depth)
}

func TestUpdateBayesDoesNotForceDepth(t *testing.T) {
	h := NewHypocenter(0, 10, 20, 50)
	h.UpdateBayes(30, 20)
	require.Equal(t, 50.0, h.Depth)
	require.InDelta(t, -20.0, h.DepthResidual, 1e-9)
	require.False(t, math.IsNaN(h.DepthWeight))
}
