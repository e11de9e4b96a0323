package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGeographicRoundTrip(t *testing.T) {
	for _, lat := range []float64{-89, -45, -10, 0, 10, 45, 89} {
		coLat := GeoCentricColatitude(lat)
		back := GeographicLatitude(coLat)
		require.InDelta(t, lat, back, 1e-9)

		rad := coLat * math.Pi / 180
		s, c := math.Sincos(rad)
		require.InDelta(t, 1.0, s*s+c*c, 1e-15)
	}
}

func TestDistanceAzimuthZero(t *testing.T) {
	srcCoLat := GeoCentricColatitude(10)
	d, _ := DistanceAzimuth(srcCoLat, 20, 10, 20)
	require.InDelta(t, 0, d, 1e-7)
}

func TestDistanceAzimuthNorth(t *testing.T) {
	srcCoLat := GeoCentricColatitude(0)
	d, az := DistanceAzimuth(srcCoLat, 0, 10, 0)
	require.Greater(t, d, 0.0)
	require.InDelta(t, 0, az, 1.0)
}

func TestNormalizeLongitude(t *testing.T) {
	require.InDelta(t, 180.0, NormalizeLongitude(180), 1e-9)
	require.InDelta(t, -179.0, NormalizeLongitude(181), 1e-9)
	require.InDelta(t, 179.0, NormalizeLongitude(-181), 1e-9)
}
