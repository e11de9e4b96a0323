package craton

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func square() Polygon {
	return Polygon{
		Name:      "test-square",
		Latitude:  []float64{0, 0, 10, 10, 0},
		Longitude: []float64{0, 10, 10, 0, 0},
	}
}

func TestIsCratonInside(t *testing.T) {
	m := NewMap([]Polygon{square()})
	require.True(t, m.IsCraton(5, 5))
}

func TestIsCratonOutside(t *testing.T) {
	m := NewMap([]Polygon{square()})
	require.False(t, m.IsCraton(20, 20))
}

func TestIsCratonNoPolygons(t *testing.T) {
	m := NewMap(nil)
	require.False(t, m.IsCraton(5, 5))
}
