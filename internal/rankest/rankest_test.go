package rankest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/usgs-neic/go-locator/model"
)

func wr(residual, weight float64, design model.DesignRow) model.WeightedResidual {
	return model.WeightedResidual{Residual: residual, Weight: weight, Design: design}
}

func TestComputeMedianSimple(t *testing.T) {
	e := New()
	residuals := []model.WeightedResidual{
		wr(-1, 1, model.DesignRow{}),
		wr(0, 1, model.DesignRow{}),
		wr(1, 1, model.DesignRow{}),
	}
	require.InDelta(t, 0, e.ComputeMedian(residuals), 1e-9)
}

func TestComputeMedianEmpty(t *testing.T) {
	e := New()
	require.Equal(t, 0.0, e.ComputeMedian(nil))
}

func TestDispersionNonNegativeAndZeroAtOrigin(t *testing.T) {
	e := New()
	residuals := []model.WeightedResidual{
		wr(0, 1, model.DesignRow{}),
		wr(0, 2, model.DesignRow{}),
	}
	require.Equal(t, 0.0, e.ComputeDispersionValue(residuals))

	residuals = []model.WeightedResidual{
		wr(2, 1, model.DesignRow{}),
		wr(-3, 1, model.DesignRow{}),
	}
	require.Greater(t, e.ComputeDispersionValue(residuals), 0.0)
}

func TestDeMedianResiduals(t *testing.T) {
	e := New()
	residuals := []model.WeightedResidual{wr(5, 1, model.DesignRow{}), wr(7, 1, model.DesignRow{})}
	out := e.DeMedianResiduals(residuals, 5)
	require.InDelta(t, 0, out[0].Residual, 1e-9)
	require.InDelta(t, 2, out[1].Residual, 1e-9)
}

func TestCompSteepestDescDirUnitLength(t *testing.T) {
	e := New()
	residuals := []model.WeightedResidual{
		wr(-2, 1, model.DesignRow{1, 0, 0}),
		wr(1, 1, model.DesignRow{0, 1, 0}),
		wr(3, 1, model.DesignRow{0, 0, 1}),
	}
	dir := e.CompSteepestDescDir(residuals, 3)
	norm := 0.0
	for _, v := range dir {
		norm += v * v
	}
	require.InDelta(t, 1.0, norm, 1e-9)
}

func TestCompSteepestDescDirEmpty(t *testing.T) {
	e := New()
	dir := e.CompSteepestDescDir(nil, 3)
	require.Equal(t, []float64{0, 0, 0}, dir)
}
