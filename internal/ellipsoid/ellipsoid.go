// Package ellipsoid computes the final location's confidence error
// ellipsoid from the last stage's weighted, demedianed residual design
// matrix: a singular-value decomposition of the design matrix gives the
// ellipsoid's principal axes directly, scaled by a 90%-confidence
// F-distribution factor.
//
// No ErrorEllipsoid/EllipAxis computation class was present in the
// retrieved original source (only the EllipAxis value's usage sites in
// Event.java were retrieved), so this package's algorithm is a
// reconstruction from spec §4.8's description ("error ellipsoid from an
// SVD of the normal-equation design matrix, scaled by a 90% F-distribution
// factor") rather than a direct port. Per spec §1a's linear-algebra
// dependency decision, gonum.org/v1/gonum/mat provides the SVD and
// gonum.org/v1/gonum/stat/distuv provides the F-distribution CDF used to
// find the 90th-percentile factor by bisection (see DESIGN.md: no pack
// example calls an F quantile function directly, so the CDF is inverted
// by hand rather than reimplementing the distribution from scratch).
package ellipsoid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/usgs-neic/go-locator/model"
)

const (
	confidenceLevel = 0.90
	maxBisect       = 60
	bisectTolerance = 1e-6
)

// Compute derives the confidence error ellipsoid's principal semi-axes
// from the design matrix and weights of the final stage's demedianed
// residuals, and an estimate of the residual variance (e.g. the
// rank-sum-estimator RMS-equivalent squared). dof must be 2 (epicenter
// only) or 3 (epicenter + depth); dof 0 (both held) has no error ellipse
// and is an error here.
func Compute(residuals []model.WeightedResidual, dof int, varianceEstimate float64) ([]model.EllipseAxis, error) {
	n := len(residuals)
	if dof <= 0 {
		return nil, fmt.Errorf("ellipsoid: degrees of freedom must be positive, got %d", dof)
	}
	if n <= dof {
		return nil, fmt.Errorf("ellipsoid: need more than %d residuals, got %d", dof, n)
	}

	weighted := mat.NewDense(n, dof, nil)
	for i, r := range residuals {
		w := math.Sqrt(math.Max(r.Weight, 0))
		for k := 0; k < dof; k++ {
			weighted.Set(i, k, w*r.Design[k])
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(weighted, mat.SVDThin); !ok {
		return nil, fmt.Errorf("ellipsoid: SVD factorization failed")
	}
	values := svd.Values(nil)

	var v mat.Dense
	svd.VTo(&v)

	f, err := ninetyPercentF(dof, n-dof)
	if err != nil {
		return nil, err
	}

	scale := f * float64(dof) * varianceEstimate

	type axis struct {
		length float64
		col    int
	}
	axes := make([]axis, dof)
	for k := 0; k < dof; k++ {
		sv := values[k]
		length := 0.0
		if sv > 1e-12 {
			length = math.Sqrt(scale) / sv
		}
		axes[k] = axis{length: length, col: k}
	}

	result := make([]model.EllipseAxis, dof)
	for k, a := range axes {
		horizontal := v.At(0, a.col)
		vertical := 0.0
		if dof > 2 {
			vertical = v.At(2, a.col)
		}
		north := v.At(1, a.col)
		strike := math.Mod(math.Atan2(horizontal, north)*180/math.Pi+360, 360)
		plunge := math.Atan2(vertical, math.Hypot(horizontal, north)) * 180 / math.Pi
		result[k] = model.EllipseAxis{SemiLength: a.length, Strike: strike, Plunge: plunge}
	}

	sortDescending(result)
	return result, nil
}

func sortDescending(axes []model.EllipseAxis) {
	for i := 1; i < len(axes); i++ {
		for j := i; j > 0 && axes[j].SemiLength > axes[j-1].SemiLength; j-- {
			axes[j], axes[j-1] = axes[j-1], axes[j]
		}
	}
}

// ninetyPercentF finds the value f such that the F(d1, d2) CDF equals
// confidenceLevel, by bisection against distuv.F.CDF.
func ninetyPercentF(d1, d2 int) (float64, error) {
	dist := distuv.F{D1: float64(d1), D2: float64(d2)}

	lo, hi := 0.0, 1.0
	for i := 0; dist.CDF(hi) < confidenceLevel; i++ {
		if i >= maxBisect {
			return 0, fmt.Errorf("ellipsoid: failed to bracket the 90%% F factor")
		}
		hi *= 2
	}

	for i := 0; hi-lo > bisectTolerance; i++ {
		if i >= maxBisect {
			break
		}
		mid := (lo + hi) / 2
		if dist.CDF(mid) < confidenceLevel {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2, nil
}
