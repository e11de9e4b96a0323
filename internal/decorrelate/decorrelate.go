// Package decorrelate builds an empirical covariance estimate of the
// de-medianed residuals and projects the weighted-residual vector onto
// its leading, best-determined eigenvectors, so that correlated picks
// (e.g. several phases at one well-recorded station) cannot dominate the
// rank-sum estimator the way they would uncorrected.
//
// Ported from the DeCorr usage sites in gov.usgs.locator.Event/Stepper
// (see _examples/original_source; a standalone DeCorr.java was not
// present in the retrieved original source). Eigendecomposition follows
// the gonum usage pattern in chrissnell-remoteweather's snow-calibrate
// tool, the only pack repo that exercises gonum/mat.
package decorrelate

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/usgs-neic/go-locator/internal/locutil"
	"github.com/usgs-neic/go-locator/model"
)

// Decorrelator holds no state between calls; it is reentrant like
// rankest.Estimator.
type Decorrelator struct {
	// Coverage is the fraction of cumulative eigenvalue the projection
	// retains, defaulting to locutil.CovarianceCoverage.
	Coverage float64
}

// New builds a Decorrelator configured with the standard coverage
// fraction.
func New() *Decorrelator {
	return &Decorrelator{Coverage: locutil.CovarianceCoverage}
}

// Project builds the empirical covariance C = D·Dᵀ of the (already
// de-medianed) residuals' design rows — an n x n matrix over picks, not
// over design columns, so that picks sharing a design row (e.g. several
// phases at the same well-recorded station) are recognized as correlated
// — retains the leading eigenvectors covering Coverage of the eigenvalue
// sum, and returns the projected weighted-residual vector: entries
// (Uᵀ·rawResiduals)ᵢ with weight √λᵢ and design row Uᵀ·D. Because C has
// rank at most dof, at most dof entries survive: the projection reduces n
// correlated picks to a handful of decorrelated combinations.
func (d *Decorrelator) Project(raw []model.WeightedResidual, dof int) []model.WeightedResidual {
	n := len(raw)
	if n == 0 || dof == 0 {
		return nil
	}

	design := mat.NewDense(n, dof, nil)
	residualVec := mat.NewVecDense(n, nil)
	for i, r := range raw {
		for k := 0; k < dof; k++ {
			design.Set(i, k, r.Design[k])
		}
		residualVec.SetVec(i, r.Residual)
	}

	var cov mat.SymDense
	cov.SymOuterK(1, design)

	var eig mat.EigenSym
	if ok := eig.Factorize(&cov, true); !ok {
		return raw
	}

	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	type ev struct {
		value  float64
		column int
	}
	order := make([]ev, len(values))
	for i, v := range values {
		order[i] = ev{value: v, column: i}
	}
	sort.Slice(order, func(i, j int) bool { return order[i].value > order[j].value })

	total := 0.0
	for _, e := range order {
		if e.value > 0 {
			total += e.value
		}
	}
	if total <= 0 {
		return raw
	}

	kept := 0
	running := 0.0
	for _, e := range order {
		if e.value <= 0 {
			continue
		}
		running += e.value
		kept++
		if running/total >= d.Coverage {
			break
		}
	}
	if kept == 0 {
		kept = 1
	}

	projected := make([]model.WeightedResidual, kept)
	for idx := 0; idx < kept; idx++ {
		lambda := order[idx].value
		col := order[idx].column

		var projectedResidual float64
		for i := 0; i < n; i++ {
			projectedResidual += vectors.At(i, col) * residualVec.AtVec(i)
		}

		var designRow model.DesignRow
		for k := 0; k < dof; k++ {
			var v float64
			for i := 0; i < n; i++ {
				v += vectors.At(i, col) * design.At(i, k)
			}
			designRow[k] = v
		}

		projected[idx] = model.WeightedResidual{
			Residual: projectedResidual,
			Weight:   math.Sqrt(math.Max(lambda, 0)),
			Design:   designRow,
			SortKey:  projectedResidual,
		}
	}

	return projected
}
