// Package rankest implements the robust rank-sum estimator the location
// engine uses in place of ordinary least squares: a weighted median for
// the origin-time correction, a Huber-style dispersion penalty, and
// a steepest-descent direction derived from residual ranks.
//
// Ported from the R-estimator usage sites in gov.usgs.locator.Stepper and
// gov.usgs.locator.PhaseID (see _examples/original_source); the concrete
// Restimator class itself was not present in the retrieved original
// source, so its public operations are reconstructed from spec §4.2 and
// how Stepper calls them.
package rankest

import (
	"math"
	"sort"

	"github.com/usgs-neic/go-locator/model"
)

// Estimator computes robust statistics over a WeightedResidual vector. It
// holds no state between calls; one Estimator is shared by all stages of
// a single Event's location run (spec §5 — reentrant, no event-to-event
// state).
type Estimator struct{}

// New constructs an Estimator.
func New() *Estimator { return &Estimator{} }

type rankedResidual struct {
	index    int
	residual float64
	weight   float64
}

// ComputeMedian returns the weighted median of the residuals: the
// cumulative weighted-residual function is built in ascending residual
// order, each residual sitting at the midpoint of its own weight, and the
// result is linearly interpolated between the two adjacent residuals
// whose midpoint cumulative weights bracket half the total weight.
func (e *Estimator) ComputeMedian(residuals []model.WeightedResidual) float64 {
	if len(residuals) == 0 {
		return 0
	}

	ranked := sortedByResidual(residuals)

	totalWeight := 0.0
	for _, r := range ranked {
		totalWeight += r.weight
	}
	if totalWeight <= 0 {
		return ranked[len(ranked)/2].residual
	}
	half := totalWeight / 2

	cumulative := 0.0
	prevMid := 0.0
	for i, r := range ranked {
		mid := cumulative + r.weight/2
		cumulative += r.weight
		if mid >= half {
			if i == 0 {
				return r.residual
			}
			prev := ranked[i-1]
			span := mid - prevMid
			if span <= 0 {
				return r.residual
			}
			frac := (half - prevMid) / span
			return prev.residual + frac*(r.residual-prev.residual)
		}
		prevMid = mid
	}
	return ranked[len(ranked)-1].residual
}

// DeMedianResiduals returns a copy of residuals with the given median
// subtracted from each residual value.
func (e *Estimator) DeMedianResiduals(residuals []model.WeightedResidual, median float64) []model.WeightedResidual {
	out := make([]model.WeightedResidual, len(residuals))
	for i, r := range residuals {
		r.Residual -= median
		r.SortKey = r.Residual
		out[i] = r
	}
	return out
}

// DeMedianDesignMatrix subtracts the weighted column means from each
// design row, so the steepest-descent direction is computed relative to a
// centered design matrix.
func (e *Estimator) DeMedianDesignMatrix(residuals []model.WeightedResidual, dof int) []model.WeightedResidual {
	if len(residuals) == 0 {
		return residuals
	}

	var totalWeight float64
	var means [3]float64
	for _, r := range residuals {
		for k := 0; k < dof; k++ {
			means[k] += r.Weight * r.Design[k]
		}
		totalWeight += r.Weight
	}
	if totalWeight > 0 {
		for k := 0; k < dof; k++ {
			means[k] /= totalWeight
		}
	}

	out := make([]model.WeightedResidual, len(residuals))
	for i, r := range residuals {
		for k := 0; k < dof; k++ {
			r.Design[k] -= means[k]
		}
		out[i] = r
	}
	return out
}

// rho is the Huber-style dispersion penalty: even (rho(-x) == rho(x)),
// zero only at zero, non-decreasing in |x|, and convex. Inside the knee
// it is quadratic, 0.5·x²/knee; beyond the knee the penalty grows
// linearly, bounding the influence of any one outlier.
func rho(x float64) float64 {
	const knee = 1.5
	ax := math.Abs(x)
	if ax <= knee {
		return 0.5 * ax * ax / knee
	}
	return ax - knee/2
}

// ComputeDispersionValue returns Σ ρ(wᵢ·residualᵢ) over the residual
// vector. It is always ≥ 0, and is exactly 0 when every residual is 0.
func (e *Estimator) ComputeDispersionValue(residuals []model.WeightedResidual) float64 {
	sum := 0.0
	for _, r := range residuals {
		sum += rho(r.Weight * r.Residual)
	}
	return sum
}

// CompSteepestDescDir returns the dof-dimensional, unit-length steepest
// descent direction: a weighted sum of rank-score(residual)·designRow,
// normalized. Ties receive averaged ranks per spec §4.2.
func (e *Estimator) CompSteepestDescDir(residuals []model.WeightedResidual, dof int) []float64 {
	direction := make([]float64, dof)
	if len(residuals) == 0 {
		return direction
	}

	ranked := sortedByResidual(residuals)
	scores := rankScores(ranked)

	for i, r := range ranked {
		score := scores[i]
		src := residuals[r.index]
		for k := 0; k < dof; k++ {
			direction[k] += score * src.Design[k]
		}
	}

	norm := 0.0
	for _, v := range direction {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for k := range direction {
			direction[k] /= norm
		}
	}
	return direction
}

func sortedByResidual(residuals []model.WeightedResidual) []rankedResidual {
	ranked := make([]rankedResidual, len(residuals))
	for i, r := range residuals {
		ranked[i] = rankedResidual{index: i, residual: r.Residual, weight: r.Weight}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].residual < ranked[j].residual
	})
	return ranked
}

// rankScores assigns each ranked residual a symmetric score proportional
// to (rank/(n+1) - 0.5), with tied residuals receiving the average score
// of their tied block, matching a standard rank-sum (Wilcoxon-style)
// scoring scheme.
func rankScores(ranked []rankedResidual) []float64 {
	n := len(ranked)
	scores := make([]float64, n)

	i := 0
	for i < n {
		j := i + 1
		for j < n && ranked[j].residual == ranked[i].residual {
			j++
		}
		avgRank := float64(i+j+1) / 2 // 1-indexed average rank over [i, j)
		score := avgRank/float64(n+1) - 0.5
		for k := i; k < j; k++ {
			scores[k] = score
		}
		i = j
	}
	return scores
}
