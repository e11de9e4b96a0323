package model

// DesignRow is the (colatitude-step, longitude-step, depth-step)
// derivative row a WeightedResidual contributes to the steepest-descent
// computation. Only the first DegreesOfFreedom entries are meaningful.
type DesignRow [3]float64

// WeightedResidual couples one observation's residual and weight to its
// design row. Per the Bayesian-depth-as-tagged-variant design note, the
// Bayesian depth prior is represented as a WeightedResidual with
// IsDepthPrior set and Pick left nil, rather than as a Pick with a nil
// sentinel phase.
type WeightedResidual struct {
	Pick           *Pick // nil for the Bayesian depth prior entry
	Residual       float64
	Weight         float64
	IsDepthPrior   bool
	Design         DesignRow
	SortKey        float64
}

// NewPickResidual builds a WeightedResidual for an observed pick.
func NewPickResidual(pick *Pick, residual, weight float64, design DesignRow) WeightedResidual {
	return WeightedResidual{
		Pick:     pick,
		Residual: residual,
		Weight:   weight,
		Design:   design,
		SortKey:  residual,
	}
}

// NewDepthPriorResidual builds the always-present Bayesian-depth virtual
// observation: design row (0, 0, 1), per spec §3.
func NewDepthPriorResidual(residual, weight float64) WeightedResidual {
	return WeightedResidual{
		Residual:     residual,
		Weight:       weight,
		IsDepthPrior: true,
		Design:       DesignRow{0, 0, 1},
		SortKey:      residual,
	}
}
