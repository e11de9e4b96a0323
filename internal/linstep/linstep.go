// Package linstep implements the 1-D line search the location engine
// runs along the steepest-descent direction: a monotone-decrease check
// followed, on failure, by bisection to bracket the dispersion minimum.
//
// Ported from the LinearStep usage sites in gov.usgs.locator.Stepper (see
// _examples/original_source; a standalone LinearStep.java was not present
// in the retrieved original source) and spec §4.5.
package linstep

import (
	"fmt"

	"github.com/usgs-neic/go-locator/internal/locutil"
)

// Trial evaluates the residual/dispersion state at a candidate step
// length λ along the descent direction, without re-identifying phases.
// The caller supplies this as a closure capturing the current hypocenter,
// picks, and estimator.
type Trial func(lambda float64) (medianResidual, dispersion float64)

// Result is the outcome of a line search.
type Result struct {
	StepLength     float64
	MedianResidual float64
	Dispersion     float64
}

// Search trials step lengths 0, L, 2L, ... up to Lmax. If dispersion
// decreases monotonically, it returns the largest accepted λ. Otherwise
// it brackets the minimum with three trial values and bisects until the
// bracket width is at most epsilonStage, per spec §4.5. Returns an error
// if bisection exceeds locutil.MaxBisect iterations.
func Search(trial Trial, previousStepLen, epsilonStage, maxStepLen, dispersion0 float64) (Result, error) {
	if previousStepLen <= 0 {
		previousStepLen = epsilonStage
	}

	type sample struct {
		lambda     float64
		median     float64
		dispersion float64
	}

	samples := []sample{{lambda: 0, dispersion: dispersion0}}
	lambda := previousStepLen
	for lambda <= maxStepLen {
		median, dispersion := trial(lambda)
		samples = append(samples, sample{lambda: lambda, median: median, dispersion: dispersion})
		lambda += previousStepLen
	}
	// Always evaluate the stage maximum as the final candidate.
	if samples[len(samples)-1].lambda != maxStepLen {
		median, dispersion := trial(maxStepLen)
		samples = append(samples, sample{lambda: maxStepLen, median: median, dispersion: dispersion})
	}

	monotone := true
	for i := 1; i < len(samples); i++ {
		if samples[i].dispersion > samples[i-1].dispersion {
			monotone = false
			break
		}
	}
	if monotone {
		best := samples[len(samples)-1]
		return Result{StepLength: best.lambda, MedianResidual: best.median, Dispersion: best.dispersion}, nil
	}

	// Bracket the minimum: find the sample with the lowest dispersion, and
	// bisect between the sample before it and the sample after.
	minIdx := 0
	for i := 1; i < len(samples); i++ {
		if samples[i].dispersion < samples[minIdx].dispersion {
			minIdx = i
		}
	}
	lo := samples[0].lambda
	hi := samples[len(samples)-1].lambda
	if minIdx > 0 {
		lo = samples[minIdx-1].lambda
	}
	if minIdx < len(samples)-1 {
		hi = samples[minIdx+1].lambda
	}

	best := samples[minIdx]
	for i := 0; hi-lo > epsilonStage; i++ {
		if i >= locutil.MaxBisect {
			return Result{}, fmt.Errorf("linstep: bisection exceeded %d iterations", locutil.MaxBisect)
		}
		mid := (lo + hi) / 2
		median, dispersion := trial(mid)
		if dispersion < best.dispersion {
			best = sample{lambda: mid, median: median, dispersion: dispersion}
		}
		leftMedian, leftDispersion := trial((lo + mid) / 2)
		_ = leftMedian
		if leftDispersion < dispersion {
			hi = mid
		} else {
			lo = mid
		}
	}

	return Result{StepLength: best.lambda, MedianResidual: best.median, Dispersion: best.dispersion}, nil
}
