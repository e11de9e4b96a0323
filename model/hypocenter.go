// Package model holds the location engine's core data types: the
// hypocenter being solved for, its audit trail, and the stations, picks,
// and weighted residuals that feed the inversion.
//
// Ported from gov.usgs.locator.Hypocenter and friends (see
// _examples/original_source), restructured from a bag of package-visible
// mutable fields into explicit exported fields plus methods, in the style
// solver.D2Solver's tracklet workspace exposes its iteration state.
package model

import (
	"math"

	"github.com/usgs-neic/go-locator/internal/geo"
	"github.com/usgs-neic/go-locator/internal/locutil"
)

// Hypocenter is the current best estimate of an event's origin time and
// location, plus the bookkeeping LocationLoop/Stepper need to iterate it.
type Hypocenter struct {
	// Solved-for parameters.
	OriginTime           float64 // seconds since the epoch
	Latitude             float64 // geographic degrees
	Longitude            float64 // degrees
	Depth                float64 // kilometers
	BayesianDepth        float64 // kilometers, NaN if unset
	BayesianDepthSpread  float64 // kilometers, NaN if unset

	// Derived geometry, recomputed whenever the hypocenter moves.
	DegreesOfFreedom int
	CoLatitude       float64 // geocentric degrees
	SinLat           float64
	CosLat           float64
	SinLon           float64
	CosLon           float64

	// Bayesian depth bookkeeping.
	DepthResidual float64
	DepthWeight   float64

	// Iteration state, reset/updated by Stepper/LocationLoop.
	TimesDamped int
	MedianRes   float64 // linear origin-time shift estimate, seconds
	Dispersion  float64 // R-estimator dispersion/penalty value
	RMS         float64 // R-estimator equivalent least-squares RMS
	StepLen     float64 // kilometers
	DeltaH      float64 // horizontal step length, kilometers
	DeltaZ      float64 // vertical (depth) step length, kilometers
	StepDir     []float64
}

// NewHypocenter builds a hypocenter ready to start a location pass, with
// depth clamped to the legal range, the Bayesian-depth fields (depth,
// spread, residual, weight) NaN until a prior is set, and iteration fields
// at zero.
func NewHypocenter(originTime, latitude, longitude, depth float64) *Hypocenter {
	h := &Hypocenter{
		BayesianDepth:       math.NaN(),
		BayesianDepthSpread: math.NaN(),
		DepthResidual:       math.NaN(),
		DepthWeight:         math.NaN(),
	}
	depth = clampDepth(depth)
	h.SetCoordinates(originTime, latitude, longitude, depth)
	return h
}

func clampDepth(depth float64) float64 {
	if depth < locutil.DepthMin {
		return locutil.DepthMin
	}
	if depth > locutil.DepthMax {
		return locutil.DepthMax
	}
	return depth
}

// AddBayes sets an analyst-requested Bayesian depth, which forces the
// hypocenter's current depth to the Bayesian value. Per Hypocenter.java's
// addBayes, the Bayesian spread is treated as a 90th-percentile interval,
// so the associated weight is 3/spread rather than 1/spread.
func (h *Hypocenter) AddBayes(bayesianDepth, bayesianDepthSpread float64) {
	h.BayesianDepth = clampDepth(bayesianDepth)
	h.BayesianDepthSpread = bayesianDepthSpread
	h.Depth = h.BayesianDepth
	h.DepthResidual = 0
	h.DepthWeight = 3 / bayesianDepthSpread
}

// UpdateBayes refreshes the Bayesian depth prior without forcing the
// current depth to move (used when the prior is derived from ZoneStats
// rather than set by an analyst).
func (h *Hypocenter) UpdateBayes(bayesianDepth, bayesianDepthSpread float64) {
	h.BayesianDepth = bayesianDepth
	h.BayesianDepthSpread = bayesianDepthSpread
	h.DepthResidual = bayesianDepth - h.Depth
	h.DepthWeight = 3 / bayesianDepthSpread
}

// SetDegreesOfFreedom records how many of (time, epicenter, depth) the
// inversion will actually solve for, and sizes the step-direction vector
// to match.
func (h *Hypocenter) SetDegreesOfFreedom(heldLoc, heldDepth bool) {
	switch {
	case heldLoc:
		h.DegreesOfFreedom = 0
	case heldDepth:
		h.DegreesOfFreedom = 2
	default:
		h.DegreesOfFreedom = 3
	}
	if h.DegreesOfFreedom > 0 {
		h.StepDir = make([]float64, h.DegreesOfFreedom)
	}
}

// SetCoordinates directly replaces the hypocenter's origin time and
// location (e.g. on initialization, or when an analyst holds the
// location), recomputing derived geocentric geometry and the Bayesian
// depth residual.
func (h *Hypocenter) SetCoordinates(originTime, latitude, longitude, depth float64) {
	h.OriginTime = originTime
	h.Latitude = latitude
	h.Longitude = longitude
	h.Depth = depth
	h.CoLatitude = geo.GeoCentricColatitude(latitude)
	h.updateSines()
	if !math.IsNaN(h.BayesianDepth) {
		h.DepthResidual = h.BayesianDepth - depth
	}
}

// UpdateHypo moves the hypocenter by a linearized optimal step: stepLen
// kilometers along StepDir, plus a dT second origin-time shift. Ported
// from Hypocenter.java's two-argument updateHypo, including its colatitude
// and longitude wraparound handling.
func (h *Hypocenter) UpdateHypo(stepLen, dT float64) {
	h.StepLen = stepLen
	h.OriginTime += dT

	h.DeltaH = math.Hypot(stepLen*h.StepDir[0], stepLen*h.StepDir[1])

	h.CoLatitude += stepLen * h.StepDir[0] / locutil.DEG2KM
	h.Longitude += stepLen * h.StepDir[1] / (locutil.DEG2KM * h.SinLat)

	h.CoLatitude = math.Mod(h.CoLatitude, 360)
	if h.CoLatitude < 0 {
		h.CoLatitude += 360
	}
	if h.CoLatitude > 180 {
		h.CoLatitude = 360 - h.CoLatitude
		h.Longitude += 180
	}
	h.Longitude = math.Mod(h.Longitude, 360)
	if h.Longitude < -180 {
		h.Longitude += 360
	} else if h.Longitude > 180 {
		h.Longitude -= 360
	}

	if h.DegreesOfFreedom > 2 {
		newDepth := clampDepth(h.Depth + stepLen*h.StepDir[2])
		h.DeltaZ = newDepth - h.Depth
		h.Depth = newDepth
	}

	h.Latitude = geo.GeographicLatitude(h.CoLatitude)
	h.updateSines()
	if !math.IsNaN(h.BayesianDepth) {
		h.DepthResidual = h.BayesianDepth - h.Depth
	}
}

// UpdateOrigin shifts the origin time alone by dT seconds.
func (h *Hypocenter) UpdateOrigin(dT float64) {
	h.OriginTime += dT
}

func (h *Hypocenter) updateSines() {
	coLatRad := locutil.DegToRad(h.CoLatitude)
	lonRad := locutil.DegToRad(h.Longitude)
	h.SinLat, h.CosLat = math.Sincos(coLatRad)
	h.SinLon, h.CosLon = math.Sincos(lonRad)
}

// ResetHypo rolls the hypocenter's position back to a prior audit
// snapshot, used when step-length damping must back off a bad step.
func (h *Hypocenter) ResetHypo(backup *HypoAudit) {
	h.OriginTime = backup.OriginTime
	h.Latitude = backup.Latitude
	h.Longitude = backup.Longitude
	h.Depth = backup.Depth
	h.CoLatitude = backup.CoLatitude
	h.SinLat = backup.CoLatitudeSine
	h.CosLat = backup.CoLatitudeCosine
	h.SinLon = backup.LongitudeSine
	h.CosLon = backup.LongitudeCosine
	if !math.IsNaN(h.BayesianDepth) {
		h.DepthResidual = h.BayesianDepth - h.Depth
	}
}
