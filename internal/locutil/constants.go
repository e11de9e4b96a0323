// Package locutil holds the engine-wide numeric constants and small
// stateless helper functions shared across the location engine packages.
//
// In the system this was ported from, these lived as static fields and
// methods on a single LocUtil class. Here they are plain package-level
// constants and functions threaded explicitly into the packages that need
// them, per the "no process-wide mutable state" design note: nothing in
// this package is mutable.
package locutil

import "math"

// Geometry.
const (
	// DEG2KM is the approximate number of kilometers per degree of arc
	// on the reference sphere.
	DEG2KM = 111.19

	// DepthMin and DepthMax bound a legal hypocenter depth in kilometers.
	DepthMin = 0.0
	DepthMax = 800.0

	// EllipticityFactor is the WGS84-like flattening reduction used to
	// convert geographic to geocentric latitude (tan(geocentric) =
	// EllipticityFactor * tan(geographic)).
	EllipticityFactor = 0.99330552
)

// Phase identification and estimator controls.
const (
	// AssocTolerance is the maximum residual (seconds) allowed when
	// re-associating a pick to a theoretical phase of the same name
	// without a full re-identification pass.
	AssocTolerance = 15.0

	// NullAffinity is the default phase affinity used when a pick's
	// current phase code does not match the theoretical phase being
	// scored.
	NullAffinity = 1.0

	// DownWeight penalizes a theoretical phase flagged as not normally
	// observable at the current distance.
	DownWeight = 0.2

	// GroupWeight rewards an observed phase group matching a theoretical
	// phase's primary or auxiliary group.
	GroupWeight = 1.0

	// TypeWeight further penalizes a phase-group mismatch when the observed
	// and theoretical arrival types (P vs S) also disagree for a trusted
	// (non-automatic) pick.
	TypeWeight = 0.5

	// CovarianceCoverage is the fraction of cumulative eigenvalue the
	// Decorrelator retains when projecting residuals.
	CovarianceCoverage = 0.99

	// AlmostConverged bounds how close a failed damping pass' dispersion
	// must be to the reference dispersion to report NEARLY_CONVERGED
	// instead of DID_NOT_CONVERGE / UNSTABLE_SOLUTION.
	AlmostConverged = 1.1

	// StepTolerance is the step length (km) below which a failed damping
	// pass is considered a (non-catastrophic) non-convergence.
	StepTolerance = 0.01

	// DeltaTol and DepthTol bound how far a hypocenter must move,
	// cumulatively, to be considered "moved" at all (distinguishes
	// SUCCESSFUL_LOCATION from DID_NOT_MOVE).
	DeltaTol = 0.01 // km
	DepthTol = 0.01 // km

	// DeltaLoc is the epicentral distance (degrees) inside which a pick
	// counts as "local" for quality-flag purposes.
	DeltaLoc = 2.0

	// BadPsRatio bounds the fraction of apparently misidentified first
	// arrivals the initial phase-identification pass tolerates before
	// switching from its easy (auto picks only) cleanup to its stricter
	// one that forces automatic first arrivals to the first theoretical
	// phase the travel-time session lists.
	BadPsRatio = 0.2

	// InitialPhaseIDMaxDistance is the epicentral distance (degrees)
	// beyond which the initial phase-identification pass leaves a first
	// arrival alone rather than tentatively residual/weight it.
	InitialPhaseIDMaxDistance = 100.0

	// MaxBisect bounds the number of bisection iterations LinearStep may
	// take while bracketing a dispersion minimum.
	MaxBisect = 25

	// DefaultDepthSE is the minimum Bayesian depth spread (km) used when
	// a ZoneStats cell's spread would otherwise be implausibly tight.
	DefaultDepthSE = 5.0

	// HeldDepthSE and DefaultFreeDepthSE are the simulated Bayesian
	// spreads used for held locations/depths so that error statistics
	// remain meaningful even though the solution does not move.
	HeldDepthSE       = 5.0
	DefaultFreeDepthSE = 20.0
)

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 { return deg * math.Pi / 180 }

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 { return rad * 180 / math.Pi }

// ComputeDistCorr amplifies the figure-of-merit boost given to the first
// arriving phase in a pick group once the epicentral distance (degrees)
// exceeds a threshold where crustal phases start to separate cleanly from
// the first mantle arrival.
func ComputeDistCorr(distanceDeg float64) float64 {
	const threshold = 30.0
	if distanceDeg <= threshold {
		return 1.0
	}
	corr := 1.0 + (distanceDeg-threshold)/100.0
	if corr > 1.5 {
		return 1.5
	}
	return corr
}

// ComputePDFResValue evaluates a Cauchy-like kernel density for a residual
// given a scale (spread). This is deliberately heavier-tailed than a
// Gaussian so that one outlying pick cannot dominate the figure-of-merit
// product the way a Gaussian tail would force it to.
func ComputePDFResValue(residual, center, spread float64) float64 {
	if spread <= 0 {
		spread = 1.0
	}
	x := (residual - center) / spread
	return 1.0 / (math.Pi * spread * (1.0 + x*x))
}

// ComputeProximityBoost is a monotone function of an affinity-weighted
// absolute residual: small residuals are boosted, large ones are not.
func ComputeProximityBoost(absWeightedResidual float64) float64 {
	return 1.0 + 1.0/(1.0+absWeightedResidual)
}

// ComputeDampeningFactor returns the step-length damping factor to apply
// the nth time (0-indexed) the current MakeStep call has had to damp; the
// count restarts at every call. It is bounded in (0, 1) and decreases as
// damping repeats within the call,
// per spec's step-count-based schedule decision (see DESIGN.md).
func ComputeDampeningFactor(timesDamped int) float64 {
	factor := 1.0 / float64(timesDamped+2)
	if factor < 0.1 {
		return 0.1
	}
	return factor
}
