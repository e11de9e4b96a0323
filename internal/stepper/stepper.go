// Package stepper implements the rank-sum-estimator step: one call to
// Stepper.DoPhaseIdentification computes the current median residual,
// dispersion, and steepest-descent direction; one call to Stepper.MakeStep
// takes a single linearized step toward the dispersion minimum, including
// the step-length damping logic needed when the linearized step makes
// things worse.
//
// Ported from gov.usgs.locator.Stepper (see _examples/original_source).
// The per-call "what residual vector are we stepping against" state (raw
// vs. decorrelated/projected) is held in the Stepper's stepResiduals and
// stepEstimator fields, which internalPhaseID sets together; MakeStep's
// damping is a plain loop with no separate state type.
package stepper

import (
	"math"

	"github.com/usgs-neic/go-locator/internal/craton"
	"github.com/usgs-neic/go-locator/internal/decorrelate"
	"github.com/usgs-neic/go-locator/internal/linstep"
	"github.com/usgs-neic/go-locator/internal/locutil"
	"github.com/usgs-neic/go-locator/internal/phaseid"
	"github.com/usgs-neic/go-locator/internal/rankest"
	"github.com/usgs-neic/go-locator/internal/zonestats"
	"github.com/usgs-neic/go-locator/model"
	"github.com/usgs-neic/go-locator/traveltime"
)

// StageParams configures one call to DoPhaseIdentification/MakeStep,
// mirroring the per-stage values LocationLoop selects from its stage
// table (spec §4.7).
type StageParams struct {
	OtherWeight   float64
	StickyWeight  float64
	Reidentify    bool
	Reweight      bool
	EpsilonStage  float64 // convergence stage limit, kilometers
	MaxStepLen    float64 // kilometers
	MaxIterations int
}

// result is the rank-sum-estimator outcome of one phase-identification
// pass: the median residual (origin-time correction), the dispersion
// value, and (only when produced by a MakeStep line search) the accepted
// step length.
type result struct {
	StepLength     float64
	MedianResidual float64
	Dispersion     float64
}

// Stepper drives the rank-sum estimator and linearized step for one
// event. One Stepper is created per location run; it holds per-run
// scratch state (the last phase-ID result, the residual vector a step is
// currently linearized against) but no state shared across events.
type Stepper struct {
	Event           *model.Event
	PhaseIdentifier *phaseid.Identifier
	TravelTime      traveltime.Service
	Cratons         *craton.Map
	ZoneStats       *zonestats.Table

	rawEstimator       *rankest.Estimator
	projectedEstimator *rankest.Estimator
	decorrelator       *decorrelate.Decorrelator

	isTectonic bool
	session    traveltime.Session
	sessionKey sessionKey

	lastResult      result
	phaseIDChanged  bool
	stepResiduals   []model.WeightedResidual // residuals the current StepDir/dispersion are linearized against
	stepEstimator   *rankest.Estimator
}

type sessionKey struct {
	depthBin   int
	isTectonic bool
}

// New builds a Stepper for event, wiring in the phase identifier and
// travel-time service it needs and the auxiliary craton/zone-statistics
// reference data used by SetEnvironment.
func New(event *model.Event, identifier *phaseid.Identifier, travelTimeService traveltime.Service, cratons *craton.Map, zoneStats *zonestats.Table) *Stepper {
	return &Stepper{
		Event:              event,
		PhaseIdentifier:    identifier,
		TravelTime:         travelTimeService,
		Cratons:            cratons,
		ZoneStats:          zoneStats,
		rawEstimator:       rankest.New(),
		projectedEstimator: rankest.New(),
		decorrelator:       decorrelate.New(),
	}
}

// SetEnvironment determines whether the current hypocenter is inside a
// craton (everything outside a craton is "tectonic"), and, unless the
// analyst set the depth manually, refreshes the Bayesian depth prior from
// ZoneStats. Ported from Stepper.java's setLocEnvironment.
func (s *Stepper) SetEnvironment() {
	s.isTectonic = s.Cratons == nil || !s.Cratons.IsCraton(s.Event.Hypo.Latitude, s.Event.Hypo.Longitude)

	if !s.Event.IsDepthManual && s.ZoneStats != nil {
		if mean, spread, ok := s.ZoneStats.BayesianDepthPrior(s.Event.Hypo.Longitude, s.Event.Hypo.CoLatitude); ok {
			s.Event.Hypo.UpdateBayes(mean, spread)
		}
	}
}

// DoPhaseIdentification runs a full phase-identification pass and, on
// success, promotes the resulting dispersion to the hypocenter's
// reference dispersion value. Ported from Stepper.java's
// doPhaseIdentification.
func (s *Stepper) DoPhaseIdentification(params StageParams) (model.LocationStatus, error) {
	status, err := s.internalPhaseID(params)
	if err != nil {
		return status, err
	}
	if status == model.StatusSuccess {
		s.Event.Hypo.Dispersion = s.lastResult.Dispersion
	}
	return status, nil
}

// internalPhaseID sets the location environment (if reweight is
// requested), re-identifies phases, and computes the rank-sum-estimator
// median, dispersion, and steepest-descent direction -- either over raw
// residuals or, when the event uses decorrelation, over the decorrelated
// projection. It does not update the hypocenter's reference dispersion;
// callers in the makeStep damping loop compare against the old reference
// value explicitly. Ported from Stepper.java's internalPhaseID.
func (s *Stepper) internalPhaseID(params StageParams) (model.LocationStatus, error) {
	if params.Reweight {
		s.SetEnvironment()
	}

	session, err := s.ensureSession()
	if err != nil {
		return model.StatusLocationFailed, err
	}

	changed, residuals, err := s.PhaseIdentifier.Identify(
		s.Event, session, params.OtherWeight, params.StickyWeight, params.Reidentify, params.Reweight)
	if err != nil {
		return model.StatusLocationFailed, err
	}
	s.phaseIDChanged = changed

	s.Event.UpdateStationStatistics()
	if s.Event.StationsUsed < 3 {
		return model.StatusInsufficientData, nil
	}

	dof := s.Event.Hypo.DegreesOfFreedom
	median := s.rawEstimator.ComputeMedian(residuals)
	demedianedRaw := s.rawEstimator.DeMedianResiduals(residuals, median)

	if s.Event.UseDecorrelation {
		projected := s.decorrelator.Project(demedianedRaw, dof)
		projectedMedian := s.projectedEstimator.ComputeMedian(projected)
		demedianedDesign := s.projectedEstimator.DeMedianDesignMatrix(projected, dof)
		dispersion := s.projectedEstimator.ComputeDispersionValue(demedianedDesign)
		s.Event.Hypo.StepDir = s.projectedEstimator.CompSteepestDescDir(demedianedDesign, dof)
		s.Event.WResProj = demedianedDesign

		s.stepResiduals = demedianedDesign
		s.stepEstimator = s.projectedEstimator
		s.lastResult = result{MedianResidual: projectedMedian, Dispersion: dispersion}
	} else {
		demedianedDesign := s.rawEstimator.DeMedianDesignMatrix(demedianedRaw, dof)
		dispersion := s.rawEstimator.ComputeDispersionValue(demedianedDesign)
		s.Event.Hypo.StepDir = s.rawEstimator.CompSteepestDescDir(demedianedDesign, dof)
		s.Event.WResRaw = demedianedDesign

		s.stepResiduals = demedianedDesign
		s.stepEstimator = s.rawEstimator
		s.lastResult = result{MedianResidual: median, Dispersion: dispersion}
	}

	return model.StatusSuccess, nil
}

// ensureSession rebuilds the travel-time session whenever the source
// depth bin or tectonic flag has changed, matching PhaseID.phaseID's
// practice of requesting a new TTSessionLocal on every pass (the caching
// cost is absorbed by traveltime.localService's table cache).
func (s *Stepper) ensureSession() (traveltime.Session, error) {
	key := sessionKey{depthBin: int(math.Round(s.Event.Hypo.Depth)), isTectonic: s.isTectonic}
	if s.session != nil && key == s.sessionKey {
		return s.session, nil
	}

	session, err := s.TravelTime.NewSession(traveltime.SessionParams{
		EarthModel:      s.Event.EarthModel,
		SourceDepth:     s.Event.Hypo.Depth,
		SourceLatitude:  s.Event.Hypo.Latitude,
		SourceLongitude: s.Event.Hypo.Longitude,
		IsTectonic:      s.isTectonic,
	})
	if err != nil {
		return nil, err
	}
	s.session = session
	s.sessionKey = key
	return session, nil
}

// trial linearly extrapolates the residuals the current StepDir/dispersion
// were computed from by stepLength along StepDir, without re-identifying
// phases, and returns the rank-sum-estimator median/dispersion of the
// extrapolated residuals. This is LinearStep's per-trial evaluation,
// supplied to linstep.Search as its Trial closure.
func (s *Stepper) trial(stepLength float64) (medianResidual, dispersion float64) {
	dof := s.Event.Hypo.DegreesOfFreedom
	dir := s.Event.Hypo.StepDir

	perturbed := make([]model.WeightedResidual, len(s.stepResiduals))
	for i, r := range s.stepResiduals {
		var shift float64
		for k := 0; k < dof && k < len(dir); k++ {
			shift += stepLength * dir[k] * r.Design[k]
		}
		r.Residual -= shift
		r.SortKey = r.Residual
		perturbed[i] = r
	}

	median := s.stepEstimator.ComputeMedian(perturbed)
	demedianed := s.stepEstimator.DeMedianResiduals(perturbed, median)
	return median, s.stepEstimator.ComputeDispersionValue(demedianed)
}

// MakeStep takes one linearized step from the current hypocenter toward
// the rank-sum-estimator dispersion minimum, damping and, if necessary,
// giving up and rolling back to the pre-step hypocenter. Ported from
// Stepper.java's makeStep.
func (s *Stepper) MakeStep(stage, iteration int, params StageParams) (model.LocationStatus, error) {
	hypo := s.Event.Hypo
	status := model.StatusSuccess

	lastAudit := model.NewHypoAudit(hypo, stage, iteration, s.Event.PhasesUsed, status)

	hypo.TimesDamped = 0
	hypo.StepLen = math.Max(hypo.StepLen, 2*params.EpsilonStage)

	lineResult, err := linstep.Search(s.trial, hypo.StepLen, params.EpsilonStage, params.MaxStepLen, hypo.Dispersion)
	if err != nil {
		return model.StatusUnstableSolution, err
	}
	s.lastResult = result{StepLength: lineResult.StepLength, MedianResidual: lineResult.MedianResidual, Dispersion: lineResult.Dispersion}

	if s.lastResult.Dispersion >= hypo.Dispersion && s.lastResult.StepLength < params.EpsilonStage {
		hypo.StepLen = s.lastResult.StepLength
		hypo.DeltaH = 0
		hypo.DeltaZ = 0
		return status, nil
	}

	hypo.MedianRes = s.lastResult.MedianResidual
	hypo.UpdateHypo(s.lastResult.StepLength, s.lastResult.MedianResidual)

	if status, err = s.internalPhaseID(StageParams{OtherWeight: 0.01, StickyWeight: 5, Reidentify: false, Reweight: false}); err != nil {
		return status, err
	}
	if status == model.StatusInsufficientData {
		return status, nil
	}
	hypo.UpdateOrigin(s.lastResult.MedianResidual)

	if s.phaseIDChanged {
		hypo.Dispersion = s.lastResult.Dispersion
		return model.StatusPhaseIDChanged, nil
	}

	if s.lastResult.Dispersion < hypo.Dispersion {
		hypo.Dispersion = s.lastResult.Dispersion
		return model.StatusSuccess, nil
	}

	// Damp the solution. Damping is necessary whenever the linearized step
	// increases the dispersion; it has been observed to be unstable, hence
	// the elaborate trap for a failed damping strategy below. The damping
	// factor is recomputed every pass from the running TimesDamped count,
	// so repeated damping within one MakeStep call decays it further
	// rather than reapplying the same factor.
	for {
		damp := locutil.ComputeDampeningFactor(hypo.TimesDamped)
		if damp*hypo.StepLen <= params.EpsilonStage ||
			(hypo.TimesDamped > 0 && hyposNearlyEqual(hypo, lastAudit)) {
			hypo.ResetHypo(lastAudit)
			hypo.DeltaH = 0
			hypo.DeltaZ = 0

			switch {
			case s.lastResult.Dispersion <= locutil.AlmostConverged*hypo.Dispersion && hypo.StepLen <= params.EpsilonStage:
				status = model.StatusNearlyConverged
			case hypo.StepLen <= locutil.StepTolerance:
				status = model.StatusDidNotConverge
			default:
				status = model.StatusUnstableSolution
			}
			return status, nil
		}

		hypo.TimesDamped++
		hypo.ResetHypo(lastAudit)
		hypo.StepLen *= damp
		hypo.MedianRes *= damp
		hypo.UpdateHypo(hypo.StepLen, hypo.MedianRes)

		if status, err = s.internalPhaseID(StageParams{OtherWeight: 0.01, StickyWeight: 5, Reidentify: false, Reweight: false}); err != nil {
			return status, err
		}
		if status == model.StatusInsufficientData {
			return status, nil
		}
		hypo.UpdateOrigin(s.lastResult.MedianResidual)

		if s.phaseIDChanged {
			hypo.Dispersion = s.lastResult.Dispersion
			return model.StatusPhaseIDChanged, nil
		}

		if s.lastResult.Dispersion < hypo.Dispersion {
			break
		}
	}

	return model.StatusSuccess, nil
}

// hyposNearlyEqual reports whether hypo has moved less than
// locutil.DeltaTol/DepthTol from the audit snapshot, used to detect that
// repeated damping has stalled without improving the solution. Ported
// from the LocUtil.compareHypos usage site in Stepper.java (the
// originating LocUtil.java was not present in the retrieved original
// source; the tolerance values are the same DeltaTol/DepthTol spec §8
// already pins for SetExitCode).
func hyposNearlyEqual(hypo *model.Hypocenter, audit *model.HypoAudit) bool {
	latDelta := math.Abs(hypo.Latitude-audit.Latitude) * locutil.DEG2KM
	lonDelta := math.Abs(hypo.Longitude-audit.Longitude) * locutil.DEG2KM
	depthDelta := math.Abs(hypo.Depth - audit.Depth)
	return latDelta <= locutil.DeltaTol && lonDelta <= locutil.DeltaTol && depthDelta <= locutil.DepthTol
}
