// Package locloop drives the staged outer iteration that refines a
// hypocenter to convergence: four stages of decreasing phase-
// re-identification aggressiveness and tightening convergence limits,
// each running Stepper.MakeStep until it converges, fails, or reports a
// phase-identification change that restarts the stage.
//
// The per-stage driver loop itself was not present in the retrieved
// original source (only Stepper.java's doPhaseIdentification/makeStep
// were retrieved); this package implements the staged control flow
// described in spec §4.7 directly, using the stage table and
// reset-between-stages behavior (resetTriage, resetUseFlags,
// saveWeightedResiduals) spec §4.7 names. See DESIGN.md.
package locloop

import (
	"github.com/usgs-neic/go-locator/internal/stepper"
	"github.com/usgs-neic/go-locator/model"
)

// DefaultStages is the four-stage convergence table spec §4.7 pins:
// aggressive re-identification and a loose convergence limit in stage 0,
// tightening through stage 2, and a final stage that takes a single step
// (MaxIterations 1) without re-identification or reweighting, before
// error-ellipse computation.
func DefaultStages() []stepper.StageParams {
	return []stepper.StageParams{
		{OtherWeight: 3.0, StickyWeight: 1.0, Reidentify: true, Reweight: true, EpsilonStage: 2.0, MaxStepLen: 50.0, MaxIterations: 20},
		{OtherWeight: 1.0, StickyWeight: 3.0, Reidentify: true, Reweight: true, EpsilonStage: 0.5, MaxStepLen: 20.0, MaxIterations: 15},
		{OtherWeight: 0.05, StickyWeight: 30.0, Reidentify: false, Reweight: true, EpsilonStage: 0.1, MaxStepLen: 5.0, MaxIterations: 10},
		{OtherWeight: 0.05, StickyWeight: 30.0, Reidentify: false, Reweight: false, EpsilonStage: 0.1, MaxStepLen: 5.0, MaxIterations: 1},
	}
}

// Loop drives one event's Stepper through a sequence of stages.
type Loop struct {
	Event   *model.Event
	Stepper *stepper.Stepper
	Stages  []stepper.StageParams
}

// New builds a Loop. A nil stages slice uses DefaultStages.
func New(event *model.Event, st *stepper.Stepper, stages []stepper.StageParams) *Loop {
	if stages == nil {
		stages = DefaultStages()
	}
	return &Loop{Event: event, Stepper: st, Stages: stages}
}

// Locate runs the initial phase-identification pass, then every stage in
// order, stopping early if a stage reports insufficient data or an
// unrecoverable failure. It returns the status of the last stage
// attempted.
func (l *Loop) Locate() (model.LocationStatus, error) {
	status, err := l.Stepper.RunInitialPhaseID()
	if err != nil {
		return status, err
	}
	if status == model.StatusInsufficientData || status == model.StatusLocationFailed {
		return status, nil
	}

	for stageIdx, params := range l.Stages {
		l.resetTriage()
		l.resetUseFlags()

		var err error
		status, err = l.runStage(stageIdx, params)
		if err != nil {
			return status, err
		}
		if status == model.StatusInsufficientData || status == model.StatusLocationFailed {
			return status, nil
		}
	}
	return status, nil
}

// runStage performs the stage's initial phase-identification pass, then
// iterates MakeStep until convergence, a hard failure, or the stage's
// iteration budget is exhausted. A PHASEID_CHANGED result restarts the
// stage's phase identification rather than ending the stage, matching
// Stepper.java's makeStep contract (the caller is expected to loop back
// to doPhaseIdentification on that status).
func (l *Loop) runStage(stageIdx int, params stepper.StageParams) (model.LocationStatus, error) {
	status, err := l.Stepper.DoPhaseIdentification(params)
	if err != nil {
		return status, err
	}
	l.Event.SaveWeightedResiduals()
	if status != model.StatusSuccess {
		return status, nil
	}

	if params.MaxIterations == 0 {
		return status, nil
	}

	for iteration := 0; iteration < params.MaxIterations; iteration++ {
		status, err = l.Stepper.MakeStep(stageIdx, iteration, params)
		if err != nil {
			return status, err
		}

		if status == model.StatusPhaseIDChanged {
			status, err = l.Stepper.DoPhaseIdentification(params)
			if err != nil {
				return status, err
			}
			l.Event.SaveWeightedResiduals()
			if status != model.StatusSuccess {
				return status, nil
			}
			continue
		}

		if status != model.StatusSuccess {
			// NEARLY_CONVERGED, DID_NOT_CONVERGE, UNSTABLE_SOLUTION, or
			// INSUFFICIENT_DATA all end the stage.
			return status, nil
		}
	}

	return status, nil
}

// resetTriage clears every pick's triage flag at the start of a stage, so
// a pick dropped for a bad residual in an earlier stage gets a fresh
// chance once the identification has tightened.
func (l *Loop) resetTriage() {
	for _, p := range l.Event.Picks {
		p.Triage = false
	}
}

// resetUseFlags restores every non-triaged pick's use flag to its
// originally-submitted CommandUse at the start of a stage, per
// InitialPhaseID.resetUseFlags's "pick.used = pick.cmndUse" contract (see
// DESIGN.md): a pick submitted with use=false must stay unused across
// every stage, not just the stage it was triaged in.
func (l *Loop) resetUseFlags() {
	for _, p := range l.Event.Picks {
		if !p.Triage {
			p.Used = p.CommandUse
		}
	}
}
