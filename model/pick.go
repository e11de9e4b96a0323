package model

import (
	"time"

	"github.com/google/uuid"
)

// AuthorType classifies who/what produced a pick, which PhaseID uses to
// decide how hard to trust an existing phase identification.
type AuthorType int

// Author types, ported from gov.usgs.processingformats.AuthorType.
const (
	AuthorContributedAutomatic AuthorType = iota
	AuthorLocalAutomatic
	AuthorContributedHuman
	AuthorLocalHuman
)

// IsAutomatic reports whether the author type is one of the two automatic
// (non-analyst) kinds.
func (a AuthorType) IsAutomatic() bool {
	return a == AuthorContributedAutomatic || a == AuthorLocalAutomatic
}

// Pick is one arrival-time observation at a station. Fields mutated by
// PhaseID (CurrentPhaseCode, StatisticalFoM, ForceAssociation, Residual,
// Weight) are recomputed on every location pass; the rest are set at
// intake and held fixed. Ported from the Pick usage sites in
// gov.usgs.locator.PhaseID/Event (a standalone Pick.java was not present
// in the retrieved original source).
type Pick struct {
	ID uuid.UUID

	Station         *Station
	Channel         string
	Source          string
	AuthorType      AuthorType
	ArrivalTime     time.Time
	TravelTime      float64 // seconds, relative to the current hypocenter origin time

	// Phase identification.
	AssociatedPhaseCode string // phase code as originally associated
	CurrentPhaseCode    string // phase code as last identified by PhaseID
	BestPhaseCode       string // AssociatedPhaseCode, or CurrentPhaseCode if reidentified
	ObservedPhaseCode   string

	Affinity float64 // >= 1, default locutil.NullAffinity
	Quality  float64

	Residual float64 // seconds
	Weight   float64
	Importance float64

	// CommandUse is the use flag as submitted at intake (spec §6's
	// inputData[].use): NewPick defaults it to true, intake (locservice's
	// buildEvent) copies the request's value, and the location passes
	// never mutate it.
	// Used is recomputed every stage from this value by
	// locloop.Loop.resetUseFlags, which must restore to CommandUse rather
	// than forcing every pick on.
	CommandUse bool

	Used             bool
	Triage           bool
	IsSurfaceWave    bool
	ForceAssociation bool

	StatisticalFoM float64
}

// NewPick constructs a Pick with its identity and immutable intake fields
// set, ready for phase identification.
func NewPick(station *Station, channel, source string, authorType AuthorType,
	arrivalTime time.Time, associatedPhaseCode string, affinity float64) *Pick {
	return &Pick{
		ID:                  uuid.New(),
		Station:             station,
		Channel:             channel,
		Source:              source,
		AuthorType:          authorType,
		ArrivalTime:         arrivalTime,
		AssociatedPhaseCode: associatedPhaseCode,
		CurrentPhaseCode:    associatedPhaseCode,
		BestPhaseCode:       associatedPhaseCode,
		Affinity:            affinity,
		CommandUse:          true,
		Used:                true,
	}
}

// IsAutomatic reports whether the pick came from an automated source.
func (p *Pick) IsAutomatic() bool {
	return p.AuthorType.IsAutomatic()
}
