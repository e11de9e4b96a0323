// Package traveltime defines the location engine's external travel-time
// collaborator interface (spec §1, out of scope for this repo to compute
// scientifically) and a deliberately simplified local reference
// implementation good enough to exercise PhaseID and the Stepper/
// LocationLoop control flow end-to-end.
//
// Ported from the gov.usgs.traveltime.TTSessionLocal/TTime/TTimeData
// usage sites referenced throughout gov.usgs.locator.PhaseID (see
// _examples/original_source) — none of those classes were themselves
// retrieved, so only their public shape (what PhaseID calls) is ported.
package traveltime

import (
	"math"
	"sync"
)

// ArrivalType distinguishes P-type from S-type theoretical phases, used
// by PhaseID's type-penalty modifier.
type ArrivalType int

const (
	ArrivalP ArrivalType = iota
	ArrivalS
)

// Phase is one theoretical arrival returned by the travel-time service for
// a given source/station geometry.
type Phase struct {
	Code         string
	Group        string // primary phase group, e.g. "P", "S", "PKP"
	AuxiliaryGroup string
	ArrivalType  ArrivalType
	Regional     bool

	TravelTime   float64 // seconds since origin time
	Spread       float64 // seconds, window half-width for clustering
	Observability float64 // relative amplitude/observability
	DistanceDiscriminated bool // true if not normally observable at this range
}

// Request carries the station geometry and source parameters a session
// needs to compute theoretical arrivals for one pick group.
type Request struct {
	StationLatitude  float64
	StationLongitude float64
	StationElevation float64
	DistanceDeg      float64
	AzimuthDeg       float64
}

// SessionParams configures a travel-time session: earth model, source
// depth, and whether the event is inside a craton (affects which phases
// are suppressed), per spec §5 (sessions are rebuilt when depth moves
// beyond tolerance or the tectonic flag changes).
type SessionParams struct {
	EarthModel          string
	SourceDepth         float64
	SourceLatitude      float64
	SourceLongitude     float64
	IsTectonic          bool
	SuppressUnlikely    bool
	SuppressBackBranches bool
}

// Session is a prepared travel-time calculator for one source depth/
// location; PhaseID calls GetPhases once per pick group without
// recomputing the whole session.
type Session interface {
	GetPhases(req Request) ([]Phase, error)
}

// Service is the external collaborator spec §1 describes: given session
// parameters, returns a Session ready to answer per-station phase
// queries.
type Service interface {
	NewSession(params SessionParams) (Session, error)
}

// tableKey identifies a cached set of precomputed phase tables.
type tableKey struct {
	earthModel string
	depthBin   int // depth rounded to the nearest kilometer
}

// localService is a deliberately simplified, non-scientific reference
// implementation: phases are derived from straight-ray crustal/mantle
// geometry rather than a real ak135-style travel-time model, sufficient
// to drive the PhaseID/Stepper/LocationLoop control flow described in
// spec §4. A full scientific travel-time model is explicitly out of
// scope (spec §1).
//
// The process-wide table cache is guarded by sync.RWMutex, per spec §5's
// "shared/exclusive lock" — kept as stdlib since no pack example wires a
// third-party RWMutex replacement (see DESIGN.md).
type localService struct {
	mu     sync.RWMutex
	tables map[tableKey][]basePhase
}

type basePhase struct {
	code         string
	group        string
	auxGroup     string
	arrivalType  ArrivalType
	regional     bool
	crustalSpeed float64 // km/s, simplified straight-ray speed
	minDistance  float64 // degrees, where this phase starts being observable
	maxDistance  float64 // degrees, where it stops being observable
}

// NewLocalService constructs the in-process reference travel-time
// service.
func NewLocalService() Service {
	return &localService{tables: make(map[tableKey][]basePhase)}
}

func (s *localService) NewSession(params SessionParams) (Session, error) {
	key := tableKey{earthModel: params.EarthModel, depthBin: int(math.Round(params.SourceDepth))}

	s.mu.RLock()
	table, ok := s.tables[key]
	s.mu.RUnlock()

	if !ok {
		table = buildBaseTable(params.SourceDepth, params.IsTectonic)
		s.mu.Lock()
		s.tables[key] = table
		s.mu.Unlock()
	}

	return &localSession{params: params, table: table}, nil
}

// buildBaseTable derives a small, fixed roster of P/S/depth/core phases
// whose approximate distance ranges and speeds loosely mirror real
// seismic phase behavior (P and S separate with distance, PKP only
// appears beyond the core shadow boundary, depth phases pP/sP exist for
// depth > 0), without claiming scientific accuracy.
func buildBaseTable(depth float64, isTectonic bool) []basePhase {
	table := []basePhase{
		{code: "P", group: "P", auxGroup: "Any", arrivalType: ArrivalP, crustalSpeed: 8.0, minDistance: 0, maxDistance: 100},
		{code: "Pn", group: "P", auxGroup: "Any", arrivalType: ArrivalP, crustalSpeed: 8.1, minDistance: 0, maxDistance: 20, regional: true},
		{code: "Pg", group: "P", auxGroup: "Any", arrivalType: ArrivalP, crustalSpeed: 6.0, minDistance: 0, maxDistance: 12, regional: true},
		{code: "S", group: "S", auxGroup: "Any", arrivalType: ArrivalS, crustalSpeed: 4.5, minDistance: 0, maxDistance: 100},
		{code: "Sn", group: "S", auxGroup: "Any", arrivalType: ArrivalS, crustalSpeed: 4.6, minDistance: 0, maxDistance: 20, regional: true},
		{code: "PKP", group: "PKP", auxGroup: "P", arrivalType: ArrivalP, crustalSpeed: 10.2, minDistance: 110, maxDistance: 180},
	}
	if depth > 0 {
		table = append(table,
			basePhase{code: "pP", group: "P", auxGroup: "Any", arrivalType: ArrivalP, crustalSpeed: 8.0, minDistance: 0, maxDistance: 100},
			basePhase{code: "sP", group: "P", auxGroup: "Any", arrivalType: ArrivalP, crustalSpeed: 7.5, minDistance: 0, maxDistance: 100},
		)
	}
	_ = isTectonic // tectonic regions bias regional-phase observability in observabilityFor
	return table
}

type localSession struct {
	params SessionParams
	table  []basePhase
}

func (s *localSession) GetPhases(req Request) ([]Phase, error) {
	var out []Phase
	for _, bp := range s.table {
		if req.DistanceDeg < bp.minDistance || req.DistanceDeg > bp.maxDistance {
			continue
		}
		tt := travelTime(bp, s.params.SourceDepth, req.DistanceDeg, req.StationElevation)
		out = append(out, Phase{
			Code:                  bp.code,
			Group:                 bp.group,
			AuxiliaryGroup:        bp.auxGroup,
			ArrivalType:           bp.arrivalType,
			Regional:              bp.regional,
			TravelTime:            tt,
			Spread:                spreadFor(bp),
			Observability:         observabilityFor(bp, req.DistanceDeg, s.params.IsTectonic),
			DistanceDiscriminated: bp.regional && req.DistanceDeg > bp.maxDistance*0.8,
		})
	}
	return out, nil
}

func travelTime(bp basePhase, depth, distanceDeg, elevation float64) float64 {
	const kmPerDeg = 111.19
	slantKM := math.Hypot(distanceDeg*kmPerDeg, depth) + elevation
	return slantKM / bp.crustalSpeed
}

func spreadFor(bp basePhase) float64 {
	if bp.regional {
		return 1.5
	}
	return 3.0
}

func observabilityFor(bp basePhase, distanceDeg float64, isTectonic bool) float64 {
	mid := (bp.minDistance + bp.maxDistance) / 2
	span := (bp.maxDistance-bp.minDistance)/2 + 1
	falloff := math.Max(0, 1-math.Abs(distanceDeg-mid)/span)
	amp := 0.5 + 0.5*falloff
	if bp.regional && isTectonic {
		amp *= 1.2
	}
	return amp
}
