package model

import (
	"math"
	"sort"

	"github.com/usgs-neic/go-locator/internal/locutil"
)

// EllipseAxis is one semi-axis of the error ellipsoid: length in
// kilometers plus the strike/plunge that orient it.
type EllipseAxis struct {
	SemiLength float64 // kilometers
	Strike     float64 // degrees
	Plunge     float64 // degrees
}

// TangentialProjection is the axis's horizontal (tangential) projection.
func (a EllipseAxis) TangentialProjection() float64 {
	return a.SemiLength * math.Cos(a.Plunge*math.Pi/180)
}

// VerticalProjection is the axis's vertical projection.
func (a EllipseAxis) VerticalProjection() float64 {
	return a.SemiLength * math.Sin(a.Plunge*math.Pi/180)
}

// QualityLimits configure Event.SetQualFlags, replacing the Java
// LocUtil.HQUALIM/VQUALIM/NQUALIM/AQUALIM static arrays with an explicit
// value threaded in by the caller.
type QualityLimits struct {
	Horizontal [3]float64 // kilometers
	Vertical   [3]float64 // kilometers
	MinPhases  [3]int
	Aspect     [3]float64
}

// DefaultQualityLimits reproduces the NEIC-typical thresholds referenced
// by Event.java's setQualFlags (the originating LocUtil constants class
// was not present in the retrieved original source; see DESIGN.md).
func DefaultQualityLimits() QualityLimits {
	return QualityLimits{
		Horizontal: [3]float64{5, 10, 25},
		Vertical:   [3]float64{5, 10, 25},
		MinPhases:  [3]int{15, 10, 0},
		Aspect:     [3]float64{3, 4, 6},
	}
}

// Event aggregates everything the location engine needs for one run: the
// current hypocenter, the station/pick-group bookkeeping, the weighted
// residual vectors, and the summary statistics the final report exposes.
// One Event belongs to exactly one engine instance; no Event state is
// shared across concurrently running events (spec §5).
type Event struct {
	EarthModel string

	IsLocationHeld     bool
	IsDepthHeld        bool
	IsDepthManual      bool
	UseDecorrelation   bool
	IsLocationRestarted bool

	// ReassessInitialPhaseIDs forces RunInitialPhaseID's stricter,
	// force-to-first-listed-theoretical-phase cleanup (spec §6's
	// reassessInitialPhaseIDs) regardless of how many first arrivals
	// looked misidentified, for a re-run where the analyst already
	// suspects the initial association is stale.
	ReassessInitialPhaseIDs bool

	Hypo  *Hypocenter
	Audit []*HypoAudit

	Stations map[StationID]*Station
	Groups   []*PickGroup
	Picks    []*Pick

	WResRaw  []WeightedResidual
	WResOrg  []WeightedResidual
	WResProj []WeightedResidual

	// Outputs.
	StationsAssociated int
	StationsUsed       int
	PhasesAssociated   int
	PhasesUsed         int
	VirtualPhasesUsed  int
	AzimuthGap         float64 // degrees
	RobustAzimuthGap   float64 // degrees ("lestGap")
	MinDistance        float64 // degrees
	Quality            string
	ExitCode           LocationStatus

	// Statistics.
	SETime   float64
	SELat    float64
	SELon    float64
	SEDepth  float64
	SEResid  float64
	ErrH     float64
	ErrZ     float64
	AverageH float64
	ErrEllip []EllipseAxis
	BayesImportance float64

	// Internal.
	LocalPhasesUsed int
	Changed         bool
	BayesDepth      float64
	BayesSpread     float64
}

// NewEvent builds an Event around the given hypocenter.
func NewEvent(hypo *Hypocenter) *Event {
	return &Event{
		Hypo:     hypo,
		Stations: make(map[StationID]*Station),
	}
}

// GroupPicksByStation rebuilds e.Groups from e.Picks, grouping by station
// and keeping groups in the order their stations first appear in e.Picks;
// it does not sort the groups (SortGroupsByDistance does). Distances must already be set on each group's Station-derived
// geometry by the caller (Stepper.setEnvironment) before this is useful
// for phase identification.
func (e *Event) GroupPicksByStation() {
	byStation := make(map[StationID][]*Pick)
	order := make([]StationID, 0)
	for _, p := range e.Picks {
		id := p.Station.ID
		if _, ok := byStation[id]; !ok {
			order = append(order, id)
			e.Stations[id] = p.Station
		}
		byStation[id] = append(byStation[id], p)
	}

	groups := make([]*PickGroup, 0, len(order))
	for _, id := range order {
		groups = append(groups, NewPickGroup(e.Stations[id], byStation[id]))
	}
	e.Groups = groups
}

// SortGroupsByDistance orders pick groups by (distance, arrival time of
// the first pick), called after geometry has been recomputed.
func (e *Event) SortGroupsByDistance() {
	sort.SliceStable(e.Groups, func(i, j int) bool {
		if e.Groups[i].Distance != e.Groups[j].Distance {
			return e.Groups[i].Distance < e.Groups[j].Distance
		}
		if len(e.Groups[i].Picks) == 0 || len(e.Groups[j].Picks) == 0 {
			return false
		}
		return e.Groups[i].Picks[0].ArrivalTime.Before(e.Groups[j].Picks[0].ArrivalTime)
	})
}

// SaveWeightedResiduals snapshots the raw weighted residuals into WResOrg,
// called at the end of PhaseID.phaseID before the estimator mutates them
// further.
func (e *Event) SaveWeightedResiduals() {
	e.WResOrg = append([]WeightedResidual(nil), e.WResRaw...)
}

// UpdateStationStatistics recounts associated/used stations and phases,
// the count of phases within locutil.DeltaLoc degrees ("local" phases),
// and the minimum epicentral distance, per Event.java's staStats. Called
// whenever phase association/usage flags may have changed.
func (e *Event) UpdateStationStatistics() {
	e.StationsAssociated = len(e.Stations)
	e.StationsUsed = 0
	e.PhasesAssociated = 0
	e.PhasesUsed = 0
	e.LocalPhasesUsed = 0
	e.MinDistance = math.MaxFloat64

	for _, g := range e.Groups {
		e.PhasesAssociated += len(g.Picks)
		used := groupPicksUsed(g)
		e.PhasesUsed += used
		if g.Distance <= locutil.DeltaLoc {
			e.LocalPhasesUsed += used
		}
		if used > 0 {
			e.StationsUsed++
			if g.Distance < e.MinDistance {
				e.MinDistance = g.Distance
			}
		}
	}
	if e.StationsUsed == 0 {
		e.MinDistance = 0
	}
}

// ComputeAzimuthGap computes the conventional and robust (L-estimator)
// azimuthal gap in degrees, per Event.java's azimuthGap.
func (e *Event) ComputeAzimuthGap() {
	if e.StationsUsed == 0 {
		e.AzimuthGap = 360
		e.RobustAzimuthGap = 360
		return
	}

	azimuths := make([]float64, 0, e.StationsUsed)
	for _, g := range e.Groups {
		if groupPicksUsed(g) > 0 {
			azimuths = append(azimuths, g.Azimuth)
		}
	}
	sort.Float64s(azimuths)

	gap := 0.0
	lastAzim := azimuths[len(azimuths)-1] - 360
	for _, az := range azimuths {
		if d := az - lastAzim; d > gap {
			gap = d
		}
		lastAzim = az
	}
	e.AzimuthGap = gap

	if len(azimuths) == 1 {
		e.RobustAzimuthGap = 360
		return
	}

	lastAzim = azimuths[len(azimuths)-2] - 360
	lestGap := azimuths[0] - lastAzim
	lastAzim = azimuths[len(azimuths)-1] - 360
	for j := 1; j < len(azimuths); j++ {
		if d := azimuths[j] - lastAzim; d > lestGap {
			lestGap = d
		}
		lastAzim = azimuths[j-1]
	}
	e.RobustAzimuthGap = lestGap
}

func groupPicksUsed(g *PickGroup) int {
	n := 0
	for _, p := range g.Picks {
		if p.Used {
			n++
		}
	}
	return n
}

// SumErrors computes the maximum tangential and vertical projections of
// the error ellipsoid, per Event.java's sumErrors.
func (e *Event) SumErrors() {
	e.ErrH = 0
	e.ErrZ = 0
	for _, axis := range e.ErrEllip {
		if t := axis.TangentialProjection(); t > e.ErrH {
			e.ErrH = t
		}
		if v := axis.VerticalProjection(); v > e.ErrZ {
			e.ErrZ = v
		}
	}
}

// ZeroStats zeros out error statistics when no solution is possible. When
// all is true, the residual standard error is zeroed too.
func (e *Event) ZeroStats(all bool) {
	e.SETime = 0
	e.SELat = 0
	e.SELon = 0
	e.SEDepth = 0
	e.ErrH = 0
	e.ErrZ = 0
	e.AverageH = 0
	for i := range e.ErrEllip {
		e.ErrEllip[i] = EllipseAxis{}
	}
	if all {
		e.SEResid = 0
	}
}

// ZeroWeights zeros all pick weights and the depth weight when data
// importances could not be computed.
func (e *Event) ZeroWeights() {
	e.Hypo.DepthWeight = 0
	for _, p := range e.Picks {
		p.Weight = 0
	}
}

// SetQualFlags sets the three-character NEIC summary/epicenter/depth
// quality flags, per Event.java's setQualFlags.
func (e *Event) SetQualFlags(status LocationStatus, limits QualityLimits) {
	if status == StatusInsufficientData {
		e.Quality = "D  "
		return
	}

	var summary byte = 'D'
	switch {
	case e.AverageH <= limits.Horizontal[0] && e.SEDepth <= limits.Vertical[0] && e.PhasesUsed > limits.MinPhases[0]:
		summary = 'A'
	case e.AverageH <= limits.Horizontal[1] && e.SEDepth <= limits.Vertical[1] && e.PhasesUsed > limits.MinPhases[1]:
		summary = 'B'
	case e.AverageH <= limits.Horizontal[2] && e.SEDepth <= limits.Vertical[2]:
		summary = 'C'
	}
	if len(e.ErrEllip) > 0 {
		semiLen := e.ErrEllip[0].SemiLength
		if summary == 'A' && semiLen > limits.Aspect[0] {
			summary = 'B'
		}
		if (summary == 'A' || summary == 'B') && semiLen > limits.Aspect[1] {
			summary = 'C'
		}
		if semiLen > limits.Aspect[2] {
			summary = 'D'
		}
	}

	var epicenter byte = '?'
	switch {
	case e.AverageH <= limits.Horizontal[0] && e.PhasesUsed > limits.MinPhases[0]:
		epicenter = ' '
	case e.AverageH <= limits.Horizontal[1] && e.PhasesUsed > limits.MinPhases[1]:
		epicenter = '*'
	case e.AverageH <= limits.Horizontal[2]:
		epicenter = '?'
	default:
		summary = '!'
	}

	var depth byte
	if e.IsDepthHeld {
		depth = 'G'
	} else {
		depth = '!'
		switch {
		case e.SEDepth <= limits.Vertical[0] && e.PhasesUsed > limits.MinPhases[0]:
			depth = ' '
		case e.SEDepth <= limits.Vertical[1] && e.PhasesUsed > limits.MinPhases[1]:
			depth = '*'
		case e.SEDepth <= limits.Vertical[2]:
			depth = '?'
		}
	}

	e.Quality = string([]byte{summary, epicenter, depth})
}

// SetExitCode derives the public exit status from the more detailed
// internal status Stepper/LocationLoop produced, per Event.java's
// setExitCode.
func (e *Event) SetExitCode(status LocationStatus, deltaTol, depthTol float64) {
	switch status {
	case StatusSuccess, StatusSuccessfulLocation, StatusNearlyConverged, StatusDidNotConverge, StatusUnstableSolution:
		if e.Hypo.DeltaH > deltaTol || e.Hypo.DeltaZ > depthTol {
			e.ExitCode = StatusSuccessfulLocation
		} else {
			e.ExitCode = StatusDidNotMove
		}
	case StatusSingularMatrix, StatusEllipsoidFailed:
		e.ExitCode = StatusErrorsNotComputed
	case StatusInsufficientData, StatusBadDepth:
		e.ExitCode = StatusLocationFailed
	default:
		e.ExitCode = StatusUnknownStatus
	}
}
