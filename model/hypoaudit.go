package model

// LocationStatus reports the outcome of a location attempt or an
// individual stage/iteration within one.
type LocationStatus int

// Location status values, ported from gov.usgs.locator.LocStatus.
const (
	StatusSuccess LocationStatus = iota
	StatusSuccessfulLocation
	StatusPhaseIDChanged
	StatusNearlyConverged
	StatusDidNotConverge
	StatusUnstableSolution
	StatusDidNotMove
	StatusSingularMatrix
	StatusEllipsoidFailed
	StatusErrorsNotComputed
	StatusInsufficientData
	StatusBadDepth
	StatusLocationFailed
	StatusUnknownStatus
)

func (s LocationStatus) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusSuccessfulLocation:
		return "SUCCESSFUL_LOCATION"
	case StatusPhaseIDChanged:
		return "PHASEID_CHANGED"
	case StatusNearlyConverged:
		return "NEARLY_CONVERGED"
	case StatusDidNotConverge:
		return "DID_NOT_CONVERGE"
	case StatusUnstableSolution:
		return "UNSTABLE_SOLUTION"
	case StatusDidNotMove:
		return "DID_NOT_MOVE"
	case StatusSingularMatrix:
		return "SINGULAR_MATRIX"
	case StatusEllipsoidFailed:
		return "ELLIPSOID_FAILED"
	case StatusErrorsNotComputed:
		return "ERRORS_NOT_COMPUTED"
	case StatusInsufficientData:
		return "INSUFFICIENT_DATA"
	case StatusBadDepth:
		return "BAD_DEPTH"
	case StatusLocationFailed:
		return "LOCATION_FAILED"
	default:
		return "UNKNOWN_STATUS"
	}
}

// HypoAudit is a snapshot of a Hypocenter at one point in the location
// process: used for logging and as a fallback position to restore if a
// step turns out to be bad. Ported from gov.usgs.locator.HypoAudit.
type HypoAudit struct {
	Stage          int
	Iteration      int
	NumPicksUsed   int
	OriginTime     float64
	Latitude       float64
	Longitude      float64
	Depth          float64
	HypocentralChange float64 // kilometers
	EpicentralChange  float64 // kilometers
	DepthChange       float64 // kilometers
	TimeStandardError float64 // seconds
	Status            LocationStatus

	CoLatitude       float64
	CoLatitudeSine   float64
	CoLatitudeCosine float64
	LongitudeSine    float64
	LongitudeCosine  float64
}

// NewHypoAudit captures a snapshot of hypo's current state.
func NewHypoAudit(hypo *Hypocenter, stage, iteration, numPicksUsed int, status LocationStatus) *HypoAudit {
	return &HypoAudit{
		Stage:             stage,
		Iteration:         iteration,
		NumPicksUsed:      numPicksUsed,
		Status:            status,
		OriginTime:        hypo.OriginTime,
		Latitude:          hypo.Latitude,
		Longitude:         hypo.Longitude,
		Depth:             hypo.Depth,
		HypocentralChange: hypo.StepLen,
		EpicentralChange:  hypo.DeltaH,
		DepthChange:       hypo.DeltaZ,
		TimeStandardError: hypo.RMS,
		CoLatitude:        hypo.CoLatitude,
		CoLatitudeSine:    hypo.SinLat,
		CoLatitudeCosine:  hypo.CosLat,
		LongitudeSine:     hypo.SinLon,
		LongitudeCosine:   hypo.CosLon,
	}
}
