package stepper

import (
	"math"

	"github.com/usgs-neic/go-locator/internal/locutil"
	"github.com/usgs-neic/go-locator/model"
	"github.com/usgs-neic/go-locator/traveltime"
)

// RunInitialPhaseID performs a tentative phase identification before any
// staged location iteration, so the rank-sum estimator has a reasonable
// origin-time correction to work with before the real phase
// identification runs. Without this pass the first real identification
// can be thrown off by an origin time that is still off by the residual
// of whatever phases were associated at intake.
//
// It computes provisional residuals/weights for each station's first
// used pick against a theoretical phase (for an automatic pick the first
// phase the travel-time session lists; for an analyst pick the listed
// phase with the same code, else that first listed phase), shifts the
// origin time by the resulting median, and then either leaves well-behaved
// automatic picks alone (simpleInitialPhaseID) or forces likely
// misidentifications to the first listed theoretical phase
// (complexInitialPhaseID), depending on how many first arrivals looked
// wrong, unless Event.ReassessInitialPhaseIDs forces the stricter path
// regardless. On a restart (Event.IsLocationRestarted) it instead runs a
// full phase-identification pass immediately, since a restart already
// has a hypocenter close enough to trust. Ported from
// InitialPhaseID.java's phaseID.
func (s *Stepper) RunInitialPhaseID() (model.LocationStatus, error) {
	event := s.Event
	s.SetEnvironment()

	session, err := s.ensureSession()
	if err != nil {
		return model.StatusLocationFailed, err
	}

	var residuals []model.WeightedResidual
	badPs := 0

	for _, group := range event.Groups {
		if groupPicksUsed(group) == 0 || len(group.Picks) == 0 {
			continue
		}
		pick := group.Picks[0]
		if !pick.Used || group.Distance > locutil.InitialPhaseIDMaxDistance {
			continue
		}
		phCode := pick.CurrentPhaseCode
		if isExcludedFromInitialID(phCode) {
			continue
		}

		phases, err := session.GetPhases(traveltime.Request{
			StationLatitude:  group.Station.Latitude,
			StationLongitude: group.Station.Longitude,
			StationElevation: group.Station.Elevation,
			DistanceDeg:      group.Distance,
			AzimuthDeg:       group.Azimuth,
		})
		if err != nil {
			return model.StatusLocationFailed, err
		}
		if len(phases) == 0 {
			continue
		}

		var matched traveltime.Phase
		if pick.IsAutomatic() {
			matched = phases[0]
			if matched.Code != phCode {
				badPs++
			}
		} else if found, ok := findByCode(phases, phCode); ok {
			matched = found
		} else {
			matched = phases[0]
		}

		weight := 0.0
		if matched.Spread > 0 {
			weight = 1 / matched.Spread
		}
		residuals = append(residuals, model.NewPickResidual(pick, pick.TravelTime-matched.TravelTime, weight, model.DesignRow{}))
	}

	if !isBayesDepthUnset(event.Hypo) {
		residuals = append(residuals, model.NewDepthPriorResidual(event.Hypo.DepthResidual, event.Hypo.DepthWeight))
	}

	median := s.rawEstimator.ComputeMedian(residuals)
	event.Hypo.UpdateOrigin(median)

	event.UpdateStationStatistics()

	if event.IsLocationRestarted {
		return s.DoPhaseIdentification(StageParams{OtherWeight: 0.1, StickyWeight: 1.0, Reidentify: true, Reweight: true})
	}

	if !event.ReassessInitialPhaseIDs && float64(badPs) < locutil.BadPsRatio*float64(event.StationsUsed) {
		simpleInitialPhaseID(event)
	} else {
		if err := complexInitialPhaseID(event, session); err != nil {
			return model.StatusLocationFailed, err
		}
	}

	return model.StatusSuccess, nil
}

// simpleInitialPhaseID is used when few first arrivals look
// misidentified: it only turns off automatic first arrivals that aren't
// a common crust/mantle P, plus any automatic secondary arrival, leaving
// everything else as submitted. Ported from InitialPhaseID.java's
// simplePhaseID.
func simpleInitialPhaseID(event *model.Event) {
	for _, group := range event.Groups {
		if groupPicksUsed(group) == 0 {
			continue
		}
		if first := group.Picks[0]; first.IsAutomatic() && first.Used && !isCommonCrustalP(first.CurrentPhaseCode) {
			first.Used = false
		}
		for _, pick := range group.Picks[1:] {
			if pick.IsAutomatic() && pick.Used {
				pick.Used = false
			}
		}
	}
}

// complexInitialPhaseID is used when enough first arrivals looked
// misidentified that a gentler cleanup can't be trusted: it forces
// eligible automatic first arrivals to the first theoretical phase the
// session lists instead of merely flagging them, and drops anything it can't force.
// Ported from InitialPhaseID.java's complexPhaseID.
func complexInitialPhaseID(event *model.Event, session traveltime.Session) error {
	for _, group := range event.Groups {
		if groupPicksUsed(group) == 0 {
			continue
		}

		if first := group.Picks[0]; first.IsAutomatic() && first.Used {
			if group.Distance <= locutil.InitialPhaseIDMaxDistance && !isExcludedFromInitialID(first.CurrentPhaseCode) {
				phases, err := session.GetPhases(traveltime.Request{
					StationLatitude:  group.Station.Latitude,
					StationLongitude: group.Station.Longitude,
					StationElevation: group.Station.Elevation,
					DistanceDeg:      group.Distance,
					AzimuthDeg:       group.Azimuth,
				})
				if err != nil {
					return err
				}
				if len(phases) > 0 {
					first.CurrentPhaseCode = phases[0].Code
					first.BestPhaseCode = phases[0].Code
				}
			} else {
				first.Used = false
			}
		}

		for _, pick := range group.Picks[1:] {
			if pick.IsAutomatic() && pick.Used {
				pick.Used = false
			}
		}
	}
	return nil
}

func groupPicksUsed(g *model.PickGroup) int {
	n := 0
	for _, p := range g.Picks {
		if p.Used {
			n++
		}
	}
	return n
}

// isExcludedFromInitialID reports whether a phase code is a core
// phase or otherwise routinely misassociated code the initial pass
// leaves alone rather than tentatively residualing.
func isExcludedFromInitialID(phCode string) bool {
	if len(phCode) >= 2 {
		prefix2 := phCode[:2]
		if prefix2 == "PK" || prefix2 == "P'" || prefix2 == "Sc" {
			return true
		}
	}
	switch phCode {
	case "Sg", "Sb", "Sn", "Lg":
		return true
	}
	return false
}

// isCommonCrustalP reports whether phCode is one of the crust/mantle P
// phases the easy cleanup pass trusts automatic first arrivals to be.
func isCommonCrustalP(phCode string) bool {
	switch phCode {
	case "Pg", "Pb", "Pn", "P":
		return true
	}
	return false
}

func findByCode(phases []traveltime.Phase, code string) (traveltime.Phase, bool) {
	for _, p := range phases {
		if p.Code == code {
			return p, true
		}
	}
	return traveltime.Phase{}, false
}

func isBayesDepthUnset(hypo *model.Hypocenter) bool {
	return math.IsNaN(hypo.DepthWeight)
}
