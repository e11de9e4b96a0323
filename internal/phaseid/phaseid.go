// Package phaseid assigns a theoretical seismic phase to each observed
// pick in an event, using a figure-of-merit over permutations of picks
// and predicted arrivals. This is the core combinatorial subsystem spec
// §4.4 describes.
//
// Ported from gov.usgs.locator.PhaseID (see _examples/original_source),
// restructured from a stateful object with class-variable "current group"
// bookkeeping into an Identifier holding only configuration, with the
// per-call state (current group, current arrival list, last pick seen)
// threaded explicitly as call parameters — the recursive permutation
// generator itself follows the same k-permutation-of-n recursion style as
// digest2's own D2Solver.dRange/aRange orbital-element search.
package phaseid

import (
	"fmt"
	"math"

	"github.com/usgs-neic/go-locator/internal/locutil"
	"github.com/usgs-neic/go-locator/model"
	"github.com/usgs-neic/go-locator/traveltime"
)

// Identifier runs phase identification for one event against a prepared
// travel-time session. It holds no state between Identify calls.
type Identifier struct {
	AuxiliaryGroups GroupLookup
}

// GroupLookup resolves a phase code to its phase-group name, mirroring
// AuxTtRef.findGroup. A generic implementation is provided in groups.go.
type GroupLookup interface {
	FindGroup(phaseCode string, isContributedAutomatic bool) (groupName string, isPrimary bool)
}

// New builds an Identifier using the given phase-group lookup.
func New(groups GroupLookup) *Identifier {
	return &Identifier{AuxiliaryGroups: groups}
}

// identifyState carries the per-call variables PhaseID.java kept as
// instance fields across its mutually recursive methods.
type identifyState struct {
	otherWeight      float64
	stickyWeight     float64
	currentGroup     *model.PickGroup
	currentArrivals  []traveltime.Phase
	lastPick         *model.Pick
	currPhaseGroup   string
	isGeneric        bool
	isPrimary        bool
}

// Identify runs phase identification over every pick group in the event,
// per spec §4.4 steps 1-6, and reports whether any used pick's phase code
// changed. weightedResiduals accumulates one WeightedResidual per used,
// non-surface-wave pick plus the trailing Bayesian-depth virtual
// observation, matching PhaseID.phaseID's contract.
func (id *Identifier) Identify(
	event *model.Event,
	session traveltime.Session,
	otherWeight, stickyWeight float64,
	reidentify, reweight bool,
) (changed bool, weightedResiduals []model.WeightedResidual, err error) {
	state := &identifyState{otherWeight: otherWeight, stickyWeight: stickyWeight}

	for _, group := range event.Groups {
		state.currentGroup = group

		arrivals, err := session.GetPhases(traveltime.Request{
			StationLatitude:  group.Station.Latitude,
			StationLongitude: group.Station.Longitude,
			StationElevation: group.Station.Elevation,
			DistanceDeg:      group.Distance,
			AzimuthDeg:       group.Azimuth,
		})
		if err != nil {
			return false, nil, fmt.Errorf("phaseid: travel-time query for station %s: %w", group.Station.ID.StationCode, err)
		}
		state.currentArrivals = arrivals

		if len(arrivals) == 0 {
			continue
		}

		if reidentify {
			id.reidentifyPhases(state)
		} else {
			id.noReidentification(state)
		}

		if updatePhaseIdentifications(group, reweight, &weightedResiduals) {
			changed = true
		}
	}

	weightedResiduals = append(weightedResiduals, model.NewDepthPriorResidual(
		event.Hypo.DepthResidual, event.Hypo.DepthWeight))

	event.WResRaw = weightedResiduals
	event.SaveWeightedResiduals()

	return changed, weightedResiduals, nil
}

// updatePhaseIdentifications adopts each pick's best statistical
// identification as its current phase code, recomputes residual/weight
// when reweight is set, and appends a WeightedResidual for every used,
// non-surface-wave pick. It reports whether any used pick's phase code
// changed.
func updatePhaseIdentifications(group *model.PickGroup, reweight bool, out *[]model.WeightedResidual) bool {
	changed := false
	for _, pick := range group.Picks {
		if pick.BestPhaseCode != pick.CurrentPhaseCode {
			if pick.Used {
				changed = true
			}
			pick.CurrentPhaseCode = pick.BestPhaseCode
		}

		if !pick.Used || pick.IsSurfaceWave {
			continue
		}

		weight := pick.Weight
		if reweight || weight == 0 {
			weight = 1 / math.Max(pick.Affinity, 1)
		}
		pick.Weight = weight

		*out = append(*out, model.NewPickResidual(pick, pick.Residual, weight, model.DesignRow{1, 1, 1}))
	}
	return changed
}

// noReidentification tries to preserve existing identifications, per
// spec §4.4's no-reidentification path: keep the current phase code if a
// theoretical phase of the same code is within AssocTolerance; otherwise
// fall back to the same phase group; otherwise force a single bounded
// re-identification pass for this group only (the decided Open Question:
// "give up" recurses into reidentifyPhases for the one group, not the
// whole event — see DESIGN.md).
func (id *Identifier) noReidentification(state *identifyState) {
	for _, pick := range state.currentGroup.Picks {
		phaseCode := pick.CurrentPhaseCode
		if phaseCode == "" {
			continue
		}

		if arrival, residual, ok := bestByExactCode(state.currentArrivals, phaseCode, pick.TravelTime); ok &&
			(residual <= locutil.AssocTolerance || phaseCode == "Lg" || phaseCode == "LR") {
			pick.BestPhaseCode = arrival.Code
			pick.StatisticalFoM = residual
			pick.ForceAssociation = true
			continue
		}

		groupName, _ := id.AuxiliaryGroups.FindGroup(phaseCode, false)
		if arrival, residual, ok := bestByGroup(state.currentArrivals, groupName, pick.TravelTime); ok &&
			residual <= locutil.AssocTolerance {
			pick.BestPhaseCode = arrival.Code
			pick.StatisticalFoM = residual
			pick.ForceAssociation = true
			continue
		}

		if pick.Used {
			state.currentGroup.InitializeFoM(0, len(state.currentGroup.Picks))
			id.reidentifyPhases(state)
			return
		}
		pick.BestPhaseCode = ""
		pick.StatisticalFoM = math.MaxFloat64
	}
}

func bestByExactCode(arrivals []traveltime.Phase, code string, travelTime float64) (traveltime.Phase, float64, bool) {
	best := -1
	bestResidual := math.MaxFloat64
	for i, a := range arrivals {
		if a.Code != code {
			continue
		}
		residual := math.Abs(travelTime - a.TravelTime)
		if residual < bestResidual {
			bestResidual = residual
			best = i
		}
	}
	if best < 0 {
		return traveltime.Phase{}, 0, false
	}
	return arrivals[best], bestResidual, true
}

func bestByGroup(arrivals []traveltime.Phase, groupName string, travelTime float64) (traveltime.Phase, float64, bool) {
	best := -1
	bestResidual := math.MaxFloat64
	for i, a := range arrivals {
		if a.Group != groupName {
			continue
		}
		residual := math.Abs(travelTime - a.TravelTime)
		if residual < bestResidual {
			bestResidual = residual
			best = i
		}
	}
	if best < 0 {
		return traveltime.Phase{}, 0, false
	}
	return arrivals[best], bestResidual, true
}

// reidentifyPhases runs the full figure-of-merit-based identification for
// the current group: pre-fix surface waves, cluster theoretical arrivals
// by overlapping time windows, and enumerate k-permutations within each
// cluster, per spec §4.4 steps 2-6.
func (id *Identifier) reidentifyPhases(state *identifyState) {
	group := state.currentGroup
	arrivals := state.currentArrivals
	group.InitializeFoM(0, len(group.Picks))

	for _, pick := range group.Picks {
		if !pick.IsSurfaceWave {
			continue
		}
		for _, a := range arrivals {
			if pick.BestPhaseCode == a.Code {
				pick.StatisticalFoM = 0
				pick.ForceAssociation = true
				break
			}
		}
	}

	i := 0
	minWindow := arrivals[0].TravelTime - arrivals[0].Spread
	maxWindow := arrivals[0].TravelTime + arrivals[0].Spread
	firstTTIndex := 0
	numTT := 1

	flushCluster := func(firstTT, countTT int) {
		firstPick := -1
		numPicks := 0
		for ; i < len(group.Picks); i++ {
			pick := group.Picks[i]
			if pick.TravelTime > maxWindow {
				break
			}
			if pick.TravelTime >= minWindow {
				if numPicks == 0 {
					firstPick = i
				}
				numPicks++
			}
		}
		if numPicks > 0 {
			group.CumulativeFoM = 0
			id.genPhasePermutations(state, group.Picks[firstPick:firstPick+numPicks], arrivals[firstTT:firstTT+countTT])
		}
	}

	for j := 1; j < len(arrivals); j++ {
		a := arrivals[j]
		if a.TravelTime-a.Spread <= maxWindow {
			minWindow = math.Min(minWindow, a.TravelTime-a.Spread)
			maxWindow = math.Max(maxWindow, a.TravelTime+a.Spread)
			numTT++
			continue
		}

		flushCluster(firstTTIndex, numTT)
		if i >= len(group.Picks) {
			break
		}

		minWindow = a.TravelTime - a.Spread
		maxWindow = a.TravelTime + a.Spread
		firstTTIndex = j
		numTT = 1
	}
	if i < len(group.Picks) {
		flushCluster(firstTTIndex, numTT)
	}

	distCorr := locutil.ComputeDistCorr(group.Distance)
	if distCorr > 1 && len(group.Picks) > 0 && group.Picks[0].StatisticalFoM > 0 {
		group.Picks[0].StatisticalFoM /= distCorr
	}
}

// genPhasePermutations dispatches to a k-permutations-of-n enumeration
// over whichever of (picks, arrivals) is the smaller set, matching
// PhaseID.java's genPhasePermutations.
func (id *Identifier) genPhasePermutations(state *identifyState, picks []*model.Pick, arrivals []traveltime.Phase) {
	if len(arrivals) >= len(picks) {
		permutation := make([]traveltime.Phase, len(picks))
		id.permuteArrivals(state, arrivals, len(picks), 0, permutation, picks)
	} else {
		permutation := make([]*model.Pick, len(arrivals))
		id.permutePicks(state, picks, len(arrivals), 0, permutation, arrivals)
	}
}

func (id *Identifier) permuteArrivals(state *identifyState, pool []traveltime.Phase, length, startIndex int, permutation []traveltime.Phase, picks []*model.Pick) {
	if length == 0 {
		id.computeCombinedFoM(state, picks, permutation)
		return
	}
	for i := startIndex; i <= len(pool)-length; i++ {
		permutation[len(permutation)-length] = pool[i]
		id.permuteArrivals(state, pool, length-1, i+1, permutation, picks)
	}
}

func (id *Identifier) permutePicks(state *identifyState, pool []*model.Pick, length, startIndex int, permutation []*model.Pick, arrivals []traveltime.Phase) {
	if length == 0 {
		id.computeCombinedFoM(state, permutation, arrivals)
		return
	}
	for i := startIndex; i <= len(pool)-length; i++ {
		permutation[len(permutation)-length] = pool[i]
		id.permutePicks(state, pool, length-1, i+1, permutation, arrivals)
	}
}

// computeCombinedFoM scores one trial assignment of picks to theoretical
// arrivals and, if it beats the best seen so far for this cluster, adopts
// it as each pick's current best identification.
func (id *Identifier) computeCombinedFoM(state *identifyState, picks []*model.Pick, arrivals []traveltime.Phase) {
	cumulativeFoM := 1.0
	for j := range arrivals {
		if picks[j].IsSurfaceWave {
			continue
		}
		probability := locutil.ComputePDFResValue(picks[j].TravelTime-arrivals[j].TravelTime, 0, arrivals[j].Spread)
		observability := id.computeObsAmplitude(state, picks[j], arrivals[j])
		residual := computeResidual(picks[j], arrivals[j])
		boost := locutil.ComputeProximityBoost(residual)
		cumulativeFoM *= observability * probability * boost
	}

	if cumulativeFoM > state.currentGroup.CumulativeFoM {
		state.currentGroup.CumulativeFoM = cumulativeFoM
		for j := range arrivals {
			if picks[j].IsSurfaceWave {
				continue
			}
			picks[j].BestPhaseCode = arrivals[j].Code
			picks[j].StatisticalFoM = computeResidual(picks[j], arrivals[j])
		}
	}
}

// computeObsAmplitude computes the theoretical phase's modified
// observability: the distance-discrimination downweight, the phase-group
// match weight (or otherWeight/type-penalty on a mismatch), the affinity
// boost on an exact code match, and the sticky-weight hysteresis boost on
// a match with the pick's current identification. Ported from
// PhaseID.computeObsAmplitude.
func (id *Identifier) computeObsAmplitude(state *identifyState, pick *model.Pick, arrival traveltime.Phase) float64 {
	if pick != state.lastPick {
		state.lastPick = pick
		groupName, isPrimary := id.AuxiliaryGroups.FindGroup(pick.BestPhaseCode, pick.IsAutomatic())
		state.currPhaseGroup = groupName
		state.isPrimary = isPrimary
		state.isGeneric = groupName == "Any" || pick.BestPhaseCode == groupName
	}

	observability := arrival.Observability
	if arrival.DistanceDiscriminated {
		observability *= locutil.DownWeight
	}

	if (pick.BestPhaseCode != arrival.Code || state.isGeneric) && state.currPhaseGroup != "Any" {
		matchesGroup := state.currPhaseGroup == arrival.Group
		if state.isGeneric && state.isPrimary {
			matchesGroup = matchesGroup || state.currPhaseGroup == arrival.AuxiliaryGroup ||
				(state.currPhaseGroup == "Reg" && arrival.Regional)
		}

		if matchesGroup {
			observability *= locutil.GroupWeight
		} else {
			observability *= state.otherWeight
			if !pick.IsAutomatic() && arrivalTypeOf(state.currPhaseGroup) != arrival.ArrivalType {
				observability *= locutil.TypeWeight
			}
		}
	}

	if pick.BestPhaseCode == arrival.Code {
		observability *= pick.Affinity
	}
	if pick.CurrentPhaseCode == arrival.Code {
		observability *= state.stickyWeight
	}

	return observability
}

// computeResidual returns the affinity-weighted absolute travel-time
// residual, per PhaseID.computeResidual.
func computeResidual(pick *model.Pick, arrival traveltime.Phase) float64 {
	affinity := locutil.NullAffinity
	if pick.BestPhaseCode == arrival.Code {
		affinity = pick.Affinity
	}
	return math.Abs(pick.TravelTime-arrival.TravelTime) / affinity
}

// arrivalTypeOf guesses an arrival type from a phase-group name's leading
// character, matching TauUtil.arrivalType's P/S convention.
func arrivalTypeOf(groupName string) traveltime.ArrivalType {
	if len(groupName) > 0 && groupName[0] == 'S' {
		return traveltime.ArrivalS
	}
	return traveltime.ArrivalP
}
