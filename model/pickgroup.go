package model

import "sort"

// PickGroup is all picks from one station, sorted by arrival time, plus
// the epicentral distance and azimuth from the current hypocenter (both
// recomputed whenever the hypocenter moves). Ported from the PickGroup
// usage sites in gov.usgs.locator.PhaseID (a standalone PickGroup.java
// was not present in the retrieved original source).
type PickGroup struct {
	Station *Station
	Picks   []*Pick

	Distance float64 // degrees
	Azimuth  float64 // degrees, clockwise from north at the source

	// CumulativeFoM tracks the best figure-of-merit seen so far across
	// genKPermutationsOfN trials for the current theoretical-phase
	// cluster being identified.
	CumulativeFoM float64
}

// NewPickGroup builds a pick group for one station, sorting its picks by
// arrival time.
func NewPickGroup(station *Station, picks []*Pick) *PickGroup {
	g := &PickGroup{Station: station, Picks: append([]*Pick(nil), picks...)}
	g.SortByArrivalTime()
	return g
}

// SortByArrivalTime restores arrival-time order, e.g. after picks are
// added out of order during intake.
func (g *PickGroup) SortByArrivalTime() {
	sort.SliceStable(g.Picks, func(i, j int) bool {
		return g.Picks[i].ArrivalTime.Before(g.Picks[j].ArrivalTime)
	})
}

// SetGeometry updates the group's epicentral distance and azimuth, called
// whenever the hypocenter moves.
func (g *PickGroup) SetGeometry(distanceDeg, azimuthDeg float64) {
	g.Distance = distanceDeg
	g.Azimuth = azimuthDeg
}

// InitializeFoM resets a pick-index range's statistical figure-of-merit
// ahead of a genKPermutationsOfN trial pass, and zeros the cumulative
// figure-of-merit the trials will be compared against.
func (g *PickGroup) InitializeFoM(first, count int) {
	for i := first; i < first+count && i < len(g.Picks); i++ {
		g.Picks[i].StatisticalFoM = 0
		g.Picks[i].ForceAssociation = false
	}
	g.CumulativeFoM = 0
}
