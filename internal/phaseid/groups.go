package phaseid

// StaticGroups is a small, fixed phase-group table modeling the shape of
// gov.usgs.traveltime.AuxTtRef.findGroup: given a phase code, it reports
// the phase's primary group name and whether that group is "primary"
// (eligible for the generic/auxiliary-group widening in
// computeObsAmplitude). AuxTtRef itself was not present in the retrieved
// original source, so only the small roster of codes this repo's
// traveltime.localService can emit is modeled, plus the "Any"/"Reg"
// special-case codes PhaseID.java references directly.
type StaticGroups struct {
	byCode map[string]groupEntry
}

type groupEntry struct {
	group     string
	isPrimary bool
}

// NewStaticGroups builds the default phase-group table.
func NewStaticGroups() *StaticGroups {
	return &StaticGroups{byCode: map[string]groupEntry{
		"P":  {group: "P", isPrimary: true},
		"Pn": {group: "P", isPrimary: true},
		"Pg": {group: "P", isPrimary: true},
		"pP": {group: "P", isPrimary: false},
		"sP": {group: "P", isPrimary: false},
		"S":  {group: "S", isPrimary: true},
		"Sn": {group: "S", isPrimary: true},
		"PKP": {group: "PKP", isPrimary: false},
		"Lg": {group: "Any", isPrimary: false},
		"LR": {group: "Any", isPrimary: false},
	}}
}

// FindGroup reports the phase group for phaseCode. Unknown codes map to
// "Any", matching AuxTtRef's fallback for unrecognized phases. When
// isContributedAutomatic is true and the code is a generic P or S, the
// group is widened to "Reg": PhaseID.java treats contributed-automatic
// generic picks as regional-network picks whose phase group should not
// be held against a teleseismic identification.
func (g *StaticGroups) FindGroup(phaseCode string, isContributedAutomatic bool) (string, bool) {
	entry, ok := g.byCode[phaseCode]
	if !ok {
		return "Any", false
	}
	if isContributedAutomatic && (phaseCode == "P" || phaseCode == "S") {
		return "Reg", entry.isPrimary
	}
	return entry.group, entry.isPrimary
}
