// Package locservice is the engine's outer orchestration layer: JSON
// request/response types mirroring spec §6's wire contract, an Engine
// that wires model/internal/traveltime packages into one Locate call,
// and an HTTP controller exposing it. Grounded on
// chrissnell-remoteweather's plain encoding/json struct-tag style for
// wire types, and on gorilla/mux for the HTTP surface (see http.go).
package locservice

// PickInput is one arrival observation in a LocationRequest.
type PickInput struct {
	ID               string  `json:"id"`
	StationCode      string  `json:"stationCode"`
	NetworkCode      string  `json:"networkCode"`
	LocationCode     string  `json:"locationCode"`
	Channel          string  `json:"channel"`
	StationLatitude  float64 `json:"stationLatitude"`
	StationLongitude float64 `json:"stationLongitude"`
	StationElevation float64 `json:"stationElevation"`

	Source     string `json:"source"`
	Author     string `json:"author"`
	AuthorType int    `json:"authorType"`

	Time             int64   `json:"time"` // epoch milliseconds
	LocatedPhase     string  `json:"locatedPhase"`
	AssociatedPhase  string  `json:"associatedPhase"`
	Use              bool    `json:"use"`
	Quality          float64 `json:"quality"`
	Affinity         float64 `json:"affinity"`
}

// LocationRequest is the JSON request body for a location attempt, per
// spec §6.
type LocationRequest struct {
	SourceOriginTime int64   `json:"sourceOriginTime"` // epoch milliseconds
	SourceLatitude   float64 `json:"sourceLatitude"`
	SourceLongitude  float64 `json:"sourceLongitude"`
	SourceDepth      float64 `json:"sourceDepth"`

	// IsLocationNew is false for a restart of an existing location (the
	// picks already carry an association from a prior run); Engine sets
	// Event.IsLocationRestarted to its negation, which tells
	// stepper.RunInitialPhaseID to skip the tentative cleanup pass and
	// re-identify every phase immediately against the supplied
	// hypocenter.
	IsLocationNew          bool `json:"isLocationNew"`
	IsLocationHeld         bool `json:"isLocationHeld"`
	IsDepthHeld            bool `json:"isDepthHeld"`
	IsBayesianDepth        bool `json:"isBayesianDepth"`
	UseRSTT                bool `json:"useRSTT"`
	UseSVD                 bool `json:"useSVD"`

	// ReassessInitialPhaseIDs forces RunInitialPhaseID's stricter
	// cleanup path (forcing first arrivals to the nearest theoretical
	// phase) even when few of them look misidentified, for a re-run
	// where the analyst already distrusts the existing association.
	ReassessInitialPhaseIDs bool `json:"reassessInitialPhaseIDs"`

	BayesianDepth  float64 `json:"bayesianDepth"`
	BayesianSpread float64 `json:"bayesianSpread"`

	EarthModel string `json:"earthModel"`

	InputData []PickInput `json:"inputData"`
}

// ErrorEllipseAxis is one semi-axis of the reported error ellipsoid.
type ErrorEllipseAxis struct {
	SemiMajor float64 `json:"semiMajor"`
	Azimuth   float64 `json:"azimuth"`
	Plunge    float64 `json:"plunge"`
}

// PickOutput is one pick's post-location report.
type PickOutput struct {
	ID           string  `json:"id"`
	StationCode  string  `json:"stationCode"`
	NetworkCode  string  `json:"networkCode"`
	LocationCode string  `json:"locationCode"`
	Channel      string  `json:"channel"`
	ArrivalTime  int64   `json:"time"`     // epoch milliseconds
	Distance     float64 `json:"distance"` // degrees
	Azimuth      float64 `json:"azimuth"`  // degrees
	Phase        string  `json:"phase"`
	Residual     float64 `json:"residual"` // seconds
	Weight       float64 `json:"weight"`
	Importance   float64 `json:"importance"`
	Used         bool    `json:"used"`
}

// LocationResult is the JSON response body for a location attempt, per
// spec §6.
type LocationResult struct {
	Hypocenter struct {
		OriginTime int64   `json:"originTime"` // epoch milliseconds
		Latitude   float64 `json:"latitude"`
		Longitude  float64 `json:"longitude"`
		Depth      float64 `json:"depth"`
	} `json:"hypocenter"`

	NumStationsAssociated int `json:"numStationsAssociated"`
	NumStationsUsed       int `json:"numStationsUsed"`
	NumPhasesAssociated   int `json:"numPhasesAssociated"`
	NumPhasesUsed         int `json:"numPhasesUsed"`

	AzimuthGap       float64 `json:"azimGap"`
	RobustGap        float64 `json:"robustGap"`
	MinDistance      float64 `json:"minDistance"`
	Quality          string  `json:"quality"`

	StdErrorTime  float64 `json:"stderrTime"`
	StdErrorLatKm float64 `json:"stderrLatKm"`
	StdErrorLonKm float64 `json:"stderrLonKm"`
	StdErrorDepth float64 `json:"stderrDepth"`
	StdErrorResid float64 `json:"stderrResid"`

	ErrorEllipsoid []ErrorEllipseAxis `json:"errorEllipsoid"`

	BayesianDepthImportance float64 `json:"bayesianDepthImportance"`

	ExitCode string `json:"exitCode"`

	Picks []PickOutput `json:"picks"`
}
