package model

// StationID uniquely identifies a reporting station: code, network, and
// location code (e.g. a borehole depth code), matching the triple used
// throughout Event.java's station bookkeeping.
type StationID struct {
	StationCode  string
	NetworkCode  string
	LocationCode string
}

// Station is immutable once built at intake, per spec §3.
type Station struct {
	ID        StationID
	Latitude  float64 // geographic degrees
	Longitude float64 // degrees
	Elevation float64 // kilometers
}

// NewStation constructs a Station from its identity and geometry.
func NewStation(id StationID, latitude, longitude, elevation float64) *Station {
	return &Station{ID: id, Latitude: latitude, Longitude: longitude, Elevation: elevation}
}
