// Package hydra reads and writes the location engine's legacy fixed-
// column text formats: the "Hydra" event input record and the per-pick
// lines that follow it. Column widths and field order are grounded on
// Event.java's printIn/printHydra format strings (see
// _examples/original_source); the per-pick record width was not itself
// retrieved (PickGroup.java's printIn/printHydra were not present in the
// retrieved source), so its field set is reconstructed from the pick data
// PhaseID/Event need, in the same fixed-column spirit.
//
// Parsing style -- byte-offset column slicing plus strings.TrimSpace and
// strconv for a pick line's leading code columns -- follows
// mpc.ParseObs80's 80-column MPC format reader; the header line and a pick
// line's trailing numeric/phase columns are tokenized with strings.Fields.
package hydra

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/usgs-neic/go-locator/model"
)

// Header column widths, in the order they appear on an event header line:
// origin date/time, latitude, longitude, depth, held-location flag,
// held-depth flag, manual-depth flag, Bayesian depth, Bayesian spread,
// decorrelation flag. Each field is right-justified within its width and
// separated from its neighbor by exactly one space, per Event.java's
// "%22s %8.4f %9.4f %6.2f %5b %5b %5b %5.1f %5.1f %5b" format string.
const (
	widthDate    = 22
	widthLat     = 8
	widthLon     = 9
	widthDepth   = 6
	widthFlag    = 5
	widthBayes   = 5
	headerDateLayout = "2006-01-02 15:04:05.000"
)

// Header is one parsed (or to-be-written) Hydra event header record.
type Header struct {
	OriginTime       time.Time
	Latitude         float64
	Longitude        float64
	Depth            float64
	IsLocationHeld   bool
	IsDepthHeld      bool
	IsDepthManual    bool
	BayesianDepth    float64
	BayesianSpread   float64
	UseDecorrelation bool
}

// WriteHeader writes one fixed-width event header line.
func WriteHeader(w io.Writer, h Header) error {
	_, err := fmt.Fprintf(w, "%*s %*.4f %*.4f %*.2f %*s %*s %*s %*.1f %*.1f %*s\n",
		widthDate, h.OriginTime.UTC().Format(headerDateLayout),
		widthLat, h.Latitude,
		widthLon, h.Longitude,
		widthDepth, h.Depth,
		widthFlag, formatBool(h.IsLocationHeld),
		widthFlag, formatBool(h.IsDepthHeld),
		widthFlag, formatBool(h.IsDepthManual),
		widthBayes, h.BayesianDepth,
		widthBayes, h.BayesianSpread,
		widthFlag, formatBool(h.UseDecorrelation),
	)
	return err
}

// ReadHeader parses one fixed-width event header line, using whitespace
// tokenization since each field's format specifier pads to fit its own
// width without embedding internal spaces (mirroring how mpc.ParseObs80
// slices 80-column fields, adapted here to space-delimited rather than
// zero-delimited columns because every Hydra field is self-contained).
func ReadHeader(line string) (Header, error) {
	fields := strings.Fields(line)
	// The date field's own layout contains an internal space ("2006-01-02
	// 15:04:05.000"), so it tokenizes into two words; the other nine
	// fields are each single tokens, for 11 total.
	if len(fields) != 11 {
		return Header{}, fmt.Errorf("hydra: header line has %d fields, want 11: %q", len(fields), line)
	}

	originTime, err := time.Parse(headerDateLayout, fields[0]+" "+fields[1])
	if err != nil {
		return Header{}, fmt.Errorf("hydra: invalid origin time %q: %w", fields[0]+" "+fields[1], err)
	}

	lat, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return Header{}, fmt.Errorf("hydra: invalid latitude %q: %w", fields[2], err)
	}
	lon, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return Header{}, fmt.Errorf("hydra: invalid longitude %q: %w", fields[3], err)
	}
	depth, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return Header{}, fmt.Errorf("hydra: invalid depth %q: %w", fields[4], err)
	}
	bayesDepth, err := strconv.ParseFloat(fields[8], 64)
	if err != nil {
		return Header{}, fmt.Errorf("hydra: invalid Bayesian depth %q: %w", fields[8], err)
	}
	bayesSpread, err := strconv.ParseFloat(fields[9], 64)
	if err != nil {
		return Header{}, fmt.Errorf("hydra: invalid Bayesian spread %q: %w", fields[9], err)
	}

	return Header{
		OriginTime:       originTime,
		Latitude:         lat,
		Longitude:        lon,
		Depth:            depth,
		IsLocationHeld:   parseBool(fields[5]),
		IsDepthHeld:      parseBool(fields[6]),
		IsDepthManual:    parseBool(fields[7]),
		BayesianDepth:    bayesDepth,
		BayesianSpread:   bayesSpread,
		UseDecorrelation: parseBool(fields[10]),
	}, nil
}

// HeaderFromEvent builds the header record for event's current state.
func HeaderFromEvent(event *model.Event) Header {
	return Header{
		OriginTime:       time.Unix(int64(event.Hypo.OriginTime), 0),
		Latitude:         event.Hypo.Latitude,
		Longitude:        event.Hypo.Longitude,
		Depth:            event.Hypo.Depth,
		IsLocationHeld:   event.IsLocationHeld,
		IsDepthHeld:      event.IsDepthHeld,
		IsDepthManual:    event.IsDepthManual,
		BayesianDepth:    event.Hypo.BayesianDepth,
		BayesianSpread:   event.Hypo.BayesianDepthSpread,
		UseDecorrelation: event.UseDecorrelation,
	}
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func parseBool(s string) bool {
	return s == "true"
}

// PickRecord is one fixed-column pick line following an event header:
// station/network/location codes, channel, distance, azimuth, phase
// code, arrival time, residual, and weight. Reconstructed in the spirit
// of PickGroup.java's printHydra (not itself retrieved) and
// mpc.ParseObs80's column layout.
type PickRecord struct {
	StationCode  string
	NetworkCode  string
	LocationCode string
	Channel      string
	Distance     float64
	Azimuth      float64
	PhaseCode    string
	ArrivalTime  time.Time
	Residual     float64
	Weight       float64
	Used         bool
}

const (
	pickStationWidth  = 8
	pickNetworkWidth  = 4
	pickLocationWidth = 4
	pickChannelWidth  = 4
	pickDistWidth     = 7
	pickAzWidth       = 7
	pickPhaseWidth    = 8
	pickTimeLayout    = "2006-01-02T15:04:05.000"
)

// WritePick writes one fixed-column pick line.
func WritePick(w io.Writer, p PickRecord) error {
	_, err := fmt.Fprintf(w, "%-*s%-*s%-*s%-*s%*.2f%*.1f %-*s%s %8.3f %6.3f %1s\n",
		pickStationWidth, p.StationCode,
		pickNetworkWidth, p.NetworkCode,
		pickLocationWidth, p.LocationCode,
		pickChannelWidth, p.Channel,
		pickDistWidth, p.Distance,
		pickAzWidth, p.Azimuth,
		pickPhaseWidth, p.PhaseCode,
		p.ArrivalTime.UTC().Format(pickTimeLayout),
		p.Residual,
		p.Weight,
		usedFlag(p.Used),
	)
	return err
}

func usedFlag(used bool) string {
	if used {
		return "u"
	}
	return "."
}

// ReadPick parses one fixed-column pick line written by WritePick.
func ReadPick(line string) (PickRecord, error) {
	if len(line) < pickStationWidth+pickNetworkWidth+pickLocationWidth+pickChannelWidth {
		return PickRecord{}, fmt.Errorf("hydra: pick line too short: %q", line)
	}

	offset := 0
	station := strings.TrimSpace(line[offset : offset+pickStationWidth])
	offset += pickStationWidth
	network := strings.TrimSpace(line[offset : offset+pickNetworkWidth])
	offset += pickNetworkWidth
	location := strings.TrimSpace(line[offset : offset+pickLocationWidth])
	offset += pickLocationWidth
	channel := strings.TrimSpace(line[offset : offset+pickChannelWidth])
	offset += pickChannelWidth

	rest := strings.Fields(line[offset:])
	if len(rest) != 7 {
		return PickRecord{}, fmt.Errorf("hydra: pick line has %d trailing fields, want 7: %q", len(rest), line)
	}

	distance, err := strconv.ParseFloat(rest[0], 64)
	if err != nil {
		return PickRecord{}, fmt.Errorf("hydra: invalid distance %q: %w", rest[0], err)
	}
	azimuth, err := strconv.ParseFloat(rest[1], 64)
	if err != nil {
		return PickRecord{}, fmt.Errorf("hydra: invalid azimuth %q: %w", rest[1], err)
	}
	phase := rest[2]
	arrivalTime, err := time.Parse(pickTimeLayout, rest[3])
	if err != nil {
		return PickRecord{}, fmt.Errorf("hydra: invalid arrival time %q: %w", rest[3], err)
	}
	residual, err := strconv.ParseFloat(rest[4], 64)
	if err != nil {
		return PickRecord{}, fmt.Errorf("hydra: invalid residual %q: %w", rest[4], err)
	}
	weight, err := strconv.ParseFloat(rest[5], 64)
	if err != nil {
		return PickRecord{}, fmt.Errorf("hydra: invalid weight %q: %w", rest[5], err)
	}

	return PickRecord{
		StationCode:  station,
		NetworkCode:  network,
		LocationCode: location,
		Channel:      channel,
		Distance:     distance,
		Azimuth:      azimuth,
		PhaseCode:    phase,
		ArrivalTime:  arrivalTime,
		Residual:     residual,
		Weight:       weight,
		Used:         rest[6] == usedFlag(true),
	}, nil
}

// ReadBulletin reads a header line followed by zero or more pick lines,
// stopping at the first blank line or EOF.
func ReadBulletin(r io.Reader) (Header, []PickRecord, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return Header{}, nil, fmt.Errorf("hydra: empty bulletin")
	}
	header, err := ReadHeader(scanner.Text())
	if err != nil {
		return Header{}, nil, err
	}

	var picks []PickRecord
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			break
		}
		pick, err := ReadPick(line)
		if err != nil {
			return Header{}, nil, err
		}
		picks = append(picks, pick)
	}
	return header, picks, scanner.Err()
}
