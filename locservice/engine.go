package locservice

import (
	"fmt"
	"math"
	"time"

	locator "github.com/usgs-neic/go-locator"
	"github.com/usgs-neic/go-locator/internal/auxref"
	"github.com/usgs-neic/go-locator/internal/craton"
	"github.com/usgs-neic/go-locator/internal/ellipsoid"
	"github.com/usgs-neic/go-locator/internal/geo"
	"github.com/usgs-neic/go-locator/internal/locloop"
	"github.com/usgs-neic/go-locator/internal/locutil"
	"github.com/usgs-neic/go-locator/internal/logging"
	"github.com/usgs-neic/go-locator/internal/phaseid"
	"github.com/usgs-neic/go-locator/internal/stepper"
	"github.com/usgs-neic/go-locator/internal/zonestats"
	"github.com/usgs-neic/go-locator/model"
	"github.com/usgs-neic/go-locator/traveltime"

	"github.com/google/uuid"
)

// Engine holds the dependencies shared across every Locate call: the
// travel-time service, phase-group lookup, and craton/zone-stats
// auxiliary data. Safe for concurrent use, per spec §5 -- every Locate
// call builds its own Event and Stepper and shares no mutable state with
// any other call.
type Engine struct {
	TravelTime      traveltime.Service
	PhaseIdentifier *phaseid.Identifier
	Aux             *auxref.Data
	Stages          []stepper.StageParams
}

// NewEngine builds an Engine from loaded auxiliary data. aux may be nil,
// in which case every event is treated as tectonic and no Bayesian depth
// prior is looked up from zone statistics.
func NewEngine(aux *auxref.Data) *Engine {
	return &Engine{
		TravelTime:      traveltime.NewLocalService(),
		PhaseIdentifier: phaseid.New(phaseid.NewStaticGroups()),
		Aux:             aux,
	}
}

// Locate runs one full staged location on req and returns its JSON
// response. A status the staged loop ends with (insufficient data,
// non-convergence, a failed error ellipsoid) comes back as a
// LocationResult with the matching exit code and best-effort (possibly
// zeroed) statistics, matching Event.zeroStats/Event.setExitCode's
// recovery behavior in the original. An error returned from inside the
// staged loop (travel-time session, line search) is not turned into a
// result: Locate returns an empty LocationResult and a *locator.Error of
// kind DidNotConverge.
func (e *Engine) Locate(req LocationRequest) (LocationResult, error) {
	requestID := uuid.New()
	event, err := buildEvent(req)
	if err != nil {
		return LocationResult{}, locator.NewError("locservice.Locate", locator.BadInput, err)
	}

	st := stepper.New(event, e.PhaseIdentifier, e.TravelTime, cratonsOrNil(e.Aux), zoneStatsOrNil(e.Aux))
	loop := locloop.New(event, st, e.Stages)

	logging.Debugw("starting location", "requestID", requestID, "numPicks", len(event.Picks))

	startLat, startLon, startDepth := event.Hypo.Latitude, event.Hypo.Longitude, event.Hypo.Depth

	status, err := loop.Locate()
	if err != nil {
		logging.Errorw("location failed", "requestID", requestID, "error", err)
		return LocationResult{}, locator.NewError("locservice.Locate", locator.DidNotConverge, err)
	}

	// The exit code judges movement over the whole run, not the last step.
	moved, _ := geo.DistanceAzimuth(event.Hypo.CoLatitude, event.Hypo.Longitude, startLat, startLon)
	event.Hypo.DeltaH = moved * locutil.DEG2KM
	event.Hypo.DeltaZ = math.Abs(event.Hypo.Depth - startDepth)

	finishEvent(event, status)

	logging.Debugw("finished location", "requestID", requestID, "status", status.String())

	return toResult(event, status), nil
}

func cratonsOrNil(aux *auxref.Data) *craton.Map {
	if aux == nil {
		return nil
	}
	return aux.Cratons
}

func zoneStatsOrNil(aux *auxref.Data) *zonestats.Table {
	if aux == nil {
		return nil
	}
	return aux.ZoneStats
}

// buildEvent converts a LocationRequest into the model.Event the engine
// packages operate on: hypocenter, stations, picks, and pick groups with
// their initial geometry.
func buildEvent(req LocationRequest) (*model.Event, error) {
	if len(req.InputData) == 0 {
		return nil, fmt.Errorf("no input picks")
	}

	earthModel := req.EarthModel
	if earthModel == "" {
		earthModel = "ak135"
	}

	hypo := model.NewHypocenter(
		float64(req.SourceOriginTime)/1000.0,
		req.SourceLatitude,
		req.SourceLongitude,
		req.SourceDepth,
	)
	hypo.SetDegreesOfFreedom(req.IsLocationHeld, req.IsDepthHeld)
	if req.IsBayesianDepth {
		hypo.AddBayes(req.BayesianDepth, req.BayesianSpread)
	}

	event := model.NewEvent(hypo)
	event.EarthModel = earthModel
	event.IsLocationHeld = req.IsLocationHeld
	event.IsDepthHeld = req.IsDepthHeld
	event.IsDepthManual = req.IsBayesianDepth
	event.IsLocationRestarted = !req.IsLocationNew
	event.ReassessInitialPhaseIDs = req.ReassessInitialPhaseIDs
	event.UseDecorrelation = req.UseSVD

	for _, in := range req.InputData {
		id := model.StationID{StationCode: in.StationCode, NetworkCode: in.NetworkCode, LocationCode: in.LocationCode}
		station, ok := event.Stations[id]
		if !ok {
			station = model.NewStation(id, in.StationLatitude, in.StationLongitude, in.StationElevation)
			event.Stations[id] = station
		}

		pick := model.NewPick(
			station,
			in.Channel,
			in.Source,
			model.AuthorType(in.AuthorType),
			time.UnixMilli(in.Time).UTC(),
			in.AssociatedPhase,
			orDefault(in.Affinity, locutil.NullAffinity),
		)
		if in.ID != "" {
			if parsed, err := uuid.Parse(in.ID); err == nil {
				pick.ID = parsed
			}
		}
		pick.Quality = in.Quality
		pick.CommandUse = in.Use
		pick.Used = in.Use
		pick.ObservedPhaseCode = in.LocatedPhase

		event.Picks = append(event.Picks, pick)
	}

	event.GroupPicksByStation()
	updateGeometry(event)
	event.SortGroupsByDistance()

	return event, nil
}

func orDefault(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}

// updateGeometry recomputes every pick group's distance and azimuth from
// the current hypocenter, called once at intake and again by Stepper via
// SetEnvironment/phase identification as the hypocenter moves.
func updateGeometry(event *model.Event) {
	hypo := event.Hypo
	for _, g := range event.Groups {
		distance, azimuth := geo.DistanceAzimuth(hypo.CoLatitude, hypo.Longitude, g.Station.Latitude, g.Station.Longitude)
		g.SetGeometry(distance, azimuth)
	}
}

// finishEvent computes the final quality/error statistics once the
// staged loop has stopped, per Event.java's post-location bookkeeping
// (sumErrors, setQualFlags, setExitCode). hypo.RMS is treated as equal to
// the final rank-sum dispersion: no RMS-from-dispersion conversion
// formula was present in the retrieved original source, so this repo
// uses the dispersion value directly as its RMS-equivalent (see
// DESIGN.md).
func finishEvent(event *model.Event, status model.LocationStatus) {
	event.Hypo.RMS = event.Hypo.Dispersion
	updateGeometry(event)
	event.UpdateStationStatistics()
	event.ComputeAzimuthGap()

	dof := event.Hypo.DegreesOfFreedom
	if dof > 0 && status != model.StatusInsufficientData && status != model.StatusLocationFailed {
		residuals := event.WResRaw
		if event.UseDecorrelation {
			residuals = event.WResProj
		}
		variance := event.Hypo.RMS * event.Hypo.RMS
		if variance <= 0 {
			variance = 1
		}
		axes, err := ellipsoid.Compute(residuals, dof, variance)
		if err != nil {
			logging.Warnw("ellipsoid computation failed", "error", err)
			event.ZeroStats(false)
			event.ErrEllip = nil
			event.SetQualFlags(status, model.DefaultQualityLimits())
			event.SetExitCode(model.StatusEllipsoidFailed, locutil.DeltaTol, locutil.DepthTol)
			return
		}
		event.ErrEllip = axes
		event.SumErrors()
		event.SETime = event.Hypo.Dispersion
		event.SEDepth = event.ErrZ
		event.AverageH = event.ErrH
	} else {
		event.ZeroStats(true)
		event.ErrEllip = nil
	}

	event.SetQualFlags(status, model.DefaultQualityLimits())
	event.SetExitCode(status, locutil.DeltaTol, locutil.DepthTol)
}

// toResult renders event's final state into the wire response type.
func toResult(event *model.Event, status model.LocationStatus) LocationResult {
	var result LocationResult
	result.Hypocenter.OriginTime = int64(event.Hypo.OriginTime * 1000)
	result.Hypocenter.Latitude = event.Hypo.Latitude
	result.Hypocenter.Longitude = event.Hypo.Longitude
	result.Hypocenter.Depth = event.Hypo.Depth

	result.NumStationsAssociated = event.StationsAssociated
	result.NumStationsUsed = event.StationsUsed
	result.NumPhasesAssociated = event.PhasesAssociated
	result.NumPhasesUsed = event.PhasesUsed
	result.AzimuthGap = event.AzimuthGap
	result.RobustGap = event.RobustAzimuthGap
	result.MinDistance = event.MinDistance
	result.Quality = event.Quality

	result.StdErrorTime = event.SETime
	result.StdErrorLatKm = event.SELat
	result.StdErrorLonKm = event.SELon
	result.StdErrorDepth = event.SEDepth
	result.StdErrorResid = event.SEResid

	result.ErrorEllipsoid = make([]ErrorEllipseAxis, len(event.ErrEllip))
	for i, axis := range event.ErrEllip {
		result.ErrorEllipsoid[i] = ErrorEllipseAxis{SemiMajor: axis.SemiLength, Azimuth: axis.Strike, Plunge: axis.Plunge}
	}

	result.BayesianDepthImportance = event.BayesImportance
	result.ExitCode = event.ExitCode.String()

	result.Picks = make([]PickOutput, 0, len(event.Picks))
	for _, g := range event.Groups {
		for _, p := range g.Picks {
			result.Picks = append(result.Picks, PickOutput{
				ID:           p.ID.String(),
				StationCode:  g.Station.ID.StationCode,
				NetworkCode:  g.Station.ID.NetworkCode,
				LocationCode: g.Station.ID.LocationCode,
				Channel:      p.Channel,
				ArrivalTime:  p.ArrivalTime.UnixMilli(),
				Distance:     g.Distance,
				Azimuth:      g.Azimuth,
				Phase:        p.BestPhaseCode,
				Residual:     p.Residual,
				Weight:       p.Weight,
				Importance:   p.Importance,
				Used:         p.Used,
			})
		}
	}

	return result
}
