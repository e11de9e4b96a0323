package main

import (
	"io"
	"time"

	"github.com/usgs-neic/go-locator/hydra"
	"github.com/usgs-neic/go-locator/internal/locutil"
	"github.com/usgs-neic/go-locator/locservice"
	"github.com/usgs-neic/go-locator/model"
)

// requestFromHydra builds a LocationRequest from a parsed Hydra bulletin.
// Station coordinates come from stations (loaded from --csvFile), looked
// up by station/network/location code; a pick whose station is absent
// from the table gets station coordinates (0,0); no warning is logged.
func requestFromHydra(header hydra.Header, picks []hydra.PickRecord, stations map[model.StationID]stationMeta) locservice.LocationRequest {
	req := locservice.LocationRequest{
		SourceOriginTime: header.OriginTime.UnixMilli(),
		SourceLatitude:   header.Latitude,
		SourceLongitude:  header.Longitude,
		SourceDepth:      header.Depth,
		IsLocationHeld:   header.IsLocationHeld,
		IsDepthHeld:      header.IsDepthHeld,
		IsBayesianDepth:  header.IsDepthManual,
		BayesianDepth:    header.BayesianDepth,
		BayesianSpread:   header.BayesianSpread,
		UseSVD:           header.UseDecorrelation,
		EarthModel:       "ak135",
	}

	for _, p := range picks {
		id := model.StationID{StationCode: p.StationCode, NetworkCode: p.NetworkCode, LocationCode: p.LocationCode}
		meta := stations[id]

		req.InputData = append(req.InputData, locservice.PickInput{
			StationCode:      p.StationCode,
			NetworkCode:      p.NetworkCode,
			LocationCode:     p.LocationCode,
			Channel:          p.Channel,
			StationLatitude:  meta.Latitude,
			StationLongitude: meta.Longitude,
			StationElevation: meta.Elevation,
			Source:           p.NetworkCode,
			Author:           "hydra",
			AuthorType:       int(model.AuthorContributedAutomatic),
			Time:             p.ArrivalTime.UnixMilli(),
			AssociatedPhase:  p.PhaseCode,
			Use:              p.Used,
			Affinity:         locutil.NullAffinity,
		})
	}

	return req
}

// writeHydraResult renders a LocationResult as a Hydra bulletin: a header
// carrying the relocated hypocenter, followed by one rewritten pick line
// per PickOutput.
func writeHydraResult(w io.Writer, result locservice.LocationResult) error {
	// The header carries only the relocated hypocenter; stderr/quality and
	// bayesianDepthImportance have no header column in the legacy format
	// and are only reported in the JSON response.
	header := hydra.Header{
		OriginTime: time.UnixMilli(result.Hypocenter.OriginTime).UTC(),
		Latitude:   result.Hypocenter.Latitude,
		Longitude:  result.Hypocenter.Longitude,
		Depth:      result.Hypocenter.Depth,
	}
	if err := hydra.WriteHeader(w, header); err != nil {
		return err
	}

	for _, p := range result.Picks {
		pick := hydra.PickRecord{
			StationCode:  p.StationCode,
			NetworkCode:  p.NetworkCode,
			LocationCode: p.LocationCode,
			Channel:      p.Channel,
			Distance:     p.Distance,
			Azimuth:      p.Azimuth,
			PhaseCode:    p.Phase,
			ArrivalTime:  time.UnixMilli(p.ArrivalTime).UTC(),
			Residual:     p.Residual,
			Weight:       p.Weight,
			Used:         p.Used,
		}
		if err := hydra.WritePick(w, pick); err != nil {
			return err
		}
	}

	return nil
}
