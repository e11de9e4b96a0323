package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/usgs-neic/go-locator/hydra"
	"github.com/usgs-neic/go-locator/internal/auxref"
	"github.com/usgs-neic/go-locator/internal/logging"
	"github.com/usgs-neic/go-locator/locservice"
	"github.com/usgs-neic/go-locator/model"
)

func newSingleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "single",
		Short: "Locate a single event read from --filePath",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeFromFlags(cmd)
		},
		RunE: runSingle,
	}

	cmd.Flags().String("filePath", "", "path to the input event file (required)")
	cmd.Flags().String("inputType", "json", "input format: json or hydra")
	cmd.Flags().String("outputType", "json", "output format: json or hydra")
	cmd.Flags().String("csvFile", "", "station metadata CSV (required for --inputType=hydra)")
	_ = cmd.MarkFlagRequired("filePath")

	return cmd
}

func runSingle(cmd *cobra.Command, args []string) error {
	filePath := viper.GetString("filePath")
	inputType := viper.GetString("inputType")
	outputType := viper.GetString("outputType")
	csvFile := viper.GetString("csvFile")

	aux, err := auxref.Load(cfg.modelPath)
	if err != nil {
		logging.Warnw("failed to load auxiliary reference data; continuing without Bayesian depth priors", "error", err)
		aux = nil
	}
	engine := locservice.NewEngine(aux)

	req, err := readRequest(filePath, inputType, csvFile)
	if err != nil {
		return err
	}

	result, err := engine.Locate(req)
	if err != nil {
		return fmt.Errorf("locator: location failed: %w", err)
	}

	return writeResult(os.Stdout, result, outputType)
}

// readRequest loads one LocationRequest from filePath, decoding it per
// inputType and, for hydra input, loading csvFile's station metadata.
func readRequest(filePath, inputType, csvFile string) (locservice.LocationRequest, error) {
	stations, err := loadStationMetadata(csvFile)
	if err != nil {
		return locservice.LocationRequest{}, err
	}
	return readRequestFile(filePath, inputType, stations)
}

// readRequestFile loads one LocationRequest from filePath using an
// already-loaded station metadata table, so a batch run parses --csvFile
// once rather than once per event file.
func readRequestFile(filePath, inputType string, stations map[model.StationID]stationMeta) (locservice.LocationRequest, error) {
	switch inputType {
	case "json":
		f, err := os.Open(filePath)
		if err != nil {
			return locservice.LocationRequest{}, fmt.Errorf("locator: opening %q: %w", filePath, err)
		}
		defer f.Close()

		var req locservice.LocationRequest
		if err := json.NewDecoder(f).Decode(&req); err != nil {
			return locservice.LocationRequest{}, fmt.Errorf("locator: decoding %q: %w", filePath, err)
		}
		return req, nil

	case "hydra":
		f, err := os.Open(filePath)
		if err != nil {
			return locservice.LocationRequest{}, fmt.Errorf("locator: opening %q: %w", filePath, err)
		}
		defer f.Close()

		header, picks, err := hydra.ReadBulletin(f)
		if err != nil {
			return locservice.LocationRequest{}, fmt.Errorf("locator: parsing hydra bulletin %q: %w", filePath, err)
		}

		return requestFromHydra(header, picks, stations), nil

	default:
		return locservice.LocationRequest{}, fmt.Errorf("locator: unknown inputType %q (want json or hydra)", inputType)
	}
}

// writeResult renders result to w per outputType.
func writeResult(w *os.File, result locservice.LocationResult, outputType string) error {
	switch outputType {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "hydra":
		return writeHydraResult(w, result)
	default:
		return fmt.Errorf("locator: unknown outputType %q (want json or hydra)", outputType)
	}
}
