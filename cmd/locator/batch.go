package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/usgs-neic/go-locator/internal/auxref"
	"github.com/usgs-neic/go-locator/internal/logging"
	"github.com/usgs-neic/go-locator/locservice"
	"github.com/usgs-neic/go-locator/model"
)

func newBatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Locate every event file in --inputDir concurrently",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeFromFlags(cmd)
		},
		RunE: runBatch,
	}

	cmd.Flags().String("inputDir", "", "directory of input event files (required)")
	cmd.Flags().String("outputDir", "", "directory to write per-event results (required)")
	cmd.Flags().String("archiveDir", "", "directory to move processed input files into (optional)")
	cmd.Flags().String("inputType", "json", "input format: json or hydra")
	cmd.Flags().String("outputType", "json", "output format: json or hydra")
	cmd.Flags().String("csvFile", "", "station metadata CSV (required for --inputType=hydra)")
	_ = cmd.MarkFlagRequired("inputDir")
	_ = cmd.MarkFlagRequired("outputDir")

	return cmd
}

// batchJob is one queued input file, paired with the ticket channel its
// result will arrive on -- the same pattern digest2's own CLI dispatcher
// uses to keep per-arc results in submission order across a worker pool
// (see DESIGN.md), adapted here to per-file events. Order doesn't matter for
// separate output files, but the ticket channel still gives the collector
// loop a single place to wait for, count, and log failures without a
// mutex-protected shared counter.
type batchJob struct {
	path   string
	result chan batchResult
}

type batchResult struct {
	path string
	err  error
}

func runBatch(cmd *cobra.Command, args []string) error {
	inputDir := viper.GetString("inputDir")
	outputDir := viper.GetString("outputDir")
	archiveDir := viper.GetString("archiveDir")
	inputType := viper.GetString("inputType")
	outputType := viper.GetString("outputType")
	csvFile := viper.GetString("csvFile")

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("locator: creating outputDir %q: %w", outputDir, err)
	}
	if archiveDir != "" {
		if err := os.MkdirAll(archiveDir, 0o755); err != nil {
			return fmt.Errorf("locator: creating archiveDir %q: %w", archiveDir, err)
		}
	}

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return fmt.Errorf("locator: reading inputDir %q: %w", inputDir, err)
	}

	aux, err := auxref.Load(cfg.modelPath)
	if err != nil {
		logging.Warnw("failed to load auxiliary reference data; continuing without Bayesian depth priors", "error", err)
		aux = nil
	}
	engine := locservice.NewEngine(aux)

	stations, err := loadStationMetadata(csvFile)
	if err != nil {
		return err
	}

	maxWorkers := runtime.GOMAXPROCS(0)
	jobCh := make(chan *batchJob)
	ticketCh := make(chan chan batchResult, maxWorkers*2)

	// dispatcher: hand each file to jobCh with a one-slot result ticket,
	// and queue the ticket for the collector loop below in submission
	// order.
	go func() {
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			job := &batchJob{path: filepath.Join(inputDir, entry.Name()), result: make(chan batchResult, 1)}
			ticketCh <- job.result
			jobCh <- job
		}
		close(jobCh)
		close(ticketCh)
	}()

	for n := 0; n < maxWorkers; n++ {
		go batchWorker(jobCh, engine, stations, inputType, outputType, outputDir, archiveDir)
	}

	var failures int
	for ticket := range ticketCh {
		res := <-ticket
		if res.err != nil {
			failures++
			logging.Errorw("batch event failed", "file", res.path, "error", res.err)
		} else {
			logging.Infow("batch event located", "file", res.path)
		}
	}

	if failures > 0 {
		return fmt.Errorf("locator: %d of %d events failed", failures, len(entries))
	}
	return nil
}

func batchWorker(jobCh <-chan *batchJob, engine *locservice.Engine, stations map[model.StationID]stationMeta, inputType, outputType, outputDir, archiveDir string) {
	for job := range jobCh {
		job.result <- batchResult{path: job.path, err: locateFile(engine, job.path, inputType, outputType, stations, outputDir, archiveDir)}
	}
}

// locateFile reads one input event file, locates it, writes the result
// into outputDir under the same base name, and moves the input into
// archiveDir if set.
func locateFile(engine *locservice.Engine, path, inputType, outputType string, stations map[model.StationID]stationMeta, outputDir, archiveDir string) error {
	req, err := readRequestFile(path, inputType, stations)
	if err != nil {
		return err
	}

	result, err := engine.Locate(req)
	if err != nil {
		return fmt.Errorf("locating %q: %w", path, err)
	}

	outPath := filepath.Join(outputDir, filepath.Base(path)+".out")
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %q: %w", outPath, err)
	}
	defer out.Close()

	if err := writeResult(out, result, outputType); err != nil {
		return fmt.Errorf("writing %q: %w", outPath, err)
	}

	if archiveDir != "" {
		if err := os.Rename(path, filepath.Join(archiveDir, filepath.Base(path))); err != nil {
			return fmt.Errorf("archiving %q: %w", path, err)
		}
	}

	return nil
}
