package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/usgs-neic/go-locator/internal/auxref"
	"github.com/usgs-neic/go-locator/internal/logging"
	"github.com/usgs-neic/go-locator/locservice"
)

func newServiceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Serve the JSON/HTTP location API",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeFromFlags(cmd)
		},
		RunE: runService,
	}

	cmd.Flags().String("addr", ":8080", "address to listen on")

	return cmd
}

func runService(cmd *cobra.Command, args []string) error {
	addr := viper.GetString("addr")

	aux, err := auxref.Load(cfg.modelPath)
	if err != nil {
		logging.Warnw("failed to load auxiliary reference data; continuing without Bayesian depth priors", "error", err)
		aux = nil
	}
	engine := locservice.NewEngine(aux)
	router := locservice.NewRouter(engine)

	logging.Infow("starting location service", "addr", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		return fmt.Errorf("locator: service stopped: %w", err)
	}
	return nil
}
