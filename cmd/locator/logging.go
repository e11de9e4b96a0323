package main

import (
	"strings"

	"github.com/usgs-neic/go-locator/internal/logging"
)

// initLogging starts the package-level logger. logging.Init only chooses
// between zap's development and production encoders (see
// internal/logging), so logLevel is collapsed to that boolean: "debug" or
// "trace" selects the development encoder, everything else production.
// logPath is accepted for CLI-contract compatibility but isn't yet wired
// to a file-backed zap core; see DESIGN.md.
func initLogging(logLevel, logPath string) error {
	debug := strings.EqualFold(logLevel, "debug") || strings.EqualFold(logLevel, "trace")
	if err := logging.Init(debug); err != nil {
		return err
	}
	if logPath != "" {
		logging.Infow("logPath was set but file-backed logging is not implemented; logging to stderr", "logPath", logPath)
	}
	return nil
}
