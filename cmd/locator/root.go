package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at release build time via -ldflags; it is left as a
// placeholder for development builds run from source.
var version = "dev"

// rootConfig holds every flag value shared across subcommands, populated
// by viper after PersistentPreRunE runs. Subcommand-specific flags live
// on their own command structs.
type rootConfig struct {
	modelPath string
	logPath   string
	logLevel  string
}

var cfg rootConfig

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "locator",
		Short: "Locate seismic events from station arrival picks",
		Long: `locator runs the NEIC-style event location engine: phase identification,
rank-sum-estimator hypocenter refinement, and confidence error ellipsoid
reporting, over a single event, a batch directory, or a JSON/HTTP service.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeFromFlags(cmd)
		},
	}

	root.PersistentFlags().String("modelPath", "models", "directory containing craton/zone-statistics auxiliary reference data")
	root.PersistentFlags().String("logPath", "", "log output file path (default stderr)")
	root.PersistentFlags().String("logLevel", "info", "log level: debug, info, warn, or error")
	root.PersistentFlags().Bool("version", false, "print the locator version and exit")

	if err := viper.BindPFlags(root.PersistentFlags()); err != nil {
		panic(fmt.Sprintf("locator: failed to bind persistent flags: %v", err))
	}

	root.RunE = func(cmd *cobra.Command, args []string) error {
		if show, _ := cmd.Flags().GetBool("version"); show {
			fmt.Println("locator version", version)
			return nil
		}
		return cmd.Help()
	}

	root.AddCommand(newSingleCommand())
	root.AddCommand(newBatchCommand())
	root.AddCommand(newServiceCommand())

	return root
}

// initializeFromFlags syncs viper from the invoked command's flags (cobra
// resolves persistent flags per-subcommand, so each subcommand's
// PersistentPreRunE must re-bind) and populates cfg, then starts logging.
func initializeFromFlags(cmd *cobra.Command) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("locator: failed to bind flags: %w", err)
	}

	cfg = rootConfig{
		modelPath: viper.GetString("modelPath"),
		logPath:   viper.GetString("logPath"),
		logLevel:  viper.GetString("logLevel"),
	}

	return initLogging(cfg.logLevel, cfg.logPath)
}

// Execute builds and runs the root command.
func Execute() error {
	return newRootCommand().Execute()
}
