package commands

import (
	"context"
	"gdp-etl/internal/pipeline"
	"gdp-etl/lib/telemetry"

	"github.com/spf13/cobra"
)

var configPath *string
var debug *bool

func init() {
	configPath = rootCmd.PersistentFlags().String("config", pipeline.DefaultConfigFile, "The json5 config file, a missing file keeps the defaults.")
	debug = rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging.")
}

var rootCmd = &cobra.Command{
	Use:   "gdp-etl",
	Short: "gdp-etl extracts the countries by GDP table, saves it to csv and sqlite and queries it.",
	// errors are logged once by main after telemetry is flushed
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*debug)
	},
}

// ExecuteContext runs the command line, the error of a failed command is
// returned so the caller can flush telemetry before exiting.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
