package commands

import (
	"fmt"
	"gdp-etl/internal/pipeline"
	"log/slog"

	"github.com/spf13/cobra"
)

var runFlags overrides

func init() {
	runFlags.register(runCmd.Flags(), true)
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--url <page>] [--csv <path>] [--db <path>] [--threshold <billions>]",
	Short: "Runs the whole pipeline: extract, transform, save, load and query.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Flags(), &runFlags)
		if err != nil {
			return err
		}

		result, err := pipeline.Run(cmd.Context(), cfg, pipeline.Deps{
			Out: cmd.OutOrStdout(),
		})
		if err != nil {
			stage := pipeline.Stage(err)
			if stage == "" {
				return err
			}
			return fmt.Errorf("pipeline failed at %s: %w", stage, err)
		}

		slog.Info(
			"pipeline complete",
			"rows", result.Table.Len(),
			"skipped", result.Stats.Skipped(),
			"selected", len(result.Query.Rows),
			"cpu_percent", result.Perf.CpuPercent,
			"allocated_mb", result.Perf.AllocatedMB,
		)
		return nil
	},
}
