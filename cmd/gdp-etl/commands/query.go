package commands

import (
	"fmt"
	"gdp-etl/internal/pipeline"

	"github.com/spf13/cobra"
)

var queryFlags overrides

func init() {
	queryFlags.register(queryCmd.Flags(), false)
	rootCmd.AddCommand(queryCmd)
}

var queryCmd = &cobra.Command{
	Use:   "query [--db <path>] [--table <relation>] [--threshold <billions>]",
	Short: "Queries a database written by a previous run.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Flags(), &queryFlags)
		if err != nil {
			return err
		}

		_, err = pipeline.RunQuery(cmd.Context(), cfg, pipeline.Deps{
			Out: cmd.OutOrStdout(),
		})
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
		return nil
	},
}
