package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signalnine/runstats/internal/dataset"
	"github.com/signalnine/runstats/internal/result"
)

func newSummarizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize",
		Short: "Write per-file and per-condition descriptive statistics only",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			table, runs, err := dataset.LoadAll(cfg.Condition, cfg.Runs, logger)
			if err != nil {
				return err
			}
			table.Drop(cfg.Exclude...)

			runDir, err := result.CreateRunDir(cfg.Output.Dir)
			if err != nil {
				return err
			}
			files, _, err := writeStatistics(runDir, cfg.Condition, table, runs)
			if err != nil {
				return err
			}
			fmt.Printf("Run directory: %s\n", runDir)
			for _, f := range files {
				fmt.Printf("  %s\n", f)
			}
			return nil
		},
	}
}
