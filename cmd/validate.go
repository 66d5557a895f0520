package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/signalnine/runstats/internal/dataset"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the config and that every input has the configured metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			warnings := 0
			for _, r := range cfg.Runs {
				run, err := dataset.Load(r.File, r.Label, logger)
				if err != nil {
					return fmt.Errorf("run %s: %w", r.File, err)
				}
				for _, m := range cfg.Metrics {
					if !slices.Contains(run.Columns, m) {
						fmt.Printf("warning: %s has no column %q\n", r.File, m)
						warnings++
					}
				}
			}
			fmt.Printf("config OK: %d runs, %d labels, %d metrics, %d warnings\n",
				len(cfg.Runs), len(cfg.Labels()), len(cfg.Metrics), warnings)
			return nil
		},
	}
}
