package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/signalnine/runstats/internal/dataset"
	"github.com/signalnine/runstats/internal/result"
	"github.com/signalnine/runstats/internal/stats"
)

func newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render comparison plots into a new run directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := applyAnalyzeFlags(cfg); err != nil {
				return err
			}
			table, _, err := dataset.LoadAll(cfg.Condition, cfg.Runs, logger)
			if err != nil {
				return err
			}
			table.Drop(cfg.Exclude...)

			// Titles carry test results, so the comparison is recomputed
			// without writing it out.
			metrics, _ := table.Present(cfg.Metrics)
			comparisons := stats.Compare(table, stats.CompareOpts{
				Metrics:  metrics,
				Baseline: cfg.Baseline,
				Alpha:    cfg.Alpha,
				Logger:   zap.NewNop(),
			})

			runDir, err := result.CreateRunDir(cfg.Output.Dir)
			if err != nil {
				return err
			}
			fmt.Printf("Run directory: %s\n", runDir)
			written := renderPlots(cfg, table, metrics, comparisons, runDir)
			for _, f := range written {
				fmt.Printf("  %s\n", f)
			}
			if len(written) == 0 {
				return fmt.Errorf("no plots were written")
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&flagMetrics, "metric", nil, "restrict plots to these metrics (repeatable)")
	cmd.Flags().StringVar(&flagBaseline, "baseline", "", "condition label shown in test annotations")
	cmd.Flags().IntVar(&flagWorkers, "workers", 0, "override concurrent plot renderers")
	return cmd
}
