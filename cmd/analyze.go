package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/signalnine/runstats/internal/config"
	"github.com/signalnine/runstats/internal/dataset"
	"github.com/signalnine/runstats/internal/plots"
	"github.com/signalnine/runstats/internal/report"
	"github.com/signalnine/runstats/internal/result"
	"github.com/signalnine/runstats/internal/runner"
	"github.com/signalnine/runstats/internal/stats"
)

var (
	flagMetrics  []string
	flagBaseline string
	flagNoPlots  bool
	flagWorkers  int
	flagWatch    bool
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compare metrics across condition labels",
		Long:  "Load every configured run, write per-file and aggregated statistics, test each metric between the baseline and every other label, render plots and print a report.",
		RunE:  runAnalyze,
	}
	cmd.Flags().StringSliceVar(&flagMetrics, "metric", nil, "restrict analysis to these metrics (repeatable)")
	cmd.Flags().StringVar(&flagBaseline, "baseline", "", "condition label to compare the others against")
	cmd.Flags().BoolVar(&flagNoPlots, "no-plots", false, "skip plot rendering")
	cmd.Flags().IntVar(&flagWorkers, "workers", 0, "override concurrent plot renderers")
	cmd.Flags().BoolVar(&flagWatch, "watch", false, "re-run whenever an input file changes")
	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyAnalyzeFlags(cfg); err != nil {
		return err
	}
	if !flagWatch {
		_, err := analyze(cfg, os.Stdout)
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	rerun := func() {
		if _, err := analyze(cfg, os.Stdout); err != nil {
			logger.Error("analysis failed", zap.Error(err))
		}
	}
	rerun()
	files := lo.Map(cfg.Runs, func(r config.Run, _ int) string { return r.File })
	logger.Info("watching inputs for changes", zap.Strings("files", files))
	return dataset.Watch(ctx, files, 500*time.Millisecond, logger, rerun)
}

func applyAnalyzeFlags(cfg *config.Config) error {
	cfg.Metrics = filterMetrics(cfg.Metrics, flagMetrics)
	if flagBaseline != "" {
		if !slices.Contains(cfg.Labels(), flagBaseline) {
			return fmt.Errorf("baseline %q does not match any run label", flagBaseline)
		}
		cfg.Baseline = flagBaseline
	}
	if flagWorkers > 0 {
		cfg.Output.Workers = flagWorkers
	}
	if flagNoPlots {
		off := false
		cfg.Output.Plots = &off
	}
	return nil
}

// filterMetrics keeps the configured metrics named in wanted, in config
// order, followed by wanted metrics the config does not list.
func filterMetrics(metrics, wanted []string) []string {
	if len(wanted) == 0 {
		return metrics
	}
	var filtered []string
	for _, m := range metrics {
		if slices.Contains(wanted, m) {
			filtered = append(filtered, m)
		}
	}
	for _, m := range lo.Uniq(wanted) {
		if !slices.Contains(filtered, m) {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

// analyze runs the full pipeline into a fresh run directory and returns
// its path.
func analyze(cfg *config.Config, w io.Writer) (string, error) {
	table, runs, err := dataset.LoadAll(cfg.Condition, cfg.Runs, logger)
	if err != nil {
		return "", err
	}
	table.Drop(cfg.Exclude...)

	runDir, err := result.CreateRunDir(cfg.Output.Dir)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(w, "Run directory: %s\n", runDir)

	files, groups, err := writeStatistics(runDir, cfg.Condition, table, runs)
	if err != nil {
		return runDir, err
	}

	metrics, skipped := table.Present(cfg.Metrics)
	comparisons := stats.Compare(table, stats.CompareOpts{
		Metrics:  cfg.Metrics,
		Baseline: cfg.Baseline,
		Alpha:    cfg.Alpha,
		Logger:   logger,
	})
	path, err := report.WriteTestResults(runDir, comparisons)
	if err != nil {
		return runDir, err
	}
	files = append(files, filepath.Base(path))

	if cfg.Output.PlotsEnabled() {
		files = append(files, renderPlots(cfg, table, metrics, comparisons, runDir)...)
	}

	summary := &result.Summary{
		CreatedAt: time.Now().UTC(),
		Condition: cfg.Condition,
		Baseline:  cfg.Baseline,
		Alpha:     cfg.Alpha,
		Runs: lo.Map(runs, func(r *dataset.Run, _ int) result.RunInfo {
			return result.RunInfo{File: r.Path, Label: r.Label, Rows: r.Len()}
		}),
		Metrics:     metrics,
		Skipped:     skipped,
		Groups:      groups,
		Comparisons: comparisons,
		Files:       files,
	}
	if err := result.WriteSummary(runDir, summary); err != nil {
		return runDir, err
	}

	fmt.Fprintln(w, "\n--- Results ---")
	if err := report.Write(summary, "table", w); err != nil {
		return runDir, err
	}
	report.WriteDetails(comparisons, w)
	return runDir, nil
}

// writeStatistics writes the per-file and per-condition summaries and
// returns the file names it created.
func writeStatistics(runDir, condition string, table *dataset.Table, runs []*dataset.Run) ([]string, []stats.GroupSummary, error) {
	var files []string
	for _, r := range runs {
		path, err := report.WriteRunStatistics(runDir, condition, r)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("wrote run statistics", zap.String("path", path))
		files = append(files, filepath.Base(path))
	}
	groups := stats.DescribeGroups(table)
	path, err := report.WriteAggregated(runDir, condition, groups)
	if err != nil {
		return nil, nil, err
	}
	return append(files, filepath.Base(path)), groups, nil
}

// renderPlots renders every plot through the worker pool. Failed plots
// are logged; the names of the images that were written are returned.
func renderPlots(cfg *config.Config, table *dataset.Table, metrics []string, comparisons []stats.Comparison, runDir string) []string {
	if len(metrics) == 0 {
		logger.Warn("no configured metric is present in the data; skipping plots")
		return nil
	}
	in := plots.Input{
		Table:       table,
		Metrics:     metrics,
		Labels:      table.GroupLabels(),
		Comparisons: comparisons,
	}
	jobs := plots.Jobs(in, plots.Options{
		Dir:     runDir,
		WidthIn: cfg.Output.WidthIn,
		DPI:     cfg.Output.DPI,
		Logger:  logger,
	})
	start := time.Now()
	for _, err := range runner.RunPool(cfg.Output.Workers, jobs) {
		logger.Warn("plot failed", zap.Error(err))
	}
	written := lo.Filter(plots.Files(in), func(name string, _ int) bool {
		_, err := os.Stat(filepath.Join(runDir, name))
		return err == nil
	})
	logger.Info("rendered plots",
		zap.Int("written", len(written)),
		zap.Int("jobs", len(jobs)),
		zap.Duration("took", time.Since(start)))
	return written
}
