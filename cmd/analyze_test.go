package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/signalnine/runstats/internal/config"
	"github.com/signalnine/runstats/internal/result"
)

func TestFilterMetrics(t *testing.T) {
	metrics := []string{"Physics Time (ms)", "Main Thread Time (ms)", "Wall Time (ms)"}

	tests := []struct {
		name   string
		wanted []string
		want   []string
	}{
		{"empty filter returns all", nil, metrics},
		{"subset keeps config order", []string{"Wall Time (ms)", "Physics Time (ms)"}, []string{"Physics Time (ms)", "Wall Time (ms)"}},
		{"unconfigured metric appended", []string{"Reward", "Wall Time (ms)"}, []string{"Wall Time (ms)", "Reward"}},
		{"duplicates collapsed", []string{"Reward", "Reward"}, []string{"Reward"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterMetrics(metrics, tt.wanted)
			if !slices.Equal(got, tt.want) {
				t.Errorf("filterMetrics(%v) = %v, want %v", tt.wanted, got, tt.want)
			}
		})
	}
}

func TestApplyAnalyzeFlagsBaseline(t *testing.T) {
	t.Cleanup(func() { flagBaseline = "" })
	cfg := config.Default()

	flagBaseline = "0.0001"
	if err := applyAnalyzeFlags(cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Baseline != "0.0001" {
		t.Errorf("baseline: got %q", cfg.Baseline)
	}

	flagBaseline = "0.5"
	if err := applyAnalyzeFlags(cfg); err == nil {
		t.Error("expected error for unknown baseline")
	}
}

// writeExperiment lays out two labels with two runs each and a config
// pointing at them. It returns the config path and the output dir.
func writeExperiment(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	var runs []string
	for i, label := range []string{"0.001", "0.001", "0.0001", "0.0001"} {
		var b strings.Builder
		b.WriteString("Physics Time (ms),Wall Time (ms),Blue Cumulative Reward\n")
		shift := 0.0
		if label == "0.0001" {
			shift = 5
		}
		for r := range 12 {
			fmt.Fprintf(&b, "%g,%g,%d\n", shift+float64(r%5)+float64(i)/10, 1000+shift*50+float64(r*3), r)
		}
		path := filepath.Join(dir, fmt.Sprintf("run%d.csv", i+1))
		if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
			t.Fatal(err)
		}
		runs = append(runs, fmt.Sprintf("  - {file: %q, label: %q}", path, label))
	}
	out := filepath.Join(dir, "results")
	cfg := fmt.Sprintf(`condition: Learning Rate
runs:
%s
metrics: [Physics Time (ms), Main Thread Time (ms), Wall Time (ms)]
exclude: [Blue Cumulative Reward]
output: {dir: %q, workers: 2, width_in: 5, dpi: 40}
`, strings.Join(runs, "\n"), out)
	cfgPath := filepath.Join(dir, "runstats.yaml")
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfgPath, out
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	root := NewRootCmd()
	root.SetArgs(args)
	return root.Execute()
}

func TestAnalyzeCommand(t *testing.T) {
	t.Cleanup(func() { flagNoPlots, flagMetrics = false, nil })
	cfgPath, out := writeExperiment(t)

	if err := execute(t, "analyze", "--config", cfgPath, "--no-plots"); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	runDir, err := result.ResolveRunDir(out, "")
	if err != nil {
		t.Fatal(err)
	}
	s, err := result.ReadSummary(runDir)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(s.Metrics, []string{"Physics Time (ms)", "Wall Time (ms)"}) {
		t.Errorf("metrics: got %v", s.Metrics)
	}
	if !slices.Equal(s.Skipped, []string{"Main Thread Time (ms)"}) {
		t.Errorf("skipped: got %v", s.Skipped)
	}
	if len(s.Comparisons) != 2 {
		t.Fatalf("expected 2 comparisons, got %d", len(s.Comparisons))
	}
	for _, g := range s.Groups {
		for _, c := range g.Columns {
			if c.Column == "Blue Cumulative Reward" {
				t.Error("excluded column in aggregated statistics")
			}
		}
	}
	for _, name := range []string{"run1_statistics.csv", "aggregated_statistics.csv", "statistical_test_results.csv", "summary.json"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}

	if err := execute(t, "report", "--config", cfgPath, "--format", "markdown"); err != nil {
		t.Errorf("report: %v", err)
	}
}

func TestAnalyzeWithPlots(t *testing.T) {
	t.Cleanup(func() { flagNoPlots, flagMetrics = false, nil })
	cfgPath, out := writeExperiment(t)
	flagNoPlots = false

	if err := execute(t, "analyze", "--config", cfgPath, "--metric", "Physics Time (ms)"); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	runDir, _ := result.ResolveRunDir(out, "")
	for _, name := range []string{"performance_comparison_physics_time_ms.png", "violin_plots.png", "summary_stats.png"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(runDir, "performance_comparison_wall_time_ms.png")); err == nil {
		t.Error("filtered-out metric should not be plotted")
	}
}

func TestAnalyzeMissingFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "runstats.yaml")
	missing := filepath.Join(dir, "nope.csv")
	os.WriteFile(cfgPath, []byte(fmt.Sprintf("runs:\n  - {file: %q, label: a}\noutput: {dir: %q}\n", missing, dir)), 0o644)

	err := execute(t, "analyze", "--config", cfgPath, "--no-plots")
	if err == nil || !strings.Contains(err.Error(), "nope.csv") {
		t.Errorf("expected error naming the missing file, got %v", err)
	}
}

func TestValidateCommand(t *testing.T) {
	cfgPath, _ := writeExperiment(t)
	if err := execute(t, "validate", "--config", cfgPath); err != nil {
		t.Errorf("validate: %v", err)
	}
	if err := execute(t, "list", "--config", cfgPath); err != nil {
		t.Errorf("list: %v", err)
	}
}
