package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/signalnine/runstats/internal/result"
	"github.com/signalnine/runstats/internal/stats"
)

// Generate reads the summary stored in runDir and renders it.
func Generate(runDir, format string, w io.Writer) error {
	s, err := result.ReadSummary(runDir)
	if err != nil {
		return err
	}
	return Write(s, format, w)
}

// Write renders s as table, markdown, json or csv.
func Write(s *result.Summary, format string, w io.Writer) error {
	switch format {
	case "markdown":
		return writeMarkdown(s, w)
	case "json":
		return writeJSON(s, w)
	case "csv":
		cw := csv.NewWriter(w)
		return cw.WriteAll(testResultRecords(s.Comparisons))
	case "table", "":
		return writeTable(s, w)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeTable(s *result.Summary, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METRIC\tA\tB\tMEAN A\tMEAN B\tWELCH P\tMWU P\tSELECTED\tP\tCOHEN'S D\t")
	fmt.Fprintln(tw, strings.Repeat("-", 100))
	for _, c := range s.Comparisons {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.3f\t%.3f\t%s\t%s\t%s\t%s%s\t%.3f\t\n",
			c.Metric, c.GroupA, c.GroupB,
			float64(c.StatsA.Mean), float64(c.StatsB.Mean),
			pval(c.Welch.P), pval(c.MannWhitney.P),
			c.Selected.Name, pval(c.Selected.P), marker(c, s.Alpha),
			float64(c.CohensD))
	}
	if len(s.Skipped) > 0 {
		fmt.Fprintf(tw, "\nskipped (not in data): %s\n", strings.Join(s.Skipped, ", "))
	}
	return tw.Flush()
}

func writeMarkdown(s *result.Summary, w io.Writer) error {
	fmt.Fprintln(w, "| Metric | A | B | Mean A | Mean B | Welch p | MWU p | Selected | p | Cohen's d |")
	fmt.Fprintln(w, "|---|---|---|---|---|---|---|---|---|---|")
	for _, c := range s.Comparisons {
		fmt.Fprintf(w, "| %s | %s | %s | %.3f | %.3f | %s | %s | %s | %s%s | %.3f |\n",
			c.Metric, c.GroupA, c.GroupB,
			float64(c.StatsA.Mean), float64(c.StatsB.Mean),
			pval(c.Welch.P), pval(c.MannWhitney.P),
			c.Selected.Name, pval(c.Selected.P), marker(c, s.Alpha),
			float64(c.CohensD))
	}
	return nil
}

func writeJSON(s *result.Summary, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteDetails prints per-group descriptive statistics followed by the
// normality checks, the selected test and the effect size for every
// comparison.
func WriteDetails(comparisons []stats.Comparison, w io.Writer) {
	fmt.Fprintln(w, "\n=== Statistical Analysis Results ===")
	for _, c := range comparisons {
		fmt.Fprintf(w, "\n%s\n\n%s:\n", strings.Repeat("-", 50), c.Metric)
		for _, g := range []struct {
			label string
			s     stats.Summary
		}{{c.GroupA, c.StatsA}, {c.GroupB, c.StatsB}} {
			fmt.Fprintf(w, "\n%s:\n", g.label)
			fmt.Fprintf(w, "Mean: %.3f\n", float64(g.s.Mean))
			fmt.Fprintf(w, "Std:  %.3f\n", float64(g.s.Std))
			fmt.Fprintf(w, "Min:  %.3f\n", float64(g.s.Min))
			fmt.Fprintf(w, "Max:  %.3f\n", float64(g.s.Max))
			fmt.Fprintf(w, "Median: %.3f\n", float64(g.s.Median))
		}
		fmt.Fprintf(w, "\nNormality Test (%s):\n", stats.TestShapiro)
		fmt.Fprintf(w, "%s p-value: %s\n", c.GroupA, pval(c.ShapiroA.P))
		fmt.Fprintf(w, "%s p-value: %s\n", c.GroupB, pval(c.ShapiroB.P))
		fmt.Fprintf(w, "\n%s p-value: %s\n", c.Selected.Name, pval(c.Selected.P))
		fmt.Fprintf(w, "Effect size (Cohen's d): %.3f\n", float64(c.CohensD))
	}
}

func pval(p stats.Float) string {
	if math.IsNaN(float64(p)) {
		return "n/a"
	}
	return fmt.Sprintf("%.2e", float64(p))
}

func marker(c stats.Comparison, alpha float64) string {
	if c.Significant(alpha) {
		return " *"
	}
	return ""
}
