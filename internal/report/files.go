package report

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/signalnine/runstats/internal/dataset"
	"github.com/signalnine/runstats/internal/stats"
)

const (
	AggregatedFile  = "aggregated_statistics.csv"
	TestResultsFile = "statistical_test_results.csv"
)

var testResultsHeader = []string{
	"Metric",
	"T-test Statistic",
	"T-test P-value",
	"Mann-Whitney U Statistic",
	"Mann-Whitney U P-value",
	"Group A",
	"Group B",
	"Shapiro A P-value",
	"Shapiro B P-value",
	"Selected Test",
	"Selected P-value",
	"Cohen's d",
}

// RunStatisticsFile names the per-input statistics file: the input's
// base name without extension plus "_statistics.csv".
func RunStatisticsFile(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_statistics.csv"
}

// WriteRunStatistics writes mean and std rows for every numeric column
// of run into dir and returns the file path. A numeric condition label
// is summarised as a trailing column named condition; other labels are
// left out, as they are not numeric data.
func WriteRunStatistics(dir, condition string, run *dataset.Run) (string, error) {
	columns := run.Columns
	get := run.Column
	v, err := strconv.ParseFloat(run.Label, 64)
	if err == nil && condition != "" && !slices.Contains(columns, condition) {
		columns = append(slices.Clone(columns), condition)
		get = func(col string) []float64 {
			if col != condition {
				return run.Column(col)
			}
			vals := make([]float64, run.Len())
			for i := range vals {
				vals[i] = v
			}
			return vals
		}
	}
	cols := stats.DescribeColumns(columns, get)
	header := append([]string{""}, columns...)
	mean := []string{"mean"}
	std := []string{"std"}
	for _, c := range cols {
		mean = append(mean, formatFloat(c.Mean))
		std = append(std, formatFloat(c.Std))
	}
	path := filepath.Join(dir, RunStatisticsFile(run.Path))
	return path, writeCSV(path, [][]string{header, mean, std})
}

// WriteAggregated writes one row per condition label with the mean and
// std of every column.
func WriteAggregated(dir, condition string, groups []stats.GroupSummary) (string, error) {
	path := filepath.Join(dir, AggregatedFile)
	if len(groups) == 0 {
		return path, writeCSV(path, [][]string{{condition}})
	}
	header := []string{condition}
	for _, c := range groups[0].Columns {
		header = append(header, c.Column+" mean", c.Column+" std")
	}
	records := [][]string{header}
	for _, g := range groups {
		row := []string{g.Label}
		for _, c := range g.Columns {
			row = append(row, formatFloat(c.Mean), formatFloat(c.Std))
		}
		records = append(records, row)
	}
	return path, writeCSV(path, records)
}

// WriteTestResults writes one row per comparison.
func WriteTestResults(dir string, comparisons []stats.Comparison) (string, error) {
	path := filepath.Join(dir, TestResultsFile)
	return path, writeCSV(path, testResultRecords(comparisons))
}

func testResultRecords(comparisons []stats.Comparison) [][]string {
	records := [][]string{testResultsHeader}
	for _, c := range comparisons {
		records = append(records, []string{
			c.Metric,
			formatFloat(c.Welch.Statistic),
			formatFloat(c.Welch.P),
			formatFloat(c.MannWhitney.Statistic),
			formatFloat(c.MannWhitney.P),
			c.GroupA,
			c.GroupB,
			formatFloat(c.ShapiroA.P),
			formatFloat(c.ShapiroB.P),
			c.Selected.Name,
			formatFloat(c.Selected.P),
			formatFloat(c.CohensD),
		})
	}
	return records
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// formatFloat leaves NaN cells empty.
func formatFloat(v stats.Float) string {
	f := float64(v)
	switch {
	case math.IsNaN(f):
		return ""
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
