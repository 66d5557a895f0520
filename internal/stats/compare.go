package stats

import (
	"math"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/signalnine/runstats/internal/dataset"
)

// Comparison holds every test run for one metric between two condition
// groups.
type Comparison struct {
	Metric      string     `json:"metric"`
	GroupA      string     `json:"group_a"`
	GroupB      string     `json:"group_b"`
	StatsA      Summary    `json:"stats_a"`
	StatsB      Summary    `json:"stats_b"`
	Welch       TestResult `json:"welch_t"`
	MannWhitney TestResult `json:"mann_whitney_u"`
	ShapiroA    TestResult `json:"shapiro_a"`
	ShapiroB    TestResult `json:"shapiro_b"`
	// Selected is a pooled t-test when both groups pass the normality
	// check at Alpha, otherwise the Mann-Whitney U result.
	Selected TestResult `json:"selected"`
	CohensD  Float      `json:"cohens_d"`
}

// Significant reports whether the selected test rejects at alpha.
func (c Comparison) Significant(alpha float64) bool {
	return c.Selected.Valid() && float64(c.Selected.P) < alpha
}

type CompareOpts struct {
	Metrics  []string
	Baseline string
	Alpha    float64
	Logger   *zap.Logger
}

// Compare tests the baseline group against every other condition label
// for each metric. Metrics absent from the table are skipped with a
// notice and produce no Comparison.
func Compare(t *dataset.Table, opts CompareOpts) []Comparison {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics, missing := t.Present(opts.Metrics)
	for _, m := range missing {
		logger.Info("Metric '" + m + "' not found in data")
	}

	others := lo.Without(t.GroupLabels(), opts.Baseline)
	if len(others) == 0 {
		logger.Warn("nothing to compare: only one condition label", zap.String("label", opts.Baseline))
		return nil
	}

	var out []Comparison
	for _, other := range others {
		for _, m := range metrics {
			a := t.Group(opts.Baseline, m)
			b := t.Group(other, m)
			c := CompareGroups(a, b, opts.Alpha)
			c.Metric, c.GroupA, c.GroupB = m, opts.Baseline, other
			for _, r := range []TestResult{c.Welch, c.MannWhitney, c.Selected} {
				if r.Note != "" {
					logger.Debug("degenerate test",
						zap.String("metric", m),
						zap.String("test", r.Name),
						zap.String("note", r.Note))
				}
			}
			out = append(out, c)
		}
	}
	return out
}

// CompareGroups runs the full battery on two samples. Metric and group
// names are left for the caller to fill in.
func CompareGroups(a, b []float64, alpha float64) Comparison {
	c := Comparison{
		StatsA:      Describe(a),
		StatsB:      Describe(b),
		Welch:       WelchT(a, b),
		MannWhitney: MannWhitney(a, b),
		ShapiroA:    ShapiroWilk(a),
		ShapiroB:    ShapiroWilk(b),
		CohensD:     Float(CohensD(a, b)),
	}
	if normal(c.ShapiroA, alpha) && normal(c.ShapiroB, alpha) {
		c.Selected = StudentT(a, b)
	} else {
		c.Selected = c.MannWhitney
	}
	return c
}

func normal(r TestResult, alpha float64) bool {
	return r.Valid() && float64(r.P) > alpha && !math.IsNaN(float64(r.Statistic))
}

// DescribeGroups summarises every table column per condition label.
func DescribeGroups(t *dataset.Table) []GroupSummary {
	return lo.Map(t.GroupLabels(), func(label string, _ int) GroupSummary {
		return GroupSummary{
			Label: label,
			Columns: DescribeColumns(t.Columns, func(col string) []float64 {
				return t.Group(label, col)
			}),
		}
	})
}
