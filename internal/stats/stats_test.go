package stats_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/signalnine/runstats/internal/dataset"
	"github.com/signalnine/runstats/internal/stats"
)

func TestDescribe(t *testing.T) {
	s := stats.Describe([]float64{4, 1, 3, 2, math.NaN()})
	assert.Equal(t, 4, s.Count)
	assert.InDelta(t, 2.5, float64(s.Mean), 1e-12)
	assert.InDelta(t, math.Sqrt(5.0/3.0), float64(s.Std), 1e-12)
	assert.Equal(t, stats.Float(1), s.Min)
	assert.Equal(t, stats.Float(4), s.Max)
	assert.InDelta(t, 1.75, float64(s.Q1), 1e-12)
	assert.InDelta(t, 2.5, float64(s.Median), 1e-12)
	assert.InDelta(t, 3.25, float64(s.Q3), 1e-12)
}

func TestDescribeDegenerate(t *testing.T) {
	empty := stats.Describe(nil)
	assert.Equal(t, 0, empty.Count)
	assert.True(t, math.IsNaN(float64(empty.Mean)))

	single := stats.Describe([]float64{7})
	assert.Equal(t, stats.Float(7), single.Median)
	assert.True(t, math.IsNaN(float64(single.Std)), "std of one value should be NaN")
}

func TestCohensD(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical groups", []float64{1, 2, 3, 4}, []float64{1, 2, 3, 4}, 0},
		{"identical constant groups", []float64{5, 5, 5}, []float64{5, 5, 5}, 0},
		// means 2 and 4, population variances 2/3 each
		{"shifted", []float64{1, 2, 3}, []float64{3, 4, 5}, -2 / math.Sqrt(2.0/3.0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, stats.CohensD(tt.a, tt.b), 1e-12)
		})
	}

	assert.True(t, math.IsInf(stats.CohensD([]float64{1, 1}, []float64{2, 2}), -1))
	assert.True(t, math.IsNaN(stats.CohensD(nil, []float64{1})))
}

func TestWelchT(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	b := []float64{2, 4, 6, 8, 10}
	r := stats.WelchT(a, b)
	require.True(t, r.Valid(), r.Note)
	// t = (3 - 6) / sqrt(2.5/5 + 10/5)
	assert.InDelta(t, -3/math.Sqrt(2.5), float64(r.Statistic), 1e-9)
	assert.Greater(t, float64(r.P), 0.0)
	assert.Less(t, float64(r.P), 0.2)
}

func TestTTestZeroVariance(t *testing.T) {
	r := stats.WelchT([]float64{1, 1, 1}, []float64{1, 1, 1})
	assert.False(t, r.Valid())
	assert.NotEmpty(t, r.Note)

	r = stats.StudentT([]float64{1}, []float64{2, 3})
	assert.False(t, r.Valid())
}

func TestMannWhitney(t *testing.T) {
	a := []float64{10, 11, 12}
	b := []float64{1, 2, 3}
	r := stats.MannWhitney(a, b)
	require.True(t, r.Valid(), r.Note)
	assert.Equal(t, stats.Float(9), r.Statistic, "every pair has a > b")
	assert.InDelta(t, 0.1, float64(r.P), 1e-9)

	eq := stats.MannWhitney([]float64{4, 4}, []float64{4, 4, 4})
	assert.Equal(t, stats.Float(3), eq.Statistic)
	assert.Equal(t, stats.Float(1), eq.P)
}

func TestShapiroWilk(t *testing.T) {
	linear := make([]float64, 20)
	for i := range linear {
		linear[i] = float64(i)
	}
	r := stats.ShapiroWilk(linear)
	require.True(t, r.Valid(), r.Note)
	assert.InDelta(t, 0.9604, float64(r.Statistic), 1e-3)
	assert.Greater(t, float64(r.P), 0.05)

	// Reference sample with W = 0.7888, p = 0.0067.
	skewed := []float64{148, 154, 158, 160, 161, 162, 166, 170, 182, 195, 236}
	r = stats.ShapiroWilk(skewed)
	assert.InDelta(t, 0.7888, float64(r.Statistic), 1e-3)
	assert.InDelta(t, 0.0067, float64(r.P), 5e-4)

	r = stats.ShapiroWilk([]float64{1, 2, 3})
	assert.InDelta(t, 1.0, float64(r.Statistic), 1e-9)
	assert.InDelta(t, 1.0, float64(r.P), 1e-9)

	assert.Equal(t, stats.ErrShapiroSize.Error(), stats.ShapiroWilk([]float64{1, 2}).Note)
	assert.Equal(t, stats.ErrShapiroRange.Error(), stats.ShapiroWilk([]float64{3, 3, 3, 3}).Note)
}

func TestCorrelationMatrix(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := []float64{2, 4, 6, 8}
	z := []float64{4, 3, 2, 1}
	c := []float64{5, 5, 5, 5}
	m := stats.CorrelationMatrix([][]float64{x, y, z, c})
	assert.InDelta(t, 1.0, m[0][1], 1e-12)
	assert.InDelta(t, -1.0, m[0][2], 1e-12)
	assert.Equal(t, m[1][2], m[2][1])
	assert.Equal(t, 1.0, m[0][0])
	assert.True(t, math.IsNaN(m[0][3]))
	assert.True(t, math.IsNaN(m[3][3]))
}

func TestFloatJSON(t *testing.T) {
	in := []stats.Float{1.5, stats.Float(math.NaN()), stats.Float(math.Inf(1)), stats.Float(math.Inf(-1))}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `[1.5, null, "+Inf", "-Inf"]`, string(data))

	var out []stats.Float
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, stats.Float(1.5), out[0])
	assert.True(t, math.IsNaN(float64(out[1])))
	assert.True(t, math.IsInf(float64(out[2]), 1))
	assert.True(t, math.IsInf(float64(out[3]), -1))
}

func table(t *testing.T) *dataset.Table {
	t.Helper()
	mk := func(label string, rows ...[]float64) *dataset.Run {
		return &dataset.Run{Label: label, Columns: []string{"Physics Time (ms)", "Wall Time (ms)"}, Rows: rows}
	}
	return dataset.Concat("Learning Rate", []*dataset.Run{
		mk("0.001", []float64{1, 100}, []float64{2, 110}, []float64{3, 120}, []float64{4, 130}),
		mk("0.0001", []float64{5, 200}, []float64{6, 210}, []float64{7, 220}, []float64{8, 240}),
	})
}

func TestCompareSkipsMissingMetric(t *testing.T) {
	results := stats.Compare(table(t), stats.CompareOpts{
		Metrics:  []string{"Physics Time (ms)", "Main Thread Time (ms)", "Wall Time (ms)"},
		Baseline: "0.001",
		Alpha:    0.05,
		Logger:   zap.NewNop(),
	})
	require.Len(t, results, 2)
	for _, r := range results {
		assert.NotEqual(t, "Main Thread Time (ms)", r.Metric)
		assert.Equal(t, "0.001", r.GroupA)
		assert.Equal(t, "0.0001", r.GroupB)
	}
	assert.Equal(t, "Physics Time (ms)", results[0].Metric)
	assert.Equal(t, 4, results[0].StatsA.Count)
	assert.Equal(t, stats.Float(0), results[0].MannWhitney.Statistic)
	assert.Less(t, float64(results[0].CohensD), 0.0)
}

func TestCompareSelectsTest(t *testing.T) {
	normalA := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	normalB := []float64{3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	c := stats.CompareGroups(normalA, normalB, 0.05)
	assert.Equal(t, stats.TestStudent, c.Selected.Name)

	skewed := []float64{1, 2, 4, 8, 16, 32, 64, 128, 256, 512, 1024, 2048}
	c = stats.CompareGroups(skewed, normalB, 0.05)
	assert.Equal(t, stats.TestMannWhitney, c.Selected.Name)
	assert.Equal(t, c.MannWhitney, c.Selected)
}

func TestCompareSingleLabel(t *testing.T) {
	run := &dataset.Run{Label: "only", Columns: []string{"x"}, Rows: [][]float64{{1}, {2}}}
	tbl := dataset.Concat("cond", []*dataset.Run{run})
	assert.Empty(t, stats.Compare(tbl, stats.CompareOpts{Metrics: []string{"x"}, Baseline: "only", Alpha: 0.05}))
}

func TestDescribeGroups(t *testing.T) {
	groups := stats.DescribeGroups(table(t))
	require.Len(t, groups, 2)
	assert.Equal(t, "0.001", groups[0].Label)
	require.Len(t, groups[0].Columns, 2)
	assert.Equal(t, "Wall Time (ms)", groups[0].Columns[1].Column)
	assert.InDelta(t, 115.0, float64(groups[0].Columns[1].Mean), 1e-12)
	assert.InDelta(t, 6.5, float64(groups[1].Columns[0].Mean), 1e-12)
}
