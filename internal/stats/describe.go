package stats

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Float is a float64 that survives JSON round trips when it holds NaN
// or an infinity. NaN is encoded as null and infinities as strings.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte("null"), nil
	case math.IsInf(v, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

func (f *Float) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "null":
		*f = Float(math.NaN())
		return nil
	case `"+Inf"`:
		*f = Float(math.Inf(1))
		return nil
	case `"-Inf"`:
		*f = Float(math.Inf(-1))
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// Summary is the usual describe() row set for one column.
type Summary struct {
	Count  int   `json:"count"`
	Mean   Float `json:"mean"`
	Std    Float `json:"std"`
	Min    Float `json:"min"`
	Q1     Float `json:"q1"`
	Median Float `json:"median"`
	Q3     Float `json:"q3"`
	Max    Float `json:"max"`
}

// Describe summarises xs. NaN values are ignored. Std uses the n-1
// denominator and is NaN for fewer than two values.
func Describe(xs []float64) Summary {
	clean := dropNaN(xs)
	s := Summary{Count: len(clean)}
	if len(clean) == 0 {
		nan := Float(math.NaN())
		s.Mean, s.Std, s.Min, s.Q1, s.Median, s.Q3, s.Max = nan, nan, nan, nan, nan, nan, nan
		return s
	}
	sorted := slices.Clone(clean)
	slices.Sort(sorted)

	s.Mean = Float(stat.Mean(sorted, nil))
	if len(sorted) > 1 {
		s.Std = Float(stat.StdDev(sorted, nil))
	} else {
		s.Std = Float(math.NaN())
	}
	s.Min = Float(floats.Min(sorted))
	s.Max = Float(floats.Max(sorted))
	s.Q1 = Float(quantile(sorted, 0.25))
	s.Median = Float(quantile(sorted, 0.5))
	s.Q3 = Float(quantile(sorted, 0.75))
	return s
}

// quantile interpolates linearly between order statistics (Hyndman and
// Fan type 7). sorted must be ascending and non-empty.
func quantile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

func dropNaN(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}

// ColumnSummary names the column a Summary belongs to.
type ColumnSummary struct {
	Column string `json:"column"`
	Summary
}

// GroupSummary holds per-column summaries for one condition label.
type GroupSummary struct {
	Label   string          `json:"label"`
	Columns []ColumnSummary `json:"columns"`
}

// DescribeColumns summarises each column returned by get, in order.
func DescribeColumns(cols []string, get func(col string) []float64) []ColumnSummary {
	out := make([]ColumnSummary, 0, len(cols))
	for _, c := range cols {
		out = append(out, ColumnSummary{Column: c, Summary: Describe(get(c))})
	}
	return out
}
