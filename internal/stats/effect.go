package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// CohensD is the standardised mean difference between a and b using an
// unweighted pooled standard deviation built from population variances:
//
//	d = (mean(a) - mean(b)) / sqrt((var(a) + var(b)) / 2)
//
// A zero mean difference yields 0 even when both groups are constant.
func CohensD(a, b []float64) float64 {
	a, b = dropNaN(a), dropNaN(b)
	if len(a) == 0 || len(b) == 0 {
		return math.NaN()
	}
	ma, va := stat.PopMeanVariance(a, nil)
	mb, vb := stat.PopMeanVariance(b, nil)
	diff := ma - mb
	if diff == 0 {
		return 0
	}
	return diff / math.Sqrt((va+vb)/2)
}
