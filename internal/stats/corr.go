package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// CorrelationMatrix returns the Pearson correlation between every pair
// of columns. Each pair uses only the rows where both values are
// present. Pairs with fewer than two such rows, or with a constant
// column, are NaN.
func CorrelationMatrix(cols [][]float64) [][]float64 {
	k := len(cols)
	out := make([][]float64, k)
	for i := range out {
		out[i] = make([]float64, k)
	}
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			r := pairwiseCorrelation(cols[i], cols[j])
			if i == j && !math.IsNaN(r) {
				r = 1
			}
			out[i][j], out[j][i] = r, r
		}
	}
	return out
}

func pairwiseCorrelation(x, y []float64) float64 {
	n := min(len(x), len(y))
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}
