package stats

import (
	"errors"
	"math"

	moremath "github.com/aclements/go-moremath/stats"
)

const (
	TestWelch       = "Welch t-test"
	TestStudent     = "T-test"
	TestMannWhitney = "Mann-Whitney U"
	TestShapiro     = "Shapiro-Wilk"
)

// TestResult is a statistic and two-sided p-value. When the test cannot
// be computed both are NaN and Note says why.
type TestResult struct {
	Name      string `json:"name"`
	Statistic Float  `json:"statistic"`
	P         Float  `json:"p"`
	DoF       Float  `json:"dof,omitempty"`
	Note      string `json:"note,omitempty"`
}

// Valid reports whether the test produced a p-value.
func (r TestResult) Valid() bool {
	return !math.IsNaN(float64(r.P))
}

func undefined(name string, err error) TestResult {
	nan := Float(math.NaN())
	return TestResult{Name: name, Statistic: nan, P: nan, Note: err.Error()}
}

// WelchT runs a two-sided two-sample t-test without assuming equal
// variances.
func WelchT(a, b []float64) TestResult {
	r, err := moremath.TwoSampleWelchTTest(moremath.Sample{Xs: a}, moremath.Sample{Xs: b}, moremath.LocationDiffers)
	if err != nil {
		return undefined(TestWelch, err)
	}
	return TestResult{Name: TestWelch, Statistic: Float(r.T), P: Float(r.P), DoF: Float(r.DoF)}
}

// StudentT runs a two-sided two-sample t-test with pooled variance.
func StudentT(a, b []float64) TestResult {
	if len(a) < 2 || len(b) < 2 {
		return undefined(TestStudent, moremath.ErrSampleSize)
	}
	r, err := moremath.TwoSampleTTest(moremath.Sample{Xs: a}, moremath.Sample{Xs: b}, moremath.LocationDiffers)
	if err != nil {
		return undefined(TestStudent, err)
	}
	return TestResult{Name: TestStudent, Statistic: Float(r.T), P: Float(r.P), DoF: Float(r.DoF)}
}

// MannWhitney runs a two-sided Mann-Whitney U test. The statistic is U
// for a: the number of pairs with a > b, ties counted as one half. When
// every value in both samples is equal the test is degenerate and U is
// n1*n2/2 with p = 1.
func MannWhitney(a, b []float64) TestResult {
	r, err := moremath.MannWhitneyUTest(a, b, moremath.LocationDiffers)
	if errors.Is(err, moremath.ErrSamplesEqual) {
		return TestResult{
			Name:      TestMannWhitney,
			Statistic: Float(float64(len(a)*len(b)) / 2),
			P:         1,
			Note:      err.Error(),
		}
	}
	if err != nil {
		return undefined(TestMannWhitney, err)
	}
	return TestResult{Name: TestMannWhitney, Statistic: Float(r.U), P: Float(r.P)}
}
