package stats

import (
	"errors"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat/distuv"
)

var (
	ErrShapiroSize  = errors.New("shapiro-wilk needs at least 3 values")
	ErrShapiroRange = errors.New("shapiro-wilk sample has zero range")
)

// Polynomial coefficients from Royston (1995), algorithm AS R94.
var (
	swC1 = []float64{0, 0.221157, -0.147981, -2.071190, 4.434685, -2.706056}
	swC2 = []float64{0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	swC3 = []float64{0.544, -0.39978, 0.025054, -6.714e-4}
	swC4 = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	swC5 = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	swC6 = []float64{-0.4803, -0.082676, 0.0030302}
	swG  = []float64{-2.273, 0.459}
)

// ShapiroWilk tests xs for normality. NaN values are ignored. The
// p-value approximation is accurate for 3 <= n <= 5000; larger samples
// are still computed but flagged in Note.
func ShapiroWilk(xs []float64) TestResult {
	x := dropNaN(xs)
	w, p, err := shapiroWilk(x)
	if err != nil {
		return undefined(TestShapiro, err)
	}
	r := TestResult{Name: TestShapiro, Statistic: Float(w), P: Float(p)}
	if len(x) > 5000 {
		r.Note = "p-value may be inaccurate for n > 5000"
	}
	return r
}

func shapiroWilk(x []float64) (w, p float64, err error) {
	n := len(x)
	if n < 3 {
		return math.NaN(), math.NaN(), ErrShapiroSize
	}
	x = slices.Clone(x)
	slices.Sort(x)
	if x[n-1]-x[0] < 1e-19 {
		return math.NaN(), math.NaN(), ErrShapiroRange
	}

	a := swCoefficients(n)

	var num float64
	for i := range a {
		num += a[i] * (x[n-1-i] - x[i])
	}
	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= float64(n)
	var ss float64
	for _, v := range x {
		ss += (v - mean) * (v - mean)
	}
	w = num * num / ss
	if w > 1 {
		w = 1
	}

	if n == 3 {
		// Exact distribution for n = 3.
		p = 6 / math.Pi * (math.Asin(math.Sqrt(w)) - math.Pi/3)
		return w, math.Max(p, 0), nil
	}

	an := float64(n)
	w1 := math.Log(1 - w)
	var m, s float64
	if n <= 11 {
		gamma := swPoly(swG, an)
		if w1 >= gamma {
			return w, 1e-99, nil
		}
		w1 = -math.Log(gamma - w1)
		m = swPoly(swC3, an)
		s = math.Exp(swPoly(swC4, an))
	} else {
		lx := math.Log(an)
		m = swPoly(swC5, lx)
		s = math.Exp(swPoly(swC6, lx))
	}
	p = distuv.Normal{Mu: m, Sigma: s}.Survival(w1)
	return w, p, nil
}

// swCoefficients returns the first n/2 antisymmetric weights a_i, paired
// with (x[n-1-i] - x[i]) in the W numerator.
func swCoefficients(n int) []float64 {
	nn2 := n / 2
	a := make([]float64, nn2)
	if n == 3 {
		a[0] = math.Sqrt(0.5)
		return a
	}
	an := float64(n)
	an25 := an + 0.25
	m := make([]float64, nn2)
	var summ2 float64
	for i := range m {
		m[i] = distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / an25)
		summ2 += m[i] * m[i]
	}
	summ2 *= 2
	ssumm2 := math.Sqrt(summ2)
	rsn := 1 / math.Sqrt(an)
	a1 := swPoly(swC1, rsn) - m[0]/ssumm2

	var i1 int
	var fac float64
	if n > 5 {
		i1 = 2
		a2 := -m[1]/ssumm2 + swPoly(swC2, rsn)
		fac = math.Sqrt((summ2 - 2*m[0]*m[0] - 2*m[1]*m[1]) /
			(1 - 2*a1*a1 - 2*a2*a2))
		a[1] = a2
	} else {
		i1 = 1
		fac = math.Sqrt((summ2 - 2*m[0]*m[0]) / (1 - 2*a1*a1))
	}
	a[0] = a1
	for i := i1; i < nn2; i++ {
		a[i] = -m[i] / fac
	}
	return a
}

// swPoly evaluates c[0] + c[1]x + c[2]x^2 + ...
func swPoly(c []float64, x float64) float64 {
	res := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		res = res*x + c[i]
	}
	return res
}
