package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/outliers-cli/internal/logger"
	"gonum.org/v1/gonum/stat/distuv"
)

// ShapiroResult holds the Shapiro–Wilk W statistic and its p-value.
type ShapiroResult struct {
	W      float64
	PValue float64
}

// Royston (1995), algorithm AS R94.
var (
	swC1 = []float64{0, 0.221157, -0.147981, -2.07119, 4.434685, -2.706056}
	swC2 = []float64{0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	swC3 = []float64{0.544, -0.39978, 0.025054, -6.714e-4}
	swC4 = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	swC5 = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	swC6 = []float64{-0.4803, -0.082676, 0.0030302}
	swG  = []float64{-2.273, 0.459}
)

const swMaxN = 5000

// ShapiroWilk tests the null hypothesis that sample comes from a normal
// distribution. A sample with zero range yields W = 1, p = 1.
func ShapiroWilk(sample []float64) (ShapiroResult, error) {
	n := len(sample)
	if n < 3 {
		return ShapiroResult{}, ErrSampleTooSmall
	}
	if n > swMaxN {
		logger.Debug("shapiro-wilk: n=%d exceeds %d, p-value may be inaccurate", n, swMaxN)
	}
	x := make([]float64, n)
	copy(x, sample)
	sort.Float64s(x)
	rng := x[n-1] - x[0]
	if rng <= 0 {
		return ShapiroResult{W: 1, PValue: 1}, nil
	}

	// Scale by the range; W is location and scale invariant.
	var mean float64
	for i := range x {
		x[i] /= rng
		mean += x[i]
	}
	mean /= float64(n)
	var ssq float64
	for _, v := range x {
		d := v - mean
		ssq += d * d
	}
	a := shapiroCoefficients(n)
	var num float64
	for i, ai := range a {
		num += ai * (x[n-1-i] - x[i])
	}
	w := num * num / ssq
	if w > 1 {
		w = 1
	}
	return ShapiroResult{W: w, PValue: shapiroPValue(w, n)}, nil
}

// shapiroCoefficients returns the first n/2 weights a_i, positive, applied
// to x[n-1-i] - x[i].
func shapiroCoefficients(n int) []float64 {
	half := n / 2
	a := make([]float64, half)
	if n == 3 {
		a[0] = math.Sqrt(0.5)
		return a
	}
	an := float64(n)
	m := make([]float64, half)
	var summ2 float64
	for i := range m {
		m[i] = distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / (an + 0.25))
		summ2 += m[i] * m[i]
	}
	summ2 *= 2
	ssumm2 := math.Sqrt(summ2)
	rsn := 1 / math.Sqrt(an)
	a1 := poly(swC1, rsn) - m[0]/ssumm2

	first := 1
	var fac float64
	if n > 5 {
		first = 2
		a2 := -m[1]/ssumm2 + poly(swC2, rsn)
		fac = math.Sqrt((summ2 - 2*m[0]*m[0] - 2*m[1]*m[1]) / (1 - 2*a1*a1 - 2*a2*a2))
		a[1] = a2
	} else {
		fac = math.Sqrt((summ2 - 2*m[0]*m[0]) / (1 - 2*a1*a1))
	}
	a[0] = a1
	for i := first; i < half; i++ {
		a[i] = -m[i] / fac
	}
	return a
}

func shapiroPValue(w float64, n int) float64 {
	if n == 3 {
		p := 6 / math.Pi * (math.Asin(math.Sqrt(w)) - math.Pi/3)
		return math.Min(math.Max(p, 0), 1)
	}
	an := float64(n)
	y := math.Log(1 - w)
	var m, s float64
	if n <= 11 {
		gamma := poly(swG, an)
		if y >= gamma {
			return 1e-99
		}
		y = -math.Log(gamma - y)
		m = poly(swC3, an)
		s = math.Exp(poly(swC4, an))
	} else {
		xx := math.Log(an)
		m = poly(swC5, xx)
		s = math.Exp(poly(swC6, xx))
	}
	return distuv.UnitNormal.Survival((y - m) / s)
}

// poly evaluates cc[0] + cc[1]*x + cc[2]*x^2 + ...
func poly(cc []float64, x float64) float64 {
	var r float64
	for i := len(cc) - 1; i >= 0; i-- {
		r = r*x + cc[i]
	}
	return r
}
