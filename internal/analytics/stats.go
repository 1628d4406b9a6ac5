package analytics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// epsilon below which a dispersion measure is treated as zero. Constant
// series do not always produce an exact 0 because the mean is rounded.
const epsilon = 1e-12

// DefaultRiskFreeRate is the annual risk-free rate used unless configured.
const DefaultRiskFreeRate = 0.02

func mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(x, nil)
}

// sampleStdDev is the Bessel-corrected standard deviation, 0 for fewer than
// two observations.
func sampleStdDev(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	sd := stat.StdDev(x, nil)
	if sd < epsilon || math.IsNaN(sd) {
		return 0
	}
	return sd
}

// sampleCovariance uses the same n-1 divisor as sampleStdDev.
func sampleCovariance(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0
	}
	return stat.Covariance(x, y, nil)
}

func sum(x []float64) float64 {
	var s float64
	for _, v := range x {
		s += v
	}
	return s
}

func sortedCopy(x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	sort.Float64s(out)
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// growth compounds periodic returns into a terminal multiple of the start.
func growth(returns []float64) float64 {
	g := 1.0
	for _, r := range returns {
		g *= 1 + r
	}
	return g
}

// equityCurve turns periodic returns into a value path starting at 1.0.
func equityCurve(returns []float64) []float64 {
	curve := make([]float64, 0, len(returns)+1)
	v := 1.0
	curve = append(curve, v)
	for _, r := range returns {
		v *= 1 + r
		curve = append(curve, v)
	}
	return curve
}

// SimpleReturns converts a price or value path into period-over-period returns.
func SimpleReturns(values []float64) []float64 {
	if len(values) < 2 {
		return []float64{}
	}
	out := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] != 0 {
			out[i-1] = (values[i] - values[i-1]) / values[i-1]
		}
	}
	return out
}
