package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// varTail is the lower-tail probability used for VaR and CVaR.
const varTail = 0.05

// ComputeRisk derives volatility, downside and tail statistics. At least two
// observations are required; shorter series yield an invalid result.
func ComputeRisk(returns []float64, periodsPerYear int) RiskMetrics {
	n := len(returns)
	if n < 2 {
		return RiskMetrics{Observations: n}
	}
	if periodsPerYear <= 0 {
		periodsPerYear = 1
	}

	vol := sampleStdDev(returns)
	_, var95, cvar95 := valueAtRisk(returns)
	skew, kurt, excess := moments(returns)

	return RiskMetrics{
		Valid:                true,
		Observations:         n,
		Volatility:           vol,
		AnnualizedVolatility: vol * math.Sqrt(float64(periodsPerYear)),
		DownsideDeviation:    downsideDeviation(returns, mean(returns)),
		DownsideRisk:         downsideDeviation(returns, 0),
		VaR95:                var95,
		CVaR95:               cvar95,
		MaxDrawdown:          ComputeDrawdown(equityCurve(returns)).MaxDrawdown,
		Skewness:             skew,
		Kurtosis:             kurt,
		ExcessKurtosis:       excess,
	}
}

// valueAtRisk returns the cutoff index floor(0.05n) into the ascending
// returns, the return at that index, and the mean of the returns strictly
// below it (0 when the index is 0).
func valueAtRisk(returns []float64) (int, float64, float64) {
	if len(returns) == 0 {
		return 0, 0, 0
	}
	sorted := sortedCopy(returns)
	idx := int(math.Floor(varTail * float64(len(sorted))))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}

	var cvar float64
	if idx > 0 {
		cvar = mean(sorted[:idx])
	}
	return idx, sorted[idx], cvar
}

// downsideDeviation is the root-mean-square of min(0, r - center).
func downsideDeviation(returns []float64, center float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	var ss float64
	for _, r := range returns {
		d := math.Min(0, r-center)
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(returns)))
}

// moments returns population skewness, kurtosis and excess kurtosis, all 0
// when the series has no dispersion.
func moments(returns []float64) (skew, kurt, excess float64) {
	mu, sigma := stat.PopMeanStdDev(returns, nil)
	if sigma < epsilon || math.IsNaN(sigma) {
		return 0, 0, 0
	}
	skew = stat.MomentAbout(3, returns, mu, nil) / math.Pow(sigma, 3)
	kurt = stat.MomentAbout(4, returns, mu, nil) / math.Pow(sigma, 4)
	return skew, kurt, kurt - 3
}
