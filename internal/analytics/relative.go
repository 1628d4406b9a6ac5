package analytics

import (
	"fmt"
	"math"
)

// ComputeRelative compares portfolio returns against a benchmark of the same
// length. annualRiskFree is converted to a per-period rate with
// periodsPerYear. Mismatched or too-short inputs return an invalid result
// whose Reason names the problem.
func ComputeRelative(returns, benchmark []float64, annualRiskFree float64, periodsPerYear int) RelativeMetrics {
	if len(returns) != len(benchmark) {
		return RelativeMetrics{Reason: fmt.Sprintf("length mismatch: %d returns vs %d benchmark", len(returns), len(benchmark))}
	}
	if len(returns) < 2 {
		return RelativeMetrics{Reason: fmt.Sprintf("need at least 2 periods, got %d", len(returns))}
	}
	if periodsPerYear <= 0 {
		periodsPerYear = 1
	}

	excess := make([]float64, len(returns))
	for i := range returns {
		excess[i] = returns[i] - benchmark[i]
	}

	m := RelativeMetrics{
		Valid:         true,
		TrackingError: sampleStdDev(excess),
		Alpha:         mean(excess),
		Beta:          1.0,
	}
	if m.TrackingError > 0 {
		m.InformationRatio = m.Alpha / m.TrackingError
	}

	cov := sampleCovariance(returns, benchmark)
	benchVar := sampleCovariance(benchmark, benchmark)
	if benchVar > epsilon {
		m.Beta = cov / benchVar
	}

	portStd := sampleStdDev(returns)
	benchStd := sampleStdDev(benchmark)
	if portStd > 0 && benchStd > 0 {
		m.Correlation = clamp(cov/(portStd*benchStd), -1, 1)
	}

	rf := annualRiskFree / float64(periodsPerYear)
	premium := mean(returns) - rf
	if portStd > 0 {
		m.SharpeRatio = premium / portStd
	}
	if math.Abs(m.Beta) > epsilon {
		m.TreynorRatio = premium / m.Beta
	}
	return m
}
