package analytics

import (
	"math"
)

// daysPerYear converts elapsed calendar days into years.
const daysPerYear = 365.25

// maxAnnualizedReturn caps extrapolations of short, extreme series.
const maxAnnualizedReturn = 1e6

// ComputeReturns derives return metrics from periodic returns, compounding
// them to obtain the terminal growth. elapsedDays is the calendar span of the
// whole series; periodsPerYear annualizes volatility (252 daily, 12 monthly).
// The Sharpe ratio uses DefaultRiskFreeRate.
func ComputeReturns(returns []float64, elapsedDays, periodsPerYear int) ReturnMetrics {
	return computeReturns(growth(returns), returns, elapsedDays, periodsPerYear, DefaultRiskFreeRate)
}

// ComputeReturnsFromValues is ComputeReturns for callers that know the initial
// and final portfolio value.
func ComputeReturnsFromValues(initial, final float64, returns []float64, elapsedDays, periodsPerYear int) ReturnMetrics {
	if initial <= 0 {
		return ReturnMetrics{}
	}
	return computeReturns(final/initial, returns, elapsedDays, periodsPerYear, DefaultRiskFreeRate)
}

func computeReturns(g float64, returns []float64, elapsedDays, periodsPerYear int, riskFree float64) ReturnMetrics {
	n := len(returns)
	if n == 0 {
		return ReturnMetrics{}
	}
	if periodsPerYear <= 0 {
		periodsPerYear = 1
	}

	m := ReturnMetrics{
		Valid:            true,
		TotalReturn:      g - 1,
		AnnualizedReturn: annualize(g, n, elapsedDays, periodsPerYear),
		CumulativeReturn: sum(returns),
		MeanReturn:       mean(returns),
		Volatility:       sampleStdDev(returns) * math.Sqrt(float64(periodsPerYear)),
		BestPeriod:       returns[0],
		WorstPeriod:      returns[0],
		TotalPeriods:     n,
		PeriodsPerYear:   periodsPerYear,
	}

	for _, r := range returns {
		if r > 0 {
			m.PositivePeriods++
		}
		m.BestPeriod = math.Max(m.BestPeriod, r)
		m.WorstPeriod = math.Min(m.WorstPeriod, r)
	}
	m.WinRate = float64(m.PositivePeriods) / float64(n)

	if m.Volatility > 0 {
		m.SharpeRatio = (m.AnnualizedReturn - riskFree) / m.Volatility
	}
	return m
}

// annualize turns a terminal growth multiple into a compound annual rate.
// The calendar span is preferred; without one the period count is used.
// Rates too large to represent are capped at maxAnnualizedReturn.
func annualize(g float64, periods, elapsedDays, periodsPerYear int) float64 {
	if g <= 0 {
		return -1
	}
	exp := float64(periodsPerYear) / float64(periods)
	if elapsedDays > 0 {
		exp = daysPerYear / float64(elapsedDays)
	}
	r := math.Pow(g, exp) - 1
	if math.IsNaN(r) || r > maxAnnualizedReturn {
		return maxAnnualizedReturn
	}
	return r
}
