package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeReturns_Empty(t *testing.T) {
	m := ComputeReturns(nil, 365, 252)
	assert.False(t, m.Valid)
	assert.Zero(t, m.TotalPeriods)
}

func TestComputeReturns_Basic(t *testing.T) {
	returns := []float64{0.10, -0.05, 0.02}
	m := ComputeReturns(returns, 730, 12)
	require.True(t, m.Valid)

	g := 1.10 * 0.95 * 1.02
	assert.InDelta(t, g-1, m.TotalReturn, 1e-12)
	assert.InDelta(t, math.Pow(g, 365.25/730)-1, m.AnnualizedReturn, 1e-12)
	assert.InDelta(t, 0.07, m.CumulativeReturn, 1e-12)
	assert.InDelta(t, 0.07/3, m.MeanReturn, 1e-12)
	assert.InDelta(t, 2.0/3.0, m.WinRate, 1e-12)
	assert.Equal(t, 0.10, m.BestPeriod)
	assert.Equal(t, -0.05, m.WorstPeriod)
	assert.Equal(t, 2, m.PositivePeriods)
	assert.Equal(t, 3, m.TotalPeriods)
	assert.Equal(t, 12, m.PeriodsPerYear)
}

func TestComputeReturns_AnnualizesByPeriodCountWithoutSpan(t *testing.T) {
	returns := []float64{0.01, 0.02, 0.03}
	m := ComputeReturns(returns, 0, 12)

	g := 1.01 * 1.02 * 1.03
	assert.InDelta(t, math.Pow(g, 12.0/3.0)-1, m.AnnualizedReturn, 1e-12)
}

func TestComputeReturns_Sharpe(t *testing.T) {
	returns := []float64{0.02, -0.01, 0.03, 0.01, -0.02, 0.025}
	m := ComputeReturns(returns, 180, 12)

	var mu float64
	for _, r := range returns {
		mu += r
	}
	mu /= float64(len(returns))
	var ss float64
	for _, r := range returns {
		ss += (r - mu) * (r - mu)
	}
	vol := math.Sqrt(ss/float64(len(returns)-1)) * math.Sqrt(12)

	assert.InDelta(t, vol, m.Volatility, 1e-12)
	assert.InDelta(t, (m.AnnualizedReturn-DefaultRiskFreeRate)/vol, m.SharpeRatio, 1e-9)
}

func TestComputeReturns_ConstantSeriesHasNoVolatility(t *testing.T) {
	returns := make([]float64, 24)
	for i := range returns {
		returns[i] = 0.01
	}

	m := ComputeReturns(returns, 0, 12)
	assert.Zero(t, m.Volatility)
	assert.Zero(t, m.SharpeRatio, "Sharpe is clamped to 0 when volatility is 0")
	assert.Equal(t, 1.0, m.WinRate)
}

func TestComputeReturns_SinglePeriodVolatilityUndefined(t *testing.T) {
	m := ComputeReturns([]float64{0.05}, 30, 12)
	require.True(t, m.Valid)
	assert.Zero(t, m.Volatility)
	assert.Zero(t, m.SharpeRatio)
}

func TestComputeReturnsFromValues(t *testing.T) {
	m := ComputeReturnsFromValues(100, 150, []float64{0.2, 0.25}, 0, 1)
	require.True(t, m.Valid)
	assert.InDelta(t, 0.5, m.TotalReturn, 1e-12)

	bad := ComputeReturnsFromValues(0, 150, []float64{0.2}, 0, 1)
	assert.False(t, bad.Valid)
}

func TestComputeReturns_TotalLossAnnualizesToMinusOne(t *testing.T) {
	m := ComputeReturns([]float64{-1.0, 0.1}, 365, 252)
	assert.Equal(t, -1.0, m.AnnualizedReturn)
}

func TestComputeReturns_ExtremeGrowthIsCapped(t *testing.T) {
	m := ComputeReturns([]float64{20}, 0, 252)
	require.True(t, m.Valid)
	assert.False(t, math.IsInf(m.AnnualizedReturn, 0))
	assert.Equal(t, maxAnnualizedReturn, m.AnnualizedReturn)

	short := ComputeReturns([]float64{20}, 1, 252)
	assert.Equal(t, maxAnnualizedReturn, short.AnnualizedReturn)
}
