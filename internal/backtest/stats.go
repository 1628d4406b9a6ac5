package backtest

import (
	"github.com/newthinker/prism/internal/analytics"
	"github.com/newthinker/prism/internal/portfolio"
)

// CalculateStats collects the headline numbers of a run from its trace and report
func CalculateStats(trace *portfolio.Trace, report *analytics.Report) Stats {
	if trace == nil {
		return Stats{}
	}

	stats := Stats{
		InitialCapital: trace.InitialCapital,
		FinalCapital:   trace.FinalCapital,
		TotalTrades:    trace.Stats.TotalTrades,
		Rebalances:     trace.Stats.Rebalances,
		TotalCosts:     trace.Stats.TotalCosts,
		TradingDays:    len(trace.Returns()),
	}
	if trace.InitialCapital > 0 {
		stats.TotalReturn = (trace.FinalCapital - trace.InitialCapital) / trace.InitialCapital
	}
	if report == nil {
		return stats
	}

	stats.AnnualizedReturn = report.Returns.AnnualizedReturn
	stats.Volatility = report.Returns.Volatility
	stats.SharpeRatio = report.Returns.SharpeRatio
	stats.WinRate = report.Returns.WinRate
	stats.BestDay = report.Returns.BestPeriod
	stats.WorstDay = report.Returns.WorstPeriod
	stats.MaxDrawdown = report.Drawdown.MaxDrawdown
	stats.DrawdownDuration = report.Drawdown.Duration
	stats.RecoveryFactor = report.Drawdown.RecoveryFactor
	stats.DownsideRisk = report.Risk.DownsideRisk
	return stats
}

// compareBenchmark measures whole-window returns of the value path and the
// benchmark prices.
func compareBenchmark(symbol string, values, prices []float64) *BenchmarkComparison {
	if len(values) == 0 || len(prices) == 0 || values[0] <= 0 || prices[0] <= 0 {
		return nil
	}
	c := &BenchmarkComparison{
		Symbol:          symbol,
		PortfolioReturn: (values[len(values)-1] - values[0]) / values[0],
		BenchmarkReturn: (prices[len(prices)-1] - prices[0]) / prices[0],
	}
	c.Outperformance = c.PortfolioReturn - c.BenchmarkReturn
	return c
}
