package backtest

import (
	"time"

	"github.com/newthinker/prism/internal/analytics"
	"github.com/newthinker/prism/internal/core"
	"github.com/newthinker/prism/internal/portfolio"
)

// Request describes one simulation run
type Request struct {
	Strategy       string // label for logs, telemetry and output
	Policy         core.AllocationPolicy
	Start          time.Time
	End            time.Time
	InitialCapital float64
	Cadence        core.Cadence
	CostPerLeg     float64
	Benchmark      string             // benchmark symbol; empty disables comparison
	SectorWeights  map[string]float64 // nil uses analytics.DefaultSectorWeights
}

// Result holds the complete output of a run
type Result struct {
	RunID     string
	Strategy  string
	Policy    core.AllocationPolicy
	StartDate time.Time
	EndDate   time.Time
	Dates     []time.Time // trading dates shared by all loaded assets
	Trace     *portfolio.Trace
	Report    *analytics.Report
	Benchmark *BenchmarkComparison // nil when no benchmark was requested or found
	Stats     Stats
	Skipped   []string // policy assets without price data
	Duration  time.Duration
}

// BenchmarkComparison compares whole-window returns of portfolio and benchmark
type BenchmarkComparison struct {
	Symbol          string
	PortfolioReturn float64
	BenchmarkReturn float64
	Outperformance  float64
}

// Stats holds the headline performance statistics of a run
type Stats struct {
	InitialCapital   float64
	FinalCapital     float64
	TotalReturn      float64
	AnnualizedReturn float64
	Volatility       float64 // annualized
	SharpeRatio      float64
	WinRate          float64 // share of positive days
	BestDay          float64
	WorstDay         float64
	TradingDays      int
	MaxDrawdown      float64
	DrawdownDuration int
	RecoveryFactor   float64
	DownsideRisk     float64
	TotalTrades      int
	Rebalances       int
	TotalCosts       float64
}

// Outperformed reports whether the portfolio beat its benchmark
func (b *BenchmarkComparison) Outperformed() bool {
	return b != nil && b.Outperformance > 0
}
