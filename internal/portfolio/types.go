package portfolio

import "github.com/newthinker/prism/internal/core"

// Point is the portfolio state at the close of one trading day
type Point struct {
	Day    int
	Value  float64
	Return float64 // 0 on day 0
}

// RebalanceEvent records one rebalance back to target weights
type RebalanceEvent struct {
	Day  int
	Legs int
	Cost float64
}

// TradeStats aggregates the rebalance log
type TradeStats struct {
	TotalTrades int // legs traded across all rebalances
	Rebalances  int
	TotalCosts  float64
}

// Trace is the immutable output of one simulation run
type Trace struct {
	Points         []Point
	Rebalances     []RebalanceEvent
	PeriodReturns  []float64 // value change between consecutive rebalance boundaries
	InitialCapital float64
	FinalCapital   float64
	Cadence        core.Cadence
	Skipped        []string // policy assets with no price data
	Stats          TradeStats
}

// Values returns the daily portfolio values, day 0 included
func (t *Trace) Values() []float64 {
	out := make([]float64, len(t.Points))
	for i, p := range t.Points {
		out[i] = p.Value
	}
	return out
}

// Returns returns the realized daily returns from day 1 on. Day 0 carries no
// realized return and is left out so it does not dilute the statistics.
func (t *Trace) Returns() []float64 {
	if len(t.Points) < 2 {
		return []float64{}
	}
	out := make([]float64, len(t.Points)-1)
	for i, p := range t.Points[1:] {
		out[i] = p.Return
	}
	return out
}

// Days returns the number of simulated trading days
func (t *Trace) Days() int {
	return len(t.Points)
}
