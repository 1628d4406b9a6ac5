package portfolio

import (
	"math"

	"github.com/newthinker/prism/internal/core"
)

// Options tunes a simulation run
type Options struct {
	// CostPerLeg is a flat amount charged for every asset traded at a
	// rebalance. Accrued costs are subtracted from the portfolio value.
	CostPerLeg float64
}

// Simulate walks the aligned price series day by day under a fixed-weight
// policy. Values are the policy weights applied to each asset's price relative
// to day 0, scaled by the initial capital. A rebalance fires on every positive
// multiple of the cadence interval; it is logged and charged but does not
// change how the portfolio is valued.
//
// Policy assets missing from prices are skipped and listed in Trace.Skipped.
func Simulate(prices core.PriceSeries, policy core.AllocationPolicy, capital float64, cadence core.Cadence, opts Options) (*Trace, error) {
	n, err := validate(prices, policy, capital, cadence, opts)
	if err != nil {
		return nil, err
	}

	var held, skipped []string
	for _, a := range policy.Assets() {
		if _, ok := prices[a]; ok {
			held = append(held, a)
		} else {
			skipped = append(skipped, a)
		}
	}

	interval := cadence.TradingDays()
	trace := &Trace{
		Points:         make([]Point, n),
		InitialCapital: capital,
		Cadence:        cadence,
		Skipped:        skipped,
	}
	trace.Points[0] = Point{Day: 0, Value: capital, Return: 0}

	var costs float64
	boundary := 0

	for t := 1; t < n; t++ {
		var ret, value float64
		for _, a := range held {
			w := policy[a]
			p := prices[a]
			ret += w * (p[t] - p[t-1]) / p[t-1]
			value += capital * w * (p[t] / p[0])
		}

		rebalance := t%interval == 0
		if rebalance {
			legs := len(policy)
			cost := float64(legs) * opts.CostPerLeg
			costs += cost
			trace.Rebalances = append(trace.Rebalances, RebalanceEvent{Day: t, Legs: legs, Cost: cost})
			trace.Stats.TotalTrades += legs
			trace.Stats.TotalCosts += cost
		}

		value -= costs
		trace.Points[t] = Point{Day: t, Value: value, Return: ret}

		if rebalance {
			prev := trace.Points[boundary].Value
			var pr float64
			if prev != 0 {
				pr = (value - prev) / prev
			}
			trace.PeriodReturns = append(trace.PeriodReturns, pr)
			boundary = t
		}
	}

	trace.Stats.Rebalances = len(trace.Rebalances)
	trace.FinalCapital = trace.Points[n-1].Value
	return trace, nil
}

// validate checks structural invariants and returns the common series length.
func validate(prices core.PriceSeries, policy core.AllocationPolicy, capital float64, cadence core.Cadence, opts Options) (int, error) {
	if math.IsNaN(capital) || capital <= 0 {
		return 0, core.Invalidf("initial capital must be positive, got %v", capital)
	}
	if !cadence.IsValid() {
		return 0, core.Invalidf("unknown rebalance cadence %q", cadence)
	}
	if len(policy) == 0 {
		return 0, core.Invalidf("allocation policy is empty")
	}
	for _, a := range policy.Assets() {
		if w := policy[a]; math.IsNaN(w) || w < 0 {
			return 0, core.Invalidf("weight for %s is %v, must be non-negative", a, w)
		}
	}
	if math.IsNaN(opts.CostPerLeg) || opts.CostPerLeg < 0 {
		return 0, core.Invalidf("cost per leg must be non-negative, got %v", opts.CostPerLeg)
	}
	if len(prices) == 0 {
		return 0, core.Invalidf("no price series supplied")
	}

	for _, symbol := range prices.Symbols() {
		series := prices[symbol]
		if len(series) == 0 {
			return 0, core.Invalidf("price series for %s is empty", symbol)
		}
		for day, p := range series {
			if math.IsNaN(p) || p <= 0 {
				return 0, core.Invalidf("price for %s on day %d is %v, must be positive", symbol, day, p)
			}
		}
	}

	n := prices.Len()
	if n < 0 {
		return 0, core.Invalidf("price series have unequal lengths")
	}
	return n, nil
}
