package core

import (
	"sort"
	"strings"
	"time"
)

// PricePoint is a single closing price observation
type PricePoint struct {
	Time  time.Time
	Price float64
}

// PriceSeries maps an asset identifier to its ordered daily prices.
// All series used in one simulation share the same date index.
type PriceSeries map[string][]float64

// Len returns the common series length, or -1 if the series disagree.
func (ps PriceSeries) Len() int {
	n := -1
	for _, prices := range ps {
		if n == -1 {
			n = len(prices)
			continue
		}
		if len(prices) != n {
			return -1
		}
	}
	if n == -1 {
		return 0
	}
	return n
}

// Symbols returns the asset identifiers in sorted order
func (ps PriceSeries) Symbols() []string {
	out := make([]string, 0, len(ps))
	for s := range ps {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// AllocationPolicy maps an asset identifier to its target weight
type AllocationPolicy map[string]float64

// Assets returns the policy's assets in sorted order so that weighted sums
// are accumulated in a stable order.
func (p AllocationPolicy) Assets() []string {
	out := make([]string, 0, len(p))
	for a := range p {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// TotalWeight returns the sum of all target weights
func (p AllocationPolicy) TotalWeight() float64 {
	var sum float64
	for _, a := range p.Assets() {
		sum += p[a]
	}
	return sum
}

// Cadence is the rebalancing frequency of a simulation
type Cadence string

const (
	CadenceDaily     Cadence = "daily"
	CadenceWeekly    Cadence = "weekly"
	CadenceMonthly   Cadence = "monthly"
	CadenceQuarterly Cadence = "quarterly"
)

var cadenceDays = map[Cadence]int{
	CadenceDaily:     1,
	CadenceWeekly:    5,
	CadenceMonthly:   21,
	CadenceQuarterly: 63,
}

// ParseCadence converts a user-supplied string into a Cadence
func ParseCadence(s string) (Cadence, error) {
	c := Cadence(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := cadenceDays[c]; !ok {
		return "", Invalidf("unknown rebalance cadence %q", s)
	}
	return c, nil
}

// TradingDays returns the approximate trading-day interval of the cadence,
// or 0 for an unknown cadence.
func (c Cadence) TradingDays() int {
	return cadenceDays[c]
}

// IsValid checks if the cadence is one of the known values
func (c Cadence) IsValid() bool {
	_, ok := cadenceDays[c]
	return ok
}

// Periods per year for annualizing returns sampled at a given frequency.
const (
	PeriodsDaily     = 252
	PeriodsWeekly    = 52
	PeriodsMonthly   = 12
	PeriodsQuarterly = 4
	PeriodsYearly    = 1
)

// PeriodsPerYear maps a return frequency name to its annualization factor.
// Unknown names fall back to monthly.
func PeriodsPerYear(frequency string) int {
	switch strings.ToLower(frequency) {
	case "daily":
		return PeriodsDaily
	case "weekly":
		return PeriodsWeekly
	case "quarterly":
		return PeriodsQuarterly
	case "yearly", "annual":
		return PeriodsYearly
	default:
		return PeriodsMonthly
	}
}

// Align intersects the observation dates of several price histories and
// returns the shared dates together with the aligned price series.
// Histories are expected in ascending time order.
func Align(histories map[string][]PricePoint) ([]time.Time, PriceSeries) {
	if len(histories) == 0 {
		return nil, PriceSeries{}
	}

	counts := make(map[time.Time]int)
	for _, h := range histories {
		seen := make(map[time.Time]bool, len(h))
		for _, p := range h {
			day := p.Time.UTC().Truncate(24 * time.Hour)
			if !seen[day] {
				seen[day] = true
				counts[day]++
			}
		}
	}

	var dates []time.Time
	for day, c := range counts {
		if c == len(histories) {
			dates = append(dates, day)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	index := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		index[d] = i
	}

	series := make(PriceSeries, len(histories))
	for symbol, h := range histories {
		prices := make([]float64, len(dates))
		for _, p := range h {
			if i, ok := index[p.Time.UTC().Truncate(24*time.Hour)]; ok {
				prices[i] = p.Price
			}
		}
		series[symbol] = prices
	}
	return dates, series
}

// Match looks up a price history on the given dates, typically the output of
// Align. It reports false when the history misses any of them.
func Match(dates []time.Time, history []PricePoint) ([]float64, bool) {
	byDay := make(map[time.Time]float64, len(history))
	for _, p := range history {
		byDay[p.Time.UTC().Truncate(24*time.Hour)] = p.Price
	}
	prices := make([]float64, len(dates))
	for i, d := range dates {
		price, ok := byDay[d]
		if !ok {
			return nil, false
		}
		prices[i] = price
	}
	return prices, true
}

// SpanDays returns the calendar days between the first and last date
func SpanDays(dates []time.Time) int {
	if len(dates) < 2 {
		return 0
	}
	return int(dates[len(dates)-1].Sub(dates[0]).Hours() / 24)
}
