package portfolio

import (
	"errors"
	"math"
	"testing"

	"github.com/newthinker/prism/internal/core"
)

func linearPrices(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

func TestSimulate_DayZero(t *testing.T) {
	prices := core.PriceSeries{
		"SPY": {300, 303, 297},
		"BND": {85, 85.5, 86},
	}
	policy := core.AllocationPolicy{"SPY": 0.6, "BND": 0.4}

	trace, err := Simulate(prices, policy, 10000, core.CadenceMonthly, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if trace.Points[0].Value != 10000 {
		t.Errorf("day 0 value = %f, want initial capital", trace.Points[0].Value)
	}
	if trace.Points[0].Return != 0 {
		t.Errorf("day 0 return = %f, want exactly 0", trace.Points[0].Return)
	}
	if trace.Days() != 3 {
		t.Errorf("Days() = %d, want 3", trace.Days())
	}
}

func TestSimulate_ValuationAndReturns(t *testing.T) {
	prices := core.PriceSeries{
		"A": {100, 110, 99},
		"B": {50, 50, 55},
	}
	policy := core.AllocationPolicy{"A": 0.5, "B": 0.5}

	trace, err := Simulate(prices, policy, 1000, core.CadenceQuarterly, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// day 1: A +10%, B flat
	if math.Abs(trace.Points[1].Return-0.05) > 1e-12 {
		t.Errorf("day 1 return = %f, want 0.05", trace.Points[1].Return)
	}
	if math.Abs(trace.Points[1].Value-1050) > 1e-9 {
		t.Errorf("day 1 value = %f, want 1050", trace.Points[1].Value)
	}

	// day 2: A -10% from 110, B +10%; value against day 0 prices
	if math.Abs(trace.Points[2].Return-0.0) > 1e-12 {
		t.Errorf("day 2 return = %f, want 0", trace.Points[2].Return)
	}
	wantValue := 500*0.99 + 500*1.1
	if math.Abs(trace.Points[2].Value-wantValue) > 1e-9 {
		t.Errorf("day 2 value = %f, want %f", trace.Points[2].Value, wantValue)
	}
	if trace.FinalCapital != trace.Points[2].Value {
		t.Error("final capital should equal the last value")
	}

	returns := trace.Returns()
	if len(returns) != 2 {
		t.Fatalf("expected 2 realized returns, got %d", len(returns))
	}
	values := trace.Values()
	if len(values) != 3 || values[0] != 1000 {
		t.Errorf("unexpected values %v", values)
	}
}

func TestSimulate_RebalanceCadence(t *testing.T) {
	n := 64
	prices := core.PriceSeries{
		"SPY": linearPrices(100, 1, n),
		"BND": linearPrices(80, 0.1, n),
		"GLD": linearPrices(150, -0.5, n),
	}
	policy := core.AllocationPolicy{"SPY": 0.6, "BND": 0.3, "GLD": 0.1}

	tests := []struct {
		cadence    core.Cadence
		rebalances int
	}{
		{core.CadenceDaily, 63},
		{core.CadenceWeekly, 12},
		{core.CadenceMonthly, 3},
		{core.CadenceQuarterly, 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.cadence), func(t *testing.T) {
			trace, err := Simulate(prices, policy, 100000, tt.cadence, Options{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if trace.Stats.Rebalances != tt.rebalances {
				t.Errorf("Rebalances = %d, want %d", trace.Stats.Rebalances, tt.rebalances)
			}
			if trace.Stats.TotalTrades != 3*tt.rebalances {
				t.Errorf("TotalTrades = %d, want %d", trace.Stats.TotalTrades, 3*tt.rebalances)
			}
			if len(trace.PeriodReturns) != tt.rebalances {
				t.Errorf("PeriodReturns = %d, want %d", len(trace.PeriodReturns), tt.rebalances)
			}
			for i, ev := range trace.Rebalances {
				if ev.Day != (i+1)*tt.cadence.TradingDays() {
					t.Errorf("rebalance %d on day %d", i, ev.Day)
				}
				if ev.Legs != 3 {
					t.Errorf("rebalance legs = %d, want 3", ev.Legs)
				}
			}
		})
	}
}

func TestSimulate_PeriodReturns(t *testing.T) {
	prices := core.PriceSeries{"SPY": linearPrices(100, 1, 43)}
	policy := core.AllocationPolicy{"SPY": 1.0}

	trace, err := Simulate(prices, policy, 1000, core.CadenceMonthly, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trace.PeriodReturns) != 2 {
		t.Fatalf("expected 2 period returns, got %d", len(trace.PeriodReturns))
	}

	first := (1210.0 - 1000.0) / 1000.0
	second := (1420.0 - 1210.0) / 1210.0
	if math.Abs(trace.PeriodReturns[0]-first) > 1e-9 {
		t.Errorf("first period return = %f, want %f", trace.PeriodReturns[0], first)
	}
	if math.Abs(trace.PeriodReturns[1]-second) > 1e-9 {
		t.Errorf("second period return = %f, want %f", trace.PeriodReturns[1], second)
	}
}

func TestSimulate_CostPerLeg(t *testing.T) {
	prices := core.PriceSeries{"SPY": linearPrices(100, 0, 11), "BND": linearPrices(80, 0, 11)}
	policy := core.AllocationPolicy{"SPY": 0.5, "BND": 0.5}

	trace, err := Simulate(prices, policy, 1000, core.CadenceWeekly, Options{CostPerLeg: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// rebalances on day 5 and 10, two legs each
	if trace.Stats.TotalCosts != 8 {
		t.Errorf("TotalCosts = %f, want 8", trace.Stats.TotalCosts)
	}
	if trace.Points[4].Value != 1000 {
		t.Errorf("value before first rebalance = %f, want 1000", trace.Points[4].Value)
	}
	if trace.Points[5].Value != 996 {
		t.Errorf("value after first rebalance = %f, want 996", trace.Points[5].Value)
	}
	if trace.FinalCapital != 992 {
		t.Errorf("FinalCapital = %f, want 992", trace.FinalCapital)
	}
}

func TestSimulate_MissingAssetSkipped(t *testing.T) {
	prices := core.PriceSeries{"SPY": {100, 110}}
	policy := core.AllocationPolicy{"SPY": 0.5, "XYZ": 0.5}

	trace, err := Simulate(prices, policy, 1000, core.CadenceDaily, Options{})
	if err != nil {
		t.Fatalf("missing asset should not be an error: %v", err)
	}
	if len(trace.Skipped) != 1 || trace.Skipped[0] != "XYZ" {
		t.Errorf("Skipped = %v, want [XYZ]", trace.Skipped)
	}
	if math.Abs(trace.Points[1].Return-0.05) > 1e-12 {
		t.Errorf("day 1 return = %f, want 0.05", trace.Points[1].Return)
	}
	if math.Abs(trace.Points[1].Value-550) > 1e-9 {
		t.Errorf("day 1 value = %f, want 550", trace.Points[1].Value)
	}
	// the missing asset still counts as a traded leg
	if trace.Stats.TotalTrades != 2 {
		t.Errorf("TotalTrades = %d, want 2", trace.Stats.TotalTrades)
	}
}

func TestSimulate_SingleDay(t *testing.T) {
	trace, err := Simulate(core.PriceSeries{"SPY": {100}}, core.AllocationPolicy{"SPY": 1}, 500, core.CadenceDaily, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trace.FinalCapital != 500 || len(trace.Returns()) != 0 {
		t.Errorf("single-day run should keep capital and have no realized returns")
	}
}

func TestSimulate_Errors(t *testing.T) {
	good := core.PriceSeries{"SPY": {100, 101}}
	policy := core.AllocationPolicy{"SPY": 1}

	tests := []struct {
		name    string
		prices  core.PriceSeries
		policy  core.AllocationPolicy
		capital float64
		cadence core.Cadence
		opts    Options
	}{
		{"zero capital", good, policy, 0, core.CadenceMonthly, Options{}},
		{"negative capital", good, policy, -5, core.CadenceMonthly, Options{}},
		{"empty series", core.PriceSeries{"SPY": {}}, policy, 100, core.CadenceMonthly, Options{}},
		{"non-positive price", core.PriceSeries{"SPY": {100, 0}}, policy, 100, core.CadenceMonthly, Options{}},
		{"negative price elsewhere", core.PriceSeries{"SPY": {100, 101}, "BND": {-1, 2}}, policy, 100, core.CadenceMonthly, Options{}},
		{"ragged series", core.PriceSeries{"SPY": {100, 101}, "BND": {80}}, policy, 100, core.CadenceMonthly, Options{}},
		{"no prices", core.PriceSeries{}, policy, 100, core.CadenceMonthly, Options{}},
		{"empty policy", good, core.AllocationPolicy{}, 100, core.CadenceMonthly, Options{}},
		{"negative weight", good, core.AllocationPolicy{"SPY": -0.1}, 100, core.CadenceMonthly, Options{}},
		{"bad cadence", good, policy, 100, core.Cadence("hourly"), Options{}},
		{"negative cost", good, policy, 100, core.CadenceMonthly, Options{CostPerLeg: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Simulate(tt.prices, tt.policy, tt.capital, tt.cadence, tt.opts)
			if !errors.Is(err, core.ErrInvalidInput) {
				t.Errorf("expected INVALID_INPUT, got %v", err)
			}
		})
	}
}
