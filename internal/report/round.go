// Package report turns simulation results and analytics reports into rounded
// presentation views and renders them as JSON or aligned text.
package report

import (
	"math"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// dec converts f to a decimal, mapping NaN and infinities to zero
func dec(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

// Pct converts a fraction to a percentage rounded to 2 decimal places
func Pct(f float64) float64 {
	return dec(f).Mul(hundred).Round(2).InexactFloat64()
}

// Ratio rounds a ratio to 3 decimal places
func Ratio(f float64) float64 {
	return dec(f).Round(3).InexactFloat64()
}

// WinRate converts a fraction to a percentage rounded to 1 decimal place
func WinRate(f float64) float64 {
	return dec(f).Mul(hundred).Round(1).InexactFloat64()
}

// Money rounds an amount to cents
func Money(f float64) float64 {
	return Round(f, 2)
}

// Round rounds half away from zero to the given number of decimal places
func Round(f float64, places int32) float64 {
	return dec(f).Round(places).InexactFloat64()
}

// PctPrecise is Pct with 3 decimal places, for small tail statistics
func PctPrecise(f float64) float64 {
	return dec(f).Mul(hundred).Round(3).InexactFloat64()
}

func pcts(in []float64) []float64 {
	out := make([]float64, len(in))
	for i, f := range in {
		out[i] = Pct(f)
	}
	return out
}
