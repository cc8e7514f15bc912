// Package pricetol implements epsilon-based price comparison.
//
// Upstream price feeds deliver threshold values with varying decimal
// precision, so every threshold comparison in the lifecycle package goes
// through Equal/MatchesAny instead of ==.
package pricetol

import (
	"math"

	"github.com/shopspring/decimal"
)

// Tolerance is the maximum absolute difference at which two prices are
// still considered the same threshold. Supports up to 5 decimal places.
const Tolerance = 1e-5

var decTolerance = decimal.NewFromFloat(Tolerance)

func decFromFloat(val float64) decimal.Decimal {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(val)
}

// Equal reports whether a and b are within Tolerance of each other.
// The boundary is inclusive: thresholds quoted to exactly 5 decimal places
// that differ by one step (150.50000 vs 150.50001) still match.
func Equal(a, b float64) bool {
	return decFromFloat(a).Sub(decFromFloat(b)).Abs().Cmp(decTolerance) <= 0
}

// MatchesAny reports whether value is tolerance-equal to any candidate.
func MatchesAny(value float64, candidates []float64) bool {
	for _, c := range candidates {
		if Equal(value, c) {
			return true
		}
	}
	return false
}

// ProfitTargets derives the default first and second profit targets from a
// filled entry threshold: +3%/+6% for longs, -3%/-6% for shorts.
func ProfitTargets(entry float64, long bool) (p1, p2 float64) {
	base := decFromFloat(entry)
	one := decimal.NewFromInt(1)
	step := decimal.NewFromFloat(0.03)
	var f1, f2 decimal.Decimal
	if long {
		f1 = one.Add(step)
		f2 = one.Add(step.Mul(decimal.NewFromInt(2)))
	} else {
		f1 = one.Sub(step)
		f2 = one.Sub(step.Mul(decimal.NewFromInt(2)))
	}
	p1, _ = base.Mul(f1).Float64()
	p2, _ = base.Mul(f2).Float64()
	return p1, p2
}
