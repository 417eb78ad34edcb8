package entities

import (
	"math"

	"github.com/shopspring/decimal"
)

// Unlimited marks a set count that nothing constrains
const Unlimited int64 = math.MaxInt64

var one = decimal.NewFromInt(1)

// FloorSets returns floor(available / perSet).
// A non-positive perSet imposes no constraint and yields Unlimited.
func FloorSets(available, perSet float64) int64 {
	if perSet <= 0 || math.IsNaN(perSet) {
		return Unlimited
	}
	if available <= 0 || math.IsNaN(available) {
		return 0
	}
	if math.IsInf(available, 1) {
		return Unlimited
	}
	return decimal.NewFromFloat(available).Div(decimal.NewFromFloat(perSet)).Floor().IntPart()
}

// MinSets returns the smaller of two set counts
func MinSets(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// NormalizeLossRate converts a loss rate to a fraction.
// Values above 1 are percentages (5 means 5%); negative values mean no loss.
func NormalizeLossRate(lossRate float64) float64 {
	if lossRate <= 0 || math.IsNaN(lossRate) {
		return 0
	}
	if lossRate > 1 {
		return lossRate / 100
	}
	return lossRate
}

// RequiredQuantity is the quantity of a child needed for parentQty units of its parent:
// ceil(parentQty × perUnit × (1 + lossRate)).
func RequiredQuantity(parentQty, perUnit, lossRate float64) float64 {
	if parentQty <= 0 || perUnit <= 0 {
		return 0
	}
	factor := one.Add(decimal.NewFromFloat(NormalizeLossRate(lossRate)))
	return decimal.NewFromFloat(parentQty).
		Mul(decimal.NewFromFloat(perUnit)).
		Mul(factor).
		Ceil().
		InexactFloat64()
}

// ParentUnitsCovered is how many parent units a stock of a child covers,
// fractional, at perUnit × (1 + lossRate) child units per parent unit.
func ParentUnitsCovered(stock, perUnit, lossRate float64) float64 {
	if stock <= 0 {
		return 0
	}
	if perUnit <= 0 {
		return math.Inf(1)
	}
	per := decimal.NewFromFloat(perUnit).Mul(one.Add(decimal.NewFromFloat(NormalizeLossRate(lossRate))))
	return decimal.NewFromFloat(stock).Div(per).InexactFloat64()
}

// MaxLeadTimeDays bounds any single task duration
const MaxLeadTimeDays = 3650

// CeilDays returns ceil(quantity / ratePerDay), at most MaxLeadTimeDays.
// A non-positive rate or quantity yields 0.
func CeilDays(quantity, ratePerDay float64) int {
	if quantity <= 0 || ratePerDay <= 0 || math.IsNaN(quantity) || math.IsNaN(ratePerDay) {
		return 0
	}
	if math.IsInf(quantity, 1) {
		return MaxLeadTimeDays
	}
	if math.IsInf(ratePerDay, 1) {
		return 1
	}
	days := decimal.NewFromFloat(quantity).Div(decimal.NewFromFloat(ratePerDay)).Ceil()
	if days.GreaterThan(decimal.NewFromInt(MaxLeadTimeDays)) {
		return MaxLeadTimeDays
	}
	return int(days.IntPart())
}

// Deficit is the part of required not covered by stock
func Deficit(required, stock float64) float64 {
	if stock >= required {
		return 0
	}
	if stock < 0 {
		return required
	}
	return required - stock
}
