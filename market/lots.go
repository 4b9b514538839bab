package market

import "github.com/shopspring/decimal"

// LotPrecision is the number of decimal places in the text of minQty
// (0.001 -> 3, 100 -> 0).
func LotPrecision(minQty float64) int32 {
	exp := decimal.NewFromFloat(minQty).Exponent()
	if exp >= 0 {
		return 0
	}
	return -exp
}

// RoundToLot snaps qty to a multiple of minQty. Whole-unit lots round down so
// the result never exceeds qty; fractional lots round to the nearest step at
// the lot's own precision.
func RoundToLot(qty, minQty float64) float64 {
	if minQty <= 0 {
		return qty
	}

	q := decimal.NewFromFloat(qty)
	m := decimal.NewFromFloat(minQty)

	if minQty >= 1 && m.IsInteger() {
		return q.Div(m).Floor().Mul(m).InexactFloat64()
	}
	return q.Div(m).Round(0).Mul(m).Round(LotPrecision(minQty)).InexactFloat64()
}

// QuantityForPercent is pct percent of maxQty, snapped to the lot size.
func QuantityForPercent(maxQty, pct, minQty float64) float64 {
	return RoundToLot(maxQty*pct/100, minQty)
}
