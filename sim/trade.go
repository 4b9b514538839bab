package sim

import "time"

// Transaction is an immutable ledger row.
type Transaction struct {
	Seq      int
	LotID    string
	Date     time.Time
	Mode     Mode
	Action   string
	Quantity float64 // positive opens a long, negative closes or sells short
	Price    float64

	// CashFlow is -margin on open and the returned margin or proceeds on close.
	CashFlow float64

	RealizedPL      *float64 // nil for opens
	OpeningNotional float64
	Fee             float64
	Leverage        float64
}

// IsClose reports whether the row realized P&L.
func (t Transaction) IsClose() bool { return t.RealizedPL != nil }

// PLPercent is realized P&L as a percentage of the margin (or spot cost)
// behind the closed quantity.
func (t Transaction) PLPercent() (float64, bool) {
	if t.RealizedPL == nil || t.Leverage == 0 {
		return 0, false
	}
	margin := t.OpeningNotional / t.Leverage
	if margin == 0 {
		return 0, false
	}
	return *t.RealizedPL / margin * 100, true
}
