package journal

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary is the end-of-run scorecard built from a run's ledger.
type Summary struct {
	RunID      string
	Created    time.Time
	Ticker     string
	AssetClass string

	Start time.Time
	End   time.Time

	InitialCapital float64
	FinalValue     float64
	Termination    string

	Opens  int
	Closes int
	Wins   int
	Losses int

	// Money figures are rounded to cents.
	NetPL        float64
	NetRealized  float64
	GrossProfit  float64
	GrossLoss    float64
	Fees         float64
	ReturnPct    float64
	WinRate      float64
	ProfitFactor float64

	Notes []string
}

// Summarize tallies a ledger. Sums are accumulated in decimal so a long run
// does not drift from the per-row figures.
func Summarize(txs []TransactionRecord, initialCapital, finalValue float64) Summary {
	s := Summary{
		InitialCapital: initialCapital,
		FinalValue:     finalValue,
	}

	var realized, profit, loss, fees decimal.Decimal
	for i, t := range txs {
		if i == 0 || t.Date.Before(s.Start) {
			s.Start = t.Date
		}
		if t.Date.After(s.End) {
			s.End = t.Date
		}

		fees = fees.Add(decimal.NewFromFloat(t.Fee))
		if t.RealizedPL == nil {
			s.Opens++
			continue
		}

		s.Closes++
		pl := decimal.NewFromFloat(*t.RealizedPL)
		realized = realized.Add(pl)
		switch pl.Sign() {
		case 1:
			s.Wins++
			profit = profit.Add(pl)
		case -1:
			s.Losses++
			loss = loss.Add(pl.Neg())
		}
	}

	s.NetRealized = cents(realized)
	s.GrossProfit = cents(profit)
	s.GrossLoss = cents(loss)
	s.Fees = cents(fees)

	initial := decimal.NewFromFloat(initialCapital)
	net := decimal.NewFromFloat(finalValue).Sub(initial)
	s.NetPL = cents(net)
	if initial.IsPositive() {
		s.ReturnPct = net.Div(initial).Mul(decimal.NewFromInt(100)).Round(4).InexactFloat64()
	}
	if s.Closes > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Closes)
	}
	if loss.IsPositive() {
		s.ProfitFactor = profit.Div(loss).Round(4).InexactFloat64()
	}
	return s
}

func cents(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
