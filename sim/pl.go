package sim

func pnl(m Mode, entry, price, qty float64) float64 {
	if m == MarginShort {
		return (entry - price) * qty
	}
	return (price - entry) * qty
}

// TotalAssetValue is cash plus the net value of every lot at price. Once a
// run has terminated the valuation is frozen to cash.
func TotalAssetValue(a Account, price float64) float64 {
	if !a.Active {
		return a.Cash
	}
	total := a.Cash
	for _, l := range a.Positions {
		total += l.NetValue(price)
	}
	return total
}

func AggregateUnrealizedPL(a Account, price float64) float64 {
	var sum float64
	for _, l := range a.Positions {
		sum += l.UnrealizedPL(price)
	}
	return sum
}

// MarginHeld is the cash withheld across all lots, spot cost included.
func MarginHeld(a Account) float64 {
	var sum float64
	for _, l := range a.Positions {
		sum += l.Margin()
	}
	return sum
}

// SpotSummary aggregates the Spot lots only.
type SpotSummary struct {
	Quantity     float64
	AvgEntry     float64 // quantity weighted
	UnrealizedPL float64
}

func SummarizeSpot(a Account, price float64) SpotSummary {
	var s SpotSummary
	var cost float64
	for _, l := range a.Positions {
		if l.Mode != Spot {
			continue
		}
		s.Quantity += l.Quantity
		cost += l.Quantity * l.EntryPrice
		s.UnrealizedPL += l.UnrealizedPL(price)
	}
	if s.Quantity > 0 {
		s.AvgEntry = cost / s.Quantity
	}
	return s
}
