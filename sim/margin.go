package sim

import "math"

// Fees holds the two rate tiers. Leveraged trades pay the higher rate.
type Fees struct {
	Spot      float64 `yaml:"spot" json:"spot"`
	Leveraged float64 `yaml:"leveraged" json:"leveraged"`
}

var DefaultFees = Fees{Spot: 0.005, Leveraged: 0.01}

// DefaultMaxLeverage follows from a 5% minimum margin rate.
const DefaultMaxLeverage = 20.0

func (f Fees) Rate(m Mode) float64 {
	if m.Leveraged() {
		return f.Leveraged
	}
	return f.Spot
}

// LiquidationPrice is fixed at open. Spot lots never liquidate.
func LiquidationPrice(m Mode, price, leverage float64) float64 {
	switch m {
	case MarginLong:
		return price * (1 - 1/leverage)
	case MarginShort:
		return price * (1 + 1/leverage)
	}
	return 0
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
