package sim

import (
	"time"

	"github.com/rustyeddy/ksim/market"
)

// Lot is one open position with its own entry, size and risk levels.
type Lot struct {
	ID       string
	OpenDate time.Time
	Mode     Mode

	Quantity   float64
	EntryPrice float64

	// InitialNotional is Quantity x EntryPrice at the current size. A partial
	// close scales it with the quantity so Margin() keeps matching the cash
	// actually withheld.
	InitialNotional float64

	Leverage         float64
	LiquidationPrice float64 // 0 for Spot

	StopLoss   float64 // 0 is unset
	TakeProfit float64 // 0 is unset
}

// Margin is the cash withheld for the lot. For Spot it is the full cost.
func (l Lot) Margin() float64 {
	return l.InitialNotional / l.Leverage
}

func (l Lot) UnrealizedPL(price float64) float64 {
	return pnl(l.Mode, l.EntryPrice, price, l.Quantity)
}

// NetValue is what the lot contributes to total assets at price.
func (l Lot) NetValue(price float64) float64 {
	if l.Mode == Spot {
		return l.Quantity * price
	}
	return l.Margin() + l.UnrealizedPL(price)
}

type triggerKind int

const (
	triggerLiquidation triggerKind = iota + 1
	triggerStopLoss
	triggerTakeProfit
)

// checkExit tests the lot against one bar's range. Liquidation is checked
// first and settles at the liquidation price; otherwise the stop is checked
// before the target, so a bar that spans both exits at the stop.
func (l Lot) checkExit(b market.Bar) (exitPrice float64, kind triggerKind, hit bool) {
	if l.Mode.Leveraged() && l.LiquidationPrice > 0 {
		if l.Mode == MarginLong && b.Low <= l.LiquidationPrice {
			return l.LiquidationPrice, triggerLiquidation, true
		}
		if l.Mode == MarginShort && b.High >= l.LiquidationPrice {
			return l.LiquidationPrice, triggerLiquidation, true
		}
	}

	if l.Mode.Long() {
		// long: stop hit if low <= stop, take hit if high >= take
		if l.StopLoss > 0 && b.Low <= l.StopLoss {
			return l.StopLoss, triggerStopLoss, true
		}
		if l.TakeProfit > 0 && b.High >= l.TakeProfit {
			return l.TakeProfit, triggerTakeProfit, true
		}
	} else {
		// short: stop hit if high >= stop, take hit if low <= take
		if l.StopLoss > 0 && b.High >= l.StopLoss {
			return l.StopLoss, triggerStopLoss, true
		}
		if l.TakeProfit > 0 && b.Low <= l.TakeProfit {
			return l.TakeProfit, triggerTakeProfit, true
		}
	}
	return 0, 0, false
}
