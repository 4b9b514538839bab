package sim

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/rustyeddy/ksim/pkg/id"
)

// Open creates a new lot at price. Leverage is ignored for Spot.
//
// The fee is taken first. If the remaining cash cannot cover the margin the
// fee is put back, leaving cash exactly as it was, and ErrInsufficientMargin
// is returned.
func (e *Engine) Open(mode Mode, qty, price, leverage float64) (Lot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.acct.Active {
		return Lot{}, fmt.Errorf("open %s: %w", mode, ErrSimulationTerminated)
	}
	if !mode.valid() {
		return Lot{}, fmt.Errorf("open: unknown mode %d", int(mode))
	}
	if !finite(qty) || qty <= 0 || qty < e.cfg.Asset.MinQty {
		return Lot{}, fmt.Errorf("open %s: %w: %v (minimum %v %s)",
			mode, ErrInvalidQuantity, qty, e.cfg.Asset.MinQty, e.cfg.Asset.Unit)
	}
	if !finite(price) || price <= 0 {
		return Lot{}, fmt.Errorf("open %s: %w: %v", mode, ErrInvalidPrice, price)
	}
	if mode == Spot {
		leverage = 1
	} else if !(leverage >= 1 && leverage <= e.cfg.MaxLeverage) {
		return Lot{}, fmt.Errorf("open %s: %w: %v not in [1, %v]",
			mode, ErrInvalidLeverage, leverage, e.cfg.MaxLeverage)
	}
	if mode.Leveraged() && e.acct.hasLeveraged(mode) {
		return Lot{}, fmt.Errorf("open %s: %w", mode, ErrDuplicateLeveragedDirection)
	}

	notional := qty * price
	fee := notional * e.cfg.Fees.Rate(mode)
	margin := notional / leverage

	before := e.acct.Cash
	e.acct.Cash -= fee
	if e.acct.Cash < margin {
		e.acct.Cash = before
		return Lot{}, fmt.Errorf("open %s: %w: need $%.2f margin plus $%.2f fee, have $%.2f",
			mode, ErrInsufficientMargin, margin, fee, before)
	}
	e.acct.Cash -= margin

	lot := Lot{
		ID:               id.New(),
		OpenDate:         e.currentDate(),
		Mode:             mode,
		Quantity:         qty,
		EntryPrice:       price,
		InitialNotional:  notional,
		Leverage:         leverage,
		LiquidationPrice: LiquidationPrice(mode, price, leverage),
	}
	e.acct.Positions = append(e.acct.Positions, lot)

	signed := qty
	if mode == MarginShort {
		signed = -qty
	}
	e.appendTransactionLocked(Transaction{
		LotID:           lot.ID,
		Date:            lot.OpenDate,
		Mode:            mode,
		Action:          openAction(mode),
		Quantity:        signed,
		Price:           price,
		CashFlow:        -margin,
		OpeningNotional: notional,
		Fee:             fee,
		Leverage:        leverage,
	})

	e.log.Debug("lot opened",
		zap.String("lot", lot.ID),
		zap.Stringer("mode", mode),
		zap.Float64("qty", qty),
		zap.Float64("price", price),
		zap.Float64("leverage", leverage),
		zap.Float64("fee", fee),
	)
	if mode == Spot {
		e.notify(LevelSuccess, "Bought %v %s at $%.2f; fee $%.2f, cash $%.2f.",
			qty, e.cfg.Asset.Unit, price, fee, e.acct.Cash)
	} else {
		e.notify(LevelSuccess, "Opened %s %v %s at $%.2f x%v; margin $%.2f, fee $%.2f, liquidation $%.2f.",
			mode, qty, e.cfg.Asset.Unit, price, leverage, margin, fee, lot.LiquidationPrice)
	}

	e.checkRuinLocked()
	return lot, nil
}
