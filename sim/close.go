package sim

import (
	"fmt"

	"go.uber.org/zap"
)

// Close closes qty of a lot at price. A close of the whole quantity removes
// the lot; a partial close shrinks it and scales its notional so the margin
// still held matches what remains.
func (e *Engine) Close(lotID string, qty, price float64) (Transaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.acct.Active {
		return Transaction{}, fmt.Errorf("close %s: %w", lotID, ErrSimulationTerminated)
	}
	i := e.acct.lotIndex(lotID)
	if i < 0 {
		return Transaction{}, fmt.Errorf("close %s: %w", lotID, ErrLotNotFound)
	}
	lot := e.acct.Positions[i]
	if !finite(qty) || qty <= 0 {
		return Transaction{}, fmt.Errorf("close %s: %w: %v", lotID, ErrInvalidQuantity, qty)
	}
	if qty > lot.Quantity {
		return Transaction{}, fmt.Errorf("close %s: %w: %v > %v", lotID, ErrOverCloseQuantity, qty, lot.Quantity)
	}
	if !finite(price) || price <= 0 {
		return Transaction{}, fmt.Errorf("close %s: %w: %v", lotID, ErrInvalidPrice, price)
	}

	tx := e.closeLocked(i, qty, price, manualCloseAction(lot.Mode))
	e.checkRuinLocked()
	return tx, nil
}

// closeLocked applies a validated close. It never checks ruin so a cascade
// of closes in one bar finishes before the account is valued.
func (e *Engine) closeLocked(i int, qty, price float64, action string) Transaction {
	lot := &e.acct.Positions[i]

	fee := qty * price * e.cfg.Fees.Rate(lot.Mode)
	pl := pnl(lot.Mode, lot.EntryPrice, price, qty)
	share := qty / lot.Quantity
	closedNotional := lot.InitialNotional * share

	var returned float64
	e.acct.Cash -= fee
	if lot.Mode == Spot {
		returned = qty * price
		e.acct.Cash += returned
	} else {
		returned = lot.Margin() * share
		e.acct.Cash += returned + pl
	}

	tx := Transaction{
		LotID:           lot.ID,
		Date:            e.currentDate(),
		Mode:            lot.Mode,
		Action:          action,
		Quantity:        -qty,
		Price:           price,
		CashFlow:        returned,
		RealizedPL:      &pl,
		OpeningNotional: closedNotional,
		Fee:             fee,
		Leverage:        lot.Leverage,
	}

	full := qty == lot.Quantity
	lotID, mode := lot.ID, lot.Mode
	if full {
		e.acct.Positions = append(e.acct.Positions[:i], e.acct.Positions[i+1:]...)
	} else {
		lot.InitialNotional *= (lot.Quantity - qty) / lot.Quantity
		lot.Quantity -= qty
	}
	tx = e.appendTransactionLocked(tx)

	e.log.Debug("lot closed",
		zap.String("lot", lotID),
		zap.String("action", action),
		zap.Float64("qty", qty),
		zap.Float64("price", price),
		zap.Float64("pl", pl),
		zap.Float64("fee", fee),
		zap.Bool("full", full),
	)
	level := LevelSuccess
	if pl < 0 {
		level = LevelWarning
	}
	if full {
		e.notify(level, "%s: closed %s %v at $%.2f, P&L $%.2f, fee $%.2f.",
			action, mode, qty, price, pl, fee)
	} else {
		e.notify(level, "%s: partially closed %s %v at $%.2f, P&L $%.2f, fee $%.2f; %v remain.",
			action, mode, qty, price, pl, fee, e.acct.Positions[i].Quantity)
	}
	return tx
}
