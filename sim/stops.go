package sim

import (
	"fmt"

	"github.com/rustyeddy/ksim/pkg/id"
)

// SetStops replaces a lot's stop-loss and take-profit; 0 clears either. It
// reports whether anything changed.
func (e *Engine) SetStops(lotID string, stopLoss, takeProfit float64) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.acct.Active {
		return false, fmt.Errorf("set stops %s: %w", lotID, ErrSimulationTerminated)
	}
	if !finite(stopLoss) || !finite(takeProfit) || stopLoss < 0 || takeProfit < 0 {
		return false, fmt.Errorf("set stops %s: %w: sl=%v tp=%v", lotID, ErrInvalidStop, stopLoss, takeProfit)
	}
	i := e.acct.lotIndex(lotID)
	if i < 0 {
		return false, fmt.Errorf("set stops %s: %w", lotID, ErrLotNotFound)
	}

	lot := &e.acct.Positions[i]
	if lot.StopLoss == stopLoss && lot.TakeProfit == takeProfit {
		return false, nil
	}
	lot.StopLoss = stopLoss
	lot.TakeProfit = takeProfit
	e.notify(LevelInfo, "Lot %s stops set: SL $%.2f, TP $%.2f.", id.Short(lotID), stopLoss, takeProfit)
	return true, nil
}
