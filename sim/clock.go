package sim

import "go.uber.org/zap"

// Advance moves to the next bar, fires any liquidation and stop triggers on
// it, then checks for ruin. On the last bar it instead settles every lot at
// that bar's close and ends the run. It reports whether the index moved.
func (e *Engine) Advance() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.advanceLocked()
}

// AdvanceN calls Advance up to n times and stops early once the run ends.
// It returns the number of bars moved.
func (e *Engine) AdvanceN(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	moved := 0
	for i := 0; i < n && e.acct.Active; i++ {
		if e.advanceLocked() {
			moved++
		}
	}
	return moved
}

func (e *Engine) advanceLocked() bool {
	if !e.acct.Active {
		return false
	}
	if e.checkRuinLocked() {
		e.recordEquityLocked()
		return false
	}

	if e.idx >= e.series.Last() {
		b := e.currentBar()
		e.notify(LevelInfo, "Reached the last bar; settling all lots at close $%.2f.", b.Close)
		e.settleLocked(b.Close)
		e.checkRuinLocked()
		e.terminateLocked(DataExhausted)
		e.recordEquityLocked()
		return false
	}

	e.idx++
	b := e.currentBar()

	// one snapshot of the bar for every lot
	e.applyTriggersLocked(e.scanTriggersLocked(b))
	e.checkRuinLocked()
	e.recordEquityLocked()

	e.log.Debug("advanced",
		zap.Int("index", e.idx),
		zap.Time("date", b.Date),
		zap.Float64("cash", e.acct.Cash),
		zap.Int("lots", len(e.acct.Positions)),
	)
	return true
}

// SettleAll closes every open lot. With forceEnd it settles at the current
// close and ends the run with ManualSettlement; otherwise it settles at the
// open and the run continues.
func (e *Engine) SettleAll(forceEnd bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.acct.Active {
		return ErrSimulationTerminated
	}

	b := e.currentBar()
	price := b.Open
	if forceEnd {
		price = b.Close
	}
	if n := len(e.acct.Positions); n > 0 {
		e.notify(LevelInfo, "Settling %d lots at $%.2f.", n, price)
	}
	e.settleLocked(price)
	e.checkRuinLocked()

	if forceEnd {
		e.terminateLocked(ManualSettlement)
		if e.acct.Termination.Reason == ManualSettlement {
			e.notify(LevelSuccess, "All lots settled; final assets $%.2f.", e.acct.Cash)
		}
	}
	e.recordEquityLocked()
	return nil
}

func (e *Engine) settleLocked(price float64) {
	ids := make([]string, len(e.acct.Positions))
	for i, l := range e.acct.Positions {
		ids[i] = l.ID
	}
	for _, lotID := range ids {
		i := e.acct.lotIndex(lotID)
		if i < 0 {
			continue
		}
		l := e.acct.Positions[i]
		e.closeLocked(i, l.Quantity, price, settleAction(l.Mode))
	}
}
