package sim

import (
	"go.uber.org/zap"

	"github.com/rustyeddy/ksim/market"
	"github.com/rustyeddy/ksim/pkg/id"
)

type trigger struct {
	lotID string
	price float64
	kind  triggerKind
	mode  Mode
}

// scanTriggersLocked tests every lot against b before anything is closed.
func (e *Engine) scanTriggersLocked(b market.Bar) []trigger {
	var out []trigger
	for _, l := range e.acct.Positions {
		if price, kind, hit := l.checkExit(b); hit {
			out = append(out, trigger{lotID: l.ID, price: price, kind: kind, mode: l.Mode})
		}
	}
	return out
}

func (e *Engine) applyTriggersLocked(ts []trigger) {
	for _, t := range ts {
		i := e.acct.lotIndex(t.lotID)
		if i < 0 {
			continue
		}
		qty := e.acct.Positions[i].Quantity

		var action string
		switch t.kind {
		case triggerLiquidation:
			action = ActionLiquidateLong
			if t.mode == MarginShort {
				action = ActionLiquidateShort
			}
			e.notify(LevelWarning, "Forced liquidation of %s lot %s at $%.2f.", t.mode, id.Short(t.lotID), t.price)
		case triggerStopLoss:
			action = stopCloseAction(t.mode)
			e.notify(LevelWarning, "Stop-loss hit on %s lot %s at $%.2f.", t.mode, id.Short(t.lotID), t.price)
		default:
			action = stopCloseAction(t.mode)
			e.notify(LevelSuccess, "Take-profit hit on %s lot %s at $%.2f.", t.mode, id.Short(t.lotID), t.price)
		}
		e.log.Info("trigger",
			zap.String("lot", t.lotID),
			zap.String("action", action),
			zap.Float64("price", t.price),
			zap.Int("index", e.idx),
		)
		e.closeLocked(i, qty, t.price, action)
	}
}
