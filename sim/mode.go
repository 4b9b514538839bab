package sim

import (
	"fmt"
	"strings"
)

// Mode is how a lot is held. It picks the fee rate, the liquidation formula
// and the sign of P&L.
type Mode int

const (
	Spot Mode = iota
	MarginLong
	MarginShort
)

func (m Mode) String() string {
	switch m {
	case Spot:
		return "Spot"
	case MarginLong:
		return "MarginLong"
	case MarginShort:
		return "MarginShort"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Leveraged reports whether the lot holds margin rather than the full notional.
func (m Mode) Leveraged() bool { return m == MarginLong || m == MarginShort }

// Long reports whether the lot profits from a rising price.
func (m Mode) Long() bool { return m == Spot || m == MarginLong }

func (m Mode) valid() bool { return m >= Spot && m <= MarginShort }

// ParseMode accepts the enum names plus the short forms used on the command
// line (buy, long, short) and the trade keys Spot_Buy, Margin_Long, Margin_Short.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")) {
	case "spot", "spot_buy", "buy":
		return Spot, nil
	case "marginlong", "margin_long", "long":
		return MarginLong, nil
	case "marginshort", "margin_short", "short":
		return MarginShort, nil
	}
	return Spot, fmt.Errorf("unknown position mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) {
	if !m.valid() {
		return nil, fmt.Errorf("invalid mode %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Action labels written to the ledger.
const (
	ActionSpotBuyOpen      = "Spot buy open"
	ActionMarginBuyOpen    = "Margin buy open"
	ActionMarginSellOpen   = "Margin sell open"
	ActionManualSellClose  = "Manual sell close"
	ActionManualCoverClose = "Manual buy-to-cover close"
	ActionStopSellClose    = "SL/TP sell close"
	ActionStopCoverClose   = "SL/TP buy-to-cover close"
	ActionLiquidateLong    = "Forced liquidation long"
	ActionLiquidateShort   = "Forced liquidation short"
	ActionSettleSellClose  = "Settlement sell close"
	ActionSettleCoverClose = "Settlement buy-to-cover close"
)

func openAction(m Mode) string {
	switch m {
	case MarginLong:
		return ActionMarginBuyOpen
	case MarginShort:
		return ActionMarginSellOpen
	}
	return ActionSpotBuyOpen
}

func manualCloseAction(m Mode) string {
	if m.Long() {
		return ActionManualSellClose
	}
	return ActionManualCoverClose
}

func stopCloseAction(m Mode) string {
	if m.Long() {
		return ActionStopSellClose
	}
	return ActionStopCoverClose
}

func settleAction(m Mode) string {
	if m.Long() {
		return ActionSettleSellClose
	}
	return ActionSettleCoverClose
}
