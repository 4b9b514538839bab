package cmd

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rustyeddy/ksim/market"
	"github.com/rustyeddy/ksim/sim"
)

// Trades and manual closes fill at the current bar's open.

func (s *session) open(mode sim.Mode, qty, pct, leverage float64) error {
	st := s.engine.Snapshot()
	price := st.Bar.Open
	if pct > 0 {
		qty = s.percentQuantity(st, mode, pct, price, leverage)
	}
	_, err := s.engine.Open(mode, qty, price, leverage)
	return err
}

// percentQuantity is pct of the largest lot the cash covers, fee included.
func (s *session) percentQuantity(st sim.State, mode sim.Mode, pct, price, leverage float64) float64 {
	cfg := s.engine.Config()
	if mode == sim.Spot || leverage < 1 {
		leverage = 1
	}
	perUnit := price/leverage + price*cfg.Fees.Rate(mode)
	if perUnit <= 0 {
		return 0
	}
	return market.QuantityForPercent(st.Account.Cash/perUnit, pct, cfg.Asset.MinQty)
}

func (s *session) close(ref string, qty, pct float64) error {
	st := s.engine.Snapshot()
	lot, err := resolveLot(st, ref)
	if err != nil {
		return err
	}
	switch {
	case pct >= 100:
		qty = lot.Quantity
	case pct > 0:
		qty = market.QuantityForPercent(lot.Quantity, pct, s.engine.Config().Asset.MinQty)
	}
	_, err = s.engine.Close(lot.ID, qty, st.Bar.Open)
	return err
}

// setStops changes the levels that are non-nil and keeps the others.
func (s *session) setStops(ref string, sl, tp *float64) error {
	lot, err := resolveLot(s.engine.Snapshot(), ref)
	if err != nil {
		return err
	}
	stop, take := lot.StopLoss, lot.TakeProfit
	if sl != nil {
		stop = *sl
	}
	if tp != nil {
		take = *tp
	}
	changed, err := s.engine.SetStops(lot.ID, stop, take)
	if err == nil && !changed {
		fmt.Fprintln(s.out, "stops unchanged")
	}
	return err
}

// resolveLot finds an open lot. "#N" is the 1-based position in the lots
// table. Anything else is matched as an id suffix first; a bare number that
// matches no id falls back to the position.
func resolveLot(st sim.State, ref string) (sim.Lot, error) {
	lots := st.Account.Positions
	if pos, ok := strings.CutPrefix(ref, "#"); ok {
		if l, ok := lotAt(lots, pos); ok {
			return l, nil
		}
		return sim.Lot{}, fmt.Errorf("lot %q: %w", ref, sim.ErrLotNotFound)
	}

	suffix := strings.ToUpper(ref)
	var found []sim.Lot
	for _, l := range lots {
		if strings.HasSuffix(l.ID, suffix) {
			found = append(found, l)
		}
	}
	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		if l, ok := lotAt(lots, ref); ok {
			return l, nil
		}
		return sim.Lot{}, fmt.Errorf("lot %q: %w", ref, sim.ErrLotNotFound)
	}
	return sim.Lot{}, fmt.Errorf("lot %q matches %d lots", ref, len(found))
}

func lotAt(lots []sim.Lot, pos string) (sim.Lot, bool) {
	n, err := strconv.Atoi(pos)
	if err != nil || n < 1 || n > len(lots) {
		return sim.Lot{}, false
	}
	return lots[n-1], true
}

// parseAmount reads "250" as a quantity and "50%" as a percentage.
func parseAmount(arg string) (qty, pct float64, err error) {
	if p, ok := strings.CutSuffix(arg, "%"); ok {
		pct, err = parseNumber(p)
		if err != nil || pct <= 0 || pct > 100 {
			return 0, 0, fmt.Errorf("bad percentage %q", arg)
		}
		return 0, pct, nil
	}
	qty, err = parseNumber(arg)
	if err != nil {
		return 0, 0, fmt.Errorf("bad quantity %q", arg)
	}
	return qty, 0, nil
}

// parseNumber is strconv.ParseFloat without NaN or infinities.
func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}
