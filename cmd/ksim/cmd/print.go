package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/rustyeddy/ksim/journal"
	"github.com/rustyeddy/ksim/pkg/id"
	"github.com/rustyeddy/ksim/sim"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printStatus(w io.Writer, st sim.State) {
	b := st.Bar
	fmt.Fprintf(w, "bar %d  %s  O %.2f  H %.2f  L %.2f  C %.2f\n",
		st.Index, b.Date.Format(time.DateOnly), b.Open, b.High, b.Low, b.Close)
	fmt.Fprintf(w, "MA5 %.2f  MA20 %.2f  MA60 %.2f  RSI14 %.1f\n", b.MA5, b.MA20, b.MA60, b.RSI14)

	tw := newTable(w)
	fmt.Fprintf(tw, "cash\t%.2f\n", st.Account.Cash)
	fmt.Fprintf(tw, "margin held\t%.2f\n", st.MarginHeld)
	fmt.Fprintf(tw, "unrealized P&L\t%.2f\n", st.UnrealizedPL)
	fmt.Fprintf(tw, "total assets\t%.2f\n", st.AssetValue)
	if st.Spot.Quantity > 0 {
		fmt.Fprintf(tw, "spot\t%g @ %.2f avg, P&L %.2f\n", st.Spot.Quantity, st.Spot.AvgEntry, st.Spot.UnrealizedPL)
	}
	if t := st.Account.Termination; t != nil {
		fmt.Fprintf(tw, "ended\t%s at bar %d\n", t.Reason, t.Index)
	}
	tw.Flush()
}

func printLots(w io.Writer, st sim.State) {
	if len(st.Account.Positions) == 0 {
		fmt.Fprintln(w, "no open lots")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "#\tID\tMODE\tQTY\tENTRY\tLEV\tLIQ\tSL\tTP\tP&L")
	for i, l := range st.Account.Positions {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%g\t%.2f\t%g\t%.2f\t%.2f\t%.2f\t%.2f\n",
			i+1, id.Short(l.ID), l.Mode, l.Quantity, l.EntryPrice, l.Leverage,
			l.LiquidationPrice, l.StopLoss, l.TakeProfit, l.UnrealizedPL(st.Bar.Open))
	}
	tw.Flush()
}

func printHistory(w io.Writer, txs []sim.Transaction) {
	if len(txs) == 0 {
		fmt.Fprintln(w, "no transactions")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "SEQ\tDATE\tLOT\tACTION\tQTY\tPRICE\tCASH FLOW\tFEE\tP&L\tP&L%")
	for _, tx := range txs {
		pl, pct := "", ""
		if tx.RealizedPL != nil {
			pl = fmt.Sprintf("%.2f", *tx.RealizedPL)
		}
		if p, ok := tx.PLPercent(); ok {
			pct = fmt.Sprintf("%.2f", p)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%g\t%.2f\t%.2f\t%.2f\t%s\t%s\n",
			tx.Seq, tx.Date.Format(time.DateOnly), id.Short(tx.LotID), tx.Action,
			tx.Quantity, tx.Price, tx.CashFlow, tx.Fee, pl, pct)
	}
	tw.Flush()
}

func printRecords(w io.Writer, recs []journal.TransactionRecord) {
	tw := newTable(w)
	fmt.Fprintln(tw, "SEQ\tDATE\tMODE\tACTION\tQTY\tPRICE\tCASH FLOW\tFEE\tP&L")
	for _, r := range recs {
		pl := ""
		if r.RealizedPL != nil {
			pl = fmt.Sprintf("%.2f", *r.RealizedPL)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%g\t%.2f\t%.2f\t%.2f\t%s\n",
			r.Seq, r.Date.Format(time.DateOnly), r.Mode, r.Action, r.Quantity, r.Price, r.CashFlow, r.Fee, pl)
	}
	tw.Flush()
}

func printSummary(w io.Writer, s journal.Summary) {
	tw := newTable(w)
	fmt.Fprintf(tw, "run\t%s\n", s.RunID)
	fmt.Fprintf(tw, "ticker\t%s (%s)\n", s.Ticker, s.AssetClass)
	fmt.Fprintf(tw, "initial capital\t%.2f\n", s.InitialCapital)
	fmt.Fprintf(tw, "final value\t%.2f\n", s.FinalValue)
	fmt.Fprintf(tw, "net P&L\t%.2f (%.2f%%)\n", s.NetPL, s.ReturnPct)
	fmt.Fprintf(tw, "realized P&L\t%.2f\n", s.NetRealized)
	fmt.Fprintf(tw, "fees\t%.2f\n", s.Fees)
	fmt.Fprintf(tw, "opens / closes\t%d / %d\n", s.Opens, s.Closes)
	fmt.Fprintf(tw, "wins / losses\t%d / %d\n", s.Wins, s.Losses)
	ended := s.Termination
	if ended == "" {
		ended = "still active"
	}
	fmt.Fprintf(tw, "ended by\t%s\n", ended)
	tw.Flush()
}
