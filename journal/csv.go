package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

var (
	transactionHeader = []string{"run_id", "seq", "lot_id", "date", "mode", "action", "quantity", "price",
		"cash_flow", "realized_pl", "opening_notional", "fee", "leverage"}
	equityHeader = []string{"run_id", "index", "date", "cash", "asset_value", "unrealized_pl",
		"margin_held", "open_lots", "active"}
)

type CSVJournal struct {
	transactions *csv.Writer
	equity       *csv.Writer
	tf, ef       *os.File
}

func NewCSV(transactionsPath, equityPath string) (*CSVJournal, error) {
	tf, err := os.Create(transactionsPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	j := &CSVJournal{
		transactions: csv.NewWriter(tf),
		equity:       csv.NewWriter(ef),
		tf:           tf,
		ef:           ef,
	}
	if err := j.write(j.transactions, transactionHeader); err != nil {
		j.closeFiles()
		return nil, err
	}
	if err := j.write(j.equity, equityHeader); err != nil {
		j.closeFiles()
		return nil, err
	}
	return j, nil
}

func (j *CSVJournal) RecordTransaction(t TransactionRecord) error {
	realized := ""
	if t.RealizedPL != nil {
		realized = f(*t.RealizedPL)
	}
	return j.write(j.transactions, []string{
		t.RunID,
		strconv.Itoa(t.Seq),
		t.LotID,
		t.Date.Format(time.DateOnly),
		t.Mode,
		t.Action,
		f(t.Quantity),
		f(t.Price),
		f(t.CashFlow),
		realized,
		f(t.OpeningNotional),
		f(t.Fee),
		f(t.Leverage),
	})
}

func (j *CSVJournal) RecordEquity(e EquitySnapshot) error {
	return j.write(j.equity, []string{
		e.RunID,
		strconv.Itoa(e.Index),
		e.Date.Format(time.DateOnly),
		f(e.Cash),
		f(e.AssetValue),
		f(e.UnrealizedPL),
		f(e.MarginHeld),
		strconv.Itoa(e.OpenLots),
		strconv.FormatBool(e.Active),
	})
}

func (j *CSVJournal) write(w *csv.Writer, row []string) error {
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (j *CSVJournal) Close() error {
	j.transactions.Flush()
	if err := j.transactions.Error(); err != nil {
		j.closeFiles()
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		j.closeFiles()
		return err
	}
	return j.closeFiles()
}

func (j *CSVJournal) closeFiles() error {
	err := j.tf.Close()
	if e := j.ef.Close(); err == nil {
		err = e
	}
	return err
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
