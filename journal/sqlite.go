package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordTransaction(t TransactionRecord) error {
	var realized sql.NullFloat64
	if t.RealizedPL != nil {
		realized = sql.NullFloat64{Float64: *t.RealizedPL, Valid: true}
	}

	_, err := j.db.Exec(`
		INSERT INTO transactions
		(run_id, seq, lot_id, date, mode, action, quantity, price, cash_flow, realized_pl, opening_notional, fee, leverage)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.RunID, t.Seq, t.LotID, t.Date, t.Mode, t.Action, t.Quantity, t.Price,
		t.CashFlow, realized, t.OpeningNotional, t.Fee, t.Leverage,
	)
	return err
}

func (j *SQLiteJournal) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(run_id, bar_index, date, cash, asset_value, unrealized_pl, margin_held, open_lots, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Index, e.Date, e.Cash, e.AssetValue, e.UnrealizedPL, e.MarginHeld, e.OpenLots, e.Active,
	)
	return err
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
