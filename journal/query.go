package journal

import (
	"context"
	"database/sql"
)

// ListTransactions returns a run's ledger in the order it was written.
func (j *SQLiteJournal) ListTransactions(ctx context.Context, runID string) ([]TransactionRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, seq, lot_id, date, mode, action, quantity, price, cash_flow, realized_pl, opening_notional, fee, leverage
		FROM transactions
		WHERE run_id = ?
		ORDER BY seq ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TransactionRecord
	for rows.Next() {
		var (
			rec      TransactionRecord
			realized sql.NullFloat64
		)
		if err := rows.Scan(
			&rec.RunID,
			&rec.Seq,
			&rec.LotID,
			&rec.Date,
			&rec.Mode,
			&rec.Action,
			&rec.Quantity,
			&rec.Price,
			&rec.CashFlow,
			&realized,
			&rec.OpeningNotional,
			&rec.Fee,
			&rec.Leverage,
		); err != nil {
			return nil, err
		}
		if realized.Valid {
			pl := realized.Float64
			rec.RealizedPL = &pl
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquity returns a run's equity curve ordered by bar index.
func (j *SQLiteJournal) ListEquity(ctx context.Context, runID string) ([]EquitySnapshot, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, bar_index, date, cash, asset_value, unrealized_pl, margin_held, open_lots, active
		FROM equity
		WHERE run_id = ?
		ORDER BY rowid ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(
			&e.RunID,
			&e.Index,
			&e.Date,
			&e.Cash,
			&e.AssetValue,
			&e.UnrealizedPL,
			&e.MarginHeld,
			&e.OpenLots,
			&e.Active,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListRuns returns every run id that has at least one transaction.
func (j *SQLiteJournal) ListRuns(ctx context.Context) ([]string, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id FROM transactions GROUP BY run_id ORDER BY MIN(rowid)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
