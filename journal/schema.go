// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS transactions (
	run_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	lot_id TEXT NOT NULL,
	date DATETIME NOT NULL,
	mode TEXT NOT NULL,
	action TEXT NOT NULL,
	quantity REAL NOT NULL,
	price REAL NOT NULL,
	cash_flow REAL NOT NULL,
	realized_pl REAL,
	opening_notional REAL NOT NULL,
	fee REAL NOT NULL,
	leverage REAL NOT NULL,
	PRIMARY KEY (run_id, seq)
);

CREATE TABLE IF NOT EXISTS equity (
	run_id TEXT NOT NULL,
	bar_index INTEGER NOT NULL,
	date DATETIME NOT NULL,
	cash REAL NOT NULL,
	asset_value REAL NOT NULL,
	unrealized_pl REAL NOT NULL,
	margin_held REAL NOT NULL,
	open_lots INTEGER NOT NULL,
	active BOOLEAN NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_equity_run ON equity(run_id, bar_index);
`
