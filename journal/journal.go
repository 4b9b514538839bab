// journal/journal.go
package journal

import "time"

// TransactionRecord is one ledger row: an open (positive quantity for long
// modes, negative for a short sale) or a close (always negative quantity).
type TransactionRecord struct {
	RunID           string
	Seq             int
	LotID           string
	Date            time.Time
	Mode            string
	Action          string
	Quantity        float64
	Price           float64
	CashFlow        float64
	RealizedPL      *float64 // nil for opens
	OpeningNotional float64
	Fee             float64
	Leverage        float64
}

// EquitySnapshot is the account state after a bar advance or settlement.
type EquitySnapshot struct {
	RunID        string
	Index        int
	Date         time.Time
	Cash         float64
	AssetValue   float64
	UnrealizedPL float64
	MarginHeld   float64
	OpenLots     int
	Active       bool
}

type Journal interface {
	RecordTransaction(TransactionRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Memory keeps records in slices. Useful for tests and for building a
// summary at the end of a run.
type Memory struct {
	Transactions []TransactionRecord
	Equity       []EquitySnapshot
	Closed       bool
}

func (m *Memory) RecordTransaction(rec TransactionRecord) error {
	m.Transactions = append(m.Transactions, rec)
	return nil
}

func (m *Memory) RecordEquity(rec EquitySnapshot) error {
	m.Equity = append(m.Equity, rec)
	return nil
}

func (m *Memory) Close() error {
	m.Closed = true
	return nil
}

// Tee fans records out to several journals. The first error wins but every
// journal still sees the record.
type Tee []Journal

func (t Tee) RecordTransaction(rec TransactionRecord) error {
	var first error
	for _, j := range t {
		if err := j.RecordTransaction(rec); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (t Tee) RecordEquity(rec EquitySnapshot) error {
	var first error
	for _, j := range t {
		if err := j.RecordEquity(rec); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (t Tee) Close() error {
	var first error
	for _, j := range t {
		if err := j.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
