package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryJournal(t *testing.T) {
	t.Parallel()

	m := &Memory{}
	for _, rec := range sampleLedger("r") {
		require.NoError(t, m.RecordTransaction(rec))
	}
	require.NoError(t, m.RecordEquity(EquitySnapshot{RunID: "r"}))
	require.NoError(t, m.Close())

	assert.Len(t, m.Transactions, 4)
	assert.Len(t, m.Equity, 1)
	assert.True(t, m.Closed)
}

type failingJournal struct{ err error }

func (f failingJournal) RecordTransaction(TransactionRecord) error { return f.err }
func (f failingJournal) RecordEquity(EquitySnapshot) error         { return f.err }
func (f failingJournal) Close() error                              { return f.err }

func TestTeeDeliversToAll(t *testing.T) {
	t.Parallel()

	a, b := &Memory{}, &Memory{}
	boom := assert.AnError
	tee := Tee{a, failingJournal{err: boom}, b}

	err := tee.RecordTransaction(sampleLedger("r")[0])
	assert.ErrorIs(t, err, boom)
	assert.Len(t, a.Transactions, 1)
	assert.Len(t, b.Transactions, 1)

	assert.ErrorIs(t, tee.RecordEquity(EquitySnapshot{}), boom)
	assert.Len(t, b.Equity, 1)

	assert.ErrorIs(t, tee.Close(), boom)
	assert.True(t, a.Closed)
	assert.True(t, b.Closed)
}
