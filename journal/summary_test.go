package journal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	t.Parallel()

	ledger := sampleLedger("run-1")
	s := Summarize(ledger, 100000, 100084.5)

	assert.Equal(t, 2, s.Opens)
	assert.Equal(t, 2, s.Closes)
	assert.Equal(t, 1, s.Wins)
	assert.Equal(t, 1, s.Losses)
	assert.Equal(t, 250.0, s.NetRealized)
	assert.Equal(t, 400.0, s.GrossProfit)
	assert.Equal(t, 150.0, s.GrossLoss)
	assert.Equal(t, 165.5, s.Fees)
	assert.Equal(t, 84.5, s.NetPL)
	assert.InDelta(t, 0.0845, s.ReturnPct, 1e-9)
	assert.InDelta(t, 0.5, s.WinRate, 1e-9)
	assert.InDelta(t, 2.6667, s.ProfitFactor, 1e-9)
	assert.True(t, s.Start.Equal(ledger[0].Date))
	assert.True(t, s.End.Equal(ledger[3].Date))
}

func TestSummarizeEmpty(t *testing.T) {
	t.Parallel()

	s := Summarize(nil, 100000, 100000)
	assert.Zero(t, s.Closes)
	assert.Zero(t, s.WinRate)
	assert.Zero(t, s.ProfitFactor)
	assert.Zero(t, s.NetPL)
	assert.True(t, s.Start.IsZero())
}

func TestFormatOrg(t *testing.T) {
	t.Parallel()

	s := Summarize(sampleLedger("run-1"), 100000, 100084.5)
	s.RunID = "run-1"
	s.Ticker = "TSLA"
	s.AssetClass = "Stock"
	s.Termination = "DataExhausted"
	s.Created = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.Notes = []string{"short got stopped"}

	out, err := s.FormatOrg()
	require.NoError(t, err)

	assert.Contains(t, out, "* RUN: TSLA (Stock)")
	assert.Contains(t, out, ":RUN_ID:      run-1")
	assert.Contains(t, out, ":START_DATE:  2024-04-10")
	assert.Contains(t, out, ":NET_PL:      84.50")
	assert.Contains(t, out, ":ENDED_BY:    DataExhausted")
	assert.Contains(t, out, "- Win Rate:         *50.00%*")
	assert.Contains(t, out, "- Profit Factor:    *2.67*")
	assert.Contains(t, out, "| Losses  | 1 |")
	assert.Contains(t, out, "- short got stopped")
}

func TestWriteOrg(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run.org")
	s := Summarize(nil, 1000, 900)
	require.NoError(t, s.WriteOrg(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), ":NET_PL:      -100.00")
	assert.Contains(t, string(data), "(still active)")
	assert.Contains(t, string(data), "*(n/a)*")
}
