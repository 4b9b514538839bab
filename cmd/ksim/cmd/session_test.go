package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rustyeddy/ksim/config"
	"github.com/rustyeddy/ksim/journal"
	"github.com/rustyeddy/ksim/market"
	"github.com/rustyeddy/ksim/sim"
)

// risingBars climbs one dollar a day from 100.
func risingBars(n int) []market.Bar {
	t0 := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]market.Bar, n)
	for i := range bars {
		c := 100 + float64(i)
		bars[i] = market.Bar{
			Date:   t0.AddDate(0, 0, i),
			Open:   c - 0.5,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Data = config.DataConfig{Ticker: "TEST", ViewDays: 10, MinSimDays: 20, Seed: 1}
	return cfg
}

func newTestSession(t *testing.T, cfg *config.Config) (*session, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	src := market.MemorySource{"TEST": risingBars(200)}
	s, err := newSession(context.Background(), cfg, src, zap.NewNop(), out)
	require.NoError(t, err)
	return s, out
}

func TestNewSessionWindow(t *testing.T) {
	s, _ := newTestSession(t, testConfig())
	st := s.engine.Snapshot()
	assert.Equal(t, 10, st.Index)
	assert.True(t, st.Active())
	assert.Equal(t, 100000.0, st.Account.Cash)
	assert.NotEmpty(t, s.runID)
	assert.Equal(t, "TEST", s.ticker)
}

func TestNewSessionMissingTicker(t *testing.T) {
	cfg := testConfig()
	cfg.Data.Ticker = "NOPE"
	_, err := newSession(context.Background(), cfg, market.MemorySource{}, zap.NewNop(), &bytes.Buffer{})
	assert.ErrorIs(t, err, market.ErrNotFound)
}

func TestExecTrading(t *testing.T) {
	s, out := newTestSession(t, testConfig())

	require.NoError(t, s.exec([]string{"buy", "100"}))
	require.NoError(t, s.exec([]string{"short", "50%", "5"}))

	st := s.engine.Snapshot()
	require.Len(t, st.Account.Positions, 2)
	assert.Equal(t, 100.0, st.Account.Positions[0].Quantity)
	short := st.Account.Positions[1]
	assert.Equal(t, sim.MarginShort, short.Mode)
	assert.Equal(t, 5.0, short.Leverage)
	assert.Greater(t, short.Quantity, 0.0)

	require.NoError(t, s.exec([]string{"close", "#1", "50%"}))
	lot, ok := s.engine.Snapshot().Account.Lot(st.Account.Positions[0].ID)
	require.True(t, ok)
	assert.Equal(t, 50.0, lot.Quantity)

	require.NoError(t, s.exec([]string{"sl", "#2", "500"}))
	require.NoError(t, s.exec([]string{"tp", "#2", "50"}))
	got, _ := s.engine.Snapshot().Account.Lot(short.ID)
	assert.Equal(t, 500.0, got.StopLoss)
	assert.Equal(t, 50.0, got.TakeProfit)

	require.NoError(t, s.exec([]string{"next", "3"}))
	assert.Equal(t, 13, s.engine.Snapshot().Index)

	require.NoError(t, s.exec([]string{"lots"}))
	require.NoError(t, s.exec([]string{"history"}))
	assert.Contains(t, out.String(), "MarginShort")
	assert.Contains(t, out.String(), sim.ActionManualSellClose)

	require.NoError(t, s.exec([]string{"flatten"}))
	assert.Empty(t, s.engine.Snapshot().Account.Positions)
	require.NoError(t, s.exec([]string{"settle"}))
	assert.False(t, s.engine.Snapshot().Active())

	assert.ErrorIs(t, s.exec([]string{"buy", "1"}), sim.ErrSimulationTerminated)
}

func TestExecErrors(t *testing.T) {
	s, _ := newTestSession(t, testConfig())

	assert.NoError(t, s.exec(nil))
	assert.ErrorContains(t, s.exec([]string{"dance"}), "unknown command")
	assert.ErrorContains(t, s.exec([]string{"long", "10"}), "usage")
	assert.ErrorContains(t, s.exec([]string{"buy", "ten"}), "bad quantity")
	assert.ErrorContains(t, s.exec([]string{"buy", "150%"}), "bad percentage")
	assert.ErrorContains(t, s.exec([]string{"long", "10", "x"}), "bad leverage")
	assert.ErrorContains(t, s.exec([]string{"buy", "NaN"}), "bad quantity")
	assert.ErrorContains(t, s.exec([]string{"buy", "Inf%"}), "bad percentage")
	assert.ErrorContains(t, s.exec([]string{"long", "10", "NaN"}), "bad leverage")
	assert.ErrorContains(t, s.exec([]string{"sl", "#1", "-Inf"}), "bad price")
	assert.ErrorContains(t, s.exec([]string{"next", "0"}), "bad bar count")
	assert.ErrorIs(t, s.exec([]string{"close", "1", "10"}), sim.ErrLotNotFound)
	assert.ErrorIs(t, s.exec([]string{"long", "10", "50"}), sim.ErrInvalidLeverage)
	assert.ErrorIs(t, s.exec([]string{"quit"}), errQuit)
}

func TestPlayReadsCommands(t *testing.T) {
	s, out := newTestSession(t, testConfig())

	in := strings.NewReader("buy 10\nbogus\nlots\nquit\nbuy 10\n")
	require.NoError(t, s.play(context.Background(), in))

	assert.Len(t, s.engine.Snapshot().Account.Positions, 1)
	text := out.String()
	assert.Contains(t, text, "[success]")
	assert.Contains(t, text, "error: unknown command")
	assert.Contains(t, text, "ENTRY")
}

func TestResolveLotAndParseAmount(t *testing.T) {
	st := sim.State{Account: sim.Account{Positions: []sim.Lot{{ID: "01HAAAAAAAAAAAAAAAAAAAAB12"}, {ID: "01HAAAAAAAAAAAAAAAAAAAAC34"}}}}

	l, err := resolveLot(st, "#2")
	require.NoError(t, err)
	assert.Equal(t, "01HAAAAAAAAAAAAAAAAAAAAC34", l.ID)
	l, err = resolveLot(st, "2")
	require.NoError(t, err)
	assert.Equal(t, "01HAAAAAAAAAAAAAAAAAAAAC34", l.ID)
	_, err = resolveLot(st, "#3")
	assert.ErrorIs(t, err, sim.ErrLotNotFound)

	// A digit-only suffix wins over the position it collides with.
	digits := sim.State{Account: sim.Account{Positions: []sim.Lot{{ID: "01HAAAAAAAAAAAAAAAAAAAAB12"}, {ID: "01HAAAAAAAAAAAAAAAAAAAAAA1"}}}}
	l, err = resolveLot(digits, "1")
	require.NoError(t, err)
	assert.Equal(t, "01HAAAAAAAAAAAAAAAAAAAAAA1", l.ID)
	l, err = resolveLot(digits, "#1")
	require.NoError(t, err)
	assert.Equal(t, "01HAAAAAAAAAAAAAAAAAAAAB12", l.ID)
	l, err = resolveLot(st, "b12")
	require.NoError(t, err)
	assert.Equal(t, "01HAAAAAAAAAAAAAAAAAAAAB12", l.ID)
	_, err = resolveLot(st, "zz")
	assert.ErrorIs(t, err, sim.ErrLotNotFound)
	_, err = resolveLot(st, "A")
	assert.Error(t, err)

	_, _, err = parseAmount("NaN")
	assert.Error(t, err)
	_, _, err = parseAmount("+Inf")
	assert.Error(t, err)

	qty, pct, err := parseAmount("12.5")
	require.NoError(t, err)
	assert.Equal(t, 12.5, qty)
	assert.Zero(t, pct)
	qty, pct, err = parseAmount("25%")
	require.NoError(t, err)
	assert.Zero(t, qty)
	assert.Equal(t, 25.0, pct)
}

func TestRunStepsWithSQLiteJournal(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.Journal = config.JournalConfig{
		Type:       "sqlite",
		DBPath:     filepath.Join(dir, "runs.db"),
		ReportPath: filepath.Join(dir, "run.org"),
	}
	cfg.Steps = []config.Step{
		{Action: config.StepBuy, Qty: 100},
		{Action: config.StepLong, Qty: 10, Leverage: 4},
		{Action: config.StepLong, Qty: 10, Leverage: 4}, // rejected, already long
		{Action: config.StepStops, Lot: 1, TakeProfit: 1000},
		{Action: config.StepNext, Bars: 5},
		{Action: config.StepClose, Lot: 2, Percent: 100},
		{Action: config.StepSettle},
	}
	require.NoError(t, cfg.Validate())

	s, out := newTestSession(t, cfg)
	require.NoError(t, s.runSteps(context.Background(), cfg.Steps))
	assert.Contains(t, out.String(), "step 3 (long)")

	sum, err := s.finish()
	require.NoError(t, err)
	assert.Equal(t, s.runID, sum.RunID)
	assert.Equal(t, "ManualSettlement", sum.Termination)
	assert.Equal(t, 2, sum.Opens)
	assert.Equal(t, 2, sum.Closes)
	assert.Equal(t, 2, sum.Wins)
	assert.Greater(t, sum.FinalValue, 100000.0)

	report, err := os.ReadFile(cfg.Journal.ReportPath)
	require.NoError(t, err)
	assert.Contains(t, string(report), s.runID)

	j, err := journal.NewSQLite(cfg.Journal.DBPath)
	require.NoError(t, err)
	defer j.Close()
	recs, err := j.ListTransactions(context.Background(), s.runID)
	require.NoError(t, err)
	assert.Len(t, recs, 4)
	eq, err := j.ListEquity(context.Background(), s.runID)
	require.NoError(t, err)
	// start, five advances, settlement
	assert.Len(t, eq, 7)

	var buf bytes.Buffer
	printSummary(&buf, sum)
	assert.Contains(t, buf.String(), "ManualSettlement")
}
