package cmd

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rustyeddy/ksim/config"
	"github.com/rustyeddy/ksim/journal"
	"github.com/rustyeddy/ksim/market"
	"github.com/rustyeddy/ksim/sim"
)

// session is one run wired to its journals and output.
type session struct {
	cfg    *config.Config
	engine *sim.Engine
	ticker string
	runID  string
	memory *journal.Memory
	sink   journal.Journal // file journal, nil when type is none
	log    *zap.Logger
	out    io.Writer
}

func openJournal(c config.JournalConfig) (journal.Journal, error) {
	switch c.Type {
	case "csv":
		return journal.NewCSV(c.TransactionsFile, c.EquityFile)
	case "sqlite":
		return journal.NewSQLite(c.DBPath)
	}
	return nil, nil
}

func newSession(ctx context.Context, cfg *config.Config, src market.Source, log *zap.Logger, out io.Writer) (*session, error) {
	series, err := src.Series(ctx, cfg.Data.Ticker)
	if err != nil {
		return nil, fmt.Errorf("load series: %w", err)
	}

	seed := cfg.Data.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	run, start, err := market.PrepareRun(series, cfg.Data.ViewDays, cfg.Data.MinSimDays, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, err
	}

	ec, err := cfg.Engine()
	if err != nil {
		return nil, err
	}

	sink, err := openJournal(cfg.Journal)
	if err != nil {
		return nil, fmt.Errorf("create journal: %w", err)
	}

	s := &session{
		cfg:    cfg,
		ticker: series.Ticker,
		runID:  uuid.NewString(),
		memory: &journal.Memory{},
		sink:   sink,
		log:    log,
		out:    out,
	}
	var j journal.Journal = s.memory
	if sink != nil {
		j = journal.Tee{s.memory, sink}
	}

	s.engine, err = sim.NewEngine(ec, run, start, sim.WithJournal(j, s.runID), sim.WithLogger(log))
	if err != nil {
		if sink != nil {
			sink.Close()
		}
		return nil, err
	}

	log.Info("run started",
		zap.String("run", s.runID),
		zap.String("ticker", s.ticker),
		zap.String("asset_class", ec.Asset.Name),
		zap.Int64("seed", seed),
		zap.Int("bars", run.Len()),
		zap.Int("start", start),
	)
	return s, nil
}

// finish summarizes the run, writes the report and closes the journal.
func (s *session) finish() (journal.Summary, error) {
	st := s.engine.Snapshot()

	sum := journal.Summarize(s.memory.Transactions, s.cfg.Account.InitialCapital, st.AssetValue)
	sum.RunID = s.runID
	sum.Created = time.Now()
	sum.Ticker = s.ticker
	sum.AssetClass = s.engine.Config().Asset.Name
	if t := st.Account.Termination; t != nil {
		sum.Termination = t.Reason.String()
	}

	var firstErr error
	if p := s.cfg.Journal.ReportPath; p != "" {
		if err := sum.WriteOrg(p); err != nil {
			firstErr = fmt.Errorf("write report: %w", err)
		}
	}
	if s.sink != nil {
		if err := s.sink.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close journal: %w", err)
		}
		s.sink = nil
	}
	s.log.Info("run finished",
		zap.String("run", s.runID),
		zap.Float64("final_value", sum.FinalValue),
		zap.String("ended_by", sum.Termination),
	)
	return sum, firstErr
}

func (s *session) flushNotices() {
	for _, n := range s.engine.DrainNotices() {
		fmt.Fprintf(s.out, "[%s] %s\n", n.Level, n.Text)
	}
}
