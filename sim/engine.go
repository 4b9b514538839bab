package sim

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/ksim/journal"
	"github.com/rustyeddy/ksim/market"
)

// Config is the per-run configuration injected at start.
type Config struct {
	InitialCapital float64
	Asset          market.AssetClass
	// Fees nil means DefaultFees. A zero Fees is a fee-free run.
	Fees           *Fees
	MaxLeverage    float64
}

// Engine owns one run: the account, the bar clock and the ledger. All
// mutating calls are serialized on mu so a bar's triggers always see one
// snapshot of the account.
type Engine struct {
	mu sync.Mutex

	cfg    Config
	series *market.Series
	idx    int
	acct   Account
	seq    int

	notices []Notice

	journal journal.Journal
	runID   string
	log     *zap.Logger
}

type Option func(*Engine)

// WithJournal writes every transaction and per-bar equity snapshot to j
// under runID.
func WithJournal(j journal.Journal, runID string) Option {
	return func(e *Engine) {
		e.journal = j
		e.runID = runID
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// NewEngine starts a run at bar start of series.
func NewEngine(cfg Config, series *market.Series, start int, opts ...Option) (*Engine, error) {
	if series == nil || series.Len() == 0 {
		return nil, errors.New("new engine: empty series")
	}
	if start < 0 || start > series.Last() {
		return nil, fmt.Errorf("new engine: start %d outside [0, %d]", start, series.Last())
	}
	if !finite(cfg.InitialCapital) || cfg.InitialCapital <= 0 {
		return nil, fmt.Errorf("new engine: initial capital must be > 0, got %v", cfg.InitialCapital)
	}
	fees := DefaultFees
	if cfg.Fees != nil {
		fees = *cfg.Fees
	}
	if !finite(fees.Spot) || !finite(fees.Leveraged) || fees.Spot < 0 || fees.Leveraged < 0 {
		return nil, fmt.Errorf("new engine: fee rates must be >= 0, got %+v", fees)
	}
	cfg.Fees = &fees
	if cfg.MaxLeverage == 0 {
		cfg.MaxLeverage = DefaultMaxLeverage
	}
	if !(cfg.MaxLeverage >= 1) || math.IsInf(cfg.MaxLeverage, 1) {
		return nil, fmt.Errorf("new engine: max leverage must be >= 1, got %v", cfg.MaxLeverage)
	}

	e := &Engine{
		cfg:    cfg,
		series: series,
		idx:    start,
		acct:   NewAccount(cfg.InitialCapital),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With(zap.String("ticker", series.Ticker), zap.String("run", e.runID))
	e.recordEquityLocked()
	return e, nil
}

// State is a point-in-time view of the run.
type State struct {
	Index int
	Bar   market.Bar

	Account Account

	// Valued at the bar's open while active, cash only once terminated.
	AssetValue   float64
	UnrealizedPL float64
	MarginHeld   float64
	Spot         SpotSummary
}

func (s State) Active() bool { return s.Account.Active }

// Snapshot returns a deep copy of the account and clock.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, _ := e.series.Bar(e.idx)
	return State{
		Index:        e.idx,
		Bar:          b,
		Account:      e.acct.Clone(),
		AssetValue:   TotalAssetValue(e.acct, b.Open),
		UnrealizedPL: AggregateUnrealizedPL(e.acct, b.Open),
		MarginHeld:   MarginHeld(e.acct),
		Spot:         SummarizeSpot(e.acct, b.Open),
	}
}

// Config returns the run's settings with defaults applied.
func (e *Engine) Config() Config {
	cfg := e.cfg
	fees := *e.cfg.Fees
	cfg.Fees = &fees
	return cfg
}

func (e *Engine) RunID() string { return e.runID }

// DrainNotices returns the notices produced since the last call.
func (e *Engine) DrainNotices() []Notice {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.notices
	e.notices = nil
	return out
}

func (e *Engine) currentBar() market.Bar {
	b, _ := e.series.Bar(e.idx)
	return b
}

func (e *Engine) currentDate() time.Time {
	return e.currentBar().Date
}

// checkRuinLocked values the account at the current bar's open and ends the
// run on ruin. Reports whether the run is over.
func (e *Engine) checkRuinLocked() bool {
	if !e.acct.Active {
		return true
	}
	v := TotalAssetValue(e.acct, e.currentBar().Open)
	if v > 0 {
		return false
	}
	e.notify(LevelError, "Total assets fell to $%.2f; simulation ended.", v)
	e.terminateLocked(AssetRuin)
	return true
}

// terminateLocked is a no-op once terminated, so the first reason wins.
func (e *Engine) terminateLocked(reason TerminationReason) {
	if !e.acct.Active {
		return
	}
	e.acct.Active = false
	e.acct.Termination = &Termination{Reason: reason, Index: e.idx}
	e.log.Info("simulation terminated",
		zap.Stringer("reason", reason),
		zap.Int("index", e.idx),
		zap.Float64("cash", e.acct.Cash),
	)
}

func (e *Engine) appendTransactionLocked(tx Transaction) Transaction {
	e.seq++
	tx.Seq = e.seq
	e.acct.Transactions = append(e.acct.Transactions, tx)

	if e.journal == nil {
		return tx
	}
	err := e.journal.RecordTransaction(journal.TransactionRecord{
		RunID:           e.runID,
		Seq:             tx.Seq,
		LotID:           tx.LotID,
		Date:            tx.Date,
		Mode:            tx.Mode.String(),
		Action:          tx.Action,
		Quantity:        tx.Quantity,
		Price:           tx.Price,
		CashFlow:        tx.CashFlow,
		RealizedPL:      tx.RealizedPL,
		OpeningNotional: tx.OpeningNotional,
		Fee:             tx.Fee,
		Leverage:        tx.Leverage,
	})
	if err != nil {
		e.log.Warn("journal transaction", zap.Int("seq", tx.Seq), zap.Error(err))
	}
	return tx
}

func (e *Engine) recordEquityLocked() {
	if e.journal == nil {
		return
	}
	b := e.currentBar()
	err := e.journal.RecordEquity(journal.EquitySnapshot{
		RunID:        e.runID,
		Index:        e.idx,
		Date:         b.Date,
		Cash:         e.acct.Cash,
		AssetValue:   TotalAssetValue(e.acct, b.Open),
		UnrealizedPL: AggregateUnrealizedPL(e.acct, b.Open),
		MarginHeld:   MarginHeld(e.acct),
		OpenLots:     len(e.acct.Positions),
		Active:       e.acct.Active,
	})
	if err != nil {
		e.log.Warn("journal equity", zap.Int("index", e.idx), zap.Error(err))
	}
}
