package market

import (
	"fmt"
	"time"

	"github.com/rustyeddy/ksim/indicators"
)

// Indicators are the derived columns carried on every bar.
type Indicators struct {
	MA5   float64
	MA10  float64
	MA20  float64
	MA60  float64
	MA120 float64
	RSI14 float64
}

// Bar is one trading day.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	Indicators
}

// Series is an immutable, chronologically ordered run of daily bars for a
// single ticker. Index 0 is the oldest bar.
type Series struct {
	Ticker string
	bars   []Bar
}

// NewSeries computes indicators over raw OHLCV bars and drops the warm-up
// rows that do not yet have every indicator.
func NewSeries(ticker string, raw []Bar) (*Series, error) {
	for i := 1; i < len(raw); i++ {
		if !raw[i].Date.After(raw[i-1].Date) {
			return nil, fmt.Errorf("%s: bar %d (%s) is not after bar %d", ticker, i,
				raw[i].Date.Format(time.DateOnly), i-1)
		}
	}

	closes := make([]float64, len(raw))
	for i, b := range raw {
		closes[i] = b.Close
	}

	mas := make([][]float64, len(indicators.MAPeriods))
	for i, p := range indicators.MAPeriods {
		ma, err := indicators.SMA(closes, p)
		if err != nil {
			return nil, err
		}
		mas[i] = ma
	}
	rsi, err := indicators.RSI(closes, indicators.RSIWindow)
	if err != nil {
		return nil, err
	}

	bars := make([]Bar, 0, len(raw))
	for i, b := range raw {
		b.Indicators = Indicators{
			MA5:   mas[0][i],
			MA10:  mas[1][i],
			MA20:  mas[2][i],
			MA60:  mas[3][i],
			MA120: mas[4][i],
			RSI14: rsi[i],
		}
		if !b.Indicators.ready() {
			continue
		}
		bars = append(bars, b)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s: %w", ticker, ErrInsufficientHistory)
	}

	return &Series{Ticker: ticker, bars: bars}, nil
}

// NewSeriesFromBars wraps bars that already carry their indicators.
func NewSeriesFromBars(ticker string, bars []Bar) *Series {
	cp := make([]Bar, len(bars))
	copy(cp, bars)
	return &Series{Ticker: ticker, bars: cp}
}

func (in Indicators) ready() bool {
	return indicators.Ready(in.MA5, in.MA10, in.MA20, in.MA60, in.MA120, in.RSI14)
}

func (s *Series) Len() int { return len(s.bars) }

// Last returns the index of the final bar, or -1 for an empty series.
func (s *Series) Last() int { return len(s.bars) - 1 }

// Bar returns the bar at index i.
func (s *Series) Bar(i int) (Bar, bool) {
	if i < 0 || i >= len(s.bars) {
		return Bar{}, false
	}
	return s.bars[i], true
}

// BarAt returns the date, open and close of bar i. Past either end of the
// series it returns the zero time, zero prices and false.
func (s *Series) BarAt(i int) (date time.Time, open, closePrice float64, ok bool) {
	b, ok := s.Bar(i)
	if !ok {
		return time.Time{}, 0, 0, false
	}
	return b.Date, b.Open, b.Close, true
}

// Slice returns bars [from, to) re-indexed from zero.
func (s *Series) Slice(from, to int) *Series {
	if from < 0 {
		from = 0
	}
	if to > len(s.bars) {
		to = len(s.bars)
	}
	if from > to {
		from = to
	}
	return NewSeriesFromBars(s.Ticker, s.bars[from:to])
}
