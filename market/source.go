package market

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	ErrNotFound            = errors.New("series not found")
	ErrInsufficientHistory = errors.New("insufficient history")
)

// Source returns the full daily series for a ticker. It must be
// deterministic for a given ticker.
type Source interface {
	Series(ctx context.Context, ticker string) (*Series, error)
}

// CSVSource reads <Dir>/<TICKER>.csv files with the columns
//
//	Date,Open,High,Low,Close,Volume
//
// Date is YYYY-MM-DD or RFC3339. A single header row is allowed.
type CSVSource struct {
	Dir string
}

func (c CSVSource) Series(ctx context.Context, ticker string) (*Series, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("empty ticker: %w", ErrNotFound)
	}

	path := filepath.Join(c.Dir, ticker+".csv")
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", ticker, ErrNotFound)
		}
		return nil, err
	}
	defer f.Close()

	raw, err := ReadBars(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%s: %w", ticker, ErrNotFound)
	}
	return NewSeries(ticker, raw)
}

// ReadBars parses OHLCV rows. Short or empty rows are skipped. Input is
// UTF-8; a UTF-8 BOM is dropped and UTF-16 exports with a BOM are decoded.
func ReadBars(ctx context.Context, r io.Reader) ([]Bar, error) {
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		bars     []Bar
		sawFirst bool
		line     int
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := cr.Read()
		if err == io.EOF {
			return bars, nil
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(row) < 6 {
			continue
		}

		if !sawFirst {
			sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "date") {
				continue
			}
		}

		b, err := parseBarRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, b)
	}
}

func parseBarRow(row []string) (Bar, error) {
	date, err := parseDate(row[0])
	if err != nil {
		return Bar{}, err
	}

	var vals [5]float64
	for i := range vals {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
		if err != nil {
			return Bar{}, fmt.Errorf("column %d: %w", i+2, err)
		}
		vals[i] = v
	}

	return Bar{
		Date:   date,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q", s)
	}
	return t.UTC(), nil
}

// MemorySource serves raw bars held in memory. Indicators are computed on
// every call, same as CSVSource.
type MemorySource map[string][]Bar

func (m MemorySource) Series(ctx context.Context, ticker string) (*Series, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	raw, ok := m[ticker]
	if !ok || len(raw) == 0 {
		return nil, fmt.Errorf("%s: %w", ticker, ErrNotFound)
	}
	return NewSeries(ticker, raw)
}

// CachedSource memoises another source so a ticker is only loaded once.
type CachedSource struct {
	Source Source

	mu     sync.Mutex
	series map[string]*Series
}

func NewCachedSource(src Source) *CachedSource {
	return &CachedSource{Source: src, series: make(map[string]*Series)}
}

func (c *CachedSource) Series(ctx context.Context, ticker string) (*Series, error) {
	key := strings.ToUpper(strings.TrimSpace(ticker))

	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.series[key]; ok {
		return s, nil
	}
	s, err := c.Source.Series(ctx, key)
	if err != nil {
		return nil, err
	}
	c.series[key] = s
	return s, nil
}
