package market

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

var day0 = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// linearBars rises one dollar a day starting at 100.
func linearBars(n int) []Bar {
	bars := make([]Bar, n)
	for i := range bars {
		c := 100 + float64(i)
		bars[i] = Bar{
			Date:   day0.AddDate(0, 0, i),
			Open:   c - 0.5,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func TestNewSeriesDropsWarmup(t *testing.T) {
	t.Parallel()

	s, err := NewSeries("TEST", linearBars(200))
	require.NoError(t, err)

	// MA120 is the longest warm-up: raw bars 0..118 are dropped.
	assert.Equal(t, 81, s.Len())
	assert.Equal(t, 80, s.Last())

	first, ok := s.Bar(0)
	require.True(t, ok)
	assert.Equal(t, day0.AddDate(0, 0, 119), first.Date)
	assert.InDelta(t, 217.0, first.MA5, 1e-9)
	assert.InDelta(t, 159.5, first.MA120, 1e-9)
	assert.Equal(t, 100.0, first.RSI14)
}

func TestNewSeriesRejectsUnordered(t *testing.T) {
	t.Parallel()

	bars := linearBars(130)
	bars[5].Date = bars[4].Date
	_, err := NewSeries("TEST", bars)
	assert.Error(t, err)
}

func TestNewSeriesTooShort(t *testing.T) {
	t.Parallel()

	_, err := NewSeries("TEST", linearBars(50))
	assert.True(t, errors.Is(err, ErrInsufficientHistory))
}

func TestBarAt(t *testing.T) {
	t.Parallel()

	s := NewSeriesFromBars("X", linearBars(3))

	date, open, closePrice, ok := s.BarAt(1)
	assert.True(t, ok)
	assert.Equal(t, day0.AddDate(0, 0, 1), date)
	assert.Equal(t, 100.5, open)
	assert.Equal(t, 101.0, closePrice)

	date, open, closePrice, ok = s.BarAt(3)
	assert.False(t, ok)
	assert.True(t, date.IsZero())
	assert.Zero(t, open)
	assert.Zero(t, closePrice)

	_, _, _, ok = s.BarAt(-1)
	assert.False(t, ok)
}

func TestSlice(t *testing.T) {
	t.Parallel()

	s := NewSeriesFromBars("X", linearBars(10))
	cut := s.Slice(2, 5)
	assert.Equal(t, 3, cut.Len())
	b, _ := cut.Bar(0)
	assert.Equal(t, 102.0, b.Close)

	assert.Equal(t, 8, s.Slice(2, 100).Len())
	assert.Equal(t, 0, s.Slice(7, 3).Len())
}

func TestPickStart(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))

	t.Run("random offset within range", func(t *testing.T) {
		for i := 0; i < 200; i++ {
			w, err := PickStart(1200, 250, 720, rng)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, w.ViewStart, 0)
			assert.LessOrEqual(t, w.ViewStart, 1200-970)
			assert.Equal(t, w.ViewStart+250, w.SimStart)
		}
	})

	t.Run("short series degrades to earliest window", func(t *testing.T) {
		w, err := PickStart(500, 250, 720, rng)
		require.NoError(t, err)
		assert.Equal(t, Window{ViewStart: 0, SimStart: 250}, w)
	})

	t.Run("exact length has a single window", func(t *testing.T) {
		w, err := PickStart(970, 250, 720, rng)
		require.NoError(t, err)
		assert.Equal(t, Window{ViewStart: 0, SimStart: 250}, w)
	})

	t.Run("no room after history", func(t *testing.T) {
		_, err := PickStart(250, 250, 720, rng)
		assert.True(t, errors.Is(err, ErrInsufficientHistory))
	})
}

func TestPrepareRun(t *testing.T) {
	t.Parallel()

	s := NewSeriesFromBars("X", linearBars(100))
	cut, simStart, err := PrepareRun(s, 20, 30, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	assert.Equal(t, 50, cut.Len())
	assert.Equal(t, 20, simStart)
}

func TestRoundToLot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		qty    float64
		minQty float64
		want   float64
	}{
		{"stock floors", 333.9, 1, 333},
		{"forex floors to hundreds", 1050, 100, 1000},
		{"crypto rounds to precision", 0.61725, 0.001, 0.617},
		{"crypto rounds up", 0.6176, 0.001, 0.618},
		{"zero min leaves qty", 1.2345, 0, 1.2345},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RoundToLot(tt.qty, tt.minQty), 1e-12)
		})
	}
}

func TestLotPrecision(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int32(3), LotPrecision(0.001))
	assert.Equal(t, int32(0), LotPrecision(1))
	assert.Equal(t, int32(0), LotPrecision(100))
	assert.Equal(t, int32(2), LotPrecision(0.25))
}

func TestQuantityForPercent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 333.0, QuantityForPercent(1000, 33.3, 1))
	assert.Equal(t, 1000.0, QuantityForPercent(1000, 100, 1))
	assert.InDelta(t, 0.617, QuantityForPercent(1.2345, 50, 0.001), 1e-12)
}

func TestLookupAssetClass(t *testing.T) {
	t.Parallel()

	ac, err := LookupAssetClass("Crypto", nil)
	require.NoError(t, err)
	assert.Equal(t, 0.001, ac.MinQty)

	ac, err = LookupAssetClass("Bonds", map[string]AssetClass{
		"Bonds": {Unit: "notes", MinQty: 10, DefaultQty: 10, FeeTier: "standard"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Bonds", ac.Name)

	_, err = LookupAssetClass("Bonds", nil)
	assert.Error(t, err)
}

func writeCSV(t *testing.T, dir, ticker string, bars []Bar) {
	t.Helper()

	var sb strings.Builder
	sb.WriteString("Date,Open,High,Low,Close,Volume\n")
	for _, b := range bars {
		sb.WriteString(b.Date.Format(time.DateOnly))
		for _, v := range []float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
			sb.WriteString(",")
			sb.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
		}
		sb.WriteString("\n")
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, ticker+".csv"), []byte(sb.String()), 0o644))
}

func TestCSVSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCSV(t, dir, "TSLA", linearBars(150))

	src := CSVSource{Dir: dir}
	s, err := src.Series(context.Background(), "tsla")
	require.NoError(t, err)
	assert.Equal(t, "TSLA", s.Ticker)
	assert.Equal(t, 31, s.Len())

	_, err = src.Series(context.Background(), "NOPE")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestReadBarsBadRow(t *testing.T) {
	t.Parallel()

	in := "Date,Open,High,Low,Close,Volume\n2020-01-01,1,2,x,1,1\n"
	_, err := ReadBars(context.Background(), strings.NewReader(in))
	assert.Error(t, err)
}

func TestReadBarsSkipsShortRows(t *testing.T) {
	t.Parallel()

	in := "2020-01-01,1,2,0.5,1.5,10\n\n2020-01-02,1\n2020-01-03T00:00:00Z,2,3,1,2,11\n"
	bars, err := ReadBars(context.Background(), strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 1.5, bars[0].Close)
	assert.Equal(t, day0.AddDate(0, 0, 2), bars[1].Date)
}

func TestReadBarsByteOrderMarks(t *testing.T) {
	t.Parallel()

	in := "Date,Open,High,Low,Close,Volume\n2020-01-01,1,2,0.5,1.5,10\n"

	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(in)
	require.NoError(t, err)

	for name, data := range map[string]string{
		"utf8 bom":  "\xef\xbb\xbf" + in,
		"utf16 bom": utf16,
		"plain":     in,
	} {
		bars, err := ReadBars(context.Background(), strings.NewReader(data))
		require.NoError(t, err, name)
		require.Len(t, bars, 1, name)
		assert.Equal(t, day0, bars[0].Date, name)
		assert.Equal(t, 1.5, bars[0].Close, name)
	}
}

type countingSource struct {
	calls int
	src   Source
}

func (c *countingSource) Series(ctx context.Context, ticker string) (*Series, error) {
	c.calls++
	return c.src.Series(ctx, ticker)
}

func TestCachedSource(t *testing.T) {
	t.Parallel()

	inner := &countingSource{src: MemorySource{"ABC": linearBars(130)}}
	cached := NewCachedSource(inner)

	a, err := cached.Series(context.Background(), "abc")
	require.NoError(t, err)
	b, err := cached.Series(context.Background(), "ABC")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, inner.calls)

	_, err = cached.Series(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}
