package market

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func dailyBars(closes ...float64) []Bar {
	bars := make([]Bar, len(closes))
	for i, c := range closes {
		bars[i] = Bar{
			Time:   t0.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func TestNewPriceSeries(t *testing.T) {
	t.Parallel()

	ps, err := NewPriceSeries("SPY", dailyBars(100, 101, 102))
	require.NoError(t, err)

	assert.Equal(t, 3, ps.Len())
	assert.Equal(t, "SPY", ps.Instrument)
	assert.Equal(t, []float64{100, 101, 102}, ps.Closes())

	start, end := ps.Span()
	assert.Equal(t, t0, start)
	assert.Equal(t, t0.AddDate(0, 0, 2), end)
}

func TestNewPriceSeriesRejects(t *testing.T) {
	t.Parallel()

	unordered := dailyBars(100, 101, 102)
	unordered[2].Time = unordered[1].Time

	negative := dailyBars(100, 101)
	negative[1].Low = -1

	inverted := dailyBars(100, 101)
	inverted[0].High = 99

	tests := []struct {
		name string
		bars []Bar
	}{
		{"duplicate timestamp", unordered},
		{"negative price", negative},
		{"high below close", inverted},
		{"zero time", []Bar{{Open: 1, High: 1, Low: 1, Close: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPriceSeries("X", tt.bars)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedSeries)
		})
	}
}

func TestPriceSeriesCopiesInput(t *testing.T) {
	t.Parallel()

	bars := dailyBars(100, 101)
	ps, err := NewPriceSeries("SPY", bars)
	require.NoError(t, err)

	bars[0].Close = 1
	out := ps.Bars()
	out[1].Close = 2

	assert.Equal(t, 100.0, ps.At(0).Close)
	assert.Equal(t, 101.0, ps.At(1).Close)
}

func TestIndexOf(t *testing.T) {
	t.Parallel()

	ps, err := NewPriceSeries("SPY", dailyBars(100, 101, 102, 103))
	require.NoError(t, err)

	i, ok := ps.IndexOf(t0.AddDate(0, 0, 2))
	assert.True(t, ok)
	assert.Equal(t, 2, i)

	_, ok = ps.IndexOf(t0.Add(time.Hour))
	assert.False(t, ok)
}

func TestReadCSVWithHeader(t *testing.T) {
	t.Parallel()

	data := `Date,Open,High,Low,Close,Adj Close,Volume
2024-01-02,100,105,99,104,104,1200
2024-01-03,104,106,101,102,102,900
`
	ps, err := ReadCSV(strings.NewReader(data), "AAPL")
	require.NoError(t, err)
	require.Equal(t, 2, ps.Len())

	b := ps.At(1)
	assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), b.Time)
	assert.Equal(t, 104.0, b.Open)
	assert.Equal(t, 106.0, b.High)
	assert.Equal(t, 101.0, b.Low)
	assert.Equal(t, 102.0, b.Close)
	assert.Equal(t, 900.0, b.Volume)
}

func TestReadCSVWithoutHeader(t *testing.T) {
	t.Parallel()

	data := "2024-01-02T15:00:00Z,1.1,1.2,1.0,1.15\n2024-01-02T16:00:00Z,1.15,1.3,1.1,1.25\n"
	ps, err := ReadCSV(strings.NewReader(data), "EUR_USD")
	require.NoError(t, err)
	assert.Equal(t, 2, ps.Len())
	assert.Equal(t, 0.0, ps.At(0).Volume)
}

func TestReadCSVBadRows(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"bad price", "time,open,high,low,close\n2024-01-02,abc,1,1,1\n"},
		{"bad time", "time,open,high,low,close\nyesterday,1,1,1,1\n"},
		{"missing column", "time,open,high,close\n2024-01-02,1,1,1\n"},
		{"short row", "2024-01-02,1,1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.data), "X")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedSeries)
		})
	}
}

func TestParquetRoundTrip(t *testing.T) {
	t.Parallel()

	ps, err := NewPriceSeries("SPY", dailyBars(100, 101.5, 99.25))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "bars", "spy.parquet")
	require.NoError(t, WriteParquet(path, ps))

	loaded, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "SPY", loaded.Instrument)
	assert.Equal(t, "spy.parquet", loaded.Source)
	assert.Equal(t, ps.Bars(), loaded.Bars())
}
