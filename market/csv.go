package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var timeLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// LoadCSV reads an OHLCV file into a PriceSeries. A header row naming the
// columns (time/date, open, high, low, close, volume) is optional; without it
// the columns are taken in that order.
func LoadCSV(path, instrument string) (*PriceSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ps, err := ReadCSV(f, instrument)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ps.Source = filepath.Base(path)
	return ps, nil
}

// ReadCSV is LoadCSV over an arbitrary reader.
func ReadCSV(r io.Reader, instrument string) (*PriceSeries, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	first, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty csv", ErrMalformedSeries)
	}
	if err != nil {
		return nil, err
	}

	cols := columns{time: 0, open: 1, high: 2, low: 3, close: 4, volume: 5}
	var bars []Bar

	if isHeader(first) {
		if cols, err = columnsFromHeader(first); err != nil {
			return nil, err
		}
	} else {
		b, err := cols.parse(first)
		if err != nil {
			return nil, fmt.Errorf("line 1: %w", err)
		}
		bars = append(bars, b)
	}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}
		line, _ := cr.FieldPos(0)
		b, err := cols.parse(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, b)
	}

	return NewPriceSeries(instrument, bars)
}

type columns struct {
	time, open, high, low, close, volume int
}

func isHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	h := strings.ToLower(strings.TrimSpace(row[0]))
	return h == "time" || h == "date" || h == "datetime" || h == "timestamp"
}

func columnsFromHeader(row []string) (columns, error) {
	c := columns{time: -1, open: -1, high: -1, low: -1, close: -1, volume: -1}
	for i, name := range row {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "time", "date", "datetime", "timestamp":
			c.time = i
		case "open":
			c.open = i
		case "high":
			c.high = i
		case "low":
			c.low = i
		case "close":
			c.close = i
		case "volume":
			c.volume = i
		}
	}
	if c.time < 0 || c.open < 0 || c.high < 0 || c.low < 0 || c.close < 0 {
		return c, fmt.Errorf("%w: header must name time, open, high, low and close: %v", ErrMalformedSeries, row)
	}
	return c, nil
}

func (c columns) parse(row []string) (Bar, error) {
	need := max(c.time, c.open, c.high, c.low, c.close)
	if len(row) <= need {
		return Bar{}, fmt.Errorf("%w: need at least %d columns, got %d", ErrMalformedSeries, need+1, len(row))
	}

	t, err := parseTime(row[c.time])
	if err != nil {
		return Bar{}, err
	}

	var b Bar
	b.Time = t
	fields := []struct {
		idx int
		dst *float64
	}{
		{c.open, &b.Open},
		{c.high, &b.High},
		{c.low, &b.Low},
		{c.close, &b.Close},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[f.idx]), 64)
		if err != nil {
			return Bar{}, fmt.Errorf("%w: bad price %q", ErrMalformedSeries, row[f.idx])
		}
		*f.dst = v
	}

	if c.volume >= 0 && c.volume < len(row) && strings.TrimSpace(row[c.volume]) != "" {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[c.volume]), 64)
		if err != nil {
			return Bar{}, fmt.Errorf("%w: bad volume %q", ErrMalformedSeries, row[c.volume])
		}
		b.Volume = v
	}
	return b, nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: bad time %q", ErrMalformedSeries, s)
}
