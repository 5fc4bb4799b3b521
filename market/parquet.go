package market

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
)

// BarRecord is the on-disk Parquet schema for one bar.
type BarRecord struct {
	Instrument string  `parquet:"instrument"`
	Timestamp  int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open       float64 `parquet:"open"`
	High       float64 `parquet:"high"`
	Low        float64 `parquet:"low"`
	Close      float64 `parquet:"close"`
	Volume     float64 `parquet:"volume"`
}

// LoadParquet reads a bar file written by WriteParquet. Rows are expected in
// time order; the instrument is taken from the first row.
func LoadParquet(path string) (*PriceSeries, error) {
	rows, err := parquet.ReadFile[BarRecord](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet %s: %w", path, err)
	}

	instrument := ""
	bars := make([]Bar, len(rows))
	for i, r := range rows {
		if i == 0 {
			instrument = r.Instrument
		}
		bars[i] = Bar{
			Time:   time.UnixMilli(r.Timestamp).UTC(),
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		}
	}

	ps, err := NewPriceSeries(instrument, bars)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ps.Source = filepath.Base(path)
	return ps, nil
}

// WriteParquet stores the series at path, creating parent directories.
func WriteParquet(path string, ps *PriceSeries) error {
	records := make([]BarRecord, ps.Len())
	for i := range records {
		b := ps.At(i)
		records[i] = BarRecord{
			Instrument: ps.Instrument,
			Timestamp:  b.Time.UnixMilli(),
			Open:       b.Open,
			High:       b.High,
			Low:        b.Low,
			Close:      b.Close,
			Volume:     b.Volume,
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

// Load picks a loader from the file extension.
func Load(path, instrument string) (*PriceSeries, error) {
	switch filepath.Ext(path) {
	case ".parquet", ".pq":
		ps, err := LoadParquet(path)
		if err != nil {
			return nil, err
		}
		if instrument != "" {
			ps.Instrument = instrument
		}
		return ps, nil
	default:
		return LoadCSV(path, instrument)
	}
}
