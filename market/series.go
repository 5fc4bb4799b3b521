package market

import (
	"fmt"
	"sort"
	"time"
)

// PriceSeries is an ordered, immutable sequence of bars with strictly
// increasing timestamps. Accessors hand out copies so callers can never
// change the series after construction.
type PriceSeries struct {
	Instrument string
	Source     string

	bars []Bar
}

// NewPriceSeries copies bars into a new series after validating each bar and
// the timestamp ordering.
func NewPriceSeries(instrument string, bars []Bar) (*PriceSeries, error) {
	ps := &PriceSeries{
		Instrument: instrument,
		bars:       make([]Bar, len(bars)),
	}
	copy(ps.bars, bars)

	for i, b := range ps.bars {
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("bar %d: %w", i, err)
		}
		if i > 0 && !b.Time.After(ps.bars[i-1].Time) {
			return nil, fmt.Errorf("%w: bar %d at %s is not after %s", ErrMalformedSeries,
				i, b.Time.Format(time.RFC3339), ps.bars[i-1].Time.Format(time.RFC3339))
		}
	}
	return ps, nil
}

func (ps *PriceSeries) Len() int { return len(ps.bars) }

// At returns the bar at index i. It panics when i is out of range, like a
// slice index would.
func (ps *PriceSeries) At(i int) Bar { return ps.bars[i] }

func (ps *PriceSeries) Time(i int) time.Time { return ps.bars[i].Time }

// Bars returns a copy of the underlying bars.
func (ps *PriceSeries) Bars() []Bar {
	out := make([]Bar, len(ps.bars))
	copy(out, ps.bars)
	return out
}

// Closes returns the close prices in index order.
func (ps *PriceSeries) Closes() []float64 {
	out := make([]float64, len(ps.bars))
	for i, b := range ps.bars {
		out[i] = b.Close
	}
	return out
}

// IndexOf finds the bar with the exact timestamp t.
func (ps *PriceSeries) IndexOf(t time.Time) (int, bool) {
	i := sort.Search(len(ps.bars), func(i int) bool {
		return !ps.bars[i].Time.Before(t)
	})
	if i < len(ps.bars) && ps.bars[i].Time.Equal(t) {
		return i, true
	}
	return -1, false
}

// Span returns the first and last timestamps. Both are zero for an empty series.
func (ps *PriceSeries) Span() (start, end time.Time) {
	if len(ps.bars) == 0 {
		return time.Time{}, time.Time{}
	}
	return ps.bars[0].Time, ps.bars[len(ps.bars)-1].Time
}
