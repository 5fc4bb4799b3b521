package market

import (
	"errors"
	"fmt"
	"time"
)

// ErrMalformedSeries is returned when bars cannot form a valid PriceSeries.
var ErrMalformedSeries = errors.New("malformed price series")

// Bar is one OHLCV sample for a fixed time interval.
type Bar struct {
	Time time.Time

	Open  float64
	High  float64
	Low   float64
	Close float64

	Volume float64
}

// Validate checks prices are positive, volume is non-negative and the
// high/low range contains the open and close.
func (b Bar) Validate() error {
	if b.Time.IsZero() {
		return fmt.Errorf("%w: bar has zero time", ErrMalformedSeries)
	}
	if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
		return fmt.Errorf("%w: non-positive price at %s", ErrMalformedSeries, b.Time.Format(time.RFC3339))
	}
	if b.Volume < 0 {
		return fmt.Errorf("%w: negative volume at %s", ErrMalformedSeries, b.Time.Format(time.RFC3339))
	}
	if b.Low > b.High || b.Low > min(b.Open, b.Close) || b.High < max(b.Open, b.Close) {
		return fmt.Errorf("%w: inconsistent OHLC at %s", ErrMalformedSeries, b.Time.Format(time.RFC3339))
	}
	return nil
}
