package indicators

import (
	"math"

	"github.com/rustyeddy/barsim/market"
)

// TrueRange returns the true range of every bar. The first bar has no
// previous close, so its range is simply high-low.
func TrueRange(bars []market.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		if i == 0 {
			out[i] = b.High - b.Low
			continue
		}
		out[i] = trueRange(b, bars[i-1])
	}
	return out
}

// ATR calculates the Average True Range as a simple rolling mean of the
// true range over period bars.
func ATR(bars []market.Bar, period int) ([]float64, error) {
	if err := checkPeriod("ATR", period); err != nil {
		return nil, err
	}
	return SMA(TrueRange(bars), period)
}

func trueRange(current, previous market.Bar) float64 {
	highLow := current.High - current.Low
	highClose := math.Abs(current.High - previous.Close)
	lowClose := math.Abs(current.Low - previous.Close)

	return math.Max(highLow, math.Max(highClose, lowClose))
}
