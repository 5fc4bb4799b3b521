package indicators

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// RSI calculates the Relative Strength Index using simple rolling means of
// gains and losses over period. A window with no losses reads 100; a window
// with no movement at all is NaN.
func RSI(values []float64, period int) ([]float64, error) {
	if err := checkPeriod("RSI", period); err != nil {
		return nil, err
	}

	gains := make([]float64, len(values))
	losses := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		d := values[i] - values[i-1]
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}

	avgGain, _ := SMA(gains, period)
	avgLoss, _ := SMA(losses, period)

	out := nanSlice(len(values))
	for i := range values {
		g, l := avgGain[i], avgLoss[i]
		switch {
		case !Ready(g) || !Ready(l):
		case l == 0 && g == 0:
		case l == 0:
			out[i] = 100
		default:
			out[i] = 100 - 100/(1+g/l)
		}
	}
	return out, nil
}

// MACDSeries holds the MACD line, its signal line and the histogram.
type MACDSeries struct {
	MACD      []float64
	Signal    []float64
	Histogram []float64
}

// MACD calculates fast EMA minus slow EMA and a signal EMA of that difference.
func MACD(values []float64, fast, slow, signal int) (MACDSeries, error) {
	if fast >= slow {
		return MACDSeries{}, fmt.Errorf("MACD: fast period %d must be below slow period %d", fast, slow)
	}
	emaFast, err := EMA(values, fast)
	if err != nil {
		return MACDSeries{}, err
	}
	emaSlow, err := EMA(values, slow)
	if err != nil {
		return MACDSeries{}, err
	}

	line := make([]float64, len(values))
	for i := range values {
		line[i] = emaFast[i] - emaSlow[i]
	}

	sig, err := EMA(line, signal)
	if err != nil {
		return MACDSeries{}, err
	}

	hist := make([]float64, len(values))
	for i := range values {
		hist[i] = line[i] - sig[i]
	}
	return MACDSeries{MACD: line, Signal: sig, Histogram: hist}, nil
}

// Bands holds Bollinger bands around a simple moving average.
type Bands struct {
	Middle []float64
	Upper  []float64
	Lower  []float64
}

// Bollinger calculates bands numStd sample standard deviations around the
// period SMA.
func Bollinger(values []float64, period int, numStd float64) (Bands, error) {
	if period < 2 {
		return Bands{}, fmt.Errorf("Bollinger: period must be at least 2, got %d", period)
	}
	mid, err := SMA(values, period)
	if err != nil {
		return Bands{}, err
	}

	b := Bands{
		Middle: mid,
		Upper:  nanSlice(len(values)),
		Lower:  nanSlice(len(values)),
	}
	for i := period - 1; i < len(values); i++ {
		sd := stat.StdDev(values[i-period+1:i+1], nil)
		b.Upper[i] = mid[i] + numStd*sd
		b.Lower[i] = mid[i] - numStd*sd
	}
	return b, nil
}

// RollingMin returns the minimum of the trailing window of up to period
// values ending at each index.
func RollingMin(values []float64, period int) ([]float64, error) {
	if err := checkPeriod("RollingMin", period); err != nil {
		return nil, err
	}
	out := make([]float64, len(values))
	for i := range values {
		low := math.Inf(1)
		for j := max(0, i-period+1); j <= i; j++ {
			low = math.Min(low, values[j])
		}
		out[i] = low
	}
	return out, nil
}
