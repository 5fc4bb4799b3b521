package strategies

import (
	"fmt"

	"github.com/rustyeddy/barsim/indicators"
	"github.com/rustyeddy/barsim/market"
)

// RSI buys when the RSI climbs back above the oversold threshold and sells
// when it drops back below the overbought threshold.
type RSI struct {
	Window     int
	Oversold   float64
	Overbought float64
	Exits      Exits
}

// NewRSI defaults its exits to a swing-low stop (10 bars, 0.5% buffer) and a
// 2:1 reward-to-risk take-profit.
func NewRSI(window int, oversold, overbought float64) (*RSI, error) {
	if window <= 0 {
		return nil, fmt.Errorf("rsi: window must be > 0")
	}
	if oversold >= overbought {
		return nil, fmt.Errorf("rsi: oversold %g must be below overbought %g", oversold, overbought)
	}
	stop := SwingLow(10, 0.005)
	return &RSI{
		Window:     window,
		Oversold:   oversold,
		Overbought: overbought,
		Exits:      Exits{StopLoss: stop, TakeProfit: RiskReward(stop, 2)},
	}, nil
}

func (x *RSI) Name() string {
	return fmt.Sprintf("RSI(%d,%g,%g)", x.Window, x.Oversold, x.Overbought)
}

func (x *RSI) Generate(ps *market.PriceSeries) (Plan, error) {
	rsi, err := indicators.RSI(ps.Closes(), x.Window)
	if err != nil {
		return Plan{}, err
	}

	signals := make([]Signal, len(rsi))
	for i := 1; i < len(rsi); i++ {
		prev, cur := rsi[i-1], rsi[i]
		if !indicators.Ready(prev) || !indicators.Ready(cur) {
			continue
		}
		switch {
		case prev < x.Oversold && cur >= x.Oversold:
			signals[i] = Buy
		case prev > x.Overbought && cur <= x.Overbought:
			signals[i] = Sell
		}
	}
	return withExits(ps, signals, x.Exits)
}

// MACD buys when the MACD line crosses above its signal line and sells on the
// cross below.
type MACD struct {
	Fast   int
	Slow   int
	Signal int
	Exits  Exits
}

// NewMACD defaults its stop to the lower of a swing-low stop and 2 ATR(14)
// below the close, with a 2:1 reward-to-risk take-profit.
func NewMACD(fast, slow, signal int) (*MACD, error) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return nil, fmt.Errorf("macd: periods must be > 0")
	}
	if fast >= slow {
		return nil, fmt.Errorf("macd: fast %d must be below slow %d", fast, slow)
	}
	stop := LowerOf(SwingLow(10, 0.005), ATRBelow(14, 2))
	return &MACD{
		Fast:   fast,
		Slow:   slow,
		Signal: signal,
		Exits:  Exits{StopLoss: stop, TakeProfit: RiskReward(stop, 2)},
	}, nil
}

func (x *MACD) Name() string { return fmt.Sprintf("MACD(%d,%d,%d)", x.Fast, x.Slow, x.Signal) }

func (x *MACD) Generate(ps *market.PriceSeries) (Plan, error) {
	m, err := indicators.MACD(ps.Closes(), x.Fast, x.Slow, x.Signal)
	if err != nil {
		return Plan{}, err
	}

	signals := make([]Signal, len(m.MACD))
	for i := 1; i < len(signals); i++ {
		switch {
		case indicators.CrossedAbove(m.MACD, m.Signal, i):
			signals[i] = Buy
		case indicators.CrossedBelow(m.MACD, m.Signal, i):
			signals[i] = Sell
		}
	}
	return withExits(ps, signals, x.Exits)
}

// Bollinger buys when the close re-enters the bands from below the lower
// band and sells when it falls back inside from above the upper band.
type Bollinger struct {
	Window int
	NumStd float64
	Exits  Exits
}

// NewBollinger defaults its stop to 1% under the lower band and its
// take-profit to the upper band.
func NewBollinger(window int, numStd float64) (*Bollinger, error) {
	if window < 2 {
		return nil, fmt.Errorf("bollinger: window must be at least 2")
	}
	if numStd <= 0 {
		return nil, fmt.Errorf("bollinger: num_std must be > 0")
	}
	x := &Bollinger{Window: window, NumStd: numStd}
	x.Exits = Exits{
		StopLoss: func(ps *market.PriceSeries) ([]float64, error) {
			b, err := indicators.Bollinger(ps.Closes(), x.Window, x.NumStd)
			if err != nil {
				return nil, err
			}
			out := make([]float64, len(b.Lower))
			for i, v := range b.Lower {
				out[i] = v * 0.99
			}
			return out, nil
		},
		TakeProfit: func(ps *market.PriceSeries) ([]float64, error) {
			b, err := indicators.Bollinger(ps.Closes(), x.Window, x.NumStd)
			if err != nil {
				return nil, err
			}
			return b.Upper, nil
		},
	}
	return x, nil
}

func (x *Bollinger) Name() string { return fmt.Sprintf("BOLLINGER(%d,%g)", x.Window, x.NumStd) }

func (x *Bollinger) Generate(ps *market.PriceSeries) (Plan, error) {
	closes := ps.Closes()
	b, err := indicators.Bollinger(closes, x.Window, x.NumStd)
	if err != nil {
		return Plan{}, err
	}

	signals := make([]Signal, len(closes))
	for i := 1; i < len(closes); i++ {
		if !indicators.Ready(b.Lower[i-1]) || !indicators.Ready(b.Lower[i]) {
			continue
		}
		switch {
		case closes[i-1] <= b.Lower[i-1] && closes[i] > b.Lower[i]:
			signals[i] = Buy
		case closes[i-1] >= b.Upper[i-1] && closes[i] < b.Upper[i]:
			signals[i] = Sell
		}
	}
	return withExits(ps, signals, x.Exits)
}

func init() {
	Register("rsi", func(p Params) (SignalSource, error) {
		x, err := NewRSI(p.Int("window", 14), p.Float("oversold", 30), p.Float("overbought", 70))
		if err != nil {
			return nil, err
		}
		x.Exits = ExitsFromParams(p, x.Exits)
		return x, nil
	})
	Register("macd", func(p Params) (SignalSource, error) {
		x, err := NewMACD(p.Int("fast", 12), p.Int("slow", 26), p.Int("signal", 9))
		if err != nil {
			return nil, err
		}
		x.Exits = ExitsFromParams(p, x.Exits)
		return x, nil
	})
	Register("bollinger", func(p Params) (SignalSource, error) {
		x, err := NewBollinger(p.Int("window", 20), p.Float("num_std", 2))
		if err != nil {
			return nil, err
		}
		x.Exits = ExitsFromParams(p, x.Exits)
		return x, nil
	})
}
