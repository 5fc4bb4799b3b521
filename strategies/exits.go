package strategies

import (
	"fmt"
	"math"

	"github.com/rustyeddy/barsim/indicators"
	"github.com/rustyeddy/barsim/market"
)

// LevelFunc computes a candidate protective price for every bar of a series.
// NaN, infinite or non-positive entries mean "no level" for that bar.
type LevelFunc func(ps *market.PriceSeries) ([]float64, error)

// Exits is the optional stop-loss / take-profit capability of a source. It is
// fixed when the source is constructed; a nil func means the source never
// sets that level.
type Exits struct {
	StopLoss   LevelFunc
	TakeProfit LevelFunc
}

func (e Exits) stopLevels(ps *market.PriceSeries) ([]*float64, error) {
	return levels(ps, e.StopLoss)
}

func (e Exits) takeLevels(ps *market.PriceSeries) ([]*float64, error) {
	return levels(ps, e.TakeProfit)
}

func levels(ps *market.PriceSeries, f LevelFunc) ([]*float64, error) {
	if f == nil {
		return nil, nil
	}
	vals, err := f(ps)
	if err != nil {
		return nil, err
	}
	if len(vals) != ps.Len() {
		return nil, fmt.Errorf("exit levels: got %d values for %d bars", len(vals), ps.Len())
	}

	out := make([]*float64, len(vals))
	for i, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			continue
		}
		out[i] = &v
	}
	return out, nil
}

// PercentBelow places a level pct below each close (0.05 = 5%).
func PercentBelow(pct float64) LevelFunc {
	return scaledClose(1 - pct)
}

// PercentAbove places a level pct above each close.
func PercentAbove(pct float64) LevelFunc {
	return scaledClose(1 + pct)
}

func scaledClose(factor float64) LevelFunc {
	return func(ps *market.PriceSeries) ([]float64, error) {
		out := ps.Closes()
		for i := range out {
			out[i] *= factor
		}
		return out, nil
	}
}

// ATRBelow places a level mult average true ranges below each close.
func ATRBelow(period int, mult float64) LevelFunc {
	return atrOffset(period, -mult)
}

// ATRAbove places a level mult average true ranges above each close.
func ATRAbove(period int, mult float64) LevelFunc {
	return atrOffset(period, mult)
}

func atrOffset(period int, mult float64) LevelFunc {
	return func(ps *market.PriceSeries) ([]float64, error) {
		atr, err := indicators.ATR(ps.Bars(), period)
		if err != nil {
			return nil, err
		}
		out := ps.Closes()
		for i := range out {
			out[i] += mult * atr[i]
		}
		return out, nil
	}
}

// SwingLow places a level buffer below the lowest low of the trailing
// lookback bars (including the current one).
func SwingLow(lookback int, buffer float64) LevelFunc {
	return func(ps *market.PriceSeries) ([]float64, error) {
		lows := make([]float64, ps.Len())
		for i := range lows {
			lows[i] = ps.At(i).Low
		}
		out, err := indicators.RollingMin(lows, lookback+1)
		if err != nil {
			return nil, err
		}
		for i := range out {
			out[i] *= 1 - buffer
		}
		return out, nil
	}
}

// LowerOf picks the lowest defined level of fs for each bar.
func LowerOf(fs ...LevelFunc) LevelFunc {
	return func(ps *market.PriceSeries) ([]float64, error) {
		out := make([]float64, ps.Len())
		for i := range out {
			out[i] = math.NaN()
		}
		for _, f := range fs {
			vals, err := f(ps)
			if err != nil {
				return nil, err
			}
			for i, v := range vals {
				if !indicators.Ready(v) {
					continue
				}
				if !indicators.Ready(out[i]) || v < out[i] {
					out[i] = v
				}
			}
		}
		return out, nil
	}
}

// RiskReward places a take-profit rr times the distance between the close and
// the stop level above the close.
func RiskReward(stop LevelFunc, rr float64) LevelFunc {
	return func(ps *market.PriceSeries) ([]float64, error) {
		stops, err := stop(ps)
		if err != nil {
			return nil, err
		}
		out := ps.Closes()
		for i := range out {
			out[i] += rr * (out[i] - stops[i])
		}
		return out, nil
	}
}

// ExitsFromParams overrides def with any exit params present:
//
//	stop_pct, atr_stop (with atr_period), swing_lookback  -> stop-loss
//	take_pct, atr_take (with atr_period), rr              -> take-profit
//	no_exits != 0                                         -> no levels at all
func ExitsFromParams(p Params, def Exits) Exits {
	if p.Float("no_exits", 0) != 0 {
		return Exits{}
	}

	e := def
	period := p.Int("atr_period", 14)

	switch {
	case p.Has("stop_pct"):
		e.StopLoss = PercentBelow(p.Float("stop_pct", 0))
	case p.Has("atr_stop"):
		e.StopLoss = ATRBelow(period, p.Float("atr_stop", 0))
	case p.Has("swing_lookback"):
		e.StopLoss = SwingLow(p.Int("swing_lookback", 10), 0.005)
	}

	switch {
	case p.Has("take_pct"):
		e.TakeProfit = PercentAbove(p.Float("take_pct", 0))
	case p.Has("atr_take"):
		e.TakeProfit = ATRAbove(period, p.Float("atr_take", 0))
	case p.Has("rr") && e.StopLoss != nil:
		e.TakeProfit = RiskReward(e.StopLoss, p.Float("rr", 0))
	}
	return e
}
