// Package performance turns an equity curve and a trade list into summary
// statistics. Every function is pure and never fails; degenerate inputs
// produce zero values rather than NaN.
package performance

import (
	"math"
	"time"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"github.com/rustyeddy/barsim/backtest"
)

// TradingDaysPerYear annualizes the per-bar Sharpe ratio.
const TradingDaysPerYear = 252

// Metrics is the fixed summary of one run. Ratios are fractions, not
// percentages (0.12 is 12%).
type Metrics struct {
	TotalReturn  float64 `json:"total_return" yaml:"total_return"`
	AnnualReturn float64 `json:"annual_return" yaml:"annual_return"`
	MaxDrawdown  float64 `json:"max_drawdown" yaml:"max_drawdown"`
	SharpeRatio  float64 `json:"sharpe_ratio" yaml:"sharpe_ratio"`
	WinRate      float64 `json:"win_rate" yaml:"win_rate"`
	ProfitFactor float64 `json:"profit_factor" yaml:"profit_factor"`
	AvgHoldDays  float64 `json:"avg_hold_days" yaml:"avg_hold_days"`

	NumTrades    int     `json:"num_trades" yaml:"num_trades"`
	Wins         int     `json:"wins" yaml:"wins"`
	Losses       int     `json:"losses" yaml:"losses"`
	AvgProfit    float64 `json:"avg_profit" yaml:"avg_profit"`
	AvgLoss      float64 `json:"avg_loss" yaml:"avg_loss"`
	FinalCapital float64 `json:"final_capital" yaml:"final_capital"`
	NetProfit    float64 `json:"net_profit" yaml:"net_profit"`

	DrawdownSeries []float64 `json:"-" yaml:"-"`
}

// Analyze computes Metrics for a finished run.
func Analyze(res *backtest.Result) Metrics {
	if res == nil {
		return Metrics{}
	}
	return Compute(res.EquityCurve, res.Trades, res.Config.InitialCapital)
}

// Compute builds Metrics from a curve, its trades and the starting capital.
func Compute(curve []backtest.EquityPoint, trades []backtest.Trade, initial float64) Metrics {
	total := TotalReturn(curve, initial)
	m := Metrics{
		TotalReturn:    total,
		MaxDrawdown:    MaxDrawdown(curve),
		SharpeRatio:    SharpeRatio(curve),
		WinRate:        WinRate(trades),
		ProfitFactor:   ProfitFactor(trades),
		AvgHoldDays:    AvgHoldDays(trades),
		NumTrades:      len(trades),
		FinalCapital:   initial,
		DrawdownSeries: Drawdowns(curve),
	}
	if len(curve) > 0 {
		m.AnnualReturn = AnnualReturn(total, curve[0].Time, curve[len(curve)-1].Time)
		m.FinalCapital = curve[len(curve)-1].Equity
	}
	m.NetProfit = m.FinalCapital - initial

	wins := lo.Filter(trades, func(t backtest.Trade, _ int) bool { return t.Won() })
	losses := lo.Filter(trades, func(t backtest.Trade, _ int) bool { return !t.Won() })
	m.Wins, m.Losses = len(wins), len(losses)
	m.AvgProfit = meanProfit(wins)
	m.AvgLoss = meanProfit(losses)
	return m
}

// TotalReturn is last equity over initial capital, minus one.
func TotalReturn(curve []backtest.EquityPoint, initial float64) float64 {
	if len(curve) == 0 || initial <= 0 {
		return 0
	}
	return curve[len(curve)-1].Equity/initial - 1
}

// AnnualReturn compounds total over the whole calendar days between start and
// end, counting at least one day.
func AnnualReturn(total float64, start, end time.Time) float64 {
	days := max(int(end.Sub(start).Hours()/24), 1)
	growth := 1 + total
	if growth <= 0 {
		return -1
	}
	return math.Pow(growth, 365/float64(days)) - 1
}

// Drawdowns returns, for every point, equity over the running peak minus one.
func Drawdowns(curve []backtest.EquityPoint) []float64 {
	out := make([]float64, len(curve))
	peak := math.Inf(-1)
	for i, p := range curve {
		peak = math.Max(peak, p.Equity)
		if peak > 0 {
			out[i] = p.Equity/peak - 1
		}
	}
	return out
}

// MaxDrawdown is the deepest drawdown of the curve, as a value <= 0.
func MaxDrawdown(curve []backtest.EquityPoint) float64 {
	worst := 0.0
	for _, d := range Drawdowns(curve) {
		worst = math.Min(worst, d)
	}
	return worst
}

// Returns are the per-bar percentage changes of the curve.
func Returns(curve []backtest.EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}
	out := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev == 0 {
			continue
		}
		out = append(out, curve[i].Equity/prev-1)
	}
	return out
}

// SharpeRatio annualizes the mean per-bar return over its sample standard
// deviation, with a zero risk-free rate. It is 0 when the deviation is zero or
// there are fewer than two returns.
func SharpeRatio(curve []backtest.EquityPoint) float64 {
	r := Returns(curve)
	if len(r) < 2 {
		return 0
	}
	mean, sd := stat.MeanStdDev(r, nil)
	if sd == 0 || math.IsNaN(sd) {
		return 0
	}
	return math.Sqrt(TradingDaysPerYear) * mean / sd
}

// WinRate is the fraction of trades with positive profit.
func WinRate(trades []backtest.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	return float64(lo.CountBy(trades, func(t backtest.Trade) bool { return t.Won() })) / float64(len(trades))
}

// ProfitFactor is gross profit over gross loss. With no losses it is +Inf
// when anything was made and 0 otherwise.
func ProfitFactor(trades []backtest.Trade) float64 {
	gross := lo.SumBy(trades, func(t backtest.Trade) float64 { return max(t.Profit, 0) })
	loss := -lo.SumBy(trades, func(t backtest.Trade) float64 { return min(t.Profit, 0) })
	switch {
	case loss > 0:
		return gross / loss
	case gross > 0:
		return math.Inf(1)
	default:
		return 0
	}
}

// AvgHoldDays is the mean number of whole days positions were held.
func AvgHoldDays(trades []backtest.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	days := lo.SumBy(trades, func(t backtest.Trade) int { return t.HoldDays() })
	return float64(days) / float64(len(trades))
}

func meanProfit(trades []backtest.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	return stat.Mean(lo.Map(trades, func(t backtest.Trade, _ int) float64 { return t.Profit }), nil)
}
