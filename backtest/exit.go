package backtest

import (
	"github.com/rustyeddy/barsim/market"
	"github.com/rustyeddy/barsim/strategies"
)

// ExitDecision is the price and reason a position should be closed at.
type ExitDecision struct {
	Price  float64
	Reason ExitReason
}

// EvaluateExit checks an open position against one bar. Rules are tried in
// a fixed order and the first hit wins:
//
//  1. stop-loss, when the low or close trades at or below the stop; fills at the stop
//  2. take-profit, when the high or close trades at or above the take; fills at the take
//  3. a Sell signal; fills at the close
//  4. the final bar of the run; fills at the close
//
// A bar that touches both levels is treated as a stop, the worst case for
// a long.
func EvaluateExit(pos Position, bar market.Bar, signal strategies.Signal, final bool) (ExitDecision, bool) {
	if pos.StopLoss != nil && min(bar.Low, bar.Close) <= *pos.StopLoss {
		return ExitDecision{Price: *pos.StopLoss, Reason: ExitStopLoss}, true
	}
	if pos.TakeProfit != nil && max(bar.High, bar.Close) >= *pos.TakeProfit {
		return ExitDecision{Price: *pos.TakeProfit, Reason: ExitTakeProfit}, true
	}
	if signal == strategies.Sell {
		return ExitDecision{Price: bar.Close, Reason: ExitSignal}, true
	}
	if final {
		return ExitDecision{Price: bar.Close, Reason: ExitEndOfBacktest}, true
	}
	return ExitDecision{}, false
}
