// Package backtest replays a signal plan over a price series, one bar at a
// time, and records the trades and equity curve it produces.
package backtest

import (
	"time"
)

// Side of a position. Only long positions are simulated.
type Side int8

const (
	Long Side = +1
)

func (s Side) String() string {
	if s == Long {
		return "LONG"
	}
	return "UNKNOWN"
}

// ExitReason records why a position was closed.
type ExitReason int8

const (
	ExitSignal ExitReason = iota + 1
	ExitStopLoss
	ExitTakeProfit
	ExitEndOfBacktest
)

func (r ExitReason) String() string {
	switch r {
	case ExitSignal:
		return "SIGNAL"
	case ExitStopLoss:
		return "STOP_LOSS"
	case ExitTakeProfit:
		return "TAKE_PROFIT"
	case ExitEndOfBacktest:
		return "END_OF_BACKTEST"
	default:
		return "UNKNOWN"
	}
}

// Position is the single open holding of a run. StopLoss and TakeProfit are
// nil when the source did not set them on the entry bar.
type Position struct {
	EntryIndex int
	EntryTime  time.Time
	EntryPrice float64
	EntryCost  float64 // shares*price plus commission
	Shares     float64
	Side       Side
	StopLoss   *float64
	TakeProfit *float64
}

// Trade is a closed round trip. Profit is net of commission on both legs.
type Trade struct {
	EntryIndex int
	EntryTime  time.Time
	EntryPrice float64
	ExitIndex  int
	ExitTime   time.Time
	ExitPrice  float64
	Shares     float64
	Side       Side
	Commission float64
	Profit     float64
	ProfitPct  float64 // exit/entry - 1, before commission
	ExitReason ExitReason
}

// HoldDays is the number of whole days the position was held.
func (t Trade) HoldDays() int {
	return int(t.ExitTime.Sub(t.EntryTime).Hours() / 24)
}

// Won reports whether the trade made money after commission.
func (t Trade) Won() bool { return t.Profit > 0 }

// EquityPoint is the marked-to-market account value at the close of a bar.
type EquityPoint struct {
	Time   time.Time
	Equity float64
}
