// Package journal persists backtest runs, their trades and their equity
// curves so they can be queried and reviewed later.
package journal

import (
	"errors"
	"time"
)

// ErrNotFound is returned by lookups for a run or trade ID that is not stored.
var ErrNotFound = errors.New("not found")

// RunRecord is one backtest run and its headline metrics.
type RunRecord struct {
	RunID      string
	Created    time.Time
	Strategy   string
	Params     string
	Instrument string
	Dataset    string
	Start      time.Time
	End        time.Time

	InitialCapital float64
	CommissionRate float64
	SizingFraction float64
	FinalCapital   float64

	TotalReturn  float64
	AnnualReturn float64
	MaxDrawdown  float64
	SharpeRatio  float64
	WinRate      float64
	ProfitFactor float64
	AvgHoldDays  float64

	Trades int
	Wins   int
	Losses int
}

// TradeRecord is one closed trade of a run.
type TradeRecord struct {
	TradeID    string
	RunID      string
	Instrument string
	Side       string
	Shares     float64
	EntryPrice float64
	ExitPrice  float64
	OpenTime   time.Time
	CloseTime  time.Time
	Commission float64
	RealizedPL float64
	ProfitPct  float64
	Reason     string
}

// EquitySnapshot is one point of a run's equity curve.
type EquitySnapshot struct {
	RunID    string
	Time     time.Time
	Equity   float64
	Drawdown float64
}

type Journal interface {
	RecordRun(RunRecord) error
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}
