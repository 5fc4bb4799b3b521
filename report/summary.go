// Package report renders a finished backtest as text, Org-mode or HTML and
// persists it to a journal.
package report

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/barsim/backtest"
	"github.com/rustyeddy/barsim/internal/id"
	"github.com/rustyeddy/barsim/journal"
	"github.com/rustyeddy/barsim/performance"
	"github.com/rustyeddy/barsim/strategies"
)

// Summary is a run plus the metadata needed to file and render it.
type Summary struct {
	RunID      string
	Created    time.Time
	Strategy   string
	Params     strategies.Params
	Instrument string
	Dataset    string
	Start      time.Time
	End        time.Time
	Config     backtest.Config
	Metrics    performance.Metrics
	Trades     []backtest.Trade
	Equity     []backtest.EquityPoint

	Notes []string
}

// NewSummary analyzes res and stamps it with a fresh run ID.
func NewSummary(res *backtest.Result, params strategies.Params, dataset string) *Summary {
	return &Summary{
		RunID:      id.New(),
		Created:    time.Now().UTC(),
		Strategy:   res.Strategy,
		Params:     params,
		Instrument: res.Instrument,
		Dataset:    dataset,
		Start:      res.Start,
		End:        res.End,
		Config:     res.Config,
		Metrics:    performance.Analyze(res),
		Trades:     res.Trades,
		Equity:     res.EquityCurve,
	}
}

// RunRecord flattens the summary into a journal row.
func (s *Summary) RunRecord() journal.RunRecord {
	m := s.Metrics
	return journal.RunRecord{
		RunID:          s.RunID,
		Created:        s.Created,
		Strategy:       s.Strategy,
		Params:         s.Params.String(),
		Instrument:     s.Instrument,
		Dataset:        s.Dataset,
		Start:          s.Start,
		End:            s.End,
		InitialCapital: s.Config.InitialCapital,
		CommissionRate: s.Config.CommissionRate,
		SizingFraction: s.Config.PositionSizingFraction,
		FinalCapital:   m.FinalCapital,
		TotalReturn:    m.TotalReturn,
		AnnualReturn:   m.AnnualReturn,
		MaxDrawdown:    m.MaxDrawdown,
		SharpeRatio:    m.SharpeRatio,
		WinRate:        m.WinRate,
		ProfitFactor:   m.ProfitFactor,
		AvgHoldDays:    m.AvgHoldDays,
		Trades:         m.NumTrades,
		Wins:           m.Wins,
		Losses:         m.Losses,
	}
}

// Record writes the run, every trade and every equity point to j.
func (s *Summary) Record(j journal.Journal) error {
	if err := j.RecordRun(s.RunRecord()); err != nil {
		return fmt.Errorf("record run %s: %w", s.RunID, err)
	}

	for _, t := range s.Trades {
		rec := journal.TradeRecord{
			TradeID:    id.New(),
			RunID:      s.RunID,
			Instrument: s.Instrument,
			Side:       t.Side.String(),
			Shares:     t.Shares,
			EntryPrice: t.EntryPrice,
			ExitPrice:  t.ExitPrice,
			OpenTime:   t.EntryTime,
			CloseTime:  t.ExitTime,
			Commission: t.Commission,
			RealizedPL: t.Profit,
			ProfitPct:  t.ProfitPct,
			Reason:     t.ExitReason.String(),
		}
		if err := j.RecordTrade(rec); err != nil {
			return fmt.Errorf("record trade: %w", err)
		}
	}

	dd := s.Metrics.DrawdownSeries
	for i, p := range s.Equity {
		snap := journal.EquitySnapshot{RunID: s.RunID, Time: p.Time, Equity: p.Equity}
		if i < len(dd) {
			snap.Drawdown = dd[i]
		}
		if err := j.RecordEquity(snap); err != nil {
			return fmt.Errorf("record equity: %w", err)
		}
	}
	return nil
}

// money rounds to cents, half away from zero.
func money(x float64) string {
	return fixed(x, 2)
}

// pct renders a fraction as a percentage with two decimals.
func pct(x float64) string {
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return fixed(x, 2)
	}
	return fixed(x*100, 2) + "%"
}

func fixed(x float64, places int32) string {
	switch {
	case math.IsInf(x, 1):
		return "inf"
	case math.IsInf(x, -1):
		return "-inf"
	case math.IsNaN(x):
		return "n/a"
	}
	return decimal.NewFromFloat(x).StringFixed(places)
}
