package report

import (
	"fmt"
	"io"
	"time"
)

const rule = "--------------------------------------------------"

// WriteText prints a plain-text summary for a terminal.
func WriteText(w io.Writer, s *Summary) error {
	ew := &errWriter{w: w}
	m := s.Metrics

	ew.println("==================================================")
	ew.println(" Backtest Result")
	ew.println("==================================================")

	ew.printf("Run ID:        %s\n", s.RunID)
	ew.printf("Created:       %s\n", s.Created.Format(time.RFC3339))
	ew.printf("Strategy:      %s\n", s.Strategy)
	if len(s.Params) > 0 {
		ew.printf("Params:        %s\n", s.Params)
	}
	ew.printf("Instrument:    %s\n", s.Instrument)
	if s.Dataset != "" {
		ew.printf("Dataset:       %s\n", s.Dataset)
	}

	ew.println()
	ew.println("Period")
	ew.println(rule)
	ew.printf("Start:         %s\n", s.Start.Format(time.RFC3339))
	ew.printf("End:           %s\n", s.End.Format(time.RFC3339))
	ew.printf("Bars:          %d\n", len(s.Equity))

	ew.println()
	ew.println("Simulation")
	ew.println(rule)
	ew.printf("Commission:    %s per side\n", pct(s.Config.CommissionRate))
	ew.printf("Position Size: %s of cash\n", pct(s.Config.PositionSizingFraction))

	ew.println()
	ew.println("Trade Statistics")
	ew.println(rule)
	ew.printf("Trades:        %d\n", m.NumTrades)
	ew.printf("Wins:          %d\n", m.Wins)
	ew.printf("Losses:        %d\n", m.Losses)
	ew.printf("Win Rate:      %s\n", pct(m.WinRate))
	ew.printf("Avg Win:       %s\n", money(m.AvgProfit))
	ew.printf("Avg Loss:      %s\n", money(m.AvgLoss))
	ew.printf("Avg Hold:      %s days\n", fixed(m.AvgHoldDays, 1))
	ew.printf("Profit Factor: %s\n", fixed(m.ProfitFactor, 2))

	ew.println()
	ew.println("Account Performance")
	ew.println(rule)
	ew.printf("Start Balance: %s\n", money(s.Config.InitialCapital))
	ew.printf("End Balance:   %s\n", money(m.FinalCapital))
	ew.printf("Net P/L:       %s\n", money(m.NetProfit))
	ew.printf("Return:        %s\n", pct(m.TotalReturn))
	ew.printf("Annual Return: %s\n", pct(m.AnnualReturn))
	ew.printf("Max Drawdown:  %s\n", pct(m.MaxDrawdown))
	ew.printf("Sharpe Ratio:  %s\n", fixed(m.SharpeRatio, 2))

	if len(s.Trades) > 0 {
		ew.println()
		ew.println("Trades")
		ew.println(rule)
		for i, t := range s.Trades {
			ew.printf("%3d  %s %s -> %s %s  %s  %s  %s\n",
				i+1,
				t.EntryTime.Format(time.DateOnly), money(t.EntryPrice),
				t.ExitTime.Format(time.DateOnly), money(t.ExitPrice),
				money(t.Profit), pct(t.ProfitPct), t.ExitReason)
		}
	}

	if len(s.Notes) > 0 {
		ew.println()
		ew.println("Observations")
		ew.println(rule)
		for _, note := range s.Notes {
			ew.printf("- %s\n", note)
		}
	}

	ew.println()
	return ew.err
}

// errWriter keeps the first write error so a long report can be printed
// without checking every line.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func (e *errWriter) println(args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintln(e.w, args...)
}
