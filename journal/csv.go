package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

var (
	runsHeader = []string{"run_id", "created", "strategy", "params", "instrument", "dataset", "start", "end",
		"initial_capital", "final_capital", "total_return", "annual_return", "max_drawdown", "sharpe_ratio",
		"win_rate", "profit_factor", "avg_hold_days", "trades"}
	tradesHeader = []string{"trade_id", "run_id", "instrument", "side", "shares", "entry_price", "exit_price",
		"open_time", "close_time", "commission", "realized_pl", "profit_pct", "reason"}
	equityHeader = []string{"run_id", "time", "equity", "drawdown"}
)

// CSVJournal appends records to three CSV files, one per record kind.
type CSVJournal struct {
	files   []*os.File
	runs    *csv.Writer
	trades  *csv.Writer
	equity  *csv.Writer
	writers []*csv.Writer
}

func NewCSV(runsPath, tradesPath, equityPath string) (*CSVJournal, error) {
	j := &CSVJournal{}
	open := func(path string, header []string) (*csv.Writer, error) {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		j.files = append(j.files, f)
		w := csv.NewWriter(f)
		j.writers = append(j.writers, w)
		if err := write(w, header); err != nil {
			return nil, err
		}
		return w, nil
	}

	var err error
	if j.runs, err = open(runsPath, runsHeader); err != nil {
		j.closeFiles()
		return nil, err
	}
	if j.trades, err = open(tradesPath, tradesHeader); err != nil {
		j.closeFiles()
		return nil, err
	}
	if j.equity, err = open(equityPath, equityHeader); err != nil {
		j.closeFiles()
		return nil, err
	}
	return j, nil
}

func (j *CSVJournal) RecordRun(r RunRecord) error {
	return write(j.runs, []string{
		r.RunID,
		r.Created.UTC().Format(time.RFC3339),
		r.Strategy,
		r.Params,
		r.Instrument,
		r.Dataset,
		r.Start.UTC().Format(time.RFC3339),
		r.End.UTC().Format(time.RFC3339),
		f(r.InitialCapital),
		f(r.FinalCapital),
		f(r.TotalReturn),
		f(r.AnnualReturn),
		f(r.MaxDrawdown),
		f(r.SharpeRatio),
		f(r.WinRate),
		f(r.ProfitFactor),
		f(r.AvgHoldDays),
		strconv.Itoa(r.Trades),
	})
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	return write(j.trades, []string{
		t.TradeID,
		t.RunID,
		t.Instrument,
		t.Side,
		f(t.Shares),
		f(t.EntryPrice),
		f(t.ExitPrice),
		t.OpenTime.UTC().Format(time.RFC3339),
		t.CloseTime.UTC().Format(time.RFC3339),
		f(t.Commission),
		f(t.RealizedPL),
		f(t.ProfitPct),
		t.Reason,
	})
}

func (j *CSVJournal) RecordEquity(e EquitySnapshot) error {
	return write(j.equity, []string{
		e.RunID,
		e.Time.UTC().Format(time.RFC3339),
		f(e.Equity),
		f(e.Drawdown),
	})
}

func (j *CSVJournal) Close() error {
	for _, w := range j.writers {
		w.Flush()
		if err := w.Error(); err != nil {
			j.closeFiles()
			return err
		}
	}
	return j.closeFiles()
}

func (j *CSVJournal) closeFiles() error {
	var first error
	for _, file := range j.files {
		if err := file.Close(); err != nil && first == nil {
			first = err
		}
	}
	j.files = nil
	return first
}

func write(w *csv.Writer, row []string) error {
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
