package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at path and applies Schema.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: apply schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, created, strategy, params, instrument, dataset, start_time, end_time,
		 initial_capital, commission_rate, sizing_fraction, final_capital,
		 total_return, annual_return, max_drawdown, sharpe_ratio, win_rate, profit_factor, avg_hold_days,
		 trades, wins, losses)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created, r.Strategy, r.Params, r.Instrument, r.Dataset, r.Start, r.End,
		r.InitialCapital, r.CommissionRate, r.SizingFraction, r.FinalCapital,
		r.TotalReturn, r.AnnualReturn, r.MaxDrawdown, r.SharpeRatio, r.WinRate, r.ProfitFactor, r.AvgHoldDays,
		r.Trades, r.Wins, r.Losses,
	)
	return err
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, run_id, instrument, side, shares, entry_price, exit_price, open_time, close_time,
		 commission, realized_pl, profit_pct, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.RunID, t.Instrument, t.Side, t.Shares, t.EntryPrice, t.ExitPrice,
		t.OpenTime, t.CloseTime, t.Commission, t.RealizedPL, t.ProfitPct, t.Reason,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity (run_id, time, equity, drawdown)
		VALUES (?, ?, ?, ?)`,
		e.RunID, e.Time, e.Equity, e.Drawdown,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
