package journal

import (
	"database/sql"
	"errors"
	"fmt"
)

const runColumns = `run_id, created, strategy, params, instrument, dataset, start_time, end_time,
	initial_capital, commission_rate, sizing_fraction, final_capital,
	total_return, annual_return, max_drawdown, sharpe_ratio, win_rate, profit_factor, avg_hold_days,
	trades, wins, losses`

const tradeColumns = `trade_id, run_id, instrument, side, shares, entry_price, exit_price,
	open_time, close_time, commission, realized_pl, profit_pct, reason`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (RunRecord, error) {
	var r RunRecord
	err := s.Scan(
		&r.RunID, &r.Created, &r.Strategy, &r.Params, &r.Instrument, &r.Dataset, &r.Start, &r.End,
		&r.InitialCapital, &r.CommissionRate, &r.SizingFraction, &r.FinalCapital,
		&r.TotalReturn, &r.AnnualReturn, &r.MaxDrawdown, &r.SharpeRatio, &r.WinRate, &r.ProfitFactor, &r.AvgHoldDays,
		&r.Trades, &r.Wins, &r.Losses,
	)
	return r, err
}

func scanTrade(s scanner) (TradeRecord, error) {
	var t TradeRecord
	err := s.Scan(
		&t.TradeID, &t.RunID, &t.Instrument, &t.Side, &t.Shares, &t.EntryPrice, &t.ExitPrice,
		&t.OpenTime, &t.CloseTime, &t.Commission, &t.RealizedPL, &t.ProfitPct, &t.Reason,
	)
	return t, err
}

// GetRun returns a single run by ID.
func (j *SQLite) GetRun(runID string) (RunRecord, error) {
	row := j.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("run %q: %w", runID, ErrNotFound)
	}
	return r, err
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (j *SQLite) ListRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.Query(`SELECT `+runColumns+` FROM runs ORDER BY created DESC, run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTrade returns a single trade record by ID.
func (j *SQLite) GetTrade(tradeID string) (TradeRecord, error) {
	row := j.db.QueryRow(`SELECT `+tradeColumns+` FROM trades WHERE trade_id = ?`, tradeID)
	t, err := scanTrade(row)
	if errors.Is(err, sql.ErrNoRows) {
		return TradeRecord{}, fmt.Errorf("trade %q: %w", tradeID, ErrNotFound)
	}
	return t, err
}

// ListTradesByRunID returns the trades of a run in close order.
func (j *SQLite) ListTradesByRunID(runID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE run_id = ?
		ORDER BY close_time ASC, trade_id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquityByRunID returns the equity curve of a run in time order.
func (j *SQLite) ListEquityByRunID(runID string) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT run_id, time, equity, drawdown
		FROM equity
		WHERE run_id = ?
		ORDER BY time ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var e EquitySnapshot
		if err := rows.Scan(&e.RunID, &e.Time, &e.Equity, &e.Drawdown); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
