package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	strategy TEXT NOT NULL,
	params TEXT NOT NULL,
	instrument TEXT NOT NULL,
	dataset TEXT NOT NULL,
	start_time DATETIME NOT NULL,
	end_time DATETIME NOT NULL,
	initial_capital REAL NOT NULL,
	commission_rate REAL NOT NULL,
	sizing_fraction REAL NOT NULL,
	final_capital REAL NOT NULL,
	total_return REAL NOT NULL,
	annual_return REAL NOT NULL,
	max_drawdown REAL NOT NULL,
	sharpe_ratio REAL NOT NULL,
	win_rate REAL NOT NULL,
	profit_factor REAL NOT NULL,
	avg_hold_days REAL NOT NULL,
	trades INTEGER NOT NULL,
	wins INTEGER NOT NULL,
	losses INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	instrument TEXT NOT NULL,
	side TEXT NOT NULL,
	shares REAL NOT NULL,
	entry_price REAL NOT NULL,
	exit_price REAL NOT NULL,
	open_time DATETIME NOT NULL,
	close_time DATETIME NOT NULL,
	commission REAL NOT NULL,
	realized_pl REAL NOT NULL,
	profit_pct REAL NOT NULL,
	reason TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	run_id TEXT NOT NULL,
	time DATETIME NOT NULL,
	equity REAL NOT NULL,
	drawdown REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id, close_time);
CREATE INDEX IF NOT EXISTS idx_equity_run ON equity(run_id, time);
`
