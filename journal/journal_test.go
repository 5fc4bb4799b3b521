package journal

import (
	"database/sql"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	openT  = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	closeT = time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
)

func sampleRun(id string, created time.Time) RunRecord {
	return RunRecord{
		RunID:          id,
		Created:        created,
		Strategy:       "MA_CROSS(20,50)",
		Params:         "long=50 short=20",
		Instrument:     "SPY",
		Dataset:        "spy.csv",
		Start:          openT,
		End:            closeT,
		InitialCapital: 50000,
		CommissionRate: 0.001,
		SizingFraction: 0.95,
		FinalCapital:   51234.5,
		TotalReturn:    0.02469,
		AnnualReturn:   0.31,
		MaxDrawdown:    -0.05,
		SharpeRatio:    1.2,
		WinRate:        0.5,
		ProfitFactor:   1.8,
		AvgHoldDays:    3,
		Trades:         2,
		Wins:           1,
		Losses:         1,
	}
}

func sampleTrade(id, runID string) TradeRecord {
	return TradeRecord{
		TradeID:    id,
		RunID:      runID,
		Instrument: "SPY",
		Side:       "LONG",
		Shares:     94.905,
		EntryPrice: 100,
		ExitPrice:  110,
		OpenTime:   openT,
		CloseTime:  closeT,
		Commission: 19.93,
		RealizedPL: 929.12,
		ProfitPct:  0.1,
		Reason:     "SIGNAL",
	}
}

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	require.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('runs','trades','equity')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		assert.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.NoError(t, rows.Err())

	assert.True(t, found["runs"])
	assert.True(t, found["trades"])
	assert.True(t, found["equity"])
}

func TestSQLiteRunRoundTrip(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	want := sampleRun("RUN1", created)

	require.NoError(t, j.RecordRun(want))

	got, err := j.GetRun("RUN1")
	require.NoError(t, err)

	assert.True(t, got.Created.Equal(want.Created))
	assert.True(t, got.Start.Equal(want.Start))
	assert.True(t, got.End.Equal(want.End))
	got.Created, got.Start, got.End = want.Created, want.Start, want.End
	assert.Equal(t, want, got)

	_, err = j.GetRun("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteListRuns(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"A", "B", "C"} {
		require.NoError(t, j.RecordRun(sampleRun(id, base.Add(time.Duration(i)*time.Hour))))
	}

	runs, err := j.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "C", runs[0].RunID)
	assert.Equal(t, "A", runs[2].RunID)

	runs, err = j.ListRuns(2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestSQLiteTradesAndEquityByRun(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)

	first := sampleTrade("T1", "RUN1")
	second := sampleTrade("T2", "RUN1")
	second.OpenTime = closeT
	second.CloseTime = closeT.AddDate(0, 0, 2)
	second.RealizedPL = -40
	other := sampleTrade("T3", "RUN2")

	for _, tr := range []TradeRecord{second, other, first} {
		require.NoError(t, j.RecordTrade(tr))
	}
	for i := range 3 {
		require.NoError(t, j.RecordEquity(EquitySnapshot{
			RunID:  "RUN1",
			Time:   openT.AddDate(0, 0, 2-i),
			Equity: 1000 + float64(i),
		}))
	}

	trades, err := j.ListTradesByRunID("RUN1")
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "T1", trades[0].TradeID)
	assert.Equal(t, "T2", trades[1].TradeID)
	assert.InDelta(t, -40.0, trades[1].RealizedPL, 1e-9)
	assert.Equal(t, "SIGNAL", trades[0].Reason)
	assert.True(t, trades[0].OpenTime.Equal(openT))

	eq, err := j.ListEquityByRunID("RUN1")
	require.NoError(t, err)
	require.Len(t, eq, 3)
	assert.True(t, eq[0].Time.Equal(openT))
	assert.Equal(t, 1002.0, eq[0].Equity)

	none, err := j.ListTradesByRunID("nope")
	require.NoError(t, err)
	assert.Empty(t, none)

	got, err := j.GetTrade("T3")
	require.NoError(t, err)
	assert.Equal(t, "RUN2", got.RunID)
	assert.InDelta(t, 94.905, got.Shares, 1e-9)

	_, err = j.GetTrade("T9")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteDuplicateTradeRejected(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	require.NoError(t, j.RecordTrade(sampleTrade("T1", "RUN1")))
	assert.Error(t, j.RecordTrade(sampleTrade("T1", "RUN1")))
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVJournal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	runsPath := filepath.Join(dir, "runs.csv")
	tradesPath := filepath.Join(dir, "trades.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(runsPath, tradesPath, equityPath)
	require.NoError(t, err)

	require.NoError(t, j.RecordRun(sampleRun("RUN1", closeT)))
	require.NoError(t, j.RecordTrade(sampleTrade("T1", "RUN1")))
	require.NoError(t, j.RecordEquity(EquitySnapshot{RunID: "RUN1", Time: openT, Equity: 999.9, Drawdown: -0.01}))
	require.NoError(t, j.Close())

	runs := readCSV(t, runsPath)
	require.Len(t, runs, 2)
	assert.Equal(t, runsHeader, runs[0])
	assert.Equal(t, "RUN1", runs[1][0])
	assert.Equal(t, "51234.500000", runs[1][9])
	assert.Equal(t, "2", runs[1][17])

	trades := readCSV(t, tradesPath)
	require.Len(t, trades, 2)
	assert.Equal(t, tradesHeader, trades[0])
	assert.Equal(t, []string{
		"T1", "RUN1", "SPY", "LONG", "94.905000", "100.000000", "110.000000",
		"2024-01-02T00:00:00Z", "2024-01-05T00:00:00Z",
		"19.930000", "929.120000", "0.100000", "SIGNAL",
	}, trades[1])

	equity := readCSV(t, equityPath)
	require.Len(t, equity, 2)
	assert.Equal(t, equityHeader, equity[0])
	assert.Equal(t, []string{"RUN1", "2024-01-02T00:00:00Z", "999.900000", "-0.010000"}, equity[1])
}

func TestCSVJournalBadPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := NewCSV(filepath.Join(dir, "runs.csv"), filepath.Join(dir, "missing", "trades.csv"), filepath.Join(dir, "equity.csv"))
	assert.Error(t, err)
}

func TestFormatTradeOrg(t *testing.T) {
	t.Parallel()

	result := FormatTradeOrg(sampleTrade("01HZX3Q7ABCDEFGH", "RUN1"))

	assert.Contains(t, result, "** Trade: SPY LONG (ABCDEFGH)")
	assert.Contains(t, result, ":PROPERTIES:")
	assert.Contains(t, result, ":TRADE_ID: 01HZX3Q7ABCDEFGH")
	assert.Contains(t, result, ":RUN_ID: RUN1")
	assert.Contains(t, result, ":SHARES: 94.9050")
	assert.Contains(t, result, ":ENTRY_PRICE: 100.0000")
	assert.Contains(t, result, ":OPEN_TIME: 2024-01-02T00:00:00Z")
	assert.Contains(t, result, ":CLOSE_TIME: 2024-01-05T00:00:00Z")
	assert.Contains(t, result, ":REALIZED_PL: 929.12")
	assert.Contains(t, result, ":RETURN_PCT: 10.00")
	assert.Contains(t, result, ":REASON: SIGNAL")
	assert.Contains(t, result, ":END:")
	assert.Contains(t, result, "*** Thesis")
	assert.Contains(t, result, "*** Review")
}

func TestFormatTradesOrg(t *testing.T) {
	t.Parallel()

	assert.Empty(t, FormatTradesOrg(nil))

	out := FormatTradesOrg([]TradeRecord{sampleTrade("short", "R"), sampleTrade("other", "R")})
	assert.Equal(t, 2, strings.Count(out, "** Trade: "))
	assert.Contains(t, out, "(short)")
	assert.Contains(t, out, "*** Review\n- \n\n\n** Trade:")
}
