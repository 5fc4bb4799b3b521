package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/barsim/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the run journal",
	Long: `Query and display backtest runs recorded in a SQLite journal.

Subcommands:
  runs    - List recent runs
  run     - Show one run
  trades  - Print the trades of a run as Org-mode entries
  trade   - Print one trade as an Org-mode entry
  equity  - Print the equity curve of a run

Examples:
  barsim journal runs -n 10
  barsim journal trades <run-id>`,
}

var journalRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runJournalRuns,
}

var journalRunCmd = &cobra.Command{
	Use:   "run <run-id>",
	Short: "Show the details of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalRun,
}

var journalTradesCmd = &cobra.Command{
	Use:   "trades <run-id>",
	Short: "Print the trades of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrades,
}

var journalTradeCmd = &cobra.Command{
	Use:   "trade <trade-id>",
	Short: "Get details of a specific trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrade,
}

var journalEquityCmd = &cobra.Command{
	Use:   "equity <run-id>",
	Short: "Print the equity curve of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalEquity,
}

var (
	journalDBPath string
	journalLimit  int
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunsCmd)
	journalCmd.AddCommand(journalRunCmd)
	journalCmd.AddCommand(journalTradesCmd)
	journalCmd.AddCommand(journalTradeCmd)
	journalCmd.AddCommand(journalEquityCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./barsim.sqlite", "path to SQLite journal DB")
	journalRunsCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "maximum runs to list (0 = all)")
}

func openSQLite() (*journal.SQLite, error) {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalRuns(cmd *cobra.Command, args []string) error {
	j, err := openSQLite()
	if err != nil {
		return err
	}
	defer j.Close()

	runs, err := j.ListRuns(journalLimit)
	if err != nil {
		return fmt.Errorf("query runs: %w", err)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tCREATED\tSTRATEGY\tINSTRUMENT\tTRADES\tRETURN\tSHARPE")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%.2f%%\t%.2f\n",
			r.RunID, r.Created.Format(time.DateTime), r.Strategy, r.Instrument,
			r.Trades, r.TotalReturn*100, r.SharpeRatio)
	}
	return tw.Flush()
}

func runJournalRun(cmd *cobra.Command, args []string) error {
	j, err := openSQLite()
	if err != nil {
		return err
	}
	defer j.Close()

	r, err := j.GetRun(args[0])
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Run ID:\t%s\n", r.RunID)
	fmt.Fprintf(tw, "Created:\t%s\n", r.Created.Format(time.RFC3339))
	fmt.Fprintf(tw, "Strategy:\t%s %s\n", r.Strategy, r.Params)
	fmt.Fprintf(tw, "Instrument:\t%s\n", r.Instrument)
	fmt.Fprintf(tw, "Dataset:\t%s\n", r.Dataset)
	fmt.Fprintf(tw, "Period:\t%s to %s\n", r.Start.Format(time.DateOnly), r.End.Format(time.DateOnly))
	fmt.Fprintf(tw, "Capital:\t%.2f -> %.2f\n", r.InitialCapital, r.FinalCapital)
	fmt.Fprintf(tw, "Return:\t%.2f%% (annual %.2f%%)\n", r.TotalReturn*100, r.AnnualReturn*100)
	fmt.Fprintf(tw, "Max Drawdown:\t%.2f%%\n", r.MaxDrawdown*100)
	fmt.Fprintf(tw, "Sharpe Ratio:\t%.2f\n", r.SharpeRatio)
	fmt.Fprintf(tw, "Trades:\t%d (%d won, %d lost, win rate %.2f%%)\n", r.Trades, r.Wins, r.Losses, r.WinRate*100)
	fmt.Fprintf(tw, "Profit Factor:\t%.2f\n", r.ProfitFactor)
	fmt.Fprintf(tw, "Avg Hold:\t%.1f days\n", r.AvgHoldDays)
	return tw.Flush()
}

func runJournalTrades(cmd *cobra.Command, args []string) error {
	j, err := openSQLite()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.ListTradesByRunID(args[0])
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradesOrg(recs))
	return nil
}

func runJournalTrade(cmd *cobra.Command, args []string) error {
	j, err := openSQLite()
	if err != nil {
		return err
	}
	defer j.Close()

	rec, err := j.GetTrade(args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradeOrg(rec))
	return nil
}

func runJournalEquity(cmd *cobra.Command, args []string) error {
	j, err := openSQLite()
	if err != nil {
		return err
	}
	defer j.Close()

	points, err := j.ListEquityByRunID(args[0])
	if err != nil {
		return fmt.Errorf("query equity: %w", err)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "TIME\tEQUITY\tDRAWDOWN\t")
	for _, p := range points {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f%%\t\n", p.Time.Format(time.DateOnly), p.Equity, p.Drawdown*100)
	}
	return tw.Flush()
}
