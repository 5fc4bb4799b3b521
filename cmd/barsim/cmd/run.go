package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/barsim/backtest"
	"github.com/rustyeddy/barsim/config"
	"github.com/rustyeddy/barsim/journal"
	"github.com/rustyeddy/barsim/market"
	"github.com/rustyeddy/barsim/report"
	"github.com/rustyeddy/barsim/strategies"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Backtest one strategy over a bar file",
	Long: `Run replays a CSV or Parquet bar file through a strategy and prints a
summary. Flags override the matching config file settings.

Examples:
  barsim run -d data/spy.csv -s ma-cross -p short=10 -p long=50
  barsim run -c backtest.yaml -f org -o reports/spy.org`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var (
	runData       string
	runInstrument string
	runStrategy   string
	runParams     []string
	runFormat     string
	runOutput     string
	runCapital    float64
	runCommission float64
	runSizing     float64
	runNotes      []string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runData, "data", "d", "", "bar file (.csv, .parquet)")
	runCmd.Flags().StringVarP(&runInstrument, "instrument", "i", "", "instrument symbol for the bars")
	runCmd.Flags().StringVarP(&runStrategy, "strategy", "s", "", "strategy name (see 'barsim strategies')")
	runCmd.Flags().StringArrayVarP(&runParams, "param", "p", nil, "strategy param as key=value (repeatable)")
	runCmd.Flags().StringVarP(&runFormat, "format", "f", "", "report format: text, org or html")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "report file (stdout when empty)")
	runCmd.Flags().Float64Var(&runCapital, "capital", 0, "initial capital")
	runCmd.Flags().Float64Var(&runCommission, "commission", -1, "commission rate per side (0.001 = 0.1%)")
	runCmd.Flags().Float64Var(&runSizing, "size", 0, "fraction of cash committed per entry")
	runCmd.Flags().StringArrayVar(&runNotes, "note", nil, "observation added to the report (repeatable)")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyRunFlags(cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ps, err := loadSeries(cfg)
	if err != nil {
		return err
	}

	source, err := strategies.Build(cfg.Strategy.Name, cfg.Strategy.Params)
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	sim, err := backtest.New(cfg.Backtest, backtest.WithLogger(logger))
	if err != nil {
		return err
	}
	res, err := sim.Run(ps, source)
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	s := report.NewSummary(res, cfg.Strategy.Params, cfg.Data.Path)
	s.Notes = runNotes

	if err := recordSummary(cfg.Journal, s); err != nil {
		return err
	}
	return writeReport(cmd.OutOrStdout(), cfg.Report, s)
}

func applyRunFlags(cfg *config.Config) error {
	if runData != "" {
		cfg.Data.Path = runData
	}
	if runInstrument != "" {
		cfg.Data.Instrument = runInstrument
	}
	if runStrategy != "" && runStrategy != cfg.Strategy.Name {
		cfg.Strategy.Name = runStrategy
		cfg.Strategy.Params = nil
	}
	if len(runParams) > 0 {
		params, err := parseParams(runParams)
		if err != nil {
			return err
		}
		if cfg.Strategy.Params == nil {
			cfg.Strategy.Params = strategies.Params{}
		}
		for k, v := range params {
			cfg.Strategy.Params[k] = v
		}
	}
	if runFormat != "" {
		cfg.Report.Format = runFormat
	}
	if runOutput != "" {
		cfg.Report.Path = runOutput
	}
	if runCapital > 0 {
		cfg.Backtest.InitialCapital = runCapital
	}
	if runCommission >= 0 {
		cfg.Backtest.CommissionRate = runCommission
	}
	if runSizing > 0 {
		cfg.Backtest.PositionSizingFraction = runSizing
	}
	return nil
}

func parseParams(kvs []string) (strategies.Params, error) {
	p := strategies.Params{}
	for _, kv := range kvs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("bad param %q (want key=value)", kv)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("bad param %q: %w", kv, err)
		}
		p[strings.TrimSpace(k)] = f
	}
	return p, nil
}

func loadSeries(cfg *config.Config) (*market.PriceSeries, error) {
	if cfg.Data.Path == "" {
		return nil, fmt.Errorf("no bar file: use --data or set data.path")
	}
	ps, err := market.Load(cfg.Data.Path, cfg.Data.Instrument)
	if err != nil {
		return nil, fmt.Errorf("load bars: %w", err)
	}
	start, end := ps.Span()
	logger.Info("bars loaded", "path", cfg.Data.Path, "instrument", ps.Instrument, "bars", ps.Len(), "start", start, "end", end)
	return ps, nil
}

func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "csv":
		return journal.NewCSV(jc.RunsFile, jc.TradesFile, jc.EquityFile)
	case "sqlite":
		return journal.NewSQLite(jc.DBPath)
	default:
		return nil, nil
	}
}

func recordSummary(jc config.JournalConfig, s *report.Summary) error {
	j, err := openJournal(jc)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	if j == nil {
		return nil
	}
	defer j.Close()

	if err := s.Record(j); err != nil {
		return fmt.Errorf("journal run: %w", err)
	}
	logger.Info("run journaled", "run_id", s.RunID, "journal", jc.Type, "trades", len(s.Trades))
	return nil
}

func writeReport(stdout io.Writer, rc config.ReportConfig, s *report.Summary) error {
	w := stdout
	if rc.Path != "" {
		f, err := os.Create(rc.Path)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		defer f.Close()
		w = f
	}

	var err error
	switch rc.Format {
	case "org":
		err = report.WriteOrg(w, s)
	case "html":
		err = report.WriteHTML(w, s)
	default:
		err = report.WriteText(w, s)
	}
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if rc.Path != "" {
		fmt.Fprintf(stdout, "Report written: %s (run %s)\n", rc.Path, s.RunID)
	}
	return nil
}
