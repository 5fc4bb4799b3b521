package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/barsim/report"
	"github.com/rustyeddy/barsim/strategies"
	"github.com/rustyeddy/barsim/sweep"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Backtest a strategy over a parameter grid",
	Long: `Sweep runs one backtest per point of the config's sweep.grid in parallel
and prints the cases ranked by the chosen metric. Grid axes given with
--grid replace the config grid.

Examples:
  barsim sweep -d data/spy.csv -s ma-cross -g short=5,10,20 -g long=50,100
  barsim sweep -c backtest.yaml --metric total_return --record`,
	Args: cobra.NoArgs,
	RunE: runSweep,
}

var (
	sweepWorkers int
	sweepMetric  string
	sweepGrid    []string
	sweepRecord  bool
)

func init() {
	rootCmd.AddCommand(sweepCmd)

	sweepCmd.Flags().StringVarP(&runData, "data", "d", "", "bar file (.csv, .parquet)")
	sweepCmd.Flags().StringVarP(&runInstrument, "instrument", "i", "", "instrument symbol for the bars")
	sweepCmd.Flags().StringVarP(&runStrategy, "strategy", "s", "", "strategy name (see 'barsim strategies')")
	sweepCmd.Flags().StringArrayVarP(&runParams, "param", "p", nil, "fixed strategy param as key=value (repeatable)")
	sweepCmd.Flags().StringArrayVarP(&sweepGrid, "grid", "g", nil, "grid axis as key=v1,v2,... (repeatable)")
	sweepCmd.Flags().IntVarP(&sweepWorkers, "workers", "w", 0, "parallel backtests (0 = config or GOMAXPROCS)")
	sweepCmd.Flags().StringVarP(&sweepMetric, "metric", "m", "", "ranking metric: "+strings.Join(sweep.MetricNames(), ", "))
	sweepCmd.Flags().BoolVar(&sweepRecord, "record", false, "journal the best case using the config's journal settings")
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyRunFlags(cfg); err != nil {
		return err
	}
	if len(sweepGrid) > 0 {
		grid, err := parseGrid(sweepGrid)
		if err != nil {
			return err
		}
		cfg.Sweep.Grid = grid
	}
	if sweepWorkers > 0 {
		cfg.Sweep.Workers = sweepWorkers
	}
	if sweepMetric != "" {
		cfg.Sweep.Metric = sweepMetric
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ps, err := loadSeries(cfg)
	if err != nil {
		return err
	}

	cases, err := sweep.Cases(cfg.Strategy.Name, cfg.SweepParams(), cfg.Backtest)
	if err != nil {
		return err
	}
	logger.Info("sweep starting", "strategy", cfg.Strategy.Name, "cases", len(cases), "workers", cfg.Sweep.Workers)

	outcomes, err := sweep.Run(cmd.Context(), ps, cases, cfg.Sweep.Workers, sweep.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}
	if err := report.WriteSweep(cmd.OutOrStdout(), outcomes, cfg.Sweep.Metric); err != nil {
		return err
	}

	best, ok, err := sweep.Best(outcomes, cfg.Sweep.Metric)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("sweep: every case failed")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nBest by %s: %s\n", cfg.Sweep.Metric, best.Case.Name)

	if !sweepRecord {
		return nil
	}
	s := report.NewSummary(best.Result, best.Case.Params, cfg.Data.Path)
	s.Notes = []string{fmt.Sprintf("best of %d cases by %s", len(cases), cfg.Sweep.Metric)}
	if err := recordSummary(cfg.Journal, s); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Recorded run %s\n", s.RunID)
	return nil
}

func parseGrid(axes []string) (strategies.Grid, error) {
	g := strategies.Grid{}
	for _, axis := range axes {
		k, vs, ok := strings.Cut(axis, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("bad grid axis %q (want key=v1,v2,...)", axis)
		}
		var values []float64
		for _, v := range strings.Split(vs, ",") {
			p, err := parseParams([]string{k + "=" + v})
			if err != nil {
				return nil, fmt.Errorf("bad grid axis %q: %w", axis, err)
			}
			values = append(values, p[k])
		}
		g[k] = values
	}
	return g, nil
}
