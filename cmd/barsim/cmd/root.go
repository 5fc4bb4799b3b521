package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/barsim/config"
)

var rootCmd = &cobra.Command{
	Use:   "barsim",
	Short: "Bar-by-bar backtesting for long-only trading strategies",
	Long: `Barsim replays daily OHLCV bars through a signal strategy and reports
how the account would have done.

It provides tools for:
  - Running a single backtest from CSV or Parquet bars
  - Sweeping a strategy over a parameter grid in parallel
  - Journaling runs, trades and equity to CSV or SQLite
  - Rendering results as text, Org-mode or HTML`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

var (
	cfgFile  string
	logLevel string
	verbose  bool

	logger = slog.New(slog.DiscardHandler)
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON); defaults are used when empty")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "shorthand for --log-level debug")
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level := logLevel
	if verbose {
		level = "debug"
	}
	if level == "" {
		level = "warn"
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: l}))
	return nil
}

// loadConfig returns the --config file or the defaults. A log_level in the
// file applies unless one was given on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}

	cfg, err := config.LoadFromFile(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel == "" && !verbose {
		var l slog.Level
		if err := l.UnmarshalText([]byte(cfg.LogLevel)); err == nil {
			logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: l}))
		}
	}
	logger.Debug("config loaded", "path", cfgFile)
	return cfg, nil
}
