// Package config loads the YAML or JSON file that drives the barsim CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/barsim/backtest"
	"github.com/rustyeddy/barsim/strategies"
	"github.com/rustyeddy/barsim/sweep"
)

// Config is the complete run configuration.
type Config struct {
	LogLevel string          `json:"log_level" yaml:"log_level"`
	Backtest backtest.Config `json:"backtest" yaml:"backtest"`
	Data     DataConfig      `json:"data" yaml:"data"`
	Strategy StrategyConfig  `json:"strategy" yaml:"strategy"`
	Sweep    SweepConfig     `json:"sweep" yaml:"sweep"`
	Journal  JournalConfig   `json:"journal" yaml:"journal"`
	Report   ReportConfig    `json:"report" yaml:"report"`
}

// DataConfig points at the bar file to replay.
type DataConfig struct {
	Path       string `json:"path,omitempty" yaml:"path,omitempty"`
	Instrument string `json:"instrument,omitempty" yaml:"instrument,omitempty"`
}

// StrategyConfig names a registered strategy and its params.
type StrategyConfig struct {
	Name   string            `json:"name" yaml:"name"`
	Params strategies.Params `json:"params,omitempty" yaml:"params,omitempty"`
}

// SweepConfig is the parameter grid tried by "barsim sweep". Grid values
// override Strategy.Params key by key.
type SweepConfig struct {
	Workers int             `json:"workers" yaml:"workers"`
	Metric  string          `json:"metric" yaml:"metric"`
	Grid    strategies.Grid `json:"grid,omitempty" yaml:"grid,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	RunsFile   string `json:"runs_file,omitempty" yaml:"runs_file,omitempty"`
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// ReportConfig selects the summary format. An empty Path writes to stdout.
type ReportConfig struct {
	Format string `json:"format" yaml:"format"` // "text", "org" or "html"
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
}

var (
	logLevels     = []string{"debug", "info", "warn", "error"}
	journalTypes  = []string{"none", "csv", "sqlite"}
	reportFormats = []string{"text", "org", "html"}
)

// LoadFromFile reads a YAML or JSON config. Fields missing from the file
// keep their Default values.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := defaultsForLoad()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = defaultsForLoad()
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes YAML for .yaml/.yml paths and indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if !slices.Contains(logLevels, c.LogLevel) {
		return fmt.Errorf("log_level must be one of %s", strings.Join(logLevels, ", "))
	}
	if err := c.Backtest.Validate(); err != nil {
		return fmt.Errorf("backtest: %w", err)
	}
	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}
	if _, err := strategies.Build(c.Strategy.Name, c.Strategy.Params); err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	if c.Sweep.Workers < 0 {
		return fmt.Errorf("sweep.workers must not be negative")
	}
	if !slices.Contains(sweep.MetricNames(), c.Sweep.Metric) {
		return fmt.Errorf("sweep.metric must be one of %s", strings.Join(sweep.MetricNames(), ", "))
	}
	if !slices.Contains(journalTypes, c.Journal.Type) {
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	if c.Journal.Type == "csv" && (c.Journal.RunsFile == "" || c.Journal.TradesFile == "" || c.Journal.EquityFile == "") {
		return fmt.Errorf("journal runs_file, trades_file and equity_file required for CSV type")
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal db_path required for SQLite type")
	}
	if !slices.Contains(reportFormats, c.Report.Format) {
		return fmt.Errorf("report.format must be one of %s", strings.Join(reportFormats, ", "))
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Backtest: backtest.DefaultConfig(),
		Strategy: StrategyConfig{
			Name:   "ma-cross",
			Params: strategies.Params{"short": 20, "long": 50},
		},
		Sweep: SweepConfig{
			Metric: "sharpe_ratio",
			Grid: strategies.Grid{
				"short": {10, 20, 30},
				"long":  {50, 100, 200},
			},
		},
		Journal: JournalConfig{
			Type: "none",
		},
		Report: ReportConfig{
			Format: "text",
		},
	}
}

// defaultsForLoad is Default without the map-valued fields, which decoding
// would otherwise merge into instead of replacing.
func defaultsForLoad() *Config {
	cfg := Default()
	cfg.Strategy.Params = nil
	cfg.Sweep.Grid = nil
	return cfg
}

// SweepParams merges Strategy.Params under each point of the sweep grid.
func (c *Config) SweepParams() []strategies.Params {
	points := c.Sweep.Grid.Expand()
	out := make([]strategies.Params, len(points))
	for i, p := range points {
		merged := strategies.Params{}
		for k, v := range c.Strategy.Params {
			merged[k] = v
		}
		for k, v := range p {
			merged[k] = v
		}
		out[i] = merged
	}
	return out
}
