package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/barsim/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage barsim configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  barsim config init -o backtest.yaml
  barsim config validate -f backtest.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	Long: `Create a new configuration file with default settings. The format
follows the extension: .yaml/.yml for YAML, anything else for JSON.

Example:
  barsim config init -o backtest.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Check if a configuration file is valid and can be loaded.

Example:
  barsim config validate -f backtest.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "backtest.yaml", "output config file path")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (required)")
	configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Created default configuration: %s\n", configInitOutput)
	fmt.Fprintln(out, "\nSet data.path and run with:")
	fmt.Fprintf(out, "  barsim run -c %s\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Configuration valid: %s\n", configValidatePath)
	fmt.Fprintf(out, "  Capital: %.2f (commission %.3f%%, size %.0f%%)\n",
		cfg.Backtest.InitialCapital, cfg.Backtest.CommissionRate*100, cfg.Backtest.PositionSizingFraction*100)
	fmt.Fprintf(out, "  Strategy: %s %s\n", cfg.Strategy.Name, cfg.Strategy.Params)
	fmt.Fprintf(out, "  Sweep: %d cases by %s\n", cfg.Sweep.Grid.Size(), cfg.Sweep.Metric)
	fmt.Fprintf(out, "  Journal: %s\n", cfg.Journal.Type)
	return nil
}
