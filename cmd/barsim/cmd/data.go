package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/barsim/market"
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Inspect and convert bar files",
	Long: `Work with the OHLCV bar files barsim replays.

Subcommands:
  info    - Print the instrument, bar count and date span of a file
  convert - Convert a CSV bar file to Parquet

Examples:
  barsim data info data/spy.csv
  barsim data convert data/spy.csv data/spy.parquet -i SPY`,
}

var dataInfoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Describe a bar file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDataInfo,
}

var dataConvertCmd = &cobra.Command{
	Use:   "convert <in> <out.parquet>",
	Short: "Convert a CSV bar file to Parquet",
	Args:  cobra.ExactArgs(2),
	RunE:  runDataConvert,
}

var dataInstrument string

func init() {
	rootCmd.AddCommand(dataCmd)
	dataCmd.AddCommand(dataInfoCmd)
	dataCmd.AddCommand(dataConvertCmd)

	dataCmd.PersistentFlags().StringVarP(&dataInstrument, "instrument", "i", "", "instrument symbol for the bars")
}

func runDataInfo(cmd *cobra.Command, args []string) error {
	ps, err := market.Load(args[0], dataInstrument)
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "File:       %s\n", args[0])
	fmt.Fprintf(out, "Instrument: %s\n", ps.Instrument)
	fmt.Fprintf(out, "Bars:       %d\n", ps.Len())
	if ps.Len() > 0 {
		start, end := ps.Span()
		first, last := ps.At(0), ps.At(ps.Len()-1)
		fmt.Fprintf(out, "Start:      %s  close %.2f\n", start.Format(time.DateOnly), first.Close)
		fmt.Fprintf(out, "End:        %s  close %.2f\n", end.Format(time.DateOnly), last.Close)
	}
	return nil
}

func runDataConvert(cmd *cobra.Command, args []string) error {
	in, out := args[0], args[1]
	if ext := filepath.Ext(out); ext != ".parquet" && ext != ".pq" {
		return fmt.Errorf("output %s: only .parquet output is supported", out)
	}

	ps, err := market.Load(in, dataInstrument)
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}
	if err := market.WriteParquet(out, ps); err != nil {
		return fmt.Errorf("write parquet: %w", err)
	}

	logger.Info("bars converted", "from", in, "to", out, "bars", ps.Len())
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d bars to %s\n", ps.Len(), out)
	return nil
}
