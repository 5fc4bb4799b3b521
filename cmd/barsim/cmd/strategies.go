package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/barsim/strategies"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the registered strategies",
	Long: `List the strategy names accepted by run, sweep and the config file.

Every strategy also takes the exit params stop_pct, take_pct, atr_period,
atr_stop, atr_take, swing_lookback, rr and no_exits.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range strategies.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}
