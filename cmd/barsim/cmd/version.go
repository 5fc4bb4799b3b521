package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X".
var version = "0.3.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the barsim CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "barsim version %s\n", version)
		fmt.Fprintln(cmd.OutOrStdout(), "A bar-by-bar strategy backtester")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
