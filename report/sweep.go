package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rustyeddy/barsim/sweep"
)

// WriteSweep prints one row per outcome, best first by metric. Failed cases
// are listed after the ranked ones with their error.
func WriteSweep(w io.Writer, outcomes []sweep.Outcome, metric string) error {
	ranked, err := sweep.Rank(outcomes, metric)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "rank\tcase\ttrades\twin rate\treturn\tmax dd\tsharpe\tprofit factor\tfinal\t")
	for i, o := range ranked {
		m := o.Metrics
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			i+1, o.Case.Name, m.NumTrades, pct(m.WinRate), pct(m.TotalReturn),
			pct(m.MaxDrawdown), fixed(m.SharpeRatio, 2), fixed(m.ProfitFactor, 2), money(m.FinalCapital))
	}
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(tw, "-\t%s\t\t\t\t\t\t\t%v\t\n", o.Case.Name, o.Err)
		}
	}
	return tw.Flush()
}
