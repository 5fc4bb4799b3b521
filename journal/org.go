package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatTradeOrg renders a TradeRecord as an Org-mode block for a review
// journal. Structured facts live in the PROPERTIES drawer; the Thesis and
// Review headings are left for notes.
func FormatTradeOrg(t TradeRecord) string {
	heading := fmt.Sprintf("** Trade: %s %s (%s)", t.Instrument, t.Side, shortID(t.TradeID))
	open := t.OpenTime.UTC().Format(time.RFC3339)
	close := t.CloseTime.UTC().Format(time.RFC3339)

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":TRADE_ID: %s\n", t.TradeID)
	fmt.Fprintf(&b, ":RUN_ID: %s\n", t.RunID)
	fmt.Fprintf(&b, ":INSTRUMENT: %s\n", t.Instrument)
	fmt.Fprintf(&b, ":SHARES: %.4f\n", t.Shares)
	fmt.Fprintf(&b, ":ENTRY_PRICE: %.4f\n", t.EntryPrice)
	fmt.Fprintf(&b, ":EXIT_PRICE: %.4f\n", t.ExitPrice)
	fmt.Fprintf(&b, ":OPEN_TIME: %s\n", open)
	fmt.Fprintf(&b, ":CLOSE_TIME: %s\n", close)
	fmt.Fprintf(&b, ":COMMISSION: %.2f\n", t.Commission)
	fmt.Fprintf(&b, ":REALIZED_PL: %.2f\n", t.RealizedPL)
	fmt.Fprintf(&b, ":RETURN_PCT: %.2f\n", t.ProfitPct*100)
	fmt.Fprintf(&b, ":REASON: %s\n", t.Reason)
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Thesis\n- \n\n")
	b.WriteString("*** Review\n- \n")

	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []TradeRecord) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[len(full)-8:]
}
