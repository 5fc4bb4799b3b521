package report

import (
	"io"
	"text/template"
	"time"
)

var funcs = map[string]any{
	"money": money,
	"pct":   pct,
	"num":   func(x float64) string { return fixed(x, 2) },
	"date":  func(t time.Time) string { return t.Format(time.DateOnly) },
	"inc":   func(i int) int { return i + 1 },
	"orgTime": func(t time.Time) string {
		return t.Format("2006-01-02 Mon 15:04")
	},
}

var orgTemplate = template.Must(template.New("org").Funcs(funcs).Parse(OrgTemplate))

// WriteOrg renders the summary as an Org-mode entry for a research journal.
func WriteOrg(w io.Writer, s *Summary) error {
	return orgTemplate.Execute(w, s)
}

const OrgTemplate = `* BACKTEST: {{.Strategy}} {{.Instrument}}
:PROPERTIES:
:RUN_ID:      {{.RunID}}
:STRATEGY:    {{.Strategy}}
:PARAMS:      {{if .Params}}{{.Params}}{{else}}(defaults){{end}}
:INSTRUMENT:  {{.Instrument}}
:DATASET:     {{if .Dataset}}{{.Dataset}}{{else}}(dataset?){{end}}
:START_DATE:  {{date .Start}}
:END_DATE:    {{date .End}}
:START_BAL:   {{money .Config.InitialCapital}}
:END_BAL:     {{money .Metrics.FinalCapital}}
:NET_PL:      {{money .Metrics.NetProfit}}
:RETURN_PCT:  {{pct .Metrics.TotalReturn}}
:MAX_DD_PCT:  {{pct .Metrics.MaxDrawdown}}
:SHARPE:      {{num .Metrics.SharpeRatio}}
:TRADES:      {{.Metrics.NumTrades}}
:WINS:        {{.Metrics.Wins}}
:LOSSES:      {{.Metrics.Losses}}
:WIN_RATE:    {{pct .Metrics.WinRate}}
:PROFIT_FAC:  {{num .Metrics.ProfitFactor}}
:CREATED:     [{{orgTime .Created}}]
:END:

** Simulation
| Parameter         | Value |
|-------------------+-------|
| Initial Capital   | {{money .Config.InitialCapital}} |
| Commission / side | {{pct .Config.CommissionRate}} |
| Position Size     | {{pct .Config.PositionSizingFraction}} |

** Performance Summary
- Net P/L:          *{{money .Metrics.NetProfit}}*
- Return:           *{{pct .Metrics.TotalReturn}}*
- Annual Return:    *{{pct .Metrics.AnnualReturn}}*
- Max Drawdown:     *{{pct .Metrics.MaxDrawdown}}*
- Sharpe Ratio:     *{{num .Metrics.SharpeRatio}}*
- Win Rate:         *{{pct .Metrics.WinRate}}*
- Profit Factor:    *{{num .Metrics.ProfitFactor}}*
- Avg Hold (days):  *{{num .Metrics.AvgHoldDays}}*

** Trade Distribution
| Outcome | Count |
|---------+-------|
| Wins    | {{.Metrics.Wins}} |
| Losses  | {{.Metrics.Losses}} |
| Total   | {{.Metrics.NumTrades}} |
{{- if .Trades }}

** Trades
| # | Entry | Entry Price | Exit | Exit Price | Shares | P/L | Return | Reason |
|---+-------+-------------+------+------------+--------+-----+--------+--------|
{{- range $i, $t := .Trades }}
| {{inc $i}} | {{date $t.EntryTime}} | {{money $t.EntryPrice}} | {{date $t.ExitTime}} | {{money $t.ExitPrice}} | {{num $t.Shares}} | {{money $t.Profit}} | {{pct $t.ProfitPct}} | {{$t.ExitReason}} |
{{- end }}
{{- end }}
{{- if .Notes }}

** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`
