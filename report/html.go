package report

import (
	"html/template"
	"io"
)

var htmlTemplate = template.Must(template.New("html").Funcs(template.FuncMap(funcs)).Funcs(template.FuncMap{
	"sign": func(good bool) string {
		if good {
			return "positive"
		}
		return "negative"
	},
}).Parse(htmlSource))

// WriteHTML renders a standalone HTML page with metric boxes and a trade
// table.
func WriteHTML(w io.Writer, s *Summary) error {
	return htmlTemplate.Execute(w, s)
}

const htmlSource = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Backtest Report: {{.Strategy}} {{.Instrument}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        h1, h2 { color: #333; }
        table { border-collapse: collapse; width: 100%; margin-bottom: 20px; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background-color: #f2f2f2; }
        tr:nth-child(even) { background-color: #f9f9f9; }
        .positive { color: green; }
        .negative { color: red; }
        .metrics { display: flex; flex-wrap: wrap; }
        .metric-box { border: 1px solid #ddd; padding: 10px; margin: 5px; flex: 1; min-width: 200px; }
        .metric-value { font-size: 24px; font-weight: bold; margin: 10px 0; }
    </style>
</head>
<body>
    <h1>Backtest Report: {{.Strategy}} {{.Instrument}}</h1>
    <p>Run {{.RunID}} &middot; {{date .Start}} to {{date .End}}{{if .Params}} &middot; {{.Params.String}}{{end}}</p>

    <h2>Performance</h2>
    <div class="metrics">
        {{- with .Metrics }}
        <div class="metric-box">
            <div>Total Return</div>
            <div class="metric-value {{sign (gt .TotalReturn 0.0)}}">{{pct .TotalReturn}}</div>
        </div>
        <div class="metric-box">
            <div>Annual Return</div>
            <div class="metric-value {{sign (gt .AnnualReturn 0.0)}}">{{pct .AnnualReturn}}</div>
        </div>
        <div class="metric-box">
            <div>Max Drawdown</div>
            <div class="metric-value negative">{{pct .MaxDrawdown}}</div>
        </div>
        <div class="metric-box">
            <div>Sharpe Ratio</div>
            <div class="metric-value {{sign (gt .SharpeRatio 1.0)}}">{{num .SharpeRatio}}</div>
        </div>
        <div class="metric-box">
            <div>Win Rate</div>
            <div class="metric-value {{sign (gt .WinRate 0.5)}}">{{pct .WinRate}}</div>
        </div>
        <div class="metric-box">
            <div>Profit Factor</div>
            <div class="metric-value {{sign (gt .ProfitFactor 1.0)}}">{{num .ProfitFactor}}</div>
        </div>
        <div class="metric-box">
            <div>Trades</div>
            <div class="metric-value">{{.NumTrades}}</div>
        </div>
        <div class="metric-box">
            <div>Final Capital</div>
            <div class="metric-value {{sign (gt .NetProfit 0.0)}}">{{money .FinalCapital}}</div>
        </div>
        {{- end }}
    </div>

    <h2>Trades</h2>
    <table>
        <tr>
            <th>#</th>
            <th>Entry</th>
            <th>Entry Price</th>
            <th>Exit</th>
            <th>Exit Price</th>
            <th>Side</th>
            <th>Shares</th>
            <th>P/L</th>
            <th>Return</th>
            <th>Exit Reason</th>
        </tr>
        {{- range $i, $t := .Trades }}
        <tr>
            <td>{{inc $i}}</td>
            <td>{{date $t.EntryTime}}</td>
            <td>{{money $t.EntryPrice}}</td>
            <td>{{date $t.ExitTime}}</td>
            <td>{{money $t.ExitPrice}}</td>
            <td>{{$t.Side}}</td>
            <td>{{num $t.Shares}}</td>
            <td class="{{sign (gt $t.Profit 0.0)}}">{{money $t.Profit}}</td>
            <td class="{{sign (gt $t.ProfitPct 0.0)}}">{{pct $t.ProfitPct}}</td>
            <td>{{$t.ExitReason}}</td>
        </tr>
        {{- end }}
    </table>
</body>
</html>
`
