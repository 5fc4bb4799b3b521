package sweep

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/rustyeddy/barsim/performance"
)

var metricFuncs = map[string]func(performance.Metrics) float64{
	"total_return":  func(m performance.Metrics) float64 { return m.TotalReturn },
	"annual_return": func(m performance.Metrics) float64 { return m.AnnualReturn },
	"sharpe_ratio":  func(m performance.Metrics) float64 { return m.SharpeRatio },
	"max_drawdown":  func(m performance.Metrics) float64 { return m.MaxDrawdown },
	"win_rate":      func(m performance.Metrics) float64 { return m.WinRate },
	"profit_factor": func(m performance.Metrics) float64 { return m.ProfitFactor },
	"net_profit":    func(m performance.Metrics) float64 { return m.NetProfit },
}

// MetricNames lists the metrics Rank and Best accept.
func MetricNames() []string {
	names := lo.Keys(metricFuncs)
	sort.Strings(names)
	return names
}

// MetricValue reads the named metric. Every metric is higher-is-better;
// drawdowns are negative so the shallowest ranks first.
func MetricValue(m performance.Metrics, metric string) (float64, error) {
	f, ok := metricFuncs[strings.ToLower(metric)]
	if !ok {
		return 0, fmt.Errorf("unknown metric %q (supported: %s)", metric, strings.Join(MetricNames(), ", "))
	}
	return f(m), nil
}

// Rank returns the successful outcomes ordered best first by metric. Ties
// keep their input order.
func Rank(outcomes []Outcome, metric string) ([]Outcome, error) {
	if _, err := MetricValue(performance.Metrics{}, metric); err != nil {
		return nil, err
	}
	ok := lo.Filter(outcomes, func(o Outcome, _ int) bool { return o.Err == nil })
	sort.SliceStable(ok, func(i, j int) bool {
		a, _ := MetricValue(ok[i].Metrics, metric)
		b, _ := MetricValue(ok[j].Metrics, metric)
		return a > b
	})
	return ok, nil
}

// Best returns the top outcome by metric, if any case succeeded.
func Best(outcomes []Outcome, metric string) (Outcome, bool, error) {
	ranked, err := Rank(outcomes, metric)
	if err != nil || len(ranked) == 0 {
		return Outcome{}, false, err
	}
	return ranked[0], true, nil
}
