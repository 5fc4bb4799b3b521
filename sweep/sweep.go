// Package sweep runs many independent backtests over one price series in
// parallel, typically a strategy's parameter grid.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/barsim/backtest"
	"github.com/rustyeddy/barsim/market"
	"github.com/rustyeddy/barsim/performance"
	"github.com/rustyeddy/barsim/strategies"
)

// Case is one backtest to run.
type Case struct {
	Name   string
	Params strategies.Params
	Source strategies.SignalSource
	Config backtest.Config
}

// Outcome is the result of one Case. Err is set when the case could not be
// simulated; the other cases still run.
type Outcome struct {
	Case    Case
	Result  *backtest.Result
	Metrics performance.Metrics
	Err     error
}

// Cases builds one Case per parameter point for the named strategy,
// typically the expansion of a strategies.Grid.
func Cases(strategy string, points []strategies.Params, cfg backtest.Config) ([]Case, error) {
	var cases []Case
	for _, p := range points {
		src, err := strategies.Build(strategy, p)
		if err != nil {
			return nil, fmt.Errorf("sweep: %s %s: %w", strategy, p, err)
		}
		cases = append(cases, Case{Name: src.Name(), Params: p, Source: src, Config: cfg})
	}
	return cases, nil
}

type options struct {
	log *slog.Logger
}

type Option func(*options)

// WithLogger reports failed cases at warn level and finished ones at debug.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// Run simulates every case against ps using at most workers goroutines
// (GOMAXPROCS when workers <= 0). Outcomes are returned in the order of
// cases. The series is shared read-only between workers; each case gets
// its own simulator. Run only fails when ctx is cancelled.
func Run(ctx context.Context, ps *market.PriceSeries, cases []Case, workers int, opts ...Option) ([]Outcome, error) {
	o := options{log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	outcomes := make([]Outcome, len(cases))
	sem := make(chan struct{}, workers)

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range cases {
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()
			if err := gctx.Err(); err != nil {
				return err
			}

			outcomes[i] = runCase(ps, c)
			if err := outcomes[i].Err; err != nil {
				o.log.Warn("sweep case failed", "case", c.Name, "error", err)
				return nil
			}
			o.log.Debug("sweep case done",
				"case", c.Name,
				"trades", outcomes[i].Metrics.NumTrades,
				"total_return", outcomes[i].Metrics.TotalReturn,
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func runCase(ps *market.PriceSeries, c Case) Outcome {
	out := Outcome{Case: c}
	sim, err := backtest.New(c.Config)
	if err != nil {
		out.Err = err
		return out
	}
	res, err := sim.Run(ps, c.Source)
	if err != nil {
		out.Err = err
		return out
	}
	out.Result = res
	out.Metrics = performance.Analyze(res)
	return out
}
