package backtest

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rustyeddy/barsim/market"
	"github.com/rustyeddy/barsim/strategies"
)

// Config controls capital, costs and sizing for a run.
type Config struct {
	InitialCapital         float64 `json:"initial_capital" yaml:"initial_capital"`
	CommissionRate         float64 `json:"commission_rate" yaml:"commission_rate"`
	PositionSizingFraction float64 `json:"position_sizing_fraction" yaml:"position_sizing_fraction"`
}

// DefaultConfig returns 50,000 of capital, 0.1% commission per side and 95%
// of cash committed to each entry.
func DefaultConfig() Config {
	return Config{
		InitialCapital:         50_000,
		CommissionRate:         0.001,
		PositionSizingFraction: 0.95,
	}
}

func (c Config) Validate() error {
	if !(c.InitialCapital > 0) {
		return fmt.Errorf("%w: initial capital must be > 0, got %g", ErrInvalidInput, c.InitialCapital)
	}
	if !(c.CommissionRate >= 0 && c.CommissionRate < 1) {
		return fmt.Errorf("%w: commission rate must be in [0, 1), got %g", ErrInvalidInput, c.CommissionRate)
	}
	if !(c.PositionSizingFraction > 0 && c.PositionSizingFraction <= 1) {
		return fmt.Errorf("%w: position sizing fraction must be in (0, 1], got %g", ErrInvalidInput, c.PositionSizingFraction)
	}
	return nil
}

// Result is everything a run produced. It is not modified after Run returns.
type Result struct {
	Instrument   string
	Strategy     string
	Config       Config
	EquityCurve  []EquityPoint
	Trades       []Trade
	FinalCapital float64
	Start        time.Time
	End          time.Time
}

// Simulator runs long-only backtests with a fixed Config. It keeps no state
// between runs, so one Simulator may be shared by concurrent callers.
type Simulator struct {
	cfg Config
	log *slog.Logger
}

type Option func(*Simulator)

// WithLogger logs every entry and exit at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.log = l
		}
	}
}

func New(cfg Config, opts ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Simulator{cfg: cfg, log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Simulator) Config() Config { return s.cfg }

// Run generates the source's plan for ps and replays it bar by bar.
//
// Bar 0 only seeds the equity curve at the initial capital. On each later
// bar an open position is checked for an exit first; a flat ledger may then
// open on a Buy signal, except on the bar a position was just closed and on
// the final bar. Whatever is still open on the final bar is closed there.
func (s *Simulator) Run(ps *market.PriceSeries, source strategies.SignalSource) (*Result, error) {
	if ps == nil {
		return nil, fmt.Errorf("%w: nil price series", ErrInvalidInput)
	}
	if ps.Len() < 2 {
		return nil, fmt.Errorf("%w: need at least 2 bars, got %d", ErrInvalidInput, ps.Len())
	}
	if source == nil {
		return nil, fmt.Errorf("%w: nil signal source", ErrInvalidInput)
	}

	plan, err := source.Generate(ps)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidInput, source.Name(), err)
	}
	if err := checkPlan(plan, ps.Len()); err != nil {
		return nil, err
	}

	return s.replay(ps, source.Name(), plan)
}

func checkPlan(plan strategies.Plan, bars int) error {
	if plan.Len() != bars {
		return fmt.Errorf("%w: %d signals for %d bars", ErrInvalidInput, plan.Len(), bars)
	}
	if plan.StopLoss != nil && len(plan.StopLoss) != bars {
		return fmt.Errorf("%w: %d stop-loss levels for %d bars", ErrInvalidInput, len(plan.StopLoss), bars)
	}
	if plan.TakeProfit != nil && len(plan.TakeProfit) != bars {
		return fmt.Errorf("%w: %d take-profit levels for %d bars", ErrInvalidInput, len(plan.TakeProfit), bars)
	}
	return nil
}

func (s *Simulator) replay(ps *market.PriceSeries, name string, plan strategies.Plan) (*Result, error) {
	n := ps.Len()
	ledger := NewLedger(s.cfg.InitialCapital, s.cfg.CommissionRate)
	log := s.log.With("instrument", ps.Instrument, "strategy", name)

	start, end := ps.Span()
	res := &Result{
		Instrument:  ps.Instrument,
		Strategy:    name,
		Config:      s.cfg,
		EquityCurve: make([]EquityPoint, 0, n),
		Start:       start,
		End:         end,
	}
	res.EquityCurve = append(res.EquityCurve, EquityPoint{Time: start, Equity: s.cfg.InitialCapital})

	for i := 1; i < n; i++ {
		bar := ps.At(i)
		signal := plan.Signals[i]
		final := i == n-1

		if pos, open := ledger.Position(); open {
			if d, hit := EvaluateExit(pos, bar, signal, final); hit {
				t, err := ledger.Close(i, bar, d.Price, d.Reason)
				if err != nil {
					return nil, err
				}
				res.Trades = append(res.Trades, t)
				log.Debug("exit",
					"bar", i,
					"time", bar.Time,
					"price", t.ExitPrice,
					"reason", t.ExitReason.String(),
					"profit", t.Profit,
				)
			}
		} else if signal == strategies.Buy && !final {
			pos, err := ledger.Open(i, bar, signal, s.cfg.PositionSizingFraction, level(plan.StopLoss, i), level(plan.TakeProfit, i))
			switch {
			case errors.Is(err, ErrInsufficientCapital):
				log.Debug("entry skipped", "bar", i, "error", err)
			case err != nil:
				return nil, err
			default:
				log.Debug("entry",
					"bar", i,
					"time", bar.Time,
					"price", pos.EntryPrice,
					"shares", pos.Shares,
				)
			}
		}

		res.EquityCurve = append(res.EquityCurve, EquityPoint{Time: bar.Time, Equity: ledger.MarkToMarket(bar.Close)})
	}

	if _, open := ledger.Position(); open {
		return nil, fmt.Errorf("%w: position still open after final bar", ErrInvariantViolation)
	}
	res.FinalCapital = ledger.Capital()
	log.Debug("run complete", "trades", len(res.Trades), "final_capital", res.FinalCapital)
	return res, nil
}

func level(levels []*float64, i int) *float64 {
	if levels == nil || levels[i] == nil {
		return nil
	}
	v := *levels[i]
	return &v
}
