package strategies

import (
	"github.com/rustyeddy/barsim/market"
)

// Static replays a fixed plan regardless of the series it is given. It is
// handy for replaying externally computed signals and for tests. Its length is
// not checked here; the engine rejects a plan that does not match the series.
type Static struct {
	Label      string
	Signals    []Signal
	StopLoss   []*float64
	TakeProfit []*float64
}

func (s *Static) Name() string {
	if s.Label == "" {
		return "STATIC"
	}
	return s.Label
}

func (s *Static) Generate(ps *market.PriceSeries) (Plan, error) {
	_ = ps
	return Plan{
		Signals:    append([]Signal(nil), s.Signals...),
		StopLoss:   cloneLevels(s.StopLoss),
		TakeProfit: cloneLevels(s.TakeProfit),
	}, nil
}

func cloneLevels(in []*float64) []*float64 {
	if in == nil {
		return nil
	}
	out := make([]*float64, len(in))
	for i, p := range in {
		if p != nil {
			v := *p
			out[i] = &v
		}
	}
	return out
}

// Noop never trades.
type Noop struct{}

func (Noop) Name() string { return "NOOP" }

func (Noop) Generate(ps *market.PriceSeries) (Plan, error) {
	return Plan{Signals: make([]Signal, ps.Len())}, nil
}

// BuyAndHold buys on the first tradable bar and never sells, so the position
// is only closed at the end of the backtest or by its exits.
type BuyAndHold struct {
	Exits Exits
}

func (BuyAndHold) Name() string { return "BUY_AND_HOLD" }

func (b BuyAndHold) Generate(ps *market.PriceSeries) (Plan, error) {
	signals := make([]Signal, ps.Len())
	if len(signals) > 1 {
		signals[1] = Buy
	}
	return withExits(ps, signals, b.Exits)
}

func init() {
	Register("noop", func(p Params) (SignalSource, error) {
		return Noop{}, nil
	})
	Register("buy-and-hold", func(p Params) (SignalSource, error) {
		return BuyAndHold{Exits: ExitsFromParams(p, Exits{})}, nil
	})
}
