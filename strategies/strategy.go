// Package strategies defines the signal source contract consumed by the
// backtest engine and a handful of indicator-threshold sources.
package strategies

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rustyeddy/barsim/market"
)

type Signal int8

const (
	Hold Signal = iota
	Buy
	Sell
)

func (s Signal) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "HOLD"
	}
}

// Plan is the per-bar output of a SignalSource, aligned by index with the
// series it was generated from. StopLoss and TakeProfit are optional: a nil
// slice means the source does not provide levels; a nil entry means no level
// for that bar. Levels are only read on the bar a position opens.
type Plan struct {
	Signals    []Signal
	StopLoss   []*float64
	TakeProfit []*float64
}

// Len reports the number of bars covered by the plan.
func (p Plan) Len() int { return len(p.Signals) }

// SignalSource turns a price series into a Plan. Implementations must be
// pure: the same series always yields the same plan.
type SignalSource interface {
	Name() string
	Generate(ps *market.PriceSeries) (Plan, error)
}

// Params are numeric strategy parameters keyed by name.
type Params map[string]float64

func (p Params) Float(key string, def float64) float64 {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

func (p Params) Int(key string, def int) int {
	if v, ok := p[key]; ok {
		return int(math.Round(v))
	}
	return def
}

func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// String renders params in key order, e.g. "long=50 short=20".
func (p Params) String() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, p[k])
	}
	return strings.Join(parts, " ")
}

// Factory builds a SignalSource from params.
type Factory func(p Params) (SignalSource, error)

var registry = make(map[string]Factory)

// Register makes a factory available to Build under name. It is meant to be
// called from init functions.
func Register(name string, f Factory) {
	registry[strings.ToLower(name)] = f
}

// Build creates the named source.
func Build(name string, p Params) (SignalSource, error) {
	f, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (supported: %s)", name, strings.Join(Names(), ", "))
	}
	return f(p)
}

// Names lists registered strategies in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// withExits attaches exit levels to a bare signal slice.
func withExits(ps *market.PriceSeries, signals []Signal, exits Exits) (Plan, error) {
	plan := Plan{Signals: signals}
	var err error
	if plan.StopLoss, err = exits.stopLevels(ps); err != nil {
		return Plan{}, err
	}
	if plan.TakeProfit, err = exits.takeLevels(ps); err != nil {
		return Plan{}, err
	}
	return plan, nil
}
