package backtest

import (
	"fmt"

	"github.com/rustyeddy/barsim/market"
	"github.com/rustyeddy/barsim/strategies"
)

// Ledger tracks cash and the one open position of a run. Commission is
// charged as a fraction of notional on both the entry and the exit.
type Ledger struct {
	capital    float64
	commission float64

	pos  Position
	open bool
}

func NewLedger(capital, commissionRate float64) *Ledger {
	return &Ledger{capital: capital, commission: commissionRate}
}

// Capital is the cash balance, excluding the value of any open position.
func (l *Ledger) Capital() float64 { return l.capital }

// Position returns the open position, if any.
func (l *Ledger) Position() (Position, bool) { return l.pos, l.open }

// Open buys at the bar's close with sizingFraction of the current cash.
// The commission is included in the sizing so the entry never spends more
// than capital*sizingFraction.
func (l *Ledger) Open(index int, bar market.Bar, signal strategies.Signal, sizingFraction float64, stop, take *float64) (Position, error) {
	if l.open {
		return Position{}, fmt.Errorf("%w: open at bar %d while a position from bar %d is open",
			ErrInvariantViolation, index, l.pos.EntryIndex)
	}
	if signal != strategies.Buy {
		return Position{}, fmt.Errorf("%w: open at bar %d on %s signal", ErrInvariantViolation, index, signal)
	}
	if l.capital <= 0 {
		return Position{}, fmt.Errorf("%w: capital %.2f at bar %d", ErrInsufficientCapital, l.capital, index)
	}

	price := bar.Close
	shares := l.capital * sizingFraction / (price * (1 + l.commission))
	if shares <= 0 {
		return Position{}, fmt.Errorf("%w: %g shares at bar %d", ErrInsufficientCapital, shares, index)
	}
	cost := shares * price * (1 + l.commission)

	l.capital -= cost
	l.pos = Position{
		EntryIndex: index,
		EntryTime:  bar.Time,
		EntryPrice: price,
		EntryCost:  cost,
		Shares:     shares,
		Side:       Long,
		StopLoss:   stop,
		TakeProfit: take,
	}
	l.open = true
	return l.pos, nil
}

// Close sells the whole position at exitPrice and returns the finished trade.
func (l *Ledger) Close(index int, bar market.Bar, exitPrice float64, reason ExitReason) (Trade, error) {
	if !l.open {
		return Trade{}, fmt.Errorf("%w: close at bar %d with no open position", ErrInvariantViolation, index)
	}

	p := l.pos
	gross := p.Shares * exitPrice
	proceeds := gross * (1 - l.commission)
	l.capital += proceeds

	t := Trade{
		EntryIndex: p.EntryIndex,
		EntryTime:  p.EntryTime,
		EntryPrice: p.EntryPrice,
		ExitIndex:  index,
		ExitTime:   bar.Time,
		ExitPrice:  exitPrice,
		Shares:     p.Shares,
		Side:       p.Side,
		Commission: (p.EntryCost - p.Shares*p.EntryPrice) + (gross - proceeds),
		Profit:     proceeds - p.EntryCost,
		ProfitPct:  exitPrice/p.EntryPrice - 1,
		ExitReason: reason,
	}

	l.pos = Position{}
	l.open = false
	return t, nil
}

// MarkToMarket values the account at price: cash plus the open shares.
func (l *Ledger) MarkToMarket(price float64) float64 {
	if !l.open {
		return l.capital
	}
	return l.capital + l.pos.Shares*price
}
