package backtest

import "errors"

var (
	// ErrInvalidInput is returned by Run before any state is created when
	// the series, source, plan or config cannot be simulated.
	ErrInvalidInput = errors.New("invalid backtest input")

	// ErrInvariantViolation means the ledger was asked to do something its
	// state does not allow, such as opening a second position.
	ErrInvariantViolation = errors.New("ledger invariant violation")

	// ErrInsufficientCapital is returned when an entry would buy no shares.
	ErrInsufficientCapital = errors.New("insufficient capital")
)
