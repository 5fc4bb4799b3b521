package strategies

import (
	"fmt"

	"github.com/rustyeddy/barsim/indicators"
	"github.com/rustyeddy/barsim/market"
)

// MACross buys when the short SMA crosses above the long SMA and sells on the
// opposite cross. Signals fire on the cross event only, not on every bar the
// averages stay crossed.
type MACross struct {
	Short int
	Long  int
	Exits Exits
}

// NewMACross defaults its exits to 2 ATR(14) below and 3 ATR(14) above the
// entry close.
func NewMACross(short, long int) (*MACross, error) {
	if short <= 0 || long <= 0 {
		return nil, fmt.Errorf("ma-cross: windows must be > 0")
	}
	if short >= long {
		return nil, fmt.Errorf("ma-cross: short window %d must be below long window %d", short, long)
	}
	return &MACross{
		Short: short,
		Long:  long,
		Exits: Exits{
			StopLoss:   ATRBelow(14, 2),
			TakeProfit: ATRAbove(14, 3),
		},
	}, nil
}

func (x *MACross) Name() string { return fmt.Sprintf("MA_CROSS(%d,%d)", x.Short, x.Long) }

func (x *MACross) Generate(ps *market.PriceSeries) (Plan, error) {
	closes := ps.Closes()
	short, err := indicators.SMA(closes, x.Short)
	if err != nil {
		return Plan{}, err
	}
	long, err := indicators.SMA(closes, x.Long)
	if err != nil {
		return Plan{}, err
	}

	signals := make([]Signal, len(closes))
	for i := 1; i < len(closes); i++ {
		above := func(j int) bool {
			return indicators.Ready(short[j]) && indicators.Ready(long[j]) && short[j] > long[j]
		}
		switch {
		case !above(i-1) && above(i):
			signals[i] = Buy
		case above(i-1) && !above(i):
			signals[i] = Sell
		}
	}
	return withExits(ps, signals, x.Exits)
}

func init() {
	Register("ma-cross", func(p Params) (SignalSource, error) {
		x, err := NewMACross(p.Int("short", 20), p.Int("long", 50))
		if err != nil {
			return nil, err
		}
		x.Exits = ExitsFromParams(p, x.Exits)
		return x, nil
	})
}
