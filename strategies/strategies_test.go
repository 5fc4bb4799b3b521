package strategies

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/barsim/market"
)

func series(t *testing.T, closes ...float64) *market.PriceSeries {
	t.Helper()
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]market.Bar, len(closes))
	for i, c := range closes {
		bars[i] = market.Bar{
			Time:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}
	ps, err := market.NewPriceSeries("TEST", bars)
	require.NoError(t, err)
	return ps
}

func sig(s string) []Signal {
	out := make([]Signal, len(s))
	for i, c := range s {
		switch c {
		case 'B':
			out[i] = Buy
		case 'S':
			out[i] = Sell
		}
	}
	return out
}

func values(levels []*float64) []float64 {
	out := make([]float64, len(levels))
	for i, p := range levels {
		if p == nil {
			out[i] = -1
			continue
		}
		out[i] = *p
	}
	return out
}

func TestSignalString(t *testing.T) {
	assert.Equal(t, "BUY", Buy.String())
	assert.Equal(t, "SELL", Sell.String())
	assert.Equal(t, "HOLD", Hold.String())
}

func TestParams(t *testing.T) {
	p := Params{"short": 9.6, "long": 50}

	assert.Equal(t, 10, p.Int("short", 0))
	assert.Equal(t, 7, p.Int("missing", 7))
	assert.Equal(t, 50.0, p.Float("long", 0))
	assert.True(t, p.Has("long"))
	assert.False(t, p.Has("rr"))
	assert.Equal(t, "long=50 short=9.6", p.String())
}

func TestRegistry(t *testing.T) {
	assert.Equal(t,
		[]string{"bollinger", "buy-and-hold", "ma-cross", "macd", "noop", "rsi"},
		Names())

	src, err := Build(" MA-Cross ", Params{"short": 5, "long": 10})
	require.NoError(t, err)
	assert.Equal(t, "MA_CROSS(5,10)", src.Name())

	_, err = Build("nope", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown strategy")
}

func TestBuildRejectsBadParams(t *testing.T) {
	tests := []struct {
		name   string
		source string
		params Params
	}{
		{"ma short not below long", "ma-cross", Params{"short": 50, "long": 20}},
		{"ma zero window", "ma-cross", Params{"short": 0}},
		{"rsi thresholds swapped", "rsi", Params{"oversold": 80, "overbought": 20}},
		{"macd fast not below slow", "macd", Params{"fast": 26, "slow": 12}},
		{"bollinger window too small", "bollinger", Params{"window": 1}},
		{"bollinger zero std", "bollinger", Params{"num_std": 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.source, tt.params)
			assert.Error(t, err)
		})
	}
}

func TestMACrossSignalsOnCrossOnly(t *testing.T) {
	ps := series(t, 10, 9, 8, 9, 12, 13, 11, 8)
	src, err := NewMACross(2, 3)
	require.NoError(t, err)
	src.Exits = Exits{}

	plan, err := src.Generate(ps)
	require.NoError(t, err)

	assert.Equal(t, sig("HHHHBHSH"), plan.Signals)
	assert.Nil(t, plan.StopLoss)
	assert.Nil(t, plan.TakeProfit)
}

func TestMACrossDefaultExitsAligned(t *testing.T) {
	ps := series(t, 10, 9, 8, 9, 12, 13, 11, 8)
	src, err := NewMACross(2, 3)
	require.NoError(t, err)

	plan, err := src.Generate(ps)
	require.NoError(t, err)

	require.Len(t, plan.StopLoss, ps.Len())
	require.Len(t, plan.TakeProfit, ps.Len())
	// ATR(14) never warms up on 8 bars.
	for i := range plan.StopLoss {
		assert.Nil(t, plan.StopLoss[i])
		assert.Nil(t, plan.TakeProfit[i])
	}
}

func TestRSISignals(t *testing.T) {
	ps := series(t, 10, 9, 8, 9, 10, 11, 10, 9)
	src, err := NewRSI(2, 30, 70)
	require.NoError(t, err)
	src.Exits = Exits{}

	plan, err := src.Generate(ps)
	require.NoError(t, err)
	assert.Equal(t, sig("HHHBHHSH"), plan.Signals)
}

func TestMACDSignals(t *testing.T) {
	ps := series(t, 10, 9, 8, 7, 6, 7, 8, 9, 10, 11)
	src, err := NewMACD(2, 3, 2)
	require.NoError(t, err)

	plan, err := src.Generate(ps)
	require.NoError(t, err)
	assert.Equal(t, sig("HHHHHBHHHH"), plan.Signals)

	require.Len(t, plan.StopLoss, ps.Len())
	require.NotNil(t, plan.StopLoss[5])
	require.NotNil(t, plan.TakeProfit[5])
	assert.Less(t, *plan.StopLoss[5], 7.0)
	assert.Greater(t, *plan.TakeProfit[5], 7.0)
}

func TestBollingerSignals(t *testing.T) {
	ps := series(t, 10, 10, 10, 7, 10, 10, 13, 10)
	src, err := NewBollinger(3, 1)
	require.NoError(t, err)

	plan, err := src.Generate(ps)
	require.NoError(t, err)
	assert.Equal(t, sig("HHHSBHHS"), plan.Signals)

	// Take-profit is the upper band, stop is 1% below the lower band.
	require.NotNil(t, plan.TakeProfit[2])
	require.NotNil(t, plan.StopLoss[2])
	assert.InDelta(t, 10.0, *plan.TakeProfit[2], 1e-9)
	assert.InDelta(t, 9.9, *plan.StopLoss[2], 1e-9)
	assert.Nil(t, plan.StopLoss[0])
}

func TestStaticReturnsCopies(t *testing.T) {
	stop := 95.0
	src := &Static{
		Signals:  sig("HBS"),
		StopLoss: []*float64{nil, &stop, nil},
	}
	assert.Equal(t, "STATIC", src.Name())

	plan, err := src.Generate(series(t, 100, 101, 102))
	require.NoError(t, err)
	plan.Signals[1] = Hold
	*plan.StopLoss[1] = 1

	assert.Equal(t, Buy, src.Signals[1])
	assert.Equal(t, 95.0, stop)
	assert.Nil(t, plan.TakeProfit)
}

func TestNoopAndBuyAndHold(t *testing.T) {
	ps := series(t, 100, 101, 102, 103)

	plan, err := Noop{}.Generate(ps)
	require.NoError(t, err)
	assert.Equal(t, sig("HHHH"), plan.Signals)

	plan, err = BuyAndHold{}.Generate(ps)
	require.NoError(t, err)
	assert.Equal(t, sig("HBHH"), plan.Signals)
	assert.Nil(t, plan.StopLoss)
}

func TestLevelFuncs(t *testing.T) {
	ps := series(t, 100, 101, 99)

	tests := []struct {
		name string
		f    LevelFunc
		want []float64
	}{
		{"percent below", PercentBelow(0.1), []float64{90, 90.9, 89.1}},
		{"percent above", PercentAbove(0.1), []float64{110, 111.1, 108.9}},
		{"atr below", ATRBelow(2, 1), []float64{-1, 99, 96.5}},
		{"atr above", ATRAbove(2, 1), []float64{-1, 103, 101.5}},
		{"swing low", SwingLow(1, 0), []float64{99, 99, 98}},
		{"lower of", LowerOf(PercentBelow(0.1), PercentBelow(0.2)), []float64{80, 80.8, 79.2}},
		{"risk reward", RiskReward(PercentBelow(0.1), 2), []float64{120, 121.2, 118.8}},
		{"non-positive dropped", PercentBelow(1.5), []float64{-1, -1, -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := levels(ps, tt.f)
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.want, values(got), 1e-9)
		})
	}
}

func TestLevelsLengthMismatch(t *testing.T) {
	ps := series(t, 100, 101)
	short := func(*market.PriceSeries) ([]float64, error) { return []float64{1}, nil }

	_, err := levels(ps, short)
	assert.Error(t, err)
}

func TestExitsFromParams(t *testing.T) {
	ps := series(t, 100, 101, 99)
	def := Exits{StopLoss: PercentBelow(0.5), TakeProfit: PercentAbove(0.5)}

	e := ExitsFromParams(Params{"no_exits": 1, "stop_pct": 0.1}, def)
	assert.Nil(t, e.StopLoss)
	assert.Nil(t, e.TakeProfit)

	e = ExitsFromParams(nil, def)
	stops, err := e.stopLevels(ps)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, *stops[0], 1e-9)

	e = ExitsFromParams(Params{"stop_pct": 0.1, "rr": 3}, def)
	stops, err = e.stopLevels(ps)
	require.NoError(t, err)
	takes, err := e.takeLevels(ps)
	require.NoError(t, err)
	assert.InDelta(t, 90.0, *stops[0], 1e-9)
	assert.InDelta(t, 130.0, *takes[0], 1e-9)

	e = ExitsFromParams(Params{"take_pct": 0.2}, Exits{})
	assert.Nil(t, e.StopLoss)
	takes, err = e.takeLevels(ps)
	require.NoError(t, err)
	assert.InDelta(t, 120.0, *takes[0], 1e-9)
}

func TestGridExpand(t *testing.T) {
	g := Grid{
		"short": {5, 10},
		"long":  {20, 30},
		"empty": {},
	}

	got := g.Expand()
	assert.Equal(t, 4, g.Size())
	assert.Equal(t, []Params{
		{"long": 20, "short": 5},
		{"long": 20, "short": 10},
		{"long": 30, "short": 5},
		{"long": 30, "short": 10},
	}, got)

	assert.Equal(t, []Params{{}}, Grid{}.Expand())
}
