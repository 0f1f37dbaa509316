package strategy

import (
	talib "github.com/markcheno/go-talib"

	"simtrader/internal/types"
)

// MeanReversion fades Bollinger band touches: a close at or under the lower
// band buys, a close at or over the upper band sells. Orders are limit
// orders at the triggering close so they fill on the same bar.
type MeanReversion struct {
	name          string
	period        int
	stdMultiplier float64
	quantity      int64
}

func NewMeanReversion(period int, stdMultiplier float64, quantity int64) *MeanReversion {
	return &MeanReversion{
		name:          "mean_reversion",
		period:        period,
		stdMultiplier: stdMultiplier,
		quantity:      quantity,
	}
}

func (s *MeanReversion) Name() string { return s.name }

func (s *MeanReversion) GenerateSignals(history []types.MarketBar) (types.Signal, bool) {
	if len(history) < s.period {
		return types.Signal{}, false
	}
	closes := closesOf(history)
	upper, _, lower := talib.BBands(closes, s.period, s.stdMultiplier, s.stdMultiplier, talib.SMA)

	cur := len(closes) - 1
	bar := history[cur]
	price := closes[cur]

	var side types.Side
	switch {
	case price <= lower[cur]:
		side = types.SideBuy
	case price >= upper[cur]:
		side = types.SideSell
	default:
		return types.Signal{}, false
	}

	signal, err := types.NewSignal(bar.Symbol, side, types.OrderTypeLimit, s.quantity, bar.Close)
	if err != nil {
		return types.Signal{}, false
	}
	return signal, true
}
