package strategy

import (
	talib "github.com/markcheno/go-talib"
	"github.com/shopspring/decimal"

	"simtrader/internal/types"
)

// Momentum trades simple moving-average crossovers: a golden cross buys, a
// death cross sells, always with market orders. Consecutive identical
// signals are debounced so a sustained cross fires once.
type Momentum struct {
	name        string
	shortPeriod int
	longPeriod  int
	quantity    int64
	lastSignal  types.Side
}

func NewMomentum(shortPeriod, longPeriod int, quantity int64) *Momentum {
	return &Momentum{
		name:        "momentum",
		shortPeriod: shortPeriod,
		longPeriod:  longPeriod,
		quantity:    quantity,
	}
}

func (s *Momentum) Name() string { return s.name }

func (s *Momentum) GenerateSignals(history []types.MarketBar) (types.Signal, bool) {
	// One extra bar so the previous-bar averages are warm too.
	if len(history) < s.longPeriod+1 {
		return types.Signal{}, false
	}
	closes := closesOf(history)
	shortSMA := talib.Sma(closes, s.shortPeriod)
	longSMA := talib.Sma(closes, s.longPeriod)

	cur := len(closes) - 1
	prev := cur - 1

	var side types.Side
	switch {
	case shortSMA[prev] <= longSMA[prev] && shortSMA[cur] > longSMA[cur]:
		side = types.SideBuy
	case shortSMA[prev] >= longSMA[prev] && shortSMA[cur] < longSMA[cur]:
		side = types.SideSell
	default:
		return types.Signal{}, false
	}
	if side == s.lastSignal {
		return types.Signal{}, false
	}
	s.lastSignal = side

	signal, err := types.NewSignal(history[cur].Symbol, side, types.OrderTypeMarket, s.quantity, decimal.Zero)
	if err != nil {
		return types.Signal{}, false
	}
	return signal, true
}
