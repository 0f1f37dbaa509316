package exec

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simtrader/internal/types"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func bar(low, high, close string) types.MarketBar {
	b, err := types.NewMarketBar("AAPL", time.Now().UTC(), d(low), d(high), d(low), d(close), 1000)
	if err != nil {
		panic(err)
	}
	return b
}

func pending(side types.Side, typ types.OrderType, price string) types.Order {
	return types.Order{
		Symbol:   "AAPL",
		Side:     side,
		Type:     typ,
		Quantity: 100,
		Price:    d(price),
		Status:   types.OrderStatusPending,
	}
}

func TestTryFillRules(t *testing.T) {
	sim := NewSimulator()

	cases := []struct {
		name      string
		order     types.Order
		bar       types.MarketBar
		wantFill  bool
		wantPrice string
	}{
		{"market fills at close", pending(types.SideBuy, types.OrderTypeMarket, "0"), bar("100", "105", "103.50"), true, "103.50"},
		{"limit buy fills when low touches", pending(types.SideBuy, types.OrderTypeLimit, "100"), bar("100", "105", "104"), true, "100"},
		{"limit buy rests above low", pending(types.SideBuy, types.OrderTypeLimit, "99.99"), bar("100", "105", "104"), false, ""},
		{"limit sell fills when high touches", pending(types.SideSell, types.OrderTypeLimit, "105"), bar("100", "105", "104"), true, "105"},
		{"limit sell rests below high", pending(types.SideSell, types.OrderTypeLimit, "105.01"), bar("100", "105", "104"), false, ""},
		{"stop buy triggers on high", pending(types.SideBuy, types.OrderTypeStop, "105"), bar("100", "105", "104"), true, "105"},
		{"stop buy rests above high", pending(types.SideBuy, types.OrderTypeStop, "105.01"), bar("100", "105", "104"), false, ""},
		{"stop sell triggers on low", pending(types.SideSell, types.OrderTypeStop, "100"), bar("100", "105", "104"), true, "100"},
		{"stop sell rests below low", pending(types.SideSell, types.OrderTypeStop, "99.99"), bar("100", "105", "104"), false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fill, ok := sim.TryFill(tc.order, tc.bar)
			require.Equal(t, tc.wantFill, ok)
			if tc.wantFill {
				assert.True(t, fill.Price.Equal(d(tc.wantPrice)), "got %s", fill.Price)
			}
		})
	}
}

func TestTryFillIgnoresOtherSymbolsAndTerminalOrders(t *testing.T) {
	sim := NewSimulator()
	b := bar("100", "105", "104")

	other := pending(types.SideBuy, types.OrderTypeMarket, "0")
	other.Symbol = "MSFT"
	_, ok := sim.TryFill(other, b)
	assert.False(t, ok)

	filled := pending(types.SideBuy, types.OrderTypeMarket, "0")
	filled.Status = types.OrderStatusFilled
	_, ok = sim.TryFill(filled, b)
	assert.False(t, ok)
}
