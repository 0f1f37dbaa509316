package types

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestNewMarketBarValidation(t *testing.T) {
	ts := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)

	bar, err := NewMarketBar("AAPL", ts, d("150"), d("152"), d("149"), d("151"), 1000)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", bar.Symbol)
	assert.True(t, bar.Close.Equal(d("151")))

	_, err = NewMarketBar("", ts, d("150"), d("152"), d("149"), d("151"), 1000)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewMarketBar("AAPL", time.Time{}, d("150"), d("152"), d("149"), d("151"), 1000)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewMarketBar("AAPL", ts, d("150"), d("149"), d("152"), d("151"), 1000)
	assert.ErrorIs(t, err, ErrValidation, "high below low must fail")

	_, err = NewMarketBar("AAPL", ts, d("150"), d("152"), d("149"), d("151"), -1)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNewSignalValidation(t *testing.T) {
	sig, err := NewSignal("AAPL", SideBuy, OrderTypeLimit, 100, d("150"))
	require.NoError(t, err)
	assert.True(t, sig.Price.Equal(d("150")))

	// Market signals drop any price they were given.
	sig, err = NewSignal("AAPL", SideSell, OrderTypeMarket, 100, d("150"))
	require.NoError(t, err)
	assert.True(t, sig.Price.IsZero())

	_, err = NewSignal("", SideBuy, OrderTypeMarket, 100, decimal.Zero)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewSignal("AAPL", Side("hold"), OrderTypeMarket, 100, decimal.Zero)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewSignal("AAPL", SideBuy, OrderType("iceberg"), 100, decimal.Zero)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewSignal("AAPL", SideBuy, OrderTypeMarket, 0, decimal.Zero)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewSignal("AAPL", SideBuy, OrderTypeLimit, 100, decimal.Zero)
	assert.ErrorIs(t, err, ErrValidation, "limit without price must fail")

	_, err = NewSignal("AAPL", SideSell, OrderTypeStop, 100, d("-5"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.False(t, OrderStatusPending.Terminal())
	assert.True(t, OrderStatusFilled.Terminal())
	assert.True(t, OrderStatusCancelled.Terminal())
	assert.True(t, OrderStatusRejected.Terminal())
}

func TestOrderTypeRequiresPrice(t *testing.T) {
	assert.False(t, OrderTypeMarket.RequiresPrice())
	assert.True(t, OrderTypeLimit.RequiresPrice())
	assert.True(t, OrderTypeStop.RequiresPrice())
}

func TestTradeValue(t *testing.T) {
	trade := Trade{Quantity: 100, Price: d("151.25")}
	assert.True(t, trade.Value().Equal(d("15125")))
}
