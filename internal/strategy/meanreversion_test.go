package strategy

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simtrader/internal/types"
)

func TestMeanReversionNeedsFullPeriod(t *testing.T) {
	s := NewMeanReversion(3, 1.0, 50)
	_, ok := s.GenerateSignals(history(10, 12))
	assert.False(t, ok)
}

func TestMeanReversionBuysLowerBandTouch(t *testing.T) {
	s := NewMeanReversion(3, 1.0, 50)

	// Close at 5 sits below the one-sigma lower band of {10, 12, 5}.
	sig, ok := s.GenerateSignals(history(10, 12, 5))
	require.True(t, ok)
	assert.Equal(t, types.SideBuy, sig.Side)
	assert.Equal(t, types.OrderTypeLimit, sig.Type)
	assert.EqualValues(t, 50, sig.Quantity)
	assert.True(t, sig.Price.Equal(decimal.NewFromInt(5)), "limit at the triggering close, got %s", sig.Price)
}

func TestMeanReversionSellsUpperBandTouch(t *testing.T) {
	s := NewMeanReversion(3, 1.0, 50)

	sig, ok := s.GenerateSignals(history(10, 8, 15))
	require.True(t, ok)
	assert.Equal(t, types.SideSell, sig.Side)
	assert.Equal(t, types.OrderTypeLimit, sig.Type)
}

func TestMeanReversionQuietInsideBands(t *testing.T) {
	s := NewMeanReversion(3, 2.0, 50)
	_, ok := s.GenerateSignals(history(10, 11, 10.5))
	assert.False(t, ok)
}
