package account

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simtrader/internal/types"
)

func fill(symbol string, side types.Side, qty int64, price string) types.Trade {
	return types.Trade{
		Symbol:   symbol,
		Side:     side,
		Quantity: qty,
		Price:    d(price),
	}
}

func TestApplyFillRoundTrip(t *testing.T) {
	acct := New(d("100000"))

	realized := acct.ApplyFill(fill("AAPL", types.SideBuy, 100, "151"))
	assert.True(t, realized.IsZero())
	assert.True(t, acct.Cash().Equal(d("84900")), "got %s", acct.Cash())
	require.NotNil(t, acct.Position("AAPL"))
	assert.EqualValues(t, 100, acct.Position("AAPL").Quantity)

	realized = acct.ApplyFill(fill("AAPL", types.SideSell, 100, "160"))
	assert.True(t, realized.Equal(d("900")), "got %s", realized)
	assert.True(t, acct.Cash().Equal(d("100900")), "got %s", acct.Cash())
	assert.Nil(t, acct.Position("AAPL"), "flat positions are removed")
	assert.Equal(t, 2, acct.TotalTrades())
	assert.True(t, acct.Equity().Equal(d("100900")))
}

// Cash plus the cost basis of open positions minus realized P&L must always
// equal initial capital. Fills move value between the terms, never create it.
func TestCashConservation(t *testing.T) {
	acct := New(d("100000"))
	totalRealized := decimal.Zero

	steps := []types.Trade{
		fill("AAPL", types.SideBuy, 100, "151"),
		fill("MSFT", types.SideBuy, 50, "300"),
		fill("AAPL", types.SideBuy, 100, "149"),
		fill("AAPL", types.SideSell, 150, "155"),
		fill("MSFT", types.SideSell, 80, "290"), // reversal into a short
		fill("AAPL", types.SideSell, 50, "140"),
	}
	for _, trade := range steps {
		totalRealized = totalRealized.Add(acct.ApplyFill(trade))

		holdings := decimal.Zero
		for _, pos := range acct.Positions() {
			holdings = holdings.Add(pos.AverageCost.Mul(decimal.NewFromInt(pos.Quantity)))
		}
		total := acct.Cash().Add(holdings).Sub(totalRealized)
		assert.True(t, total.Equal(d("100000")),
			"conservation broken after %s %d %s: got %s", trade.Side, trade.Quantity, trade.Symbol, total)
	}
}

func TestDailyLossAccumulatesOnlyLosses(t *testing.T) {
	acct := New(d("100000"))

	acct.ApplyFill(fill("AAPL", types.SideBuy, 100, "150"))
	acct.ApplyFill(fill("AAPL", types.SideSell, 50, "145")) // -250
	assert.True(t, acct.DailyLoss().Equal(d("250")), "got %s", acct.DailyLoss())

	acct.ApplyFill(fill("AAPL", types.SideSell, 50, "170")) // +1000, no effect
	assert.True(t, acct.DailyLoss().Equal(d("250")), "gains never shrink the accumulator")
}

func TestRealizedPnLCoversOpenPositionsOnly(t *testing.T) {
	acct := New(d("100000"))

	acct.ApplyFill(fill("AAPL", types.SideBuy, 100, "150"))
	acct.ApplyFill(fill("AAPL", types.SideSell, 50, "145")) // -250, position stays open
	assert.True(t, acct.RealizedPnL().Equal(d("-250")), "got %s", acct.RealizedPnL())
	assert.True(t, acct.Summary().RealizedPnL.Equal(d("-250")))

	// Closing out moves the realized trail into cash and off the aggregate.
	acct.ApplyFill(fill("AAPL", types.SideSell, 50, "145"))
	assert.True(t, acct.RealizedPnL().IsZero())
	assert.True(t, acct.Cash().Equal(d("99500")), "got %s", acct.Cash())
}

func TestRollDayResetsDailyLoss(t *testing.T) {
	acct := New(d("100000"))
	day1 := time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)

	assert.False(t, acct.RollDay(day1))
	acct.ApplyFill(fill("AAPL", types.SideBuy, 10, "100"))
	acct.ApplyFill(fill("AAPL", types.SideSell, 10, "90"))
	assert.True(t, acct.DailyLoss().Equal(d("100")))

	assert.False(t, acct.RollDay(day1.Add(2*time.Hour)), "same day is not a boundary")
	assert.True(t, acct.DailyLoss().Equal(d("100")))

	assert.True(t, acct.RollDay(day1.Add(24*time.Hour)))
	assert.True(t, acct.DailyLoss().IsZero())
}

func TestEquityMarksOpenPositions(t *testing.T) {
	acct := New(d("100000"))
	acct.ApplyFill(fill("AAPL", types.SideBuy, 100, "150"))

	acct.Mark("AAPL", d("155"))
	assert.True(t, acct.Equity().Equal(d("100500")), "got %s", acct.Equity())

	summary := acct.Summary()
	assert.True(t, summary.TotalPnL.Equal(d("500")))
	assert.Equal(t, 1, summary.PositionsCount)

	rows := acct.PositionsSummary()
	require.Len(t, rows, 1)
	assert.True(t, rows[0].UnrealizedPnL.Equal(d("500")))
	assert.True(t, rows[0].CurrentPrice.Equal(d("155")))
}
