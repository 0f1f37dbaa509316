package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simtrader/internal/analyzer"
	"simtrader/internal/types"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func sampleResult() analyzer.Result {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	curve := []types.EquityPoint{
		{Timestamp: start, Equity: d("100000")},
		{Timestamp: start.Add(24 * time.Hour), Equity: d("101000")},
	}
	trades := []types.Trade{
		{ID: 1, OrderID: 1, Symbol: "AAPL", Side: types.SideBuy, Quantity: 100, Price: d("151"), RealizedPnL: decimal.Zero, Timestamp: start},
		{ID: 2, OrderID: 2, Symbol: "AAPL", Side: types.SideSell, Quantity: 100, Price: d("161"), RealizedPnL: d("1000"), Timestamp: start.Add(time.Hour)},
	}
	return analyzer.Calculate(analyzer.Config{}, d("100000"), curve, trades)
}

func TestSaveAndLoadRun(t *testing.T) {
	s, err := OpenInMemory()
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	runID, err := s.SaveRun(ctx, []string{"AAPL"}, sampleResult())
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].ID)
	assert.Equal(t, "AAPL", runs[0].Symbols)
	assert.Equal(t, "1000", runs[0].TotalPnL)
	assert.Equal(t, 2, runs[0].TotalTrades)

	res, err := s.GetRunResult(ctx, runID)
	require.NoError(t, err)
	assert.True(t, res.FinalCapital.Equal(d("101000")))
	assert.Len(t, res.EquityCurve, 2)
	assert.Len(t, res.Trades, 2)
}

func TestRunTradesInFillOrder(t *testing.T) {
	s, err := OpenInMemory()
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	runID, err := s.SaveRun(ctx, []string{"AAPL"}, sampleResult())
	require.NoError(t, err)

	trades, err := s.RunTrades(ctx, runID)
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.EqualValues(t, 1, trades[0].TradeID)
	assert.EqualValues(t, 2, trades[1].TradeID)
	assert.Equal(t, "1000", trades[1].RealizedPnL)
}

func TestGetRunResultUnknownID(t *testing.T) {
	s, err := OpenInMemory()
	require.NoError(t, err)
	defer s.Close()

	_, err = s.GetRunResult(context.Background(), "no-such-run")
	assert.Error(t, err)
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}
