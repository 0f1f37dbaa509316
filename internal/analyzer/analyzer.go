// Package analyzer computes performance metrics over a finished run. It is
// pure: Calculate reads the trade list and equity curve and never mutates
// engine state.
package analyzer

import (
	"math"

	"github.com/shopspring/decimal"

	"simtrader/internal/types"
)

const ratioPlaces = 8

// Config tunes the statistical metrics.
type Config struct {
	// PeriodsPerYear annualizes Sharpe and Sortino. Defaults to 252
	// (daily bars).
	PeriodsPerYear int
	// RiskFreeRate is the annual risk-free rate subtracted from returns.
	// Defaults to zero.
	RiskFreeRate float64
}

func (c Config) withDefaults() Config {
	if c.PeriodsPerYear <= 0 {
		c.PeriodsPerYear = 252
	}
	return c
}

// Calculate derives the full metrics snapshot from the recorded equity curve
// and trade history.
func Calculate(cfg Config, initialCapital decimal.Decimal, curve []types.EquityPoint, trades []types.Trade) Result {
	cfg = cfg.withDefaults()

	res := Result{
		InitialCapital: initialCapital,
		FinalCapital:   initialCapital,
		TotalPnL:       decimal.Zero,
		TotalReturnPct: decimal.Zero,
		WinRatePct:     decimal.Zero,
		GrossProfit:    decimal.Zero,
		GrossLoss:      decimal.Zero,
		ProfitFactor:   decimal.Zero,
		AverageWin:     decimal.Zero,
		AverageLoss:    decimal.Zero,
		MaxDrawdown:    decimal.Zero,
		MaxDrawdownPct: decimal.Zero,
		SharpeRatio:    decimal.Zero,
		SortinoRatio:   decimal.Zero,
		EquityCurve:    append([]types.EquityPoint(nil), curve...),
		Trades:         append([]types.Trade(nil), trades...),
	}

	if len(curve) > 0 {
		res.FinalCapital = curve[len(curve)-1].Equity
		res.StartTime = curve[0].Timestamp
		res.EndTime = curve[len(curve)-1].Timestamp
		res.DurationDays = int(res.EndTime.Sub(res.StartTime).Hours() / 24)
	}
	res.TotalPnL = res.FinalCapital.Sub(initialCapital)
	if initialCapital.IsPositive() {
		res.TotalReturnPct = res.TotalPnL.Div(initialCapital).Mul(decimal.NewFromInt(100))
	}

	tallyTrades(&res, trades)
	res.MaxDrawdown, res.MaxDrawdownPct, res.DrawdownCurve = drawdown(curve)

	returns := periodReturns(curve)
	res.SharpeRatio, res.SharpeDefined = sharpe(returns, cfg)
	res.SortinoRatio, res.SortinoDefined = sortino(returns, cfg)
	return res
}

// tallyTrades classifies trades by their realized P&L contribution. A trade
// with zero realized P&L (an opening fill) counts toward the total but is
// neither a win nor a loss.
func tallyTrades(res *Result, trades []types.Trade) {
	res.TotalTrades = len(trades)
	for _, trade := range trades {
		switch {
		case trade.RealizedPnL.IsPositive():
			res.WinningTrades++
			res.GrossProfit = res.GrossProfit.Add(trade.RealizedPnL)
		case trade.RealizedPnL.IsNegative():
			res.LosingTrades++
			res.GrossLoss = res.GrossLoss.Add(trade.RealizedPnL.Neg())
		}
	}
	if res.TotalTrades > 0 {
		res.WinRatePct = decimal.NewFromInt(int64(res.WinningTrades)).
			Div(decimal.NewFromInt(int64(res.TotalTrades))).
			Mul(decimal.NewFromInt(100))
	}
	if res.GrossLoss.IsPositive() {
		res.ProfitFactor = res.GrossProfit.Div(res.GrossLoss)
		res.ProfitFactorDefined = true
	}
	if res.WinningTrades > 0 {
		res.AverageWin = res.GrossProfit.Div(decimal.NewFromInt(int64(res.WinningTrades)))
	}
	if res.LosingTrades > 0 {
		res.AverageLoss = res.GrossLoss.Div(decimal.NewFromInt(int64(res.LosingTrades)))
	}
}

// drawdown walks the curve once, tracking the running peak.
func drawdown(curve []types.EquityPoint) (decimal.Decimal, decimal.Decimal, []DrawdownPoint) {
	maxDD := decimal.Zero
	maxDDPct := decimal.Zero
	if len(curve) == 0 {
		return maxDD, maxDDPct, nil
	}
	peak := curve[0].Equity
	points := make([]DrawdownPoint, 0, len(curve))
	hundred := decimal.NewFromInt(100)
	for _, sample := range curve {
		if sample.Equity.GreaterThan(peak) {
			peak = sample.Equity
		}
		dd := peak.Sub(sample.Equity)
		ddPct := decimal.Zero
		if peak.IsPositive() {
			ddPct = dd.Div(peak).Mul(hundred)
		}
		if dd.GreaterThan(maxDD) {
			maxDD = dd
		}
		if ddPct.GreaterThan(maxDDPct) {
			maxDDPct = ddPct
		}
		points = append(points, DrawdownPoint{
			Timestamp:       sample.Timestamp,
			Drawdown:        dd,
			DrawdownPercent: ddPct,
		})
	}
	return maxDD, maxDDPct, points
}

// periodReturns converts the equity curve into simple per-period returns.
func periodReturns(curve []types.EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}
	out := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if !prev.IsPositive() {
			continue
		}
		r, _ := curve[i].Equity.Sub(prev).Div(prev).Float64()
		out = append(out, r)
	}
	return out
}

// sharpe is mean excess return over sample standard deviation, annualized.
// Undefined with fewer than two returns or zero variance.
func sharpe(returns []float64, cfg Config) (decimal.Decimal, bool) {
	if len(returns) < 2 {
		return decimal.Zero, false
	}
	mean := meanOf(returns)
	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns) - 1)
	if variance == 0 {
		return decimal.Zero, false
	}
	periodRF := cfg.RiskFreeRate / float64(cfg.PeriodsPerYear)
	value := (mean - periodRF) / math.Sqrt(variance) * math.Sqrt(float64(cfg.PeriodsPerYear))
	return decimal.NewFromFloat(value).Round(ratioPlaces), true
}

// sortino replaces the denominator with downside deviation, the root mean
// square of negative returns only.
func sortino(returns []float64, cfg Config) (decimal.Decimal, bool) {
	if len(returns) < 2 {
		return decimal.Zero, false
	}
	downSquares := 0.0
	downCount := 0
	for _, r := range returns {
		if r < 0 {
			downSquares += r * r
			downCount++
		}
	}
	if downCount == 0 || downSquares == 0 {
		return decimal.Zero, false
	}
	downsideDev := math.Sqrt(downSquares / float64(downCount))
	mean := meanOf(returns)
	periodRF := cfg.RiskFreeRate / float64(cfg.PeriodsPerYear)
	value := (mean - periodRF) / downsideDev * math.Sqrt(float64(cfg.PeriodsPerYear))
	return decimal.NewFromFloat(value).Round(ratioPlaces), true
}

func meanOf(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}
