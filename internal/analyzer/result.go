package analyzer

import (
	"time"

	"github.com/shopspring/decimal"

	"simtrader/internal/types"
)

// DrawdownPoint is the decline from the running equity peak at one sample.
type DrawdownPoint struct {
	Timestamp       time.Time       `json:"timestamp"`
	Drawdown        decimal.Decimal `json:"drawdown"`
	DrawdownPercent decimal.Decimal `json:"drawdown_percent"`
}

// Result is the immutable performance snapshot produced by Calculate.
// Ratio metrics that have no mathematically defined value under the observed
// data carry an explicit false in their *_defined companion instead of a
// silent zero.
type Result struct {
	InitialCapital decimal.Decimal `json:"initial_capital"`
	FinalCapital   decimal.Decimal `json:"final_capital"`
	TotalPnL       decimal.Decimal `json:"total_pnl"`
	TotalReturnPct decimal.Decimal `json:"total_return_pct"`

	TotalTrades   int             `json:"total_trades"`
	WinningTrades int             `json:"winning_trades"`
	LosingTrades  int             `json:"losing_trades"`
	WinRatePct    decimal.Decimal `json:"win_rate_pct"`

	GrossProfit         decimal.Decimal `json:"gross_profit"`
	GrossLoss           decimal.Decimal `json:"gross_loss"`
	ProfitFactor        decimal.Decimal `json:"profit_factor"`
	ProfitFactorDefined bool            `json:"profit_factor_defined"`
	AverageWin          decimal.Decimal `json:"average_win"`
	AverageLoss         decimal.Decimal `json:"average_loss"`

	MaxDrawdown    decimal.Decimal `json:"max_drawdown"`
	MaxDrawdownPct decimal.Decimal `json:"max_drawdown_pct"`

	SharpeRatio    decimal.Decimal `json:"sharpe_ratio"`
	SharpeDefined  bool            `json:"sharpe_defined"`
	SortinoRatio   decimal.Decimal `json:"sortino_ratio"`
	SortinoDefined bool            `json:"sortino_defined"`

	StartTime    time.Time `json:"start_time,omitempty"`
	EndTime      time.Time `json:"end_time,omitempty"`
	DurationDays int       `json:"duration_days"`

	EquityCurve   []types.EquityPoint `json:"equity_curve"`
	DrawdownCurve []DrawdownPoint     `json:"drawdown_curve"`
	Trades        []types.Trade       `json:"trades"`
}
