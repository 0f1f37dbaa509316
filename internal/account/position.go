package account

import (
	"github.com/shopspring/decimal"
)

// Position tracks the open exposure for one symbol. Quantity is signed,
// positive for long and negative for short. AverageCost is the
// weighted-average cost basis of the currently open quantity.
type Position struct {
	Symbol      string          `json:"symbol"`
	Quantity    int64           `json:"quantity"`
	AverageCost decimal.Decimal `json:"average_cost"`
	RealizedPnL decimal.Decimal `json:"realized_pnl"`
	LastMark    decimal.Decimal `json:"last_mark"`
}

func newPosition(symbol string) *Position {
	return &Position{
		Symbol:      symbol,
		AverageCost: decimal.Zero,
		RealizedPnL: decimal.Zero,
		LastMark:    decimal.Zero,
	}
}

// apply folds a signed quantity delta at the given price into the position
// and returns the P&L realized by any reducing or reversing part.
func (p *Position) apply(delta int64, price decimal.Decimal) decimal.Decimal {
	realized := decimal.Zero
	if delta == 0 {
		return realized
	}
	switch {
	case p.Quantity == 0 || sameSign(p.Quantity, delta):
		// Opening or adding: weighted-average cost over the combined size.
		oldAbs := decimal.NewFromInt(abs(p.Quantity))
		addAbs := decimal.NewFromInt(abs(delta))
		totalCost := p.AverageCost.Mul(oldAbs).Add(price.Mul(addAbs))
		p.Quantity += delta
		p.AverageCost = totalCost.Div(decimal.NewFromInt(abs(p.Quantity)))
	default:
		// Reducing or reversing: realize against average cost first.
		closeQty := min64(abs(delta), abs(p.Quantity))
		perUnit := price.Sub(p.AverageCost)
		if p.Quantity < 0 {
			perUnit = p.AverageCost.Sub(price)
		}
		realized = perUnit.Mul(decimal.NewFromInt(closeQty))
		p.RealizedPnL = p.RealizedPnL.Add(realized)
		p.Quantity += delta
		if p.Quantity == 0 {
			p.AverageCost = decimal.Zero
		} else if abs(delta) > closeQty {
			// Reversal: the leftover opens a fresh exposure at the fill price.
			p.AverageCost = price
		}
	}
	return realized
}

// UnrealizedPnL marks the open quantity against the given price.
func (p *Position) UnrealizedPnL(price decimal.Decimal) decimal.Decimal {
	if p.Quantity == 0 {
		return decimal.Zero
	}
	return price.Sub(p.AverageCost).Mul(decimal.NewFromInt(p.Quantity))
}

// MarketValue is the signed notional of the open quantity at the given price.
func (p *Position) MarketValue(price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(p.Quantity))
}

// TotalPnL is realized plus unrealized at the given price.
func (p *Position) TotalPnL(price decimal.Decimal) decimal.Decimal {
	return p.RealizedPnL.Add(p.UnrealizedPnL(price))
}

func sameSign(a, b int64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
