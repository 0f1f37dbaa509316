package account

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"simtrader/internal/types"
)

// Account is the single mutable aggregate of the simulation: cash, open
// positions, the daily realized-loss accumulator and the trade counter. All
// mutation happens through ApplyFill on the engine's processing path, so no
// locking is needed.
type Account struct {
	initialCapital decimal.Decimal
	cash           decimal.Decimal
	positions      map[string]*Position

	dailyLoss   decimal.Decimal
	currentDay  time.Time
	totalTrades int
}

func New(initialCapital decimal.Decimal) *Account {
	return &Account{
		initialCapital: initialCapital,
		cash:           initialCapital,
		positions:      make(map[string]*Position),
		dailyLoss:      decimal.Zero,
	}
}

func (a *Account) InitialCapital() decimal.Decimal { return a.initialCapital }
func (a *Account) Cash() decimal.Decimal           { return a.cash }
func (a *Account) DailyLoss() decimal.Decimal      { return a.dailyLoss }
func (a *Account) TotalTrades() int                { return a.totalTrades }
func (a *Account) PositionCount() int              { return len(a.positions) }

// Position returns the open position for symbol, or nil. Callers must treat
// the result as read-only.
func (a *Account) Position(symbol string) *Position {
	return a.positions[symbol]
}

// Positions returns the open positions sorted by symbol for deterministic
// iteration.
func (a *Account) Positions() []*Position {
	out := make([]*Position, 0, len(a.positions))
	for _, p := range a.positions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// ApplyFill folds a trade into cash, the symbol's position and the daily-loss
// accumulator in one step, and returns the P&L the fill realized. Positions
// that go flat are removed from the active set.
func (a *Account) ApplyFill(trade types.Trade) decimal.Decimal {
	pos, ok := a.positions[trade.Symbol]
	if !ok {
		pos = newPosition(trade.Symbol)
		a.positions[trade.Symbol] = pos
	}

	delta := trade.Quantity
	if trade.Side == types.SideSell {
		delta = -delta
	}
	realized := pos.apply(delta, trade.Price)
	pos.LastMark = trade.Price

	if trade.Side == types.SideBuy {
		a.cash = a.cash.Sub(trade.Value())
	} else {
		a.cash = a.cash.Add(trade.Value())
	}
	if realized.IsNegative() {
		a.dailyLoss = a.dailyLoss.Add(realized.Neg())
	}
	a.totalTrades++

	if pos.Quantity == 0 {
		delete(a.positions, trade.Symbol)
	}
	return realized
}

// Mark updates a symbol's last known price without touching cash.
func (a *Account) Mark(symbol string, price decimal.Decimal) {
	if pos, ok := a.positions[symbol]; ok {
		pos.LastMark = price
	}
}

// RollDay resets the daily-loss accumulator when ts lands on a new UTC
// calendar day. Returns true on a boundary.
func (a *Account) RollDay(ts time.Time) bool {
	day := ts.UTC().Truncate(24 * time.Hour)
	if a.currentDay.IsZero() {
		a.currentDay = day
		return false
	}
	if day.After(a.currentDay) {
		a.currentDay = day
		a.dailyLoss = decimal.Zero
		return true
	}
	return false
}

// Equity is cash plus the mark-to-market value of every open position.
func (a *Account) Equity() decimal.Decimal {
	total := a.cash
	for _, pos := range a.positions {
		total = total.Add(pos.MarketValue(pos.LastMark))
	}
	return total
}

// RealizedPnL sums the realized P&L of all open positions. Realized P&L of
// closed positions is already reflected in cash.
func (a *Account) RealizedPnL() decimal.Decimal {
	total := decimal.Zero
	for _, pos := range a.positions {
		total = total.Add(pos.RealizedPnL)
	}
	return total
}

// Summary is the read-only account snapshot exposed to callers. RealizedPnL
// covers open positions only; realized P&L of closed ones already sits in
// cash.
type Summary struct {
	InitialCapital decimal.Decimal `json:"initial_capital"`
	Cash           decimal.Decimal `json:"cash"`
	PortfolioValue decimal.Decimal `json:"portfolio_value"`
	TotalPnL       decimal.Decimal `json:"total_pnl"`
	RealizedPnL    decimal.Decimal `json:"realized_pnl"`
	PositionsCount int             `json:"positions_count"`
	TotalTrades    int             `json:"total_trades"`
}

func (a *Account) Summary() Summary {
	equity := a.Equity()
	return Summary{
		InitialCapital: a.initialCapital,
		Cash:           a.cash,
		PortfolioValue: equity,
		TotalPnL:       equity.Sub(a.initialCapital),
		RealizedPnL:    a.RealizedPnL(),
		PositionsCount: len(a.positions),
		TotalTrades:    a.totalTrades,
	}
}

// PositionSummary is one row of the positions view.
type PositionSummary struct {
	Symbol        string          `json:"symbol"`
	Quantity      int64           `json:"quantity"`
	AverageCost   decimal.Decimal `json:"average_cost"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	MarketValue   decimal.Decimal `json:"market_value"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
	RealizedPnL   decimal.Decimal `json:"realized_pnl"`
	TotalPnL      decimal.Decimal `json:"total_pnl"`
}

func (a *Account) PositionsSummary() []PositionSummary {
	positions := a.Positions()
	out := make([]PositionSummary, 0, len(positions))
	for _, pos := range positions {
		out = append(out, PositionSummary{
			Symbol:        pos.Symbol,
			Quantity:      pos.Quantity,
			AverageCost:   pos.AverageCost,
			CurrentPrice:  pos.LastMark,
			MarketValue:   pos.MarketValue(pos.LastMark),
			UnrealizedPnL: pos.UnrealizedPnL(pos.LastMark),
			RealizedPnL:   pos.RealizedPnL,
			TotalPnL:      pos.TotalPnL(pos.LastMark),
		})
	}
	return out
}
