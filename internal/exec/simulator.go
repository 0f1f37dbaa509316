// Package exec simulates order execution against incoming bars. Fill rules
// are deliberately simple and deterministic: strategy logic, not fill
// realism, is what the system puts under test. No partial fills, no
// slippage, no fees.
package exec

import (
	"github.com/shopspring/decimal"

	"simtrader/internal/types"
)

// Fill is the price a pending order executes at on a given bar.
type Fill struct {
	Price decimal.Decimal
}

// Simulator decides whether a pending order fills against a bar.
//
// Fill timing policy: orders are evaluated against the same bar that produced
// the triggering signal, so market orders execute at that bar's close. Limit
// and stop orders that miss keep resting and are retried on every later bar
// for their symbol.
type Simulator struct{}

func NewSimulator() *Simulator {
	return &Simulator{}
}

// TryFill returns the fill for order against bar, or ok=false when the order
// keeps resting. Rules per type:
//
//	MARKET:     always fills at bar close
//	LIMIT BUY:  fills at limit when bar.low  <= limit
//	LIMIT SELL: fills at limit when bar.high >= limit
//	STOP BUY:   fills at stop  when bar.high >= stop
//	STOP SELL:  fills at stop  when bar.low  <= stop
func (s *Simulator) TryFill(order types.Order, bar types.MarketBar) (Fill, bool) {
	if order.Status != types.OrderStatusPending || order.Symbol != bar.Symbol {
		return Fill{}, false
	}
	switch order.Type {
	case types.OrderTypeMarket:
		return Fill{Price: bar.Close}, true
	case types.OrderTypeLimit:
		if order.Side == types.SideBuy && bar.Low.LessThanOrEqual(order.Price) {
			return Fill{Price: order.Price}, true
		}
		if order.Side == types.SideSell && bar.High.GreaterThanOrEqual(order.Price) {
			return Fill{Price: order.Price}, true
		}
	case types.OrderTypeStop:
		if order.Side == types.SideBuy && bar.High.GreaterThanOrEqual(order.Price) {
			return Fill{Price: order.Price}, true
		}
		if order.Side == types.SideSell && bar.Low.LessThanOrEqual(order.Price) {
			return Fill{Price: order.Price}, true
		}
	}
	return Fill{}, false
}
