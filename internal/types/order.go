package types

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Order is the authoritative order record. The order manager owns it; other
// components receive copies and refer back by ID.
type Order struct {
	ID        int64           `json:"id"`
	Symbol    string          `json:"symbol"`
	Side      Side            `json:"side"`
	Type      OrderType       `json:"type"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"` // limit or stop price; zero for market orders
	Status    OrderStatus     `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	FilledAt  time.Time       `json:"filled_at,omitempty"`
}

// Trade records a simulated fill. Append-only; at most one per order.
type Trade struct {
	ID       int64           `json:"id"`
	OrderID  int64           `json:"order_id"`
	Symbol   string          `json:"symbol"`
	Side     Side            `json:"side"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	// RealizedPnL is the profit locked in by the part of this fill that
	// reduced or reversed an existing exposure. Zero for pure opens.
	RealizedPnL decimal.Decimal `json:"realized_pnl"`
	Timestamp   time.Time       `json:"timestamp"`
}

// Value is the traded notional, price times quantity.
func (t Trade) Value() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(t.Quantity))
}

// Signal is a strategy's request for an order.
type Signal struct {
	Symbol   string
	Side     Side
	Type     OrderType
	Quantity int64
	Price    decimal.Decimal // required for limit/stop, ignored for market
}

// NewSignal validates the signal payload at construction so the engine never
// sees a malformed one.
func NewSignal(symbol string, side Side, typ OrderType, quantity int64, price decimal.Decimal) (Signal, error) {
	if symbol == "" {
		return Signal{}, fmt.Errorf("%w: signal symbol is empty", ErrValidation)
	}
	if !side.Valid() {
		return Signal{}, fmt.Errorf("%w: signal side %q", ErrValidation, side)
	}
	if !typ.Valid() {
		return Signal{}, fmt.Errorf("%w: signal order type %q", ErrValidation, typ)
	}
	if quantity <= 0 {
		return Signal{}, fmt.Errorf("%w: signal quantity %d must be positive", ErrValidation, quantity)
	}
	if typ.RequiresPrice() && !price.IsPositive() {
		return Signal{}, fmt.Errorf("%w: %s signal needs a positive price", ErrValidation, typ)
	}
	if typ == OrderTypeMarket {
		price = decimal.Zero
	}
	return Signal{Symbol: symbol, Side: side, Type: typ, Quantity: quantity, Price: price}, nil
}
