package orderbook

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"simtrader/internal/types"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrOrderTerminal   = errors.New("order already terminal")
	ErrOrderNotPending = errors.New("order not pending")
)

// Manager owns the authoritative order set and the append-only trade history.
// IDs are monotonic per manager; history is kept for the life of the process.
type Manager struct {
	orders      map[int64]*types.Order
	orderSeq    []int64 // insertion order
	trades      []types.Trade
	nextOrderID int64
	nextTradeID int64
}

func NewManager() *Manager {
	return &Manager{
		orders:      make(map[int64]*types.Order),
		nextOrderID: 1,
		nextTradeID: 1,
	}
}

// Create allocates an ID and stores a PENDING order. Risk gating is the
// engine's job before this is called.
func (m *Manager) Create(signal types.Signal, createdAt time.Time) types.Order {
	order := types.Order{
		ID:        m.nextOrderID,
		Symbol:    signal.Symbol,
		Side:      signal.Side,
		Type:      signal.Type,
		Quantity:  signal.Quantity,
		Price:     signal.Price,
		Status:    types.OrderStatusPending,
		CreatedAt: createdAt,
	}
	m.nextOrderID++
	m.orders[order.ID] = &order
	m.orderSeq = append(m.orderSeq, order.ID)
	return order
}

// Cancel transitions PENDING to CANCELLED.
func (m *Manager) Cancel(id int64) error {
	order, ok := m.orders[id]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrOrderNotFound, id)
	}
	if order.Status.Terminal() {
		return fmt.Errorf("%w: id %d is %s", ErrOrderTerminal, id, order.Status)
	}
	order.Status = types.OrderStatusCancelled
	return nil
}

// RecordFill transitions PENDING to FILLED and appends the trade. An order
// fills whole; there are no partial fills.
func (m *Manager) RecordFill(id int64, fillPrice decimal.Decimal, ts time.Time) (types.Trade, error) {
	order, ok := m.orders[id]
	if !ok {
		return types.Trade{}, fmt.Errorf("%w: id %d", ErrOrderNotFound, id)
	}
	if order.Status != types.OrderStatusPending {
		return types.Trade{}, fmt.Errorf("%w: id %d is %s", ErrOrderNotPending, id, order.Status)
	}
	order.Status = types.OrderStatusFilled
	order.FilledAt = ts
	trade := types.Trade{
		ID:          m.nextTradeID,
		OrderID:     order.ID,
		Symbol:      order.Symbol,
		Side:        order.Side,
		Quantity:    order.Quantity,
		Price:       fillPrice,
		RealizedPnL: decimal.Zero,
		Timestamp:   ts,
	}
	m.nextTradeID++
	m.trades = append(m.trades, trade)
	return trade, nil
}

// AttachRealizedPnL back-fills the realized P&L onto an already recorded
// trade once the account has applied the fill.
func (m *Manager) AttachRealizedPnL(tradeID int64, realized decimal.Decimal) {
	for i := range m.trades {
		if m.trades[i].ID == tradeID {
			m.trades[i].RealizedPnL = realized
			return
		}
	}
}

func (m *Manager) Get(id int64) (types.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return types.Order{}, fmt.Errorf("%w: id %d", ErrOrderNotFound, id)
	}
	return *order, nil
}

// Filter narrows order and trade queries. Zero values match everything.
type Filter struct {
	Symbol string
	Status types.OrderStatus
}

// Orders returns matching orders in insertion order.
func (m *Manager) Orders(filter Filter) []types.Order {
	out := make([]types.Order, 0, len(m.orderSeq))
	for _, id := range m.orderSeq {
		order := m.orders[id]
		if filter.Symbol != "" && order.Symbol != filter.Symbol {
			continue
		}
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		out = append(out, *order)
	}
	return out
}

// PendingOrders returns the resting orders, optionally for one symbol.
func (m *Manager) PendingOrders(symbol string) []types.Order {
	return m.Orders(Filter{Symbol: symbol, Status: types.OrderStatusPending})
}

// Trades returns matching trades in fill order. Trades carry no status, so
// only the Symbol field of the filter applies.
func (m *Manager) Trades(filter Filter) []types.Trade {
	out := make([]types.Trade, 0, len(m.trades))
	for _, trade := range m.trades {
		if filter.Symbol != "" && trade.Symbol != filter.Symbol {
			continue
		}
		out = append(out, trade)
	}
	return out
}
