package risk

import (
	"fmt"

	"github.com/shopspring/decimal"

	"simtrader/internal/account"
	"simtrader/internal/types"
)

// Reason codes for rejected orders.
type Reason string

const (
	ReasonPositionLimitExceeded Reason = "PositionLimitExceeded"
	ReasonOrderValueExceeded    Reason = "OrderValueExceeded"
	ReasonPositionCountExceeded Reason = "PositionCountExceeded"
	ReasonDailyLossLimitReached Reason = "DailyLossLimitReached"
)

// Decision is the outcome of gating one candidate order. A rejection is an
// expected result, not an error.
type Decision struct {
	Approved bool
	Reason   Reason
	Detail   string
}

func approved() Decision {
	return Decision{Approved: true}
}

func rejected(reason Reason, format string, v ...any) Decision {
	return Decision{Approved: false, Reason: reason, Detail: fmt.Sprintf(format, v...)}
}

// Limits configures the manager. Zero-valued limits are treated as
// unlimited for that check.
type Limits struct {
	MaxPositionSize int64
	MaxOrderValue   decimal.Decimal
	MaxDailyLoss    decimal.Decimal
	MaxPositions    int
}

// Manager gates candidate orders against the current account snapshot. It is
// a pure decision function: Evaluate never mutates the account or itself.
type Manager struct {
	limits Limits
}

func NewManager(limits Limits) *Manager {
	return &Manager{limits: limits}
}

func (m *Manager) Limits() Limits { return m.limits }

// Evaluate runs all checks against the proposed order. referencePrice is the
// last known close for the symbol, used to value market orders; limit and
// stop orders are valued at their own price.
func (m *Manager) Evaluate(acct *account.Account, order types.Order, referencePrice decimal.Decimal) Decision {
	// Kill switch first: once the day's realized loss hits the limit,
	// nothing passes until the day boundary resets the accumulator.
	if m.limits.MaxDailyLoss.IsPositive() && acct.DailyLoss().GreaterThanOrEqual(m.limits.MaxDailyLoss) {
		return rejected(ReasonDailyLossLimitReached,
			"daily realized loss %s reached limit %s", acct.DailyLoss(), m.limits.MaxDailyLoss)
	}

	if d := m.checkPositionSize(acct, order); !d.Approved {
		return d
	}
	if d := m.checkOrderValue(order, referencePrice); !d.Approved {
		return d
	}
	if d := m.checkPositionCount(acct, order); !d.Approved {
		return d
	}
	return approved()
}

func (m *Manager) checkPositionSize(acct *account.Account, order types.Order) Decision {
	if m.limits.MaxPositionSize <= 0 {
		return approved()
	}
	var current int64
	if pos := acct.Position(order.Symbol); pos != nil {
		current = pos.Quantity
	}
	after := current + order.Quantity
	if order.Side == types.SideSell {
		after = current - order.Quantity
	}
	if after < 0 {
		after = -after
	}
	if after > m.limits.MaxPositionSize {
		return rejected(ReasonPositionLimitExceeded,
			"position for %s would be %d, limit %d", order.Symbol, after, m.limits.MaxPositionSize)
	}
	return approved()
}

func (m *Manager) checkOrderValue(order types.Order, referencePrice decimal.Decimal) Decision {
	if !m.limits.MaxOrderValue.IsPositive() {
		return approved()
	}
	price := referencePrice
	if order.Type.RequiresPrice() {
		price = order.Price
	}
	value := price.Mul(decimal.NewFromInt(order.Quantity))
	if value.GreaterThan(m.limits.MaxOrderValue) {
		return rejected(ReasonOrderValueExceeded,
			"order value %s exceeds limit %s", value, m.limits.MaxOrderValue)
	}
	return approved()
}

func (m *Manager) checkPositionCount(acct *account.Account, order types.Order) Decision {
	if m.limits.MaxPositions <= 0 {
		return approved()
	}
	if acct.Position(order.Symbol) != nil {
		return approved()
	}
	if acct.PositionCount()+1 > m.limits.MaxPositions {
		return rejected(ReasonPositionCountExceeded,
			"already holding %d symbols, limit %d", acct.PositionCount(), m.limits.MaxPositions)
	}
	return approved()
}

// Metrics is the risk state snapshot exposed through the account API.
type Metrics struct {
	MaxPositionSize    int64           `json:"max_position_size"`
	MaxOrderValue      decimal.Decimal `json:"max_order_value"`
	MaxDailyLoss       decimal.Decimal `json:"max_daily_loss"`
	MaxPositions       int             `json:"max_positions"`
	DailyLoss          decimal.Decimal `json:"daily_loss"`
	DailyLossRemaining decimal.Decimal `json:"daily_loss_remaining"`
}

func (m *Manager) MetricsFor(acct *account.Account) Metrics {
	remaining := m.limits.MaxDailyLoss.Sub(acct.DailyLoss())
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return Metrics{
		MaxPositionSize:    m.limits.MaxPositionSize,
		MaxOrderValue:      m.limits.MaxOrderValue,
		MaxDailyLoss:       m.limits.MaxDailyLoss,
		MaxPositions:       m.limits.MaxPositions,
		DailyLoss:          acct.DailyLoss(),
		DailyLossRemaining: remaining,
	}
}
