// Package engine hosts the orchestrator that turns incoming bars into
// signals, risk-gated orders, simulated fills and account updates.
package engine

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"simtrader/internal/account"
	"simtrader/internal/exec"
	"simtrader/internal/logger"
	"simtrader/internal/orderbook"
	"simtrader/internal/risk"
	"simtrader/internal/strategy"
	"simtrader/internal/types"
)

// ErrNotRunning is returned for bars delivered while the engine is stopped.
var ErrNotRunning = errors.New("engine not running")

// Config carries the engine's construction parameters.
type Config struct {
	InitialCapital decimal.Decimal
	RiskLimits     risk.Limits
	// TrackEquity enables one equity sample per processed bar.
	TrackEquity bool
}

// Engine is the single-threaded simulation core. One bar is fully processed
// before the next is accepted; all account mutation happens on this path, so
// no locking discipline is needed. Multiple engines are independently
// constructible, there is no shared global state.
type Engine struct {
	acct       *account.Account
	riskMgr    *risk.Manager
	orders     *orderbook.Manager
	sim        *exec.Simulator
	strategies []strategy.Strategy

	history   map[string][]types.MarketBar
	lastClose map[string]decimal.Decimal
	lastBarAt map[string]time.Time

	trackEquity bool
	equityCurve []types.EquityPoint

	running    bool
	rejections int
}

func New(cfg Config) *Engine {
	return &Engine{
		acct:        account.New(cfg.InitialCapital),
		riskMgr:     risk.NewManager(cfg.RiskLimits),
		orders:      orderbook.NewManager(),
		sim:         exec.NewSimulator(),
		history:     make(map[string][]types.MarketBar),
		lastClose:   make(map[string]decimal.Decimal),
		lastBarAt:   make(map[string]time.Time),
		trackEquity: cfg.TrackEquity,
	}
}

// AddStrategy registers a strategy. Registration order is significant:
// strategies run, and their signals are gated, in this order on every bar.
func (e *Engine) AddStrategy(s strategy.Strategy) {
	e.strategies = append(e.strategies, s)
}

// Start begins accepting bars.
func (e *Engine) Start() {
	e.running = true
	logger.Infof("engine started")
}

// Stop rejects further bars and cancels every resting order.
func (e *Engine) Stop() {
	e.running = false
	for _, order := range e.orders.PendingOrders("") {
		if err := e.orders.Cancel(order.ID); err != nil {
			logger.Warnf("cancel order %d on stop: %v", order.ID, err)
		}
	}
	logger.Infof("engine stopped")
}

func (e *Engine) Running() bool { return e.running }

// EnableEquityTracking turns on per-bar equity sampling.
func (e *Engine) EnableEquityTracking() {
	e.trackEquity = true
}

// OnMarketData processes one bar end to end: history append, signal
// generation, risk gating, order submission, execution, fill application and
// the optional equity sample.
func (e *Engine) OnMarketData(bar types.MarketBar) error {
	if !e.running {
		return fmt.Errorf("%w: bar %s@%s rejected", ErrNotRunning, bar.Symbol, bar.Timestamp.Format(time.RFC3339))
	}
	if last, ok := e.lastBarAt[bar.Symbol]; ok && bar.Timestamp.Before(last) {
		return fmt.Errorf("%w: bar for %s at %s is older than %s",
			types.ErrValidation, bar.Symbol, bar.Timestamp.Format(time.RFC3339), last.Format(time.RFC3339))
	}

	e.acct.RollDay(bar.Timestamp)

	e.history[bar.Symbol] = append(e.history[bar.Symbol], bar)
	e.lastClose[bar.Symbol] = bar.Close
	e.lastBarAt[bar.Symbol] = bar.Timestamp

	for _, strat := range e.strategies {
		signal, ok := strat.GenerateSignals(e.history[bar.Symbol])
		if !ok {
			continue
		}
		e.submitSignal(strat.Name(), signal, bar.Timestamp)
	}

	e.executePending(bar)
	e.acct.Mark(bar.Symbol, bar.Close)

	if e.trackEquity {
		e.equityCurve = append(e.equityCurve, types.EquityPoint{
			Timestamp: bar.Timestamp,
			Equity:    e.acct.Equity(),
		})
	}
	return nil
}

// submitSignal gates a candidate order and, on approval, hands it to the
// order manager. Rejections are logged and counted, never fatal.
func (e *Engine) submitSignal(strategyName string, signal types.Signal, ts time.Time) {
	candidate := types.Order{
		Symbol:   signal.Symbol,
		Side:     signal.Side,
		Type:     signal.Type,
		Quantity: signal.Quantity,
		Price:    signal.Price,
		Status:   types.OrderStatusPending,
	}
	decision := e.riskMgr.Evaluate(e.acct, candidate, e.lastClose[signal.Symbol])
	if !decision.Approved {
		e.rejections++
		logger.Infof("signal from %s rejected (%s): %s", strategyName, decision.Reason, decision.Detail)
		return
	}
	order := e.orders.Create(signal, ts)
	logger.Debugf("order %d created from %s: %s %s %d %s",
		order.ID, strategyName, order.Side, order.Type, order.Quantity, order.Symbol)
}

// executePending runs the fill pass over every resting order for the bar's
// symbol, oldest first, and applies resulting fills atomically.
func (e *Engine) executePending(bar types.MarketBar) {
	for _, order := range e.orders.PendingOrders(bar.Symbol) {
		fill, ok := e.sim.TryFill(order, bar)
		if !ok {
			continue
		}
		trade, err := e.orders.RecordFill(order.ID, fill.Price, bar.Timestamp)
		if err != nil {
			logger.Warnf("record fill for order %d: %v", order.ID, err)
			continue
		}
		realized := e.acct.ApplyFill(trade)
		e.orders.AttachRealizedPnL(trade.ID, realized)
		logger.Debugf("order %d filled: %s %d %s @ %s, realized %s",
			order.ID, trade.Side, trade.Quantity, trade.Symbol, trade.Price, realized)
	}
}

// Account exposes the aggregate for read-only summaries.
func (e *Engine) Account() *account.Account { return e.acct }

// Orders exposes the order manager for queries and explicit cancellation.
func (e *Engine) Orders() *orderbook.Manager { return e.orders }

// RiskMetrics returns the current risk limit usage.
func (e *Engine) RiskMetrics() risk.Metrics {
	return e.riskMgr.MetricsFor(e.acct)
}

// EquityCurve returns the samples collected so far.
func (e *Engine) EquityCurve() []types.EquityPoint {
	return e.equityCurve
}

// Rejections is the count of risk-rejected signals.
func (e *Engine) Rejections() int { return e.rejections }

func (e *Engine) StrategyCount() int { return len(e.strategies) }

// StrategyNames lists registered strategies in registration order.
func (e *Engine) StrategyNames() []string {
	names := make([]string, 0, len(e.strategies))
	for _, s := range e.strategies {
		names = append(names, s.Name())
	}
	return names
}

// Symbols lists every symbol the engine has seen bars for, sorted.
func (e *Engine) Symbols() []string {
	out := make([]string, 0, len(e.history))
	for symbol := range e.history {
		out = append(out, symbol)
	}
	sort.Strings(out)
	return out
}

// History returns the rolling price history for a symbol.
func (e *Engine) History(symbol string) []types.MarketBar {
	return e.history[symbol]
}
