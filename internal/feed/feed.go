// Package feed supplies market bars to the engine. Sources implement the
// Connector capability; the engine never knows whether bars come from a
// recorded file or a live platform.
package feed

import (
	"context"

	"simtrader/internal/types"
)

// Connector is the platform capability the core consumes: connect, fetch an
// ordered bar history, disconnect. Real-platform and simulation variants sit
// behind the same interface and are selected at construction time.
type Connector interface {
	Name() string
	Connect(ctx context.Context) error
	Disconnect() error
	// HistoricalBars returns bars in non-decreasing timestamp order.
	HistoricalBars(ctx context.Context, symbol, interval string, limit int) ([]types.MarketBar, error)
}

// Handler consumes one bar; feed.Replay drives it synchronously.
type Handler func(types.MarketBar) error

// Replay pushes bars to the handler one at a time, stopping on the first
// handler error or context cancellation. Processing is strictly sequential:
// the next bar is not delivered until the handler returns.
func Replay(ctx context.Context, bars []types.MarketBar, handle Handler) error {
	for _, bar := range bars {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := handle(bar); err != nil {
			return err
		}
	}
	return nil
}
