// Package strategy holds the signal-generation contract and the built-in
// strategies. The engine only sees the interface; anything able to turn a
// price history into a signal qualifies.
package strategy

import (
	"simtrader/internal/types"
)

// Strategy turns an ordered price history into at most one signal per bar.
// Implementations must be deterministic over the history they receive.
type Strategy interface {
	Name() string
	// GenerateSignals inspects the history (oldest first, last element is
	// the current bar) and returns a signal with ok=true, or ok=false for
	// no action.
	GenerateSignals(history []types.MarketBar) (types.Signal, bool)
}

func closesOf(history []types.MarketBar) []float64 {
	out := make([]float64, len(history))
	for i, bar := range history {
		out[i], _ = bar.Close.Float64()
	}
	return out
}
