package types

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MarketBar is one OHLCV sample for a symbol. Immutable once constructed.
type MarketBar struct {
	Symbol    string          `json:"symbol"`
	Timestamp time.Time       `json:"timestamp"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    int64           `json:"volume"`
}

// NewMarketBar validates and builds a bar. High must not be below low, the
// rest of the OHLC shape is the feed's problem.
func NewMarketBar(symbol string, ts time.Time, open, high, low, close decimal.Decimal, volume int64) (MarketBar, error) {
	if symbol == "" {
		return MarketBar{}, fmt.Errorf("%w: bar symbol is empty", ErrValidation)
	}
	if ts.IsZero() {
		return MarketBar{}, fmt.Errorf("%w: bar timestamp is zero", ErrValidation)
	}
	if high.LessThan(low) {
		return MarketBar{}, fmt.Errorf("%w: bar high %s below low %s", ErrValidation, high, low)
	}
	if volume < 0 {
		return MarketBar{}, fmt.Errorf("%w: bar volume %d is negative", ErrValidation, volume)
	}
	return MarketBar{
		Symbol:    symbol,
		Timestamp: ts,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close,
		Volume:    volume,
	}, nil
}
