package feed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"

	"simtrader/internal/logger"
	"simtrader/internal/types"
)

const maxKlineLimit = 1000

// BinanceSource pulls historical klines through the Binance spot SDK. It is
// the real-platform variant of the Connector capability.
type BinanceSource struct {
	client    *binance.Client
	connected bool
}

// NewBinanceSource builds a source against the public market-data endpoints.
// baseURL overrides the default host for testing.
func NewBinanceSource(baseURL string) *BinanceSource {
	client := binance.NewClient("", "")
	if strings.TrimSpace(baseURL) != "" {
		client.BaseURL = strings.TrimSpace(baseURL)
	}
	return &BinanceSource{client: client}
}

func (s *BinanceSource) Name() string { return "binance" }

func (s *BinanceSource) Connect(ctx context.Context) error {
	if err := s.client.NewPingService().Do(ctx); err != nil {
		return fmt.Errorf("binance ping: %w", err)
	}
	s.connected = true
	logger.Infof("binance source connected (%s)", s.client.BaseURL)
	return nil
}

func (s *BinanceSource) Disconnect() error {
	s.connected = false
	return nil
}

func (s *BinanceSource) HistoricalBars(ctx context.Context, symbol, interval string, limit int) ([]types.MarketBar, error) {
	if symbol == "" || interval == "" {
		return nil, fmt.Errorf("symbol and interval are required")
	}
	if limit <= 0 || limit > maxKlineLimit {
		limit = maxKlineLimit
	}
	klines, err := s.client.NewKlinesService().
		Symbol(strings.ToUpper(symbol)).
		Interval(interval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance klines: %w", err)
	}
	bars := make([]types.MarketBar, 0, len(klines))
	for _, k := range klines {
		bar, err := klineToBar(strings.ToUpper(symbol), k)
		if err != nil {
			logger.Warnf("skipping kline at %d: %v", k.OpenTime, err)
			continue
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func klineToBar(symbol string, k *binance.Kline) (types.MarketBar, error) {
	open, err := decimal.NewFromString(k.Open)
	if err != nil {
		return types.MarketBar{}, fmt.Errorf("open %q: %w", k.Open, err)
	}
	high, err := decimal.NewFromString(k.High)
	if err != nil {
		return types.MarketBar{}, fmt.Errorf("high %q: %w", k.High, err)
	}
	low, err := decimal.NewFromString(k.Low)
	if err != nil {
		return types.MarketBar{}, fmt.Errorf("low %q: %w", k.Low, err)
	}
	closePrice, err := decimal.NewFromString(k.Close)
	if err != nil {
		return types.MarketBar{}, fmt.Errorf("close %q: %w", k.Close, err)
	}
	volume := int64(0)
	if v, err := decimal.NewFromString(k.Volume); err == nil {
		volume = v.IntPart()
	}
	ts := time.UnixMilli(k.CloseTime).UTC()
	return types.NewMarketBar(symbol, ts, open, high, low, closePrice, volume)
}
