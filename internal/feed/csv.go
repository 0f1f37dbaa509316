package feed

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"simtrader/internal/types"
)

// CSVSource replays bars from a CSV file with the columns
// symbol,timestamp,open,high,low,close,volume. Timestamps are RFC 3339 or
// unix seconds. It is the simulation variant of the Connector capability.
type CSVSource struct {
	path string
}

func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

func (s *CSVSource) Name() string                    { return "csv" }
func (s *CSVSource) Connect(_ context.Context) error { return nil }
func (s *CSVSource) Disconnect() error               { return nil }

func (s *CSVSource) HistoricalBars(_ context.Context, symbol, _ string, limit int) ([]types.MarketBar, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	var bars []types.MarketBar
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line+1, err)
		}
		line++
		if line == 1 && record[0] == "symbol" {
			continue // header
		}
		bar, err := parseCSVBar(record)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		if symbol != "" && bar.Symbol != symbol {
			continue
		}
		bars = append(bars, bar)
		if limit > 0 && len(bars) >= limit {
			break
		}
	}
	return bars, nil
}

func parseCSVBar(record []string) (types.MarketBar, error) {
	if len(record) < 7 {
		return types.MarketBar{}, fmt.Errorf("expected 7 columns, got %d", len(record))
	}
	ts, err := parseTimestamp(record[1])
	if err != nil {
		return types.MarketBar{}, err
	}
	prices := make([]decimal.Decimal, 4)
	for i, field := range record[2:6] {
		d, err := decimal.NewFromString(field)
		if err != nil {
			return types.MarketBar{}, fmt.Errorf("price %q: %w", field, err)
		}
		prices[i] = d
	}
	volume, err := strconv.ParseInt(record[6], 10, 64)
	if err != nil {
		return types.MarketBar{}, fmt.Errorf("volume %q: %w", record[6], err)
	}
	return types.NewMarketBar(record[0], ts, prices[0], prices[1], prices[2], prices[3], volume)
}

func parseTimestamp(field string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, field); err == nil {
		return ts, nil
	}
	secs, err := strconv.ParseInt(field, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q is neither RFC3339 nor unix seconds", field)
	}
	return time.Unix(secs, 0).UTC(), nil
}
