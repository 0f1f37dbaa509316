package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
feed:
  source: csv
  csv_path: bars.csv
`))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, ":8080", cfg.App.HTTPAddr)
	assert.Equal(t, "100000", cfg.Engine.InitialCapital)
	assert.EqualValues(t, 1000, cfg.Risk.MaxPositionSize)
	assert.Equal(t, 252, cfg.Analyzer.PeriodsPerYear)
	assert.Equal(t, "1m", cfg.Feed.Interval)
	assert.Equal(t, 500, cfg.Feed.Limit)
}

func TestLoadParsesFullConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
app:
  log_level: debug
  http_addr: ":9090"
engine:
  initial_capital: "250000.50"
  track_equity: true
risk:
  max_position_size: 500
  max_order_value: "50000"
  max_daily_loss: "2500"
  max_positions: 3
analyzer:
  periods_per_year: 365
  risk_free_rate: 0.02
feed:
  source: binance
  symbol: BTCUSDT
  interval: 1h
  limit: 200
`))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.True(t, cfg.Engine.TrackEquity)
	assert.Equal(t, "250000.50", cfg.InitialCapital().String())
	assert.Equal(t, "50000", cfg.MaxOrderValue().String())
	assert.Equal(t, "2500", cfg.MaxDailyLoss().String())
	assert.Equal(t, 365, cfg.Analyzer.PeriodsPerYear)
	assert.Equal(t, "BTCUSDT", cfg.Feed.Symbol)
}

func TestLoadRejectsInvalidConfigs(t *testing.T) {
	cases := map[string]string{
		"non-decimal capital": `
engine:
  initial_capital: "lots"
feed:
  source: csv
  csv_path: bars.csv
`,
		"negative capital": `
engine:
  initial_capital: "-100"
feed:
  source: csv
  csv_path: bars.csv
`,
		"negative loss limit": `
risk:
  max_daily_loss: "-1"
feed:
  source: csv
  csv_path: bars.csv
`,
		"unknown feed source": `
feed:
  source: carrier_pigeon
`,
		"csv without path": `
feed:
  source: csv
`,
		"binance without symbol": `
feed:
  source: binance
`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	_, err = Load("")
	assert.Error(t, err)
}
