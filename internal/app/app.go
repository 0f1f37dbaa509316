// Package app wires configuration into a runnable simulation: engine,
// strategies, feed, persistence and the HTTP surface.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"simtrader/internal/analyzer"
	"simtrader/internal/config"
	"simtrader/internal/engine"
	"simtrader/internal/feed"
	"simtrader/internal/logger"
	"simtrader/internal/orderbook"
	"simtrader/internal/profile"
	"simtrader/internal/risk"
	"simtrader/internal/store"
	httpapi "simtrader/internal/transport/http"
)

type App struct {
	cfg       *config.Config
	eng       *engine.Engine
	server    *httpapi.Server
	runs      *store.Store
	connector feed.Connector
	anCfg     analyzer.Config
}

// NewApp builds every component from config. Construction is explicit and
// by hand; there is no ambient or global state, so several apps can coexist
// in one process.
func NewApp(cfg *config.Config) (*App, error) {
	eng := engine.New(engine.Config{
		InitialCapital: cfg.InitialCapital(),
		RiskLimits: risk.Limits{
			MaxPositionSize: cfg.Risk.MaxPositionSize,
			MaxOrderValue:   cfg.MaxOrderValue(),
			MaxDailyLoss:    cfg.MaxDailyLoss(),
			MaxPositions:    cfg.Risk.MaxPositions,
		},
		TrackEquity: cfg.Engine.TrackEquity,
	})

	if cfg.App.ProfilesPath != "" {
		strategies, err := profile.Load(cfg.App.ProfilesPath)
		if err != nil {
			return nil, fmt.Errorf("load strategy profiles: %w", err)
		}
		for _, s := range strategies {
			eng.AddStrategy(s)
			logger.Infof("strategy registered: %s", s.Name())
		}
	}

	var connector feed.Connector
	switch cfg.Feed.Source {
	case "csv":
		connector = feed.NewCSVSource(cfg.Feed.CSVPath)
	case "binance":
		connector = feed.NewBinanceSource(cfg.Feed.BinanceBaseURL)
	default:
		return nil, fmt.Errorf("unknown feed source %q", cfg.Feed.Source)
	}

	var runs *store.Store
	if cfg.App.StorePath != "" {
		s, err := store.Open(cfg.App.StorePath)
		if err != nil {
			return nil, fmt.Errorf("open run store: %w", err)
		}
		runs = s
	}

	anCfg := analyzer.Config{
		PeriodsPerYear: cfg.Analyzer.PeriodsPerYear,
		RiskFreeRate:   cfg.Analyzer.RiskFreeRate,
	}
	server, err := httpapi.NewServer(httpapi.Config{
		Addr:      cfg.App.HTTPAddr,
		Engine:    eng,
		Analyzer:  anCfg,
		Store:     runs,
		Connector: connector,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:       cfg,
		eng:       eng,
		server:    server,
		runs:      runs,
		connector: connector,
		anCfg:     anCfg,
	}, nil
}

// Run starts the HTTP surface and, when a feed is configured, replays its
// bars through the engine. It blocks until ctx is cancelled or the replay
// fails.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		if a.runs != nil {
			if err := a.runs.Close(); err != nil {
				logger.Warnf("closing run store: %v", err)
			}
		}
	}()

	a.eng.Start()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return a.server.Run(ctx)
	})
	group.Go(func() error {
		return a.replay(ctx)
	})
	return group.Wait()
}

func (a *App) replay(ctx context.Context) error {
	if err := a.connector.Connect(ctx); err != nil {
		return fmt.Errorf("connect %s: %w", a.connector.Name(), err)
	}
	defer func() {
		if err := a.connector.Disconnect(); err != nil {
			logger.Warnf("disconnect %s: %v", a.connector.Name(), err)
		}
	}()

	bars, err := a.connector.HistoricalBars(ctx, a.cfg.Feed.Symbol, a.cfg.Feed.Interval, a.cfg.Feed.Limit)
	if err != nil {
		return fmt.Errorf("load bars: %w", err)
	}
	if len(bars) == 0 {
		logger.Warnf("feed %s returned no bars, serving API only", a.connector.Name())
		return nil
	}
	logger.Infof("replaying %d bars from %s", len(bars), a.connector.Name())

	if err := feed.Replay(ctx, bars, a.server.PushBar); err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	a.finishRun(ctx)
	return nil
}

// finishRun computes and reports the result once the replay is done. The
// API stays up afterwards for inspection.
func (a *App) finishRun(ctx context.Context) {
	res := analyzer.Calculate(a.anCfg, a.eng.Account().InitialCapital(), a.eng.EquityCurve(), a.eng.Orders().Trades(orderbook.Filter{}))
	logger.Infof("replay done: pnl=%s return=%s%% trades=%d winrate=%s%% maxdd=%s",
		res.TotalPnL, res.TotalReturnPct.Round(2), res.TotalTrades,
		res.WinRatePct.Round(2), res.MaxDrawdown)

	if a.runs != nil {
		runID, err := a.runs.SaveRun(ctx, a.eng.Symbols(), res)
		if err != nil {
			logger.Warnf("persist run: %v", err)
		} else {
			logger.Infof("run saved: %s (symbols=%s)", runID, strings.Join(a.eng.Symbols(), ","))
		}
	}
	if a.cfg.App.ReportDir != "" {
		a.writeReport(ctx, res)
	}
}

// writeReport drops result.json and the equity chart into the report dir.
// The PNG snapshot needs a local Chrome; its absence is logged, not fatal.
func (a *App) writeReport(ctx context.Context, res analyzer.Result) {
	dir := a.cfg.App.ReportDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warnf("create report dir: %v", err)
		return
	}
	resultPath := filepath.Join(dir, "result.json")
	if err := analyzer.Export(res, resultPath); err != nil {
		logger.Warnf("export result: %v", err)
	} else {
		logger.Infof("result exported to %s", resultPath)
	}
	chartPath := filepath.Join(dir, "chart.html")
	if err := analyzer.RenderChart(res, chartPath); err != nil {
		logger.Warnf("render chart: %v", err)
		return
	}
	if err := analyzer.SnapshotChart(ctx, chartPath, filepath.Join(dir, "chart.png")); err != nil {
		logger.Warnf("chart snapshot skipped: %v", err)
	}
}
