// Package httpapi exposes the engine control surface over HTTP. It is a pure
// client of the engine: every handler goes through the same public methods a
// CLI would use, never into component internals.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"simtrader/internal/analyzer"
	"simtrader/internal/engine"
	"simtrader/internal/feed"
	"simtrader/internal/logger"
	"simtrader/internal/orderbook"
	"simtrader/internal/profile"
	"simtrader/internal/store"
	"simtrader/internal/types"
)

// Config carries the server's dependencies.
type Config struct {
	Addr      string
	Engine    *engine.Engine
	Analyzer  analyzer.Config
	Store     *store.Store   // optional
	Connector feed.Connector // optional
}

// Server serializes all engine access behind one mutex: the engine core is
// single-threaded by design and the HTTP layer is its only concurrent caller.
type Server struct {
	addr      string
	mu        sync.Mutex
	eng       *engine.Engine
	anCfg     analyzer.Config
	runs      *store.Store
	connector feed.Connector
	router    *gin.Engine
	httpSrv   *http.Server
}

func NewServer(cfg Config) (*Server, error) {
	if cfg.Engine == nil {
		return nil, errors.New("engine is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		addr:      cfg.Addr,
		eng:       cfg.Engine,
		anCfg:     cfg.Analyzer,
		runs:      cfg.Store,
		connector: cfg.Connector,
		router:    router,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.router.GET("/", s.handleIndex)
	api := s.router.Group("/api")
	api.POST("/engine/start", s.handleStart)
	api.POST("/engine/stop", s.handleStop)
	api.GET("/strategies", s.handleStrategies)
	api.POST("/strategies/add", s.handleAddStrategy)
	api.GET("/account", s.handleAccount)
	api.GET("/positions", s.handlePositions)
	api.GET("/orders", s.handleOrders)
	api.GET("/trades", s.handleTrades)
	api.POST("/market_data", s.handleMarketData)
	api.GET("/market_data/history", s.handleHistory)
	api.POST("/equity_tracking/enable", s.handleEnableEquity)
	api.GET("/backtest/result", s.handleResult)
	api.POST("/runs", s.handleSaveRun)
	api.GET("/runs", s.handleListRuns)
	api.GET("/runs/:id", s.handleGetRun)
	api.POST("/connect", s.handleConnect)
	api.POST("/disconnect", s.handleDisconnect)
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.httpSrv = &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpSrv.ListenAndServe()
	}()
	logger.Infof("http server listening on %s", s.addr)
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler { return s.router }

// PushBar feeds one bar through the same lock the HTTP handlers use, so a
// replay loop and API callers never interleave inside the engine.
func (s *Server) PushBar(bar types.MarketBar) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.OnMarketData(bar)
}

func (s *Server) handleIndex(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"service": "simtrader", "endpoints": "/api"})
}

func (s *Server) handleStart(c *gin.Context) {
	s.mu.Lock()
	s.eng.Start()
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"running": true})
}

func (s *Server) handleStop(c *gin.Context) {
	s.mu.Lock()
	s.eng.Stop()
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"running": false})
}

func (s *Server) handleStrategies(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"count": s.eng.StrategyCount(), "names": s.eng.StrategyNames()})
}

func (s *Server) handleAddStrategy(c *gin.Context) {
	var spec profile.Spec
	if err := c.ShouldBindJSON(&spec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	strat, err := profile.Build(spec)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.mu.Lock()
	s.eng.AddStrategy(strat)
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"added": strat.Name()})
}

func (s *Server) handleAccount(c *gin.Context) {
	s.mu.Lock()
	summary := s.eng.Account().Summary()
	metrics := s.eng.RiskMetrics()
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"account": summary, "risk": metrics})
}

func (s *Server) handlePositions(c *gin.Context) {
	s.mu.Lock()
	positions := s.eng.Account().PositionsSummary()
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"positions": positions})
}

func (s *Server) handleOrders(c *gin.Context) {
	filter := orderFilter(c)
	s.mu.Lock()
	orders := s.eng.Orders().Orders(filter)
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (s *Server) handleTrades(c *gin.Context) {
	// Trades have no status; only the symbol filter applies here.
	filter := orderbook.Filter{Symbol: c.Query("symbol")}
	s.mu.Lock()
	trades := s.eng.Orders().Trades(filter)
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"trades": trades})
}

type barRequest struct {
	Symbol    string          `json:"symbol"`
	Timestamp time.Time       `json:"timestamp"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    int64           `json:"volume"`
}

func (s *Server) handleMarketData(c *gin.Context) {
	var req barRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	bar, err := types.NewMarketBar(req.Symbol, req.Timestamp, req.Open, req.High, req.Low, req.Close, req.Volume)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.mu.Lock()
	err = s.eng.OnMarketData(bar)
	s.mu.Unlock()
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, engine.ErrNotRunning) {
			status = http.StatusConflict
		} else if errors.Is(err, types.ErrValidation) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"processed": true})
}

func (s *Server) handleHistory(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol query parameter is required"})
		return
	}
	s.mu.Lock()
	bars := s.eng.History(symbol)
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "bars": bars})
}

func (s *Server) handleEnableEquity(c *gin.Context) {
	s.mu.Lock()
	s.eng.EnableEquityTracking()
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"equity_tracking": true})
}

func (s *Server) handleResult(c *gin.Context) {
	s.mu.Lock()
	res := analyzer.Calculate(s.anCfg, s.eng.Account().InitialCapital(), s.eng.EquityCurve(), s.eng.Orders().Trades(orderbook.Filter{}))
	s.mu.Unlock()
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleSaveRun(c *gin.Context) {
	if s.runs == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "run store not configured"})
		return
	}
	s.mu.Lock()
	res := analyzer.Calculate(s.anCfg, s.eng.Account().InitialCapital(), s.eng.EquityCurve(), s.eng.Orders().Trades(orderbook.Filter{}))
	symbols := s.eng.Symbols()
	s.mu.Unlock()
	runID, err := s.runs.SaveRun(c.Request.Context(), symbols, res)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"run_id": runID})
}

func (s *Server) handleListRuns(c *gin.Context) {
	if s.runs == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "run store not configured"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	runs, err := s.runs.ListRuns(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) handleGetRun(c *gin.Context) {
	if s.runs == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "run store not configured"})
		return
	}
	res, err := s.runs.GetRunResult(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleConnect(c *gin.Context) {
	if s.connector == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "no connector configured"})
		return
	}
	if err := s.connector.Connect(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected": s.connector.Name()})
}

func (s *Server) handleDisconnect(c *gin.Context) {
	if s.connector == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "no connector configured"})
		return
	}
	if err := s.connector.Disconnect(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected": false})
}

func orderFilter(c *gin.Context) (filter orderbook.Filter) {
	filter.Symbol = c.Query("symbol")
	filter.Status = types.OrderStatus(c.Query("status"))
	return filter
}
