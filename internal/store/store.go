// Package store persists finished runs to sqlite so results survive the
// process and the web layer can list past simulations.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"simtrader/internal/analyzer"
)

type Store struct {
	db *gorm.DB
}

// Open creates or migrates the sqlite database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return newStore(db)
}

// OpenInMemory is for tests.
func OpenInMemory() (*Store, error) {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return newStore(db)
}

func newStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&RunModel{}, &TradeModel{}, &EquitySampleModel{}); err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(2)
		sqlDB.SetMaxIdleConns(2)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveRun persists a finished run with its trades and equity curve in one
// transaction and returns the allocated run ID.
func (s *Store) SaveRun(ctx context.Context, symbols []string, res analyzer.Result) (string, error) {
	runID := uuid.NewString()
	resultJSON, err := json.Marshal(res)
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	run := RunModel{
		ID:             runID,
		CreatedAt:      time.Now().UTC(),
		Symbols:        strings.Join(symbols, ","),
		InitialCapital: res.InitialCapital.String(),
		FinalCapital:   res.FinalCapital.String(),
		TotalPnL:       res.TotalPnL.String(),
		TotalTrades:    res.TotalTrades,
		ResultJSON:     resultJSON,
	}
	trades := make([]TradeModel, 0, len(res.Trades))
	for _, trade := range res.Trades {
		trades = append(trades, TradeModel{
			RunID:       runID,
			TradeID:     trade.ID,
			OrderID:     trade.OrderID,
			Symbol:      trade.Symbol,
			Side:        string(trade.Side),
			Quantity:    trade.Quantity,
			Price:       trade.Price.String(),
			RealizedPnL: trade.RealizedPnL.String(),
			Timestamp:   trade.Timestamp,
		})
	}
	samples := make([]EquitySampleModel, 0, len(res.EquityCurve))
	for _, sample := range res.EquityCurve {
		samples = append(samples, EquitySampleModel{
			RunID:     runID,
			Timestamp: sample.Timestamp,
			Equity:    sample.Equity.String(),
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return err
		}
		if len(trades) > 0 {
			if err := tx.CreateInBatches(trades, 200).Error; err != nil {
				return err
			}
		}
		if len(samples) > 0 {
			if err := tx.CreateInBatches(samples, 500).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return runID, nil
}

// ListRuns returns runs newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunModel, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []RunModel
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}

// GetRunResult loads the full analyzer result of a stored run.
func (s *Store) GetRunResult(ctx context.Context, runID string) (analyzer.Result, error) {
	var run RunModel
	if err := s.db.WithContext(ctx).First(&run, "id = ?", runID).Error; err != nil {
		return analyzer.Result{}, err
	}
	var res analyzer.Result
	if err := json.Unmarshal(run.ResultJSON, &res); err != nil {
		return analyzer.Result{}, fmt.Errorf("unmarshal stored result: %w", err)
	}
	return res, nil
}

// RunTrades lists the persisted trades of a run in fill order.
func (s *Store) RunTrades(ctx context.Context, runID string) ([]TradeModel, error) {
	var trades []TradeModel
	err := s.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("trade_id ASC").
		Find(&trades).Error
	return trades, err
}
