package store

import (
	"time"

	"gorm.io/datatypes"
)

// RunModel is one completed simulation run.
type RunModel struct {
	ID             string         `gorm:"column:id;primaryKey"`
	CreatedAt      time.Time      `gorm:"column:created_at"`
	Symbols        string         `gorm:"column:symbols"`
	InitialCapital string         `gorm:"column:initial_capital"`
	FinalCapital   string         `gorm:"column:final_capital"`
	TotalPnL       string         `gorm:"column:total_pnl"`
	TotalTrades    int            `gorm:"column:total_trades"`
	ResultJSON     datatypes.JSON `gorm:"column:result_json;type:TEXT"`
}

func (RunModel) TableName() string { return "runs" }

// TradeModel is one fill belonging to a run. Prices are decimal strings.
type TradeModel struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	RunID       string    `gorm:"column:run_id;index"`
	TradeID     int64     `gorm:"column:trade_id"`
	OrderID     int64     `gorm:"column:order_id"`
	Symbol      string    `gorm:"column:symbol;index"`
	Side        string    `gorm:"column:side"`
	Quantity    int64     `gorm:"column:quantity"`
	Price       string    `gorm:"column:price"`
	RealizedPnL string    `gorm:"column:realized_pnl"`
	Timestamp   time.Time `gorm:"column:timestamp"`
}

func (TradeModel) TableName() string { return "trades" }

// EquitySampleModel is one equity-curve point belonging to a run.
type EquitySampleModel struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	RunID     string    `gorm:"column:run_id;index"`
	Timestamp time.Time `gorm:"column:timestamp"`
	Equity    string    `gorm:"column:equity"`
}

func (EquitySampleModel) TableName() string { return "equity_samples" }
