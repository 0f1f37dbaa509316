package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// EquityPoint is one sample of total account equity (cash plus
// mark-to-market of all open positions), appended once per processed bar
// when equity tracking is on.
type EquityPoint struct {
	Timestamp time.Time       `json:"timestamp"`
	Equity    decimal.Decimal `json:"equity"`
}
