package analyzer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Export writes the result as an indented JSON document. Decimal fields
// marshal as quoted fixed-point strings, never binary floats, so exported
// numbers survive round-trips without rounding disputes. Field names are
// stable across versions.
func Export(res Result, path string) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

// resultSchema pins the export format. Decimal values are strings, counts
// are integers, undefined-metric markers are booleans.
const resultSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": [
    "initial_capital", "final_capital", "total_pnl", "total_return_pct",
    "total_trades", "winning_trades", "losing_trades", "win_rate_pct",
    "gross_profit", "gross_loss", "profit_factor", "profit_factor_defined",
    "max_drawdown", "max_drawdown_pct",
    "sharpe_ratio", "sharpe_defined", "sortino_ratio", "sortino_defined",
    "equity_curve", "drawdown_curve", "trades"
  ],
  "properties": {
    "initial_capital": {"type": "string"},
    "final_capital": {"type": "string"},
    "total_pnl": {"type": "string"},
    "total_return_pct": {"type": "string"},
    "total_trades": {"type": "integer", "minimum": 0},
    "winning_trades": {"type": "integer", "minimum": 0},
    "losing_trades": {"type": "integer", "minimum": 0},
    "win_rate_pct": {"type": "string"},
    "gross_profit": {"type": "string"},
    "gross_loss": {"type": "string"},
    "profit_factor": {"type": "string"},
    "profit_factor_defined": {"type": "boolean"},
    "average_win": {"type": "string"},
    "average_loss": {"type": "string"},
    "max_drawdown": {"type": "string"},
    "max_drawdown_pct": {"type": "string"},
    "sharpe_ratio": {"type": "string"},
    "sharpe_defined": {"type": "boolean"},
    "sortino_ratio": {"type": "string"},
    "sortino_defined": {"type": "boolean"},
    "duration_days": {"type": "integer"},
    "equity_curve": {"type": "array"},
    "drawdown_curve": {"type": "array"},
    "trades": {"type": "array"}
  }
}`

var compiledSchema = jsonschema.MustCompileString("result.schema.json", resultSchema)

// LoadResult reads an exported result back, validating the document against
// the export schema first.
func LoadResult(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read result: %w", err)
	}
	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return Result{}, fmt.Errorf("parse result: %w", err)
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return Result{}, fmt.Errorf("result document invalid: %w", err)
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return Result{}, fmt.Errorf("unmarshal result: %w", err)
	}
	return res, nil
}
