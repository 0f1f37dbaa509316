// Package profile loads the strategy lineup for a run from a YAML file, so
// strategy parameters live next to the config instead of in code.
package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"simtrader/internal/strategy"
)

type Spec struct {
	Type string `yaml:"type" json:"type"`
	// Momentum
	ShortPeriod int `yaml:"short_period" json:"short_period"`
	LongPeriod  int `yaml:"long_period" json:"long_period"`
	// Mean reversion
	Period        int     `yaml:"period" json:"period"`
	StdMultiplier float64 `yaml:"std_multiplier" json:"std_multiplier"`
	// Shared
	Quantity int64 `yaml:"quantity" json:"quantity"`
}

type File struct {
	Strategies []Spec `yaml:"strategies"`
}

// Load parses the profile file and builds the strategies in file order.
func Load(path string) ([]strategy.Strategy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return Parse(raw)
}

// Parse builds strategies from raw YAML.
func Parse(raw []byte) ([]strategy.Strategy, error) {
	var file File
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	if len(file.Strategies) == 0 {
		return nil, fmt.Errorf("profile has no strategies")
	}
	out := make([]strategy.Strategy, 0, len(file.Strategies))
	for i, spec := range file.Strategies {
		s, err := Build(spec)
		if err != nil {
			return nil, fmt.Errorf("strategy %d: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// Build constructs one strategy from its spec, filling in defaults.
func Build(spec Spec) (strategy.Strategy, error) {
	quantity := spec.Quantity
	if quantity <= 0 {
		quantity = 100
	}
	switch spec.Type {
	case "momentum":
		short, long := spec.ShortPeriod, spec.LongPeriod
		if short <= 0 {
			short = 5
		}
		if long <= 0 {
			long = 20
		}
		if short >= long {
			return nil, fmt.Errorf("momentum short_period %d must be below long_period %d", short, long)
		}
		return strategy.NewMomentum(short, long, quantity), nil
	case "mean_reversion":
		period := spec.Period
		if period <= 0 {
			period = 20
		}
		mult := spec.StdMultiplier
		if mult <= 0 {
			mult = 2.0
		}
		return strategy.NewMeanReversion(period, mult, quantity), nil
	default:
		return nil, fmt.Errorf("unknown strategy type %q", spec.Type)
	}
}
