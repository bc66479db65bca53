// Package config loads solver tuning from an optional YAML file with
// sensible baked-in defaults. Every heuristic constant of the solver is a
// tunable here rather than a hard-coded behavior.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/barcut/barcut/internal/engine"
	"github.com/barcut/barcut/internal/model"
)

// Config holds all solver and saw tunables.
type Config struct {
	// Solver tuning
	MinUtilization          float64 `mapstructure:"min_utilization"`           // pattern filter threshold in [0,1); 0 disables the filter
	FragmentPenalty         float64 `mapstructure:"fragment_penalty"`          // greedy fragment discouragement factor
	LookaheadDepth          int     `mapstructure:"lookahead_depth"`           // greedy look-ahead piece count
	MaxSearchStates         int     `mapstructure:"max_search_states"`         // 0 = adaptive
	WasteNormalization      float64 `mapstructure:"waste_normalization"`       // mm of waste weighted like one missing piece
	OverProductionTolerance int     `mapstructure:"over_production_tolerance"` // pattern path, pieces per length
	GreedyOverageTolerance  int     `mapstructure:"greedy_overage_tolerance"`  // greedy path, pieces per length

	// Saw defaults, overridable per request
	KerfWidth          float64 `mapstructure:"kerf_width"`
	StartSafety        float64 `mapstructure:"start_safety"`
	EndSafety          float64 `mapstructure:"end_safety"`
	MinScrapLength     float64 `mapstructure:"min_scrap_length"`
	DefaultStockLength float64 `mapstructure:"default_stock_length"`
}

// setDefaults bakes the standard tuning into viper so a missing or partial
// config file still yields a complete configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("min_utilization", engine.DefaultMinUtilization)
	v.SetDefault("fragment_penalty", engine.DefaultFragmentPenalty)
	v.SetDefault("lookahead_depth", engine.DefaultLookaheadDepth)
	v.SetDefault("max_search_states", 0)
	v.SetDefault("waste_normalization", engine.DefaultWasteNormalization)
	v.SetDefault("over_production_tolerance", 0)
	v.SetDefault("greedy_overage_tolerance", engine.DefaultGreedyOverageTolerance)

	defaults := model.DefaultConstraints()
	v.SetDefault("kerf_width", defaults.KerfWidth)
	v.SetDefault("start_safety", defaults.StartSafety)
	v.SetDefault("end_safety", defaults.EndSafety)
	v.SetDefault("min_scrap_length", defaults.MinScrapLength)
	v.SetDefault("default_stock_length", model.DefaultStockLength)
}

// Load reads the configuration from barcut.yaml in the given directory
// (or the working directory when dir is empty). A missing file is not an
// error: defaults apply.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("barcut")
	v.SetConfigType("yaml")
	if dir == "" {
		dir = "."
	}
	v.AddConfigPath(dir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the baked-in configuration without touching the
// filesystem.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Unmarshal of pure defaults cannot fail.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func (c *Config) validate() error {
	if c.MinUtilization < 0 || c.MinUtilization >= 1 {
		return fmt.Errorf("min_utilization %.2f out of range [0,1)", c.MinUtilization)
	}
	if c.FragmentPenalty <= 0 || c.FragmentPenalty > 1 {
		return fmt.Errorf("fragment_penalty %.2f out of range (0,1]", c.FragmentPenalty)
	}
	if c.LookaheadDepth < 1 {
		return fmt.Errorf("lookahead_depth %d must be at least 1", c.LookaheadDepth)
	}
	if c.MaxSearchStates < 0 {
		return fmt.Errorf("max_search_states %d must be non-negative", c.MaxSearchStates)
	}
	if c.OverProductionTolerance < 0 || c.GreedyOverageTolerance < 0 {
		return fmt.Errorf("overproduction tolerances must be non-negative")
	}
	if c.DefaultStockLength <= 0 {
		return fmt.Errorf("default_stock_length %.1f must be positive", c.DefaultStockLength)
	}
	return nil
}

// EngineParams derives the solver parameter set.
func (c *Config) EngineParams() engine.Params {
	return engine.Params{
		MinUtilization: c.MinUtilization,
		Search: engine.SearchParams{
			MaxStates:               c.MaxSearchStates,
			OverProductionTolerance: c.OverProductionTolerance,
			WasteNormalization:      c.WasteNormalization,
		},
		Placer: engine.PlacerConfig{
			FragmentPenalty: c.FragmentPenalty,
			LookaheadDepth:  c.LookaheadDepth,
		},
		GreedyOverageTolerance: c.GreedyOverageTolerance,
	}
}

// Constraints derives the default saw constraints.
func (c *Config) Constraints() model.Constraints {
	return model.Constraints{
		KerfWidth:      c.KerfWidth,
		StartSafety:    c.StartSafety,
		EndSafety:      c.EndSafety,
		MinScrapLength: c.MinScrapLength,
	}
}
