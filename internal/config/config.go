package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Engine  EngineConfig  `toml:"engine"`
	Stress  StressConfig  `toml:"stress"`
	Worlds  WorldsConfig  `toml:"worlds"`
	Script  ScriptConfig  `toml:"script"`
	Profile ProfileConfig `toml:"profile"`
	Logging LoggingConfig `toml:"logging"`
}

type EngineConfig struct {
	MaxFlagWords int    `toml:"max_flag_words"` // 31 component types per word
	Manifest     string `toml:"manifest"`       // optional YAML component manifest
}

type StressConfig struct {
	Duration       time.Duration `toml:"duration"`
	TickInterval   time.Duration `toml:"tick_interval"` // 0 = run frames back to back
	Entities       int           `toml:"entities"`
	Components     int           `toml:"components"`
	Systems        int           `toml:"systems"`
	ChurnPerFrame  int           `toml:"churn_per_frame"`
	PoolableRatio  float64       `toml:"poolable_ratio"` // share of component types marked poolable
	Seed           int64         `toml:"seed"`
	GCPauseMetrics bool          `toml:"gc_pause_metrics"`
}

type WorldsConfig struct {
	Count int `toml:"count"` // worlds besides the default one
}

type ScriptConfig struct {
	Dir string `toml:"dir"` // directory of .lua system scripts, empty to disable
}

type ProfileConfig struct {
	Mode string `toml:"mode"` // "", "cpu", "mem", "allocs", "block", "mutex", "trace"
	Path string `toml:"path"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads a TOML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			MaxFlagWords: 16,
		},
		Stress: StressConfig{
			Duration:      10 * time.Second,
			Entities:      10000,
			Components:    250,
			Systems:       50,
			ChurnPerFrame: 100,
			PoolableRatio: 0.25,
			Seed:          1,
		},
		Worlds: WorldsConfig{
			Count: 0,
		},
		Profile: ProfileConfig{
			Path: ".",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	if c.Engine.MaxFlagWords <= 0 {
		return fmt.Errorf("engine.max_flag_words must be positive, got %d", c.Engine.MaxFlagWords)
	}
	if c.Stress.Components < 1 {
		return fmt.Errorf("stress.components must be at least 1, got %d", c.Stress.Components)
	}
	if need := c.Stress.Components; need > c.Engine.MaxFlagWords*31 {
		return fmt.Errorf("stress.components %d exceeds flag capacity %d (engine.max_flag_words = %d)",
			need, c.Engine.MaxFlagWords*31, c.Engine.MaxFlagWords)
	}
	if c.Stress.Entities < 0 || c.Stress.Systems < 0 || c.Stress.ChurnPerFrame < 0 || c.Worlds.Count < 0 {
		return fmt.Errorf("stress counts and worlds.count must not be negative")
	}
	if c.Stress.PoolableRatio < 0 || c.Stress.PoolableRatio > 1 {
		return fmt.Errorf("stress.poolable_ratio must be within [0, 1], got %g", c.Stress.PoolableRatio)
	}
	switch c.Profile.Mode {
	case "", "cpu", "mem", "allocs", "block", "mutex", "trace":
	default:
		return fmt.Errorf("unknown profile.mode %q", c.Profile.Mode)
	}
	return nil
}
