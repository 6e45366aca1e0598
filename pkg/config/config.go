// Package config provides configuration loading and validation for the
// longtail measurement engine.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidAlpha           = errors.New("sketch alpha must be in (0, 1)")
	ErrInvalidOutlierCapacity = errors.New("outlier capacity must be positive")
	ErrInvalidPoolPrealloc    = errors.New("pool preallocation must be positive")
	ErrInvalidRetention       = errors.New("snapshot retention must be positive")
	ErrInvalidTickerInterval  = errors.New("ticker interval must be positive")
)

// Default configuration values.
const (
	defaultAlpha           = 0.05
	defaultOutlierCapacity = 10
	defaultPoolPrealloc    = 100
	defaultRetention       = 50
	defaultTickerInterval  = time.Second
)

// Config holds all configuration for the measurement engine.
type Config struct {
	Sketch   SketchConfig   `mapstructure:"sketch"`
	Pool     PoolConfig     `mapstructure:"pool"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// SketchConfig holds tiered-sketch configuration.
type SketchConfig struct {
	// Alpha is the target relative error of the log-binned histogram.
	Alpha float64 `mapstructure:"alpha"`
	// OutlierCapacity is the exact top-k heap's capacity (k).
	OutlierCapacity int `mapstructure:"outlier_capacity"`
	// TrivialCutoffMS is loaded and defaults to zero, but nothing reads it:
	// the engine always derives the trivial-tier cutoff from Alpha, so a
	// non-zero value has no effect.
	TrivialCutoffMS float64 `mapstructure:"trivial_cutoff_ms"`
}

// PoolConfig holds bin-vector pool configuration.
type PoolConfig struct {
	// Prealloc is the number of bin vectors eagerly allocated at
	// startup (P).
	Prealloc int `mapstructure:"prealloc"`
}

// SnapshotConfig holds snapshot store and emission configuration.
type SnapshotConfig struct {
	// Retention is the FIFO cap on persisted recordings (N).
	Retention int `mapstructure:"retention"`
	// TickerInterval is the deferred-write-back retry cadence.
	TickerInterval time.Duration `mapstructure:"ticker_interval"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("config")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("/etc/longtail")
	}

	viperCfg.SetEnvPrefix("LONGTAIL")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&cfg)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("sketch.alpha", defaultAlpha)
	viperCfg.SetDefault("sketch.outlier_capacity", defaultOutlierCapacity)
	viperCfg.SetDefault("sketch.trivial_cutoff_ms", 0.0)

	viperCfg.SetDefault("pool.prealloc", defaultPoolPrealloc)

	viperCfg.SetDefault("snapshot.retention", defaultRetention)
	viperCfg.SetDefault("snapshot.ticker_interval", defaultTickerInterval.String())

	viperCfg.SetDefault("logging.level", "info")
	viperCfg.SetDefault("logging.format", "json")
}

// validateConfig validates the configuration.
func validateConfig(cfg *Config) error {
	if cfg.Sketch.Alpha <= 0 || cfg.Sketch.Alpha >= 1 {
		return fmt.Errorf("%w: %v", ErrInvalidAlpha, cfg.Sketch.Alpha)
	}

	if cfg.Sketch.OutlierCapacity <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidOutlierCapacity, cfg.Sketch.OutlierCapacity)
	}

	if cfg.Pool.Prealloc <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPoolPrealloc, cfg.Pool.Prealloc)
	}

	if cfg.Snapshot.Retention <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRetention, cfg.Snapshot.Retention)
	}

	if cfg.Snapshot.TickerInterval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTickerInterval, cfg.Snapshot.TickerInterval)
	}

	return nil
}
