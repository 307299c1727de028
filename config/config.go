// Package config loads the command line tool configuration from the
// environment, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/joho/godotenv"
	"go-simpler.org/env"

	"github.com/katalvlaran/gesturematch/align"
	"github.com/katalvlaran/gesturematch/comparator"
)

// Config holds the settings of the gesturematch command.
type Config struct {
	Threshold        float64 `env:"GESTURE_THRESHOLD" default:"0.2"`
	MaxErases        int     `env:"GESTURE_MAX_ERASES" default:"-1"` // -1: grows with the sequence lengths
	EraseScale       float64 `env:"GESTURE_ERASE_SCALE" default:"10"`
	Workers          int     `env:"GESTURE_WORKERS" default:"0"`
	SkipIncomparable bool    `env:"GESTURE_SKIP_INCOMPARABLE" default:"false"`
	StorePath        string  `env:"GESTURE_STORE" default:"exemplars.json"`
	LogLevel         string  `env:"LOG_LEVEL" default:"info"`
	LogFormat        string  `env:"LOG_FORMAT" default:"text"`
	MetricsAddr      string  `env:"METRICS_ADDR"`
}

// Load reads the configuration. A missing .env file is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Threshold < 0 || math.IsNaN(cfg.Threshold) {
		return fmt.Errorf("GESTURE_THRESHOLD must be >= 0, got %v", cfg.Threshold)
	}
	if cfg.MaxErases < -1 {
		return fmt.Errorf("GESTURE_MAX_ERASES must be >= 0 or -1, got %d", cfg.MaxErases)
	}
	if !(cfg.EraseScale > 0) {
		return fmt.Errorf("GESTURE_ERASE_SCALE must be > 0, got %v", cfg.EraseScale)
	}
	if cfg.Workers < 0 {
		return errors.New("GESTURE_WORKERS must not be negative")
	}
	if cfg.StorePath == "" {
		return errors.New("GESTURE_STORE is required")
	}
	return nil
}

// Budget returns the erasure budget policy.
func (c *Config) Budget() align.Budget {
	if c.MaxErases < 0 {
		return align.DefaultBudget()
	}
	return align.Fixed(c.MaxErases)
}

// AlignOptions returns the aligner configuration.
func (c *Config) AlignOptions() align.Options {
	o := align.DefaultOptions()
	o.Budget = c.Budget()
	o.Erase = align.SlopeErase(c.EraseScale)
	return o
}

// ComparatorOptions returns the comparator options implied by the configuration.
func (c *Config) ComparatorOptions(logger *slog.Logger, mc comparator.MetricsCollector) []comparator.Option {
	opts := []comparator.Option{
		comparator.WithAlignOptions(c.AlignOptions()),
		comparator.WithChannelParallelism(c.Workers),
		comparator.WithExemplarParallelism(c.Workers),
		comparator.WithLogger(logger),
		comparator.WithMetrics(mc),
	}
	if c.SkipIncomparable {
		opts = append(opts, comparator.WithSkipIncomparable())
	}
	return opts
}
