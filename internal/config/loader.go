package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if TREND_CONFIG is set
//  3. env (prefix TREND_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("TREND_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: TREND_ADDR, TREND_QUEUE_SIZE, ...
	// Map env keys like TREND_QUEUE_SIZE -> queue_size (flat keys);
	// underscores are preserved to match the koanf struct tags.
	envProvider := env.Provider("TREND_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "trend_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations the engine cannot run with.
func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.WindowSeconds <= 0:
		return fmt.Errorf("%w: window_seconds must be positive", ErrInvalidConfig)
	case c.HalfLifeSeconds <= 0:
		return fmt.Errorf("%w: half_life_seconds must be positive", ErrInvalidConfig)
	case c.RetentionSeconds <= 0:
		return fmt.Errorf("%w: retention_seconds must be positive", ErrInvalidConfig)
	case c.DecayEpsilon <= 0 || c.DecayEpsilon >= 1:
		return fmt.Errorf("%w: decay_epsilon must be in (0, 1)", ErrInvalidConfig)
	case c.ClockSkewSeconds < 0:
		return fmt.Errorf("%w: clock_skew_seconds must not be negative", ErrInvalidConfig)
	case c.MaxTrendsLimit < 1:
		return fmt.Errorf("%w: max_trends_limit must be positive", ErrInvalidConfig)
	}
	return nil
}
