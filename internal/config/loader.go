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
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if MATCHRANK_CONFIG is set
//  3. env (prefix MATCHRANK_)
func Load(_ context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("MATCHRANK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: MATCHRANK_ADDR, MATCHRANK_TOP_K, ...
	// Map env keys like MATCHRANK_TOP_K -> top_k (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("MATCHRANK_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "matchrank_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive", ErrInvalidConfig)
	}
	if c.ResultLimit <= 0 {
		return fmt.Errorf("%w: result_limit must be positive", ErrInvalidConfig)
	}
	if c.ScoreWorkers <= 0 {
		return fmt.Errorf("%w: score_workers must be positive", ErrInvalidConfig)
	}
	if c.OpenAITimeoutSeconds <= 0 {
		return fmt.Errorf("%w: openai_timeout_seconds must be positive", ErrInvalidConfig)
	}
	if c.EmbeddingCacheTTLHours <= 0 {
		return fmt.Errorf("%w: embedding_cache_ttl_hours must be positive", ErrInvalidConfig)
	}
	return nil
}
