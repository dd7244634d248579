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
//  2. file (YAML) if HIRELOOP_CONFIG is set
//  3. env (prefix HIRELOOP_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("HIRELOOP_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: HIRELOOP_ADDR, HIRELOOP_JOURNAL_SIZE, ...
	// Keys keep their underscores to match the koanf tags on the struct.
	envProvider := env.Provider("HIRELOOP_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "hireloop_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	switch {
	case cfg.Addr == "":
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.AuthorityURL == "":
		return nil, fmt.Errorf("%w: authority_url must not be empty", ErrInvalidConfig)
	case cfg.AuthorityTimeoutMS <= 0:
		return nil, fmt.Errorf("%w: authority_timeout_ms must be positive", ErrInvalidConfig)
	case cfg.JournalSize <= 0:
		return nil, fmt.Errorf("%w: journal_size must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
