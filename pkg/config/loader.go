package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Options tune how Load reads the environment.
type Options struct {
	// Prefix is prepended to every env tag, e.g. "RATING_".
	Prefix string
	// Environment replaces the process environment when non-nil.
	Environment map[string]string
}

// Load parses the process environment into cfg, which must be a pointer to a
// struct using `env` and `envDefault` tags.
func Load(cfg any) error {
	return LoadWithOptions(cfg, Options{})
}

// LoadWithOptions parses environment variables into cfg using opts.
// Fields tagged `env:"NAME,file"` read their value from the file the variable
// points to, which is how mounted secrets are consumed.
func LoadWithOptions(cfg any, opts Options) error {
	err := env.ParseWithOptions(cfg, env.Options{
		Prefix:      opts.Prefix,
		Environment: opts.Environment,
	})
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
