package config

import (
	"fmt"

	"github.com/leapstack-labs/leapstat/internal/adapter"
	"github.com/leapstack-labs/leapstat/internal/reduce"
)

var validOutputs = map[string]struct{}{
	"table": {}, "json": {}, "csv": {}, "markdown": {}, "md": {},
}

var validThemes = map[string]struct{}{
	"auto": {}, "dark": {}, "light": {},
}

// Validate rejects malformed configuration before the core runs:
// caller-contract violations fail here, not mid-resolution.
func Validate(cfg *Config) error {
	if _, ok := validOutputs[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format %q (want table, json, csv or markdown)", cfg.Output)
	}
	if _, ok := validThemes[cfg.Theme]; !ok {
		return fmt.Errorf("invalid theme %q (want auto, dark or light)", cfg.Theme)
	}
	if cfg.Limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", cfg.Limit)
	}
	if _, err := reduce.ParseNullPolicy(cfg.NullMode); err != nil {
		return err
	}
	for _, id := range cfg.Calcs {
		if _, err := reduce.Get(reduce.ID(id)); err != nil {
			return err
		}
	}
	if cfg.Target != nil && cfg.Target.Type != "" && !adapter.IsRegistered(cfg.Target.Type) {
		return &adapter.UnknownAdapterError{Type: cfg.Target.Type, Available: adapter.List()}
	}
	for i := range cfg.Overrides {
		o := cfg.Overrides[i].ToOverride()
		if err := o.Matcher.Compile(); err != nil {
			return fmt.Errorf("override %d: %w", i, err)
		}
	}
	return nil
}
