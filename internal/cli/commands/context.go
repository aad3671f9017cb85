// Package commands implements the leapstat subcommands.
package commands

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/leapstat/internal/cli/config"
)

// ConfigKey and LoggerKey are the context keys the root command uses
// to hand configuration and logging to subcommands.
type (
	ConfigKey struct{}
	LoggerKey struct{}
)

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(ConfigKey{}).(*config.Config); ok {
		return c
	}
	return &config.Config{
		Output:   config.DefaultOutput,
		Limit:    config.DefaultLimit,
		NullMode: config.DefaultNullMode,
		Theme:    config.DefaultTheme,
	}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(LoggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
