package config

import (
	"context"
	"log/slog"
)

type configKey struct{}
type loggerKey struct{}

// NewContext stores the config and logger for retrieval by subcommands.
func NewContext(ctx context.Context, cfg *Config, logger *slog.Logger) context.Context {
	ctx = context.WithValue(ctx, configKey{}, cfg)
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext retrieves the config, falling back to defaults when absent.
func FromContext(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return &Config{
		BackendURL:            DefaultBackendURL,
		RequestTimeoutSeconds: DefaultRequestTimeout,
		Host:                  DefaultHost,
		Port:                  DefaultPort,
		DefaultDatasetID:      DefaultDatasetID,
	}
}

// GetLogger retrieves the logger, falling back to a discard logger.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
