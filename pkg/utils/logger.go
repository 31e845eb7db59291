package utils

import (
	"fmt"

	"go.uber.org/zap"
)

const loggerName = "ordbok"

// NewLogger returns a zap logger named "ordbok". When debug is true, uses development config
// (human-readable, debug level); otherwise uses production config (JSON, info level, no stack traces).
func NewLogger(debug bool) (*zap.Logger, error) {
	return buildLogger(loggerConfig(debug))
}

func loggerConfig(debug bool) zap.Config {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.DisableStacktrace = !debug
	return cfg
}

func buildLogger(cfg zap.Config) (*zap.Logger, error) {
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger.Named(loggerName), nil
}
