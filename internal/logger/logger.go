package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ragdemo/internal/config"
)

// NewLogger creates a zap logger from the logging config.
// prod uses JSON output, local/dev use colored console output.
// A non-empty Output replaces the default stderr sink.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var zc zap.Config
	switch cfg.Env {
	case "prod":
		zc = zap.NewProductionConfig()
	case "local", "dev", "":
		zc = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown environment %q for logger", cfg.Env)
	}

	if cfg.Level != "" {
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zc.Level = zap.NewAtomicLevelAt(level)
	}
	if cfg.Output != "" {
		zc.OutputPaths = []string{cfg.Output}
		zc.ErrorOutputPaths = []string{cfg.Output}
	}

	l, err := zc.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l, nil
}

// ForTUI returns a logger that never writes to the terminal: the configured
// file when Output names one, otherwise a no-op logger.
func ForTUI(cfg config.LoggingConfig) (*zap.Logger, error) {
	if cfg.Output == "" || cfg.Output == "stderr" || cfg.Output == "stdout" {
		return zap.NewNop(), nil
	}
	return NewLogger(cfg)
}
