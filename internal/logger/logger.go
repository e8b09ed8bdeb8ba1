// Package logger builds the zap loggers used across academiaplan.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	Debug  bool
	Format string // "json" or "console"
	// File redirects output away from stderr. The TUI needs this because
	// anything written to the terminal corrupts the screen.
	File string
}

// New builds a JSON production logger or a console development logger.
func New(opts Options) (*zap.Logger, error) {
	var config zap.Config
	switch opts.Format {
	case "", "console":
		config = zap.NewDevelopmentConfig()
	case "json":
		config = zap.NewProductionConfig()
		config.Encoding = "json"
		config.EncoderConfig = zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		}
	default:
		return nil, fmt.Errorf("logger: unknown format %q", opts.Format)
	}

	if opts.Debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	if opts.File != "" {
		config.OutputPaths = []string{opts.File}
		config.ErrorOutputPaths = []string{opts.File}
	}
	return config.Build()
}

// Sync flushes buffered entries. Safe to call with a nil logger.
func Sync(log *zap.Logger) error {
	if log == nil {
		return nil
	}
	return log.Sync()
}
