// Package logger provides a simple logging interface for the application.
package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents a log level type.
type Level = string

const (
	// DEBUG is the log level for debugging messages.
	DEBUG Level = "DEBUG"
	// WARN is the log level for warning messages.
	WARN Level = "WARN"
	// INFO is the log level for informational messages.
	INFO Level = "INFO"
	// ERROR is the log level for error messages.
	ERROR Level = "ERROR"
)

// Logger logs printf-style messages at DEBUG, WARN, INFO and ERROR levels on top of zap.
type Logger struct {
	base    *zap.Logger
	sugared *zap.SugaredLogger
}

// New creates and returns a new Logger instance with a given log level.
// Pretty output is colored console text, otherwise JSON lines are written.
func New(level Level, pretty bool) *Logger {
	var cfg zap.Config
	if pretty {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))

	base, err := cfg.Build(
		zap.AddStacktrace(zapcore.FatalLevel),
		zap.AddCallerSkip(1),
	)
	if err != nil {
		panic(err)
	}

	return NewFromZap(base)
}

// NewFromZap wraps an existing zap logger.
func NewFromZap(base *zap.Logger) *Logger {
	return &Logger{
		base:    base,
		sugared: base.Sugar(),
	}
}

// parseLevel maps a configured level name to zap, defaulting to info.
func parseLevel(level Level) zapcore.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN, "WARNING":
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Named returns a child logger whose entries carry name.
func (l *Logger) Named(name string) *Logger {
	return NewFromZap(l.base.Named(name))
}

// Debug logs a message with the DEBUG level.
func (l *Logger) Debug(format string, args ...any) { l.sugared.Debugf(format, args...) }

// Warn logs a message with the WARN level.
func (l *Logger) Warn(format string, args ...any) { l.sugared.Warnf(format, args...) }

// Info logs a message with the INFO level.
func (l *Logger) Info(format string, args ...any) { l.sugared.Infof(format, args...) }

// Error logs a message with the ERROR level.
func (l *Logger) Error(format string, args ...any) { l.sugared.Errorf(format, args...) }

// Sync flushes buffered entries.
func (l *Logger) Sync() error { return l.base.Sync() }
