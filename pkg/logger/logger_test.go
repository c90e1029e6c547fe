package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"DEBUG":   zapcore.DebugLevel,
		"debug":   zapcore.DebugLevel,
		" Warn ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"INFO":    zapcore.InfoLevel,
		"ERROR":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestLogger_Formats(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewFromZap(zap.New(core)).Named("survival")

	log.Debug("hidden %d", 1)
	log.Info("Server %s is %s", "survival", "online")
	log.Error("failed: %v", assertErr("boom"))

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "Server survival is online", entries[0].Message)
		assert.Equal(t, "survival", entries[0].LoggerName)
		assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
		assert.Equal(t, "failed: boom", entries[1].Message)
	}
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
