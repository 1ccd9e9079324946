package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"DEBUG":   LevelDebug,
		" warn ":  LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"info":    LevelInfo,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestNewFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "warn", Format: "json", Output: &buf})
	require.NoError(t, err)

	log.Debug("debug-line")
	log.Info("info-line")
	log.Warn("warn-line", "stage", "lemmatize")
	log.Error("error-line")
	require.NoError(t, log.Close())

	out := buf.String()
	assert.NotContains(t, out, "debug-line")
	assert.NotContains(t, out, "info-line")
	assert.Contains(t, out, "warn-line")
	assert.Contains(t, out, "error-line")
}

func TestNewDebugLevelWritesDebug(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "debug", Format: "json", Output: &buf})
	require.NoError(t, err)

	log.Debug("debug-line", "run_id", "01J")
	log.Info("info-line")
	require.NoError(t, log.Close())

	out := buf.String()
	assert.Contains(t, out, "debug-line")
	assert.Contains(t, out, "info-line")
}

func TestLevelToSlog(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LevelDebug.slogLevel())
	assert.Equal(t, slog.LevelInfo, LevelInfo.slogLevel())
	assert.Equal(t, slog.LevelWarn, LevelWarn.slogLevel())
	assert.Equal(t, slog.LevelError, LevelError.slogLevel())
}

func TestNop(t *testing.T) {
	var log Logger = Nop{}
	log.Debug("x", "k", 1)
	log.Info("x")
	log.Warn("x")
	log.Error("x")
	assert.NoError(t, log.Close())
}
