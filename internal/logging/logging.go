// Package logging adapts github.com/baditaflorin/l to the small logger
// interface used across textprep.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/baditaflorin/l"
)

// Logger is the structured logger used by the pipeline and the CLI.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Close() error
}

// Level is a minimum severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel parses debug, info, warn or error (case-insensitive);
// anything else is info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Config selects where and how log lines are written.
type Config struct {
	Level  string
	Format string // "json" or "text"
	Output io.Writer
}

// StdLogger adapts an l.Logger and drops records below its level.
type StdLogger struct {
	logger l.Logger
	level  Level
}

// New creates a logger. Output defaults to os.Stderr so that stdout stays
// free for pipeline output.
func New(cfg Config) (Logger, error) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	level := ParseLevel(cfg.Level)
	logger, err := l.NewStandardFactory().CreateLogger(l.Config{
		MinLevel:    level.slogLevel(),
		Output:      out,
		JsonFormat:  strings.EqualFold(cfg.Format, "json"),
		AsyncWrite:  false,
		BufferSize:  64 * 1024,
		MaxFileSize: 10 * 1024 * 1024, // 10MB max file size
		MaxBackups:  3,
		AddSource:   strings.EqualFold(cfg.Format, "text"),
		Metrics:     false,
	})
	if err != nil {
		return nil, err
	}

	return &StdLogger{logger: logger, level: level}, nil
}

func (lv Level) slogLevel() slog.Level {
	switch lv {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// FromExisting wraps an existing l.Logger.
func FromExisting(logger l.Logger, level Level) Logger {
	return &StdLogger{logger: logger, level: level}
}

// Debug logs a debug message.
func (s *StdLogger) Debug(msg string, keysAndValues ...interface{}) {
	if s.level <= LevelDebug {
		s.logger.Debug(msg, keysAndValues...)
	}
}

// Info logs an info message.
func (s *StdLogger) Info(msg string, keysAndValues ...interface{}) {
	if s.level <= LevelInfo {
		s.logger.Info(msg, keysAndValues...)
	}
}

// Warn logs a warning message.
func (s *StdLogger) Warn(msg string, keysAndValues ...interface{}) {
	if s.level <= LevelWarn {
		s.logger.Warn(msg, keysAndValues...)
	}
}

// Error logs an error message.
func (s *StdLogger) Error(msg string, keysAndValues ...interface{}) {
	s.logger.Error(msg, keysAndValues...)
}

// Close flushes and closes the underlying logger.
func (s *StdLogger) Close() error {
	return s.logger.Close()
}

// Nop discards everything.
type Nop struct{}

func (Nop) Debug(string, ...interface{}) {}
func (Nop) Info(string, ...interface{})  {}
func (Nop) Warn(string, ...interface{})  {}
func (Nop) Error(string, ...interface{}) {}
func (Nop) Close() error                 { return nil }
