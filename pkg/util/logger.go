package util

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// LogFormat represents the output format for logs
type LogFormat string

const (
	FormatJSON LogFormat = "json"
	FormatText LogFormat = "text"
)

// LoggerConfig holds the configuration for the logger
type LoggerConfig struct {
	Level  LogLevel
	Format LogFormat
	Output io.Writer
}

// DefaultLoggerConfig returns a text logger on stderr at info level.
//
// stdout is reserved for the confirmation line and, in serve mode, for the
// MCP protocol stream.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:  LevelInfo,
		Format: FormatText,
		Output: os.Stderr,
	}
}

// NewLogger creates a new structured logger with the given configuration
func NewLogger(config LoggerConfig) *slog.Logger {
	if config.Output == nil {
		config.Output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level: config.Level.slogLevel(),
	}

	var handler slog.Handler
	switch config.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(config.Output, opts)
	default:
		handler = slog.NewTextHandler(config.Output, opts)
	}

	return slog.New(handler)
}

// ParseLevel validates a level name from config or flags. Matching is
// case-insensitive; the empty string means info.
func ParseLevel(s string) (LogLevel, error) {
	switch LogLevel(strings.ToLower(strings.TrimSpace(s))) {
	case "", LevelInfo:
		return LevelInfo, nil
	case LevelDebug:
		return LevelDebug, nil
	case LevelWarn, "warning":
		return LevelWarn, nil
	case LevelError:
		return LevelError, nil
	default:
		return "", fmt.Errorf("unknown log level %q", s)
	}
}

// ParseFormat validates a log format name. The empty string means text.
func ParseFormat(s string) (LogFormat, error) {
	switch LogFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown log format %q", s)
	}
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
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

// DiscardLogger returns a logger that drops everything. Handy in tests.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
