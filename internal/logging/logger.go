// Package logging adapts zerolog to the map based Logger used by the client
// layer.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const defaultLevel = zerolog.InfoLevel

// Logger writes structured events through zerolog.
type Logger struct {
	zl zerolog.Logger
}

// New creates a logger writing JSON lines to w at the given level. An
// unknown level falls back to info.
func New(w io.Writer, level string) *Logger {
	zl := zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()

	return &Logger{zl: zl}
}

// NewConsole creates a human readable logger on stderr for the CLI.
func NewConsole(level string) *Logger {
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}

	return New(writer, level)
}

// ParseLevel converts a level name. Unknown or empty names yield info.
func ParseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || parsed == zerolog.NoLevel {
		return defaultLevel
	}

	return parsed
}

// Zerolog exposes the underlying logger.
func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.zl
}

// Level returns the active level.
func (l *Logger) Level() zerolog.Level {
	return l.zl.GetLevel()
}

// Debug implements apiclient.Logger.
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.zl.Debug().Fields(fields).Msg(msg)
}

// Info implements apiclient.Logger.
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.zl.Info().Fields(fields).Msg(msg)
}

// Warn implements apiclient.Logger.
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.zl.Warn().Fields(fields).Msg(msg)
}

// Error implements apiclient.Logger.
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.zl.Error().Fields(fields).Msg(msg)
}
