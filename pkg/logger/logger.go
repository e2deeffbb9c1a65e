package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"pdf-ocr-extractor/internal/domain"

	"github.com/rs/zerolog"
)

// Options configures the logger output.
type Options struct {
	Level   string
	Format  string // "json" or "console"
	Service string
	Output  io.Writer
}

// AppLogger implements the domain.Logger interface
type AppLogger struct {
	zl zerolog.Logger
}

// NewLogger creates a new logger instance
func NewLogger(opts Options) domain.Logger {
	output := opts.Output
	if output == nil {
		output = os.Stdout
	}
	if strings.ToLower(opts.Format) == "console" {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339}
	}

	zl := zerolog.New(output).
		Level(parseLogLevel(opts.Level)).
		With().
		Timestamp().
		Logger()
	if opts.Service != "" {
		zl = zl.With().Str("service", opts.Service).Logger()
	}

	return &AppLogger{zl: zl}
}

// Info logs an info message
func (l *AppLogger) Info(msg string, fields ...interface{}) {
	l.zl.Info().Fields(pairs(fields)).Msg(msg)
}

// Error logs an error message
func (l *AppLogger) Error(msg string, err error, fields ...interface{}) {
	l.zl.Error().Err(err).Fields(pairs(fields)).Msg(msg)
}

// Debug logs a debug message
func (l *AppLogger) Debug(msg string, fields ...interface{}) {
	l.zl.Debug().Fields(pairs(fields)).Msg(msg)
}

// Warn logs a warning message
func (l *AppLogger) Warn(msg string, fields ...interface{}) {
	l.zl.Warn().Fields(pairs(fields)).Msg(msg)
}

// pairs turns key/value varargs into a field map; a trailing key without a value is dropped.
func pairs(fields []interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		if err, isErr := fields[i+1].(error); isErr && err != nil {
			m[key] = err.Error()
			continue
		}
		m[key] = fields[i+1]
	}
	return m
}

// parseLogLevel converts string log level to a zerolog level
func parseLogLevel(levelStr string) zerolog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
