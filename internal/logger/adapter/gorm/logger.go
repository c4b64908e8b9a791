// Package gorm routes GORM statement logging into the global zerolog logger.
package gorm

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowThreshold marks statements slower than this as warnings.
const DefaultSlowThreshold = 200 * time.Millisecond

// Logger implements gorm's logger.Interface on top of zerolog.
type Logger struct {
	SlowThreshold time.Duration
	Level         gormlogger.LogLevel

	// IgnoreRecordNotFound drops gorm.ErrRecordNotFound from the error log.
	IgnoreRecordNotFound bool
}

// New returns a Logger at Warn level. DevMode raises it to Info so every statement is traced.
func New(devMode bool) *Logger {
	l := &Logger{
		SlowThreshold:        DefaultSlowThreshold,
		Level:                gormlogger.Warn,
		IgnoreRecordNotFound: true,
	}

	if devMode {
		l.Level = gormlogger.Info
	}

	return l
}

// LogMode returns a copy of the logger with the given level.
func (l *Logger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	n := *l
	n.Level = level

	return &n
}

// Info logs at info level.
func (l *Logger) Info(_ context.Context, msg string, args ...any) {
	if l.Level >= gormlogger.Info {
		log.Info().Str("component", "gorm").Msgf(msg, args...)
	}
}

// Warn logs at warn level.
func (l *Logger) Warn(_ context.Context, msg string, args ...any) {
	if l.Level >= gormlogger.Warn {
		log.Warn().Str("component", "gorm").Msgf(msg, args...)
	}
}

// Error logs at error level.
func (l *Logger) Error(_ context.Context, msg string, args ...any) {
	if l.Level >= gormlogger.Error {
		log.Error().Str("component", "gorm").Msgf(msg, args...)
	}
}

// Trace logs a finished statement with its duration and affected rows.
func (l *Logger) Trace(_ context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.Level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)

	var event *zerolog.Event

	switch {
	case err != nil && l.Level >= gormlogger.Error &&
		!(l.IgnoreRecordNotFound && errors.Is(err, gorm.ErrRecordNotFound)):
		event = log.Error().Err(err)
	case l.SlowThreshold != 0 && elapsed > l.SlowThreshold && l.Level >= gormlogger.Warn:
		event = log.Warn().Dur("threshold", l.SlowThreshold)
	case l.Level >= gormlogger.Info:
		event = log.Debug()
	default:
		return
	}

	sql, rows := fc()

	event.
		Str("component", "gorm").
		Dur("elapsed", elapsed).
		Int64("rows", rows).
		Str("sql", sql).
		Send()
}
