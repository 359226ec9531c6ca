package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowQueryThreshold = 200 * time.Millisecond

// GormLogger routes GORM's query log into the application zap logger,
// carrying the request id so a slow query can be tied back to the HTTP
// call that issued it. ErrRecordNotFound is never logged as an error;
// repositories translate it into a nil result.
type GormLogger struct {
	log           *zap.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

type GormLoggerOption func(*GormLogger)

// WithSlowThreshold overrides the elapsed time above which a query is
// logged as slow. Zero disables slow query logging.
func WithSlowThreshold(threshold time.Duration) GormLoggerOption {
	return func(gl *GormLogger) {
		gl.slowThreshold = threshold
	}
}

// NewGormLogger adapts a zap logger to gormlogger.Interface
func NewGormLogger(log *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	gl := &GormLogger{
		log:           log.Named("gorm"),
		level:         level,
		slowThreshold: defaultSlowQueryThreshold,
	}
	for _, opt := range opts {
		opt(gl)
	}
	return gl
}

// LogMode implements gormlogger.Interface
func (gl *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *gl
	clone.level = level
	return &clone
}

func (gl *GormLogger) Info(_ context.Context, msg string, args ...any) {
	if gl.level >= gormlogger.Info {
		gl.log.Sugar().Infof(msg, args...)
	}
}

func (gl *GormLogger) Warn(_ context.Context, msg string, args ...any) {
	if gl.level >= gormlogger.Warn {
		gl.log.Sugar().Warnf(msg, args...)
	}
}

func (gl *GormLogger) Error(_ context.Context, msg string, args ...any) {
	if gl.level >= gormlogger.Error {
		gl.log.Sugar().Errorf(msg, args...)
	}
}

// Trace logs each finished query with its duration and row count
func (gl *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if gl.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	}
	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}

	switch {
	case err != nil && gl.level >= gormlogger.Error:
		if errors.Is(err, gormlogger.ErrRecordNotFound) {
			return
		}
		gl.log.Error("Query failed", append(fields, zap.Error(err))...)

	case gl.slowThreshold > 0 && elapsed > gl.slowThreshold && gl.level >= gormlogger.Warn:
		gl.log.Warn(fmt.Sprintf("Slow query (> %v)", gl.slowThreshold), fields...)

	case gl.level >= gormlogger.Info:
		gl.log.Debug("Query", fields...)
	}
}

// MapGormLogLevel translates the application log level into the GORM
// log level driving Trace verbosity
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "warn":
		return gormlogger.Warn
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
