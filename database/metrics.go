package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var sqliteErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "errorwatch_sqlite_errors_total",
	Help: "SQLite errors seen by the collector, by kind.",
}, []string{"kind"})

// classifySQLiteError maps err to "busy", "locked", "other", or "" for errors
// that are not database failures.
func classifySQLiteError(err error) string {
	if err == nil || errors.Is(err, gorm.ErrRecordNotFound) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ""
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "sqlite_busy") || strings.Contains(msg, "database is locked"):
		return "busy"
	case strings.Contains(msg, "sqlite_locked") || strings.Contains(msg, "database table is locked"):
		return "locked"
	default:
		return "other"
	}
}

func recordSQLiteError(err error) {
	if kind := classifySQLiteError(err); kind != "" {
		sqliteErrors.WithLabelValues(kind).Inc()
	}
}

// metricsLogger counts query errors before handing them to the wrapped logger
type metricsLogger struct {
	inner logger.Interface
}

func (l metricsLogger) LogMode(level logger.LogLevel) logger.Interface {
	return metricsLogger{inner: l.inner.LogMode(level)}
}

func (l metricsLogger) Info(ctx context.Context, s string, args ...interface{}) {
	l.inner.Info(ctx, s, args...)
}

func (l metricsLogger) Warn(ctx context.Context, s string, args ...interface{}) {
	l.inner.Warn(ctx, s, args...)
}

func (l metricsLogger) Error(ctx context.Context, s string, args ...interface{}) {
	l.inner.Error(ctx, s, args...)
}

func (l metricsLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	recordSQLiteError(err)
	l.inner.Trace(ctx, begin, fc, err)
}

// Ping reports whether db answers within a short deadline
func Ping(ctx context.Context, db *gorm.DB) bool {
	if db == nil {
		return false
	}

	sqlDB, err := db.DB()
	if err != nil {
		return false
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 200*time.Millisecond)
		defer cancel()
	}
	return sqlDB.PingContext(ctx) == nil
}
