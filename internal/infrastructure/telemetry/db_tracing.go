package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls the otelgorm plugin
type DBTracingConfig struct {
	Enabled            bool
	LogFullSQL         bool // include bound variables in db.statement
	SlowQueryThreshold time.Duration
	TracerProvider     trace.TracerProvider // nil means the global provider
}

type queryStartKey struct{}

// RegisterDBTracing installs otelgorm on db and flags slow or failed statements on their span
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(db.Dialector.Name())}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(cfg.TracerProvider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) { annotateSpan(tx, cfg.SlowQueryThreshold) }

	cb := db.Callback()
	registrations := []error{
		cb.Create().Before("gorm:create").Register("db_tracing:before_create", before),
		cb.Query().Before("gorm:query").Register("db_tracing:before_query", before),
		cb.Update().Before("gorm:update").Register("db_tracing:before_update", before),
		cb.Delete().Before("gorm:delete").Register("db_tracing:before_delete", before),
		cb.Row().Before("gorm:row").Register("db_tracing:before_row", before),
		cb.Raw().Before("gorm:raw").Register("db_tracing:before_raw", before),
		cb.Create().After("gorm:create").Register("db_tracing:after_create", after),
		cb.Query().After("gorm:query").Register("db_tracing:after_query", after),
		cb.Update().After("gorm:update").Register("db_tracing:after_update", after),
		cb.Delete().After("gorm:delete").Register("db_tracing:after_delete", after),
		cb.Row().After("gorm:row").Register("db_tracing:after_row", after),
		cb.Raw().After("gorm:raw").Register("db_tracing:after_raw", after),
	}
	if err := errors.Join(registrations...); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThreshold),
	)
	return nil
}

func annotateSpan(tx *gorm.DB, threshold time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, tx.Error.Error())
		span.RecordError(tx.Error)
	}

	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok || threshold <= 0 {
		return
	}
	if elapsed := time.Since(start); elapsed > threshold {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
}
