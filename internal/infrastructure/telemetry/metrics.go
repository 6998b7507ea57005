package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/restapi/backend"

// HTTPMetrics records request counts and latencies per route
type HTTPMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// NewHTTPMetrics creates the HTTP instruments on meter
func NewHTTPMetrics(mp metric.MeterProvider) (*HTTPMetrics, error) {
	meter := mp.Meter(meterName)

	requests, err := meter.Int64Counter("http.server.requests",
		metric.WithDescription("Handled HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}

	duration, err := meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return &HTTPMetrics{requests: requests, duration: duration}, nil
}

// Record adds one request. route is the matched pattern, not the raw path.
func (m *HTTPMetrics) Record(ctx context.Context, method, route string, status int, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.String("http.route", route),
		attribute.String("http.response.status_code", strconv.Itoa(status)),
	)
	m.requests.Add(ctx, 1, attrs)
	m.duration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
}

// RegisterDBPoolMetrics reports the connection pool of db as observable gauges
func RegisterDBPoolMetrics(mp metric.MeterProvider, db *sql.DB) (metric.Registration, error) {
	meter := mp.Meter(meterName)

	open, err := meter.Int64ObservableGauge("db.client.connections.open", metric.WithDescription("Open connections"))
	if err != nil {
		return nil, err
	}
	inUse, err := meter.Int64ObservableGauge("db.client.connections.in_use", metric.WithDescription("Connections in use"))
	if err != nil {
		return nil, err
	}
	idle, err := meter.Int64ObservableGauge("db.client.connections.idle", metric.WithDescription("Idle connections"))
	if err != nil {
		return nil, err
	}
	waits, err := meter.Int64ObservableCounter("db.client.connections.waits", metric.WithDescription("Waits for a free connection"))
	if err != nil {
		return nil, err
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := db.Stats()
		o.ObserveInt64(open, int64(stats.OpenConnections))
		o.ObserveInt64(inUse, int64(stats.InUse))
		o.ObserveInt64(idle, int64(stats.Idle))
		o.ObserveInt64(waits, stats.WaitCount)
		return nil
	}, open, inUse, idle, waits)
}
