package metrics

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	ItineraryComposeTotal     metric.Int64Counter
	ProviderCallsTotal        metric.Int64Counter
	ProviderDurationSeconds   metric.Float64Histogram
	CircuitStateChangesTotal  metric.Int64Counter
	InteractionsRecordedTotal metric.Int64Counter
	DbQueryDurationSeconds    metric.Float64Histogram
	DbQueryErrorsTotal        metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments once, using the
// Meter of the globally configured MeterProvider. Call it after the provider
// is installed so instruments are exported; before that they are no-ops.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("Wahkip")
		var err error
		m := &AppMetrics{}

		m.ItineraryComposeTotal, err = meter.Int64Counter(
			"itinerary_compose_total",
			metric.WithDescription("Composed itineraries by warning code"),
			metric.WithUnit("{itinerary}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create itinerary_compose_total: %v", err)
		}

		m.ProviderCallsTotal, err = meter.Int64Counter(
			"llm_provider_calls_total",
			metric.WithDescription("Text-generation provider attempts by provider and outcome"),
			metric.WithUnit("{call}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create llm_provider_calls_total: %v", err)
		}

		m.ProviderDurationSeconds, err = meter.Float64Histogram(
			"llm_provider_duration_seconds",
			metric.WithDescription("Duration of text-generation provider calls in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create llm_provider_duration_seconds: %v", err)
		}

		m.CircuitStateChangesTotal, err = meter.Int64Counter(
			"llm_circuit_state_changes_total",
			metric.WithDescription("Circuit breaker transitions per provider"),
			metric.WithUnit("{transition}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create llm_circuit_state_changes_total: %v", err)
		}

		m.InteractionsRecordedTotal, err = meter.Int64Counter(
			"interactions_recorded_total",
			metric.WithDescription("Interactions folded into user interest vectors"),
			metric.WithUnit("{interaction}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create interactions_recorded_total: %v", err)
		}

		m.DbQueryDurationSeconds, err = meter.Float64Histogram(
			"db_query_duration_seconds",
			metric.WithDescription("Duration of database queries in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_duration_seconds: %v", err)
		}

		m.DbQueryErrorsTotal, err = meter.Int64Counter(
			"db_query_errors_total",
			metric.WithDescription("Total number of database query errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_errors_total: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the global AppMetrics, initializing it on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}

// ObserveDBQuery records the duration of a query against table, and counts
// it as an error when err is non-nil.
func ObserveDBQuery(ctx context.Context, table, operation string, start time.Time, err error) {
	m := Get()
	attrs := metric.WithAttributes(
		attribute.String("db.sql.table", table),
		attribute.String("db.operation", operation),
	)
	m.DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil {
		m.DbQueryErrorsTotal.Add(ctx, 1, attrs)
	}
}
