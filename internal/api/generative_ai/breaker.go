package generativeAI

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/FACorreiaa/wahkip/app/observability/metrics"
)

// BreakerConfig controls the per-provider circuit breaker.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the circuit.
	MaxFailures uint32
	// OpenTimeout is how long the circuit stays open before a probe.
	OpenTimeout time.Duration
}

// DefaultBreakerConfig is used when no breaker settings are configured.
var DefaultBreakerConfig = BreakerConfig{MaxFailures: 5, OpenTimeout: 60 * time.Second}

func newBreaker(name string, bc BreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker[string] {
	if bc.MaxFailures == 0 {
		bc.MaxFailures = DefaultBreakerConfig.MaxFailures
	}
	if bc.OpenTimeout <= 0 {
		bc.OpenTimeout = DefaultBreakerConfig.OpenTimeout
	}

	return gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     bc.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bc.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Provider circuit state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
			metrics.Get().CircuitStateChangesTotal.Add(context.Background(), 1, metric.WithAttributes(
				attribute.String("provider", name),
				attribute.String("to", to.String()),
			))
		},
		// A caller giving up is not the provider's fault.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}
