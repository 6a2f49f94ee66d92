// Package metrics holds the Prometheus collectors exported by the gateway.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_lookups_total",
			Help: "Total number of weather lookups by query kind and outcome",
		},
		[]string{"query", "outcome"},
	)

	ProviderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weather_provider_request_duration_seconds",
			Help:    "Duration of outbound weather provider requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "weather_provider_breaker_state",
			Help: "Circuit breaker state per provider (0 closed, 1 half-open, 2 open)",
		},
		[]string{"provider"},
	)
)

// RecordLookup counts one finished lookup.
func RecordLookup(query, outcome string) {
	LookupsTotal.WithLabelValues(query, outcome).Inc()
}

// ObserveProvider records how long a provider call took.
func ObserveProvider(provider string, start time.Time) {
	ProviderDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
}
