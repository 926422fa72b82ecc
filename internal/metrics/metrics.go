// Package metrics declares the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "recobot"

var (
	// IngestTotal counts registration attempts by source and outcome
	// (created, duplicate, skipped, invalid, error).
	IngestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_total",
		Help:      "Catalogue registration attempts by source and outcome",
	}, []string{"source", "outcome"})

	// RecommendTotal counts recommendation requests by category and outcome
	// (found, empty, error).
	RecommendTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recommend_total",
		Help:      "Recommendation requests by category and outcome",
	}, []string{"category", "outcome"})

	// TelegramUpdatesTotal counts received Telegram updates by kind.
	TelegramUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "telegram_updates_total",
		Help:      "Telegram updates received by kind",
	}, []string{"kind"})

	// TelegramPollErrorsTotal counts failed getUpdates calls.
	TelegramPollErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "telegram_poll_errors_total",
		Help:      "Failed getUpdates calls",
	})

	// CircuitBreakerState is the current breaker state (0=closed, 1=half-open, 2=open).
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_state",
		Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
	}, []string{"name"})

	// CircuitBreakerRequests counts calls through a breaker by result
	// (success, failure, rejected).
	CircuitBreakerRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_requests_total",
		Help:      "Calls through a circuit breaker by result",
	}, []string{"name", "result"})

	// HTTPRequestDuration measures HTTP handler latency.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
