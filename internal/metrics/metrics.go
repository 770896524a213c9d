package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Dataset Metrics
	DatasetLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dataset_load_duration_seconds",
			Help:    "Duration of the one-time dataset load in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	DatasetLoadErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataset_load_errors_total",
			Help: "Total number of failed dataset table loads",
		},
		[]string{"table"},
	)

	DatasetRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dataset_rows",
			Help: "Number of rows loaded per dataset table",
		},
		[]string{"table"},
	)

	// Recommendation Metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_total",
			Help: "Total number of recommendation requests by strategy and outcome",
		},
		[]string{"strategy", "outcome"}, // outcome: "results", "empty", "error"
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Time spent ranking restaurants in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		},
		[]string{"strategy"},
	)

	RecommendationResultSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_result_size",
			Help:    "Number of restaurants returned per recommendation",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 10},
		},
		[]string{"strategy"},
	)

	// Event Publisher Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_events_published_total",
			Help: "Total number of recommendation events published",
		},
		[]string{"status"}, // "success", "error", "dropped"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)
)

// RecordRecommendation records the outcome of one recommendation request
func RecordRecommendation(strategy string, size int, duration time.Duration, err error) {
	outcome := "results"
	switch {
	case err != nil:
		outcome = "error"
	case size == 0:
		outcome = "empty"
	}

	RecommendationsTotal.WithLabelValues(strategy, outcome).Inc()
	if err != nil {
		return
	}
	RecommendationDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	RecommendationResultSize.WithLabelValues(strategy).Observe(float64(size))
}

// RecordAPIRequest records an API request with its status code and duration
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
