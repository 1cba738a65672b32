// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
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
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Check-in Metrics
	CheckInAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkin_attempts_total",
			Help: "Total number of completed scan attempts",
		},
		[]string{"outcome", "source"}, // source: "camera", "manual"
	)

	CheckInValidationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "checkin_validation_duration_seconds",
			Help:    "Duration of the validate and commit round trip in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	CheckInStaleResults = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "checkin_stale_results_total",
			Help: "Total number of validation results discarded because the session moved on",
		},
	)

	StationsScanning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "checkin_stations_scanning",
			Help: "Current number of stations holding a camera",
		},
	)

	CameraErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "checkin_camera_errors_total",
			Help: "Total number of camera acquisition failures",
		},
	)

	// Backend Metrics
	BackendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_requests_total",
			Help: "Total number of requests to the RSVP backend",
		},
		[]string{"endpoint", "status"},
	)

	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backend_request_duration_seconds",
			Help:    "RSVP backend request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	BackendSessionExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "backend_session_expired_total",
			Help: "Total number of requests rejected because the backend session expired",
		},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_received_total",
			Help: "Total number of WebSocket messages received",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Journal and Event Publishing Metrics
	JournalWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journal_writes_total",
			Help: "Total number of scan journal writes",
		},
		[]string{"result"}, // "success", "error"
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkin_events_published_total",
			Help: "Total number of check-in events published",
		},
		[]string{"result"}, // "success", "error"
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements active request counter
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCheckIn records one completed scan attempt.
func RecordCheckIn(outcome string, manual bool, duration time.Duration) {
	source := "camera"
	if manual {
		source = "manual"
	}
	CheckInAttempts.WithLabelValues(outcome, source).Inc()
	CheckInValidationDuration.Observe(duration.Seconds())
}

// RecordBackendRequest records a request to the RSVP backend. A zero status
// code means the request never produced a response.
func RecordBackendRequest(endpoint string, statusCode int, duration time.Duration) {
	status := "transport_error"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
	}
	BackendRequests.WithLabelValues(endpoint, status).Inc()
	BackendRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordJournalWrite records a scan journal write.
func RecordJournalWrite(err error) {
	if err != nil {
		JournalWrites.WithLabelValues("error").Inc()
		return
	}
	JournalWrites.WithLabelValues("success").Inc()
}

// RecordEventPublish records a check-in event publish.
func RecordEventPublish(err error) {
	if err != nil {
		EventsPublished.WithLabelValues("error").Inc()
		return
	}
	EventsPublished.WithLabelValues("success").Inc()
}
