// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

/*
Package metrics provides Prometheus metrics collection and export for observability.

# Overview

The package provides metrics for:
  - HTTP request latency and throughput
  - Check-in attempts per outcome and validation round-trip latency
  - RSVP backend requests per endpoint and status
  - Circuit breaker state transitions
  - Door stations currently scanning
  - WebSocket connection counts
  - Scan journal writes and event publishing

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

Check-in Metrics:
  - checkin_attempts_total: Completed scan attempts (counter)
    Labels: outcome, source (camera, manual)
  - checkin_validation_duration_seconds: Validate plus commit latency (histogram)
  - checkin_stale_results_total: Results discarded because the session moved on
  - checkin_stations_scanning: Stations holding a camera (gauge)

Backend Metrics:
  - backend_requests_total: Labels: endpoint, status
  - backend_request_duration_seconds: Labels: endpoint
  - backend_session_expired_total: 401 responses and expired tokens

Circuit Breaker Metrics:
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total: Labels: name, result
  - circuit_breaker_state_transitions_total: Labels: name, from_state, to_state
*/
package metrics
