// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

/*
Package middleware provides HTTP middleware for the Rollcall API.

Every middleware has the chi signature func(http.Handler) http.Handler:

  - RequestID: X-Request-ID propagation into the logging context
  - PrometheusMetrics: request counts and latency labelled by chi route pattern
  - AccessLog: structured access logging with a slow-request threshold

Response writers are wrapped with chi's WrapResponseWriter so that the
websocket upgrade on /api/v1/ws can still hijack the connection.

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog(500 * time.Millisecond))
*/
package middleware
