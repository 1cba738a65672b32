// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Context keys for logging.
type contextKey string

const (
	requestIDKey contextKey = "request_id"
	stationKey   contextKey = "station"
)

// GenerateRequestID creates a new unique request ID.
func GenerateRequestID() string {
	return uuid.New().String()
}

// ContextWithRequestID returns a new context with the given request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext retrieves the request ID from context.
// Returns empty string if not present.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithStation tags ctx with the door station it acts for.
func ContextWithStation(ctx context.Context, station string) context.Context {
	return context.WithValue(ctx, stationKey, station)
}

// StationFromContext returns the station tag, or "" when absent.
func StationFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(stationKey).(string); ok {
		return s
	}
	return ""
}

// Ctx returns a logger with request_id and station fields taken from ctx.
//
//	logging.Ctx(ctx).Info().Msg("Processing request")
func Ctx(ctx context.Context) *zerolog.Logger {
	logCtx := With()
	if id := RequestIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("request_id", id)
	}
	if station := StationFromContext(ctx); station != "" {
		logCtx = logCtx.Str("station", station)
	}
	logger := logCtx.Logger()
	return &logger
}
