// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/rollcall/internal/checkin"
	"github.com/tomtom215/rollcall/internal/models"
	ws "github.com/tomtom215/rollcall/internal/websocket"
)

// EventSource lists and resolves events.
type EventSource interface {
	List(ctx context.Context) ([]models.Event, error)
	Default(ctx context.Context) (models.Event, error)
	Resolve(ctx context.Context, eventID string) (models.Event, error)
}

// CheckInStore reads the scan journal.
type CheckInStore interface {
	Recent(ctx context.Context, eventID string, limit int) ([]models.ScanRecord, error)
	Summary(ctx context.Context, eventID string) (models.CheckInSummary, error)
}

// ReadinessCheck is one dependency checked by /health/ready.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HandlerConfig holds the dependencies of the API handlers.
type HandlerConfig struct {
	Events      EventSource
	Stations    *checkin.Registry
	Journal     CheckInStore
	Hub         *ws.Hub
	CORSOrigins []string
	Readiness   []ReadinessCheck
}

// Handler serves the API routes.
type Handler struct {
	events      EventSource
	stations    *checkin.Registry
	journal     CheckInStore
	hub         *ws.Hub
	corsOrigins []string
	readiness   []ReadinessCheck
	startTime   time.Time
}

// NewHandler creates the API handler.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		events:      cfg.Events,
		stations:    cfg.Stations,
		journal:     cfg.Journal,
		hub:         cfg.Hub,
		corsOrigins: cfg.CORSOrigins,
		readiness:   cfg.Readiness,
		startTime:   time.Now(),
	}
}

// decodeBody decodes an optional JSON body into v. An empty body leaves v
// untouched.
func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
