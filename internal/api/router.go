// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/rollcall/internal/middleware"
)

// slowRequestThreshold marks requests logged at warn level. Station start
// and manual entry wait on the browser and backend, so it is generous.
const slowRequestThreshold = 5 * time.Second

// Router builds the HTTP handler tree.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// SetupChi configures every route.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(middleware.AccessLog(slowRequestThreshold))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/ws", router.handler.WebSocket)

		r.Route("/events", func(r chi.Router) {
			r.Get("/", router.handler.ListEvents)
			r.Get("/default", router.handler.DefaultEvent)
			r.Get("/{eventId}/checkins", router.handler.ListCheckIns)
			r.Get("/{eventId}/checkins/summary", router.handler.CheckInSummary)
		})

		r.Route("/stations", func(r chi.Router) {
			r.Get("/", router.handler.ListStations)
			r.Route("/{station}", func(r chi.Router) {
				r.Get("/", router.handler.GetStation)
				r.Post("/start", router.handler.StartScan)
				r.Post("/stop", router.handler.StopScan)
				r.Post("/next", router.handler.ScanNext)
				r.Post("/manual", router.handler.ManualEntry)
			})
		})
	})

	return r
}
