// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package api

import (
	"context"
	"net/http"
	"time"
)

// readinessTimeout bounds all readiness checks together.
const readinessTimeout = 3 * time.Second

// HealthLive reports that the process is up, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondData(w, r, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady runs every readiness check and returns 503 if any fails.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	checks := make(map[string]string, len(h.readiness))
	ready := true
	for _, c := range h.readiness {
		if err := c.Check(ctx); err != nil {
			checks[c.Name] = err.Error()
			ready = false
			continue
		}
		checks[c.Name] = "ok"
	}

	data := map[string]interface{}{
		"ready":  ready,
		"checks": checks,
		"uptime": time.Since(h.startTime).Seconds(),
	}
	if !ready {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Service not ready", data)
		return
	}
	respondData(w, r, data)
}
