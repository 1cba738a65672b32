// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/rollcall/internal/validation"
)

// defaultCheckInLimit applies when ?limit= is absent.
const defaultCheckInLimit = 50

// ListEvents returns the backend's events.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	list, err := h.events.List(r.Context())
	if err != nil {
		respondErr(w, r, err, nil)
		return
	}
	respondList(w, r, list)
}

// DefaultEvent returns the event the dashboard pre-selects.
func (h *Handler) DefaultEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := h.events.Default(r.Context())
	if err != nil {
		respondErr(w, r, err, nil)
		return
	}
	respondData(w, r, ev)
}

// ListCheckIns returns the newest journaled attempts for an event.
func (h *Handler) ListCheckIns(w http.ResponseWriter, r *http.Request) {
	req := validation.CheckInListRequest{
		EventID: chi.URLParam(r, "eventId"),
		Limit:   defaultCheckInLimit,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "limit must be an integer", map[string]interface{}{"field": "limit"})
			return
		}
		req.Limit = limit
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidation(w, r, verr)
		return
	}

	records, err := h.journal.Recent(r.Context(), req.EventID, req.Limit)
	if err != nil {
		respondErr(w, r, err, nil)
		return
	}
	respondList(w, r, records)
}

// CheckInSummary returns per-outcome counts for an event.
func (h *Handler) CheckInSummary(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	summary, err := h.journal.Summary(r.Context(), eventID)
	if err != nil {
		respondErr(w, r, err, nil)
		return
	}
	respondData(w, r, summary)
}
