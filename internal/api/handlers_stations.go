// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/rollcall/internal/camera"
	"github.com/tomtom215/rollcall/internal/checkin"
	"github.com/tomtom215/rollcall/internal/logging"
	"github.com/tomtom215/rollcall/internal/models"
	"github.com/tomtom215/rollcall/internal/validation"
)

// station resolves the {station} URL parameter to its controller, writing
// the error response when it cannot. Mutating routes create the station on
// first use.
func (h *Handler) station(w http.ResponseWriter, r *http.Request) (*checkin.Controller, *http.Request, bool) {
	return h.resolveStation(w, r, h.stations.Get)
}

// knownStation is station for read-only routes: an unseen station is 404.
func (h *Handler) knownStation(w http.ResponseWriter, r *http.Request) (*checkin.Controller, *http.Request, bool) {
	return h.resolveStation(w, r, func(station string) (*checkin.Controller, error) {
		ctrl, ok := h.stations.Lookup(station)
		if !ok {
			return nil, checkin.ErrUnknownStation
		}
		return ctrl, nil
	})
}

func (h *Handler) resolveStation(w http.ResponseWriter, r *http.Request, resolve func(string) (*checkin.Controller, error)) (*checkin.Controller, *http.Request, bool) {
	req := validation.StationRequest{Station: chi.URLParam(r, "station")}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidation(w, r, verr)
		return nil, r, false
	}

	ctrl, err := resolve(req.Station)
	if err != nil {
		respondErr(w, r, err, nil)
		return nil, r, false
	}
	return ctrl, r.WithContext(logging.ContextWithStation(r.Context(), req.Station)), true
}

// ListStations returns the view of every station seen so far.
func (h *Handler) ListStations(w http.ResponseWriter, r *http.Request) {
	respondList(w, r, h.stations.Views())
}

// GetStation returns one station's view.
func (h *Handler) GetStation(w http.ResponseWriter, r *http.Request) {
	ctrl, r, ok := h.knownStation(w, r)
	if !ok {
		return
	}
	respondData(w, r, ctrl.View())
}

// StartScan opens a scan session. Without an eventId in the body the
// station's selected event is used, then the default event.
func (h *Handler) StartScan(w http.ResponseWriter, r *http.Request) {
	ctrl, r, ok := h.station(w, r)
	if !ok {
		return
	}

	var req validation.StartScanRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body", nil)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidation(w, r, verr)
		return
	}

	eventID, err := h.eventFor(r.Context(), ctrl, req.EventID)
	if err != nil {
		respondErr(w, r, err, nil)
		return
	}

	err = ctrl.Start(r.Context(), eventID)
	var camErr *camera.CameraError
	switch {
	case err == nil:
		respondData(w, r, ctrl.View())
	case errors.As(err, &camErr):
		respondErr(w, r, err, ctrl.View())
	default:
		respondErr(w, r, err, nil)
	}
}

// eventFor picks the event a session runs for and confirms it exists.
func (h *Handler) eventFor(ctx context.Context, ctrl *checkin.Controller, requested string) (string, error) {
	if requested != "" {
		ev, err := h.events.Resolve(ctx, requested)
		if err != nil {
			return "", err
		}
		return ev.ID, nil
	}
	if selected := ctrl.View().EventID; selected != "" {
		return selected, nil
	}
	ev, err := h.events.Default(ctx)
	if err != nil {
		return "", err
	}
	return ev.ID, nil
}

// StopScan ends the station's session.
func (h *Handler) StopScan(w http.ResponseWriter, r *http.Request) {
	ctrl, r, ok := h.station(w, r)
	if !ok {
		return
	}
	ctrl.Stop()
	respondData(w, r, ctrl.View())
}

// ScanNext dismisses the shown result.
func (h *Handler) ScanNext(w http.ResponseWriter, r *http.Request) {
	ctrl, r, ok := h.station(w, r)
	if !ok {
		return
	}
	if err := ctrl.ScanNext(); err != nil {
		respondErr(w, r, err, ctrl.View())
		return
	}
	respondData(w, r, ctrl.View())
}

// ManualEntry validates a typed code and returns the resulting view.
func (h *Handler) ManualEntry(w http.ResponseWriter, r *http.Request) {
	ctrl, r, ok := h.station(w, r)
	if !ok {
		return
	}

	var req validation.ManualCodeRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body", nil)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidation(w, r, verr)
		return
	}

	view := ctrl.View()
	if view.Status == models.StatusIdle && view.EventID == "" {
		ev, err := h.events.Default(r.Context())
		if err != nil {
			respondErr(w, r, err, nil)
			return
		}
		if err := ctrl.SelectEvent(ev.ID); err != nil {
			respondErr(w, r, err, ctrl.View())
			return
		}
	}

	view, err := ctrl.SubmitManual(r.Context(), req.Code)
	if err != nil {
		respondErr(w, r, err, ctrl.View())
		return
	}
	respondData(w, r, view)
}
