// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/rollcall/internal/logging"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

// APIError is the error body of a failed request.
type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// APIMeta carries response metadata.
type APIMeta struct {
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Count     *int      `json:"count,omitempty"`
}

// Error codes for API responses
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeUnknownEvent       = "UNKNOWN_EVENT"
	ErrCodeUnknownStation     = "UNKNOWN_STATION"
	ErrCodeTooManyStations    = "TOO_MANY_STATIONS"
	ErrCodeNoEventSelected    = "NO_EVENT_SELECTED"
	ErrCodeCameraError        = "CAMERA_ERROR"
	ErrCodeInvalidState       = "INVALID_STATE"
	ErrCodeStationBusy        = "STATION_BUSY"
	ErrCodeSessionEnded       = "SESSION_ENDED"
	ErrCodeSessionExpired     = "SESSION_EXPIRED"
	ErrCodeBackendError       = "BACKEND_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 16 << 10

func respondJSON(w http.ResponseWriter, r *http.Request, status int, resp *APIResponse) {
	if resp.Meta == nil {
		resp.Meta = &APIMeta{}
	}
	resp.Meta.Timestamp = time.Now().UTC()
	resp.Meta.RequestID = logging.RequestIDFromContext(r.Context())

	data, err := json.Marshal(resp)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Failed to write JSON response")
	}
}

func respondData(w http.ResponseWriter, r *http.Request, data interface{}) {
	respondJSON(w, r, http.StatusOK, &APIResponse{Success: true, Data: data})
}

func respondList[T any](w http.ResponseWriter, r *http.Request, items []T) {
	if items == nil {
		items = []T{}
	}
	count := len(items)
	respondJSON(w, r, http.StatusOK, &APIResponse{
		Success: true,
		Data:    items,
		Meta:    &APIMeta{Count: &count},
	})
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details interface{}) {
	respondJSON(w, r, status, &APIResponse{
		Success: false,
		Error: &APIError{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
	})
}
