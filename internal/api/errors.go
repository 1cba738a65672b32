// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/rollcall/internal/camera"
	"github.com/tomtom215/rollcall/internal/checkin"
	"github.com/tomtom215/rollcall/internal/events"
	"github.com/tomtom215/rollcall/internal/logging"
	"github.com/tomtom215/rollcall/internal/rsvpapi"
	"github.com/tomtom215/rollcall/internal/validation"
)

// errorResponse maps a domain error to a status, code and message.
func errorResponse(err error) (int, string, string) {
	var (
		camErr *camera.CameraError
		apiErr *rsvpapi.APIError
	)

	switch {
	case errors.As(err, &camErr):
		return http.StatusConflict, ErrCodeCameraError, camErr.Message()
	case errors.Is(err, checkin.ErrNoEventSelected), errors.Is(err, events.ErrNoEvents):
		return http.StatusBadRequest, ErrCodeNoEventSelected, "No event selected"
	case errors.Is(err, events.ErrUnknownEvent):
		return http.StatusNotFound, ErrCodeUnknownEvent, "Event not found"
	case errors.Is(err, checkin.ErrInvalidStation):
		return http.StatusBadRequest, ErrCodeValidation, "Invalid station ID"
	case errors.Is(err, checkin.ErrUnknownStation):
		return http.StatusNotFound, ErrCodeUnknownStation, "Station not found"
	case errors.Is(err, checkin.ErrTooManyStations):
		return http.StatusServiceUnavailable, ErrCodeTooManyStations, "Station limit reached"
	case errors.Is(err, checkin.ErrBusy):
		return http.StatusConflict, ErrCodeStationBusy, "Station is busy with another code"
	case errors.Is(err, checkin.ErrInvalidTransition):
		return http.StatusConflict, ErrCodeInvalidState, err.Error()
	case errors.Is(err, checkin.ErrSessionEnded):
		return http.StatusConflict, ErrCodeSessionEnded, "Scan session ended before the camera opened"
	case errors.Is(err, checkin.ErrClosed):
		return http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Station is shutting down"
	case errors.Is(err, rsvpapi.ErrSessionExpired):
		return http.StatusUnauthorized, ErrCodeSessionExpired, "Your session has expired"
	case errors.As(err, &apiErr):
		return http.StatusBadGateway, ErrCodeBackendError, rsvpapi.Message(err)
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrCodeServiceUnavailable, "Request timed out"
	default:
		return http.StatusInternalServerError, ErrCodeInternalError, "Internal server error"
	}
}

// respondErr writes the error response for err and logs server-side failures.
func respondErr(w http.ResponseWriter, r *http.Request, err error, details interface{}) {
	status, code, message := errorResponse(err)
	if status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).Str("code", code).Msg("API error")
	}
	respondError(w, r, status, code, message, details)
}

// respondValidation writes a 400 VALIDATION_ERROR for a failed request.
func respondValidation(w http.ResponseWriter, r *http.Request, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
}
