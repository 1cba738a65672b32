// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

/*
Package validation validates API request bodies and query parameters using
go-playground/validator v10.

A single validator instance is shared process-wide because validator caches
struct metadata on first use. Two custom tags are registered:

  - station: a door station ID (letters, digits, '-' and '_', at most 64)
  - notblank: a string with at least one non-whitespace character

Failures are returned as *RequestValidationError, which converts to the
VALIDATION_ERROR body used by the HTTP API:

	var req validation.ManualCodeRequest
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}
*/
package validation
