// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

/*
Package rsvpapi is the REST client for the RSVP backend.

It covers the three endpoints the door station needs:

	GET  /event                 list events for the selector
	GET  /qr/validate/{code}    read-only lookup of a badge code
	POST /qr/check-in/{code}    commit a check-in

Requests carry a bearer token from a TokenSource. Non-2xx responses are
decoded as {"message": "..."} into an *APIError. A 401 response, or a token
whose exp claim has passed, yields an error matching ErrSessionExpired and
fires the OnSessionExpired hook.

CircuitBreakerClient wraps any API with a sony/gobreaker circuit breaker so a
down backend fails fast instead of stalling every station.
*/
package rsvpapi
