// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

/*
Package api serves the Rollcall HTTP API with the chi router.

Routes, all under /api/v1:

	GET  /health/live                      liveness check
	GET  /health/ready                     readiness check
	GET  /events                           events from the backend (cached)
	GET  /events/default                   the event pre-selected for scanning
	GET  /events/{eventId}/checkins        journaled attempts, newest first
	GET  /events/{eventId}/checkins/summary counts per outcome
	GET  /stations                         every known station view
	GET  /stations/{station}               one station view, 404 if never started
	POST /stations/{station}/start         begin a scan session
	POST /stations/{station}/stop          end the session
	POST /stations/{station}/next          dismiss the result
	POST /stations/{station}/manual        validate a typed code
	GET  /ws?station=<id>                  websocket for a station or observer

/metrics is served at the root by promhttp.

Every JSON response uses the APIResponse envelope:

	{"success": false, "error": {"code": "CAMERA_ERROR", "message": "...",
	 "details": {...}, "request_id": "..."}, "meta": {"timestamp": "..."}}
*/
package api
