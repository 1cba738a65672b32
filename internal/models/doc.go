// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

/*
Package models defines data structures shared across Rollcall.

Key Components:

  - Event: an event returned by the RSVP backend for the event selector
  - AttendeeSnapshot: read-only attendee projection returned by the backend
  - ValidateResponse / CommitResponse: wire shapes of the QR endpoints
  - CheckInResult: outcome of one scan attempt
  - StationView: the value object pushed to a door station's browser
  - ScanRecord: one journaled scan attempt

Wire fields use camelCase because the RSVP backend and the browser terminal
both speak camelCase JSON.
*/
package models
