// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

/*
Package supervisor runs Rollcall's long-lived services under a suture/v4 tree.

	rollcall (root)
	├── data-layer       scan journal retention
	├── messaging-layer  websocket hub, check-in forwarder
	└── api-layer        HTTP server, station shutdown

Each layer restarts its own failing services with exponential backoff, so a
crashing forwarder does not take the HTTP server down. Supervisor events are
logged through sutureslog into the zerolog pipeline.
*/
package supervisor
