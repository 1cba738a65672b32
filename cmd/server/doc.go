// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

/*
Package main is the entry point for the Rollcall server.

Rollcall runs the check-in desk of an event RSVP dashboard. Door stations are
browsers that connect over a websocket, stream decoded QR codes from their
camera, and render the station view pushed by the server. The server
validates each code against the RSVP backend, commits the check-in, journals
the attempt and publishes the outcome.

# Application Architecture

	rollcall (root)
	├── data-layer
	│   └── scan-journal (retention pruning)
	├── messaging-layer
	│   ├── websocket-hub
	│   └── checkin-forwarder
	└── api-layer
	    ├── http-server
	    └── stations (tears stations down on shutdown)

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON or console output
 3. Scan journal: BadgerDB
 4. Outcome transport: NATS when enabled, otherwise an in-process channel
 5. Backend client: rate limited, behind a circuit breaker
 6. WebSocket hub and station registry
 7. Event selector with a TTL cache
 8. Chi router and HTTP server
 9. Supervisor tree

# Configuration

	Priority: Environment variables > Config file > Defaults

	SERVER_PORT=8080
	BACKEND_BASE_URL=https://rsvp.example.com/api
	BACKEND_TOKEN=<bearer token>
	JOURNAL_PATH=/data/journal
	NATS_ENABLED=false
	LOG_LEVEL=info
	LOG_FORMAT=json

# Signal Handling

On SIGINT or SIGTERM the supervisor stops the HTTP server, tears down every
station (waiting for in-flight validations), closes websocket clients and
finally the journal and the outcome transport.
*/
package main
