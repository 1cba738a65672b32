// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

/*
Package config loads Rollcall's configuration.

Configuration is layered with koanf, later layers overriding earlier ones:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file (CONFIG_PATH, config.yaml, /etc/rollcall/config.yaml)
 3. Environment variables

Only environment variables listed in envTransformFunc are read, so unrelated
variables in the process environment never leak into the configuration.

# Environment Variables

Server:
  - HTTP_HOST, HTTP_PORT: bind address (default 0.0.0.0:3857)
  - HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT
  - CORS_ORIGINS: comma-separated list of allowed origins
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW: per-IP API rate limit
  - MAX_STATIONS: how many door stations may be started or attached

Backend:
  - RSVP_API_URL: base URL of the RSVP REST backend (required)
  - RSVP_API_TOKEN: bearer token sent with every request
  - RSVP_API_TIMEOUT, RSVP_API_RPS, RSVP_API_BURST

Journal:
  - JOURNAL_PATH, JOURNAL_IN_MEMORY, JOURNAL_RETENTION

NATS:
  - NATS_ENABLED, NATS_URL, NATS_SUBJECT, NATS_MAX_RECONNECTS

Other:
  - EVENTS_CACHE_TTL
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
*/
package config
