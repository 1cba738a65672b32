// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/tomtom215/rollcall/internal/logging"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	return errors.Join(
		c.validateServer(),
		c.validateBackend(),
		c.validateJournal(),
		c.validateNATS(),
		c.validateEventsCache(),
		c.validateLogging(),
	)
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("HTTP_READ_TIMEOUT and HTTP_WRITE_TIMEOUT must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.RateLimitRequests < 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must not be negative")
	}
	if c.Server.RateLimitRequests > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive when rate limiting is enabled")
	}
	if c.Server.MaxStations < 1 {
		return fmt.Errorf("MAX_STATIONS must be at least 1")
	}
	return nil
}

func (c *Config) validateBackend() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("RSVP_API_URL is required")
	}
	if err := validateHTTPURL(c.Backend.BaseURL, "RSVP_API_URL"); err != nil {
		return err
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("RSVP_API_TIMEOUT must be positive")
	}
	if c.Backend.RequestsPerSecond < 0 {
		return fmt.Errorf("RSVP_API_RPS must not be negative")
	}
	if c.Backend.RequestsPerSecond > 0 && c.Backend.Burst < 1 {
		return fmt.Errorf("RSVP_API_BURST must be at least 1 when RSVP_API_RPS is set")
	}
	return nil
}

func (c *Config) validateJournal() error {
	if !c.Journal.InMemory && strings.TrimSpace(c.Journal.Path) == "" {
		return fmt.Errorf("JOURNAL_PATH is required unless JOURNAL_IN_MEMORY=true")
	}
	if c.Journal.Retention < 0 {
		return fmt.Errorf("JOURNAL_RETENTION must not be negative")
	}
	return nil
}

func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}
	if err := validateNATSURL(c.NATS.URL); err != nil {
		return fmt.Errorf("NATS_URL is invalid: %w", err)
	}
	if strings.TrimSpace(c.NATS.Subject) == "" {
		return fmt.Errorf("NATS_SUBJECT is required when NATS_ENABLED=true")
	}
	return nil
}

func (c *Config) validateEventsCache() error {
	if c.EventsCache.TTL < 0 {
		return fmt.Errorf("EVENTS_CACHE_TTL must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a recognized level", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// validateHTTPURL validates that a URL is an http(s) base URL without query parameters.
// A path prefix is allowed since the backend may be mounted under one.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}

	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}

	return nil
}

// validateNATSURL accepts nats://, tls://, ws:// and wss:// URLs.
func validateNATSURL(rawURL string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	validSchemes := map[string]bool{"nats": true, "tls": true, "ws": true, "wss": true}
	if !validSchemes[parsedURL.Scheme] {
		return fmt.Errorf("scheme must be nats, tls, ws, or wss, got: %s", parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("host is required (e.g., localhost:4222)")
	}

	return nil
}
