// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Backend     BackendConfig     `koanf:"backend"`
	Journal     JournalConfig     `koanf:"journal"`
	NATS        NATSConfig        `koanf:"nats"`
	EventsCache EventsCacheConfig `koanf:"events_cache"`
	Logging     LoggingConfig     `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`

	// RateLimitRequests per RateLimitWindow per client IP. Zero disables limiting.
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`

	// MaxStations caps how many door stations may be started or attached.
	MaxStations int `koanf:"max_stations"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// BackendConfig describes the RSVP REST backend.
type BackendConfig struct {
	BaseURL string        `koanf:"base_url"`
	Token   string        `koanf:"token"`
	Timeout time.Duration `koanf:"timeout"`

	// RequestsPerSecond bounds outbound calls. Zero means unlimited.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`
}

// JournalConfig holds scan journal storage settings
type JournalConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`

	// Retention is how long scan records are kept. Zero keeps them forever.
	Retention time.Duration `koanf:"retention"`
}

// NATSConfig controls outcome publishing to NATS.
// When disabled, outcomes are published on an in-process channel.
type NATSConfig struct {
	Enabled       bool   `koanf:"enabled"`
	URL           string `koanf:"url"`
	Subject       string `koanf:"subject"`
	MaxReconnects int    `koanf:"max_reconnects"`
}

// EventsCacheConfig controls how long the event list is cached.
type EventsCacheConfig struct {
	TTL time.Duration `koanf:"ttl"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	Caller bool `koanf:"caller"`
}

// Load reads configuration from defaults, file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
