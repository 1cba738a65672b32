// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package services

import (
	"context"
	"fmt"
	"time"
)

// ShutdownFunc releases a component within the deadline of ctx.
type ShutdownFunc func(ctx context.Context) error

// ShutdownService idles until the tree stops, then runs a shutdown function
// with its own deadline. It gives components without a run loop, such as
// the station registry, a place in the supervised shutdown order.
type ShutdownService struct {
	name    string
	fn      ShutdownFunc
	timeout time.Duration
}

// NewShutdownService creates a service named name that calls fn on stop.
// Non-positive timeouts default to 10s.
func NewShutdownService(name string, fn ShutdownFunc, timeout time.Duration) *ShutdownService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ShutdownService{name: name, fn: fn, timeout: timeout}
}

// Serve blocks until ctx is cancelled and then runs the shutdown function.
func (s *ShutdownService) Serve(ctx context.Context) error {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.fn(shutdownCtx); err != nil {
		return fmt.Errorf("%s shutdown: %w", s.name, err)
	}
	return ctx.Err()
}

func (s *ShutdownService) String() string {
	return s.name
}
