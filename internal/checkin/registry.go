// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package checkin

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"sync"

	"github.com/tomtom215/rollcall/internal/models"
)

// stationIDPattern restricts station IDs to URL and key safe characters.
var stationIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidStationID reports whether id can name a station.
func ValidStationID(id string) bool {
	return stationIDPattern.MatchString(id)
}

// Factory builds the controller of a newly seen station.
type Factory func(station string) *Controller

// DefaultMaxStations bounds how many stations a registry admits.
const DefaultMaxStations = 256

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithMaxStations overrides DefaultMaxStations. Values below 1 are ignored.
func WithMaxStations(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.maxStations = n
		}
	}
}

// Registry holds one Controller per door station. Controllers live until
// Shutdown, so the number of stations is capped.
type Registry struct {
	mu          sync.Mutex
	factory     Factory
	controllers map[string]*Controller
	maxStations int
	closed      bool
}

// NewRegistry creates a registry that builds controllers with factory.
func NewRegistry(factory Factory, opts ...RegistryOption) *Registry {
	r := &Registry{
		factory:     factory,
		controllers: make(map[string]*Controller),
		maxStations: DefaultMaxStations,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the station's controller, creating it on first use. Only
// operations that drive a station call it; reads use Lookup.
func (r *Registry) Get(station string) (*Controller, error) {
	if !ValidStationID(station) {
		return nil, ErrInvalidStation
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}
	if c, ok := r.controllers[station]; ok {
		return c, nil
	}
	if len(r.controllers) >= r.maxStations {
		return nil, ErrTooManyStations
	}
	c := r.factory(station)
	r.controllers[station] = c
	return c, nil
}

// Lookup returns the station's controller without creating it.
func (r *Registry) Lookup(station string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.controllers[station]
	return c, ok
}

// Views returns the view of every known station, ordered by station ID.
func (r *Registry) Views() []models.StationView {
	r.mu.Lock()
	controllers := make([]*Controller, 0, len(r.controllers))
	for _, c := range r.controllers {
		controllers = append(controllers, c)
	}
	r.mu.Unlock()

	views := make([]models.StationView, 0, len(controllers))
	for _, c := range controllers {
		views = append(views, c.View())
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Station < views[j].Station })
	return views
}

// Shutdown tears down every station and waits for in-flight validations.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	controllers := make([]*Controller, 0, len(r.controllers))
	for _, c := range r.controllers {
		controllers = append(controllers, c)
	}
	r.mu.Unlock()

	var errs []error
	for _, c := range controllers {
		if err := c.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
