// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/rollcall/internal/cache"
	"github.com/tomtom215/rollcall/internal/models"
)

var (
	// ErrUnknownEvent is returned when an event ID is not in the backend's list.
	ErrUnknownEvent = errors.New("unknown event")

	// ErrNoEvents is returned when the backend has no events.
	ErrNoEvents = errors.New("no events available")
)

const eventsCacheKey = "events:all"

// Lister is the slice of the backend API the selector needs.
type Lister interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
}

// Selector lists events and resolves event IDs against a cached list.
type Selector struct {
	api   Lister
	cache *cache.Cache[[]models.Event]

	// fetchMu serializes backend fetches so a cold cache triggers one request.
	fetchMu sync.Mutex
}

// NewSelector creates a selector caching the event list for ttl.
// A zero ttl disables caching.
func NewSelector(api Lister, ttl time.Duration) *Selector {
	return &Selector{
		api:   api,
		cache: cache.New[[]models.Event]("events", ttl),
	}
}

// List returns all events, from cache when fresh.
func (s *Selector) List(ctx context.Context) ([]models.Event, error) {
	if list, ok := s.cache.Get(eventsCacheKey); ok {
		return list, nil
	}

	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()

	if list, ok := s.cache.Get(eventsCacheKey); ok {
		return list, nil
	}
	return s.fetchLocked(ctx)
}

func (s *Selector) fetchLocked(ctx context.Context) ([]models.Event, error) {
	list, err := s.api.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if list == nil {
		list = []models.Event{}
	}
	s.cache.Set(eventsCacheKey, list)
	return list, nil
}

// Default returns the first event, which the dashboard pre-selects.
func (s *Selector) Default(ctx context.Context) (models.Event, error) {
	list, err := s.List(ctx)
	if err != nil {
		return models.Event{}, err
	}
	if len(list) == 0 {
		return models.Event{}, ErrNoEvents
	}
	return list[0], nil
}

// Resolve returns the event with the given ID. A miss against a cached list
// refreshes the list once before failing with ErrUnknownEvent.
func (s *Selector) Resolve(ctx context.Context, eventID string) (models.Event, error) {
	list, err := s.List(ctx)
	if err != nil {
		return models.Event{}, err
	}
	if ev, ok := findEvent(list, eventID); ok {
		return ev, nil
	}

	s.fetchMu.Lock()
	list, err = s.fetchLocked(ctx)
	s.fetchMu.Unlock()
	if err != nil {
		return models.Event{}, err
	}
	if ev, ok := findEvent(list, eventID); ok {
		return ev, nil
	}
	return models.Event{}, fmt.Errorf("%w: %s", ErrUnknownEvent, eventID)
}

// Invalidate drops the cached list.
func (s *Selector) Invalidate() {
	s.cache.Delete(eventsCacheKey)
}

// Close stops the cache sweeper.
func (s *Selector) Close() {
	s.cache.Close()
}

func findEvent(list []models.Event, id string) (models.Event, bool) {
	for _, ev := range list {
		if ev.ID == id {
			return ev, true
		}
	}
	return models.Event{}, false
}
