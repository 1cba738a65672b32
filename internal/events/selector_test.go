// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package events

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/rollcall/internal/models"
)

type stubLister struct {
	mu     sync.Mutex
	events []models.Event
	err    error
	calls  atomic.Int32
}

func (s *stubLister) ListEvents(context.Context) ([]models.Event, error) {
	s.calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]models.Event(nil), s.events...), nil
}

func (s *stubLister) set(events ...models.Event) {
	s.mu.Lock()
	s.events = events
	s.mu.Unlock()
}

func newTestSelector(t *testing.T, api Lister) *Selector {
	t.Helper()
	s := NewSelector(api, time.Hour)
	t.Cleanup(s.Close)
	return s
}

func TestSelector_ListCaches(t *testing.T) {
	t.Parallel()

	api := &stubLister{}
	api.set(models.Event{ID: "E1", Name: "Gala"}, models.Event{ID: "E2", Name: "Meetup"})
	s := newTestSelector(t, api)

	for i := 0; i < 3; i++ {
		list, err := s.List(context.Background())
		if err != nil {
			t.Fatalf("List() error: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("List() returned %d events, want 2", len(list))
		}
	}
	if n := api.calls.Load(); n != 1 {
		t.Errorf("backend called %d times, want 1", n)
	}

	s.Invalidate()
	if _, err := s.List(context.Background()); err != nil {
		t.Fatalf("List() after invalidate: %v", err)
	}
	if n := api.calls.Load(); n != 2 {
		t.Errorf("backend called %d times after invalidate, want 2", n)
	}
}

func TestSelector_Default(t *testing.T) {
	t.Parallel()

	t.Run("first event", func(t *testing.T) {
		t.Parallel()
		api := &stubLister{}
		api.set(models.Event{ID: "E1"}, models.Event{ID: "E2"})
		ev, err := newTestSelector(t, api).Default(context.Background())
		if err != nil || ev.ID != "E1" {
			t.Fatalf("Default() = %+v, %v; want E1", ev, err)
		}
	})

	t.Run("no events", func(t *testing.T) {
		t.Parallel()
		_, err := newTestSelector(t, &stubLister{}).Default(context.Background())
		if !errors.Is(err, ErrNoEvents) {
			t.Fatalf("Default() error = %v, want ErrNoEvents", err)
		}
	})

	t.Run("backend failure", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		_, err := newTestSelector(t, &stubLister{err: boom}).Default(context.Background())
		if !errors.Is(err, boom) {
			t.Fatalf("Default() error = %v, want wrapped boom", err)
		}
	})
}

func TestSelector_Resolve(t *testing.T) {
	t.Parallel()

	api := &stubLister{}
	api.set(models.Event{ID: "E1", Name: "Gala"})
	s := newTestSelector(t, api)

	ev, err := s.Resolve(context.Background(), "E1")
	if err != nil || ev.Name != "Gala" {
		t.Fatalf("Resolve(E1) = %+v, %v", ev, err)
	}

	// An event created after the list was cached is found by the refresh.
	api.set(models.Event{ID: "E1"}, models.Event{ID: "E3", Name: "New"})
	ev, err = s.Resolve(context.Background(), "E3")
	if err != nil || ev.Name != "New" {
		t.Fatalf("Resolve(E3) = %+v, %v", ev, err)
	}

	_, err = s.Resolve(context.Background(), "nope")
	if !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("Resolve(nope) error = %v, want ErrUnknownEvent", err)
	}
}

func TestSelector_ConcurrentColdCache(t *testing.T) {
	t.Parallel()

	api := &stubLister{}
	api.set(models.Event{ID: "E1"})
	s := newTestSelector(t, api)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.List(context.Background()); err != nil {
				t.Errorf("List() error: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := api.calls.Load(); n != 1 {
		t.Errorf("backend called %d times, want 1", n)
	}
}
