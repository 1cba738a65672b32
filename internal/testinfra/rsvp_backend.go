// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package testinfra

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/rollcall/internal/models"
)

// RequestCapture is one request received by the fake backend.
type RequestCapture struct {
	Method        string
	Path          string
	Authorization string
	Body          []byte
}

// FakeRSVPBackend is an in-memory RSVP backend served over httptest.
type FakeRSVPBackend struct {
	Server *httptest.Server

	mu        sync.Mutex
	events    []models.Event
	attendees map[string]models.AttendeeSnapshot
	captures  []RequestCapture
	token     string
	failCode  int
	failMsg   string
	now       func() time.Time
}

// NewFakeRSVPBackend starts a fake backend that is closed when the test ends.
func NewFakeRSVPBackend(t testing.TB) *FakeRSVPBackend {
	t.Helper()

	b := &FakeRSVPBackend{
		attendees: make(map[string]models.AttendeeSnapshot),
		now:       time.Now,
	}

	r := chi.NewRouter()
	r.Use(b.capture)
	r.Use(b.authorize)
	r.Get("/event", b.handleListEvents)
	r.Get("/qr/validate/{code}", b.handleValidate)
	r.Post("/qr/check-in/{code}", b.handleCheckIn)

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the server URL.
func (b *FakeRSVPBackend) URL() string {
	return b.Server.URL
}

// AddEvent registers an event.
func (b *FakeRSVPBackend) AddEvent(ev models.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
}

// AddAttendee registers an attendee reachable by QR code.
func (b *FakeRSVPBackend) AddAttendee(code string, a models.AttendeeSnapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attendees[code] = a
}

// RequireToken makes every request without "Bearer token" fail with 401.
func (b *FakeRSVPBackend) RequireToken(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = token
}

// FailWith makes every request fail with status and message. A zero status
// restores normal behavior.
func (b *FakeRSVPBackend) FailWith(status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failCode = status
	b.failMsg = message
}

// CheckedInAt returns the commit time recorded for a code.
func (b *FakeRSVPBackend) CheckedInAt(code string) (time.Time, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.attendees[code]
	if !ok || a.CheckedInAt == nil {
		return time.Time{}, false
	}
	return *a.CheckedInAt, true
}

// Captures returns every request received so far.
func (b *FakeRSVPBackend) Captures() []RequestCapture {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RequestCapture, len(b.captures))
	copy(out, b.captures)
	return out
}

// CountRequests counts captured requests whose path starts with prefix.
func (b *FakeRSVPBackend) CountRequests(method, prefix string) int {
	n := 0
	for _, c := range b.Captures() {
		if c.Method == method && strings.HasPrefix(c.Path, prefix) {
			n++
		}
	}
	return n
}

func (b *FakeRSVPBackend) capture(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
		}
		b.mu.Lock()
		b.captures = append(b.captures, RequestCapture{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			Body:          body,
		})
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *FakeRSVPBackend) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		token, failCode, failMsg := b.token, b.failCode, b.failMsg
		b.mu.Unlock()

		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		if failCode != 0 {
			writeJSON(w, failCode, map[string]string{"message": failMsg})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *FakeRSVPBackend) handleListEvents(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	events := append([]models.Event{}, b.events...)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, events)
}

func (b *FakeRSVPBackend) handleValidate(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	b.mu.Lock()
	a, ok := b.attendees[code]
	b.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "QR code not found"})
		return
	}
	writeJSON(w, http.StatusOK, models.ValidateResponse{
		Valid: true,
		Attendee: &models.ValidatedAttendee{
			AttendeeSnapshot: a,
			AlreadyCheckedIn: a.CheckedInAt != nil,
		},
	})
}

func (b *FakeRSVPBackend) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	b.mu.Lock()
	a, ok := b.attendees[code]
	already := ok && a.CheckedInAt != nil
	if ok && !already {
		now := b.now().UTC()
		a.CheckedInAt = &now
		b.attendees[code] = a
	}
	b.mu.Unlock()

	switch {
	case !ok:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "QR code not found"})
	case already:
		writeJSON(w, http.StatusConflict, map[string]string{"message": "Attendee already checked in"})
	default:
		writeJSON(w, http.StatusOK, models.CommitResponse{Success: true, Attendee: &a})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
