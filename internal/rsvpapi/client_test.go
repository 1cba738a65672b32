// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package rsvpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const validateBody = `{"valid":true,"attendee":{"id":"a1","name":"Ada Lovelace","company":"Analytical","title":"Engineer",
"email":"ada@example.com","registrationId":"R-1","eventId":"E1","status":"Confirmed","checkedInAt":null,"plusOne":null,
"alreadyCheckedIn":false}}`

const commitBody = `{"success":true,"attendee":{"id":"a1","name":"Ada Lovelace","email":"ada@example.com",
"registrationId":"R-1","eventId":"E1","status":"Confirmed","checkedInAt":"2024-01-01T10:00:00Z","plusOne":null}}`

func newTestClient(url string, cfg Config) *HTTPClient {
	cfg.BaseURL = url
	return NewHTTPClient(cfg)
}

func TestNewHTTPClient_TrimsTrailingSlash(t *testing.T) {
	t.Parallel()

	client := NewHTTPClient(Config{BaseURL: "https://rsvp.example.com/api/"})
	checkStringEqual(t, "baseURL", client.baseURL, "https://rsvp.example.com/api")
	checkTrue(t, "httpClient not nil", client.httpClient != nil)
	checkTrue(t, "default timeout", client.httpClient.Timeout == 30*time.Second)
}

func TestHTTPClient_ListEvents(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		checkStringEqual(t, "path", r.URL.Path, "/event")
		checkStringEqual(t, "method", r.Method, http.MethodGet)
		checkStringEqual(t, "authorization", r.Header.Get("Authorization"), "Bearer opaque-token")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"E1","name":"Launch"},{"id":"E2","name":"Meetup"}]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, Config{Token: NewStaticToken("opaque-token")})
	events, err := client.ListEvents(context.Background())
	checkNoError(t, err)
	checkIntEqual(t, "events", len(events), 2)
	checkStringEqual(t, "first event", events[0].ID, "E1")
}

func TestHTTPClient_ValidateCode(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		checkStringEqual(t, "path", r.URL.EscapedPath(), "/qr/validate/QR%2F123")
		checkStringEqual(t, "method", r.Method, http.MethodGet)
		_, _ = w.Write([]byte(validateBody))
	}))
	defer server.Close()

	client := newTestClient(server.URL, Config{})
	resp, err := client.ValidateCode(context.Background(), "QR/123")
	checkNoError(t, err)
	checkTrue(t, "valid", resp.Valid)
	if resp.Attendee == nil {
		t.Fatal("expected attendee")
	}
	checkStringEqual(t, "eventId", resp.Attendee.EventID, "E1")
	checkTrue(t, "not checked in", !resp.Attendee.IsCheckedIn())
}

func TestHTTPClient_CommitCheckIn(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		checkStringEqual(t, "path", r.URL.Path, "/qr/check-in/QR123")
		checkStringEqual(t, "method", r.Method, http.MethodPost)
		_, _ = w.Write([]byte(commitBody))
	}))
	defer server.Close()

	client := newTestClient(server.URL, Config{})
	resp, err := client.CommitCheckIn(context.Background(), "QR123")
	checkNoError(t, err)
	checkTrue(t, "success", resp.Success)
	if resp.Attendee == nil || resp.Attendee.CheckedInAt == nil {
		t.Fatalf("expected checked-in attendee, got %+v", resp.Attendee)
	}
	want := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	checkTrue(t, "checkedInAt", resp.Attendee.CheckedInAt.Equal(want))
}

func TestHTTPClient_ErrorResponses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantExpired bool
	}{
		{"json message", http.StatusConflict, `{"message":"Already checked in"}`, "Already checked in", false},
		{"empty body", http.StatusBadGateway, ``, "Bad Gateway", false},
		{"non json body", http.StatusInternalServerError, `<html>oops</html>`, "Internal Server Error", false},
		{"unauthorized", http.StatusUnauthorized, `{"message":"Token expired"}`, "Token expired", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			var expiredCalls atomic.Int32
			client := newTestClient(server.URL, Config{
				OnSessionExpired: func(error) { expiredCalls.Add(1) },
			})

			_, err := client.CommitCheckIn(context.Background(), "QR1")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T: %v", err, err)
			}
			checkIntEqual(t, "status", apiErr.StatusCode, tt.status)
			checkStringEqual(t, "message", Message(err), tt.wantMessage)
			checkTrue(t, "session expired matches", errors.Is(err, ErrSessionExpired) == tt.wantExpired)

			wantCalls := int32(0)
			if tt.wantExpired {
				wantCalls = 1
			}
			checkTrue(t, "session expiry hook calls", expiredCalls.Load() == wantCalls)
		})
	}
}

func TestHTTPClient_TransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client := newTestClient(url, Config{Timeout: time.Second})
	_, err := client.ValidateCode(context.Background(), "QR1")
	if err == nil {
		t.Fatal("expected transport error")
	}
	var apiErr *APIError
	checkTrue(t, "not an APIError", !errors.As(err, &apiErr))
	checkTrue(t, "message is error text", Message(err) == err.Error())
}

func TestHTTPClient_ExpiredTokenSkipsNetwork(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	token := NewStaticToken(signedToken(t, time.Now().Add(-time.Minute)))
	var expiredCalls atomic.Int32
	client := newTestClient(server.URL, Config{
		Token:            token,
		OnSessionExpired: func(error) { expiredCalls.Add(1) },
	})

	_, err := client.ValidateCode(context.Background(), "QR1")
	checkTrue(t, "session expired", errors.Is(err, ErrSessionExpired))
	checkTrue(t, "no request sent", hits.Load() == 0)
	checkTrue(t, "hook fired once", expiredCalls.Load() == 1)
}

func TestHTTPClient_RateLimitHonoursContext(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, Config{RequestsPerSecond: 0.001, Burst: 1})
	_, err := client.ListEvents(context.Background())
	checkNoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := client.ListEvents(ctx); err == nil {
		t.Fatal("expected throttled request to fail once the context deadline cannot be met")
	}
}
