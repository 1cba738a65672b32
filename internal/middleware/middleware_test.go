// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/rollcall/internal/logging"
	"github.com/tomtom215/rollcall/internal/metrics"
)

//nolint:gochecknoinits // quiet logger for tests
func init() {
	logging.Init(logging.Config{Level: "info", Format: "console", Output: io.Discard})
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		incoming string
		wantSame bool
	}{
		{name: "generated when absent"},
		{name: "upstream id reused", incoming: "abc-123", wantSame: true},
		{name: "oversized id replaced", incoming: strings.Repeat("x", 200)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var seen string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			header := rec.Header().Get(RequestIDHeader)
			if seen == "" || header != seen {
				t.Fatalf("context id %q, header %q", seen, header)
			}
			if tt.wantSame && seen != tt.incoming {
				t.Errorf("id = %q, want upstream %q", seen, tt.incoming)
			}
			if !tt.wantSame && seen == tt.incoming {
				t.Errorf("id %q should have been generated", seen)
			}
		})
	}
}

func TestPrometheusMetrics_UsesRoutePattern(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Post("/mwtest/stations/{station}/start", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	for _, station := range []string{"door-1", "door-2"} {
		req := httptest.NewRequest(http.MethodPost, "/mwtest/stations/"+station+"/start", nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	got := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues(http.MethodPost, "/mwtest/stations/{station}/start", "409"))
	if got != 2 {
		t.Errorf("api_requests_total = %v, want 2", got)
	}
}

func TestPrometheusMetrics_DefaultStatus(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/mwtest/ok", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/mwtest/ok", nil))

	got := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/mwtest/ok", "200"))
	if got != 1 {
		t.Errorf("api_requests_total = %v, want 1", got)
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

//nolint:paralleltest // replaces the global logger
func TestAccessLog_SlowRequestWarns(t *testing.T) {
	out := &syncBuffer{}
	logging.Init(logging.Config{Level: "info", Format: "json", Output: out})
	t.Cleanup(func() {
		logging.Init(logging.Config{Level: "info", Format: "console", Output: io.Discard})
	})

	r := chi.NewRouter()
	r.Use(AccessLog(time.Millisecond))
	r.Get("/mwtest/slow/{id}", func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(5 * time.Millisecond)
		w.WriteHeader(http.StatusAccepted)
	})
	r.Get("/mwtest/fast", func(w http.ResponseWriter, _ *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/mwtest/fast", nil))
	if s := out.String(); s != "" {
		t.Fatalf("fast request logged at info level: %s", s)
	}

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/mwtest/slow/7", nil))
	logged := out.String()
	for _, want := range []string{`"level":"warn"`, `"route":"/mwtest/slow/{id}"`, `"status":202`} {
		if !strings.Contains(logged, want) {
			t.Errorf("log %s missing %s", logged, want)
		}
	}
}
