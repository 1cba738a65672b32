// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/rollcall/internal/camera"
	"github.com/tomtom215/rollcall/internal/checkin"
	"github.com/tomtom215/rollcall/internal/events"
	"github.com/tomtom215/rollcall/internal/journal"
	"github.com/tomtom215/rollcall/internal/logging"
	"github.com/tomtom215/rollcall/internal/models"
	"github.com/tomtom215/rollcall/internal/rsvpapi"
	"github.com/tomtom215/rollcall/internal/testinfra"
	ws "github.com/tomtom215/rollcall/internal/websocket"
)

//nolint:gochecknoinits // quiet logger for tests
func init() {
	logging.Init(logging.Config{Level: "info", Format: "console", Output: io.Discard})
}

const testTimeout = 5 * time.Second

// doorCamera is a station camera whose decoder is driven by the test.
type doorCamera struct {
	mu       sync.Mutex
	openErr  error
	onDecode camera.DecodeFunc
}

func (c *doorCamera) Devices(context.Context) ([]camera.Device, error) {
	return []camera.Device{{ID: "front", Label: "Front"}, {ID: "back", Label: "Back Camera"}}, nil
}

func (c *doorCamera) Open(_ context.Context, _ string, onDecode camera.DecodeFunc) (camera.Stream, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.openErr != nil {
		return nil, c.openErr
	}
	c.onDecode = onDecode
	return &doorStream{cam: c}, nil
}

func (c *doorCamera) scan(code string) {
	c.mu.Lock()
	fn := c.onDecode
	c.mu.Unlock()
	if fn != nil {
		fn(code)
	}
}

type doorStream struct{ cam *doorCamera }

func (s *doorStream) Close() error {
	s.cam.mu.Lock()
	s.cam.onDecode = nil
	s.cam.mu.Unlock()
	return nil
}

// testEnv is a full API stack against a fake RSVP backend.
type testEnv struct {
	backend  *testinfra.FakeRSVPBackend
	journal  *journal.Store
	hub      *ws.Hub
	stations *checkin.Registry
	server   *httptest.Server

	mu      sync.Mutex
	cameras map[string]*doorCamera
}

type envOptions struct {
	noEvents    bool
	readiness   []ReadinessCheck
	maxStations int
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	backend := testinfra.NewFakeRSVPBackend(t)
	if !opts.noEvents {
		backend.AddEvent(models.Event{ID: "E1", Name: "Spring Gala"})
		backend.AddEvent(models.Event{ID: "E2", Name: "Summer Mixer"})
	}
	backend.AddAttendee("QR-ADA", models.AttendeeSnapshot{ID: "a1", Name: "Ada", EventID: "E1", Status: models.AttendeeConfirmed})
	backend.AddAttendee("QR-BOB", models.AttendeeSnapshot{ID: "a2", Name: "Bob", EventID: "E2", Status: models.AttendeeConfirmed})

	client := rsvpapi.NewHTTPClient(rsvpapi.Config{BaseURL: backend.URL(), Timeout: testTimeout})

	store, err := journal.Open(journal.Config{InMemory: true})
	if err != nil {
		t.Fatalf("journal.Open() error: %v", err)
	}

	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	hubDone := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(hubDone)
	}()

	env := &testEnv{backend: backend, journal: store, hub: hub, cameras: make(map[string]*doorCamera)}

	registry := checkin.NewRegistry(func(station string) *checkin.Controller {
		ctrl := checkin.NewController(checkin.Config{
			Station:   station,
			Camera:    env.camera(station),
			API:       client,
			Recorders: []checkin.Recorder{store},
		})
		ctrl.OnChange(hub.BroadcastStationView)
		return ctrl
	}, checkin.WithMaxStations(opts.maxStations))
	env.stations = registry

	selector := events.NewSelector(client, time.Minute)

	handler := NewHandler(HandlerConfig{
		Events:      selector,
		Stations:    registry,
		Journal:     store,
		Hub:         hub,
		CORSOrigins: []string{"https://dash.example.com"},
		Readiness:   opts.readiness,
	})
	mw := NewChiMiddleware(&ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{"https://dash.example.com"},
		CORSAllowedMethods: []string{"GET", "POST"},
		RateLimitDisabled:  true,
	})
	env.server = httptest.NewServer(NewRouter(handler, mw).SetupChi())

	t.Cleanup(func() {
		env.server.Close()
		shutdownCtx, done := context.WithTimeout(context.Background(), testTimeout)
		defer done()
		_ = registry.Shutdown(shutdownCtx)
		cancel()
		<-hubDone
		selector.Close()
		_ = store.Close()
	})
	return env
}

func (e *testEnv) camera(station string) *doorCamera {
	e.mu.Lock()
	defer e.mu.Unlock()
	cam, ok := e.cameras[station]
	if !ok {
		cam = &doorCamera{}
		e.cameras[station] = cam
	}
	return cam
}

// envelope is a decoded APIResponse with raw data.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code      string          `json:"code"`
		Message   string          `json:"message"`
		Details   json.RawMessage `json:"details"`
		RequestID string          `json:"request_id"`
	} `json:"error"`
	Meta *struct {
		RequestID string `json:"request_id"`
		Count     *int   `json:"count"`
	} `json:"meta"`
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && !errors.Is(err, io.EOF) {
		t.Fatalf("%s %s: decode response: %v", method, path, err)
	}
	return resp.StatusCode, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
	return v
}

func (e *testEnv) waitForView(t *testing.T, station string, status models.ScanStatus) models.StationView {
	t.Helper()
	deadline := time.Now().Add(testTimeout)
	for {
		_, env := e.do(t, http.MethodGet, "/api/v1/stations/"+station, nil)
		view := decodeData[models.StationView](t, env)
		if view.Status == status {
			return view
		}
		if time.Now().After(deadline) {
			t.Fatalf("station %s status = %s, want %s", station, view.Status, status)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(testTimeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
