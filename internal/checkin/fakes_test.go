// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package checkin

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/rollcall/internal/camera"
	"github.com/tomtom215/rollcall/internal/logging"
	"github.com/tomtom215/rollcall/internal/models"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

// fakeCamera records opens and closes. Its decoder keeps the most recent
// callback even after close so tests can simulate late frames.
type fakeCamera struct {
	mu         sync.Mutex
	devices    []camera.Device
	enumErr    error
	openErr    error
	onDecode   camera.DecodeFunc
	lastDecode camera.DecodeFunc
	openedID   string

	// duringOpen runs inside Open after the decoder is subscribed and
	// before Open returns, like a browser that decodes before it replies.
	duringOpen func(onDecode camera.DecodeFunc)

	opens  atomic.Int32
	closes atomic.Int32
}

func newFakeCamera() *fakeCamera {
	return &fakeCamera{devices: []camera.Device{
		{ID: "front", Label: "Front Camera"},
		{ID: "back", Label: "Back Camera"},
	}}
}

func (c *fakeCamera) Devices(context.Context) ([]camera.Device, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.devices, c.enumErr
}

func (c *fakeCamera) Open(_ context.Context, deviceID string, onDecode camera.DecodeFunc) (camera.Stream, error) {
	c.mu.Lock()
	if c.openErr != nil {
		c.mu.Unlock()
		return nil, c.openErr
	}
	c.opens.Add(1)
	c.openedID = deviceID
	c.onDecode = onDecode
	c.lastDecode = onDecode
	duringOpen := c.duringOpen
	c.mu.Unlock()

	if duringOpen != nil {
		duringOpen(onDecode)
	}
	return &fakeStream{cam: c}, nil
}

// decode delivers code through the live subscription, if any.
func (c *fakeCamera) decode(code string) {
	c.mu.Lock()
	fn := c.onDecode
	c.mu.Unlock()
	if fn != nil {
		fn(code)
	}
}

// leakyDecode delivers code even if the stream was closed.
func (c *fakeCamera) leakyDecode(code string) {
	c.mu.Lock()
	fn := c.lastDecode
	c.mu.Unlock()
	if fn != nil {
		fn(code)
	}
}

type fakeStream struct {
	cam *fakeCamera
}

func (s *fakeStream) Close() error {
	s.cam.mu.Lock()
	s.cam.onDecode = nil
	s.cam.mu.Unlock()
	s.cam.closes.Add(1)
	return nil
}

// fakeAPI is a scripted backend.
type fakeAPI struct {
	validateResp *models.ValidateResponse
	validateErr  error
	commitResp   *models.CommitResponse
	commitErr    error

	// gate, when set, blocks ValidateCode until closed.
	gate chan struct{}
	// onValidate runs at the start of ValidateCode.
	onValidate func()

	validateCalls atomic.Int32
	commitCalls   atomic.Int32
	lastCode      atomic.Value
}

func (a *fakeAPI) ListEvents(context.Context) ([]models.Event, error) {
	return []models.Event{{ID: "E1", Name: "Launch"}}, nil
}

func (a *fakeAPI) ValidateCode(ctx context.Context, code string) (*models.ValidateResponse, error) {
	a.validateCalls.Add(1)
	a.lastCode.Store(code)
	if a.onValidate != nil {
		a.onValidate()
	}
	if a.gate != nil {
		select {
		case <-a.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return a.validateResp, a.validateErr
}

func (a *fakeAPI) CommitCheckIn(_ context.Context, code string) (*models.CommitResponse, error) {
	a.commitCalls.Add(1)
	a.lastCode.Store(code)
	return a.commitResp, a.commitErr
}

// recorder captures attempts handed to recorders.
type recorder struct {
	mu       sync.Mutex
	attempts []Attempt
}

func (r *recorder) RecordAttempt(_ context.Context, a Attempt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, a)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.attempts)
}

func validAttendee(eventID string) *models.ValidatedAttendee {
	return &models.ValidatedAttendee{AttendeeSnapshot: models.AttendeeSnapshot{
		ID:             "a1",
		Name:           "Ada Lovelace",
		Email:          "ada@example.com",
		RegistrationID: "R-1",
		EventID:        eventID,
		Status:         models.AttendeeConfirmed,
	}}
}

func checkedInAttendee(eventID string, at time.Time) *models.AttendeeSnapshot {
	a := validAttendee(eventID).AttendeeSnapshot
	a.CheckedInAt = &at
	return &a
}

func newTestController(cam *fakeCamera, api *fakeAPI, recorders ...Recorder) *Controller {
	return NewController(Config{
		Station:         "door-1",
		Camera:          cam,
		API:             api,
		Recorders:       recorders,
		ValidateTimeout: 5 * time.Second,
	})
}

// waitForStatus polls until the controller reaches status.
func waitForStatus(t *testing.T, c *Controller, status models.ScanStatus) models.StationView {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if v := c.View(); v.Status == status {
			return v
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for status %s, last view %+v", status, c.View())
	return models.StationView{}
}
