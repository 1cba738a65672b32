// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package checkin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/rollcall/internal/camera"
	"github.com/tomtom215/rollcall/internal/logging"
	"github.com/tomtom215/rollcall/internal/metrics"
	"github.com/tomtom215/rollcall/internal/models"
	"github.com/tomtom215/rollcall/internal/rsvpapi"
)

// DefaultValidateTimeout bounds one validate plus commit round trip.
const DefaultValidateTimeout = 30 * time.Second

// Attempt is one completed scan attempt handed to recorders.
type Attempt struct {
	Record models.ScanRecord
	Result models.CheckInResult
}

// Recorder receives every completed attempt, including stale ones.
type Recorder interface {
	RecordAttempt(ctx context.Context, attempt Attempt)
}

// Config holds the collaborators of one station.
type Config struct {
	Station         string
	Camera          camera.Camera
	API             rsvpapi.API
	Recorders       []Recorder
	ValidateTimeout time.Duration
	Now             func() time.Time
}

// state is the station's tagged state. Fields other than status are
// meaningful only for the statuses noted beside them.
type state struct {
	status    models.ScanStatus
	eventID   string
	session   uint64                // scanning, validating, result
	guard     *camera.Guard         // scanning
	acquiring bool                  // scanning, until the camera is installed
	deferred  *pending              // validating, while the camera is still opening
	lastCode  string                // validating, result
	manual    bool                  // validating, result
	startedAt time.Time             // validating
	result    *models.CheckInResult // result
	cameraErr string                // idle
}

// Controller is the check-in state machine of one door station.
type Controller struct {
	cfg    Config
	logger zerolog.Logger

	mu          sync.Mutex
	st          state
	nextSession uint64
	version     uint64
	closed      bool
	observers   []func(models.StationView)

	notifyMu  sync.Mutex
	delivered uint64

	inflight sync.WaitGroup
	baseCtx  context.Context
	cancel   context.CancelFunc
}

// NewController creates an idle station controller.
func NewController(cfg Config) *Controller {
	if cfg.ValidateTimeout <= 0 {
		cfg.ValidateTimeout = DefaultValidateTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		cfg:     cfg,
		logger:  logging.WithComponent("checkin").With().Str("station", cfg.Station).Logger(),
		st:      state{status: models.StatusIdle},
		baseCtx: ctx,
		cancel:  cancel,
	}
}

// Station returns the station ID.
func (c *Controller) Station() string {
	return c.cfg.Station
}

// OnChange registers fn to receive the view after transitions. Views arrive
// in transition order and bursts may be coalesced into the latest view.
func (c *Controller) OnChange(fn func(models.StationView)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// View returns the current UI value object.
func (c *Controller) View() models.StationView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Controller) viewLocked() models.StationView {
	v := models.StationView{
		Station:     c.cfg.Station,
		Status:      c.st.status,
		EventID:     c.st.eventID,
		Session:     c.st.session,
		CameraError: c.st.cameraErr,
	}
	if c.st.result != nil {
		r := *c.st.result
		v.Result = &r
	}
	return v
}

// SelectEvent sets the event used by the next session. Only valid when Idle.
func (c *Controller) SelectEvent(eventID string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.st.status != models.StatusIdle {
		status := c.st.status
		c.mu.Unlock()
		return fmt.Errorf("select event while %s: %w", status, ErrInvalidTransition)
	}
	c.st.eventID = eventID
	c.version++
	c.mu.Unlock()

	c.notify()
	return nil
}

// Start opens a scan session for eventID, or for the already selected event
// when eventID is empty. It acquires a camera and begins accepting decodes.
// Camera failures return the station to Idle with the camera error set and
// are returned as *camera.CameraError.
func (c *Controller) Start(ctx context.Context, eventID string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.st.status != models.StatusIdle {
		status := c.st.status
		c.mu.Unlock()
		return fmt.Errorf("start while %s: %w", status, ErrInvalidTransition)
	}
	if eventID == "" {
		eventID = c.st.eventID
	}
	if eventID == "" {
		c.mu.Unlock()
		return ErrNoEventSelected
	}

	c.nextSession++
	session := c.nextSession
	c.st = state{status: models.StatusScanning, eventID: eventID, session: session, acquiring: true}
	c.version++
	c.mu.Unlock()
	c.notify()

	c.logger.Info().Str("event_id", eventID).Uint64("session", session).Msg("Scan session started")

	guard, device, err := camera.Acquire(ctx, c.cfg.Camera, func(code string) {
		c.accept(session, code)
	})
	if err != nil {
		return c.acquireFailed(session, err)
	}
	metrics.StationsScanning.Inc()

	c.mu.Lock()
	if c.closed || c.st.session != session {
		c.mu.Unlock()
		c.release(guard)
		return ErrSessionEnded
	}
	if c.st.deferred != nil {
		// A code arrived while the camera was opening. It is validated only
		// now, after the stream is released.
		p := *c.st.deferred
		p.guard = guard
		c.st.deferred = nil
		c.inflight.Add(1)
		c.mu.Unlock()
		c.dispatch(p)
		return nil
	}
	c.st.guard = guard
	c.st.acquiring = false
	c.mu.Unlock()

	c.logger.Debug().Str("device_id", device.ID).Str("label", device.Label).Msg("Camera acquired")
	return nil
}

func (c *Controller) acquireFailed(session uint64, err error) error {
	metrics.CameraErrors.Inc()

	var camErr *camera.CameraError
	if !errors.As(err, &camErr) {
		camErr = &camera.CameraError{Err: err}
	}

	c.mu.Lock()
	if c.st.session != session || (c.st.status != models.StatusScanning && c.st.deferred == nil) {
		c.mu.Unlock()
		return camErr
	}
	abandoned := c.st.deferred
	c.st = state{status: models.StatusIdle, eventID: c.st.eventID, cameraErr: camErr.Message()}
	c.version++
	c.mu.Unlock()
	abandoned.abandon()
	c.notify()

	c.logger.Warn().Err(err).Msg("Camera acquisition failed")
	return camErr
}

// SubmitManual validates a typed code. Blank input is ignored. The code is
// accepted from Idle or Scanning; the call blocks until the attempt
// completes or ctx is done and returns the view at that moment.
func (c *Controller) SubmitManual(ctx context.Context, code string) (models.StationView, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return c.View(), nil
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return models.StationView{}, ErrClosed
	}
	switch c.st.status {
	case models.StatusIdle:
		if c.st.eventID == "" {
			c.mu.Unlock()
			return models.StationView{}, ErrNoEventSelected
		}
		c.nextSession++
		c.st.session = c.nextSession
	case models.StatusScanning:
	default:
		status := c.st.status
		c.mu.Unlock()
		return models.StationView{}, fmt.Errorf("manual entry while %s: %w", status, ErrBusy)
	}
	p, ready := c.enterValidatingLocked(code, true)
	c.mu.Unlock()

	if ready {
		c.dispatch(p)
	} else {
		c.notify()
	}

	select {
	case <-p.done:
	case <-ctx.Done():
		return c.View(), ctx.Err()
	}
	return c.View(), nil
}

// accept is the decode callback bound to one session. Only the first
// non-empty code of a Scanning session is acted upon.
func (c *Controller) accept(session uint64, code string) {
	code = strings.TrimSpace(code)
	if code == "" {
		return
	}

	c.mu.Lock()
	if c.closed || c.st.session != session || c.st.status != models.StatusScanning {
		c.mu.Unlock()
		return
	}
	p, ready := c.enterValidatingLocked(code, false)
	c.mu.Unlock()

	if ready {
		c.dispatch(p)
	} else {
		c.notify()
	}
}

// pending is an attempt that has entered Validating.
type pending struct {
	guard   *camera.Guard
	session uint64
	eventID string
	code    string
	manual  bool
	started time.Time
	done    chan struct{}
}

// abandon finishes an attempt that never reached the backend.
func (p *pending) abandon() {
	if p != nil {
		close(p.done)
	}
}

// enterValidatingLocked moves the station to Validating. It reports
// whether the attempt may be dispatched now; while the camera is still
// opening the attempt is parked until Start installs and releases it.
// Must be called with c.mu held.
func (c *Controller) enterValidatingLocked(code string, manual bool) (pending, bool) {
	p := pending{
		guard:   c.st.guard,
		session: c.st.session,
		eventID: c.st.eventID,
		code:    code,
		manual:  manual,
		started: c.cfg.Now(),
		done:    make(chan struct{}),
	}
	waiting := c.st.status == models.StatusScanning && c.st.acquiring
	c.st = state{
		status:    models.StatusValidating,
		eventID:   p.eventID,
		session:   p.session,
		lastCode:  code,
		manual:    manual,
		startedAt: p.started,
	}
	c.version++
	if waiting {
		c.st.deferred = &p
		return p, false
	}
	c.inflight.Add(1)
	return p, true
}

// dispatch releases the camera, which unsubscribes the decoder, and only
// then starts the backend round trip. The caller has added p to inflight.
func (c *Controller) dispatch(p pending) {
	c.release(p.guard)
	c.notify()

	go func() {
		defer close(p.done)
		defer c.inflight.Done()
		c.validate(p)
	}()
}

func (c *Controller) validate(p pending) {
	ctx, cancel := context.WithTimeout(c.baseCtx, c.cfg.ValidateTimeout)
	defer cancel()

	result := Validate(ctx, c.cfg.API, p.eventID, p.code, c.cfg.Now)
	duration := c.cfg.Now().Sub(p.started)

	attempt := Attempt{
		Record: models.ScanRecord{
			ID:        uuid.New().String(),
			EventID:   p.eventID,
			Station:   c.cfg.Station,
			Session:   p.session,
			Code:      p.code,
			Manual:    p.manual,
			Outcome:   result.Outcome,
			Message:   result.Message,
			Duration:  duration,
			ScannedAt: p.started,
		},
		Result: result,
	}
	if result.Attendee != nil {
		attempt.Record.AttendeeID = result.Attendee.ID
	}

	c.mu.Lock()
	stale := c.st.session != p.session || c.st.status != models.StatusValidating
	if !stale {
		c.st = state{
			status:   models.StatusResult,
			eventID:  p.eventID,
			session:  p.session,
			lastCode: p.code,
			manual:   p.manual,
			result:   &result,
		}
		c.version++
	}
	c.mu.Unlock()

	metrics.RecordCheckIn(string(result.Outcome), p.manual, duration)

	if stale {
		metrics.CheckInStaleResults.Inc()
		c.logger.Info().Uint64("session", p.session).Str("outcome", string(result.Outcome)).Msg("Discarding result of ended session")
	} else {
		c.notify()
		c.logger.Info().
			Str("event_id", p.eventID).
			Str("outcome", string(result.Outcome)).
			Bool("manual", p.manual).
			Dur("duration", duration).
			Msg("Check-in attempt completed")
	}

	for _, r := range c.cfg.Recorders {
		r.RecordAttempt(c.baseCtx, attempt)
	}
}

// Stop ends the current session and releases the camera. It is safe to call
// in any state and any number of times.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.st.status != models.StatusScanning && c.st.status != models.StatusValidating {
		c.mu.Unlock()
		return
	}
	guard, abandoned := c.st.guard, c.st.deferred
	c.st = state{status: models.StatusIdle, eventID: c.st.eventID}
	c.version++
	c.mu.Unlock()

	c.release(guard)
	abandoned.abandon()
	c.notify()
	c.logger.Info().Msg("Scan session stopped")
}

// ScanNext clears the result and returns to Idle. Scanning does not resume
// until Start is called again. Calling it while Idle is a no-op.
func (c *Controller) ScanNext() error {
	c.mu.Lock()
	switch c.st.status {
	case models.StatusIdle:
		c.mu.Unlock()
		return nil
	case models.StatusResult:
	default:
		status := c.st.status
		c.mu.Unlock()
		return fmt.Errorf("scan next while %s: %w", status, ErrInvalidTransition)
	}
	c.st = state{status: models.StatusIdle, eventID: c.st.eventID}
	c.version++
	c.mu.Unlock()

	c.notify()
	return nil
}

// Close tears the station down. In-flight validations finish but their
// results are discarded. Close is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	guard, abandoned := c.st.guard, c.st.deferred
	c.st = state{status: models.StatusIdle, eventID: c.st.eventID}
	c.version++
	c.mu.Unlock()

	c.release(guard)
	abandoned.abandon()
	c.notify()
}

// Shutdown closes the controller and waits for in-flight validations until
// ctx is done, after which outstanding backend calls are cancelled.
func (c *Controller) Shutdown(ctx context.Context) error {
	c.Close()

	done := make(chan struct{})
	go func() {
		c.inflight.Wait()
		close(done)
	}()

	defer c.cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// release closes a camera guard taken out of the state.
func (c *Controller) release(guard *camera.Guard) {
	released, err := guard.Release()
	if !released {
		return
	}
	metrics.StationsScanning.Dec()
	if err != nil {
		c.logger.Warn().Err(err).Msg("Camera release failed")
	}
}

// notify delivers the current view to observers unless that version was
// already delivered. Observers must not call back into the controller's
// state-changing methods.
func (c *Controller) notify() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	version := c.version
	v := c.viewLocked()
	observers := c.observers
	c.mu.Unlock()

	if version <= c.delivered {
		return
	}
	c.delivered = version
	for _, fn := range observers {
		fn(v)
	}
}
