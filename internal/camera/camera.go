// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

// Package camera abstracts the video input device and barcode decoder that
// feed a door station.
//
// A Camera enumerates devices and opens a decode Stream on one of them. The
// decoder delivers decoded text through the onDecode callback until the
// stream is closed. Closing a stream is a synchronous unsubscribe: a
// delivery that begins after Close returns never reaches onDecode. Close may
// be called from inside onDecode, so it does not wait for a delivery that was
// already under way when it was called; that call may still complete and
// callers must guard their own state against it.
package camera

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrNoCameraFound is returned when device enumeration yields no video inputs.
var ErrNoCameraFound = errors.New("no camera found")

// Device is one video input device.
type Device struct {
	ID    string `json:"deviceId"`
	Label string `json:"label"`
}

// DecodeFunc receives decoded barcode text. It may be called repeatedly per
// video frame while a code stays in view.
type DecodeFunc func(code string)

// Camera enumerates and opens video input devices.
type Camera interface {
	Devices(ctx context.Context) ([]Device, error)
	Open(ctx context.Context, deviceID string, onDecode DecodeFunc) (Stream, error)
}

// Stream is an open camera subscription.
type Stream interface {
	// Close unsubscribes the decode callback and releases the device. It
	// never waits for an onDecode call already in progress.
	Close() error
}

// CameraError reports a failure to acquire a camera.
//
//nolint:revive // CameraError reads better than Error at call sites
type CameraError struct {
	Err error
}

func (e *CameraError) Error() string {
	return fmt.Sprintf("camera error: %v", e.Err)
}

func (e *CameraError) Unwrap() error {
	return e.Err
}

// Message returns the underlying message shown to staff.
func (e *CameraError) Message() string {
	if e.Err == nil {
		return "camera unavailable"
	}
	return e.Err.Error()
}

// rearKeywords mark rear-facing cameras on handheld devices.
var rearKeywords = []string{"back", "environment", "rear"}

// SelectDevice picks the device to scan with.
//
// Preference order: a device labeled as rear-facing, then the last of
// several devices, then the only device. The last-of-many rule is a
// heuristic that matches most platforms when labels are unavailable.
func SelectDevice(devices []Device) (Device, error) {
	if len(devices) == 0 {
		return Device{}, ErrNoCameraFound
	}

	for _, d := range devices {
		label := strings.ToLower(d.Label)
		for _, kw := range rearKeywords {
			if strings.Contains(label, kw) {
				return d, nil
			}
		}
	}

	return devices[len(devices)-1], nil
}

// Acquire enumerates devices, selects one and opens a stream on it.
// Every failure is returned as a *CameraError.
func Acquire(ctx context.Context, cam Camera, onDecode DecodeFunc) (*Guard, Device, error) {
	devices, err := cam.Devices(ctx)
	if err != nil {
		return nil, Device{}, &CameraError{Err: err}
	}

	device, err := SelectDevice(devices)
	if err != nil {
		return nil, Device{}, &CameraError{Err: err}
	}

	stream, err := cam.Open(ctx, device.ID, onDecode)
	if err != nil {
		return nil, device, &CameraError{Err: err}
	}

	return NewGuard(stream), device, nil
}

// Guard owns a Stream and releases it at most once.
type Guard struct {
	mu       sync.Mutex
	stream   Stream
	released bool
}

// NewGuard wraps stream. A nil stream yields an already-released guard.
func NewGuard(stream Stream) *Guard {
	return &Guard{stream: stream, released: stream == nil}
}

// Release closes the stream on the first call and is a no-op afterwards.
// It reports whether this call performed the release.
func (g *Guard) Release() (bool, error) {
	if g == nil {
		return false, nil
	}

	g.mu.Lock()
	if g.released {
		g.mu.Unlock()
		return false, nil
	}
	g.released = true
	stream := g.stream
	g.stream = nil
	g.mu.Unlock()

	return true, stream.Close()
}

// Released reports whether the stream has been released.
func (g *Guard) Released() bool {
	if g == nil {
		return true
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.released
}
