// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package checkin

import (
	"errors"
	"fmt"
)

var (
	// ErrNoEventSelected is returned when scanning starts without an event.
	ErrNoEventSelected = errors.New("no event selected")

	// ErrInvalidTransition is returned when an action is not allowed in the
	// station's current state.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrBusy is returned by manual entry while an attempt is validating or
	// its result is shown.
	ErrBusy = fmt.Errorf("station busy: %w", ErrInvalidTransition)

	// ErrSessionEnded is returned when the session was stopped while the
	// camera was being acquired.
	ErrSessionEnded = errors.New("scan session ended")

	// ErrClosed is returned by a controller that has been torn down.
	ErrClosed = errors.New("station closed")

	// ErrInvalidStation is returned for an empty or malformed station ID.
	ErrInvalidStation = errors.New("invalid station id")

	// ErrUnknownStation is returned when a read names a station that was
	// never started or attached.
	ErrUnknownStation = errors.New("unknown station")

	// ErrTooManyStations is returned when the registry is full.
	ErrTooManyStations = errors.New("too many stations")
)
