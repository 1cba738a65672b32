// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package models

import "time"

// Outcome classifies one scan attempt.
type Outcome string

const (
	OutcomeInvalid          Outcome = "invalid"
	OutcomeWrongEvent       Outcome = "wrong_event"
	OutcomeAlreadyCheckedIn Outcome = "already_checked_in"
	OutcomeSuccess          Outcome = "success"
	OutcomeError            Outcome = "error"
)

// AllOutcomes lists every outcome in display order.
var AllOutcomes = []Outcome{
	OutcomeSuccess,
	OutcomeAlreadyCheckedIn,
	OutcomeWrongEvent,
	OutcomeInvalid,
	OutcomeError,
}

// Committed reports whether the outcome changed state on the backend.
func (o Outcome) Committed() bool {
	return o == OutcomeSuccess
}

// CheckInResult is the outcome of one scan attempt.
type CheckInResult struct {
	Outcome  Outcome           `json:"outcome"`
	Attendee *AttendeeSnapshot `json:"attendee,omitempty"`
	Message  string            `json:"message"`
	Code     string            `json:"code"`
}

// ScanStatus is the tag of a station's state.
type ScanStatus string

const (
	StatusIdle       ScanStatus = "idle"
	StatusScanning   ScanStatus = "scanning"
	StatusValidating ScanStatus = "validating"
	StatusResult     ScanStatus = "result"
)

// StationView is the value object rendered by a door station's browser.
// Result is set only in StatusResult; CameraError only in StatusIdle.
type StationView struct {
	Station     string         `json:"station"`
	Status      ScanStatus     `json:"status"`
	EventID     string         `json:"eventId,omitempty"`
	Session     uint64         `json:"session"`
	Result      *CheckInResult `json:"result,omitempty"`
	CameraError string         `json:"cameraError,omitempty"`
}

// ScanRecord is one journaled scan attempt.
type ScanRecord struct {
	ID         string        `json:"id"`
	EventID    string        `json:"eventId"`
	Station    string        `json:"station"`
	Session    uint64        `json:"session"`
	Code       string        `json:"code"`
	Manual     bool          `json:"manual"`
	Outcome    Outcome       `json:"outcome"`
	AttendeeID string        `json:"attendeeId,omitempty"`
	Message    string        `json:"message,omitempty"`
	Duration   time.Duration `json:"durationNs"`
	ScannedAt  time.Time     `json:"scannedAt"`
}

// CheckInSummary counts scan attempts per outcome for one event.
type CheckInSummary struct {
	EventID   string          `json:"eventId"`
	Total     int             `json:"total"`
	Outcomes  map[Outcome]int `json:"outcomes"`
	FirstScan *time.Time      `json:"firstScan,omitempty"`
	LastScan  *time.Time      `json:"lastScan,omitempty"`
}
