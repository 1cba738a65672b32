// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package models

import "time"

// Event is one entry of GET /event, used by the event selector.
type Event struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Date     *time.Time `json:"date,omitempty"`
	Location string     `json:"location,omitempty"`
}

// AttendeeStatus is the RSVP state of an attendee.
type AttendeeStatus string

const (
	AttendeeConfirmed  AttendeeStatus = "Confirmed"
	AttendeeWaitlisted AttendeeStatus = "Waitlisted"
	AttendeeCancelled  AttendeeStatus = "Cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s AttendeeStatus) Valid() bool {
	switch s {
	case AttendeeConfirmed, AttendeeWaitlisted, AttendeeCancelled:
		return true
	}
	return false
}

// PlusOneSnapshot is the guest an attendee registered alongside them.
type PlusOneSnapshot struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// AttendeeSnapshot is the read-only attendee projection returned by the backend.
type AttendeeSnapshot struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Company        string           `json:"company,omitempty"`
	Title          string           `json:"title,omitempty"`
	Email          string           `json:"email"`
	RegistrationID string           `json:"registrationId"`
	EventID        string           `json:"eventId"`
	Status         AttendeeStatus   `json:"status"`
	CheckedInAt    *time.Time       `json:"checkedInAt"`
	PlusOne        *PlusOneSnapshot `json:"plusOne"`
}

// ValidatedAttendee is the attendee payload of the validate endpoint, which
// adds an explicit prior check-in flag.
type ValidatedAttendee struct {
	AttendeeSnapshot
	AlreadyCheckedIn bool `json:"alreadyCheckedIn,omitempty"`
}

// IsCheckedIn reports whether the backend recorded a prior check-in, either
// through the explicit flag or a populated timestamp.
func (a *ValidatedAttendee) IsCheckedIn() bool {
	return a.AlreadyCheckedIn || a.CheckedInAt != nil
}

// ValidateResponse is the body of GET /qr/validate/{code}.
type ValidateResponse struct {
	Valid    bool               `json:"valid"`
	Attendee *ValidatedAttendee `json:"attendee,omitempty"`
	Message  string             `json:"message,omitempty"`
}

// CommitResponse is the body of POST /qr/check-in/{code}.
type CommitResponse struct {
	Success  bool              `json:"success"`
	Attendee *AttendeeSnapshot `json:"attendee,omitempty"`
	Message  string            `json:"message,omitempty"`
}
