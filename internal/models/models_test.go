// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package models

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestValidatedAttendee_IsCheckedIn(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		attendee ValidatedAttendee
		want     bool
	}{
		{"fresh", ValidatedAttendee{}, false},
		{"flag only", ValidatedAttendee{AlreadyCheckedIn: true}, true},
		{"timestamp only", ValidatedAttendee{AttendeeSnapshot: AttendeeSnapshot{CheckedInAt: &now}}, true},
		{"both", ValidatedAttendee{AlreadyCheckedIn: true, AttendeeSnapshot: AttendeeSnapshot{CheckedInAt: &now}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.attendee.IsCheckedIn(); got != tt.want {
				t.Errorf("IsCheckedIn() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateResponse_DecodesBackendShape(t *testing.T) {
	t.Parallel()

	body := `{"valid":true,"attendee":{"id":"a1","name":"Ada","email":"ada@example.com",
		"registrationId":"R-1","eventId":"E1","status":"Confirmed","checkedInAt":null,
		"plusOne":{"name":"Bob"},"alreadyCheckedIn":false}}`

	var resp ValidateResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Valid || resp.Attendee == nil {
		t.Fatalf("expected valid response with attendee, got %+v", resp)
	}
	if resp.Attendee.EventID != "E1" {
		t.Errorf("EventID = %q, want E1", resp.Attendee.EventID)
	}
	if resp.Attendee.PlusOne == nil || resp.Attendee.PlusOne.Name != "Bob" {
		t.Errorf("PlusOne = %+v, want Bob", resp.Attendee.PlusOne)
	}
	if resp.Attendee.IsCheckedIn() {
		t.Error("expected attendee not checked in")
	}
	if !resp.Attendee.Status.Valid() {
		t.Errorf("status %q should be valid", resp.Attendee.Status)
	}
}

func TestAttendeeStatus_Valid(t *testing.T) {
	t.Parallel()

	if AttendeeStatus("Pending").Valid() {
		t.Error("unknown status reported valid")
	}
	for _, s := range []AttendeeStatus{AttendeeConfirmed, AttendeeWaitlisted, AttendeeCancelled} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
}

func TestOutcome_Committed(t *testing.T) {
	t.Parallel()

	for _, o := range AllOutcomes {
		if got, want := o.Committed(), o == OutcomeSuccess; got != want {
			t.Errorf("%s.Committed() = %v, want %v", o, got, want)
		}
	}
}
