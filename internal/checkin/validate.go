// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package checkin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/rollcall/internal/models"
	"github.com/tomtom215/rollcall/internal/rsvpapi"
)

// Messages shown when the backend does not supply one.
const (
	msgInvalid    = "QR code not recognized"
	msgWrongEvent = "This badge is registered for a different event"
	msgAlready    = "Attendee is already checked in"
	msgCommitFail = "Check-in failed"
	msgSuccess    = "Checked in"
)

// Validate runs the validate, guard, commit sequence for one code against
// the session's event. The commit is issued at most once and only after
// both guards pass. Every failure is folded into the returned result.
func Validate(ctx context.Context, api rsvpapi.API, eventID, code string, now func() time.Time) models.CheckInResult {
	resp, err := api.ValidateCode(ctx, code)
	if err != nil {
		var apiErr *rsvpapi.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return models.CheckInResult{Outcome: models.OutcomeInvalid, Code: code, Message: orDefault(apiErr.Message, msgInvalid)}
		}
		return models.CheckInResult{Outcome: models.OutcomeError, Code: code, Message: rsvpapi.Message(err)}
	}

	if !resp.Valid || resp.Attendee == nil {
		return models.CheckInResult{Outcome: models.OutcomeInvalid, Code: code, Message: orDefault(resp.Message, msgInvalid)}
	}

	validated := resp.Attendee
	snapshot := validated.AttendeeSnapshot

	if validated.EventID != eventID {
		return models.CheckInResult{
			Outcome:  models.OutcomeWrongEvent,
			Code:     code,
			Attendee: &snapshot,
			Message:  msgWrongEvent,
		}
	}

	if validated.IsCheckedIn() {
		msg := msgAlready
		if validated.CheckedInAt != nil {
			msg = fmt.Sprintf("%s (since %s)", msgAlready, validated.CheckedInAt.Format(time.RFC3339))
		}
		return models.CheckInResult{
			Outcome:  models.OutcomeAlreadyCheckedIn,
			Code:     code,
			Attendee: &snapshot,
			Message:  msg,
		}
	}

	commit, err := api.CommitCheckIn(ctx, code)
	if err != nil {
		return models.CheckInResult{Outcome: models.OutcomeError, Code: code, Attendee: &snapshot, Message: rsvpapi.Message(err)}
	}
	if !commit.Success {
		return models.CheckInResult{Outcome: models.OutcomeError, Code: code, Attendee: &snapshot, Message: orDefault(commit.Message, msgCommitFail)}
	}

	checkedIn := snapshot
	if commit.Attendee != nil {
		checkedIn = *commit.Attendee
	}
	if checkedIn.CheckedInAt == nil {
		t := now().UTC()
		checkedIn.CheckedInAt = &t
	}

	return models.CheckInResult{
		Outcome:  models.OutcomeSuccess,
		Code:     code,
		Attendee: &checkedIn,
		Message:  orDefault(commit.Message, msgSuccess),
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
