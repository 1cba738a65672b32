// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package validation

import (
	"reflect"
	"strings"
)

// MaxCodeLength bounds a typed or scanned code.
const MaxCodeLength = 512

// StationRequest names the station addressed by a route.
type StationRequest struct {
	Station string `json:"station" validate:"required,station"`
}

// StartScanRequest is the body of POST /stations/{station}/start. An empty
// EventID starts the station's already selected event.
type StartScanRequest struct {
	EventID string `json:"eventId" validate:"omitempty,max=128,notblank"`
}

// ManualCodeRequest is the body of POST /stations/{station}/manual.
type ManualCodeRequest struct {
	Code string `json:"code" validate:"required,notblank,max=512"`
}

// CheckInListRequest holds the query of GET /events/{eventId}/checkins.
type CheckInListRequest struct {
	EventID string `json:"eventId" validate:"required,max=128"`
	Limit   int    `json:"limit" validate:"min=1,max=500"`
}

// jsonFieldName reports fields by their JSON name so messages match the
// request body the client sent.
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}
