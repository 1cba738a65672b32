// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	t.Parallel()

	if v1, v2 := GetValidator(), GetValidator(); v1 == nil || v1 != v2 {
		t.Error("GetValidator() should return one shared instance")
	}
}

func TestValidateStruct_Requests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     interface{}
		wantField string
		wantTag   string
	}{
		{name: "station ok", input: &StationRequest{Station: "door-1"}},
		{name: "station empty", input: &StationRequest{}, wantField: "station", wantTag: "required"},
		{name: "station with slash", input: &StationRequest{Station: "door/1"}, wantField: "station", wantTag: "station"},
		{name: "station too long", input: &StationRequest{Station: strings.Repeat("a", 65)}, wantField: "station", wantTag: "station"},
		{name: "start with default event", input: &StartScanRequest{}},
		{name: "start with event", input: &StartScanRequest{EventID: "E1"}},
		{name: "start with blank event", input: &StartScanRequest{EventID: "   "}, wantField: "eventId", wantTag: "notblank"},
		{name: "manual ok", input: &ManualCodeRequest{Code: "QR-1"}},
		{name: "manual missing", input: &ManualCodeRequest{}, wantField: "code", wantTag: "required"},
		{name: "manual blank", input: &ManualCodeRequest{Code: " \t"}, wantField: "code", wantTag: "notblank"},
		{name: "manual too long", input: &ManualCodeRequest{Code: strings.Repeat("x", MaxCodeLength+1)}, wantField: "code", wantTag: "max"},
		{name: "list ok", input: &CheckInListRequest{EventID: "E1", Limit: 50}},
		{name: "list limit zero", input: &CheckInListRequest{EventID: "E1"}, wantField: "limit", wantTag: "min"},
		{name: "list limit too big", input: &CheckInListRequest{EventID: "E1", Limit: 501}, wantField: "limit", wantTag: "max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			verr := ValidateStruct(tt.input)
			if tt.wantField == "" {
				if verr != nil {
					t.Fatalf("ValidateStruct() = %v, want nil", verr)
				}
				return
			}
			if verr == nil {
				t.Fatalf("ValidateStruct() = nil, want %s/%s failure", tt.wantField, tt.wantTag)
			}
			errs := verr.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), verr)
			}
			if errs[0].Field() != tt.wantField || errs[0].Tag() != tt.wantTag {
				t.Errorf("error = %s/%s, want %s/%s", errs[0].Field(), errs[0].Tag(), tt.wantField, tt.wantTag)
			}
		})
	}
}

func TestTranslateError_Messages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input interface{}
		want  string
	}{
		{&ManualCodeRequest{}, "code is required"},
		{&ManualCodeRequest{Code: "  "}, "code must not be blank"},
		{&ManualCodeRequest{Code: strings.Repeat("x", 600)}, "code must be at most 512 characters"},
		{&CheckInListRequest{EventID: "E1", Limit: 0}, "limit must be at least 1"},
		{&StationRequest{Station: "a b"}, "station must be 1-64 letters, digits, '-' or '_'"},
	}

	for _, tt := range tests {
		verr := ValidateStruct(tt.input)
		if verr == nil {
			t.Fatalf("%T: expected failure", tt.input)
		}
		if verr.Error() != tt.want {
			t.Errorf("%T: message = %q, want %q", tt.input, verr.Error(), tt.want)
		}
	}
}

func TestToAPIError(t *testing.T) {
	t.Parallel()

	t.Run("single field", func(t *testing.T) {
		t.Parallel()
		apiErr := ValidateStruct(&ManualCodeRequest{}).ToAPIError()
		if apiErr.Code != ErrorCode {
			t.Errorf("Code = %q", apiErr.Code)
		}
		if apiErr.Details["field"] != "code" {
			t.Errorf("Details = %v", apiErr.Details)
		}
	})

	t.Run("multiple fields", func(t *testing.T) {
		t.Parallel()
		apiErr := ValidateStruct(&CheckInListRequest{Limit: 1000}).ToAPIError()
		fields, ok := apiErr.Details["fields"].([]map[string]interface{})
		if !ok || len(fields) != 2 {
			t.Fatalf("Details = %v, want two fields", apiErr.Details)
		}
		if !strings.Contains(apiErr.Message, "eventId is required") || !strings.Contains(apiErr.Message, "limit must be at most 500") {
			t.Errorf("Message = %q", apiErr.Message)
		}
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		apiErr := (&RequestValidationError{}).ToAPIError()
		if apiErr.Message != "Validation failed" {
			t.Errorf("Message = %q", apiErr.Message)
		}
	})
}
