// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

// Package testinfra provides test infrastructure shared across packages.
//
// # Fake RSVP Backend
//
// FakeRSVPBackend is an httptest server speaking the RSVP backend's REST
// contract (GET /event, GET /qr/validate/{code}, POST /qr/check-in/{code}).
// It keeps attendees in memory, commits check-ins and captures every request:
//
//	backend := testinfra.NewFakeRSVPBackend(t)
//	backend.AddEvent(models.Event{ID: "E1", Name: "Gala"})
//	backend.AddAttendee("QR-1", models.AttendeeSnapshot{ID: "a1", EventID: "E1"})
//
//	client := rsvpapi.NewHTTPClient(rsvpapi.Config{BaseURL: backend.URL()})
//
// # Containers
//
// Files built with the integration tag start real services with
// testcontainers-go. NATSContainer runs a NATS server for publisher tests:
//
//	func TestPublishOverNATS(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    nats, err := testinfra.NewNATSContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, nats)
//	    // connect to nats.URL
//	}
//
// Container tests require Docker and are skipped when it is unavailable.
// Run them with:
//
//	go test -tags=integration ./...
package testinfra
