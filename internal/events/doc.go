// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

/*
Package events covers the two event-related concerns around a door station.

Selector lists the RSVP events from the backend and caches the list, so the
dashboard can pre-select the default event and a station can confirm an event
exists before scanning.

Publisher announces every completed check-in attempt as a JSON message on the
rollcall.checkins topic through Watermill. With NATS enabled the transport is
watermill-nats; otherwise an in-process GoChannel is used, which lets local
consumers such as the websocket hub subscribe. Publishing is guarded by a
circuit breaker and never fails the station: errors are logged and counted.
*/
package events
