// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

/*
Package journal persists every check-in attempt in BadgerDB.

Records are stored as JSON under keys of the form

	scan:<eventId>:<unixnano>:<recordId>

with the event ID query-escaped and the timestamp zero-padded, so a prefix
scan over one event yields its attempts in chronological order. The journal
backs the dashboard's per-event scan log and outcome summary.

Store implements checkin.Recorder. Its Serve method is a suture service that
prunes records older than the retention period and runs value log GC.
*/
package journal
