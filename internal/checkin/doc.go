// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

/*
Package checkin implements the door station's QR check-in controller.

A Controller owns one station's scanning lifecycle:

	Idle --Start--> Scanning --decode/manual--> Validating --> Result --ScanNext--> Idle
	                   |                             |
	                   +-------------Stop------------+--------> Idle

State is a single tagged value. The camera guard exists only while
Scanning, the result only in Result and the camera error only in Idle, so
illegal combinations cannot be represented.

# Single validation per code

Decoders fire once per video frame while a badge is in view. The first
non-empty code moves the station to Validating under the lock and the camera
stream is closed (which unsubscribes the decoder) before any backend call is
made. Later callbacks find the station no longer Scanning and are dropped.
A code decoded while the camera is still opening is held until Start has the
stream, which is then closed before validation begins. Stop or Close during
that window drops the held code without a backend call.

# Validation sequence

	1. GET  /qr/validate/{code}   not valid or no attendee  -> Invalid
	2. attendee.eventId != event                             -> WrongEvent (no commit)
	3. attendee already checked in                           -> AlreadyCheckedIn (no commit)
	4. POST /qr/check-in/{code}   failure                    -> Error
	                              success                    -> Success

Transport failures at any step become Error with the error text.

# Session identity

Every Start opens a new session. A validation result is applied only if the
station is still Validating the same session; results that finish after Stop
or Close are discarded but still journaled, since the backend state is real.
*/
package checkin
