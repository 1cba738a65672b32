// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

/*
Package websocket links door-station browsers to the server.

A browser connects to /ws, optionally with ?station=<id>. Clients without a
station are dashboard observers and receive every broadcast. Station clients
receive their own station's view plus global messages.

# Camera Bridge

The camera and barcode decoder live in the station's browser. RemoteCamera
implements camera.Camera for one station by exchanging messages with the
newest client attached to it:

	server -> browser   camera.enumerate {id}
	browser -> server   camera.devices   {id, data: {devices: [...]}}
	server -> browser   camera.open      {id, data: {deviceId}}
	browser -> server   camera.opened    {id} | camera.failed {id, data: {message}}
	browser -> server   decode           {data: {streamId, code}}
	server -> browser   camera.close     {data: {streamId}}

Requests carry a UUID correlation ID and honour the caller's context. The
stream ID is the ID of the camera.open request. Closing a stream removes its
decode subscription before camera.close is sent, so frames that arrive late
are dropped.

# Broadcasts

  - station.view: a station's view after every transition
  - session_expired: the backend rejected the configured token
  - checkin: a completed attempt, forwarded from the outcome topic
  - ping/pong: client keepalive

# Thread Safety

All sends to a client channel happen under the hub's lock, and the channel is
only closed under the write lock, so a send never races a close.
*/
package websocket
