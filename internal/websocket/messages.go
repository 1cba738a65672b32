// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package websocket

import (
	"github.com/goccy/go-json"

	"github.com/tomtom215/rollcall/internal/camera"
)

// Message types for WebSocket communication
const (
	MessageTypePing           = "ping"
	MessageTypePong           = "pong"
	MessageTypeStationView    = "station.view"
	MessageTypeSessionExpired = "session_expired"
	MessageTypeCheckIn        = "checkin"

	MessageTypeCameraEnumerate = "camera.enumerate"
	MessageTypeCameraDevices   = "camera.devices"
	MessageTypeCameraOpen      = "camera.open"
	MessageTypeCameraOpened    = "camera.opened"
	MessageTypeCameraFailed    = "camera.failed"
	MessageTypeCameraClose     = "camera.close"
	MessageTypeDecode          = "decode"
)

// Message represents an outbound WebSocket message
type Message struct {
	Type string      `json:"type"`
	ID   string      `json:"id,omitempty"`
	Data interface{} `json:"data,omitempty"`
}

// inboundMessage is a message received from a browser. Data is decoded
// according to Type.
type inboundMessage struct {
	Type string          `json:"type"`
	ID   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// DevicesData is the payload of camera.devices.
type DevicesData struct {
	Devices []camera.Device `json:"devices"`
}

// OpenData is the payload of camera.open.
type OpenData struct {
	DeviceID string `json:"deviceId"`
}

// FailedData is the payload of camera.failed.
type FailedData struct {
	Message string `json:"message"`
}

// DecodeData is the payload of decode.
type DecodeData struct {
	StreamID string `json:"streamId"`
	Code     string `json:"code"`
}

// CloseData is the payload of camera.close.
type CloseData struct {
	StreamID string `json:"streamId"`
}

// SessionExpiredData is the payload of session_expired.
type SessionExpiredData struct {
	Message string `json:"message"`
}

// MarshalMessage converts a message to JSON
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
