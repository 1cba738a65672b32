// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package websocket

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/rollcall/internal/camera"
	"github.com/tomtom215/rollcall/internal/logging"
)

// ErrCameraClosed is returned by requests pending when the browser disconnects.
var ErrCameraClosed = errors.New("station browser disconnected")

// Ensure RemoteCamera implements camera.Camera
var _ camera.Camera = (*RemoteCamera)(nil)

// stationSender is the slice of Hub a RemoteCamera uses.
type stationSender interface {
	sendToStation(station string, msg Message) (uint64, error)
}

// pendingRequest is a camera request awaiting the browser's reply.
type pendingRequest struct {
	clientID uint64
	reply    chan inboundMessage
}

// RemoteCamera bridges camera.Camera to the browser attached to a station.
type RemoteCamera struct {
	station string
	hub     stationSender
	timeout time.Duration

	mu      sync.Mutex
	pending map[string]*pendingRequest
	streams map[string]*remoteStream
}

func newRemoteCamera(station string, hub stationSender, timeout time.Duration) *RemoteCamera {
	return &RemoteCamera{
		station: station,
		hub:     hub,
		timeout: timeout,
		pending: make(map[string]*pendingRequest),
		streams: make(map[string]*remoteStream),
	}
}

// Station returns the station this camera belongs to.
func (r *RemoteCamera) Station() string {
	return r.station
}

// Devices asks the browser to enumerate its video inputs.
func (r *RemoteCamera) Devices(ctx context.Context) ([]camera.Device, error) {
	reply, err := r.request(ctx, uuid.NewString(), MessageTypeCameraEnumerate, nil)
	if err != nil {
		return nil, err
	}

	switch reply.Type {
	case MessageTypeCameraDevices:
		var data DevicesData
		if err := json.Unmarshal(reply.Data, &data); err != nil {
			return nil, fmt.Errorf("decode camera.devices: %w", err)
		}
		return data.Devices, nil
	case MessageTypeCameraFailed:
		return nil, failedError(reply)
	default:
		return nil, fmt.Errorf("unexpected reply %q to camera.enumerate", reply.Type)
	}
}

// Open asks the browser to start the decoder on deviceID. Decoded codes are
// delivered to onDecode until the returned stream is closed.
func (r *RemoteCamera) Open(ctx context.Context, deviceID string, onDecode camera.DecodeFunc) (camera.Stream, error) {
	streamID := uuid.NewString()
	stream := &remoteStream{id: streamID, owner: r, onDecode: onDecode}

	// Register before asking so frames racing the reply are not lost.
	r.mu.Lock()
	r.streams[streamID] = stream
	r.mu.Unlock()

	reply, err := r.request(ctx, streamID, MessageTypeCameraOpen, OpenData{DeviceID: deviceID})
	if err == nil {
		switch reply.Type {
		case MessageTypeCameraOpened:
			logging.Debug().Str("station", r.station).Str("stream_id", streamID).Str("device_id", deviceID).Msg("Remote camera opened")
			return stream, nil
		case MessageTypeCameraFailed:
			err = failedError(reply)
		default:
			err = fmt.Errorf("unexpected reply %q to camera.open", reply.Type)
		}
	}

	r.unsubscribe(streamID)
	return nil, err
}

// request sends a correlated message to the station and waits for the reply.
func (r *RemoteCamera) request(ctx context.Context, id, msgType string, data interface{}) (inboundMessage, error) {
	if _, ok := ctx.Deadline(); !ok && r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	p := &pendingRequest{reply: make(chan inboundMessage, 1)}
	r.mu.Lock()
	r.pending[id] = p
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		delete(r.pending, id)
		r.mu.Unlock()
	}()

	// Hold r.mu across the send so clientGone cannot miss the new request.
	r.mu.Lock()
	clientID, err := r.hub.sendToStation(r.station, Message{Type: msgType, ID: id, Data: data})
	p.clientID = clientID
	r.mu.Unlock()
	if err != nil {
		return inboundMessage{}, err
	}

	select {
	case reply, ok := <-p.reply:
		if !ok {
			return inboundMessage{}, ErrCameraClosed
		}
		return reply, nil
	case <-ctx.Done():
		return inboundMessage{}, fmt.Errorf("%s: %w", msgType, ctx.Err())
	}
}

// resolve hands a browser reply to the waiting request.
func (r *RemoteCamera) resolve(msg inboundMessage) {
	r.mu.Lock()
	p, ok := r.pending[msg.ID]
	if ok {
		delete(r.pending, msg.ID)
	}
	r.mu.Unlock()

	if !ok {
		logging.Debug().Str("station", r.station).Str("id", msg.ID).Str("type", msg.Type).Msg("dropping reply with no pending request")
		return
	}
	p.reply <- msg
}

// deliver routes a decoded code to its stream. The subscription lookup is
// the delivery's start: once unsubscribe has removed the stream, no later
// delivery reaches its callback. A delivery that found the stream before
// that may still run the callback.
func (r *RemoteCamera) deliver(data DecodeData) {
	r.mu.Lock()
	stream, ok := r.streams[data.StreamID]
	r.mu.Unlock()

	if !ok || strings.TrimSpace(data.Code) == "" {
		return
	}
	stream.onDecode(data.Code)
}

// clientGone fails every request awaiting a reply from the given client.
func (r *RemoteCamera) clientGone(clientID uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, p := range r.pending {
		if p.clientID == clientID {
			delete(r.pending, id)
			close(p.reply)
		}
	}
}

// unsubscribe removes a stream's decode subscription and reports whether it was active.
func (r *RemoteCamera) unsubscribe(streamID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.streams[streamID]; !ok {
		return false
	}
	delete(r.streams, streamID)
	return true
}

// ActiveStreams returns the number of open decode subscriptions.
func (r *RemoteCamera) ActiveStreams() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.streams)
}

func failedError(reply inboundMessage) error {
	var data FailedData
	if err := json.Unmarshal(reply.Data, &data); err != nil || data.Message == "" {
		return errors.New("camera failed")
	}
	return errors.New(data.Message)
}

// remoteStream is an open decode subscription on a station's browser.
type remoteStream struct {
	id       string
	owner    *RemoteCamera
	onDecode camera.DecodeFunc
}

// Close unsubscribes synchronously, then tells the browser to stop the camera.
func (s *remoteStream) Close() error {
	if !s.owner.unsubscribe(s.id) {
		return nil
	}

	_, err := s.owner.hub.sendToStation(s.owner.station, Message{
		Type: MessageTypeCameraClose,
		Data: CloseData{StreamID: s.id},
	})
	if errors.Is(err, ErrStationOffline) {
		return nil
	}
	return err
}
