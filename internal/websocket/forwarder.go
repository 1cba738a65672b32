// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package websocket

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/rollcall/internal/logging"
)

// Broadcaster is the slice of Hub the forwarder needs.
type Broadcaster interface {
	BroadcastRaw(messageType string, data []byte)
}

// CheckInForwarder relays check-in outcome messages from a Watermill topic
// to every connected browser.
type CheckInForwarder struct {
	hub        Broadcaster
	subscriber message.Subscriber
	topic      string
}

// NewCheckInForwarder creates a forwarder for topic.
func NewCheckInForwarder(hub Broadcaster, subscriber message.Subscriber, topic string) *CheckInForwarder {
	return &CheckInForwarder{hub: hub, subscriber: subscriber, topic: topic}
}

// Serve subscribes and forwards until ctx is cancelled. It implements suture.Service.
func (f *CheckInForwarder) Serve(ctx context.Context) error {
	messages, err := f.subscriber.Subscribe(ctx, f.topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", f.topic, err)
	}

	logging.Info().Str("topic", f.topic).Msg("Check-in forwarder started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("subscription to %s closed", f.topic)
			}
			f.hub.BroadcastRaw(MessageTypeCheckIn, msg.Payload)
			msg.Ack()
		}
	}
}

// String names the service in supervisor logs.
func (f *CheckInForwarder) String() string {
	return "checkin-forwarder"
}
