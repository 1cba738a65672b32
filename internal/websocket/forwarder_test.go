// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package websocket

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type capturingBroadcaster struct {
	mu       sync.Mutex
	messages []string
	types    []string
}

func (b *capturingBroadcaster) BroadcastRaw(messageType string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.types = append(b.types, messageType)
	b.messages = append(b.messages, string(data))
}

func (b *capturingBroadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.messages)
}

func TestCheckInForwarder(t *testing.T) {
	t.Parallel()

	ch := gochannel.NewGoChannel(gochannel.Config{Persistent: true}, watermill.NopLogger{})
	t.Cleanup(func() { _ = ch.Close() })

	payload := `{"id":"r1","outcome":"success"}`
	if err := ch.Publish("rollcall.checkins", message.NewMessage("r1", []byte(payload))); err != nil {
		t.Fatalf("Publish() error: %v", err)
	}

	hub := &capturingBroadcaster{}
	fwd := NewCheckInForwarder(hub, ch, "rollcall.checkins")
	if fwd.String() != "checkin-forwarder" {
		t.Errorf("String() = %q", fwd.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- fwd.Serve(ctx) }()

	waitFor(t, "forwarded message", func() bool { return hub.count() == 1 })

	hub.mu.Lock()
	if hub.types[0] != MessageTypeCheckIn || hub.messages[0] != payload {
		t.Errorf("forwarded %s %s", hub.types[0], hub.messages[0])
	}
	hub.mu.Unlock()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(testTimeout):
		t.Fatal("forwarder did not stop")
	}
}
