// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/rollcall/internal/checkin"
	"github.com/tomtom215/rollcall/internal/logging"
	"github.com/tomtom215/rollcall/internal/models"
)

func sampleAttempt() checkin.Attempt {
	return checkin.Attempt{
		Record: models.ScanRecord{
			ID:         "rec-1",
			EventID:    "E1",
			Station:    "door-1",
			Session:    3,
			Code:       "QR-1",
			Outcome:    models.OutcomeSuccess,
			AttendeeID: "a1",
			ScannedAt:  time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC),
		},
		Result: models.CheckInResult{
			Outcome:  models.OutcomeSuccess,
			Attendee: &models.AttendeeSnapshot{ID: "a1", Name: "Ada", EventID: "E1"},
			Code:     "QR-1",
		},
	}
}

func TestPublisher_GoChannelDelivery(t *testing.T) {
	t.Parallel()

	ch := NewGoChannel(logging.NewWatermillAdapter())
	pub := NewPublisher(ch, PublisherConfig{BreakerName: "test-gochannel"})
	t.Cleanup(func() { _ = pub.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msgs, err := ch.Subscribe(ctx, DefaultTopic)
	if err != nil {
		t.Fatalf("Subscribe() error: %v", err)
	}

	pub.RecordAttempt(ctx, sampleAttempt())

	select {
	case msg := <-msgs:
		msg.Ack()
		if msg.UUID != "rec-1" {
			t.Errorf("message UUID = %q, want rec-1", msg.UUID)
		}
		if got := msg.Metadata.Get("outcome"); got != "success" {
			t.Errorf("outcome metadata = %q, want success", got)
		}
		if got := msg.Metadata.Get("station"); got != "door-1" {
			t.Errorf("station metadata = %q, want door-1", got)
		}

		var ev CheckInEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if !ev.Committed || ev.EventID != "E1" || ev.Attendee == nil || ev.Attendee.Name != "Ada" {
			t.Errorf("payload = %+v", ev)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for published message")
	}
}

type failingPublisher struct {
	calls atomic.Int32
}

func (p *failingPublisher) Publish(string, ...*message.Message) error {
	p.calls.Add(1)
	return errors.New("broker down")
}

func (p *failingPublisher) Close() error { return nil }

func TestPublisher_BreakerOpensAfterFailures(t *testing.T) {
	t.Parallel()

	inner := &failingPublisher{}
	pub := NewPublisher(inner, PublisherConfig{
		BreakerName:      "test-failing",
		FailureThreshold: 3,
		OpenTimeout:      time.Hour,
	})

	for i := 0; i < 3; i++ {
		if err := pub.Publish(context.Background(), NewCheckInEvent(sampleAttempt())); err == nil {
			t.Fatal("expected publish error")
		}
	}
	if pub.State() != gobreaker.StateOpen {
		t.Fatalf("breaker state = %v, want open", pub.State())
	}

	err := pub.Publish(context.Background(), NewCheckInEvent(sampleAttempt()))
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("Publish() error = %v, want ErrOpenState", err)
	}
	if n := inner.calls.Load(); n != 3 {
		t.Errorf("inner publisher called %d times, want 3", n)
	}

	// RecordAttempt swallows the error.
	pub.RecordAttempt(context.Background(), sampleAttempt())
}

func TestPublisher_Closed(t *testing.T) {
	t.Parallel()

	pub := NewPublisher(&failingPublisher{}, PublisherConfig{BreakerName: "test-closed"})
	if err := pub.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}

	err := pub.Publish(context.Background(), NewCheckInEvent(sampleAttempt()))
	if !errors.Is(err, ErrPublisherClosed) {
		t.Fatalf("Publish() error = %v, want ErrPublisherClosed", err)
	}
}

func TestNewCheckInEvent_NotCommitted(t *testing.T) {
	t.Parallel()

	attempt := sampleAttempt()
	attempt.Record.Outcome = models.OutcomeWrongEvent
	if ev := NewCheckInEvent(attempt); ev.Committed {
		t.Error("wrong_event attempt reported as committed")
	}
}
