// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package events

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/rollcall/internal/checkin"
	"github.com/tomtom215/rollcall/internal/logging"
	"github.com/tomtom215/rollcall/internal/metrics"
	"github.com/tomtom215/rollcall/internal/models"
)

// DefaultTopic carries check-in outcomes.
const DefaultTopic = "rollcall.checkins"

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// Ensure Publisher implements checkin.Recorder
var _ checkin.Recorder = (*Publisher)(nil)

// CheckInEvent is the message body published for each attempt.
type CheckInEvent struct {
	models.ScanRecord
	Committed bool                     `json:"committed"`
	Attendee  *models.AttendeeSnapshot `json:"attendee,omitempty"`
}

// PublisherConfig configures the outcome publisher.
type PublisherConfig struct {
	Topic string

	// Breaker settings; zero values use defaults.
	BreakerName      string
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// Publisher publishes check-in outcomes through a Watermill publisher.
type Publisher struct {
	publisher message.Publisher
	topic     string
	cb        *gobreaker.CircuitBreaker[interface{}]
	name      string

	mu     sync.RWMutex
	closed bool
}

// NewPublisher wraps pub with circuit breaker protection.
func NewPublisher(pub message.Publisher, cfg PublisherConfig) *Publisher {
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	if cfg.BreakerName == "" {
		cfg.BreakerName = "checkin-publisher"
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	metrics.CircuitBreakerState.WithLabelValues(cfg.BreakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cfg.BreakerName,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("[CIRCUIT BREAKER] Publisher state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &Publisher{
		publisher: pub,
		topic:     cfg.Topic,
		cb:        cb,
		name:      cfg.BreakerName,
	}
}

// NewGoChannel creates the in-process transport used when NATS is disabled.
func NewGoChannel(logger watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, logger)
}

// Topic returns the topic outcomes are published on.
func (p *Publisher) Topic() string {
	return p.topic
}

// State returns the breaker state.
func (p *Publisher) State() gobreaker.State {
	return p.cb.State()
}

// RecordAttempt publishes the attempt. Failures are logged and counted,
// never returned.
func (p *Publisher) RecordAttempt(ctx context.Context, attempt checkin.Attempt) {
	err := p.Publish(ctx, NewCheckInEvent(attempt))
	metrics.RecordEventPublish(err)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Str("record_id", attempt.Record.ID).
			Str("outcome", string(attempt.Record.Outcome)).
			Msg("Failed to publish check-in event")
	}
}

// NewCheckInEvent builds the published body for an attempt.
func NewCheckInEvent(attempt checkin.Attempt) CheckInEvent {
	return CheckInEvent{
		ScanRecord: attempt.Record,
		Committed:  attempt.Record.Outcome.Committed(),
		Attendee:   attempt.Result.Attendee,
	}
}

// Publish serializes and publishes one event with circuit breaker protection.
func (p *Publisher) Publish(ctx context.Context, event CheckInEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("serialize check-in event: %w", err)
	}

	id := event.ID
	if id == "" {
		id = watermill.NewUUID()
	}
	msg := message.NewMessage(id, data)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_id", event.EventID)
	msg.Metadata.Set("station", event.Station)
	msg.Metadata.Set("outcome", string(event.Outcome))
	msg.Metadata.Set("manual", strconv.FormatBool(event.Manual))

	_, err = p.cb.Execute(func() (interface{}, error) {
		return nil, p.publisher.Publish(p.topic, msg)
	})
	if err != nil {
		outcome := "failure"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "rejected"
		}
		metrics.CircuitBreakerRequests.WithLabelValues(p.name, outcome).Inc()
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}
	metrics.CircuitBreakerRequests.WithLabelValues(p.name, "success").Inc()
	return nil
}

// Close closes the underlying publisher. It is safe to call more than once.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}
