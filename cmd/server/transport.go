// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package main

import (
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/rollcall/internal/config"
	"github.com/tomtom215/rollcall/internal/events"
	"github.com/tomtom215/rollcall/internal/logging"
)

// outcomeTransport is the pub/sub pair check-in outcomes travel over.
type outcomeTransport struct {
	kind       string
	topic      string
	publisher  message.Publisher
	subscriber message.Subscriber
}

// initTransport selects NATS when enabled and an in-process channel otherwise.
func initTransport(cfg config.NATSConfig, logger watermill.LoggerAdapter) (*outcomeTransport, error) {
	topic := cfg.Subject
	if topic == "" {
		topic = events.DefaultTopic
	}

	if !cfg.Enabled {
		ch := events.NewGoChannel(logger)
		return &outcomeTransport{kind: "gochannel", topic: topic, publisher: ch, subscriber: ch}, nil
	}

	natsCfg := events.NATSConfig{URL: cfg.URL, MaxReconnects: cfg.MaxReconnects}
	pub, err := events.NewNATSPublisher(natsCfg, logger)
	if err != nil {
		return nil, err
	}
	sub, err := events.NewNATSSubscriber(natsCfg, logger)
	if err != nil {
		if closeErr := pub.Close(); closeErr != nil {
			logging.Warn().Err(closeErr).Msg("Failed to close NATS publisher")
		}
		return nil, err
	}
	return &outcomeTransport{kind: "nats", topic: topic, publisher: pub, subscriber: sub}, nil
}

// Close closes the subscriber and, when distinct, the publisher.
func (t *outcomeTransport) Close() error {
	var errs []error
	if err := t.subscriber.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close subscriber: %w", err))
	}
	if any(t.publisher) != any(t.subscriber) {
		if err := t.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	return errors.Join(errs...)
}
