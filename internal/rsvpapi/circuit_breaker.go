// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package rsvpapi

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/rollcall/internal/logging"
	"github.com/tomtom215/rollcall/internal/metrics"
	"github.com/tomtom215/rollcall/internal/models"
)

// Ensure CircuitBreakerClient implements API
var _ API = (*CircuitBreakerClient)(nil)

// BreakerConfig tunes the circuit breaker. Zero values use the defaults.
type BreakerConfig struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	MinRequests uint32
	FailureRate float64
}

// DefaultBreakerConfig returns the production breaker settings:
// 3 trial requests in half-open state, a 1 minute window, 30 seconds open,
// tripping at a 60% failure rate over at least 10 requests.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:        "rsvp-backend",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		MinRequests: 10,
		FailureRate: 0.6,
	}
}

// CircuitBreakerClient wraps an API with the circuit breaker pattern.
type CircuitBreakerClient struct {
	client API
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// NewCircuitBreakerClient wraps client with a circuit breaker.
func NewCircuitBreakerClient(client API, cfg BreakerConfig) *CircuitBreakerClient {
	def := DefaultBreakerConfig()
	if cfg.Name == "" {
		cfg.Name = def.Name
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = def.MaxRequests
	}
	if cfg.Interval == 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MinRequests == 0 {
		cfg.MinRequests = def.MinRequests
	}
	if cfg.FailureRate == 0 {
		cfg.FailureRate = def.FailureRate
	}

	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(0) // 0 = closed
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cfg.Name).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= cfg.FailureRate
			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening RSVP backend circuit")
			}
			return shouldTrip
		},

		// Rejections of the request itself say nothing about backend health.
		IsSuccessful: isBreakerSuccess,

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] RSVP backend state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &CircuitBreakerClient{client: client, cb: cb, name: cfg.Name}
}

func isBreakerSuccess(err error) bool {
	if err == nil || errors.Is(err, ErrSessionExpired) || errors.Is(err, context.Canceled) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsClientError()
}

// State returns the current breaker state.
func (cbc *CircuitBreakerClient) State() gobreaker.State {
	return cbc.cb.State()
}

// execute wraps a backend call with circuit breaker protection
func (cbc *CircuitBreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := cbc.cb.Execute(fn)

	if err != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] RSVP backend request rejected")
		case isBreakerSuccess(err):
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
		default:
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "failure").Inc()
			counts := cbc.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbc.name).Set(float64(counts.ConsecutiveFailures))
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbc.name).Set(0)
	return result, nil
}

// ListEvents lists events with circuit breaker protection
func (cbc *CircuitBreakerClient) ListEvents(ctx context.Context) ([]models.Event, error) {
	result, err := cbc.execute(func() (interface{}, error) {
		return cbc.client.ListEvents(ctx)
	})
	if err != nil {
		return nil, err
	}
	events, ok := result.([]models.Event)
	if !ok {
		return nil, errors.New("circuit breaker: unexpected result type for ListEvents")
	}
	return events, nil
}

// ValidateCode validates a code with circuit breaker protection
func (cbc *CircuitBreakerClient) ValidateCode(ctx context.Context, code string) (*models.ValidateResponse, error) {
	result, err := cbc.execute(func() (interface{}, error) {
		return cbc.client.ValidateCode(ctx, code)
	})
	if err != nil {
		return nil, err
	}
	resp, ok := result.(*models.ValidateResponse)
	if !ok {
		return nil, errors.New("circuit breaker: unexpected result type for ValidateCode")
	}
	return resp, nil
}

// CommitCheckIn commits a check-in with circuit breaker protection
func (cbc *CircuitBreakerClient) CommitCheckIn(ctx context.Context, code string) (*models.CommitResponse, error) {
	result, err := cbc.execute(func() (interface{}, error) {
		return cbc.client.CommitCheckIn(ctx, code)
	})
	if err != nil {
		return nil, err
	}
	resp, ok := result.(*models.CommitResponse)
	if !ok {
		return nil, errors.New("circuit breaker: unexpected result type for CommitCheckIn")
	}
	return resp, nil
}

// stateToFloat converts circuit breaker state to a metric value
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
