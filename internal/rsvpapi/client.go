// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package rsvpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/rollcall/internal/logging"
	"github.com/tomtom215/rollcall/internal/metrics"
	"github.com/tomtom215/rollcall/internal/models"
)

// Endpoint labels used for metrics and logs.
const (
	endpointEvents   = "events"
	endpointValidate = "validate"
	endpointCommit   = "commit"
)

// API defines the backend operations used by Rollcall.
// Both HTTPClient and CircuitBreakerClient implement this interface.
type API interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
	ValidateCode(ctx context.Context, code string) (*models.ValidateResponse, error)
	CommitCheckIn(ctx context.Context, code string) (*models.CommitResponse, error)
}

// Ensure HTTPClient implements API
var _ API = (*HTTPClient)(nil)

// Config holds backend client settings.
type Config struct {
	BaseURL string
	Token   TokenSource
	Timeout time.Duration

	// RequestsPerSecond bounds outbound requests. Zero disables limiting.
	RequestsPerSecond float64
	Burst             int

	// OnSessionExpired is called when the backend rejects the bearer token.
	OnSessionExpired func(err error)
}

// HTTPClient provides access to the RSVP backend REST API.
type HTTPClient struct {
	baseURL          string
	token            TokenSource
	httpClient       *http.Client
	limiter          *rate.Limiter
	onSessionExpired func(err error)
}

// NewHTTPClient creates a backend client.
func NewHTTPClient(cfg Config) *HTTPClient {
	// Normalize URL (remove trailing slash)
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	token := cfg.Token
	if token == nil {
		token = NewStaticToken("")
	}

	return &HTTPClient{
		baseURL:          baseURL,
		token:            token,
		httpClient:       &http.Client{Timeout: timeout},
		limiter:          limiter,
		onSessionExpired: cfg.OnSessionExpired,
	}
}

// ListEvents retrieves the events offered by the event selector.
func (c *HTTPClient) ListEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := c.do(ctx, http.MethodGet, endpointEvents, "/event", &events); err != nil {
		return nil, err
	}
	return events, nil
}

// ValidateCode looks up a badge code without changing any state.
func (c *HTTPClient) ValidateCode(ctx context.Context, code string) (*models.ValidateResponse, error) {
	var resp models.ValidateResponse
	if err := c.do(ctx, http.MethodGet, endpointValidate, "/qr/validate/"+url.PathEscape(code), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CommitCheckIn marks the attendee behind code as checked in.
func (c *HTTPClient) CommitCheckIn(ctx context.Context, code string) (*models.CommitResponse, error) {
	var resp models.CommitResponse
	if err := c.do(ctx, http.MethodPost, endpointCommit, "/qr/check-in/"+url.PathEscape(code), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do performs an authenticated request and decodes a 2xx JSON body into out.
func (c *HTTPClient) do(ctx context.Context, method, endpoint, path string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s request throttled: %w", endpoint, err)
	}

	token, err := c.token.Token(ctx)
	if err != nil {
		if errors.Is(err, ErrSessionExpired) {
			c.sessionExpired(err)
		}
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordBackendRequest(endpoint, 0, time.Since(start))
		return fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.RecordBackendRequest(endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := decodeAPIError(resp)
		if resp.StatusCode == http.StatusUnauthorized {
			c.sessionExpired(apiErr)
		}
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%s response was empty", endpoint)
		}
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

func (c *HTTPClient) sessionExpired(err error) {
	metrics.BackendSessionExpired.Inc()
	logging.Warn().Err(err).Msg("RSVP backend session expired")
	if c.onSessionExpired != nil {
		c.onSessionExpired(err)
	}
}
