// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package rsvpapi

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSource supplies the bearer token for backend requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed bearer token. When the token is a JWT its exp claim
// is read (without verifying the signature, which only the backend can do)
// so an expired session is reported before any request is sent.
type StaticToken struct {
	raw       string
	expiresAt time.Time
	now       func() time.Time
}

// NewStaticToken wraps raw. Opaque tokens never expire locally.
func NewStaticToken(raw string) *StaticToken {
	t := &StaticToken{raw: raw, now: time.Now}
	if raw == "" {
		return t
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return t
	}
	if exp, err := parsed.Claims.GetExpirationTime(); err == nil && exp != nil {
		t.expiresAt = exp.Time
	}
	return t
}

// Token returns the raw token or an ErrSessionExpired error once exp has passed.
func (t *StaticToken) Token(_ context.Context) (string, error) {
	if !t.expiresAt.IsZero() && !t.now().Before(t.expiresAt) {
		return "", fmt.Errorf("bearer token expired at %s: %w", t.expiresAt.Format(time.RFC3339), ErrSessionExpired)
	}
	return t.raw, nil
}

// ExpiresAt returns the exp claim, or the zero time when unknown.
func (t *StaticToken) ExpiresAt() time.Time {
	return t.expiresAt
}
