// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package journal

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/rollcall/internal/logging"
)

// gcDiscardRatio is the value log GC rewrite threshold.
const gcDiscardRatio = 0.5

// Serve runs retention until ctx is cancelled. It implements suture.Service.
func (s *Store) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.PruneInterval)
	defer ticker.Stop()

	s.runRetention(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runRetention(ctx)
		}
	}
}

// String names the service in supervisor logs.
func (s *Store) String() string {
	return "scan-journal"
}

func (s *Store) runRetention(ctx context.Context) {
	if s.cfg.Retention > 0 {
		cutoff := s.now().Add(-s.cfg.Retention)
		removed, err := s.Prune(ctx, cutoff)
		switch {
		case err != nil:
			logging.Error().Err(err).Msg("Scan journal pruning failed")
		case removed > 0:
			logging.Info().Int("removed", removed).Time("cutoff", cutoff).Msg("Scan journal pruned expired records")
		}
	}

	if s.cfg.InMemory {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	if err := s.db.RunValueLogGC(gcDiscardRatio); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
		logging.Warn().Err(err).Msg("Scan journal value log GC failed")
	}
}
