// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package journal

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/rollcall/internal/checkin"
	"github.com/tomtom215/rollcall/internal/logging"
	"github.com/tomtom215/rollcall/internal/metrics"
	"github.com/tomtom215/rollcall/internal/models"
)

var (
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("journal is closed")

	// ErrMissingEvent is returned when a record has no event ID.
	ErrMissingEvent = errors.New("scan record has no event id")
)

// Ensure Store implements checkin.Recorder
var _ checkin.Recorder = (*Store)(nil)

const keyPrefix = "scan:"

// Config configures the journal store.
type Config struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path     string
	InMemory bool

	// SyncWrites fsyncs every write.
	SyncWrites bool

	// Retention is how long records are kept. Zero keeps them forever.
	Retention time.Duration

	// PruneInterval is how often Serve prunes. Defaults to one hour.
	PruneInterval time.Duration
}

// Store is a BadgerDB-backed scan journal.
type Store struct {
	db  *badger.DB
	cfg Config
	now func() time.Time

	mu     sync.RWMutex
	closed bool
}

// Open opens (or creates) the journal.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, fmt.Errorf("journal path is required")
	}
	if cfg.PruneInterval <= 0 {
		cfg.PruneInterval = time.Hour
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts.SyncWrites = cfg.SyncWrites
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Dur("retention", cfg.Retention).
		Msg("Scan journal opened")

	return &Store{db: db, cfg: cfg, now: time.Now}, nil
}

// recordKey builds the storage key for a record.
func recordKey(rec *models.ScanRecord) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d:%s",
		keyPrefix, url.QueryEscape(rec.EventID), rec.ScannedAt.UnixNano(), rec.ID))
}

func eventPrefix(eventID string) []byte {
	return []byte(keyPrefix + url.QueryEscape(eventID) + ":")
}

// keyTime extracts the scan time from a key.
func keyTime(key []byte) (time.Time, bool) {
	parts := strings.SplitN(string(key), ":", 4)
	if len(parts) != 4 {
		return time.Time{}, false
	}
	nanos, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(0, nanos), true
}

func (s *Store) checkOpen() error {
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Ping reports whether the store can serve reads. It backs the readiness check.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return ErrClosed
	}
	return nil
}

// Append persists one record. Missing IDs and timestamps are filled in.
func (s *Store) Append(_ context.Context, rec models.ScanRecord) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	if rec.EventID == "" {
		return ErrMissingEvent
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.ScannedAt.IsZero() {
		rec.ScannedAt = s.now().UTC()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal scan record: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(recordKey(&rec), data))
	})
	if err != nil {
		return fmt.Errorf("write scan record: %w", err)
	}
	return nil
}

// RecordAttempt journals a completed attempt. Failures are logged, not returned.
func (s *Store) RecordAttempt(ctx context.Context, attempt checkin.Attempt) {
	err := s.Append(ctx, attempt.Record)
	metrics.RecordJournalWrite(err)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).
			Str("record_id", attempt.Record.ID).
			Str("event_id", attempt.Record.EventID).
			Msg("Failed to journal scan attempt")
	}
}

// Recent returns up to limit records for an event, newest first.
// A non-positive limit returns every record.
func (s *Store) Recent(_ context.Context, eventID string, limit int) ([]models.ScanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	prefix := eventPrefix(eventID)
	records := make([]models.ScanRecord, 0)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := append(append([]byte{}, prefix...), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			var rec models.ScanRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				logging.Warn().Err(err).Str("key", string(it.Item().Key())).Msg("Skipping unreadable scan record")
				continue
			}
			records = append(records, rec)
			if limit > 0 && len(records) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read scan records: %w", err)
	}
	return records, nil
}

// Summary counts an event's attempts per outcome.
func (s *Store) Summary(_ context.Context, eventID string) (models.CheckInSummary, error) {
	summary := models.CheckInSummary{
		EventID:  eventID,
		Outcomes: make(map[models.Outcome]int, len(models.AllOutcomes)),
	}
	for _, o := range models.AllOutcomes {
		summary.Outcomes[o] = 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return summary, err
	}

	prefix := eventPrefix(eventID)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec models.ScanRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				continue
			}

			summary.Total++
			summary.Outcomes[rec.Outcome]++

			at := rec.ScannedAt
			if summary.FirstScan == nil || at.Before(*summary.FirstScan) {
				summary.FirstScan = &at
			}
			if summary.LastScan == nil || at.After(*summary.LastScan) {
				summary.LastScan = &at
			}
		}
		return nil
	})
	if err != nil {
		return summary, fmt.Errorf("summarize scan records: %w", err)
	}
	return summary, nil
}

// Prune deletes records scanned before cutoff and reports how many were removed.
func (s *Store) Prune(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return 0, err
	}

	var keysToDelete [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			if at, ok := keyTime(key); ok && at.Before(cutoff) {
				keysToDelete = append(keysToDelete, key)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan for expired records: %w", err)
	}
	if len(keysToDelete) == 0 {
		return 0, nil
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range keysToDelete {
		if err := wb.Delete(key); err != nil {
			return 0, fmt.Errorf("delete expired record: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("flush deletes: %w", err)
	}
	return len(keysToDelete), nil
}

// Close closes the database. It is safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	logging.Info().Msg("Scan journal closed")
	return nil
}
