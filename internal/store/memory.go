// Package store implements the keyed stores behind the decision core.
// Activity levels and feedback history are keyed globally by user id, not
// per session, so stores are injected into components rather than held as
// ambient singletons - tests get an isolated store per case.
package store

import (
	"context"
	"sync"
	"time"

	"meetsense/internal/types"
)

// MemoryActivityStore is the in-memory types.ActivityStore.
type MemoryActivityStore struct {
	mu      sync.RWMutex
	levels  map[string]types.ActivityLevel
	changes map[string][]types.ActivityLevelChange
}

// NewMemoryActivityStore creates an empty activity store.
func NewMemoryActivityStore() *MemoryActivityStore {
	return &MemoryActivityStore{
		levels:  make(map[string]types.ActivityLevel),
		changes: make(map[string][]types.ActivityLevelChange),
	}
}

// Level returns the user's current level and whether one was ever set.
func (s *MemoryActivityStore) Level(userID string) (types.ActivityLevel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.levels[userID]
	return l, ok
}

// SetLevel replaces the user's current level.
func (s *MemoryActivityStore) SetLevel(userID string, level types.ActivityLevel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels[userID] = level
}

// AppendChange appends to the user's audit log, trimming the oldest entries
// beyond maxEntries.
func (s *MemoryActivityStore) AppendChange(userID string, change types.ActivityLevelChange, maxEntries int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := append(s.changes[userID], change)
	if maxEntries > 0 && len(log) > maxEntries {
		log = log[len(log)-maxEntries:]
	}
	s.changes[userID] = log
}

// Changes returns a copy of the user's audit log, oldest first.
func (s *MemoryActivityStore) Changes(userID string) []types.ActivityLevelChange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log := s.changes[userID]
	out := make([]types.ActivityLevelChange, len(log))
	copy(out, log)
	return out
}

// MemoryFeedbackStore is the in-memory types.FeedbackStore. The default
// backend: learning state lives for the process lifetime only.
type MemoryFeedbackStore struct {
	mu      sync.RWMutex
	records map[string][]types.FeedbackRecord
}

// NewMemoryFeedbackStore creates an empty feedback store.
func NewMemoryFeedbackStore() *MemoryFeedbackStore {
	return &MemoryFeedbackStore{records: make(map[string][]types.FeedbackRecord)}
}

// Append records one labeled outcome for a user.
func (s *MemoryFeedbackStore) Append(_ context.Context, rec types.FeedbackRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.UserID] = append(s.records[rec.UserID], rec)
	return nil
}

// ListByUser returns all records for a user, oldest first.
func (s *MemoryFeedbackStore) ListByUser(_ context.Context, userID string) ([]types.FeedbackRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := s.records[userID]
	out := make([]types.FeedbackRecord, len(recs))
	copy(out, recs)
	return out, nil
}

// ListSince returns records recorded at or after the cutoff, oldest first.
func (s *MemoryFeedbackStore) ListSince(_ context.Context, userID string, cutoff time.Time) ([]types.FeedbackRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.FeedbackRecord
	for _, rec := range s.records[userID] {
		if !rec.RecordedAt.Before(cutoff) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryFeedbackStore) Close() error { return nil }
