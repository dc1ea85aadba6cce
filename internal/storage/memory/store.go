// Package memory provides an in-memory progress store. It backs tests
// and single-process runs where persistence across restarts is not
// needed.
package memory

import (
	"context"
	"sync"

	"github.com/contestkit/arena/internal/domain"
)

type progressKey struct {
	contestID string
	userID    string
}

// Store keeps progress snapshots in process memory.
type Store struct {
	mu   sync.RWMutex
	data map[progressKey]domain.ProgressSnapshot
}

// New creates an empty store.
func New() *Store {
	return &Store{data: make(map[progressKey]domain.ProgressSnapshot)}
}

// Snapshot returns a copy of the user's full score map for a contest.
// A user with no recorded scores gets an empty snapshot, not an error.
func (s *Store) Snapshot(_ context.Context, contestID, userID string) (domain.ProgressSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.data[progressKey{contestID, userID}]
	if !ok {
		return domain.ProgressSnapshot{}, nil
	}
	return snap.Clone(), nil
}

// RecordScore persists a grading result, keeping the best score per slot
// so progression never regresses, and returns the updated snapshot.
func (s *Store) RecordScore(_ context.Context, rec domain.ScoreRecord) (domain.ProgressSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := progressKey{rec.ContestID, rec.UserID}
	snap, ok := s.data[key]
	if !ok {
		snap = domain.ProgressSnapshot{}
		s.data[key] = snap
	}

	milestone, ok := snap[rec.Milestone]
	if !ok {
		milestone = make(map[int]float64)
		snap[rec.Milestone] = milestone
	}
	if cur, exists := milestone[rec.TestCase]; !exists || rec.Score > cur {
		milestone[rec.TestCase] = rec.Score
	}

	return snap.Clone(), nil
}
