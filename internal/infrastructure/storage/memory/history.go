// Package memory provides an in-process identifier history store.
// Issued identifiers are lost on restart, so it suits tests and ephemeral deployments.
package memory

import (
	"context"
	"sync"
	"time"

	"idforge/internal/core/apperror"
	"idforge/internal/core/id"
	"idforge/internal/core/numerator"
)

type record struct {
	id         id.ID
	identifier string
	typeTag    string
	createdAt  time.Time
}

// HistoryStore implements numerator.History in memory.
type HistoryStore struct {
	mu      sync.RWMutex
	records []record
	index   map[string]struct{}
}

var _ numerator.History = (*HistoryStore)(nil)

// NewHistoryStore creates an empty store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{index: make(map[string]struct{})}
}

// FindLast implements numerator.History.
// Records with equal timestamps are ordered by id, as the postgres store does.
func (s *HistoryStore) FindLast(_ context.Context, typeTag string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		last  record
		found bool
	)
	for _, r := range s.records {
		if r.typeTag != typeTag {
			continue
		}
		if !found || r.createdAt.After(last.createdAt) ||
			(r.createdAt.Equal(last.createdAt) && id.Before(last.id, r.id)) {
			last, found = r, true
		}
	}
	return last.identifier, found, nil
}

// Create implements numerator.History.
func (s *HistoryStore) Create(_ context.Context, identifier, typeTag string, createdAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[identifier]; ok {
		return apperror.NewDuplicate("identifier_history", "identifier", identifier)
	}
	s.index[identifier] = struct{}{}
	s.records = append(s.records, record{id: id.New(), identifier: identifier, typeTag: typeTag, createdAt: createdAt})
	return nil
}

// Exists implements numerator.History.
func (s *HistoryStore) Exists(_ context.Context, identifier string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.index[identifier]
	return ok, nil
}

// Import records identifiers in order. It stops at the first duplicate.
func (s *HistoryStore) Import(ctx context.Context, typeTag string, identifiers []string, createdAt time.Time) (int64, error) {
	var n int64
	for _, identifier := range identifiers {
		if err := s.Create(ctx, identifier, typeTag, createdAt); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Len returns the number of recorded identifiers.
func (s *HistoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Ping always succeeds.
func (s *HistoryStore) Ping(context.Context) error { return nil }
