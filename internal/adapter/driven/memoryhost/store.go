// Package memoryhost provides an in-memory HostStore. It backs tests and
// the no-Redis development mode; the table lives only for the lifetime of
// the process.
package memoryhost

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/dstanley/certhost/internal/domain/model"
	"github.com/dstanley/certhost/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.HostStore = (*Store)(nil)

// Store is an in-memory HostStore. Safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	hosts map[string]model.HostRecord
}

// New creates an empty store.
func New() *Store {
	return &Store{hosts: make(map[string]model.HostRecord)}
}

// GetAll returns a copy of the full table.
func (s *Store) GetAll(ctx context.Context) (map[string]model.HostRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return maps.Clone(s.hosts), nil
}

// GetByID returns the record for id, or nil when absent.
func (s *Store) GetByID(ctx context.Context, id string) (*model.HostRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.hosts[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// IsStored reports whether a record exists for id.
func (s *Store) IsStored(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.hosts[id]
	return ok, nil
}

// IsStoredFast is identical to IsStored here; memory is its own mirror.
func (s *Store) IsStoredFast(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.hosts[id]
	return ok
}

// Add inserts the record iff its id is not already present.
func (s *Store) Add(ctx context.Context, rec model.HostRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.hosts[rec.ID]; ok {
		return nil
	}
	s.hosts[rec.ID] = rec
	return nil
}

// Update replaces an existing record with the same id.
func (s *Store) Update(ctx context.Context, rec model.HostRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.hosts[rec.ID]; !ok {
		return fmt.Errorf("update host %q: %w", rec.ID, driven.ErrNotFound)
	}
	s.hosts[rec.ID] = rec
	return nil
}

// Remove deletes the record for id if present.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.hosts, id)
	return nil
}
