// Package redishost implements the HostStore port on Redis. The whole table
// is one JSON blob under a single key, rewritten atomically on every
// mutation; the table is small (one entry per event host) so table-level
// granularity is acceptable. Writers publish on a companion channel so that
// other service instances can keep their in-memory mirrors fresh.
package redishost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/dstanley/certhost/internal/domain/model"
	"github.com/dstanley/certhost/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.HostStore = (*Store)(nil)

// Store is the Redis-backed HostStore. Safe for concurrent use.
//
// The cross-instance add/add race is accepted: the check-then-write is not
// atomic at table granularity, and a duplicate issuance between
// horizontally scaled instances is a low-probability, tolerable outcome.
// Within one instance the scheduler serializes cycles, so the race cannot
// happen locally.
type Store struct {
	client  *redis.Client
	key     string
	channel string

	mu     sync.RWMutex
	mirror map[string]model.HostRecord
}

// New creates a store persisting under "<prefix>:hosts" (or "hosts" when
// prefix is empty) and announcing changes on "<key>:changed".
func New(client *redis.Client, prefix string) *Store {
	key := "hosts"
	if prefix != "" {
		key = prefix + ":hosts"
	}

	return &Store{
		client:  client,
		key:     key,
		channel: key + ":changed",
		mirror:  make(map[string]model.HostRecord),
	}
}

// GetAll fetches the table blob, refreshes the mirror, and returns a copy.
// On backend failure the mirror is left untouched and an empty map is
// returned alongside an error wrapping driven.ErrStoreUnavailable.
func (s *Store) GetAll(ctx context.Context) (map[string]model.HostRecord, error) {
	raw, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		s.setMirror(nil)
		return map[string]model.HostRecord{}, nil
	}
	if err != nil {
		return map[string]model.HostRecord{}, fmt.Errorf("get %s: %w: %w", s.key, driven.ErrStoreUnavailable, err)
	}

	var hosts map[string]model.HostRecord
	if err := json.Unmarshal([]byte(raw), &hosts); err != nil {
		return map[string]model.HostRecord{}, fmt.Errorf("decode %s: %w: %w", s.key, driven.ErrStoreUnavailable, err)
	}
	if hosts == nil {
		hosts = map[string]model.HostRecord{}
	}

	s.setMirror(hosts)

	return maps.Clone(hosts), nil
}

// GetByID returns the record for id, or nil when absent.
func (s *Store) GetByID(ctx context.Context, id string) (*model.HostRecord, error) {
	hosts, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	rec, ok := hosts[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// IsStored round-trips to Redis for an authoritative existence check.
func (s *Store) IsStored(ctx context.Context, id string) (bool, error) {
	hosts, err := s.GetAll(ctx)
	if err != nil {
		return false, err
	}

	_, ok := hosts[id]
	return ok, nil
}

// IsStoredFast checks the in-memory mirror only. The mirror is refreshed by
// every read, every local write, and the change-channel subscription, so it
// lags other writers by at most one notification round-trip.
func (s *Store) IsStoredFast(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.mirror[id]
	return ok
}

// Add inserts the record iff its id is not already present. Adding an
// already-stored id is a no-op.
func (s *Store) Add(ctx context.Context, rec model.HostRecord) error {
	hosts, err := s.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("add host %q: %w", rec.ID, err)
	}

	if _, ok := hosts[rec.ID]; ok {
		return nil
	}

	hosts[rec.ID] = rec
	return s.save(ctx, hosts)
}

// Update replaces an existing record with the same id, failing with
// driven.ErrNotFound when the id was never stored.
func (s *Store) Update(ctx context.Context, rec model.HostRecord) error {
	hosts, err := s.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("update host %q: %w", rec.ID, err)
	}

	if _, ok := hosts[rec.ID]; !ok {
		return fmt.Errorf("update host %q: %w", rec.ID, driven.ErrNotFound)
	}

	hosts[rec.ID] = rec
	return s.save(ctx, hosts)
}

// Remove deletes the record for id; removing an unknown id is a no-op.
func (s *Store) Remove(ctx context.Context, id string) error {
	hosts, err := s.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("remove host %q: %w", id, err)
	}

	if _, ok := hosts[id]; !ok {
		return nil
	}

	delete(hosts, id)
	return s.save(ctx, hosts)
}

// StartSync subscribes to the change channel and refreshes the mirror
// whenever any writer (this instance included) touches the table. It blocks
// until ctx is canceled and is meant to run in its own goroutine; without
// it the mirror still tracks this instance's own reads and writes.
func (s *Store) StartSync(ctx context.Context) {
	sub := s.client.Subscribe(ctx, s.channel)
	defer sub.Close()

	slog.Info("host mirror sync started", "channel", s.channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			slog.Info("host mirror sync stopped")
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			if _, err := s.GetAll(ctx); err != nil {
				slog.Error("host mirror refresh failed", "error", err)
			}
		}
	}
}

// save persists the full table as one atomic SET, updates the mirror, and
// announces the change. A failed announce only delays other instances'
// mirrors, so it is logged rather than returned.
func (s *Store) save(ctx context.Context, hosts map[string]model.HostRecord) error {
	blob, err := json.Marshal(hosts)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.key, err)
	}

	if err := s.client.Set(ctx, s.key, blob, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w: %w", s.key, driven.ErrStoreUnavailable, err)
	}

	s.setMirror(hosts)

	if err := s.client.Publish(ctx, s.channel, "changed").Err(); err != nil {
		slog.Error("host change announce failed", "channel", s.channel, "error", err)
	}

	return nil
}

func (s *Store) setMirror(hosts map[string]model.HostRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mirror = make(map[string]model.HostRecord, len(hosts))
	maps.Copy(s.mirror, hosts)
}
