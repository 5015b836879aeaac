package driven

import (
	"context"

	"github.com/dstanley/certhost/internal/domain/model"
)

// HostStore defines the driven port for issued-certificate persistence.
// The table is small (one entry per event host) and is persisted as a single
// blob, so every mutation rewrites the whole table. Implementations keep an
// in-memory mirror of the table for the fast-path existence check.
type HostStore interface {
	// GetAll returns the full table and refreshes the mirror as a side
	// effect. On backend failure it returns an empty map alongside an error
	// wrapping ErrStoreUnavailable.
	GetAll(ctx context.Context) (map[string]model.HostRecord, error)

	// GetByID returns the record for id, or nil when absent.
	GetByID(ctx context.Context, id string) (*model.HostRecord, error)

	// IsStored reports whether a record exists for id. It round-trips to
	// the backing store, so the answer is authoritative.
	IsStored(ctx context.Context, id string) (bool, error)

	// IsStoredFast checks the in-memory mirror only. It may lag writes made
	// by other service instances until the change feed catches up; callers
	// that cannot tolerate that use IsStored instead.
	IsStoredFast(id string) bool

	// Add inserts the record iff no record exists for its id. Adding an id
	// that is already stored is a no-op, not an error.
	Add(ctx context.Context, rec model.HostRecord) error

	// Update replaces the record with the same id. It returns an error
	// wrapping ErrNotFound when the id was never stored.
	Update(ctx context.Context, rec model.HostRecord) error

	// Remove deletes the record for id if present; removing an unknown id
	// is a no-op.
	Remove(ctx context.Context, id string) error
}
