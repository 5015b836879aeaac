package driven

import (
	"context"
	"time"

	"github.com/dstanley/certhost/internal/domain/model"
)

// EventFeed defines the driven port for the external events platform.
type EventFeed interface {
	// FetchEvents returns events within the given date window. Zero bounds
	// are omitted from the query. Failures wrap ErrFetchFailed.
	FetchEvents(ctx context.Context, after, before time.Time) ([]model.Event, error)
}
