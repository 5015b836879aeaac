package driven

import (
	"context"

	"github.com/dstanley/certhost/internal/domain/model"
)

// Notifier defines the driven port for the downstream notification bus.
// Delivery is best-effort fire-and-forget: implementations log delivery
// failures rather than retrying, and a Send error only ever means the
// notification could not be handed to the bus at all.
type Notifier interface {
	Send(ctx context.Context, event string, notice model.IssuanceNotice) error
}
