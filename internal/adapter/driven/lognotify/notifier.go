// Package lognotify provides a Notifier that only logs. It stands in for
// the message bus when no brokers are configured, so development and test
// deployments can run the full issuance pipeline without Kafka.
package lognotify

import (
	"context"
	"log/slog"

	"github.com/dstanley/certhost/internal/domain/model"
	"github.com/dstanley/certhost/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Notifier = (*Notifier)(nil)

// Notifier logs each would-be notification and drops it.
type Notifier struct{}

// New creates a log-only notifier.
func New() *Notifier {
	return &Notifier{}
}

// Send logs the notification instead of publishing it.
func (n *Notifier) Send(ctx context.Context, event string, notice model.IssuanceNotice) error {
	slog.Info("notification (bus disabled)",
		"event", event,
		"username", notice.Username,
		"email", notice.Email,
		"locale", notice.Locale,
		"certificate_url", notice.CertificateURL,
	)
	return nil
}
