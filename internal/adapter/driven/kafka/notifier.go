// Package kafka publishes issuance notifications to the message bus using
// franz-go. Delivery is fire-and-forget: produce errors are logged by the
// delivery callback and never retried by this layer.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/dstanley/certhost/internal/domain/model"
	"github.com/dstanley/certhost/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Notifier = (*Notifier)(nil)

// Notifier produces issuance events to a single topic. Records are keyed by
// username so all notifications for one host land in one partition.
type Notifier struct {
	client *kgo.Client
	topic  string
}

// envelope is the wire format for bus notifications.
type envelope struct {
	ID         string               `json:"id"`
	Event      string               `json:"event"`
	OccurredAt time.Time            `json:"occurredAt"`
	Payload    model.IssuanceNotice `json:"payload"`
}

// New connects a producer to the given brokers.
func New(brokers []string, topic string) (*Notifier, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return &Notifier{client: client, topic: topic}, nil
}

// Send enqueues the notification and returns once it is buffered. A non-nil
// error means the notification could not be encoded; delivery failures are
// logged asynchronously by the produce callback.
func (n *Notifier) Send(ctx context.Context, event string, notice model.IssuanceNotice) error {
	value, err := json.Marshal(envelope{
		ID:         uuid.NewString(),
		Event:      event,
		OccurredAt: time.Now().UTC(),
		Payload:    notice,
	})
	if err != nil {
		return fmt.Errorf("encode %s notification: %w", event, err)
	}

	record := &kgo.Record{
		Topic: n.topic,
		Key:   []byte(notice.Username),
		Value: value,
	}

	n.client.Produce(ctx, record, func(r *kgo.Record, err error) {
		if err != nil {
			slog.Error("notification delivery failed",
				"event", event,
				"username", notice.Username,
				"topic", n.topic,
				"error", err,
			)
		}
	})

	return nil
}

// Close flushes buffered records with a bounded wait and releases the
// producer.
func (n *Notifier) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := n.client.Flush(ctx); err != nil {
		slog.Error("kafka flush on shutdown failed", "error", err)
	}
	n.client.Close()

	return nil
}
