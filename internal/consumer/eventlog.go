package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ecomm-labs/ecommerce-backend/internal/models"
)

// headerEventType mirrors the header set by the publisher.
const headerEventType = "eventType"

// EventStore is the slice of the event repository the audit consumer needs.
type EventStore interface {
	Insert(ctx context.Context, rec models.EventRecord) (bool, error)
}

// EventLogConsumer writes one append-only audit row per received event.
// It runs on the direct-push path (auto-ack): a failed write is logged
// and lost, never redelivered by this path.
type EventLogConsumer struct {
	store     EventStore
	retention time.Duration
}

func NewEventLogConsumer(store EventStore, retention time.Duration) *EventLogConsumer {
	return &EventLogConsumer{store: store, retention: retention}
}

// Run drains the delivery channel until it closes.
func (c *EventLogConsumer) Run(messages <-chan amqp.Delivery) {
	for msg := range messages {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := c.Handle(ctx, msg); err != nil {
			log.Printf("❌ Failed to log event %s: %v", msg.MessageId, err)
		}
		cancel()
	}
}

// Handle records a single delivery. The audit row timestamp comes from
// the broker publish timestamp, so redelivering the identical message
// rebuilds the identical (pk, sk) key and collapses to one row.
func (c *EventLogConsumer) Handle(ctx context.Context, msg amqp.Delivery) error {
	at := msg.Timestamp
	if at.IsZero() {
		at = time.Now()
	}

	rec, err := c.buildRecord(msg, at)
	if err != nil {
		return err
	}

	inserted, err := c.store.Insert(ctx, rec)
	if err != nil {
		return err
	}
	if !inserted {
		log.Printf("📦 Duplicate event collapsed: %s / %s", rec.PK, rec.SK)
		return nil
	}

	log.Printf("📝 Event logged: %s / %s", rec.PK, rec.SK)
	return nil
}

func (c *EventLogConsumer) buildRecord(msg amqp.Delivery, at time.Time) (models.EventRecord, error) {
	switch {
	case strings.HasPrefix(msg.RoutingKey, "product."):
		var ev models.ProductEvent
		if err := json.Unmarshal(msg.Body, &ev); err != nil {
			return models.EventRecord{}, fmt.Errorf("failed to parse product event: %w", err)
		}
		return models.NewProductEventRecord(ev, at, c.retention), nil

	case strings.HasPrefix(msg.RoutingKey, "order."):
		var ev models.OrderEvent
		if err := json.Unmarshal(msg.Body, &ev); err != nil {
			return models.EventRecord{}, fmt.Errorf("failed to parse order event: %w", err)
		}
		eventType := models.OrderEventType(eventTypeHeader(msg.Headers))
		if !eventType.Valid() {
			return models.EventRecord{}, fmt.Errorf("missing event type header on %s", msg.RoutingKey)
		}
		return models.NewOrderEventRecord(ev, eventType, msg.MessageId, at, c.retention), nil
	}

	return models.EventRecord{}, fmt.Errorf("unexpected routing key: %s", msg.RoutingKey)
}

func eventTypeHeader(headers amqp.Table) string {
	if v, ok := headers[headerEventType].(string); ok {
		return v
	}
	return ""
}
