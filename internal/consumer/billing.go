package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ecomm-labs/ecommerce-backend/internal/models"
)

// ProcessedGuard claims an event key exactly once across redeliveries.
type ProcessedGuard interface {
	MarkProcessed(ctx context.Context, key string) (bool, error)
}

// BillingConsumer reacts to order CREATED events only (its queue binds
// order.created). Delivery is at-least-once, so processing is guarded
// by a dedup claim keyed on the order id.
type BillingConsumer struct {
	guard ProcessedGuard
}

func NewBillingConsumer(guard ProcessedGuard) *BillingConsumer {
	return &BillingConsumer{guard: guard}
}

func (c *BillingConsumer) Run(messages <-chan amqp.Delivery) {
	for msg := range messages {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := c.Handle(ctx, msg); err != nil {
			log.Printf("❌ Billing failed for %s: %v", msg.MessageId, err)
		}
		cancel()
	}
}

func (c *BillingConsumer) Handle(ctx context.Context, msg amqp.Delivery) error {
	var event models.OrderEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return fmt.Errorf("failed to parse order event: %w", err)
	}

	first, err := c.guard.MarkProcessed(ctx, "billing:order:"+event.OrderID)
	if err != nil {
		return fmt.Errorf("failed to claim order: %w", err)
	}
	if !first {
		log.Printf("📦 Order %s already billed, skipping redelivery", event.OrderID)
		return nil
	}

	// Placeholder billing logic
	log.Printf("💳 Billing order %s for %s - %s $%.2f",
		event.OrderID, event.Email, event.Billing.Payment, event.Billing.TotalPrice)
	return nil
}
