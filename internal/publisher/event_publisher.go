package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ecomm-labs/ecommerce-backend/internal/messaging"
	"github.com/ecomm-labs/ecommerce-backend/internal/models"
)

// HeaderEventType carries the event-type label alongside the payload so
// consumers can read it without decoding the body.
const HeaderEventType = "eventType"

// EventPublisher fans domain events out through one topic exchange.
// Routing keys carry the event-type label; consumers filter by binding.
type EventPublisher struct {
	mq       *messaging.RabbitMQ
	exchange string
}

func NewEventPublisher(mq *messaging.RabbitMQ, exchange string) (*EventPublisher, error) {
	if err := mq.DeclareTopicExchange(exchange); err != nil {
		return nil, err
	}

	return &EventPublisher{mq: mq, exchange: exchange}, nil
}

// PublishProductEvent publishes a product lifecycle notification.
func (p *EventPublisher) PublishProductEvent(ctx context.Context, event models.ProductEvent) error {
	if !event.EventType.Valid() {
		return fmt.Errorf("unknown product event type: %q", event.EventType)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal product event: %w", err)
	}

	headers := amqp.Table{HeaderEventType: string(event.EventType)}
	return p.mq.Publish(ctx, p.exchange, event.EventType.RoutingKey(), body, uuid.NewString(), headers)
}

// PublishOrderEvent publishes an order lifecycle notification.
func (p *EventPublisher) PublishOrderEvent(ctx context.Context, event models.OrderEvent, eventType models.OrderEventType) error {
	if !eventType.Valid() {
		return fmt.Errorf("unknown order event type: %q", eventType)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	headers := amqp.Table{HeaderEventType: string(eventType)}
	return p.mq.Publish(ctx, p.exchange, eventType.RoutingKey(), body, uuid.NewString(), headers)
}
