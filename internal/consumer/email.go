package consumer

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ecomm-labs/ecommerce-backend/internal/models"
)

// headerRetryCount tracks delivery attempts across republishes.
const headerRetryCount = "x-retry-count"

// Republisher re-enqueues a failed message for another attempt.
type Republisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body []byte, messageID string, headers amqp.Table) error
}

// EmailSender renders and sends one customer notification.
type EmailSender interface {
	Send(event models.OrderEvent) error
}

// LogSender is the placeholder sender: it renders the notification to
// the log instead of an SMTP relay.
type LogSender struct{}

func (LogSender) Send(event models.OrderEvent) error {
	log.Printf("📧 To: %s | Your order %s was received - total $%.2f, shipping %s via %s",
		event.Email, event.OrderID, event.Billing.TotalPrice,
		event.Shipping.Type, event.Shipping.Carrier)
	return nil
}

// EmailConsumer runs on the queued path: manual acks, bounded retry,
// dead-lettering. A message failing maxRetries attempts is rejected
// without requeue so the broker shunts it to the DLQ. Malformed records
// go straight to the DLQ rather than blocking the rest of the batch.
type EmailConsumer struct {
	mq         Republisher
	sender     EmailSender
	queue      string
	maxRetries int
}

func NewEmailConsumer(mq Republisher, sender EmailSender, queue string, maxRetries int) *EmailConsumer {
	return &EmailConsumer{
		mq:         mq,
		sender:     sender,
		queue:      queue,
		maxRetries: maxRetries,
	}
}

func (c *EmailConsumer) Run(messages <-chan amqp.Delivery) {
	for msg := range messages {
		c.Handle(msg)
	}
}

// Handle processes one delivery and settles it: ack on success,
// republish-with-count on a retryable failure, reject to the DLQ once
// the attempt budget is spent.
func (c *EmailConsumer) Handle(msg amqp.Delivery) {
	var event models.OrderEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Printf("💀 Malformed email record, dead-lettering: %v", err)
		msg.Nack(false, false)
		return
	}

	if err := c.sender.Send(event); err != nil {
		c.retry(msg, err)
		return
	}

	msg.Ack(false)
}

func (c *EmailConsumer) retry(msg amqp.Delivery, cause error) {
	attempt := retryCount(msg.Headers) + 1
	if attempt >= c.maxRetries {
		log.Printf("💀 Email for %s failed attempt %d/%d, dead-lettering: %v",
			msg.MessageId, attempt, c.maxRetries, cause)
		msg.Nack(false, false)
		return
	}

	headers := amqp.Table{headerRetryCount: int32(attempt)}
	if v, ok := msg.Headers[headerEventType]; ok {
		headers[headerEventType] = v
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Requeue through the default exchange straight back onto our own
	// queue. Going through the fan-out exchange would hand the retry to
	// every other bound consumer as a fresh delivery.
	if err := c.mq.Publish(ctx, "", c.queue, msg.Body, msg.MessageId, headers); err != nil {
		log.Printf("❌ Failed to requeue %s, dead-lettering: %v", msg.MessageId, err)
		msg.Nack(false, false)
		return
	}

	log.Printf("🔁 Email for %s requeued (attempt %d/%d): %v", msg.MessageId, attempt, c.maxRetries, cause)
	msg.Ack(false)
}

func retryCount(headers amqp.Table) int {
	switch v := headers[headerRetryCount].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}
