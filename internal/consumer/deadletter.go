package consumer

import (
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DeadLetterConsumer drains the dead-letter holding area for manual
// inspection. It only reports; a message is acked only once its log
// write is done, so anything an inspector crash left unlogged stays
// queued for the next run.
type DeadLetterConsumer struct{}

func NewDeadLetterConsumer() *DeadLetterConsumer {
	return &DeadLetterConsumer{}
}

func (c *DeadLetterConsumer) Run(messages <-chan amqp.Delivery) {
	for msg := range messages {
		c.Handle(msg)
		msg.Ack(false)
	}
}

func (c *DeadLetterConsumer) Handle(msg amqp.Delivery) {
	log.Printf("💀 Dead letter received: %s", msg.MessageId)
	log.Printf("   Routing key: %s", msg.RoutingKey)
	log.Printf("   Body: %s", string(msg.Body))

	if n := retryCount(msg.Headers); n > 0 {
		log.Printf("   Retries before dead-lettering: %d", n)
	}

	// x-death carries the broker's own account of the failure
	if xDeath, ok := msg.Headers["x-death"].([]interface{}); ok {
		for _, death := range xDeath {
			if info, ok := death.(amqp.Table); ok {
				log.Printf("   Reason: %v (queue %v, count %v)",
					info["reason"], info["queue"], info["count"])
			}
		}
	}
}
