package messaging

import (
	"context"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewRabbitMQ(host string, port int, user, password string) (*RabbitMQ, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%d/", user, password, host, port)

	var conn *amqp.Connection
	var err error

	// Retry while the broker comes up
	for i := 0; i < 5; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		log.Printf("⏳ RabbitMQ not ready, retrying... (%d/5)", i+1)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	log.Println("✅ Connected to RabbitMQ")

	return &RabbitMQ{
		conn:    conn,
		channel: channel,
	}, nil
}

// DeclareTopicExchange creates a durable topic exchange if it doesn't exist.
func (r *RabbitMQ) DeclareTopicExchange(name string) error {
	err := r.channel.ExchangeDeclare(
		name,    // exchange name
		"topic", // type
		true,    // durable
		false,   // auto-delete
		false,   // internal
		false,   // no-wait
		nil,     // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	log.Printf("✅ Exchange declared: %s", name)
	return nil
}

// DeclareQueue creates a durable queue and binds it to the exchange
// under the given routing keys. A key of "#" subscribes unfiltered.
func (r *RabbitMQ) DeclareQueue(queue, exchange string, bindingKeys ...string) error {
	return r.declareQueue(queue, exchange, nil, bindingKeys...)
}

// DeclareQueueWithDLQ creates a durable queue whose rejected messages
// dead-letter into dlqQueue via dlx. The dead-letter routing key is the
// source queue name, so one DLX can serve many queues.
func (r *RabbitMQ) DeclareQueueWithDLQ(queue, exchange, dlx, dlqQueue string, bindingKeys ...string) error {
	err := r.channel.ExchangeDeclare(dlx, "direct", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare DLX: %w", err)
	}

	_, err = r.channel.QueueDeclare(dlqQueue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to declare DLQ: %w", err)
	}

	if err := r.channel.QueueBind(dlqQueue, queue, dlx, false, nil); err != nil {
		return fmt.Errorf("failed to bind DLQ: %w", err)
	}

	args := amqp.Table{
		"x-dead-letter-exchange":    dlx,
		"x-dead-letter-routing-key": queue,
	}
	return r.declareQueue(queue, exchange, args, bindingKeys...)
}

func (r *RabbitMQ) declareQueue(queue, exchange string, args amqp.Table, bindingKeys ...string) error {
	_, err := r.channel.QueueDeclare(
		queue, // queue name
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		args,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	for _, key := range bindingKeys {
		if err := r.channel.QueueBind(queue, key, exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue: %w", err)
		}
	}

	log.Printf("✅ Queue declared: %s (bindings: %v)", queue, bindingKeys)
	return nil
}

// Publish sends a persistent JSON message to the exchange.
func (r *RabbitMQ) Publish(ctx context.Context, exchange, routingKey string, body []byte, messageID string, headers amqp.Table) error {
	err := r.channel.PublishWithContext(
		ctx,
		exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    messageID,
			Timestamp:    time.Now(),
			Headers:      headers,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	log.Printf("📤 Message published: %s (%s)", routingKey, messageID)
	return nil
}

// Qos limits how many deliveries the broker pushes before an ack.
func (r *RabbitMQ) Qos(prefetch int) error {
	if err := r.channel.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}
	return nil
}

// Consume receives messages from a queue. With autoAck the broker never
// redelivers: push semantics, one attempt per delivery.
func (r *RabbitMQ) Consume(queue string, autoAck bool) (<-chan amqp.Delivery, error) {
	messages, err := r.channel.Consume(
		queue,   // queue name
		"",      // consumer tag
		autoAck, // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to consume messages: %w", err)
	}

	log.Printf("👂 Listening on queue: %s", queue)
	return messages, nil
}

// Close closes the connection
func (r *RabbitMQ) Close() {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		r.conn.Close()
	}
}
