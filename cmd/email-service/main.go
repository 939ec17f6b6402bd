package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ecomm-labs/ecommerce-backend/internal/config"
	"github.com/ecomm-labs/ecommerce-backend/internal/consumer"
	"github.com/ecomm-labs/ecommerce-backend/internal/messaging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	rabbitMQ, err := messaging.NewRabbitMQ(cfg.RabbitHost, cfg.RabbitPort,
		cfg.RabbitUser, cfg.RabbitPassword)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer rabbitMQ.Close()

	if err := rabbitMQ.DeclareTopicExchange(cfg.EventExchange); err != nil {
		log.Fatalf("Failed to declare exchange: %v", err)
	}

	// Queued path: durable queue filtered to order CREATED events,
	// rejected messages dead-letter for manual inspection.
	err = rabbitMQ.DeclareQueueWithDLQ(messaging.QueueEmail, cfg.EventExchange,
		messaging.DeadLetterExchange, messaging.QueueEmailDLQ, messaging.BindOrderCreated)
	if err != nil {
		log.Fatalf("Failed to declare queue: %v", err)
	}

	// Batch pull: the broker pushes up to EmailPrefetch unacked messages.
	if err := rabbitMQ.Qos(cfg.EmailPrefetch); err != nil {
		log.Fatalf("Failed to set prefetch: %v", err)
	}

	messages, err := rabbitMQ.Consume(messaging.QueueEmail, false)
	if err != nil {
		log.Fatalf("Failed to consume messages: %v", err)
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down...")
		rabbitMQ.Close()
		os.Exit(0)
	}()

	log.Printf("🚀 Email service started (max retries %d, prefetch %d)",
		cfg.EmailMaxRetries, cfg.EmailPrefetch)
	emailConsumer := consumer.NewEmailConsumer(rabbitMQ, consumer.LogSender{},
		messaging.QueueEmail, cfg.EmailMaxRetries)
	emailConsumer.Run(messages)
}
