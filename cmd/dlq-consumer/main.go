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

	// Idempotent declare in case the inspector starts before the
	// email service has set up the dead-letter topology.
	if err := rabbitMQ.DeclareQueue(messaging.QueueEmailDLQ, ""); err != nil {
		log.Fatalf("Failed to declare queue: %v", err)
	}

	messages, err := rabbitMQ.Consume(messaging.QueueEmailDLQ, false)
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

	log.Println("💀 Dead letter inspector started")
	dlqConsumer := consumer.NewDeadLetterConsumer()
	dlqConsumer.Run(messages)
}
