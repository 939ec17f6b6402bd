package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ecomm-labs/ecommerce-backend/internal/cache"
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

	// The dedup claim needs to outlive redeliveries, so this cache
	// carries the dedup TTL rather than the short read-cache one.
	redisCache, err := cache.NewRedisCache(cfg.RedisHost, cfg.RedisPort, cfg.DedupTTL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

	rabbitMQ, err := messaging.NewRabbitMQ(cfg.RabbitHost, cfg.RabbitPort,
		cfg.RabbitUser, cfg.RabbitPassword)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer rabbitMQ.Close()

	if err := rabbitMQ.DeclareTopicExchange(cfg.EventExchange); err != nil {
		log.Fatalf("Failed to declare exchange: %v", err)
	}

	// Billing only reacts to order CREATED events.
	if err := rabbitMQ.DeclareQueue(messaging.QueueBilling, cfg.EventExchange, messaging.BindOrderCreated); err != nil {
		log.Fatalf("Failed to declare queue: %v", err)
	}

	// Direct-push path: auto-ack, no broker redelivery on failure.
	messages, err := rabbitMQ.Consume(messaging.QueueBilling, true)
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

	log.Println("🚀 Billing service started")
	billingConsumer := consumer.NewBillingConsumer(redisCache)
	billingConsumer.Run(messages)
}
