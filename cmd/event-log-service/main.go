package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ecomm-labs/ecommerce-backend/internal/config"
	"github.com/ecomm-labs/ecommerce-backend/internal/consumer"
	"github.com/ecomm-labs/ecommerce-backend/internal/db"
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

	database, err := db.NewPostgresDB(cfg.PostgresHost, cfg.PostgresPort,
		cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.EnsureSchema(); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
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

	// The audit queue binds unfiltered: every product and order event.
	if err := rabbitMQ.DeclareQueue(messaging.QueueAudit, cfg.EventExchange, messaging.BindAll); err != nil {
		log.Fatalf("Failed to declare queue: %v", err)
	}

	// Direct-push path: auto-ack, no broker redelivery on failure.
	messages, err := rabbitMQ.Consume(messaging.QueueAudit, true)
	if err != nil {
		log.Fatalf("Failed to consume messages: %v", err)
	}

	eventRepo := db.NewEventRepository(database)
	go sweepExpired(eventRepo, cfg.EventSweepInterval)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down...")
		rabbitMQ.Close()
		os.Exit(0)
	}()

	log.Printf("🚀 Event log service started (retention %s)", cfg.EventRetention)
	logConsumer := consumer.NewEventLogConsumer(eventRepo, cfg.EventRetention)
	logConsumer.Run(messages)
}

// sweepExpired periodically removes audit rows past their ttl.
func sweepExpired(repo *db.EventRepository, interval time.Duration) {
	ticker := time.NewTicker(interval)
	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		deleted, err := repo.DeleteExpired(ctx, time.Now().Unix())
		cancel()
		if err != nil {
			log.Printf("⚠️ Failed to sweep expired events: %v", err)
			continue
		}
		if deleted > 0 {
			log.Printf("🧹 Swept %d expired events", deleted)
		}
	}
}
