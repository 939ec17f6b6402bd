package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ecomm-labs/ecommerce-backend/internal/config"
	"github.com/ecomm-labs/ecommerce-backend/internal/db"
	"github.com/ecomm-labs/ecommerce-backend/internal/discovery"
	"github.com/ecomm-labs/ecommerce-backend/internal/handlers"
	"github.com/ecomm-labs/ecommerce-backend/internal/messaging"
	"github.com/ecomm-labs/ecommerce-backend/internal/publisher"
)

const (
	serviceName = "order-service"
	serviceID   = "order-service-1"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to PostgreSQL
	database, err := db.NewPostgresDB(cfg.PostgresHost, cfg.PostgresPort,
		cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.EnsureSchema(); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	// Connect to RabbitMQ
	rabbitMQ, err := messaging.NewRabbitMQ(cfg.RabbitHost, cfg.RabbitPort,
		cfg.RabbitUser, cfg.RabbitPassword)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer rabbitMQ.Close()

	eventPublisher, err := publisher.NewEventPublisher(rabbitMQ, cfg.EventExchange)
	if err != nil {
		log.Fatalf("Failed to create publisher: %v", err)
	}

	// Register with Consul
	consul, err := discovery.NewConsulClient(cfg.ConsulHost, cfg.ConsulPort)
	if err != nil {
		log.Fatalf("Failed to connect to Consul: %v", err)
	}

	err = consul.Register(discovery.ServiceConfig{
		Name: serviceName,
		ID:   serviceID,
		Port: cfg.OrderServicePort,
		Tags: []string{"api", "orders"},
	})
	if err != nil {
		log.Fatalf("Failed to register service: %v", err)
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down...")
		consul.Deregister(serviceID)
		os.Exit(0)
	}()

	// Repositories and handler. The batch existence check on create
	// reads the products table directly in a single query.
	orderRepo := db.NewOrderRepository(database)
	productRepo := db.NewProductRepository(database)
	orderHandler := handlers.NewOrderHandler(orderRepo, productRepo, eventPublisher, cfg.ListLimit)

	router := handlers.NewOrderRouter(orderHandler)

	log.Printf("🚀 %s starting on http://localhost:%d", serviceName, cfg.OrderServicePort)
	log.Println("   Publishing events to RabbitMQ")
	router.Run(fmt.Sprintf(":%d", cfg.OrderServicePort))
}
