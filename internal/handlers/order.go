package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecomm-labs/ecommerce-backend/internal/db"
	"github.com/ecomm-labs/ecommerce-backend/internal/models"
)

// errSomeProductNotFound is the all-or-nothing verdict of the batch
// existence check during order creation.
var errSomeProductNotFound = errors.New("Some product was not found")

// OrderStore is the catalog surface the order handler needs.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	GetAll(ctx context.Context, limit int) ([]models.Order, error)
	GetByEmail(ctx context.Context, email string) ([]models.Order, error)
	GetOne(ctx context.Context, email, orderID string) (*models.Order, error)
	Delete(ctx context.Context, email, orderID string) (*models.Order, error)
}

// ProductResolver performs the batched existence check on order create.
type ProductResolver interface {
	GetByIDs(ctx context.Context, ids []string) ([]models.Product, error)
}

// OrderNotifier delivers order lifecycle notifications.
type OrderNotifier interface {
	PublishOrderEvent(ctx context.Context, event models.OrderEvent, eventType models.OrderEventType) error
}

type OrderHandler struct {
	repo      OrderStore
	products  ProductResolver
	notifier  OrderNotifier
	listLimit int
}

func NewOrderHandler(repo OrderStore, products ProductResolver, notifier OrderNotifier, listLimit int) *OrderHandler {
	return &OrderHandler{
		repo:      repo,
		products:  products,
		notifier:  notifier,
		listLimit: listLimit,
	}
}

// HealthCheck returns server status
func (h *OrderHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "order-service"})
}

// ListOrders serves all three GET shapes: every order, one customer's
// partition, or a single (email, orderId) lookup.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	email := c.Query("email")
	orderID := c.Query("orderId")

	switch {
	case email != "" && orderID != "":
		order, err := h.repo.GetOne(c.Request.Context(), email, orderID)
		if err != nil {
			if errors.Is(err, db.ErrOrderNotFound) {
				c.String(http.StatusNotFound, err.Error())
				return
			}
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		c.JSON(http.StatusOK, order.ToResponse())

	case email != "":
		orders, err := h.repo.GetByEmail(c.Request.Context(), email)
		if err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		c.JSON(http.StatusOK, toResponses(orders))

	default:
		orders, err := h.repo.GetAll(c.Request.Context(), h.listLimit)
		if err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		c.JSON(http.StatusOK, toResponses(orders))
	}
}

// CreateOrder resolves every referenced product in one batched call,
// persists the order, then awaits the CREATED publish before responding.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req models.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	products, err := h.products.GetByIDs(c.Request.Context(), req.ProductIDs)
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	if len(products) != len(req.ProductIDs) {
		c.String(http.StatusNotFound, errSomeProductNotFound.Error())
		return
	}

	order := models.BuildOrder(req, products)
	if err := h.repo.Create(c.Request.Context(), order); err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}

	h.publish(c, order, models.OrderCreated)
	c.JSON(http.StatusCreated, order.ToResponse())
}

// DeleteOrder removes an order, publishes DELETED and returns the
// just-removed record. Both query parameters are required.
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	email := c.Query("email")
	orderID := c.Query("orderId")
	if email == "" || orderID == "" {
		c.String(http.StatusBadRequest, "email and orderId are required")
		return
	}

	order, err := h.repo.Delete(c.Request.Context(), email, orderID)
	if err != nil {
		if errors.Is(err, db.ErrOrderNotFound) {
			c.String(http.StatusNotFound, err.Error())
			return
		}
		c.String(http.StatusInternalServerError, err.Error())
		return
	}

	h.publish(c, order, models.OrderDeleted)
	c.JSON(http.StatusOK, order.ToResponse())
}

// publish sends the order event and waits for the broker to take it.
// The order row is already committed: a publish failure is logged, the
// response still succeeds.
func (h *OrderHandler) publish(c *gin.Context, order *models.Order, eventType models.OrderEventType) {
	productCodes := make([]string, 0, len(order.Products))
	for _, p := range order.Products {
		productCodes = append(productCodes, p.Code)
	}

	event := models.OrderEvent{
		Email:        order.PK,
		OrderID:      order.SK,
		Billing:      order.Billing,
		Shipping:     order.Shipping,
		ProductCodes: productCodes,
		RequestID:    requestID(c),
	}

	if err := h.notifier.PublishOrderEvent(c.Request.Context(), event, eventType); err != nil {
		log.Printf("⚠️ Failed to publish %s for order %s: %v", eventType, order.SK, err)
		return
	}
	log.Printf("📤 Order %s event sent - OrderId: %s", eventType, order.SK)
}

func toResponses(orders []models.Order) []models.OrderResponse {
	responses := make([]models.OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, orders[i].ToResponse())
	}
	return responses
}
