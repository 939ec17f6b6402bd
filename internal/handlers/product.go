package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ecomm-labs/ecommerce-backend/internal/db"
	"github.com/ecomm-labs/ecommerce-backend/internal/models"
)

// ProductStore is the catalog surface the product handler needs.
type ProductStore interface {
	GetAll(ctx context.Context, limit int) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, input models.ProductInput) (*models.Product, error)
	Update(ctx context.Context, id string, input models.ProductInput) (*models.Product, error)
	Delete(ctx context.Context, id string) (*models.Product, error)
}

// ProductNotifier delivers product lifecycle notifications.
type ProductNotifier interface {
	PublishProductEvent(ctx context.Context, event models.ProductEvent) error
}

type ProductHandler struct {
	store        ProductStore
	notifier     ProductNotifier
	listLimit    int
	defaultActor string
}

func NewProductHandler(store ProductStore, notifier ProductNotifier, listLimit int, defaultActor string) *ProductHandler {
	return &ProductHandler{
		store:        store,
		notifier:     notifier,
		listLimit:    listLimit,
		defaultActor: defaultActor,
	}
}

// HealthCheck returns server status
func (h *ProductHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "product-service"})
}

// ListProducts returns all products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.store.GetAll(c.Request.Context(), h.listLimit)
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	if products == nil {
		products = []models.Product{}
	}

	c.JSON(http.StatusOK, products)
}

// GetProduct returns a single product
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.store.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}
	if product == nil {
		c.String(http.StatusNotFound, db.ErrProductNotFound.Error())
		return
	}

	c.JSON(http.StatusOK, product)
}

// CreateProduct persists a new product and emits PRODUCT_CREATED.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var input models.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.store.Create(c.Request.Context(), input)
	if err != nil {
		c.String(http.StatusInternalServerError, err.Error())
		return
	}

	h.notify(c, product, models.ProductCreated)
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct overwrites all mutable fields and emits PRODUCT_UPDATED.
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var input models.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.store.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		if errors.Is(err, db.ErrProductNotFound) {
			c.String(http.StatusNotFound, err.Error())
			return
		}
		c.String(http.StatusInternalServerError, err.Error())
		return
	}

	h.notify(c, product, models.ProductUpdated)
	c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a product, emits PRODUCT_DELETED and returns
// the just-removed record.
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	product, err := h.store.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, db.ErrProductNotFound) {
			c.String(http.StatusNotFound, err.Error())
			return
		}
		c.String(http.StatusInternalServerError, err.Error())
		return
	}

	h.notify(c, product, models.ProductDeleted)
	c.JSON(http.StatusOK, product)
}

// notify emits the product event as a detached task: one attempt,
// fire-and-forget. The mutation is already committed, so a delivery
// failure is logged and never rolls anything back.
func (h *ProductHandler) notify(c *gin.Context, product *models.Product, eventType models.ProductEventType) {
	event := models.ProductEvent{
		RequestID:    requestID(c),
		EventType:    eventType,
		ProductID:    product.ID,
		ProductCode:  product.Code,
		ProductPrice: product.Price,
		Email:        h.actorEmail(c),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.notifier.PublishProductEvent(ctx, event); err != nil {
			log.Printf("⚠️ Failed to publish %s for product %s: %v", eventType, product.ID, err)
		}
	}()
}

func (h *ProductHandler) actorEmail(c *gin.Context) string {
	if email := c.GetHeader("X-User-Email"); email != "" {
		return email
	}
	return h.defaultActor
}

func requestID(c *gin.Context) string {
	if id := c.GetHeader("X-Request-Id"); id != "" {
		return id
	}
	return uuid.NewString()
}
