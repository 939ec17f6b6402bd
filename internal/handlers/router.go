package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// badRequest answers unrecognized route/method combinations.
func badRequest(c *gin.Context) {
	c.String(http.StatusBadRequest, "Bad request")
}

// NewProductRouter wires the product service routes.
func NewProductRouter(h *ProductHandler) *gin.Engine {
	router := gin.Default()
	router.HandleMethodNotAllowed = true
	router.NoRoute(badRequest)
	router.NoMethod(badRequest)

	router.GET("/health", h.HealthCheck)
	router.GET("/products", h.ListProducts)
	router.POST("/products", h.CreateProduct)
	router.GET("/products/:id", h.GetProduct)
	router.PUT("/products/:id", h.UpdateProduct)
	router.DELETE("/products/:id", h.DeleteProduct)

	return router
}

// NewOrderRouter wires the order service routes. Single lookups and
// deletes address orders by email/orderId query parameters.
func NewOrderRouter(h *OrderHandler) *gin.Engine {
	router := gin.Default()
	router.HandleMethodNotAllowed = true
	router.NoRoute(badRequest)
	router.NoMethod(badRequest)

	router.GET("/health", h.HealthCheck)
	router.GET("/orders", h.ListOrders)
	router.POST("/orders", h.CreateOrder)
	router.DELETE("/orders", h.DeleteOrder)

	return router
}
