package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GTDGit/cbc_bookstore/internal/middleware"
)

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health       *HealthHandler
	Catalog      *CatalogHandler
	AdminProduct *AdminProductHandler
	Checkout     *CheckoutHandler
	Order        *OrderHandler
	SSE          *SSEHandler
}

// SetupRoutes registers all routes. Admin routes run adminMiddleware before
// their handler so an invalid secret never reaches a mutation.
func SetupRoutes(router *gin.Engine, handlers *Handlers, adminMiddleware *middleware.AdminMiddleware) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", handlers.Health.GetHealth)

		// Catalog
		api.GET("/grades", handlers.Catalog.GetGrades)
		api.GET("/subjects", handlers.Catalog.GetSubjects)
		api.GET("/categories", handlers.Catalog.GetCategories)
		api.GET("/products", handlers.Catalog.GetProducts)
		api.GET("/products/:id", handlers.Catalog.GetProduct)

		// Checkout
		api.POST("/checkout", handlers.Checkout.Checkout)
		api.POST("/checkout/mpesa", handlers.Checkout.Checkout)

		// Admin (shared secret)
		api.PUT("/products/:id", adminMiddleware.Handle(), handlers.AdminProduct.UpdateProduct)
		api.GET("/orders", adminMiddleware.Handle(), handlers.Order.ListOrders)
	}

	admin := router.Group("/api/admin")
	admin.Use(adminMiddleware.Handle())
	{
		admin.POST("/products", handlers.AdminProduct.UpsertProduct)
		admin.GET("/orders/stream", handlers.SSE.Stream)
	}
}
