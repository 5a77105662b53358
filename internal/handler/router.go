package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Products    *ProductHandler
	Wholesalers *WholesalerHandler
	Orders      *OrderHandler
	// Mode is reported by /health, e.g. "local" or "dynamodb".
	Mode string
}

func RegisterRoutes(router gin.IRouter, h Handlers) {
	v1 := router.Group("/api/v1")
	{
		v1.POST("/products", h.Products.CreateProduct)
		v1.GET("/products/:id", h.Products.GetProduct)
		v1.POST("/products/:id/restock", h.Products.Restock)

		v1.POST("/wholesalers", h.Wholesalers.Register)
		v1.GET("/wholesalers/:id", h.Wholesalers.Get)
		v1.PATCH("/wholesalers/:id", h.Wholesalers.Update)

		v1.POST("/pricing/quote", h.Orders.Quote)

		v1.POST("/orders", h.Orders.CreateOrder)
		v1.GET("/orders", h.Orders.ListOrders)
		v1.GET("/orders/:id", h.Orders.GetOrder)
		v1.PATCH("/orders/:id/status", h.Orders.UpdateStatus)
		v1.POST("/orders/:id/cancel", h.Orders.CancelOrder)
		v1.POST("/guests/:guestId/merge", h.Orders.MergeGuestOrders)

		v1.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy", "mode": h.Mode})
		})
	}
}
