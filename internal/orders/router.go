package orders

import (
	"github.com/gin-gonic/gin"

	"ticketly/internal/shared/config"
	"ticketly/internal/shared/middleware"
)

// SetupOrderRoutes configures checkout and order lookup routes.
func SetupOrderRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	ordersGroup := rg.Group("/orders")
	{
		// Public checkout; staff tokens upgrade it to an immediate booking.
		ordersGroup.POST("", middleware.OptionalJWTAuth(cfg), controller.CreateOrder)
		ordersGroup.GET("/:orderId", controller.GetOrder)
	}

	staff := rg.Group("/events/:eventId/orders")
	staff.Use(middleware.JWTAuth(cfg), middleware.RequireRoles("STAFF", "ADMIN"))
	{
		staff.GET("", controller.ListEventOrders)
	}
}
