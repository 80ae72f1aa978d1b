package cancellation

import (
	"github.com/gin-gonic/gin"

	"ticketly/internal/shared/config"
	"ticketly/internal/shared/middleware"
)

// SetupCancellationRoutes configures the cancellation routes. Cancellations
// move money and inventory, so all of them require a staff token.
func SetupCancellationRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	group := rg.Group("/orders/:orderId")
	group.Use(middleware.JWTAuth(cfg), middleware.RequireRoles("STAFF", "ADMIN"))
	{
		group.POST("/cancel", controller.CancelOrder)
		group.POST("/cancel/seats", controller.CancelSeats)
		group.POST("/cancel/tickets", controller.CancelCounted)
		group.GET("/cancellations", controller.History)
	}
}
