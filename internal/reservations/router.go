package reservations

import (
	"ticketly/internal/shared/config"
	"ticketly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupReservationRoutes configures the sweep trigger.
func SetupReservationRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	group := rg.Group("/reservations")
	group.Use(middleware.JWTAuth(cfg), middleware.RequireRoles("STAFF", "ADMIN"))
	{
		group.POST("/sweep", controller.TriggerSweep)
	}
}
