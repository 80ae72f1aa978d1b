package issuance

import (
	"github.com/gin-gonic/gin"

	"ticketly/internal/shared/config"
	"ticketly/internal/shared/middleware"
)

// SetupIssuanceRoutes configures the at-the-door handover routes, staff only.
func SetupIssuanceRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	staff := rg.Group("")
	staff.Use(middleware.JWTAuth(cfg), middleware.RequireRoles("STAFF", "ADMIN"))
	{
		staff.POST("/events/:eventId/seats/:seatId/issue", controller.ConfirmIssueSeat)
		staff.POST("/orders/:orderId/issue", controller.IssueCounted)
	}
}
