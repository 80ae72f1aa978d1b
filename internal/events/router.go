package events

import (
	"ticketly/internal/shared/config"
	"ticketly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupEventRoutes configures event management routes.
func SetupEventRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	group := rg.Group("/events")
	{
		group.GET("", controller.ListEvents)
		group.GET("/:eventId", controller.GetEvent)

		admin := group.Group("")
		admin.Use(middleware.JWTAuth(cfg), middleware.RequireRoles("ADMIN"))
		{
			admin.POST("", controller.CreateEvent)
			admin.POST("/:eventId/publish", controller.PublishEvent)
			admin.DELETE("/:eventId", controller.DeactivateEvent)
		}
	}
}
