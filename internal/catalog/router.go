package catalog

import (
	"ticketly/internal/shared/config"
	"ticketly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupCatalogRoutes configures ticket-type and artist routes.
func SetupCatalogRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	group := rg.Group("/catalog")
	{
		// Public read side.
		group.GET("/ticket-types", controller.ListTicketTypes)
		group.GET("/ticket-types/:id", controller.GetTicketType)
		group.GET("/artists", controller.ListArtists)

		// Admin setup.
		admin := group.Group("")
		admin.Use(middleware.JWTAuth(cfg), middleware.RequireRoles("ADMIN"))
		{
			admin.POST("/ticket-types", controller.CreateTicketType)
			admin.DELETE("/ticket-types/:id", controller.DeactivateTicketType)
			admin.POST("/artists", controller.CreateArtist)
		}
	}
}
