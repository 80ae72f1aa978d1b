package inventory

import (
	"ticketly/internal/shared/config"
	"ticketly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupInventoryRoutes configures seat-map and availability routes.
func SetupInventoryRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	eventsGroup := rg.Group("/events/:eventId")
	{
		// Public read side + the timed seat-hold flow used during checkout.
		eventsGroup.GET("/seats", controller.GetSeatMap)
		eventsGroup.GET("/seats/:seatId/status", controller.GetSeatStatus)
		eventsGroup.GET("/tickets", controller.ListTicketsWithoutSeats)
		eventsGroup.GET("/tickets/:typeId/availability", controller.GetCountAvailability)
		eventsGroup.POST("/seats/:seatId/select", controller.SelectSeat)
		eventsGroup.POST("/seats/:seatId/unselect", controller.UnselectSeat)

		// Administrative override, not part of the timed-hold path.
		staff := eventsGroup.Group("")
		staff.Use(middleware.JWTAuth(cfg), middleware.RequireRoles("STAFF", "ADMIN"))
		{
			staff.POST("/seats/reset", controller.ResetSeats)
		}
	}
}
