package auth

import (
	"github.com/gin-gonic/gin"

	"ticketly/internal/shared/config"
	"ticketly/internal/shared/middleware"
)

// SetupAuthRoutes configures staff authentication routes.
func SetupAuthRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/login", controller.Login)
		authGroup.POST("/refresh", controller.Refresh)

		admin := authGroup.Group("")
		admin.Use(middleware.JWTAuth(cfg), middleware.RequireRoles("ADMIN"))
		{
			admin.POST("/users", controller.CreateUser)
		}
	}
}
