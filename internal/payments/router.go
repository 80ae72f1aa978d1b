package payments

import (
	"github.com/gin-gonic/gin"
)

// SetupPaymentRoutes configures the gateway-facing routes. These are public
// by nature; the shared secret, not a session, is the trust mechanism.
func SetupPaymentRoutes(rg *gin.RouterGroup, controller *Controller) {
	paymentsGroup := rg.Group("/payments")
	{
		paymentsGroup.POST("/:orderId/redirect", controller.BuildRedirect)
		paymentsGroup.POST("/notify", controller.Notify)
		paymentsGroup.GET("/return", controller.Return)
	}
}
