package reservations

import (
	"net/http"

	"ticketly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	sweeper *Sweeper
}

func NewController(sweeper *Sweeper) *Controller {
	return &Controller{sweeper: sweeper}
}

// TriggerSweep handles POST /reservations/sweep, the externally scheduled
// entry point. Takes no input; a scheduler can hit it on any cadence
// independent of the hold TTL.
func (c *Controller) TriggerSweep(ctx *gin.Context) {
	result, err := c.sweeper.Sweep(ctx.Request.Context())
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Sweep completed", result)
}
