package issuance

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ticketly/internal/shared/apperr"
	"ticketly/internal/shared/utils/response"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// ConfirmIssueSeat handles POST /events/:eventId/seats/:seatId/issue
func (c *Controller) ConfirmIssueSeat(ctx *gin.Context) {
	eventID, err := uuid.Parse(ctx.Param("eventId"))
	if err != nil {
		response.Error(ctx, apperr.New(apperr.KindInvalidInput, "invalid event ID"))
		return
	}

	seat, err := c.service.ConfirmIssueSeat(ctx.Request.Context(), eventID, ctx.Param("seatId"))
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Seat ticket issued successfully", seat)
}

// IssueCounted handles POST /orders/:orderId/issue
func (c *Controller) IssueCounted(ctx *gin.Context) {
	orderID, err := uuid.Parse(ctx.Param("orderId"))
	if err != nil {
		response.Error(ctx, apperr.New(apperr.KindInvalidInput, "invalid order ID"))
		return
	}

	var req IssueCountedRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	line, err := c.service.IssueCounted(ctx.Request.Context(), orderID, &req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Tickets issued successfully", line)
}
