package cancellation

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

func orderIDParam(ctx *gin.Context) (uuid.UUID, bool) {
	orderID, err := uuid.Parse(ctx.Param("orderId"))
	if err != nil {
		response.Error(ctx, apperr.New(apperr.KindInvalidInput, "invalid order ID"))
		return uuid.Nil, false
	}
	return orderID, true
}

// CancelSeats handles POST /orders/:orderId/cancel/seats
func (c *Controller) CancelSeats(ctx *gin.Context) {
	orderID, ok := orderIDParam(ctx)
	if !ok {
		return
	}

	var req CancelSeatsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	result, err := c.service.CancelSeats(ctx.Request.Context(), orderID, &req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Seats cancelled successfully", result)
}

// CancelCounted handles POST /orders/:orderId/cancel/tickets
func (c *Controller) CancelCounted(ctx *gin.Context) {
	orderID, ok := orderIDParam(ctx)
	if !ok {
		return
	}

	var req CancelCountedRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	result, err := c.service.CancelCounted(ctx.Request.Context(), orderID, &req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Tickets cancelled successfully", result)
}

// CancelOrder handles POST /orders/:orderId/cancel
func (c *Controller) CancelOrder(ctx *gin.Context) {
	orderID, ok := orderIDParam(ctx)
	if !ok {
		return
	}

	result, err := c.service.CancelOrder(ctx.Request.Context(), orderID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Order cancelled successfully", result)
}

// History handles GET /orders/:orderId/cancellations
func (c *Controller) History(ctx *gin.Context) {
	orderID, ok := orderIDParam(ctx)
	if !ok {
		return
	}

	rows, err := c.service.History(ctx.Request.Context(), orderID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Cancellation history retrieved successfully", rows)
}
