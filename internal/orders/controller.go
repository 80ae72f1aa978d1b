package orders

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

// CreateOrder handles POST /orders. The commit mode comes from the caller's
// role: staff bookings commit immediately, public checkouts defer to the
// payment gateway.
func (c *Controller) CreateOrder(ctx *gin.Context) {
	var req CheckoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	mode := CommitDeferred
	if role, exists := ctx.Get("user_role"); exists {
		if r, ok := role.(string); ok && (r == "ADMIN" || r == "STAFF") {
			mode = CommitImmediate
		}
	}

	order, err := c.service.Checkout(ctx.Request.Context(), &req, mode)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusCreated, "Order created successfully", order.ToCheckoutResponse())
}

// GetOrder handles GET /orders/:orderId
func (c *Controller) GetOrder(ctx *gin.Context) {
	orderID, ok := orderIDParam(ctx)
	if !ok {
		return
	}

	order, err := c.service.GetOrder(ctx.Request.Context(), orderID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Order retrieved successfully", order.ToCheckoutResponse())
}

// ListEventOrders handles GET /events/:eventId/orders
func (c *Controller) ListEventOrders(ctx *gin.Context) {
	eventID, err := uuid.Parse(ctx.Param("eventId"))
	if err != nil {
		response.Error(ctx, apperr.New(apperr.KindInvalidInput, "invalid event ID"))
		return
	}

	list, err := c.service.ListByEvent(ctx.Request.Context(), eventID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	resp := make([]*CheckoutResponse, 0, len(list))
	for i := range list {
		resp = append(resp, list[i].ToCheckoutResponse())
	}
	response.Success(ctx, http.StatusOK, "Orders retrieved successfully", resp)
}

func orderIDParam(ctx *gin.Context) (uuid.UUID, bool) {
	orderID, err := uuid.Parse(ctx.Param("orderId"))
	if err != nil {
		response.Error(ctx, apperr.New(apperr.KindInvalidInput, "invalid order ID"))
		return uuid.Nil, false
	}
	return orderID, true
}
