package payments

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ticketly/internal/shared/apperr"
	"ticketly/internal/shared/utils/response"
	"ticketly/pkg/logger"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// BuildRedirect handles POST /payments/:orderId/redirect
func (c *Controller) BuildRedirect(ctx *gin.Context) {
	orderID, err := uuid.Parse(ctx.Param("orderId"))
	if err != nil {
		response.Error(ctx, apperr.New(apperr.KindInvalidInput, "invalid order ID"))
		return
	}

	payload, err := c.service.BuildRedirect(ctx.Request.Context(), orderID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Redirect payload created", payload)
}

// Notify handles POST /payments/notify, the gateway's server-to-server
// callback. The gateway only understands a bare acknowledgement, so the
// response never carries order detail; outcomes are logged server-side.
func (c *Controller) Notify(ctx *gin.Context) {
	var cb NotifyCallback
	if err := ctx.ShouldBind(&cb); err != nil {
		logger.GetDefault().LogGatewayRejected(ctx.Request.Context(), "", "malformed callback")
		ctx.String(http.StatusBadRequest, "NOK")
		return
	}

	_, err := c.service.HandleCallback(ctx.Request.Context(), &cb)
	switch {
	case err == nil:
		ctx.String(http.StatusOK, "OK")
	case apperr.IsKind(err, apperr.KindAlreadyProcessed):
		// Replays acknowledge successfully so the gateway stops retrying.
		ctx.String(http.StatusOK, "OK")
	case apperr.IsKind(err, apperr.KindSignatureMismatch):
		ctx.String(http.StatusUnauthorized, "NOK")
	default:
		logger.GetDefault().ErrorWithContext(ctx.Request.Context(), "gateway callback failed", err,
			map[string]interface{}{"transaction_id": cb.TransactionID})
		ctx.String(http.StatusInternalServerError, "NOK")
	}
}

// Return handles GET /payments/return, the browser coming back from the
// gateway. It applies the same verification as Notify; whichever callback
// lands first settles the order and the other becomes a no-op replay.
func (c *Controller) Return(ctx *gin.Context) {
	var q ReturnQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		response.Error(ctx, apperr.New(apperr.KindInvalidInput, "malformed return parameters"))
		return
	}

	order, err := c.service.HandleCallback(ctx.Request.Context(), q.asCallback())
	if err != nil && !apperr.IsKind(err, apperr.KindAlreadyProcessed) {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Payment processed", order.ToCheckoutResponse())
}
