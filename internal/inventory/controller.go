package inventory

import (
	"net/http"

	"ticketly/internal/shared/apperr"
	"ticketly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func eventIDParam(ctx *gin.Context) (uuid.UUID, bool) {
	eventID, err := uuid.Parse(ctx.Param("eventId"))
	if err != nil {
		response.Error(ctx, apperr.New(apperr.KindInvalidInput, "invalid event ID"))
		return uuid.Nil, false
	}
	return eventID, true
}

// GetSeatMap handles GET /events/:eventId/seats
func (c *Controller) GetSeatMap(ctx *gin.Context) {
	eventID, ok := eventIDParam(ctx)
	if !ok {
		return
	}

	seats, err := c.service.SeatMap(ctx.Request.Context(), eventID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Seat map retrieved successfully", gin.H{
		"event_id": eventID,
		"seats":    seats,
	})
}

// GetSeatStatus handles GET /events/:eventId/seats/:seatId/status
func (c *Controller) GetSeatStatus(ctx *gin.Context) {
	eventID, ok := eventIDParam(ctx)
	if !ok {
		return
	}

	status, err := c.service.SeatStatus(ctx.Request.Context(), eventID, ctx.Param("seatId"))
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Seat status retrieved successfully", gin.H{
		"seat_id": ctx.Param("seatId"),
		"status":  status,
	})
}

// ListTicketsWithoutSeats handles GET /events/:eventId/tickets
func (c *Controller) ListTicketsWithoutSeats(ctx *gin.Context) {
	eventID, ok := eventIDParam(ctx)
	if !ok {
		return
	}

	lines, err := c.service.ListTicketsWithoutSeats(ctx.Request.Context(), eventID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Ticket availability retrieved successfully", gin.H{
		"event_id": eventID,
		"tickets":  lines,
	})
}

// GetCountAvailability handles GET /events/:eventId/tickets/:typeId/availability
func (c *Controller) GetCountAvailability(ctx *gin.Context) {
	eventID, ok := eventIDParam(ctx)
	if !ok {
		return
	}

	availability, err := c.service.CountAvailable(ctx.Request.Context(), eventID, ctx.Param("typeId"))
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Availability retrieved successfully", availability)
}

// SelectSeat handles POST /events/:eventId/seats/:seatId/select
func (c *Controller) SelectSeat(ctx *gin.Context) {
	eventID, ok := eventIDParam(ctx)
	if !ok {
		return
	}

	seat, err := c.service.SelectSeat(ctx.Request.Context(), eventID, ctx.Param("seatId"))
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Seat held successfully", seat)
}

// UnselectSeat handles POST /events/:eventId/seats/:seatId/unselect
func (c *Controller) UnselectSeat(ctx *gin.Context) {
	eventID, ok := eventIDParam(ctx)
	if !ok {
		return
	}

	seat, err := c.service.UnselectSeat(ctx.Request.Context(), eventID, ctx.Param("seatId"))
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Seat released successfully", seat)
}

type resetSeatsRequest struct {
	SeatIDs []string `json:"seat_ids" binding:"required,min=1"`
}

// ResetSeats handles POST /events/:eventId/seats/reset
func (c *Controller) ResetSeats(ctx *gin.Context) {
	eventID, ok := eventIDParam(ctx)
	if !ok {
		return
	}

	var req resetSeatsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	result, err := c.service.ResetSeats(ctx.Request.Context(), eventID, req.SeatIDs)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Seats reset", result)
}
