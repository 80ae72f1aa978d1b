package events

import (
	"net/http"
	"strconv"

	"ticketly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateEvent handles POST /events
func (c *Controller) CreateEvent(ctx *gin.Context) {
	var req CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	event, err := c.service.CreateEvent(ctx.Request.Context(), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusCreated, "Event created successfully", event)
}

// GetEvent handles GET /events/:eventId
func (c *Controller) GetEvent(ctx *gin.Context) {
	event, err := c.service.GetEvent(ctx.Request.Context(), ctx.Param("eventId"))
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Event retrieved successfully", event)
}

// ListEvents handles GET /events
func (c *Controller) ListEvents(ctx *gin.Context) {
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(ctx.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	list, err := c.service.ListPublished(ctx.Request.Context(), limit, offset)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Events retrieved successfully", gin.H{
		"events": list,
		"count":  len(list),
		"limit":  limit,
		"offset": offset,
	})
}

// PublishEvent handles POST /events/:eventId/publish
func (c *Controller) PublishEvent(ctx *gin.Context) {
	if err := c.service.Publish(ctx.Request.Context(), ctx.Param("eventId")); err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Event published", nil)
}

// DeactivateEvent handles DELETE /events/:eventId
func (c *Controller) DeactivateEvent(ctx *gin.Context) {
	if err := c.service.Deactivate(ctx.Request.Context(), ctx.Param("eventId")); err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Event deactivated", nil)
}
