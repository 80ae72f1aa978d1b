package catalog

import (
	"net/http"

	"ticketly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateTicketType handles POST /catalog/ticket-types
func (c *Controller) CreateTicketType(ctx *gin.Context) {
	var req CreateTicketTypeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	ticketType, err := c.service.CreateTicketType(ctx.Request.Context(), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusCreated, "Ticket type created successfully", ticketType)
}

// ListTicketTypes handles GET /catalog/ticket-types
func (c *Controller) ListTicketTypes(ctx *gin.Context) {
	ticketTypes, err := c.service.ListTicketTypes(ctx.Request.Context())
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Ticket types retrieved successfully", ticketTypes)
}

// GetTicketType handles GET /catalog/ticket-types/:id
func (c *Controller) GetTicketType(ctx *gin.Context) {
	ticketType, err := c.service.GetTicketType(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Ticket type retrieved successfully", ticketType)
}

// DeactivateTicketType handles DELETE /catalog/ticket-types/:id
func (c *Controller) DeactivateTicketType(ctx *gin.Context) {
	if err := c.service.DeactivateTicketType(ctx.Request.Context(), ctx.Param("id")); err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Ticket type deactivated", nil)
}

// CreateArtist handles POST /catalog/artists
func (c *Controller) CreateArtist(ctx *gin.Context) {
	var req CreateArtistRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	artist, err := c.service.CreateArtist(ctx.Request.Context(), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusCreated, "Artist created successfully", artist)
}

// ListArtists handles GET /catalog/artists
func (c *Controller) ListArtists(ctx *gin.Context) {
	artists, err := c.service.ListArtists(ctx.Request.Context())
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Artists retrieved successfully", artists)
}
