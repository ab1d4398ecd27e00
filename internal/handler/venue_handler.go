package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/event-marketplace/internal/dto"
	"github.com/prohmpiriya/event-marketplace/internal/service"
	"github.com/prohmpiriya/event-marketplace/pkg/response"
)

// VenueHandler handles venue-related HTTP requests
type VenueHandler struct {
	venueService service.VenueService
}

// NewVenueHandler creates a new VenueHandler
func NewVenueHandler(venueService service.VenueService) *VenueHandler {
	return &VenueHandler{venueService: venueService}
}

// List handles GET /venues
func (h *VenueHandler) List(c *gin.Context) {
	var filter dto.VenueListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		bindError(c, err)
		return
	}

	views, total, err := h.venueService.ListVenues(c.Request.Context(), &filter)
	if err != nil {
		handleError(c, err)
		return
	}

	resp := make([]*dto.VenueResponse, len(views))
	for i, v := range views {
		resp[i] = dto.NewVenueResponse(v.Venue).WithEventCount(v.EventCount)
	}
	filter.SetDefaults()
	response.Paginated(c, resp, total, filter.Limit, filter.Offset)
}

// Get handles GET /venues/:id
func (h *VenueHandler) Get(c *gin.Context) {
	view, err := h.venueService.GetVenue(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, dto.NewVenueResponse(view.Venue).WithEventCount(view.EventCount))
}

// Create handles POST /venues
func (h *VenueHandler) Create(c *gin.Context) {
	var req dto.CreateVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	venue, err := h.venueService.CreateVenue(c.Request.Context(), principal(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, dto.NewVenueResponse(venue).WithEventCount(0))
}

// Update handles PUT /venues/:id
func (h *VenueHandler) Update(c *gin.Context) {
	var req dto.UpdateVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	venue, err := h.venueService.UpdateVenue(c.Request.Context(), principal(c), c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, dto.NewVenueResponse(venue))
}

// Delete handles DELETE /venues/:id
func (h *VenueHandler) Delete(c *gin.Context) {
	if err := h.venueService.DeleteVenue(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Venue deleted"})
}
