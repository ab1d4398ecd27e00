package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/event-marketplace/internal/domain"
	"github.com/prohmpiriya/event-marketplace/internal/dto"
	"github.com/prohmpiriya/event-marketplace/internal/service"
	"github.com/prohmpiriya/event-marketplace/pkg/response"
)

// EventHandler handles event-related HTTP requests
type EventHandler struct {
	eventService service.EventService
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
	}
}

// List handles GET /events
func (h *EventHandler) List(c *gin.Context) {
	var filter dto.EventListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		bindError(c, err)
		return
	}

	views, total, err := h.eventService.ListEvents(c.Request.Context(), &filter)
	if err != nil {
		handleError(c, err)
		return
	}

	resp := make([]*dto.EventResponse, len(views))
	for i, v := range views {
		resp[i] = toEventResponse(v)
	}
	filter.SetDefaults()
	response.Paginated(c, resp, total, filter.Limit, filter.Offset)
}

// Get handles GET /events/:id
func (h *EventHandler) Get(c *gin.Context) {
	view, err := h.eventService.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, toEventResponse(view))
}

// Create handles POST /events
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	event, err := h.eventService.CreateEvent(c.Request.Context(), principal(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, dto.NewEventResponse(event, domain.NewInventory(event.MaxAttendees, 0)))
}

// Update handles PUT /events/:id
func (h *EventHandler) Update(c *gin.Context) {
	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	view, err := h.eventService.UpdateEvent(c.Request.Context(), principal(c), c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, toEventResponse(view))
}

// Delete handles DELETE /events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.eventService.DeleteEvent(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Event deleted"})
}

// Publish handles POST /events/:id/publish
func (h *EventHandler) Publish(c *gin.Context) {
	view, err := h.eventService.PublishEvent(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, toEventResponse(view))
}

// Cancel handles POST /events/:id/cancel
func (h *EventHandler) Cancel(c *gin.Context) {
	view, err := h.eventService.CancelEvent(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, toEventResponse(view))
}

func toEventResponse(v *service.EventView) *dto.EventResponse {
	resp := dto.NewEventResponse(v.Event, v.Inventory)
	if v.Venue != nil {
		resp.Venue = dto.NewVenueResponse(v.Venue)
	}
	return resp
}
