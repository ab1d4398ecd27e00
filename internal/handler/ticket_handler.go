package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/event-marketplace/internal/dto"
	"github.com/prohmpiriya/event-marketplace/internal/service"
	"github.com/prohmpiriya/event-marketplace/pkg/response"
)

// TicketHandler handles ticket-related HTTP requests
type TicketHandler struct {
	ticketService service.TicketService
}

// NewTicketHandler creates a new TicketHandler
func NewTicketHandler(ticketService service.TicketService) *TicketHandler {
	return &TicketHandler{
		ticketService: ticketService,
	}
}

// Purchase handles POST /tickets/purchase
func (h *TicketHandler) Purchase(c *gin.Context) {
	var req dto.PurchaseTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ticket, err := h.ticketService.Purchase(c.Request.Context(), principal(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, dto.NewTicketResponse(ticket))
}

// Get handles GET /tickets/:id
func (h *TicketHandler) Get(c *gin.Context) {
	ticket, err := h.ticketService.GetTicket(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, dto.NewTicketResponse(ticket))
}

// Cancel handles POST /tickets/:id/cancel
func (h *TicketHandler) Cancel(c *gin.Context) {
	ticket, err := h.ticketService.CancelTicket(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, dto.NewTicketResponse(ticket))
}

// Use handles POST /tickets/:id/use
func (h *TicketHandler) Use(c *gin.Context) {
	ticket, err := h.ticketService.MarkUsed(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, dto.NewTicketResponse(ticket))
}

// Validate handles GET /tickets/validate/:ticketNumber
func (h *TicketHandler) Validate(c *gin.Context) {
	number := c.Param("ticketNumber")
	valid, err := h.ticketService.ValidateTicket(c.Request.Context(), principal(c), number)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, &dto.ValidateTicketResponse{TicketNumber: number, Valid: valid})
}

// ListMine handles GET /tickets/my
func (h *TicketHandler) ListMine(c *gin.Context) {
	var filter dto.TicketListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		bindError(c, err)
		return
	}

	tickets, total, err := h.ticketService.ListMyTickets(c.Request.Context(), principal(c), &filter)
	if err != nil {
		handleError(c, err)
		return
	}
	filter.SetDefaults()
	response.Paginated(c, dto.NewTicketResponses(tickets), total, filter.Limit, filter.Offset)
}

// ListByEvent handles GET /tickets/event/:eventId
func (h *TicketHandler) ListByEvent(c *gin.Context) {
	var filter dto.TicketListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		bindError(c, err)
		return
	}

	tickets, total, err := h.ticketService.ListEventTickets(c.Request.Context(), principal(c), c.Param("eventId"), &filter)
	if err != nil {
		handleError(c, err)
		return
	}
	filter.SetDefaults()
	response.Paginated(c, dto.NewTicketResponses(tickets), total, filter.Limit, filter.Offset)
}
