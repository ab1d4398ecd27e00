package dto

import (
	"time"

	"github.com/prohmpiriya/event-marketplace/internal/domain"
)

// PurchaseTicketRequest buys quantity tickets for one event
type PurchaseTicketRequest struct {
	EventID  string `json:"event_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1,max=100"`
}

func (r *PurchaseTicketRequest) Validate() (bool, string) {
	if r.EventID == "" {
		return false, "Event id is required"
	}
	if r.Quantity < 1 {
		return false, "Quantity must be at least 1"
	}
	return true, ""
}

type TicketResponse struct {
	ID           string  `json:"id"`
	TicketNumber string  `json:"ticket_number"`
	EventID      string  `json:"event_id"`
	UserID       string  `json:"user_id"`
	Status       string  `json:"status"`
	Price        float64 `json:"price"`
	PurchasedAt  string  `json:"purchased_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func NewTicketResponse(t *domain.Ticket) *TicketResponse {
	return &TicketResponse{
		ID:           t.ID,
		TicketNumber: t.TicketNumber,
		EventID:      t.EventID,
		UserID:       t.UserID,
		Status:       string(t.Status),
		Price:        t.Price,
		PurchasedAt:  t.PurchasedAt.Format(time.RFC3339),
		UpdatedAt:    t.UpdatedAt.Format(time.RFC3339),
	}
}

func NewTicketResponses(tickets []*domain.Ticket) []*TicketResponse {
	out := make([]*TicketResponse, len(tickets))
	for i, t := range tickets {
		out[i] = NewTicketResponse(t)
	}
	return out
}

type ValidateTicketResponse struct {
	TicketNumber string `json:"ticket_number"`
	Valid        bool   `json:"valid"`
}

type TicketListFilter struct {
	Page
}
