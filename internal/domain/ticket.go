package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TicketStatus represents the state of a ticket
type TicketStatus string

const (
	// TicketStatusReserved is part of the schema but never produced
	TicketStatusReserved  TicketStatus = "RESERVED"
	TicketStatusPaid      TicketStatus = "PAID"
	TicketStatusCancelled TicketStatus = "CANCELLED"
	TicketStatusUsed      TicketStatus = "USED"
)

// TicketNumberPrefix starts every gate-displayable ticket number
const TicketNumberPrefix = "TKT-"

// Ticket represents one admission
type Ticket struct {
	ID           string       `json:"id"`
	TicketNumber string       `json:"ticket_number"`
	EventID      string       `json:"event_id"`
	UserID       string       `json:"user_id"`
	Status       TicketStatus `json:"status"`
	Price        float64      `json:"price"`
	PurchasedAt  time.Time    `json:"purchased_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// NewTicketNumber returns TKT- plus 12 uppercase hex chars
func NewTicketNumber() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return TicketNumberPrefix + strings.ToUpper(hex[:12])
}

// NewPaidTicket issues a paid ticket at the event's current price
func NewPaidTicket(event *Event, userID string, now time.Time) *Ticket {
	return &Ticket{
		ID:           uuid.NewString(),
		TicketNumber: NewTicketNumber(),
		EventID:      event.ID,
		UserID:       userID,
		Status:       TicketStatusPaid,
		Price:        event.TicketPrice,
		PurchasedAt:  now,
		UpdatedAt:    now,
	}
}

// Cancel voids the ticket. Capacity is not released.
func (t *Ticket) Cancel(event *Event, now time.Time) error {
	switch t.Status {
	case TicketStatusCancelled:
		return ErrTicketAlreadyCancelled
	case TicketStatusUsed:
		return ErrTicketAlreadyUsed
	}
	if event.HasStarted(now) {
		return ErrEventAlreadyStarted
	}
	t.Status = TicketStatusCancelled
	t.UpdatedAt = now
	return nil
}

// MarkUsed admits the holder once
func (t *Ticket) MarkUsed(now time.Time) error {
	switch t.Status {
	case TicketStatusPaid:
	case TicketStatusUsed:
		return ErrTicketAlreadyUsed
	case TicketStatusCancelled:
		return ErrTicketAlreadyCancelled
	default:
		return ErrTicketNotPaid
	}
	t.Status = TicketStatusUsed
	t.UpdatedAt = now
	return nil
}

// IsValidAt is the gate check for a ticket of event
func (t *Ticket) IsValidAt(event *Event, now time.Time) bool {
	return t.Status == TicketStatusPaid && event != nil && event.IsAdmitting(now)
}
