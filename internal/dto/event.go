package dto

import (
	"strings"
	"time"

	"github.com/prohmpiriya/event-marketplace/internal/domain"
)

// CreateEventRequest represents the request to create a new event
type CreateEventRequest struct {
	Name         string    `json:"name" binding:"required,min=1,max=255"`
	Description  string    `json:"description"`
	StartTime    time.Time `json:"start_time" binding:"required"`
	EndTime      time.Time `json:"end_time" binding:"required"`
	MaxAttendees *int      `json:"max_attendees"`
	TicketPrice  float64   `json:"ticket_price"`
	VenueID      string    `json:"venue_id" binding:"required"`
	ArtistIDs    []string  `json:"artist_ids"`
	CategoryIDs  []string  `json:"category_ids"`
}

// Validate validates the CreateEventRequest
func (r *CreateEventRequest) Validate() (bool, string) {
	if strings.TrimSpace(r.Name) == "" {
		return false, "Event name is required"
	}
	if r.EndTime.Before(r.StartTime) {
		return false, "End time must not be before start time"
	}
	if err := domain.ValidateMaxAttendees(r.MaxAttendees); err != nil {
		return false, err.Error()
	}
	if err := domain.ValidateTicketPrice(r.TicketPrice); err != nil {
		return false, err.Error()
	}
	return true, ""
}

// UpdateEventRequest carries a partial update. Nil fields are left unchanged;
// an empty id list clears the association. ClearMaxAttendees removes the limit.
type UpdateEventRequest struct {
	Name         *string    `json:"name" binding:"omitempty,min=1,max=255"`
	Description  *string    `json:"description"`
	StartTime    *time.Time `json:"start_time"`
	EndTime      *time.Time `json:"end_time"`
	MaxAttendees *int       `json:"max_attendees"`
	TicketPrice  *float64   `json:"ticket_price"`
	VenueID      *string    `json:"venue_id"`
	ArtistIDs    *[]string  `json:"artist_ids"`
	CategoryIDs  *[]string  `json:"category_ids"`

	ClearMaxAttendees bool `json:"clear_max_attendees"`
}

// Validate checks the fields present on their own; the merged schedule is checked by the service
func (r *UpdateEventRequest) Validate() (bool, string) {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return false, "Event name cannot be empty"
	}
	if r.StartTime != nil && r.EndTime != nil && r.EndTime.Before(*r.StartTime) {
		return false, "End time must not be before start time"
	}
	if r.ClearMaxAttendees && r.MaxAttendees != nil {
		return false, "max_attendees cannot be combined with clear_max_attendees"
	}
	if err := domain.ValidateMaxAttendees(r.MaxAttendees); err != nil {
		return false, err.Error()
	}
	if r.TicketPrice != nil {
		if err := domain.ValidateTicketPrice(*r.TicketPrice); err != nil {
			return false, err.Error()
		}
	}
	if r.VenueID != nil && *r.VenueID == "" {
		return false, "Venue id cannot be empty"
	}
	return true, ""
}

// EventResponse represents the response for an event
type EventResponse struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Description      string         `json:"description"`
	StartTime        string         `json:"start_time"`
	EndTime          string         `json:"end_time"`
	Status           string         `json:"status"`
	MaxAttendees     *int           `json:"max_attendees"`
	TicketPrice      float64        `json:"ticket_price"`
	VenueID          string         `json:"venue_id"`
	Venue            *VenueResponse `json:"venue,omitempty"`
	ArtistIDs        []string       `json:"artist_ids"`
	CategoryIDs      []string       `json:"category_ids"`
	SoldTickets      int            `json:"sold_tickets"`
	AvailableTickets *int           `json:"available_tickets"`
	CreatedAt        string         `json:"created_at"`
	UpdatedAt        string         `json:"updated_at"`
}

// NewEventResponse renders an event with its derived inventory
func NewEventResponse(e *domain.Event, inv domain.Inventory) *EventResponse {
	artistIDs := e.ArtistIDs
	if artistIDs == nil {
		artistIDs = []string{}
	}
	categoryIDs := e.CategoryIDs
	if categoryIDs == nil {
		categoryIDs = []string{}
	}
	return &EventResponse{
		ID:               e.ID,
		Name:             e.Name,
		Description:      e.Description,
		StartTime:        e.StartTime.Format(time.RFC3339),
		EndTime:          e.EndTime.Format(time.RFC3339),
		Status:           string(e.Status),
		MaxAttendees:     e.MaxAttendees,
		TicketPrice:      e.TicketPrice,
		VenueID:          e.VenueID,
		ArtistIDs:        artistIDs,
		CategoryIDs:      categoryIDs,
		SoldTickets:      inv.Sold,
		AvailableTickets: inv.Available,
		CreatedAt:        e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        e.UpdatedAt.Format(time.RFC3339),
	}
}

// EventListFilter represents filters for listing events
type EventListFilter struct {
	Name       string     `form:"name"`
	CategoryID string     `form:"category_id"`
	VenueID    string     `form:"venue_id"`
	City       string     `form:"city"`
	Status     string     `form:"status"`
	StartFrom  *time.Time `form:"start_from" time_format:"2006-01-02T15:04:05Z07:00"`
	StartTo    *time.Time `form:"start_to" time_format:"2006-01-02T15:04:05Z07:00"`
	Page
}

// Validate rejects unknown statuses and inverted ranges
func (f *EventListFilter) Validate() (bool, string) {
	if f.Status != "" && !domain.EventStatus(strings.ToUpper(f.Status)).IsValid() {
		return false, "Unknown event status"
	}
	if f.StartFrom != nil && f.StartTo != nil && f.StartTo.Before(*f.StartFrom) {
		return false, "start_to must not be before start_from"
	}
	return true, ""
}

// SetDefaults normalizes the status and pagination
func (f *EventListFilter) SetDefaults() {
	f.Status = strings.ToUpper(f.Status)
	f.Page.SetDefaults()
}
