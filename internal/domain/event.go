package domain

import "time"

// EventStatus represents the lifecycle state of an event
type EventStatus string

const (
	EventStatusDraft     EventStatus = "DRAFT"
	EventStatusPublished EventStatus = "PUBLISHED"
	EventStatusCancelled EventStatus = "CANCELLED"
	EventStatusCompleted EventStatus = "COMPLETED"
)

// IsValid reports whether s is a known status
func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusDraft, EventStatusPublished, EventStatusCancelled, EventStatusCompleted:
		return true
	}
	return false
}

// Event represents an event entity
type Event struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	VenueID     string      `json:"venue_id"`
	StartTime   time.Time   `json:"start_time"`
	EndTime     time.Time   `json:"end_time"`
	Status      EventStatus `json:"status"`
	// MaxAttendees nil means unlimited
	MaxAttendees *int      `json:"max_attendees,omitempty"`
	TicketPrice  float64   `json:"ticket_price"`
	ArtistIDs    []string  `json:"artist_ids"`
	CategoryIDs  []string  `json:"category_ids"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ValidateSchedule checks end >= start
func ValidateSchedule(start, end time.Time) error {
	if end.Before(start) {
		return ErrInvalidSchedule
	}
	return nil
}

// ValidateMaxAttendees rejects non-positive limits
func ValidateMaxAttendees(limit *int) error {
	if limit != nil && *limit < 1 {
		return ErrInvalidMaxAttendees
	}
	return nil
}

// ValidateTicketPrice rejects negative prices
func ValidateTicketPrice(price float64) error {
	if price < 0 {
		return ErrInvalidTicketPrice
	}
	return nil
}

// ValidateMaxAttendeesChange rejects a limit below the tickets already sold
func ValidateMaxAttendeesChange(limit *int, sold int) error {
	if limit != nil && *limit < sold {
		return ErrMaxAttendeesBelowSold
	}
	return nil
}

// CanUpdate rejects edits to cancelled events
func (e *Event) CanUpdate() error {
	if e.Status == EventStatusCancelled {
		return ErrEventCancelled
	}
	return nil
}

// Publish moves a draft event to PUBLISHED
func (e *Event) Publish(now time.Time) error {
	if e.Status != EventStatusDraft {
		return ErrEventNotDraft
	}
	e.Status = EventStatusPublished
	e.UpdatedAt = now
	return nil
}

// Cancel moves any non-terminal event to CANCELLED
func (e *Event) Cancel(now time.Time) error {
	switch e.Status {
	case EventStatusCancelled:
		return ErrEventAlreadyCancelled
	case EventStatusCompleted:
		return ErrEventCompleted
	}
	e.Status = EventStatusCancelled
	e.UpdatedAt = now
	return nil
}

// CanDelete allows deletion only of ticketless drafts
func (e *Event) CanDelete(ticketCount int) error {
	if e.Status != EventStatusDraft || ticketCount > 0 {
		return ErrEventNotDeletable
	}
	return nil
}

// HasStarted reports whether the start time is not in the future
func (e *Event) HasStarted(now time.Time) bool {
	return !e.StartTime.After(now)
}

// CheckPurchasable runs the state and timing checks of a purchase
func (e *Event) CheckPurchasable(now time.Time) error {
	if e.Status != EventStatusPublished {
		return ErrEventNotPublished
	}
	if e.StartTime.Before(now) {
		return ErrEventAlreadyStarted
	}
	return nil
}

// AdmissionGrace is how long after start a ticket still validates
const AdmissionGrace = 24 * time.Hour

// IsAdmitting reports whether the gate accepts tickets for this event at now
func (e *Event) IsAdmitting(now time.Time) bool {
	return e.Status == EventStatusPublished &&
		e.StartTime.After(now.Add(-AdmissionGrace)) &&
		e.EndTime.After(now)
}
