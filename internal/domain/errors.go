package domain

import "errors"

// Error kinds. Every domain error wraps exactly one of these.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidState     = errors.New("invalid state")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrValidation       = errors.New("validation failed")
)

// Error is a domain failure with a client-facing message
type Error struct {
	kind error
	msg  string
}

func newError(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string { return e.msg }
func (e *Error) Unwrap() error { return e.kind }

// Kind returns the taxonomy sentinel
func (e *Error) Kind() error { return e.kind }

// Domain errors
var (
	// Event errors
	ErrEventNotFound         = newError(ErrNotFound, "event not found")
	ErrEventNotDraft         = newError(ErrInvalidState, "only draft events can be published")
	ErrEventAlreadyCancelled = newError(ErrInvalidState, "event is already cancelled")
	ErrEventCompleted        = newError(ErrInvalidState, "completed events cannot be changed")
	ErrEventCancelled        = newError(ErrInvalidState, "cancelled events cannot be updated")
	ErrEventNotDeletable     = newError(ErrInvalidState, "only draft events without tickets can be deleted")
	ErrInvalidSchedule       = newError(ErrValidation, "end time must not be before start time")
	ErrInvalidMaxAttendees   = newError(ErrValidation, "max attendees must be at least 1")
	ErrInvalidTicketPrice    = newError(ErrValidation, "ticket price cannot be negative")
	ErrMaxAttendeesBelowSold = newError(ErrInvalidState, "max attendees cannot be below tickets already sold")

	// Ticket errors
	ErrTicketNotFound         = newError(ErrNotFound, "ticket not found")
	ErrEventNotPublished      = newError(ErrInvalidState, "tickets can only be purchased for published events")
	ErrEventAlreadyStarted    = newError(ErrInvalidState, "event has already started")
	ErrSoldOut                = newError(ErrCapacityExceeded, "not enough tickets available")
	ErrTicketAlreadyCancelled = newError(ErrInvalidState, "ticket is already cancelled")
	ErrTicketAlreadyUsed      = newError(ErrInvalidState, "ticket has already been used")
	ErrTicketNotPaid          = newError(ErrInvalidState, "only paid tickets can be marked as used")
	ErrInvalidQuantity        = newError(ErrValidation, "quantity must be at least 1")

	// Catalog errors
	ErrVenueNotFound        = newError(ErrNotFound, "venue not found")
	ErrVenueInUse           = newError(ErrConflict, "venue is referenced by events")
	ErrInvalidCapacity      = newError(ErrValidation, "capacity must be at least 1")
	ErrArtistNotFound       = newError(ErrNotFound, "artist not found")
	ErrCategoryNotFound     = newError(ErrNotFound, "category not found")
	ErrCategoryNameConflict = newError(ErrConflict, "category name already exists")

	// Identity errors
	ErrUserNotFound       = newError(ErrNotFound, "user not found")
	ErrEmailTaken         = newError(ErrConflict, "email is already in use")
	ErrInvalidCredentials = newError(ErrUnauthenticated, "invalid email or password")
	ErrNoPrincipal        = newError(ErrUnauthenticated, "authentication required")
	ErrForbidden          = newError(ErrUnauthorized, "not allowed to perform this action")
)

// Internal failures that surface as 500
var (
	ErrTicketNumberConflict  = errors.New("ticket number collision")
	ErrTicketNumberExhausted = errors.New("could not allocate a unique ticket number")
)

// Validation builds a validation error for malformed input
func Validation(msg string) error {
	return newError(ErrValidation, msg)
}
