package service

import (
	"context"

	"github.com/prohmpiriya/event-marketplace/internal/domain"
	"github.com/prohmpiriya/event-marketplace/internal/dto"
)

// EventView is an event with its read-time inventory and venue
type EventView struct {
	Event     *domain.Event
	Inventory domain.Inventory
	Venue     *domain.Venue
}

// VenueView is a venue with the number of events it hosts
type VenueView struct {
	Venue      *domain.Venue
	EventCount int
}

// EventService defines the event lifecycle operations
type EventService interface {
	// CreateEvent creates a DRAFT event
	CreateEvent(ctx context.Context, p *domain.Principal, req *dto.CreateEventRequest) (*domain.Event, error)
	// GetEvent returns the event with sold and available counts
	GetEvent(ctx context.Context, id string) (*EventView, error)
	// ListEvents lists events with filters and pagination
	ListEvents(ctx context.Context, filter *dto.EventListFilter) ([]*EventView, int, error)
	// UpdateEvent applies a partial update to a non-cancelled event
	UpdateEvent(ctx context.Context, p *domain.Principal, id string, req *dto.UpdateEventRequest) (*EventView, error)
	// DeleteEvent removes a ticketless draft
	DeleteEvent(ctx context.Context, p *domain.Principal, id string) error
	// PublishEvent moves a draft to PUBLISHED
	PublishEvent(ctx context.Context, p *domain.Principal, id string) (*EventView, error)
	// CancelEvent moves a non-terminal event to CANCELLED
	CancelEvent(ctx context.Context, p *domain.Principal, id string) (*EventView, error)
}

// TicketService defines ticket issuance and validation
type TicketService interface {
	// Purchase issues req.Quantity paid tickets and returns the first one
	Purchase(ctx context.Context, p *domain.Principal, req *dto.PurchaseTicketRequest) (*domain.Ticket, error)
	GetTicket(ctx context.Context, p *domain.Principal, id string) (*domain.Ticket, error)
	CancelTicket(ctx context.Context, p *domain.Principal, id string) (*domain.Ticket, error)
	// MarkUsed admits a paid ticket once
	MarkUsed(ctx context.Context, p *domain.Principal, id string) (*domain.Ticket, error)
	// ValidateTicket is the gate check; unknown numbers are simply invalid
	ValidateTicket(ctx context.Context, p *domain.Principal, ticketNumber string) (bool, error)
	ListMyTickets(ctx context.Context, p *domain.Principal, filter *dto.TicketListFilter) ([]*domain.Ticket, int, error)
	ListEventTickets(ctx context.Context, p *domain.Principal, eventID string, filter *dto.TicketListFilter) ([]*domain.Ticket, int, error)
}

// VenueService defines the interface for venue business logic
type VenueService interface {
	CreateVenue(ctx context.Context, p *domain.Principal, req *dto.CreateVenueRequest) (*domain.Venue, error)
	GetVenue(ctx context.Context, id string) (*VenueView, error)
	ListVenues(ctx context.Context, filter *dto.VenueListFilter) ([]*VenueView, int, error)
	UpdateVenue(ctx context.Context, p *domain.Principal, id string, req *dto.UpdateVenueRequest) (*domain.Venue, error)
	DeleteVenue(ctx context.Context, p *domain.Principal, id string) error
}

// ArtistService defines the interface for artist business logic
type ArtistService interface {
	CreateArtist(ctx context.Context, p *domain.Principal, req *dto.CreateArtistRequest) (*domain.Artist, error)
	GetArtist(ctx context.Context, id string) (*domain.Artist, error)
	ListArtists(ctx context.Context, filter *dto.ArtistListFilter) ([]*domain.Artist, int, error)
	UpdateArtist(ctx context.Context, p *domain.Principal, id string, req *dto.UpdateArtistRequest) (*domain.Artist, error)
	DeleteArtist(ctx context.Context, p *domain.Principal, id string) error
}

// CategoryService defines the interface for category business logic
type CategoryService interface {
	CreateCategory(ctx context.Context, p *domain.Principal, req *dto.CreateCategoryRequest) (*domain.Category, error)
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	ListCategories(ctx context.Context, filter *dto.CategoryListFilter) ([]*domain.Category, int, error)
	UpdateCategory(ctx context.Context, p *domain.Principal, id string, req *dto.UpdateCategoryRequest) (*domain.Category, error)
	DeleteCategory(ctx context.Context, p *domain.Principal, id string) error
}

// AuthService defines account registration and sign-in
type AuthService interface {
	Signup(ctx context.Context, req *dto.SignupRequest) (*domain.User, error)
	Signin(ctx context.Context, req *dto.SigninRequest) (*dto.SigninResponse, error)
	// Me loads the account behind the principal
	Me(ctx context.Context, p *domain.Principal) (*domain.User, error)
}
