package repository

import (
	"context"
	"time"

	"github.com/prohmpiriya/event-marketplace/internal/domain"
)

// TxManager runs fn inside one database transaction. Repositories called
// with the ctx passed to fn join that transaction.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventRepository defines the interface for event data access
type EventRepository interface {
	// Create inserts the event and its artist/category associations
	Create(ctx context.Context, event *domain.Event) error
	// GetByID returns nil, nil when the event does not exist
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	// GetByIDForUpdate locks the event row until the surrounding transaction ends
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Event, error)
	// Update rewrites the event row and replaces its associations
	Update(ctx context.Context, event *domain.Event) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter *EventFilter, limit, offset int) ([]*domain.Event, int, error)
	// CountByVenues returns the number of events per venue id
	CountByVenues(ctx context.Context, venueIDs []string) (map[string]int, error)
}

// EventFilter contains filter options for listing events
type EventFilter struct {
	Name       string
	CategoryID string
	VenueID    string
	City       string
	Status     string
	StartFrom  *time.Time
	StartTo    *time.Time
}

// TicketRepository defines the interface for ticket data access
type TicketRepository interface {
	// CreateBatch inserts all tickets or none. A ticket number collision
	// returns domain.ErrTicketNumberConflict.
	CreateBatch(ctx context.Context, tickets []*domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByNumber(ctx context.Context, ticketNumber string) (*domain.Ticket, error)
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, updatedAt time.Time) error
	// CountByEvent counts every ticket of the event, cancelled ones included
	CountByEvent(ctx context.Context, eventID string) (int, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Ticket, int, error)
	ListByEvent(ctx context.Context, eventID string, limit, offset int) ([]*domain.Ticket, int, error)
}

// VenueRepository defines the interface for venue data access
type VenueRepository interface {
	Create(ctx context.Context, venue *domain.Venue) error
	GetByID(ctx context.Context, id string) (*domain.Venue, error)
	Update(ctx context.Context, venue *domain.Venue) error
	// Delete returns domain.ErrVenueInUse while events reference the venue
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter *VenueFilter, limit, offset int) ([]*domain.Venue, int, error)
}

type VenueFilter struct {
	Name        string
	City        string
	MinCapacity int
}

// ArtistRepository defines the interface for artist data access
type ArtistRepository interface {
	Create(ctx context.Context, artist *domain.Artist) error
	GetByID(ctx context.Context, id string) (*domain.Artist, error)
	// GetByIDs returns the artists that exist among ids
	GetByIDs(ctx context.Context, ids []string) ([]*domain.Artist, error)
	Update(ctx context.Context, artist *domain.Artist) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter *ArtistFilter, limit, offset int) ([]*domain.Artist, int, error)
}

type ArtistFilter struct {
	Name  string
	Genre string
}

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	// Create returns domain.ErrCategoryNameConflict on a duplicate name
	Create(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	GetByIDs(ctx context.Context, ids []string) ([]*domain.Category, error)
	// NameExists ignores the category with excludeID
	NameExists(ctx context.Context, name, excludeID string) (bool, error)
	Update(ctx context.Context, category *domain.Category) error
	// Delete detaches the category from every event
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter *CategoryFilter, limit, offset int) ([]*domain.Category, int, error)
}

type CategoryFilter struct {
	Name string
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create returns domain.ErrEmailTaken on a duplicate email
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// OutboxRepository defines the interface for outbox data access
type OutboxRepository interface {
	Create(ctx context.Context, msg *domain.OutboxMessage) error
	// GetPending locks up to limit pending rows; call inside WithTx
	GetPending(ctx context.Context, limit int) ([]*domain.OutboxMessage, error)
	// GetRetryable locks up to limit failed rows with attempts left
	GetRetryable(ctx context.Context, limit int) ([]*domain.OutboxMessage, error)
	MarkPublished(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
	// DeletePublished removes published rows older than the given age
	DeletePublished(ctx context.Context, olderThan time.Duration) (int64, error)
}
