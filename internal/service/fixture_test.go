package service

import (
	"context"
	"testing"
	"time"

	"github.com/prohmpiriya/event-marketplace/internal/domain"
	"github.com/prohmpiriya/event-marketplace/internal/dto"
	"github.com/prohmpiriya/event-marketplace/pkg/retry"
	"github.com/stretchr/testify/require"
)

var (
	admin     = domain.NewPrincipal("admin-1", "admin@example.com", []string{"admin"})
	organizer = domain.NewPrincipal("org-1", "org@example.com", []string{"user", "organizer"})
	alice     = domain.NewPrincipal("user-alice", "alice@example.com", []string{"user"})
	bob       = domain.NewPrincipal("user-bob", "bob@example.com", []string{"user"})
)

type fixture struct {
	store      *memStore
	events     *eventService
	tickets    *ticketService
	venues     VenueService
	artists    ArtistService
	categories CategoryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()
	tx := &memTxManager{store: store}

	events := NewEventService(&EventServiceDeps{
		TxManager:    tx,
		EventRepo:    &memEventRepo{s: store},
		TicketRepo:   &memTicketRepo{s: store},
		VenueRepo:    &memVenueRepo{s: store},
		ArtistRepo:   &memArtistRepo{s: store},
		CategoryRepo: &memCategoryRepo{s: store},
		OutboxRepo:   &memOutboxRepo{s: store},
	}).(*eventService)

	tickets := NewTicketService(&TicketServiceDeps{
		TxManager:  tx,
		EventRepo:  &memEventRepo{s: store},
		TicketRepo: &memTicketRepo{s: store},
		OutboxRepo: &memOutboxRepo{s: store},
		NumberRetry: &retry.Config{
			MaxAttempts:     3,
			InitialInterval: time.Millisecond,
			MaxInterval:     2 * time.Millisecond,
		},
	}).(*ticketService)

	return &fixture{
		store:      store,
		events:     events,
		tickets:    tickets,
		venues:     NewVenueService(&memVenueRepo{s: store}, &memEventRepo{s: store}),
		artists:    NewArtistService(&memArtistRepo{s: store}),
		categories: NewCategoryService(&memCategoryRepo{s: store}),
	}
}

// setNow pins the clock of both lifecycle services
func (f *fixture) setNow(now time.Time) {
	f.events.now = func() time.Time { return now }
	f.tickets.now = func() time.Time { return now }
}

func (f *fixture) venue(t *testing.T, capacity int) *domain.Venue {
	t.Helper()
	v, err := f.venues.CreateVenue(context.Background(), admin, &dto.CreateVenueRequest{
		Name:     "Main Hall",
		Address:  "1 Hall Road",
		City:     "Springfield",
		Capacity: capacity,
	})
	require.NoError(t, err)
	return v
}

// event creates a DRAFT event starting in a day at a fresh venue
func (f *fixture) event(t *testing.T, maxAttendees *int) *domain.Event {
	t.Helper()
	start := time.Now().Add(24 * time.Hour)
	e, err := f.events.CreateEvent(context.Background(), organizer, &dto.CreateEventRequest{
		Name:         "Concert",
		StartTime:    start,
		EndTime:      start.Add(3 * time.Hour),
		MaxAttendees: maxAttendees,
		TicketPrice:  25,
		VenueID:      f.venue(t, 500).ID,
	})
	require.NoError(t, err)
	return e
}

func (f *fixture) publishedEvent(t *testing.T, maxAttendees *int) *domain.Event {
	t.Helper()
	e := f.event(t, maxAttendees)
	view, err := f.events.PublishEvent(context.Background(), organizer, e.ID)
	require.NoError(t, err)
	return view.Event
}

func (f *fixture) buy(p *domain.Principal, eventID string, qty int) (*domain.Ticket, error) {
	return f.tickets.Purchase(context.Background(), p, &dto.PurchaseTicketRequest{EventID: eventID, Quantity: qty})
}

// setStatus forces a stored event into a state no operation produces
func (f *fixture) setStatus(eventID string, status domain.EventStatus) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	e := f.store.events[eventID]
	e.Status = status
	f.store.events[eventID] = e
}

func intPtr(i int) *int { return &i }
