package service

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/prohmpiriya/event-marketplace/internal/domain"
	"github.com/prohmpiriya/event-marketplace/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ticketNumberPattern = regexp.MustCompile(`^TKT-[0-9A-F]{12}$`)

func TestTicketService_ScenarioCapacity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	venue := f.venue(t, 2)
	start := time.Now().Add(24 * time.Hour)
	event, err := f.events.CreateEvent(ctx, organizer, &dto.CreateEventRequest{
		Name:         "Small show",
		StartTime:    start,
		EndTime:      start.Add(time.Hour),
		MaxAttendees: intPtr(1),
		TicketPrice:  40,
		VenueID:      venue.ID,
	})
	require.NoError(t, err)
	_, err = f.events.PublishEvent(ctx, organizer, event.ID)
	require.NoError(t, err)

	ticket, err := f.buy(alice, event.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusPaid, ticket.Status)
	assert.Equal(t, 40.0, ticket.Price)
	assert.Equal(t, alice.UserID, ticket.UserID)
	assert.Regexp(t, ticketNumberPattern, ticket.TicketNumber)

	_, err = f.buy(bob, event.ID, 1)
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	assert.Equal(t, 1, f.store.ticketCount(event.ID))
}

func TestTicketService_ScenarioUnpublished(t *testing.T) {
	f := newFixture(t)
	event := f.event(t, nil)

	_, err := f.buy(alice, event.ID, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.ErrorIs(t, err, domain.ErrEventNotPublished)
}

func TestTicketService_ScenarioCancelThenUse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	event := f.publishedEvent(t, nil)

	ticket, err := f.buy(alice, event.ID, 1)
	require.NoError(t, err)

	cancelled, err := f.tickets.CancelTicket(ctx, alice, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusCancelled, cancelled.Status)

	_, err = f.tickets.CancelTicket(ctx, alice, ticket.ID)
	assert.ErrorIs(t, err, domain.ErrTicketAlreadyCancelled)

	_, err = f.tickets.MarkUsed(ctx, organizer, ticket.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	assert.Equal(t, []domain.OutboxEventType{
		domain.OutboxEventCreated,
		domain.OutboxEventPublished,
		domain.OutboxTicketPurchased,
		domain.OutboxTicketCancelled,
	}, f.store.outboxTypes())
}

func TestTicketService_PurchaseChecksInOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("missing event", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.buy(alice, "missing", 1)
		assert.ErrorIs(t, err, domain.ErrEventNotFound)
	})

	t.Run("not published wins over capacity", func(t *testing.T) {
		f := newFixture(t)
		event := f.event(t, intPtr(1))
		_, err := f.buy(alice, event.ID, 5)
		assert.ErrorIs(t, err, domain.ErrEventNotPublished)
	})

	t.Run("started event", func(t *testing.T) {
		f := newFixture(t)
		event := f.publishedEvent(t, intPtr(1))
		f.setNow(event.StartTime.Add(time.Minute))
		_, err := f.buy(alice, event.ID, 5)
		assert.ErrorIs(t, err, domain.ErrEventAlreadyStarted)
	})

	t.Run("quantity must be positive", func(t *testing.T) {
		f := newFixture(t)
		event := f.publishedEvent(t, nil)
		_, err := f.buy(alice, event.ID, 0)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("anonymous", func(t *testing.T) {
		f := newFixture(t)
		event := f.publishedEvent(t, nil)
		_, err := f.tickets.Purchase(ctx, nil, &dto.PurchaseTicketRequest{EventID: event.ID, Quantity: 1})
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})
}

func TestTicketService_PurchaseIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	event := f.publishedEvent(t, intPtr(3))

	_, err := f.buy(alice, event.ID, 2)
	require.NoError(t, err)

	_, err = f.buy(bob, event.ID, 2)
	assert.ErrorIs(t, err, domain.ErrSoldOut)
	assert.Equal(t, 2, f.store.ticketCount(event.ID))

	first, err := f.buy(bob, event.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, bob.UserID, first.UserID)
	assert.Equal(t, 3, f.store.ticketCount(event.ID))
}

func TestTicketService_PurchaseIssuesDistinctNumbers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	event := f.publishedEvent(t, nil)

	_, err := f.buy(alice, event.ID, 4)
	require.NoError(t, err)

	tickets, total, err := f.tickets.ListMyTickets(ctx, alice, &dto.TicketListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 4, total)

	seen := map[string]bool{}
	for _, tk := range tickets {
		assert.Regexp(t, ticketNumberPattern, tk.TicketNumber)
		assert.False(t, seen[tk.TicketNumber])
		seen[tk.TicketNumber] = true
		assert.Equal(t, event.TicketPrice, tk.Price)
	}
}

func TestTicketService_ConcurrentPurchasesNeverOversell(t *testing.T) {
	f := newFixture(t)
	const capacity = 10
	event := f.publishedEvent(t, intPtr(capacity))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		soldOut   int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.buy(alice, event.ID, 1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, domain.ErrCapacityExceeded):
				soldOut++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, capacity, succeeded)
	assert.Equal(t, 40, soldOut)
	assert.Equal(t, capacity, f.store.ticketCount(event.ID))
}

func TestTicketService_RetriesTicketNumberCollision(t *testing.T) {
	f := newFixture(t)
	event := f.publishedEvent(t, nil)

	f.store.ticketConflicts = 2
	ticket, err := f.buy(alice, event.ID, 2)
	require.NoError(t, err)
	assert.NotEmpty(t, ticket.ID)
	assert.Equal(t, 2, f.store.ticketCount(event.ID))

	f.store.ticketConflicts = 3
	_, err = f.buy(alice, event.ID, 1)
	assert.ErrorIs(t, err, domain.ErrTicketNumberExhausted)
	assert.NotErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 2, f.store.ticketCount(event.ID))
}

func TestTicketService_CancelTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("strangers are rejected", func(t *testing.T) {
		f := newFixture(t)
		event := f.publishedEvent(t, nil)
		ticket, err := f.buy(alice, event.ID, 1)
		require.NoError(t, err)

		_, err = f.tickets.CancelTicket(ctx, bob, ticket.ID)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("staff may cancel", func(t *testing.T) {
		f := newFixture(t)
		event := f.publishedEvent(t, nil)
		ticket, err := f.buy(alice, event.ID, 1)
		require.NoError(t, err)

		_, err = f.tickets.CancelTicket(ctx, admin, ticket.ID)
		require.NoError(t, err)
	})

	t.Run("after the event started", func(t *testing.T) {
		f := newFixture(t)
		event := f.publishedEvent(t, nil)
		ticket, err := f.buy(alice, event.ID, 1)
		require.NoError(t, err)

		f.setNow(event.StartTime.Add(time.Second))
		_, err = f.tickets.CancelTicket(ctx, alice, ticket.ID)
		assert.ErrorIs(t, err, domain.ErrEventAlreadyStarted)
	})

	t.Run("used ticket", func(t *testing.T) {
		f := newFixture(t)
		event := f.publishedEvent(t, nil)
		ticket, err := f.buy(alice, event.ID, 1)
		require.NoError(t, err)
		_, err = f.tickets.MarkUsed(ctx, organizer, ticket.ID)
		require.NoError(t, err)

		_, err = f.tickets.CancelTicket(ctx, alice, ticket.ID)
		assert.ErrorIs(t, err, domain.ErrTicketAlreadyUsed)
	})

	t.Run("capacity is not released", func(t *testing.T) {
		f := newFixture(t)
		event := f.publishedEvent(t, intPtr(1))
		ticket, err := f.buy(alice, event.ID, 1)
		require.NoError(t, err)
		_, err = f.tickets.CancelTicket(ctx, alice, ticket.ID)
		require.NoError(t, err)

		_, err = f.buy(bob, event.ID, 1)
		assert.ErrorIs(t, err, domain.ErrSoldOut)
	})

	t.Run("missing", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.tickets.CancelTicket(ctx, alice, "missing")
		assert.ErrorIs(t, err, domain.ErrTicketNotFound)
	})
}

func TestTicketService_MarkUsed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	event := f.publishedEvent(t, nil)
	ticket, err := f.buy(alice, event.ID, 1)
	require.NoError(t, err)

	_, err = f.tickets.MarkUsed(ctx, alice, ticket.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	used, err := f.tickets.MarkUsed(ctx, organizer, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusUsed, used.Status)

	_, err = f.tickets.MarkUsed(ctx, organizer, ticket.ID)
	assert.ErrorIs(t, err, domain.ErrTicketAlreadyUsed)
}

func TestTicketService_ValidateTicket(t *testing.T) {
	ctx := context.Background()

	type setup func(t *testing.T, f *fixture, event *domain.Event, ticket *domain.Ticket)
	tests := []struct {
		name  string
		setup setup
		want  bool
	}{
		{
			name: "paid ticket before the event",
			want: true,
		},
		{
			name: "within the admission window",
			setup: func(t *testing.T, f *fixture, event *domain.Event, _ *domain.Ticket) {
				f.setNow(event.StartTime.Add(time.Hour))
			},
			want: true,
		},
		{
			name: "event ended",
			setup: func(t *testing.T, f *fixture, event *domain.Event, _ *domain.Ticket) {
				f.setNow(event.EndTime.Add(time.Minute))
			},
		},
		{
			name: "cancelled ticket",
			setup: func(t *testing.T, f *fixture, _ *domain.Event, ticket *domain.Ticket) {
				_, err := f.tickets.CancelTicket(ctx, alice, ticket.ID)
				require.NoError(t, err)
			},
		},
		{
			name: "used ticket",
			setup: func(t *testing.T, f *fixture, _ *domain.Event, ticket *domain.Ticket) {
				_, err := f.tickets.MarkUsed(ctx, organizer, ticket.ID)
				require.NoError(t, err)
			},
		},
		{
			name: "cancelled event",
			setup: func(t *testing.T, f *fixture, event *domain.Event, _ *domain.Ticket) {
				_, err := f.events.CancelEvent(ctx, organizer, event.ID)
				require.NoError(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			event := f.publishedEvent(t, nil)
			ticket, err := f.buy(alice, event.ID, 1)
			require.NoError(t, err)
			if tt.setup != nil {
				tt.setup(t, f, event, ticket)
			}

			valid, err := f.tickets.ValidateTicket(ctx, organizer, ticket.TicketNumber)
			require.NoError(t, err)
			assert.Equal(t, tt.want, valid)
		})
	}

	t.Run("unknown number", func(t *testing.T) {
		f := newFixture(t)
		valid, err := f.tickets.ValidateTicket(ctx, organizer, "TKT-000000000000")
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("requires staff", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.tickets.ValidateTicket(ctx, alice, "TKT-000000000000")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestTicketService_ReadAccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	event := f.publishedEvent(t, nil)
	ticket, err := f.buy(alice, event.ID, 1)
	require.NoError(t, err)

	got, err := f.tickets.GetTicket(ctx, alice, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)

	_, err = f.tickets.GetTicket(ctx, organizer, ticket.ID)
	require.NoError(t, err)

	_, err = f.tickets.GetTicket(ctx, bob, ticket.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	mine, total, err := f.tickets.ListMyTickets(ctx, bob, &dto.TicketListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, mine)

	_, _, err = f.tickets.ListEventTickets(ctx, alice, event.ID, &dto.TicketListFilter{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	list, total, err := f.tickets.ListEventTickets(ctx, organizer, event.ID, &dto.TicketListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, list, 1)

	_, _, err = f.tickets.ListEventTickets(ctx, organizer, "missing", &dto.TicketListFilter{})
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}
