package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prohmpiriya/event-marketplace/internal/domain"
	"github.com/prohmpiriya/event-marketplace/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventService_CreateEvent(t *testing.T) {
	ctx := context.Background()
	start := time.Now().Add(48 * time.Hour)

	t.Run("creates a draft with resolved associations", func(t *testing.T) {
		f := newFixture(t)
		venue := f.venue(t, 100)
		artist, err := f.artists.CreateArtist(ctx, organizer, &dto.CreateArtistRequest{Name: "The Band"})
		require.NoError(t, err)
		category, err := f.categories.CreateCategory(ctx, admin, &dto.CreateCategoryRequest{Name: "Rock"})
		require.NoError(t, err)

		event, err := f.events.CreateEvent(ctx, organizer, &dto.CreateEventRequest{
			Name:        "  Concert ",
			StartTime:   start,
			EndTime:     start.Add(2 * time.Hour),
			VenueID:     venue.ID,
			ArtistIDs:   []string{artist.ID, artist.ID},
			CategoryIDs: []string{category.ID},
		})
		require.NoError(t, err)

		assert.Equal(t, domain.EventStatusDraft, event.Status)
		assert.Equal(t, "Concert", event.Name)
		assert.Equal(t, []string{artist.ID}, event.ArtistIDs)
		assert.Equal(t, []string{category.ID}, event.CategoryIDs)
		assert.Equal(t, []domain.OutboxEventType{domain.OutboxEventCreated}, f.store.outboxTypes())
	})

	t.Run("end before start is a validation error before any write", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.events.CreateEvent(ctx, organizer, &dto.CreateEventRequest{
			Name:      "Concert",
			StartTime: start,
			EndTime:   start.Add(-time.Minute),
			VenueID:   "missing-venue",
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.ErrorIs(t, err, domain.ErrInvalidSchedule)
		assert.Empty(t, f.store.events)
		assert.Empty(t, f.store.outbox)
	})

	t.Run("plain users cannot create events", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.events.CreateEvent(ctx, alice, &dto.CreateEventRequest{Name: "x", StartTime: start, EndTime: start})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)

		_, err = f.events.CreateEvent(ctx, nil, &dto.CreateEventRequest{Name: "x", StartTime: start, EndTime: start})
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("unknown references are not found", func(t *testing.T) {
		f := newFixture(t)
		venue := f.venue(t, 100)
		base := dto.CreateEventRequest{Name: "Concert", StartTime: start, EndTime: start, VenueID: venue.ID}

		req := base
		req.VenueID = "nope"
		_, err := f.events.CreateEvent(ctx, organizer, &req)
		assert.ErrorIs(t, err, domain.ErrVenueNotFound)

		req = base
		req.ArtistIDs = []string{"ghost"}
		_, err = f.events.CreateEvent(ctx, organizer, &req)
		assert.ErrorIs(t, err, domain.ErrArtistNotFound)

		req = base
		req.CategoryIDs = []string{"ghost"}
		_, err = f.events.CreateEvent(ctx, organizer, &req)
		assert.ErrorIs(t, err, domain.ErrCategoryNotFound)

		assert.Empty(t, f.store.events)
	})
}

func TestEventService_UpdateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update keeps absent fields", func(t *testing.T) {
		f := newFixture(t)
		event := f.event(t, intPtr(10))
		name := "Renamed"

		updated, err := f.events.UpdateEvent(ctx, organizer, event.ID, &dto.UpdateEventRequest{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Event.Name)
		assert.Equal(t, event.StartTime, updated.Event.StartTime)
		assert.Equal(t, 10, *updated.Event.MaxAttendees)
		assert.Equal(t, event.VenueID, updated.Event.VenueID)
	})

	t.Run("association sets are replaced or cleared", func(t *testing.T) {
		f := newFixture(t)
		a1, _ := f.artists.CreateArtist(ctx, organizer, &dto.CreateArtistRequest{Name: "A1"})
		a2, _ := f.artists.CreateArtist(ctx, organizer, &dto.CreateArtistRequest{Name: "A2"})
		event := f.event(t, nil)

		ids := []string{a1.ID, a2.ID}
		updated, err := f.events.UpdateEvent(ctx, organizer, event.ID, &dto.UpdateEventRequest{ArtistIDs: &ids})
		require.NoError(t, err)
		assert.ElementsMatch(t, ids, updated.Event.ArtistIDs)

		// absent leaves them alone
		desc := "new"
		updated, err = f.events.UpdateEvent(ctx, organizer, event.ID, &dto.UpdateEventRequest{Description: &desc})
		require.NoError(t, err)
		assert.Len(t, updated.Event.ArtistIDs, 2)

		empty := []string{}
		updated, err = f.events.UpdateEvent(ctx, organizer, event.ID, &dto.UpdateEventRequest{ArtistIDs: &empty})
		require.NoError(t, err)
		assert.Empty(t, updated.Event.ArtistIDs)
	})

	t.Run("merged schedule is revalidated", func(t *testing.T) {
		f := newFixture(t)
		event := f.event(t, nil)
		end := event.StartTime.Add(-time.Hour)

		_, err := f.events.UpdateEvent(ctx, organizer, event.ID, &dto.UpdateEventRequest{EndTime: &end})
		assert.ErrorIs(t, err, domain.ErrValidation)

		stored, _ := f.events.eventRepo.GetByID(ctx, event.ID)
		assert.Equal(t, event.EndTime, stored.EndTime)
	})

	t.Run("cancelled events cannot be updated", func(t *testing.T) {
		f := newFixture(t)
		event := f.event(t, nil)
		_, err := f.events.CancelEvent(ctx, organizer, event.ID)
		require.NoError(t, err)

		name := "x"
		_, err = f.events.UpdateEvent(ctx, organizer, event.ID, &dto.UpdateEventRequest{Name: &name})
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("changed venue must exist", func(t *testing.T) {
		f := newFixture(t)
		event := f.event(t, nil)
		venue := "missing"

		_, err := f.events.UpdateEvent(ctx, organizer, event.ID, &dto.UpdateEventRequest{VenueID: &venue})
		assert.ErrorIs(t, err, domain.ErrVenueNotFound)
	})

	t.Run("unknown event", func(t *testing.T) {
		f := newFixture(t)
		name := "x"
		_, err := f.events.UpdateEvent(ctx, organizer, "missing", &dto.UpdateEventRequest{Name: &name})
		assert.ErrorIs(t, err, domain.ErrEventNotFound)
	})

	t.Run("max attendees cannot drop below sold", func(t *testing.T) {
		f := newFixture(t)
		event := f.publishedEvent(t, intPtr(5))
		_, err := f.buy(alice, event.ID, 3)
		require.NoError(t, err)

		_, err = f.events.UpdateEvent(ctx, organizer, event.ID, &dto.UpdateEventRequest{MaxAttendees: intPtr(1)})
		assert.ErrorIs(t, err, domain.ErrMaxAttendeesBelowSold)
		assert.ErrorIs(t, err, domain.ErrInvalidState)

		stored, _ := f.events.eventRepo.GetByID(ctx, event.ID)
		assert.Equal(t, 5, *stored.MaxAttendees)

		updated, err := f.events.UpdateEvent(ctx, organizer, event.ID, &dto.UpdateEventRequest{MaxAttendees: intPtr(3)})
		require.NoError(t, err)
		assert.Equal(t, 3, *updated.Event.MaxAttendees)
		assert.Equal(t, 0, *updated.Inventory.Available)

		_, err = f.buy(bob, event.ID, 1)
		assert.ErrorIs(t, err, domain.ErrSoldOut)
	})

	t.Run("limit can be cleared", func(t *testing.T) {
		f := newFixture(t)
		event := f.publishedEvent(t, intPtr(2))
		_, err := f.buy(alice, event.ID, 2)
		require.NoError(t, err)

		updated, err := f.events.UpdateEvent(ctx, organizer, event.ID, &dto.UpdateEventRequest{ClearMaxAttendees: true})
		require.NoError(t, err)
		assert.Nil(t, updated.Event.MaxAttendees)
		assert.Nil(t, updated.Inventory.Available)
		assert.Equal(t, 2, updated.Inventory.Sold)

		_, err = f.buy(bob, event.ID, 4)
		assert.NoError(t, err)
	})

	t.Run("clear combined with a new limit is rejected", func(t *testing.T) {
		f := newFixture(t)
		event := f.event(t, intPtr(2))

		_, err := f.events.UpdateEvent(ctx, organizer, event.ID,
			&dto.UpdateEventRequest{ClearMaxAttendees: true, MaxAttendees: intPtr(4)})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("artist ids match case-insensitively", func(t *testing.T) {
		f := newFixture(t)
		a1, err := f.artists.CreateArtist(ctx, organizer, &dto.CreateArtistRequest{Name: "A1"})
		require.NoError(t, err)
		event := f.event(t, nil)

		ids := []string{strings.ToUpper(a1.ID), a1.ID}
		updated, err := f.events.UpdateEvent(ctx, organizer, event.ID, &dto.UpdateEventRequest{ArtistIDs: &ids})
		require.NoError(t, err)
		assert.Equal(t, []string{a1.ID}, updated.Event.ArtistIDs)
	})
}

func TestEventService_PublishTransitions(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		from    domain.EventStatus
		wantErr bool
	}{
		{domain.EventStatusDraft, false},
		{domain.EventStatusPublished, true},
		{domain.EventStatusCancelled, true},
		{domain.EventStatusCompleted, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			f := newFixture(t)
			event := f.event(t, nil)
			f.setStatus(event.ID, tt.from)
			before, _ := f.events.eventRepo.GetByID(ctx, event.ID)

			got, err := f.events.PublishEvent(ctx, organizer, event.ID)
			after, _ := f.events.eventRepo.GetByID(ctx, event.ID)

			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidState)
				assert.Equal(t, "only draft events can be published", err.Error())
				assert.Equal(t, before, after)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.EventStatusPublished, got.Event.Status)

			// only status and updated_at change
			before.Status = after.Status
			before.UpdatedAt = after.UpdatedAt
			assert.Equal(t, before, after)
		})
	}
}

func TestEventService_CancelTransitions(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		from    domain.EventStatus
		wantErr error
	}{
		{domain.EventStatusDraft, nil},
		{domain.EventStatusPublished, nil},
		{domain.EventStatusCancelled, domain.ErrEventAlreadyCancelled},
		{domain.EventStatusCompleted, domain.ErrEventCompleted},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			f := newFixture(t)
			event := f.event(t, nil)
			f.setStatus(event.ID, tt.from)

			got, err := f.events.CancelEvent(ctx, organizer, event.ID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, domain.ErrInvalidState)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.EventStatusCancelled, got.Event.Status)
		})
	}
}

func TestEventService_CancelDoesNotTouchTickets(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	event := f.publishedEvent(t, nil)
	ticket, err := f.buy(alice, event.ID, 1)
	require.NoError(t, err)

	_, err = f.events.CancelEvent(ctx, organizer, event.ID)
	require.NoError(t, err)

	stored, err := f.tickets.GetTicket(ctx, alice, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusPaid, stored.Status)
}

func TestEventService_DeleteEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("ticketless draft", func(t *testing.T) {
		f := newFixture(t)
		event := f.event(t, nil)
		require.NoError(t, f.events.DeleteEvent(ctx, admin, event.ID))

		_, err := f.events.GetEvent(ctx, event.ID)
		assert.ErrorIs(t, err, domain.ErrEventNotFound)
		assert.Contains(t, f.store.outboxTypes(), domain.OutboxEventDeleted)
	})

	t.Run("organizers may not delete", func(t *testing.T) {
		f := newFixture(t)
		event := f.event(t, nil)
		assert.ErrorIs(t, f.events.DeleteEvent(ctx, organizer, event.ID), domain.ErrUnauthorized)
	})

	for _, status := range []domain.EventStatus{domain.EventStatusPublished, domain.EventStatusCancelled, domain.EventStatusCompleted} {
		t.Run("rejected when "+string(status), func(t *testing.T) {
			f := newFixture(t)
			event := f.event(t, nil)
			f.setStatus(event.ID, status)
			assert.ErrorIs(t, f.events.DeleteEvent(ctx, admin, event.ID), domain.ErrInvalidState)
		})
	}

	t.Run("draft with tickets", func(t *testing.T) {
		f := newFixture(t)
		event := f.publishedEvent(t, nil)
		_, err := f.buy(alice, event.ID, 1)
		require.NoError(t, err)
		f.setStatus(event.ID, domain.EventStatusDraft)

		assert.ErrorIs(t, f.events.DeleteEvent(ctx, admin, event.ID), domain.ErrEventNotDeletable)
	})

	t.Run("missing", func(t *testing.T) {
		f := newFixture(t)
		assert.ErrorIs(t, f.events.DeleteEvent(ctx, admin, "missing"), domain.ErrEventNotFound)
	})
}

func TestEventService_GetEventInventory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	event := f.publishedEvent(t, intPtr(5))

	_, err := f.buy(alice, event.ID, 2)
	require.NoError(t, err)
	ticket, err := f.buy(bob, event.ID, 1)
	require.NoError(t, err)
	_, err = f.tickets.CancelTicket(ctx, bob, ticket.ID)
	require.NoError(t, err)

	view, err := f.events.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	// cancelled tickets still count as sold
	assert.Equal(t, 3, view.Inventory.Sold)
	require.NotNil(t, view.Inventory.Available)
	assert.Equal(t, 2, *view.Inventory.Available)
	require.NotNil(t, view.Venue)
	assert.Equal(t, event.VenueID, view.Venue.ID)

	unlimited := f.publishedEvent(t, nil)
	view, err = f.events.GetEvent(ctx, unlimited.ID)
	require.NoError(t, err)
	assert.Nil(t, view.Inventory.Available)
}

func TestEventService_ListEvents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	draft := f.event(t, nil)
	published := f.publishedEvent(t, nil)

	views, total, err := f.events.ListEvents(ctx, &dto.EventListFilter{Status: "published"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, views, 1)
	assert.Equal(t, published.ID, views[0].Event.ID)

	views, total, err = f.events.ListEvents(ctx, &dto.EventListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, views, 2)

	views, _, err = f.events.ListEvents(ctx, &dto.EventListFilter{VenueID: draft.VenueID})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, draft.ID, views[0].Event.ID)

	_, _, err = f.events.ListEvents(ctx, &dto.EventListFilter{Status: "archived"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
