package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prohmpiriya/event-marketplace/internal/domain"
	"github.com/prohmpiriya/event-marketplace/internal/repository"
)

// memStore is an in-memory database shared by the in-memory repositories.
// Rows are stored by value so callers never alias stored state.
type memStore struct {
	mu         sync.Mutex
	events     map[string]domain.Event
	tickets    map[string]domain.Ticket
	venues     map[string]domain.Venue
	artists    map[string]domain.Artist
	categories map[string]domain.Category
	users      map[string]domain.User
	outbox     []domain.OutboxMessage

	// ticketConflicts makes the next n CreateBatch calls collide
	ticketConflicts int
}

func newMemStore() *memStore {
	return &memStore{
		events:     make(map[string]domain.Event),
		tickets:    make(map[string]domain.Ticket),
		venues:     make(map[string]domain.Venue),
		artists:    make(map[string]domain.Artist),
		categories: make(map[string]domain.Category),
		users:      make(map[string]domain.User),
	}
}

type memSnapshot struct {
	events     map[string]domain.Event
	tickets    map[string]domain.Ticket
	venues     map[string]domain.Venue
	artists    map[string]domain.Artist
	categories map[string]domain.Category
	users      map[string]domain.User
	outbox     []domain.OutboxMessage
}

func copyMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() *memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &memSnapshot{
		events:     copyMap(s.events),
		tickets:    copyMap(s.tickets),
		venues:     copyMap(s.venues),
		artists:    copyMap(s.artists),
		categories: copyMap(s.categories),
		users:      copyMap(s.users),
		outbox:     append([]domain.OutboxMessage(nil), s.outbox...),
	}
}

func (s *memStore) restore(snap *memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = snap.events
	s.tickets = snap.tickets
	s.venues = snap.venues
	s.artists = snap.artists
	s.categories = snap.categories
	s.users = snap.users
	s.outbox = snap.outbox
}

func (s *memStore) outboxTypes() []domain.OutboxEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	types := make([]domain.OutboxEventType, len(s.outbox))
	for i, m := range s.outbox {
		types[i] = m.EventType
	}
	return types
}

func (s *memStore) ticketCount(eventID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tickets {
		if t.EventID == eventID {
			n++
		}
	}
	return n
}

func cloneEvent(e domain.Event) *domain.Event {
	e.ArtistIDs = append([]string{}, e.ArtistIDs...)
	e.CategoryIDs = append([]string{}, e.CategoryIDs...)
	if e.MaxAttendees != nil {
		limit := *e.MaxAttendees
		e.MaxAttendees = &limit
	}
	return &e
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// memTxManager serializes transactions and rolls the store back on error
type memTxManager struct {
	store *memStore
	mu    sync.Mutex
}

type memTxKey struct{}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(memTxKey{}).(bool)
	return ok
}

func (m *memTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	snap := m.store.snapshot()
	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

var errNoTx = errors.New("GetByIDForUpdate requires a transaction")

type memEventRepo struct{ s *memStore }

func (r *memEventRepo) Create(ctx context.Context, event *domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.events[event.ID] = *cloneEvent(*event)
	return nil
}

func (r *memEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, nil
	}
	return cloneEvent(e), nil
}

func (r *memEventRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	if !inTx(ctx) {
		return nil, errNoTx
	}
	return r.GetByID(ctx, id)
}

func (r *memEventRepo) Update(ctx context.Context, event *domain.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[event.ID]; !ok {
		return domain.ErrEventNotFound
	}
	r.s.events[event.ID] = *cloneEvent(*event)
	return nil
}

func (r *memEventRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[id]; !ok {
		return domain.ErrEventNotFound
	}
	delete(r.s.events, id)
	return nil
}

func (r *memEventRepo) List(ctx context.Context, filter *repository.EventFilter, limit, offset int) ([]*domain.Event, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*domain.Event
	for _, e := range r.s.events {
		if filter.Status != "" && string(e.Status) != filter.Status {
			continue
		}
		if filter.VenueID != "" && e.VenueID != filter.VenueID {
			continue
		}
		if filter.Name != "" && !strings.Contains(strings.ToLower(e.Name), strings.ToLower(filter.Name)) {
			continue
		}
		if filter.CategoryID != "" && !contains(e.CategoryIDs, filter.CategoryID) {
			continue
		}
		if filter.StartFrom != nil && e.StartTime.Before(*filter.StartFrom) {
			continue
		}
		if filter.StartTo != nil && e.StartTime.After(*filter.StartTo) {
			continue
		}
		out = append(out, cloneEvent(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return paginate(out, limit, offset), len(out), nil
}

func (r *memEventRepo) CountByVenues(ctx context.Context, venueIDs []string) (map[string]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := make(map[string]int)
	for _, e := range r.s.events {
		if contains(venueIDs, e.VenueID) {
			counts[e.VenueID]++
		}
	}
	return counts, nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

type memTicketRepo struct{ s *memStore }

func (r *memTicketRepo) CreateBatch(ctx context.Context, tickets []*domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.ticketConflicts > 0 {
		r.s.ticketConflicts--
		return domain.ErrTicketNumberConflict
	}
	numbers := make(map[string]bool)
	for _, t := range r.s.tickets {
		numbers[t.TicketNumber] = true
	}
	for _, t := range tickets {
		if numbers[t.TicketNumber] {
			return domain.ErrTicketNumberConflict
		}
		numbers[t.TicketNumber] = true
	}
	for _, t := range tickets {
		r.s.tickets[t.ID] = *t
	}
	return nil
}

func (r *memTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tickets[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *memTicketRepo) GetByNumber(ctx context.Context, ticketNumber string) (*domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tickets {
		if t.TicketNumber == ticketNumber {
			return &t, nil
		}
	}
	return nil, nil
}

func (r *memTicketRepo) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, updatedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tickets[id]
	if !ok {
		return domain.ErrTicketNotFound
	}
	t.Status = status
	t.UpdatedAt = updatedAt
	r.s.tickets[id] = t
	return nil
}

func (r *memTicketRepo) CountByEvent(ctx context.Context, eventID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, t := range r.s.tickets {
		if t.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (r *memTicketRepo) list(match func(domain.Ticket) bool, limit, offset int) ([]*domain.Ticket, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Ticket
	for _, t := range r.s.tickets {
		if match(t) {
			t := t
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PurchasedAt.Equal(out[j].PurchasedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].PurchasedAt.After(out[j].PurchasedAt)
	})
	return paginate(out, limit, offset), len(out), nil
}

func (r *memTicketRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Ticket, int, error) {
	return r.list(func(t domain.Ticket) bool { return t.UserID == userID }, limit, offset)
}

func (r *memTicketRepo) ListByEvent(ctx context.Context, eventID string, limit, offset int) ([]*domain.Ticket, int, error) {
	return r.list(func(t domain.Ticket) bool { return t.EventID == eventID }, limit, offset)
}

type memVenueRepo struct{ s *memStore }

func (r *memVenueRepo) Create(ctx context.Context, venue *domain.Venue) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.venues[venue.ID] = *venue
	return nil
}

func (r *memVenueRepo) GetByID(ctx context.Context, id string) (*domain.Venue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.venues[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (r *memVenueRepo) Update(ctx context.Context, venue *domain.Venue) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.venues[venue.ID] = *venue
	return nil
}

func (r *memVenueRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.events {
		if e.VenueID == id {
			return domain.ErrVenueInUse
		}
	}
	delete(r.s.venues, id)
	return nil
}

func (r *memVenueRepo) List(ctx context.Context, filter *repository.VenueFilter, limit, offset int) ([]*domain.Venue, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Venue
	for _, v := range r.s.venues {
		if filter.City != "" && !strings.EqualFold(v.City, filter.City) {
			continue
		}
		if filter.MinCapacity > 0 && v.Capacity < filter.MinCapacity {
			continue
		}
		v := v
		out = append(out, &v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, limit, offset), len(out), nil
}

type memArtistRepo struct{ s *memStore }

func (r *memArtistRepo) Create(ctx context.Context, artist *domain.Artist) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.artists[artist.ID] = *artist
	return nil
}

func (r *memArtistRepo) GetByID(ctx context.Context, id string) (*domain.Artist, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.artists[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *memArtistRepo) GetByIDs(ctx context.Context, ids []string) ([]*domain.Artist, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Artist
	for _, id := range ids {
		if a, ok := r.s.artists[strings.ToLower(id)]; ok {
			out = append(out, &a)
		}
	}
	return out, nil
}

func (r *memArtistRepo) Update(ctx context.Context, artist *domain.Artist) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.artists[artist.ID] = *artist
	return nil
}

func (r *memArtistRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.artists, id)
	for eid, e := range r.s.events {
		e.ArtistIDs = without(e.ArtistIDs, id)
		r.s.events[eid] = e
	}
	return nil
}

func (r *memArtistRepo) List(ctx context.Context, filter *repository.ArtistFilter, limit, offset int) ([]*domain.Artist, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Artist
	for _, a := range r.s.artists {
		if filter.Genre != "" && !strings.EqualFold(a.Genre, filter.Genre) {
			continue
		}
		a := a
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, limit, offset), len(out), nil
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

type memCategoryRepo struct{ s *memStore }

func (r *memCategoryRepo) Create(ctx context.Context, category *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.categories {
		if c.Name == category.Name {
			return domain.ErrCategoryNameConflict
		}
	}
	r.s.categories[category.ID] = *category
	return nil
}

func (r *memCategoryRepo) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *memCategoryRepo) GetByIDs(ctx context.Context, ids []string) ([]*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Category
	for _, id := range ids {
		if c, ok := r.s.categories[strings.ToLower(id)]; ok {
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *memCategoryRepo) NameExists(ctx context.Context, name, excludeID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, c := range r.s.categories {
		if id != excludeID && c.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *memCategoryRepo) Update(ctx context.Context, category *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.categories[category.ID] = *category
	return nil
}

func (r *memCategoryRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.categories, id)
	for eid, e := range r.s.events {
		e.CategoryIDs = without(e.CategoryIDs, id)
		r.s.events[eid] = e
	}
	return nil
}

func (r *memCategoryRepo) List(ctx context.Context, filter *repository.CategoryFilter, limit, offset int) ([]*domain.Category, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Category
	for _, c := range r.s.categories {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, limit, offset), len(out), nil
}

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	u, err := r.GetByEmail(ctx, email)
	return u != nil, err
}

type memOutboxRepo struct{ s *memStore }

func (r *memOutboxRepo) Create(ctx context.Context, msg *domain.OutboxMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.outbox = append(r.s.outbox, *msg)
	return nil
}

func (r *memOutboxRepo) GetPending(ctx context.Context, limit int) ([]*domain.OutboxMessage, error) {
	return nil, nil
}

func (r *memOutboxRepo) GetRetryable(ctx context.Context, limit int) ([]*domain.OutboxMessage, error) {
	return nil, nil
}

func (r *memOutboxRepo) MarkPublished(ctx context.Context, id string) error { return nil }

func (r *memOutboxRepo) MarkFailed(ctx context.Context, id string, errMsg string) error { return nil }

func (r *memOutboxRepo) DeletePublished(ctx context.Context, olderThan time.Duration) (int64, error) {
	return 0, nil
}

var (
	_ repository.TxManager          = (*memTxManager)(nil)
	_ repository.EventRepository    = (*memEventRepo)(nil)
	_ repository.TicketRepository   = (*memTicketRepo)(nil)
	_ repository.VenueRepository    = (*memVenueRepo)(nil)
	_ repository.ArtistRepository   = (*memArtistRepo)(nil)
	_ repository.CategoryRepository = (*memCategoryRepo)(nil)
	_ repository.UserRepository     = (*memUserRepo)(nil)
	_ repository.OutboxRepository   = (*memOutboxRepo)(nil)
)
