package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prohmpiriya/event-marketplace/internal/domain"
	"github.com/prohmpiriya/event-marketplace/internal/dto"
	"github.com/prohmpiriya/event-marketplace/internal/metrics"
	"github.com/prohmpiriya/event-marketplace/internal/repository"
	"github.com/prohmpiriya/event-marketplace/pkg/logger"
	"github.com/prohmpiriya/event-marketplace/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// EventServiceDeps groups the collaborators of the event service
type EventServiceDeps struct {
	TxManager    repository.TxManager
	EventRepo    repository.EventRepository
	TicketRepo   repository.TicketRepository
	VenueRepo    repository.VenueRepository
	ArtistRepo   repository.ArtistRepository
	CategoryRepo repository.CategoryRepository
	OutboxRepo   repository.OutboxRepository
}

// eventService implements EventService
type eventService struct {
	tx           repository.TxManager
	eventRepo    repository.EventRepository
	ticketRepo   repository.TicketRepository
	venueRepo    repository.VenueRepository
	artistRepo   repository.ArtistRepository
	categoryRepo repository.CategoryRepository
	outboxRepo   repository.OutboxRepository
	now          func() time.Time
	log          *logger.Logger
}

// NewEventService creates a new EventService
func NewEventService(deps *EventServiceDeps) EventService {
	return &eventService{
		tx:           deps.TxManager,
		eventRepo:    deps.EventRepo,
		ticketRepo:   deps.TicketRepo,
		venueRepo:    deps.VenueRepo,
		artistRepo:   deps.ArtistRepo,
		categoryRepo: deps.CategoryRepo,
		outboxRepo:   deps.OutboxRepo,
		now:          time.Now,
		log:          logger.Get().With(zap.String("component", "event_service")),
	}
}

// CreateEvent creates a new event in DRAFT
func (s *eventService) CreateEvent(ctx context.Context, p *domain.Principal, req *dto.CreateEventRequest) (event *domain.Event, err error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.create")
	defer func() { telemetry.EndSpan(span, err) }()

	if err := domain.RequireStaff(p); err != nil {
		return nil, err
	}
	if err := domain.ValidateSchedule(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if valid, msg := req.Validate(); !valid {
		return nil, domain.Validation(msg)
	}

	venue, err := s.venueRepo.GetByID(ctx, req.VenueID)
	if err != nil {
		return nil, err
	}
	if venue == nil {
		return nil, domain.ErrVenueNotFound
	}
	artistIDs, err := s.resolveArtists(ctx, req.ArtistIDs)
	if err != nil {
		return nil, err
	}
	categoryIDs, err := s.resolveCategories(ctx, req.CategoryIDs)
	if err != nil {
		return nil, err
	}

	now := s.now()
	event = &domain.Event{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		VenueID:      venue.ID,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Status:       domain.EventStatusDraft,
		MaxAttendees: req.MaxAttendees,
		TicketPrice:  req.TicketPrice,
		ArtistIDs:    artistIDs,
		CategoryIDs:  categoryIDs,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	span.SetAttributes(attribute.String("event_id", event.ID))

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.eventRepo.Create(ctx, event); err != nil {
			return err
		}
		return s.emit(ctx, domain.OutboxEventCreated, event, p)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Event created",
		zap.String("event_id", event.ID),
		zap.String("actor_id", p.UserID),
	)
	return event, nil
}

// GetEvent retrieves an event with its inventory and venue
func (s *eventService) GetEvent(ctx context.Context, id string) (view *EventView, err error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.get")
	defer func() { telemetry.EndSpan(span, err) }()
	span.SetAttributes(attribute.String("event_id", id))

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrEventNotFound
	}

	view, err = s.view(ctx, event)
	if err != nil {
		return nil, err
	}
	venue, err := s.venueRepo.GetByID(ctx, event.VenueID)
	if err != nil {
		return nil, err
	}
	view.Venue = venue
	return view, nil
}

// ListEvents lists events with filters and pagination
func (s *eventService) ListEvents(ctx context.Context, filter *dto.EventListFilter) (views []*EventView, total int, err error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.list")
	defer func() { telemetry.EndSpan(span, err) }()

	if valid, msg := filter.Validate(); !valid {
		return nil, 0, domain.Validation(msg)
	}
	filter.SetDefaults()

	repoFilter := &repository.EventFilter{
		Name:       filter.Name,
		CategoryID: filter.CategoryID,
		VenueID:    filter.VenueID,
		City:       filter.City,
		Status:     filter.Status,
		StartFrom:  filter.StartFrom,
		StartTo:    filter.StartTo,
	}
	events, total, err := s.eventRepo.List(ctx, repoFilter, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, err
	}

	views = make([]*EventView, 0, len(events))
	for _, event := range events {
		v, err := s.view(ctx, event)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, v)
	}
	return views, total, nil
}

// UpdateEvent applies the fields present in req. Artist and category sets
// are replaced when given.
func (s *eventService) UpdateEvent(ctx context.Context, p *domain.Principal, id string, req *dto.UpdateEventRequest) (view *EventView, err error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.update")
	defer func() { telemetry.EndSpan(span, err) }()
	span.SetAttributes(attribute.String("event_id", id))

	if err := domain.RequireStaff(p); err != nil {
		return nil, err
	}
	if req.StartTime != nil && req.EndTime != nil {
		if err := domain.ValidateSchedule(*req.StartTime, *req.EndTime); err != nil {
			return nil, err
		}
	}
	if valid, msg := req.Validate(); !valid {
		return nil, domain.Validation(msg)
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		event, err := s.lockEvent(ctx, id)
		if err != nil {
			return err
		}
		if err := event.CanUpdate(); err != nil {
			return err
		}
		if err := s.applyUpdate(ctx, event, req); err != nil {
			return err
		}

		event.UpdatedAt = s.now()
		if err := s.eventRepo.Update(ctx, event); err != nil {
			return err
		}
		if err := s.emit(ctx, domain.OutboxEventUpdated, event, p); err != nil {
			return err
		}
		view, err = s.view(ctx, event)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Event updated",
		zap.String("event_id", id),
		zap.String("actor_id", p.UserID),
	)
	return view, nil
}

func (s *eventService) applyUpdate(ctx context.Context, event *domain.Event, req *dto.UpdateEventRequest) error {
	start, end := event.StartTime, event.EndTime
	if req.StartTime != nil {
		start = *req.StartTime
	}
	if req.EndTime != nil {
		end = *req.EndTime
	}
	if err := domain.ValidateSchedule(start, end); err != nil {
		return err
	}
	event.StartTime, event.EndTime = start, end

	if req.Name != nil {
		event.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.MaxAttendees != nil {
		sold, err := s.ticketRepo.CountByEvent(ctx, event.ID)
		if err != nil {
			return err
		}
		if err := domain.ValidateMaxAttendeesChange(req.MaxAttendees, sold); err != nil {
			return err
		}
		event.MaxAttendees = req.MaxAttendees
	}
	if req.ClearMaxAttendees {
		event.MaxAttendees = nil
	}
	if req.TicketPrice != nil {
		event.TicketPrice = *req.TicketPrice
	}

	if req.VenueID != nil && *req.VenueID != event.VenueID {
		venue, err := s.venueRepo.GetByID(ctx, *req.VenueID)
		if err != nil {
			return err
		}
		if venue == nil {
			return domain.ErrVenueNotFound
		}
		event.VenueID = venue.ID
	}
	if req.ArtistIDs != nil {
		ids, err := s.resolveArtists(ctx, *req.ArtistIDs)
		if err != nil {
			return err
		}
		event.ArtistIDs = ids
	}
	if req.CategoryIDs != nil {
		ids, err := s.resolveCategories(ctx, *req.CategoryIDs)
		if err != nil {
			return err
		}
		event.CategoryIDs = ids
	}
	return nil
}

// DeleteEvent deletes a draft event that has never sold a ticket
func (s *eventService) DeleteEvent(ctx context.Context, p *domain.Principal, id string) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.delete")
	defer func() { telemetry.EndSpan(span, err) }()
	span.SetAttributes(attribute.String("event_id", id))

	if err := domain.RequireRole(p, domain.RoleAdmin); err != nil {
		return err
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		event, err := s.lockEvent(ctx, id)
		if err != nil {
			return err
		}
		sold, err := s.ticketRepo.CountByEvent(ctx, event.ID)
		if err != nil {
			return err
		}
		if err := event.CanDelete(sold); err != nil {
			return err
		}
		if err := s.emit(ctx, domain.OutboxEventDeleted, event, p); err != nil {
			return err
		}
		return s.eventRepo.Delete(ctx, event.ID)
	})
	if err != nil {
		return err
	}

	s.log.Info("Event deleted",
		zap.String("event_id", id),
		zap.String("actor_id", p.UserID),
	)
	return nil
}

// PublishEvent publishes a draft event
func (s *eventService) PublishEvent(ctx context.Context, p *domain.Principal, id string) (*EventView, error) {
	return s.transition(ctx, p, id, "service.event.publish", domain.OutboxEventPublished, (*domain.Event).Publish)
}

// CancelEvent cancels an event. Its tickets are left as they are.
func (s *eventService) CancelEvent(ctx context.Context, p *domain.Principal, id string) (*EventView, error) {
	return s.transition(ctx, p, id, "service.event.cancel", domain.OutboxEventCancelled, (*domain.Event).Cancel)
}

func (s *eventService) transition(
	ctx context.Context,
	p *domain.Principal,
	id, spanName string,
	eventType domain.OutboxEventType,
	apply func(*domain.Event, time.Time) error,
) (view *EventView, err error) {
	ctx, span := telemetry.StartSpan(ctx, spanName)
	defer func() { telemetry.EndSpan(span, err) }()
	span.SetAttributes(attribute.String("event_id", id))

	if err := domain.RequireStaff(p); err != nil {
		return nil, err
	}

	var from domain.EventStatus
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		event, err := s.lockEvent(ctx, id)
		if err != nil {
			return err
		}
		from = event.Status
		if err := apply(event, s.now()); err != nil {
			return err
		}
		if err := s.eventRepo.Update(ctx, event); err != nil {
			return err
		}
		if err := s.emit(ctx, eventType, event, p); err != nil {
			return err
		}
		view, err = s.view(ctx, event)
		return err
	})
	if err != nil {
		return nil, err
	}

	to := view.Event.Status
	metrics.RecordEventTransition(ctx, string(to))
	s.log.Info("Event status changed",
		zap.String("event_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("actor_id", p.UserID),
	)
	return view, nil
}

// lockEvent loads the event row under FOR UPDATE
func (s *eventService) lockEvent(ctx context.Context, id string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrEventNotFound
	}
	return event, nil
}

func (s *eventService) view(ctx context.Context, event *domain.Event) (*EventView, error) {
	sold, err := s.ticketRepo.CountByEvent(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	return &EventView{Event: event, Inventory: domain.NewInventory(event.MaxAttendees, sold)}, nil
}

func (s *eventService) emit(ctx context.Context, eventType domain.OutboxEventType, event *domain.Event, p *domain.Principal) error {
	msg, err := domain.EventOutboxMessage(eventType, event, p.UserID)
	if err != nil {
		return fmt.Errorf("failed to build outbox message: %w", err)
	}
	return s.outboxRepo.Create(ctx, msg)
}

func (s *eventService) resolveArtists(ctx context.Context, ids []string) ([]string, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return []string{}, nil
	}
	artists, err := s.artistRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	stored := make([]string, 0, len(artists))
	for _, a := range artists {
		stored = append(stored, a.ID)
	}
	return matchIDs(ids, stored, domain.ErrArtistNotFound)
}

func (s *eventService) resolveCategories(ctx context.Context, ids []string) ([]string, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return []string{}, nil
	}
	categories, err := s.categoryRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	stored := make([]string, 0, len(categories))
	for _, c := range categories {
		stored = append(stored, c.ID)
	}
	return matchIDs(ids, stored, domain.ErrCategoryNotFound)
}

// uniqueIDs drops blanks and duplicates, keeping the first occurrence
func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		key := strings.ToLower(id)
		if id == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, id)
	}
	return out
}

// matchIDs maps requested ids onto the stored ids in request order.
// UUIDs compare case-insensitively; any id without a stored match fails with notFound.
func matchIDs(requested, stored []string, notFound error) ([]string, error) {
	byKey := make(map[string]string, len(stored))
	for _, id := range stored {
		byKey[strings.ToLower(id)] = id
	}
	out := make([]string, 0, len(requested))
	for _, id := range requested {
		match, ok := byKey[strings.ToLower(id)]
		if !ok {
			return nil, notFound
		}
		out = append(out, match)
	}
	return out, nil
}
