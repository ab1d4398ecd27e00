package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prohmpiriya/event-marketplace/internal/domain"
	"github.com/prohmpiriya/event-marketplace/internal/dto"
	"github.com/prohmpiriya/event-marketplace/internal/repository"
	"github.com/prohmpiriya/event-marketplace/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// venueService implements VenueService
type venueService struct {
	venueRepo repository.VenueRepository
	eventRepo repository.EventRepository
}

// NewVenueService creates a new VenueService
func NewVenueService(venueRepo repository.VenueRepository, eventRepo repository.EventRepository) VenueService {
	return &venueService{
		venueRepo: venueRepo,
		eventRepo: eventRepo,
	}
}

// CreateVenue creates a new venue
func (s *venueService) CreateVenue(ctx context.Context, p *domain.Principal, req *dto.CreateVenueRequest) (venue *domain.Venue, err error) {
	ctx, span := telemetry.StartSpan(ctx, "service.venue.create")
	defer func() { telemetry.EndSpan(span, err) }()

	if err := domain.RequireRole(p, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if err := domain.ValidateCapacity(req.Capacity); err != nil {
		return nil, err
	}
	if valid, msg := req.Validate(); !valid {
		return nil, domain.Validation(msg)
	}

	now := time.Now()
	venue = &domain.Venue{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		ZipCode:   req.ZipCode,
		Country:   req.Country,
		Capacity:  req.Capacity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.venueRepo.Create(ctx, venue); err != nil {
		return nil, err
	}
	return venue, nil
}

// GetVenue retrieves a venue and counts its events
func (s *venueService) GetVenue(ctx context.Context, id string) (view *VenueView, err error) {
	ctx, span := telemetry.StartSpan(ctx, "service.venue.get")
	defer func() { telemetry.EndSpan(span, err) }()
	span.SetAttributes(attribute.String("venue_id", id))

	venue, err := s.venueRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if venue == nil {
		return nil, domain.ErrVenueNotFound
	}
	counts, err := s.eventRepo.CountByVenues(ctx, []string{venue.ID})
	if err != nil {
		return nil, err
	}
	return &VenueView{Venue: venue, EventCount: counts[venue.ID]}, nil
}

// ListVenues lists venues with filters and pagination
func (s *venueService) ListVenues(ctx context.Context, filter *dto.VenueListFilter) (views []*VenueView, total int, err error) {
	ctx, span := telemetry.StartSpan(ctx, "service.venue.list")
	defer func() { telemetry.EndSpan(span, err) }()

	filter.SetDefaults()
	venues, total, err := s.venueRepo.List(ctx, &repository.VenueFilter{
		Name:        filter.Name,
		City:        filter.City,
		MinCapacity: filter.MinCapacity,
	}, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]string, len(venues))
	for i, v := range venues {
		ids[i] = v.ID
	}
	counts, err := s.eventRepo.CountByVenues(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	views = make([]*VenueView, len(venues))
	for i, v := range venues {
		views[i] = &VenueView{Venue: v, EventCount: counts[v.ID]}
	}
	return views, total, nil
}

// UpdateVenue updates a venue
func (s *venueService) UpdateVenue(ctx context.Context, p *domain.Principal, id string, req *dto.UpdateVenueRequest) (venue *domain.Venue, err error) {
	ctx, span := telemetry.StartSpan(ctx, "service.venue.update")
	defer func() { telemetry.EndSpan(span, err) }()
	span.SetAttributes(attribute.String("venue_id", id))

	if err := domain.RequireRole(p, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if valid, msg := req.Validate(); !valid {
		return nil, domain.Validation(msg)
	}

	venue, err = s.venueRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if venue == nil {
		return nil, domain.ErrVenueNotFound
	}

	if req.Name != nil {
		venue.Name = *req.Name
	}
	if req.Address != nil {
		venue.Address = *req.Address
	}
	if req.City != nil {
		venue.City = *req.City
	}
	if req.State != nil {
		venue.State = *req.State
	}
	if req.ZipCode != nil {
		venue.ZipCode = *req.ZipCode
	}
	if req.Country != nil {
		venue.Country = *req.Country
	}
	if req.Capacity != nil {
		venue.Capacity = *req.Capacity
	}
	venue.UpdatedAt = time.Now()

	if err := s.venueRepo.Update(ctx, venue); err != nil {
		return nil, err
	}
	return venue, nil
}

// DeleteVenue deletes a venue no event refers to
func (s *venueService) DeleteVenue(ctx context.Context, p *domain.Principal, id string) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "service.venue.delete")
	defer func() { telemetry.EndSpan(span, err) }()
	span.SetAttributes(attribute.String("venue_id", id))

	if err := domain.RequireRole(p, domain.RoleAdmin); err != nil {
		return err
	}
	venue, err := s.venueRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if venue == nil {
		return domain.ErrVenueNotFound
	}
	return s.venueRepo.Delete(ctx, id)
}
