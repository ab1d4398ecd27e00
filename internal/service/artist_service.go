package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prohmpiriya/event-marketplace/internal/domain"
	"github.com/prohmpiriya/event-marketplace/internal/dto"
	"github.com/prohmpiriya/event-marketplace/internal/repository"
)

// artistService implements ArtistService
type artistService struct {
	artistRepo repository.ArtistRepository
}

// NewArtistService creates a new ArtistService
func NewArtistService(artistRepo repository.ArtistRepository) ArtistService {
	return &artistService{artistRepo: artistRepo}
}

func (s *artistService) CreateArtist(ctx context.Context, p *domain.Principal, req *dto.CreateArtistRequest) (*domain.Artist, error) {
	if err := domain.RequireStaff(p); err != nil {
		return nil, err
	}

	now := time.Now()
	artist := &domain.Artist{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Bio:          req.Bio,
		Genre:        req.Genre,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		ImageURL:     req.ImageURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.artistRepo.Create(ctx, artist); err != nil {
		return nil, err
	}
	return artist, nil
}

func (s *artistService) GetArtist(ctx context.Context, id string) (*domain.Artist, error) {
	artist, err := s.artistRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if artist == nil {
		return nil, domain.ErrArtistNotFound
	}
	return artist, nil
}

func (s *artistService) ListArtists(ctx context.Context, filter *dto.ArtistListFilter) ([]*domain.Artist, int, error) {
	filter.SetDefaults()
	return s.artistRepo.List(ctx, &repository.ArtistFilter{
		Name:  filter.Name,
		Genre: filter.Genre,
	}, filter.Limit, filter.Offset)
}

func (s *artistService) UpdateArtist(ctx context.Context, p *domain.Principal, id string, req *dto.UpdateArtistRequest) (*domain.Artist, error) {
	if err := domain.RequireStaff(p); err != nil {
		return nil, err
	}
	artist, err := s.GetArtist(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		artist.Name = *req.Name
	}
	if req.Bio != nil {
		artist.Bio = *req.Bio
	}
	if req.Genre != nil {
		artist.Genre = *req.Genre
	}
	if req.ContactEmail != nil {
		artist.ContactEmail = *req.ContactEmail
	}
	if req.ContactPhone != nil {
		artist.ContactPhone = *req.ContactPhone
	}
	if req.ImageURL != nil {
		artist.ImageURL = *req.ImageURL
	}
	artist.UpdatedAt = time.Now()

	if err := s.artistRepo.Update(ctx, artist); err != nil {
		return nil, err
	}
	return artist, nil
}

// DeleteArtist removes the artist and its event associations
func (s *artistService) DeleteArtist(ctx context.Context, p *domain.Principal, id string) error {
	if err := domain.RequireRole(p, domain.RoleAdmin); err != nil {
		return err
	}
	if _, err := s.GetArtist(ctx, id); err != nil {
		return err
	}
	return s.artistRepo.Delete(ctx, id)
}
