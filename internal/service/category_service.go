package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prohmpiriya/event-marketplace/internal/domain"
	"github.com/prohmpiriya/event-marketplace/internal/dto"
	"github.com/prohmpiriya/event-marketplace/internal/repository"
)

// categoryService implements CategoryService
type categoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) CreateCategory(ctx context.Context, p *domain.Principal, req *dto.CreateCategoryRequest) (*domain.Category, error) {
	if err := domain.RequireRole(p, domain.RoleAdmin); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.Validation("Category name is required")
	}

	exists, err := s.categoryRepo.NameExists(ctx, name, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrCategoryNameConflict
	}

	now := time.Now()
	category := &domain.Category{
		ID:          uuid.New().String(),
		Name:        name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	// the unique index still catches a concurrent duplicate
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.ErrCategoryNotFound
	}
	return category, nil
}

func (s *categoryService) ListCategories(ctx context.Context, filter *dto.CategoryListFilter) ([]*domain.Category, int, error) {
	filter.SetDefaults()
	return s.categoryRepo.List(ctx, &repository.CategoryFilter{Name: filter.Name}, filter.Limit, filter.Offset)
}

// UpdateCategory checks name uniqueness only when the name changes
func (s *categoryService) UpdateCategory(ctx context.Context, p *domain.Principal, id string, req *dto.UpdateCategoryRequest) (*domain.Category, error) {
	if err := domain.RequireRole(p, domain.RoleAdmin); err != nil {
		return nil, err
	}
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.Validation("Category name cannot be empty")
		}
		if name != category.Name {
			exists, err := s.categoryRepo.NameExists(ctx, name, category.ID)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, domain.ErrCategoryNameConflict
			}
			category.Name = name
		}
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	category.UpdatedAt = time.Now()

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes the category and detaches it from events
func (s *categoryService) DeleteCategory(ctx context.Context, p *domain.Principal, id string) error {
	if err := domain.RequireRole(p, domain.RoleAdmin); err != nil {
		return err
	}
	if _, err := s.GetCategory(ctx, id); err != nil {
		return err
	}
	return s.categoryRepo.Delete(ctx, id)
}
