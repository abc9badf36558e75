package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tillpoint/internal/auth"
	"tillpoint/internal/model"
	"tillpoint/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type categoryService struct {
	categoryRepo repository.CategoryRepository
	now          func() time.Time
	logger       zerolog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(categoryRepo repository.CategoryRepository, logger zerolog.Logger) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		now:          time.Now,
		logger:       logger.With().Str("service", "category").Logger(),
	}
}

func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	principal, err := auth.MustFromContext(ctx)
	if err != nil {
		return nil, err
	}

	categories, err := s.categoryRepo.List(ctx, principal.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *categoryService) Create(ctx context.Context, req *model.CategoryRequest) (*model.Category, error) {
	principal, err := auth.MustFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if req == nil || strings.TrimSpace(req.Name) == "" {
		return nil, model.InvalidInput("Category name is required.")
	}

	now := s.now().UTC()
	c := &model.Category{
		ID:             uuid.New(),
		OrganizationID: principal.OrganizationID,
		Name:           strings.TrimSpace(req.Name),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.categoryRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info().Str("category_id", c.ID.String()).Str("name", c.Name).Msg("category created")
	return c, nil
}

// Delete removes a category no product is assigned to.
func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	principal, err := auth.MustFromContext(ctx)
	if err != nil {
		return err
	}
	return s.categoryRepo.Delete(ctx, principal.OrganizationID, id)
}
