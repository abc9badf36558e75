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
	"github.com/shopspring/decimal"
)

// productService implements ProductService.
type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	now          func() time.Time
	logger       zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		now:          time.Now,
		logger:       logger.With().Str("service", "product").Logger(),
	}
}

// List retrieves products with pagination.
func (s *productService) List(ctx context.Context, limit, offset int) ([]model.Product, error) {
	principal, err := auth.MustFromContext(ctx)
	if err != nil {
		return nil, err
	}
	limit, offset = clampPage(limit, offset)

	products, err := s.productRepo.List(ctx, principal.OrganizationID, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to list products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	s.logger.Debug().
		Int("count", len(products)).
		Int("limit", limit).
		Int("offset", offset).
		Msg("retrieved products")

	return products, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	principal, err := auth.MustFromContext(ctx)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, principal.OrganizationID, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Str("product_id", id.String()).Msg("product not found")
		return nil, model.NotFound("Product not found.")
	}

	return product, nil
}

// Create validates req and inserts a new product.
func (s *productService) Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error) {
	principal, err := auth.MustFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if req == nil || req.Name == nil || strings.TrimSpace(*req.Name) == "" ||
		req.SKU == nil || strings.TrimSpace(*req.SKU) == "" || req.Price == nil {
		return nil, model.InvalidInput("Missing required product fields.")
	}

	now := s.now().UTC()
	p := &model.Product{
		ID:             uuid.New(),
		OrganizationID: principal.OrganizationID,
		Cost:           decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.apply(ctx, p, req); err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info().Str("product_id", p.ID.String()).Str("sku", p.SKU).Msg("product created")
	return p, nil
}

// Update applies the non-nil fields of req. Stock is left to the database
// unless req sets it.
func (s *productService) Update(ctx context.Context, id uuid.UUID, req *model.ProductRequest) (*model.Product, error) {
	if req == nil {
		return nil, model.InvalidInput("Product update is empty.")
	}

	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, p, req); err != nil {
		return nil, err
	}
	p.UpdatedAt = s.now().UTC()

	if err := s.productRepo.Update(ctx, p, req.Stock); err != nil {
		return nil, err
	}
	return p, nil
}

// apply copies the set fields of req onto p, validating each.
func (s *productService) apply(ctx context.Context, p *model.Product, req *model.ProductRequest) error {
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return model.InvalidInput("Product name must not be empty.")
		}
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.SKU != nil {
		if strings.TrimSpace(*req.SKU) == "" {
			return model.InvalidInput("Product SKU must not be empty.")
		}
		p.SKU = strings.TrimSpace(*req.SKU)
	}
	if req.Supplier != nil {
		p.Supplier = *req.Supplier
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return model.InvalidInput("Price must not be negative.")
		}
		p.Price = *req.Price
	}
	if req.Cost != nil {
		if req.Cost.IsNegative() {
			return model.InvalidInput("Cost must not be negative.")
		}
		p.Cost = *req.Cost
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return model.InvalidInput("Stock must not be negative.")
		}
		p.Stock = *req.Stock
	}
	if req.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(ctx, p.OrganizationID, *req.CategoryID)
		if err != nil {
			return fmt.Errorf("failed to get category: %w", err)
		}
		if category == nil {
			return model.NotFound("Category not found.")
		}
		id := category.ID
		p.CategoryID = &id
	}
	return nil
}

// Delete removes a product that no sale references.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	principal, err := auth.MustFromContext(ctx)
	if err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, principal.OrganizationID, id); err != nil {
		s.logger.Debug().Err(err).Str("product_id", id.String()).Msg("product not deleted")
		return err
	}

	s.logger.Info().Str("product_id", id.String()).Msg("product deleted")
	return nil
}
