package service

import (
	"context"
	"fmt"
	"time"

	"tillpoint/internal/auth"
	"tillpoint/internal/coupon"
	"tillpoint/internal/model"
	"tillpoint/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// couponService implements CouponService.
type couponService struct {
	couponRepo repository.CouponRepository
	now        func() time.Time
	logger     zerolog.Logger
}

// NewCouponService creates a new coupon service.
func NewCouponService(couponRepo repository.CouponRepository, logger zerolog.Logger) CouponService {
	return &couponService{
		couponRepo: couponRepo,
		now:        time.Now,
		logger:     logger.With().Str("service", "coupon").Logger(),
	}
}

func (s *couponService) List(ctx context.Context) ([]model.Coupon, error) {
	principal, err := auth.MustFromContext(ctx)
	if err != nil {
		return nil, err
	}

	coupons, err := s.couponRepo.List(ctx, principal.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	return coupons, nil
}

func (s *couponService) GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	principal, err := auth.MustFromContext(ctx)
	if err != nil {
		return nil, err
	}

	c, err := s.couponRepo.GetByID(ctx, principal.OrganizationID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	if c == nil {
		return nil, model.ErrCouponNotFound
	}
	return c, nil
}

// Create adds a coupon. The code is stored uppercased and status defaults to active.
func (s *couponService) Create(ctx context.Context, req *model.CouponRequest) (*model.Coupon, error) {
	principal, err := auth.MustFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, model.InvalidInput("Coupon details are required.")
	}

	c, err := coupon.Build(principal.OrganizationID, *req, s.now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.couponRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info().Str("coupon_id", c.ID.String()).Str("code", c.Code).Msg("coupon created")
	return c, nil
}

// Update replaces a coupon's definition, keeping its usage count. An empty
// status keeps the current one.
func (s *couponService) Update(ctx context.Context, id uuid.UUID, req *model.CouponRequest) (*model.Coupon, error) {
	if req == nil {
		return nil, model.InvalidInput("Coupon details are required.")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	update := *req
	if update.Status == "" {
		update.Status = existing.Status
	}

	c, err := coupon.Build(existing.OrganizationID, update, s.now().UTC())
	if err != nil {
		return nil, err
	}
	c.ID = existing.ID
	c.UsageCount = existing.UsageCount
	c.CreatedAt = existing.CreatedAt
	if c.UsageLimit != nil && *c.UsageLimit < c.UsageCount {
		return nil, model.InvalidInput("Usage limit cannot be lower than the current usage count of %d.", c.UsageCount)
	}

	if err := s.couponRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *couponService) Delete(ctx context.Context, id uuid.UUID) error {
	principal, err := auth.MustFromContext(ctx)
	if err != nil {
		return err
	}
	return s.couponRepo.Delete(ctx, principal.OrganizationID, id)
}
