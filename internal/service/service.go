package service

import (
	"context"

	"tillpoint/internal/model"

	"github.com/google/uuid"
)

// Every operation reads the caller's auth.Principal from ctx and is scoped to
// its organization.

// SaleService defines operations for recording and querying sales.
type SaleService interface {
	// CreateSale validates a checkout and records it atomically: the sale, its
	// stock decrements and the coupon usage increment all commit or none do.
	CreateSale(ctx context.Context, req *model.SaleRequest) (*model.Sale, error)

	// CreateSaleIdempotent behaves like CreateSale, but when req carries an
	// idempotency key that already produced a sale it returns that sale with
	// replayed set instead of recording a new one.
	CreateSaleIdempotent(ctx context.Context, req *model.SaleRequest) (sale *model.Sale, replayed bool, err error)

	// ListSales retrieves sales newest first with pagination.
	ListSales(ctx context.Context, limit, offset int) ([]model.Sale, error)

	// GetSale retrieves a sale with its items.
	GetSale(ctx context.Context, id uuid.UUID) (*model.Sale, error)
}

// ProductService defines operations for product management.
type ProductService interface {
	// List retrieves products with pagination.
	List(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error)

	// Update applies the non-nil fields of req.
	Update(ctx context.Context, id uuid.UUID, req *model.ProductRequest) (*model.Product, error)

	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryService defines operations for category management.
type CategoryService interface {
	List(ctx context.Context) ([]model.Category, error)
	Create(ctx context.Context, req *model.CategoryRequest) (*model.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CouponService defines operations for coupon administration.
type CouponService interface {
	List(ctx context.Context) ([]model.Coupon, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error)
	Create(ctx context.Context, req *model.CouponRequest) (*model.Coupon, error)
	Update(ctx context.Context, id uuid.UUID, req *model.CouponRequest) (*model.Coupon, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AuthService defines registration, login and identity lookup.
type AuthService interface {
	// Register creates an organization with req's user as its admin and returns a token.
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)

	// Login exchanges credentials for a token.
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)

	// Me returns the authenticated user.
	Me(ctx context.Context) (*model.User, error)
}

// clampPage applies the default and maximum page sizes.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
