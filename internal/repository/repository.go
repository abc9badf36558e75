package repository

import (
	"context"

	"tillpoint/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Every method takes the caller's organization ID and every query filters on it.
// Lookups by ID return (nil, nil) when the row is absent or owned by another organization.

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// List retrieves products ordered by name with pagination support.
	List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID.
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*model.Product, error)

	// GetByIDsTx retrieves multiple products by their IDs within the provided transaction.
	// IDs that do not resolve are simply absent from the result.
	GetByIDsTx(ctx context.Context, tx pgx.Tx, orgID uuid.UUID, ids []uuid.UUID) ([]model.Product, error)

	// Create inserts a new product. A duplicate SKU yields model.ErrConflict.
	Create(ctx context.Context, p *model.Product) error

	// Update overwrites a product's descriptive fields. Stock is replaced only
	// when stock is non-nil; p.Stock is refreshed from the stored row either way.
	Update(ctx context.Context, p *model.Product, stock *int) error

	// Delete removes a product. Products referenced by a sale yield model.ErrProductInUse.
	Delete(ctx context.Context, orgID, id uuid.UUID) error

	// DecrementStock atomically subtracts qty from a product's stock within the
	// provided transaction, failing with model.ErrInsufficientStock rather than
	// letting stock go negative.
	DecrementStock(ctx context.Context, tx pgx.Tx, orgID, id uuid.UUID, qty int) error
}

// CategoryRepository defines the interface for category data access operations.
type CategoryRepository interface {
	List(ctx context.Context, orgID uuid.UUID) ([]model.Category, error)
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*model.Category, error)

	// Create inserts a category. A duplicate name yields model.ErrConflict.
	Create(ctx context.Context, c *model.Category) error

	// Delete removes a category. Categories assigned to products yield model.ErrCategoryInUse.
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}

// CouponRepository defines the interface for coupon data access operations.
type CouponRepository interface {
	List(ctx context.Context, orgID uuid.UUID) ([]model.Coupon, error)
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*model.Coupon, error)

	// GetByCodeTx retrieves a coupon by its normalised code within the provided transaction.
	GetByCodeTx(ctx context.Context, tx pgx.Tx, orgID uuid.UUID, code string) (*model.Coupon, error)

	// Create inserts a coupon. A duplicate code yields model.ErrConflict.
	Create(ctx context.Context, c *model.Coupon) error
	Update(ctx context.Context, c *model.Coupon) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error

	// IncrementUsage atomically adds one use within the provided transaction,
	// failing with model.ErrCouponExhausted when the usage limit is already reached.
	IncrementUsage(ctx context.Context, tx pgx.Tx, orgID, id uuid.UUID) error

	// Import inserts coupons, skipping codes that already exist, and returns the
	// number of rows inserted.
	Import(ctx context.Context, orgID uuid.UUID, coupons []model.Coupon) (int, error)
}

// SaleRepository defines the interface for sale data access operations.
type SaleRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts a sale and its items within the provided transaction.
	// A duplicate order ID yields model.ErrConflict.
	Create(ctx context.Context, tx pgx.Tx, sale *model.Sale) error

	// List retrieves sales newest first, with their items.
	List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]model.Sale, error)

	// GetByID retrieves a sale by its ID along with its items.
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*model.Sale, error)
}

// UserRepository defines the interface for user and organization data access.
type UserRepository interface {
	// CreateWithOrganization inserts an organization and its first user atomically.
	// A duplicate email yields model.ErrConflict.
	CreateWithOrganization(ctx context.Context, org *model.Organization, user *model.User) error

	// GetByEmail looks a user up across all organizations. Email is matched case-insensitively.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	GetByID(ctx context.Context, orgID, id uuid.UUID) (*model.User, error)
}
