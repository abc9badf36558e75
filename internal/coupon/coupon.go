package coupon

import (
	"context"

	"tillpoint/internal/model"

	"github.com/google/uuid"
)

// Loader defines the interface for loading coupon definition files.
type Loader interface {
	// Load reads a gzipped CSV coupon definition file.
	// Each non-empty line is CODE,type,value[,limit[,expiry]].
	Load(ctx context.Context, filePath string) ([]model.CouponRequest, error)
}

// Store persists imported coupons.
type Store interface {
	// Import inserts coupons for orgID, skipping codes that already exist.
	// It returns the number of rows inserted.
	Import(ctx context.Context, orgID uuid.UUID, coupons []model.Coupon) (int, error)
}
