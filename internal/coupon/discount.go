package coupon

import (
	"strings"
	"time"

	"tillpoint/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CalculateDiscount returns the amount to take off subtotal. The result never
// exceeds subtotal.
func CalculateDiscount(subtotal decimal.Decimal, discountType model.DiscountType, value decimal.Decimal) (decimal.Decimal, error) {
	if value.IsNegative() {
		return decimal.Zero, model.ErrInvalidCouponValue
	}

	var discount decimal.Decimal
	switch discountType {
	case model.DiscountFixed:
		discount = value
	case model.DiscountPercentage:
		discount = subtotal.Mul(value).Div(hundred)
	default:
		return decimal.Zero, model.ErrInvalidCouponType
	}

	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	return discount, nil
}

// CheckRedeemable reports whether c can be applied to a sale at now.
func CheckRedeemable(c *model.Coupon, now time.Time) error {
	if c.Status != model.CouponActive {
		return model.ErrCouponInactive
	}
	if c.ExpiryDate != nil && c.ExpiryDate.Before(now) {
		return model.ErrCouponExpired
	}
	if c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit {
		return model.ErrCouponExhausted
	}
	return nil
}

// NormaliseCode trims and uppercases a coupon code.
func NormaliseCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Build validates req and returns the coupon it describes for orgID.
func Build(orgID uuid.UUID, req model.CouponRequest, now time.Time) (*model.Coupon, error) {
	code := NormaliseCode(req.Code)
	if code == "" {
		return nil, model.InvalidInput("Coupon code is required.")
	}
	if req.DiscountType != model.DiscountFixed && req.DiscountType != model.DiscountPercentage {
		return nil, model.ErrInvalidCouponType
	}
	if req.DiscountValue.IsNegative() {
		return nil, model.ErrInvalidCouponValue
	}

	status := req.Status
	switch status {
	case "":
		status = model.CouponActive
	case model.CouponActive, model.CouponInactive:
	default:
		return nil, model.InvalidInput("Invalid coupon status %q.", status)
	}

	var limit *int
	if req.UsageLimitEnabled {
		if req.UsageLimit == nil || *req.UsageLimit < 0 {
			return nil, model.InvalidInput("Usage limit must be zero or more when enabled.")
		}
		l := *req.UsageLimit
		limit = &l
	}

	var expiry *time.Time
	if req.ExpiryDate != nil && !req.ExpiryDate.IsZero() {
		e := req.ExpiryDate.UTC()
		expiry = &e
	}

	return &model.Coupon{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Code:           code,
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue,
		Status:         status,
		UsageLimit:     limit,
		ExpiryDate:     expiry,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}
