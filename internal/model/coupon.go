package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType is how a coupon's discount value is applied to a subtotal.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// CouponStatus is the administrative state of a coupon.
type CouponStatus string

const (
	CouponActive   CouponStatus = "active"
	CouponInactive CouponStatus = "inactive"
)

// Coupon is a discount code owned by an organization.
type Coupon struct {
	ID             uuid.UUID       `json:"id"`
	OrganizationID uuid.UUID       `json:"organization"`
	Code           string          `json:"code"`
	DiscountType   DiscountType    `json:"discountType"`
	DiscountValue  decimal.Decimal `json:"discountValue"`
	Status         CouponStatus    `json:"status"`
	UsageCount     int             `json:"usageCount"`
	UsageLimit     *int            `json:"usageLimit"`
	ExpiryDate     *time.Time      `json:"expiryDate"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// CouponRequest is the payload for creating or updating a coupon.
type CouponRequest struct {
	Code              string          `json:"code"`
	DiscountType      DiscountType    `json:"discountType"`
	DiscountValue     decimal.Decimal `json:"discountValue"`
	UsageLimitEnabled bool            `json:"usageLimitEnabled"`
	UsageLimit        *int            `json:"usageLimit"`
	ExpiryDate        *time.Time      `json:"expiryDate"`
	Status            CouponStatus    `json:"status"`
}
