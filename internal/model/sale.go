package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how a sale was paid for.
type PaymentMethod string

const (
	PaymentCard    PaymentMethod = "card"
	PaymentCash    PaymentMethod = "cash"
	PaymentEWallet PaymentMethod = "e-wallet"
)

// Valid reports whether m is one of the accepted payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentCash, PaymentEWallet:
		return true
	}
	return false
}

// SaleStatus is the lifecycle state of a sale.
type SaleStatus string

const (
	SaleCompleted SaleStatus = "Completed"
	SalePending   SaleStatus = "Pending"
	SaleCancelled SaleStatus = "Cancelled"
	SaleRefunded  SaleStatus = "Refunded"
)

// Sale is a recorded checkout.
type Sale struct {
	ID             uuid.UUID       `json:"id"`
	OrderID        string          `json:"orderId"`
	OrganizationID uuid.UUID       `json:"organization"`
	CustomerID     string          `json:"customer"`
	Items          []SaleItem      `json:"items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Total          decimal.Decimal `json:"total"`
	CostOfGoods    decimal.Decimal `json:"costOfGoods"`
	CouponCode     *string         `json:"couponCode"`
	PaymentMethod  PaymentMethod   `json:"paymentMethod"`
	Status         SaleStatus      `json:"status"`
	PlacedBy       uuid.UUID       `json:"placedBy"`
	Notes          *string         `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// SaleItem is a line item with price and cost snapshotted at sale time.
type SaleItem struct {
	ProductID uuid.UUID       `json:"product"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Cost      decimal.Decimal `json:"cost"`
}

// SaleRequest represents the request payload for creating a sale.
type SaleRequest struct {
	Items         []SaleItemRequest `json:"items"`
	Customer      *CustomerRef      `json:"customer"`
	PaymentMethod PaymentMethod     `json:"paymentMethod"`
	Notes         *string           `json:"notes,omitempty"`
	CouponCode    *string           `json:"couponCode,omitempty"`

	// IdempotencyKey is taken from the Idempotency-Key header, not the body.
	IdempotencyKey string `json:"-"`
}

// SaleItemRequest represents a single cart line in a sale request.
type SaleItemRequest struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// CustomerRef identifies the customer a sale is attributed to.
type CustomerRef struct {
	ID string `json:"id"`
}
