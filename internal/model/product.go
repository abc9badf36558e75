package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a sellable item in an organization's catalogue.
type Product struct {
	ID             uuid.UUID       `json:"id"`
	OrganizationID uuid.UUID       `json:"organization"`
	CategoryID     *uuid.UUID      `json:"category,omitempty"`
	Name           string          `json:"name"`
	SKU            string          `json:"sku"`
	Supplier       string          `json:"supplier"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	Cost           decimal.Decimal `json:"cost"`
	Stock          int             `json:"stock"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// ProductRequest is the payload for creating or updating a product.
// Nil fields are left unchanged on update.
type ProductRequest struct {
	Name        *string          `json:"name"`
	SKU         *string          `json:"sku"`
	Supplier    *string          `json:"supplier"`
	Description *string          `json:"description"`
	CategoryID  *uuid.UUID       `json:"categoryId"`
	Price       *decimal.Decimal `json:"price"`
	Cost        *decimal.Decimal `json:"cost"`
	Stock       *int             `json:"stock"`
}

// Category groups products within an organization.
type Category struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization"`
	Name           string    `json:"name"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// CategoryRequest is the payload for creating a category.
type CategoryRequest struct {
	Name string `json:"name"`
}
