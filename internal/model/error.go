package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeCouponExpired      = "COUPON_EXPIRED"
	ErrCodeCouponExhausted    = "COUPON_EXHAUSTED"
	ErrCodeCouponInactive     = "COUPON_INACTIVE"
	ErrCodeInvalidCouponType  = "INVALID_COUPON_TYPE"
	ErrCodeInvalidCouponValue = "INVALID_COUPON_VALUE"
	ErrCodeInsufficientStock  = "INSUFFICIENT_STOCK"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeProductInUse       = "PRODUCT_IN_USE"
	ErrCodeCategoryInUse      = "CATEGORY_IN_USE"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeStorageFailure     = "STORAGE_FAILURE"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError carrying the same code, so errors.Is works against
// the sentinels below even when the message names a specific entity.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidInput       = NewDomainError(ErrCodeInvalidInput, "invalid input")
	ErrNotFound           = NewDomainError(ErrCodeNotFound, "resource not found")
	ErrCouponNotFound     = NewDomainError(ErrCodeNotFound, "Coupon not found.")
	ErrCouponExpired      = NewDomainError(ErrCodeCouponExpired, "Coupon has expired.")
	ErrCouponExhausted    = NewDomainError(ErrCodeCouponExhausted, "Coupon usage limit reached.")
	ErrCouponInactive     = NewDomainError(ErrCodeCouponInactive, "Coupon is not active.")
	ErrInvalidCouponType  = NewDomainError(ErrCodeInvalidCouponType, "Invalid coupon discount type.")
	ErrInvalidCouponValue = NewDomainError(ErrCodeInvalidCouponValue, "Coupon discount value must not be negative.")
	ErrInsufficientStock  = NewDomainError(ErrCodeInsufficientStock, "insufficient stock")
	ErrConflict           = NewDomainError(ErrCodeConflict, "resource already exists")
	ErrProductInUse       = NewDomainError(ErrCodeProductInUse, "Product cannot be deleted as it is linked to existing sales.")
	ErrCategoryInUse      = NewDomainError(ErrCodeCategoryInUse, "Cannot delete category. It is currently assigned to one or more products.")
	ErrUnauthorised       = NewDomainError(ErrCodeUnauthorised, "unauthorised")
)

// InvalidInput returns an INVALID_INPUT error with a field-specific message.
func InvalidInput(format string, args ...any) *DomainError {
	return NewDomainError(ErrCodeInvalidInput, fmt.Sprintf(format, args...))
}

// NotFound returns a NOT_FOUND error with an entity-specific message.
func NotFound(format string, args ...any) *DomainError {
	return NewDomainError(ErrCodeNotFound, fmt.Sprintf(format, args...))
}

// ErrorCode extracts the domain error code from err, or ErrCodeStorageFailure
// for anything that is not a DomainError.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrCodeStorageFailure
}
