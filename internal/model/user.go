package model

import (
	"time"

	"github.com/google/uuid"
)

// Organization is the tenant boundary for all catalogue, coupon and sale data.
type Organization struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// User is a staff account belonging to one organization.
type User struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	MobileNumber   string    `json:"mobileNumber"`
	PasswordHash   string    `json:"-"`
	Role           string    `json:"role"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

// User roles and statuses.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"

	UserPending   = "pending"
	UserActive    = "active"
	UserSuspended = "suspended"
)

// RegisterRequest is the payload for registering a new organization and its first user.
type RegisterRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	OrganizationName string `json:"organizationName"`
	MobileNumber     string `json:"mobileNumber"`
}

// LoginRequest is the payload for exchanging credentials for a token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries a signed bearer token and the user it was issued for.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
