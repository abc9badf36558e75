package auth

import (
	"context"

	"tillpoint/internal/model"

	"github.com/google/uuid"
)

// Principal is the verified identity of the caller.
type Principal struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	Role           string
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored in ctx, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// MustFromContext returns the principal stored in ctx, or model.ErrUnauthorised
// when the request never passed the bearer middleware.
func MustFromContext(ctx context.Context) (Principal, error) {
	p, ok := FromContext(ctx)
	if !ok || p.UserID == uuid.Nil || p.OrganizationID == uuid.Nil {
		return Principal{}, model.ErrUnauthorised
	}
	return p, nil
}
