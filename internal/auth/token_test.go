package auth

import (
	"context"
	"testing"
	"time"

	"tillpoint/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	p := Principal{UserID: uuid.New(), OrganizationID: uuid.New(), Role: model.RoleAdmin}

	token, err := m.Issue(p)
	require.NoError(t, err)

	got, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestTokenManager_Verify_Rejects(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewTokenManager("secret", time.Hour)
	m.now = func() time.Time { return now }

	p := Principal{UserID: uuid.New(), OrganizationID: uuid.New(), Role: model.RoleStaff}
	valid, err := m.Issue(p)
	require.NoError(t, err)

	expired := NewTokenManager("secret", time.Hour)
	expired.now = func() time.Time { return now.Add(-2 * time.Hour) }
	expiredToken, err := expired.Issue(p)
	require.NoError(t, err)

	otherKey, err := NewTokenManager("other-secret", time.Hour).Issue(p)
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		OrganizationID: p.OrganizationID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   p.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		OrganizationID: p.OrganizationID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "not-a-uuid",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "Garbage", token: "not.a.token"},
		{name: "Empty", token: ""},
		{name: "Expired", token: expiredToken},
		{name: "Wrong key", token: otherKey},
		{name: "Unsigned", token: noneAlg},
		{name: "Bad subject", token: badSubject},
		{name: "Tampered", token: valid + "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestPrincipalContext(t *testing.T) {
	ctx := context.Background()

	_, ok := FromContext(ctx)
	assert.False(t, ok)

	_, err := MustFromContext(ctx)
	assert.ErrorIs(t, err, model.ErrUnauthorised)

	p := Principal{UserID: uuid.New(), OrganizationID: uuid.New(), Role: model.RoleManager}
	ctx = WithPrincipal(ctx, p)

	got, err := MustFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = MustFromContext(WithPrincipal(context.Background(), Principal{UserID: uuid.New()}))
	assert.ErrorIs(t, err, model.ErrUnauthorised)
}
