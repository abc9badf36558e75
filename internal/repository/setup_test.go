package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"tillpoint/internal/database"
	"tillpoint/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer with the application schema applied.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// seedTenant creates an organization with one admin user.
func seedTenant(t *testing.T, pool *pgxpool.Pool, name string) (*model.Organization, *model.User) {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)

	org := &model.Organization{ID: uuid.New(), Name: name, CreatedAt: now}
	user := &model.User{
		ID:             uuid.New(),
		OrganizationID: org.ID,
		Name:           name + " admin",
		Email:          fmt.Sprintf("admin-%s@example.com", org.ID),
		MobileNumber:   "0123456789",
		PasswordHash:   "hash",
		Role:           model.RoleAdmin,
		Status:         model.UserActive,
		CreatedAt:      now,
	}

	repo := NewUserRepository(pool, zerolog.Nop())
	require.NoError(t, repo.CreateWithOrganization(context.Background(), org, user))

	return org, user
}

// seedProduct inserts a product with the given price, cost and stock.
func seedProduct(t *testing.T, pool *pgxpool.Pool, orgID uuid.UUID, name, price, cost string, stock int) *model.Product {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)

	p := &model.Product{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Name:           name,
		SKU:            "SKU-" + uuid.NewString()[:8],
		Price:          decimal.RequireFromString(price),
		Cost:           decimal.RequireFromString(cost),
		Stock:          stock,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	repo := NewProductRepository(pool, zerolog.Nop())
	require.NoError(t, repo.Create(context.Background(), p))

	return p
}

func stockOf(t *testing.T, pool *pgxpool.Pool, id uuid.UUID) int {
	t.Helper()
	var stock int
	require.NoError(t, pool.QueryRow(context.Background(), `SELECT stock FROM products WHERE id = $1`, id).Scan(&stock))
	return stock
}
