package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tillpoint/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const userColumns = `id, organization_id, name, email, mobile_number, password_hash, role, status, created_at`

type userRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool *pgxpool.Pool, logger zerolog.Logger) UserRepository {
	return &userRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "user").Logger(),
	}
}

func scanUser(row pgx.Row, u *model.User) error {
	return row.Scan(
		&u.ID,
		&u.OrganizationID,
		&u.Name,
		&u.Email,
		&u.MobileNumber,
		&u.PasswordHash,
		&u.Role,
		&u.Status,
		&u.CreatedAt,
	)
}

// CreateWithOrganization inserts an organization and its first user atomically.
func (r *userRepository) CreateWithOrganization(ctx context.Context, org *model.Organization, user *model.User) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO organizations (id, name, created_at) VALUES ($1, $2, $3)`,
		org.ID, org.Name, org.CreatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("organization", org.Name).Msg("failed to create organization")
		return fmt.Errorf("failed to create organization: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		user.ID, user.OrganizationID, user.Name, strings.ToLower(user.Email), user.MobileNumber,
		user.PasswordHash, user.Role, user.Status, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.NewDomainError(model.ErrCodeConflict, "User with this email already exists.")
		}
		r.logger.Error().Err(err).Msg("failed to create user")
		return fmt.Errorf("failed to create user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Msg("failed to commit registration")
		return fmt.Errorf("failed to commit registration: %w", err)
	}

	return nil
}

// GetByEmail looks a user up across all organizations.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var u model.User
	if err := scanUser(r.pool.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email))), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query user by email")
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE organization_id = $1 AND id = $2`

	var u model.User
	if err := scanUser(r.pool.QueryRow(ctx, query, orgID, id), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("user_id", id.String()).Msg("failed to query user")
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &u, nil
}
