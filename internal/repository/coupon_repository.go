package repository

import (
	"context"
	"errors"
	"fmt"

	"tillpoint/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const couponColumns = `id, organization_id, code, discount_type, discount_value, status, usage_count, usage_limit, expiry_date, created_at, updated_at`

// couponRepository implements the CouponRepository interface using PostgreSQL.
type couponRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCouponRepository creates a new PostgreSQL-backed coupon repository.
func NewCouponRepository(pool *pgxpool.Pool, logger zerolog.Logger) CouponRepository {
	return &couponRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "coupon").Logger(),
	}
}

func scanCoupon(row pgx.Row, c *model.Coupon) error {
	return row.Scan(
		&c.ID,
		&c.OrganizationID,
		&c.Code,
		&c.DiscountType,
		&c.DiscountValue,
		&c.Status,
		&c.UsageCount,
		&c.UsageLimit,
		&c.ExpiryDate,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
}

func (r *couponRepository) List(ctx context.Context, orgID uuid.UUID) ([]model.Coupon, error) {
	query := `
		SELECT ` + couponColumns + `
		FROM coupons
		WHERE organization_id = $1
		ORDER BY created_at DESC, code
	`

	rows, err := r.pool.Query(ctx, query, orgID)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query coupons")
		return nil, fmt.Errorf("failed to query coupons: %w", err)
	}
	defer rows.Close()

	coupons := []model.Coupon{}
	for rows.Next() {
		var c model.Coupon
		if err := scanCoupon(rows, &c); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan coupon row")
			return nil, fmt.Errorf("failed to scan coupon: %w", err)
		}
		coupons = append(coupons, c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating coupon rows")
		return nil, fmt.Errorf("error iterating coupons: %w", err)
	}

	return coupons, nil
}

func (r *couponRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE organization_id = $1 AND id = $2`

	var c model.Coupon
	if err := scanCoupon(r.pool.QueryRow(ctx, query, orgID, id), &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("coupon_id", id.String()).Msg("failed to query coupon")
		return nil, fmt.Errorf("failed to query coupon: %w", err)
	}

	return &c, nil
}

// GetByCodeTx retrieves a coupon by its normalised code within the provided transaction.
func (r *couponRepository) GetByCodeTx(ctx context.Context, tx pgx.Tx, orgID uuid.UUID, code string) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE organization_id = $1 AND code = $2`

	var c model.Coupon
	if err := scanCoupon(tx.QueryRow(ctx, query, orgID, code), &c); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("coupon_code", code).Msg("coupon not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("coupon_code", code).Msg("failed to query coupon by code")
		return nil, fmt.Errorf("failed to query coupon by code: %w", err)
	}

	return &c, nil
}

func (r *couponRepository) Create(ctx context.Context, c *model.Coupon) error {
	query := `
		INSERT INTO coupons (` + couponColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		c.ID, c.OrganizationID, c.Code, c.DiscountType, c.DiscountValue, c.Status,
		c.UsageCount, c.UsageLimit, c.ExpiryDate, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.NewDomainError(model.ErrCodeConflict, fmt.Sprintf("Coupon code %s already exists.", c.Code))
		}
		r.logger.Error().Err(err).Str("coupon_code", c.Code).Msg("failed to create coupon")
		return fmt.Errorf("failed to create coupon: %w", err)
	}

	return nil
}

const usageWithinLimit = "coupons_usage_within_limit"

var errUsageLimitBelowCount = model.InvalidInput("Usage limit cannot be lower than the coupon's current usage count.")

// Update overwrites the administrative fields of a coupon. Usage count is left untouched.
func (r *couponRepository) Update(ctx context.Context, c *model.Coupon) error {
	query := `
		UPDATE coupons
		SET code = $3, discount_type = $4, discount_value = $5, status = $6,
		    usage_limit = $7, expiry_date = $8, updated_at = $9
		WHERE organization_id = $1 AND id = $2
	`

	tag, err := r.pool.Exec(ctx, query,
		c.OrganizationID, c.ID, c.Code, c.DiscountType, c.DiscountValue, c.Status,
		c.UsageLimit, c.ExpiryDate, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.NewDomainError(model.ErrCodeConflict, fmt.Sprintf("Coupon code %s already exists.", c.Code))
		}
		if isCheckViolation(err, usageWithinLimit) {
			return errUsageLimitBelowCount
		}
		r.logger.Error().Err(err).Str("coupon_id", c.ID.String()).Msg("failed to update coupon")
		return fmt.Errorf("failed to update coupon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCouponNotFound
	}

	return nil
}

func (r *couponRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM coupons WHERE organization_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		r.logger.Error().Err(err).Str("coupon_id", id.String()).Msg("failed to delete coupon")
		return fmt.Errorf("failed to delete coupon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCouponNotFound
	}

	return nil
}

// IncrementUsage atomically adds one use within the provided transaction.
func (r *couponRepository) IncrementUsage(ctx context.Context, tx pgx.Tx, orgID, id uuid.UUID) error {
	query := `
		UPDATE coupons
		SET usage_count = usage_count + 1, updated_at = NOW()
		WHERE organization_id = $1 AND id = $2
		  AND (usage_limit IS NULL OR usage_count < usage_limit)
	`

	tag, err := tx.Exec(ctx, query, orgID, id)
	if err != nil {
		r.logger.Error().Err(err).Str("coupon_id", id.String()).Msg("failed to increment coupon usage")
		return fmt.Errorf("failed to increment coupon usage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Warn().Str("coupon_id", id.String()).Msg("coupon usage limit reached")
		return model.ErrCouponExhausted
	}

	return nil
}

// Import inserts coupons in one batch, skipping codes that already exist.
func (r *couponRepository) Import(ctx context.Context, orgID uuid.UUID, coupons []model.Coupon) (int, error) {
	if len(coupons) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO coupons (` + couponColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (organization_id, code) DO NOTHING
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	batch := &pgx.Batch{}
	for _, c := range coupons {
		batch.Queue(query,
			c.ID, orgID, c.Code, c.DiscountType, c.DiscountValue, c.Status,
			c.UsageCount, c.UsageLimit, c.ExpiryDate, c.CreatedAt, c.UpdatedAt,
		)
	}

	results := tx.SendBatch(ctx, batch)
	inserted := 0
	for i := 0; i < len(coupons); i++ {
		tag, err := results.Exec()
		if err != nil {
			_ = results.Close()
			r.logger.Error().
				Err(err).
				Str("coupon_code", coupons[i].Code).
				Msg("failed to import coupon")
			return 0, fmt.Errorf("failed to import coupon %s: %w", coupons[i].Code, err)
		}
		inserted += int(tag.RowsAffected())
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("failed to close import batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit coupon import: %w", err)
	}

	r.logger.Info().
		Str("organization_id", orgID.String()).
		Int("inserted", inserted).
		Int("skipped", len(coupons)-inserted).
		Msg("coupons imported")

	return inserted, nil
}
