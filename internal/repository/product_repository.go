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

const productColumns = `id, organization_id, category_id, name, sku, supplier, description, price, cost, stock, created_at, updated_at`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row pgx.Row, p *model.Product) error {
	return row.Scan(
		&p.ID,
		&p.OrganizationID,
		&p.CategoryID,
		&p.Name,
		&p.SKU,
		&p.Supplier,
		&p.Description,
		&p.Price,
		&p.Cost,
		&p.Stock,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

func (r *productRepository) collect(rows pgx.Rows) ([]model.Product, error) {
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// List retrieves products ordered by name with pagination support.
func (r *productRepository) List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE organization_id = $1
		ORDER BY name, id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, orgID, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	return r.collect(rows)
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE organization_id = $1 AND id = $2
	`

	var p model.Product
	err := scanProduct(r.pool.QueryRow(ctx, query, orgID, id), &p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

// GetByIDsTx retrieves multiple products by their IDs within the provided transaction.
func (r *productRepository) GetByIDsTx(ctx context.Context, tx pgx.Tx, orgID uuid.UUID, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE organization_id = $1 AND id = ANY($2::uuid[])
	`

	rows, err := tx.Query(ctx, query, orgID, uuidStrings(ids))
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products by IDs: %w", err)
	}

	return r.collect(rows)
}

// Create inserts a new product.
func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.OrganizationID, p.CategoryID, p.Name, p.SKU, p.Supplier, p.Description,
		p.Price, p.Cost, p.Stock, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.NewDomainError(model.ErrCodeConflict, fmt.Sprintf("Product with SKU %s already exists.", p.SKU))
		}
		r.logger.Error().Err(err).Str("product_id", p.ID.String()).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update overwrites a product's mutable fields.
func (r *productRepository) Update(ctx context.Context, p *model.Product, stock *int) error {
	// Stock is only written when the caller sets it; sales decrement it concurrently.
	query := `
		UPDATE products
		SET category_id = $3, name = $4, sku = $5, supplier = $6, description = $7,
		    price = $8, cost = $9, stock = COALESCE($10, stock), updated_at = $11
		WHERE organization_id = $1 AND id = $2
		RETURNING stock
	`

	err := r.pool.QueryRow(ctx, query,
		p.OrganizationID, p.ID, p.CategoryID, p.Name, p.SKU, p.Supplier, p.Description,
		p.Price, p.Cost, stock, p.UpdatedAt,
	).Scan(&p.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.NotFound("Product not found.")
		}
		if isUniqueViolation(err) {
			return model.NewDomainError(model.ErrCodeConflict, fmt.Sprintf("Product with SKU %s already exists.", p.SKU))
		}
		r.logger.Error().Err(err).Str("product_id", p.ID.String()).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}

	return nil
}

// Delete removes a product.
func (r *productRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE organization_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.ErrProductInUse
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NotFound("Product not found.")
	}

	return nil
}

// DecrementStock atomically subtracts qty from a product's stock.
func (r *productRepository) DecrementStock(ctx context.Context, tx pgx.Tx, orgID, id uuid.UUID, qty int) error {
	query := `
		UPDATE products
		SET stock = stock - $3, updated_at = NOW()
		WHERE organization_id = $1 AND id = $2 AND stock >= $3
	`

	tag, err := tx.Exec(ctx, query, orgID, id, qty)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("product_id", id.String()).
			Int("quantity", qty).
			Msg("failed to decrement stock")
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Warn().
			Str("product_id", id.String()).
			Int("quantity", qty).
			Msg("insufficient stock")
		return model.NewDomainError(model.ErrCodeInsufficientStock, fmt.Sprintf("Insufficient stock for product %s.", id))
	}

	return nil
}
