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

const saleColumns = `id, organization_id, order_id, customer_id, subtotal, discount_amount, total, cost_of_goods,
	coupon_code, payment_method, status, placed_by, notes, created_at, updated_at`

// saleRepository implements the SaleRepository interface using PostgreSQL.
type saleRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewSaleRepository creates a new PostgreSQL-backed sale repository.
func NewSaleRepository(pool *pgxpool.Pool, logger zerolog.Logger) SaleRepository {
	return &saleRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "sale").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *saleRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Create inserts a sale and its items within the provided transaction.
func (r *saleRepository) Create(ctx context.Context, tx pgx.Tx, sale *model.Sale) error {
	query := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := tx.Exec(ctx, query,
		sale.ID, sale.OrganizationID, sale.OrderID, sale.CustomerID,
		sale.Subtotal, sale.DiscountAmount, sale.Total, sale.CostOfGoods,
		sale.CouponCode, sale.PaymentMethod, sale.Status, sale.PlacedBy, sale.Notes,
		sale.CreatedAt, sale.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Warn().Str("order_id", sale.OrderID).Msg("order ID collision")
			return model.NewDomainError(model.ErrCodeConflict, fmt.Sprintf("Order %s already exists.", sale.OrderID))
		}
		r.logger.Error().
			Err(err).
			Str("order_id", sale.OrderID).
			Msg("failed to create sale")
		return fmt.Errorf("failed to create sale: %w", err)
	}

	if len(sale.Items) == 0 {
		return nil
	}

	itemQuery := `
		INSERT INTO sale_items (sale_id, line_no, product_id, name, quantity, price, cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	batch := &pgx.Batch{}
	for i, item := range sale.Items {
		batch.Queue(itemQuery, sale.ID, i, item.ProductID, item.Name, item.Quantity, item.Price, item.Cost)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(sale.Items); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", sale.OrderID).
				Str("product_id", sale.Items[i].ProductID.String()).
				Msg("failed to create sale item")
			return fmt.Errorf("failed to create sale item: %w", err)
		}
	}

	r.logger.Debug().
		Str("order_id", sale.OrderID).
		Int("items", len(sale.Items)).
		Msg("sale created successfully")

	return nil
}

func scanSale(row pgx.Row, s *model.Sale) error {
	return row.Scan(
		&s.ID,
		&s.OrganizationID,
		&s.OrderID,
		&s.CustomerID,
		&s.Subtotal,
		&s.DiscountAmount,
		&s.Total,
		&s.CostOfGoods,
		&s.CouponCode,
		&s.PaymentMethod,
		&s.Status,
		&s.PlacedBy,
		&s.Notes,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
}

// List retrieves sales newest first, with their items.
func (r *saleRepository) List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]model.Sale, error) {
	query := `
		SELECT ` + saleColumns + `
		FROM sales
		WHERE organization_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, orgID, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query sales")
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	sales := []model.Sale{}
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var s model.Sale
		if err := scanSale(rows, &s); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan sale row")
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		s.Items = []model.SaleItem{}
		index[s.ID] = len(sales)
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales: %w", err)
	}
	rows.Close()

	if len(sales) == 0 {
		return sales, nil
	}

	ids := make([]uuid.UUID, len(sales))
	for i, s := range sales {
		ids[i] = s.ID
	}

	err = r.queryItems(ctx, `WHERE sale_id = ANY($1::uuid[])`, uuidStrings(ids), func(saleID uuid.UUID, item model.SaleItem) {
		i := index[saleID]
		sales[i].Items = append(sales[i].Items, item)
	})
	if err != nil {
		return nil, err
	}

	return sales, nil
}

// GetByID retrieves a sale by its ID along with its items.
func (r *saleRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*model.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE organization_id = $1 AND id = $2`

	var s model.Sale
	if err := scanSale(r.pool.QueryRow(ctx, query, orgID, id), &s); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("sale_id", id.String()).Msg("sale not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("sale_id", id.String()).Msg("failed to query sale")
		return nil, fmt.Errorf("failed to query sale: %w", err)
	}

	s.Items = []model.SaleItem{}
	err := r.queryItems(ctx, `WHERE sale_id = $1`, id, func(_ uuid.UUID, item model.SaleItem) {
		s.Items = append(s.Items, item)
	})
	if err != nil {
		return nil, err
	}

	return &s, nil
}

func (r *saleRepository) queryItems(ctx context.Context, where string, arg any, fn func(uuid.UUID, model.SaleItem)) error {
	query := `
		SELECT sale_id, product_id, name, quantity, price, cost
		FROM sale_items
		` + where + `
		ORDER BY sale_id, line_no
	`

	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query sale items")
		return fmt.Errorf("failed to query sale items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var saleID uuid.UUID
		var item model.SaleItem
		if err := rows.Scan(&saleID, &item.ProductID, &item.Name, &item.Quantity, &item.Price, &item.Cost); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan sale item row")
			return fmt.Errorf("failed to scan sale item: %w", err)
		}
		fn(saleID, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating sale item rows")
		return fmt.Errorf("error iterating sale items: %w", err)
	}

	return nil
}
