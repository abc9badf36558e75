package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"tillpoint/internal/auth"
	"tillpoint/internal/config"
	"tillpoint/internal/coupon"
	"tillpoint/internal/idempotency"
	"tillpoint/internal/metrics"
	"tillpoint/internal/model"
	"tillpoint/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// saleService implements SaleService.
type saleService struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	couponRepo  repository.CouponRepository
	keys        idempotency.Store
	cfg         config.SalesConfig
	now         func() time.Time
	newOrderID  func(time.Time) string
	logger      zerolog.Logger
}

// NewSaleService creates a new sale service. keys may be nil, in which case
// idempotency keys are ignored.
func NewSaleService(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	couponRepo repository.CouponRepository,
	keys idempotency.Store,
	cfg config.SalesConfig,
	logger zerolog.Logger,
) SaleService {
	s := &saleService{
		saleRepo:    saleRepo,
		productRepo: productRepo,
		couponRepo:  couponRepo,
		keys:        keys,
		cfg:         cfg,
		now:         time.Now,
		logger:      logger.With().Str("service", "sale").Logger(),
	}
	s.newOrderID = s.orderID
	return s
}

// orderID returns PREFIX-<unix millis>-<9 base36 chars>.
func (s *saleService) orderID(now time.Time) string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = base36[rand.IntN(len(base36))]
	}
	return s.cfg.OrderIDPrefix + "-" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + string(suffix)
}

// CreateSale validates a checkout and records it atomically.
func (s *saleService) CreateSale(ctx context.Context, req *model.SaleRequest) (sale *model.Sale, err error) {
	defer func() {
		if err != nil {
			metrics.SalesFailedTotal.WithLabelValues(model.ErrorCode(err)).Inc()
		}
	}()

	principal, err := auth.MustFromContext(ctx)
	if err != nil {
		return nil, err
	}

	productIDs, err := s.validateSaleRequest(req)
	if err != nil {
		s.logger.Debug().Err(err).Msg("sale request rejected")
		return nil, err
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	started := time.Now()

	tx, err := s.saleRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}

	// Roll back on any failure. The rollback context outlives cancellation of ctx.
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	products, err := s.productRepo.GetByIDsTx(ctx, tx, principal.OrganizationID, uniqueIDs(productIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	productMap := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		productMap[p.ID] = p
	}

	items := make([]model.SaleItem, len(req.Items))
	subtotal := decimal.Zero
	costOfGoods := decimal.Zero
	for i, line := range req.Items {
		p, ok := productMap[productIDs[i]]
		if !ok {
			err = model.NotFound("Product with ID %s not found.", line.ID)
			return nil, err
		}

		qty := decimal.NewFromInt(int64(line.Quantity))
		subtotal = subtotal.Add(p.Price.Mul(qty))
		costOfGoods = costOfGoods.Add(p.Cost.Mul(qty))

		items[i] = model.SaleItem{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  line.Quantity,
			Price:     p.Price,
			Cost:      p.Cost,
		}
	}

	now := s.now().UTC()

	discount := decimal.Zero
	var applied *model.Coupon
	var couponCode *string
	if req.CouponCode != nil && strings.TrimSpace(*req.CouponCode) != "" {
		code := coupon.NormaliseCode(*req.CouponCode)

		applied, err = s.couponRepo.GetByCodeTx(ctx, tx, principal.OrganizationID, code)
		if err != nil {
			return nil, fmt.Errorf("failed to load coupon: %w", err)
		}
		if applied == nil {
			err = model.ErrCouponNotFound
			return nil, err
		}
		if err = coupon.CheckRedeemable(applied, now); err != nil {
			s.logger.Debug().Str("coupon_code", code).Err(err).Msg("coupon not redeemable")
			return nil, err
		}
		if discount, err = coupon.CalculateDiscount(subtotal, applied.DiscountType, applied.DiscountValue); err != nil {
			return nil, err
		}
		couponCode = &code
	}

	sale = &model.Sale{
		ID:             uuid.New(),
		OrderID:        s.newOrderID(now),
		OrganizationID: principal.OrganizationID,
		CustomerID:     strings.TrimSpace(req.Customer.ID),
		Items:          items,
		Subtotal:       subtotal,
		DiscountAmount: discount,
		Total:          subtotal.Sub(discount),
		CostOfGoods:    costOfGoods,
		CouponCode:     couponCode,
		PaymentMethod:  req.PaymentMethod,
		Status:         model.SaleCompleted,
		PlacedBy:       principal.UserID,
		Notes:          req.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err = s.saleRepo.Create(ctx, tx, sale); err != nil {
		s.logger.Error().Err(err).Str("order_id", sale.OrderID).Msg("failed to create sale")
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}

	for _, item := range items {
		if err = s.productRepo.DecrementStock(ctx, tx, principal.OrganizationID, item.ProductID, item.Quantity); err != nil {
			s.logger.Warn().
				Err(err).
				Str("order_id", sale.OrderID).
				Str("product_id", item.ProductID.String()).
				Msg("failed to decrement stock")
			return nil, fmt.Errorf("failed to update stock for %s: %w", item.Name, err)
		}
	}

	if applied != nil {
		if err = s.couponRepo.IncrementUsage(ctx, tx, principal.OrganizationID, applied.ID); err != nil {
			return nil, fmt.Errorf("failed to redeem coupon %s: %w", applied.Code, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", sale.OrderID).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}

	metrics.SaleTransactionLatency.Observe(time.Since(started).Seconds())
	metrics.SalesCreatedTotal.Inc()
	if applied != nil {
		metrics.CouponRedemptionsTotal.Inc()
	}

	s.logger.Info().
		Str("order_id", sale.OrderID).
		Str("organization_id", principal.OrganizationID.String()).
		Int("item_count", len(items)).
		Str("total", sale.Total.String()).
		Msg("sale created successfully")

	return sale, nil
}

// validateSaleRequest checks everything that can be checked without storage
// and returns the parsed product ID of each line.
func (s *saleService) validateSaleRequest(req *model.SaleRequest) ([]uuid.UUID, error) {
	if req == nil || len(req.Items) == 0 {
		return nil, model.InvalidInput("Cart is empty. Add at least one item.")
	}
	if req.Customer == nil || strings.TrimSpace(req.Customer.ID) == "" {
		return nil, model.InvalidInput("Customer is required.")
	}
	if !req.PaymentMethod.Valid() {
		return nil, model.InvalidInput("Invalid payment method %q.", req.PaymentMethod)
	}

	for i, item := range req.Items {
		if strings.TrimSpace(item.ID) == "" {
			return nil, model.InvalidInput("Item %d is missing a product ID.", i+1)
		}
		if item.Quantity <= 0 {
			return nil, model.InvalidInput("Invalid quantity for product %s.", item.ID)
		}
	}

	ids := make([]uuid.UUID, len(req.Items))
	for i, item := range req.Items {
		id, err := uuid.Parse(strings.TrimSpace(item.ID))
		if err != nil {
			// Not a valid ID, so it cannot resolve to any product.
			return nil, model.NotFound("Product with ID %s not found.", item.ID)
		}
		ids[i] = id
	}

	return ids, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

const completeAttempts = 2

// CreateSaleIdempotent records a sale at most once per idempotency key.
func (s *saleService) CreateSaleIdempotent(ctx context.Context, req *model.SaleRequest) (*model.Sale, bool, error) {
	if s.keys == nil || req == nil || req.IdempotencyKey == "" {
		sale, err := s.CreateSale(ctx, req)
		return sale, false, err
	}

	principal, err := auth.MustFromContext(ctx)
	if err != nil {
		return nil, false, err
	}
	orgID := principal.OrganizationID
	key := req.IdempotencyKey

	saleID, done, err := s.keys.Reserve(ctx, orgID, key)
	if errors.Is(err, idempotency.ErrInFlight) {
		return nil, false, model.NewDomainError(model.ErrCodeConflict, "A request with this idempotency key is already in progress.")
	}
	if err != nil {
		return nil, false, err
	}

	if done {
		sale, err := s.saleRepo.GetByID(ctx, orgID, saleID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to load replayed sale: %w", err)
		}
		if sale == nil {
			return nil, false, model.NotFound("Sale %s recorded for this idempotency key no longer exists.", saleID)
		}
		metrics.SalesReplayedTotal.Inc()
		s.logger.Info().Str("order_id", sale.OrderID).Msg("sale replayed from idempotency key")
		return sale, true, nil
	}

	sale, err := s.CreateSale(ctx, req)
	if err != nil {
		if relErr := s.keys.Release(context.WithoutCancel(ctx), orgID, key); relErr != nil {
			s.logger.Error().Err(relErr).Msg("failed to release idempotency key")
		}
		return nil, false, err
	}

	// The sale is committed. If the key cannot be completed, retries are
	// rejected as in flight until the pending reservation expires.
	completeCtx := context.WithoutCancel(ctx)
	for attempt := 1; attempt <= completeAttempts; attempt++ {
		err := s.keys.Complete(completeCtx, orgID, key, sale.ID)
		if err == nil {
			break
		}
		s.logger.Error().Err(err).Int("attempt", attempt).Str("order_id", sale.OrderID).Msg("failed to record idempotency key")
	}

	return sale, false, nil
}

// ListSales retrieves sales newest first with pagination.
func (s *saleService) ListSales(ctx context.Context, limit, offset int) ([]model.Sale, error) {
	principal, err := auth.MustFromContext(ctx)
	if err != nil {
		return nil, err
	}
	limit, offset = clampPage(limit, offset)

	sales, err := s.saleRepo.List(ctx, principal.OrganizationID, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list sales")
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	return sales, nil
}

// GetSale retrieves a sale with its items.
func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	principal, err := auth.MustFromContext(ctx)
	if err != nil {
		return nil, err
	}

	sale, err := s.saleRepo.GetByID(ctx, principal.OrganizationID, id)
	if err != nil {
		s.logger.Error().Err(err).Str("sale_id", id.String()).Msg("failed to get sale")
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}
	if sale == nil {
		return nil, model.NotFound("Sale not found.")
	}
	return sale, nil
}
