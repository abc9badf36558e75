package service

import (
	"context"

	"tillpoint/internal/auth"
	"tillpoint/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

// MockSaleRepository is a mock implementation of SaleRepository.
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	// Return a MockTx interface value, not a pointer
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSaleRepository) Create(ctx context.Context, tx pgx.Tx, sale *model.Sale) error {
	args := m.Called(ctx, tx, sale)
	return args.Error(0)
}

func (m *MockSaleRepository) List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]model.Sale, error) {
	args := m.Called(ctx, orgID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Sale), args.Error(1)
}

func (m *MockSaleRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*model.Sale, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Sale), args.Error(1)
}

// MockProductRepository is a mock implementation of ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, orgID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) GetByIDsTx(ctx context.Context, tx pgx.Tx, orgID uuid.UUID, ids []uuid.UUID) ([]model.Product, error) {
	args := m.Called(ctx, tx, orgID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, p *model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, p *model.Product, stock *int) error {
	return m.Called(ctx, p, stock).Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return m.Called(ctx, orgID, id).Error(0)
}

func (m *MockProductRepository) DecrementStock(ctx context.Context, tx pgx.Tx, orgID, id uuid.UUID, qty int) error {
	return m.Called(ctx, tx, orgID, id, qty).Error(0)
}

// MockCategoryRepository is a mock implementation of CategoryRepository.
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) List(ctx context.Context, orgID uuid.UUID) ([]model.Category, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*model.Category, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryRepository) Create(ctx context.Context, c *model.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return m.Called(ctx, orgID, id).Error(0)
}

// MockCouponRepository is a mock implementation of CouponRepository.
type MockCouponRepository struct {
	mock.Mock
}

func (m *MockCouponRepository) List(ctx context.Context, orgID uuid.UUID) ([]model.Coupon, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Coupon), args.Error(1)
}

func (m *MockCouponRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*model.Coupon, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Coupon), args.Error(1)
}

func (m *MockCouponRepository) GetByCodeTx(ctx context.Context, tx pgx.Tx, orgID uuid.UUID, code string) (*model.Coupon, error) {
	args := m.Called(ctx, tx, orgID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Coupon), args.Error(1)
}

func (m *MockCouponRepository) Create(ctx context.Context, c *model.Coupon) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCouponRepository) Update(ctx context.Context, c *model.Coupon) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCouponRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return m.Called(ctx, orgID, id).Error(0)
}

func (m *MockCouponRepository) IncrementUsage(ctx context.Context, tx pgx.Tx, orgID, id uuid.UUID) error {
	return m.Called(ctx, tx, orgID, id).Error(0)
}

func (m *MockCouponRepository) Import(ctx context.Context, orgID uuid.UUID, coupons []model.Coupon) (int, error) {
	args := m.Called(ctx, orgID, coupons)
	return args.Int(0), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateWithOrganization(ctx context.Context, org *model.Organization, user *model.User) error {
	return m.Called(ctx, org, user).Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockKeyStore is a mock implementation of idempotency.Store.
type MockKeyStore struct {
	mock.Mock
}

func (m *MockKeyStore) Reserve(ctx context.Context, orgID uuid.UUID, key string) (uuid.UUID, bool, error) {
	args := m.Called(ctx, orgID, key)
	return args.Get(0).(uuid.UUID), args.Bool(1), args.Error(2)
}

func (m *MockKeyStore) Complete(ctx context.Context, orgID uuid.UUID, key string, saleID uuid.UUID) error {
	return m.Called(ctx, orgID, key, saleID).Error(0)
}

func (m *MockKeyStore) Release(ctx context.Context, orgID uuid.UUID, key string) error {
	return m.Called(ctx, orgID, key).Error(0)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }

// principalCtx returns a context carrying a fresh staff principal.
func principalCtx() (context.Context, auth.Principal) {
	p := auth.Principal{UserID: uuid.New(), OrganizationID: uuid.New(), Role: model.RoleStaff}
	return auth.WithPrincipal(context.Background(), p), p
}
