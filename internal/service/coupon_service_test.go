package service

import (
	"testing"
	"time"

	"tillpoint/internal/coupon"
	"tillpoint/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCouponService_Create(t *testing.T) {
	limit := 3

	tests := []struct {
		name    string
		req     model.CouponRequest
		wantErr string
	}{
		{
			name: "Percentage coupon",
			req:  model.CouponRequest{Code: " save10 ", DiscountType: model.DiscountPercentage, DiscountValue: decimal.NewFromInt(10)},
		},
		{
			name: "Limited fixed coupon",
			req: model.CouponRequest{
				Code: "FIVE", DiscountType: model.DiscountFixed, DiscountValue: decimal.NewFromInt(5),
				UsageLimitEnabled: true, UsageLimit: &limit,
			},
		},
		{
			name:    "Unknown type",
			req:     model.CouponRequest{Code: "X", DiscountType: "bogo", DiscountValue: decimal.NewFromInt(1)},
			wantErr: model.ErrCodeInvalidCouponType,
		},
		{
			name:    "Negative value",
			req:     model.CouponRequest{Code: "X", DiscountType: model.DiscountFixed, DiscountValue: decimal.NewFromInt(-1)},
			wantErr: model.ErrCodeInvalidCouponValue,
		},
		{
			name:    "Missing code",
			req:     model.CouponRequest{DiscountType: model.DiscountFixed, DiscountValue: decimal.NewFromInt(1)},
			wantErr: model.ErrCodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, p := principalCtx()
			coupons := new(MockCouponRepository)
			svc := NewCouponService(coupons, zerolog.Nop())
			coupons.On("Create", mock.Anything, mock.AnythingOfType("*model.Coupon")).Return(nil)

			req := tt.req
			got, err := svc.Create(ctx, &req)

			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, model.ErrorCode(err))
				coupons.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, p.OrganizationID, got.OrganizationID)
			assert.Equal(t, model.CouponActive, got.Status)
			assert.Zero(t, got.UsageCount)
			assert.Equal(t, coupon.NormaliseCode(tt.req.Code), got.Code)
		})
	}
}

func TestCouponService_Create_DuplicateCode(t *testing.T) {
	ctx, _ := principalCtx()
	coupons := new(MockCouponRepository)
	svc := NewCouponService(coupons, zerolog.Nop())
	coupons.On("Create", mock.Anything, mock.Anything).Return(model.NewDomainError(model.ErrCodeConflict, "Coupon code already exists."))

	_, err := svc.Create(ctx, &model.CouponRequest{Code: "DUP", DiscountType: model.DiscountFixed, DiscountValue: decimal.NewFromInt(1)})

	assert.Equal(t, model.ErrCodeConflict, model.ErrorCode(err))
}

func TestCouponService_Update_PreservesUsage(t *testing.T) {
	ctx, p := principalCtx()
	coupons := new(MockCouponRepository)
	svc := NewCouponService(coupons, zerolog.Nop()).(*couponService)
	svc.now = func() time.Time { return time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC) }

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	existing := &model.Coupon{
		ID:             uuid.New(),
		OrganizationID: p.OrganizationID,
		Code:           "SAVE10",
		DiscountType:   model.DiscountPercentage,
		DiscountValue:  decimal.NewFromInt(10),
		Status:         model.CouponInactive,
		UsageCount:     4,
		CreatedAt:      created,
	}
	coupons.On("GetByID", mock.Anything, p.OrganizationID, existing.ID).Return(existing, nil)
	coupons.On("Update", mock.Anything, mock.AnythingOfType("*model.Coupon")).Return(nil)

	got, err := svc.Update(ctx, existing.ID, &model.CouponRequest{
		Code: "SAVE15", DiscountType: model.DiscountPercentage, DiscountValue: decimal.NewFromInt(15),
	})

	require.NoError(t, err)
	assert.Equal(t, existing.ID, got.ID)
	assert.Equal(t, "SAVE15", got.Code)
	assert.Equal(t, 4, got.UsageCount)
	assert.Equal(t, model.CouponInactive, got.Status)
	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, svc.now(), got.UpdatedAt)
}

func TestCouponService_Update_UsageLimit(t *testing.T) {
	tests := []struct {
		name    string
		limit   int
		wantErr bool
	}{
		{name: "Below usage count", limit: 2, wantErr: true},
		{name: "Equal to usage count", limit: 5},
		{name: "Above usage count", limit: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, p := principalCtx()
			coupons := new(MockCouponRepository)
			svc := NewCouponService(coupons, zerolog.Nop())

			existing := &model.Coupon{
				ID: uuid.New(), OrganizationID: p.OrganizationID, Code: "SAVE10",
				DiscountType: model.DiscountFixed, DiscountValue: decimal.NewFromInt(1),
				Status: model.CouponActive, UsageCount: 5,
			}
			coupons.On("GetByID", mock.Anything, p.OrganizationID, existing.ID).Return(existing, nil)
			coupons.On("Update", mock.Anything, mock.AnythingOfType("*model.Coupon")).Return(nil)

			limit := tt.limit
			got, err := svc.Update(ctx, existing.ID, &model.CouponRequest{
				Code: "SAVE10", DiscountType: model.DiscountFixed, DiscountValue: decimal.NewFromInt(1),
				UsageLimitEnabled: true, UsageLimit: &limit,
			})

			if tt.wantErr {
				assert.Equal(t, model.ErrCodeInvalidInput, model.ErrorCode(err))
				coupons.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.limit, *got.UsageLimit)
			assert.Equal(t, 5, got.UsageCount)
		})
	}
}

func TestCouponService_GetByID_NotFound(t *testing.T) {
	ctx, p := principalCtx()
	coupons := new(MockCouponRepository)
	svc := NewCouponService(coupons, zerolog.Nop())
	id := uuid.New()
	coupons.On("GetByID", mock.Anything, p.OrganizationID, id).Return(nil, nil)

	_, err := svc.GetByID(ctx, id)
	assert.ErrorIs(t, err, model.ErrCouponNotFound)

	_, err = svc.Update(ctx, id, &model.CouponRequest{Code: "A", DiscountType: model.DiscountFixed})
	assert.ErrorIs(t, err, model.ErrCouponNotFound)
	coupons.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
