package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"shopstream/internal/model"
	"shopstream/internal/pricing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validRequest() *model.OrderRequest {
	return &model.OrderRequest{
		Items: []model.CartLine{
			{ProductID: "P001", Name: "Headphones", UnitPrice: decimal.RequireFromString("100.00"), ImageRef: "hp.jpg", Quantity: 2},
		},
		Shipping: model.ShippingInfo{
			FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Phone: "555-0100",
			Address: "12 Analytical Way", City: "London", State: "LN", ZipCode: "10001", Country: "United States",
		},
		Payment: model.PaymentInfo{
			CardNumber: "4111 1111 1111 1111", ExpiryMonth: "12", ExpiryYear: "2030",
			CVV: "123", CardName: "Ada Lovelace", SameAsShipping: true,
		},
	}
}

type orderFixture struct {
	orderRepo   *MockOrderRepository
	productRepo *MockProductRepository
	tx          *MockTx
	service     OrderService
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orderRepo:   new(MockOrderRepository),
		productRepo: new(MockProductRepository),
		tx:          new(MockTx),
	}
	svc := NewOrderService(f.orderRepo, f.productRepo, pricing.DefaultPromos, zerolog.Nop()).(*orderService)
	svc.now = func() time.Time { return time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC) }
	f.service = svc
	return f
}

func TestOrderService_CreateOrder_Success(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	var stored *model.Order
	f.productRepo.On("ValidateProductsExist", ctx, []string{"P001"}).Return(nil)
	f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil)
	f.orderRepo.On("CreateOrder", ctx, f.tx, mock.AnythingOfType("*model.Order")).
		Run(func(args mock.Arguments) { stored = args.Get(2).(*model.Order) }).
		Return(nil)
	f.orderRepo.On("CreateOrderItems", ctx, f.tx, mock.AnythingOfType("[]model.OrderItem")).Return(nil)
	f.tx.On("Commit", ctx).Return(nil)

	order, err := f.service.CreateOrder(ctx, validRequest())

	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Same(t, stored, order)
	assert.NotEqual(t, uuid.Nil, order.ID)
	assert.Equal(t, model.StatusConfirmed, order.Status)
	assert.Equal(t, "**** **** **** 1111", order.Payment.CardNumber)
	assert.Nil(t, order.PromoCode)
	assert.True(t, decimal.RequireFromString("216.00").Equal(order.Total))
	assert.True(t, decimal.RequireFromString("16.00").Equal(order.Tax))
	assert.True(t, order.ShippingCost.IsZero())
	assert.Equal(t, time.Date(2024, 1, 22, 10, 30, 0, 0, time.UTC), order.EstimatedDelivery())

	require.Len(t, order.Items, 1)
	assert.Equal(t, order.ID, order.Items[0].OrderID)
	assert.Equal(t, "Headphones", order.Items[0].Name)
	assert.Equal(t, 2, order.Items[0].Quantity)

	f.productRepo.AssertExpectations(t)
	f.orderRepo.AssertExpectations(t)
	f.tx.AssertExpectations(t)
	f.tx.AssertNotCalled(t, "Rollback", mock.Anything)
}

func TestOrderService_CreateOrder_PromoIsRepriced(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	req := validRequest()
	req.Items[0].UnitPrice = decimal.RequireFromString("20.00")
	req.Items[0].Quantity = 1
	req.Pricing.PromoCode = "welcome20"
	req.Total = decimal.RequireFromString("1.00")

	f.productRepo.On("ValidateProductsExist", ctx, []string{"P001"}).Return(nil)
	f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil)
	f.orderRepo.On("CreateOrder", ctx, f.tx, mock.Anything).Return(nil)
	f.orderRepo.On("CreateOrderItems", ctx, f.tx, mock.Anything).Return(nil)
	f.tx.On("Commit", ctx).Return(nil)

	order, err := f.service.CreateOrder(ctx, req)

	require.NoError(t, err)
	require.NotNil(t, order.PromoCode)
	assert.Equal(t, "WELCOME20", *order.PromoCode)
	assert.True(t, decimal.RequireFromString("4.00").Equal(order.Discount))
	assert.True(t, decimal.RequireFromString("27.27").Equal(order.Total))
}

func TestOrderService_CreateOrder_ValidationErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		modify    func(r *model.OrderRequest) *model.OrderRequest
		expectErr error
		checkErr  func(t *testing.T, err error)
	}{
		{
			name:      "Nil request",
			modify:    func(r *model.OrderRequest) *model.OrderRequest { return nil },
			expectErr: model.ErrEmptyOrder,
		},
		{
			name: "No items",
			modify: func(r *model.OrderRequest) *model.OrderRequest {
				r.Items = nil
				return r
			},
			expectErr: model.ErrEmptyOrder,
		},
		{
			name: "Zero quantity",
			modify: func(r *model.OrderRequest) *model.OrderRequest {
				r.Items[0].Quantity = 0
				return r
			},
			expectErr: model.ErrInvalidQuantity,
		},
		{
			name: "Missing product id",
			modify: func(r *model.OrderRequest) *model.OrderRequest {
				r.Items[0].ProductID = ""
				return r
			},
			checkErr: func(t *testing.T, err error) {
				var de *model.DomainError
				require.ErrorAs(t, err, &de)
				assert.Equal(t, model.ErrCodeMissingField, de.Code)
			},
		},
		{
			name: "Invalid shipping and payment",
			modify: func(r *model.OrderRequest) *model.OrderRequest {
				r.Shipping.Email = "nope"
				r.Payment.CVV = ""
				return r
			},
			checkErr: func(t *testing.T, err error) {
				var ve *model.ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, map[string]string{
					"email": "Please enter a valid email address",
					"cvv":   "CVV is required",
				}, ve.Fields)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture()

			order, err := f.service.CreateOrder(ctx, tt.modify(validRequest()))

			require.Error(t, err)
			assert.Nil(t, order)
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
			}
			if tt.checkErr != nil {
				tt.checkErr(t, err)
			}
			f.orderRepo.AssertNotCalled(t, "BeginTx", mock.Anything)
		})
	}
}

func TestOrderService_CreateOrder_UnknownProduct(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	f.productRepo.On("ValidateProductsExist", ctx, []string{"P001"}).Return(model.ErrProductNotFound)

	order, err := f.service.CreateOrder(ctx, validRequest())

	assert.ErrorIs(t, err, model.ErrProductNotFound)
	assert.Nil(t, order)
	f.orderRepo.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestOrderService_CreateOrder_RollsBack(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		setup func(f *orderFixture)
	}{
		{
			name: "Create order fails",
			setup: func(f *orderFixture) {
				f.orderRepo.On("CreateOrder", ctx, f.tx, mock.Anything).Return(errors.New("insert failed"))
			},
		},
		{
			name: "Create items fails",
			setup: func(f *orderFixture) {
				f.orderRepo.On("CreateOrder", ctx, f.tx, mock.Anything).Return(nil)
				f.orderRepo.On("CreateOrderItems", ctx, f.tx, mock.Anything).Return(errors.New("insert failed"))
			},
		},
		{
			name: "Commit fails",
			setup: func(f *orderFixture) {
				f.orderRepo.On("CreateOrder", ctx, f.tx, mock.Anything).Return(nil)
				f.orderRepo.On("CreateOrderItems", ctx, f.tx, mock.Anything).Return(nil)
				f.tx.On("Commit", ctx).Return(errors.New("commit failed"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture()
			f.productRepo.On("ValidateProductsExist", ctx, []string{"P001"}).Return(nil)
			f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil)
			f.tx.On("Rollback", ctx).Return(nil)
			tt.setup(f)

			order, err := f.service.CreateOrder(ctx, validRequest())

			require.Error(t, err)
			assert.Nil(t, order)
			f.tx.AssertCalled(t, "Rollback", ctx)
		})
	}
}

func TestOrderService_CreateOrder_BeginTxFails(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	f.productRepo.On("ValidateProductsExist", ctx, []string{"P001"}).Return(nil)
	f.orderRepo.On("BeginTx", ctx).Return(nil, errors.New("pool exhausted"))

	order, err := f.service.CreateOrder(ctx, validRequest())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "pool exhausted")
	assert.Nil(t, order)
}

func TestOrderService_GetByID(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	stored := &model.Order{ID: id, Status: model.StatusShipped}

	tests := []struct {
		name      string
		setup     func(repo *MockOrderRepository)
		expected  *model.Order
		expectErr error
		errText   string
	}{
		{
			name: "Found",
			setup: func(repo *MockOrderRepository) {
				repo.On("GetByID", ctx, id).Return(stored, nil)
			},
			expected: stored,
		},
		{
			name: "Not found",
			setup: func(repo *MockOrderRepository) {
				repo.On("GetByID", ctx, id).Return(nil, nil)
			},
			expectErr: model.ErrOrderNotFound,
		},
		{
			name: "Repository error",
			setup: func(repo *MockOrderRepository) {
				repo.On("GetByID", ctx, id).Return(nil, errors.New("timeout"))
			},
			errText: "failed to get order",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture()
			tt.setup(f.orderRepo)

			got, err := f.service.GetByID(ctx, id)

			switch {
			case tt.expectErr != nil:
				assert.ErrorIs(t, err, tt.expectErr)
				assert.Nil(t, got)
			case tt.errText != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errText)
				assert.Nil(t, got)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}
