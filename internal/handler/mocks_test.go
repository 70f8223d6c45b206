package handler

import (
	"context"

	"shopstream/internal/checkout"
	"shopstream/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

// MockWizard is a mock implementation of Wizard.
type MockWizard struct {
	mock.Mock
}

func (m *MockWizard) State() checkout.State {
	return m.Called().Get(0).(checkout.State)
}

func (m *MockWizard) SetShippingField(field, value string) error {
	return m.Called(field, value).Error(0)
}

func (m *MockWizard) SetPaymentField(field, value string) error {
	return m.Called(field, value).Error(0)
}

func (m *MockWizard) ApplyPromo(code string) decimal.Decimal {
	return m.Called(code).Get(0).(decimal.Decimal)
}

func (m *MockWizard) Next() (checkout.FieldErrors, error) {
	args := m.Called()
	errs, _ := args.Get(0).(checkout.FieldErrors)
	return errs, args.Error(1)
}

func (m *MockWizard) Back() error {
	return m.Called().Error(0)
}

func (m *MockWizard) Summary() model.PriceBreakdown {
	return m.Called().Get(0).(model.PriceBreakdown)
}

func (m *MockWizard) Submit(ctx context.Context) (*model.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockWizard) Order() *model.Order {
	order, _ := m.Called().Get(0).(*model.Order)
	return order
}

func (m *MockWizard) Reset() error {
	return m.Called().Error(0)
}
