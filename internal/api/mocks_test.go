package api

import (
	"context"
	"time"

	"dscommerce-be/internal/auth"
	"dscommerce-be/internal/category"
	"dscommerce-be/internal/order"
	"dscommerce-be/internal/pagination"
	"dscommerce-be/internal/product"

	"github.com/stretchr/testify/mock"
)

type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) FindAll(ctx context.Context) ([]category.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]category.Category), args.Error(1)
}

func (m *MockCategoryService) Resolve(ctx context.Context, ids []int64) ([]category.Category, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]category.Category), args.Error(1)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) FindByID(ctx context.Context, id int64) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) FindAll(ctx context.Context, opts product.ListOptions) (pagination.Page[product.Product], error) {
	args := m.Called(ctx, opts)
	return args.Get(0).(pagination.Page[product.Product]), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, p auth.Principal, input product.Input) (*product.Product, error) {
	args := m.Called(ctx, p, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, p auth.Principal, id int64, input product.Input) (*product.Product, error) {
	args := m.Called(ctx, p, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, p auth.Principal, id int64) error {
	args := m.Called(ctx, p, id)
	return args.Error(0)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) FindByID(ctx context.Context, p auth.Principal, id int64) (*order.Order, error) {
	args := m.Called(ctx, p, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) Create(ctx context.Context, p auth.Principal, input order.Input) (*order.Order, error) {
	args := m.Called(ctx, p, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) ConfirmPayment(ctx context.Context, id int64, moment time.Time) (*order.Order, error) {
	args := m.Called(ctx, id, moment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) Cancel(ctx context.Context, id int64) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}
