package handler_test

import (
	"context"

	"uptech/internal/domain/model"
	"uptech/internal/infra/payment"
	"uptech/internal/repository"
	"uptech/internal/usecase"

	"github.com/stretchr/testify/mock"
)

type CartServiceMock struct{ mock.Mock }

func (m *CartServiceMock) GetCart(ctx context.Context, userID int64) (usecase.CartResponse, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(usecase.CartResponse), args.Error(1)
}

func (m *CartServiceMock) PreviewLines(ctx context.Context, lines []model.CartLine) (usecase.CartResponse, error) {
	args := m.Called(ctx, lines)
	return args.Get(0).(usecase.CartResponse), args.Error(1)
}

func (m *CartServiceMock) AddItem(ctx context.Context, userID int64, in usecase.AddCartInput) (usecase.CartResponse, error) {
	args := m.Called(ctx, userID, in)
	return args.Get(0).(usecase.CartResponse), args.Error(1)
}

func (m *CartServiceMock) UpdateItem(ctx context.Context, userID int64, in usecase.UpdateCartItemInput) (usecase.CartResponse, error) {
	args := m.Called(ctx, userID, in)
	return args.Get(0).(usecase.CartResponse), args.Error(1)
}

func (m *CartServiceMock) RemoveItem(ctx context.Context, userID int64, productID int64) (usecase.CartResponse, error) {
	args := m.Called(ctx, userID, productID)
	return args.Get(0).(usecase.CartResponse), args.Error(1)
}

func (m *CartServiceMock) Sync(ctx context.Context, userID int64, lines []model.CartLine) (usecase.CartResponse, error) {
	args := m.Called(ctx, userID, lines)
	return args.Get(0).(usecase.CartResponse), args.Error(1)
}

type OrderServiceMock struct{ mock.Mock }

func (m *OrderServiceMock) PlaceOrder(ctx context.Context, userID int64, in usecase.PlaceOrderInput) (usecase.OrderOutput, usecase.EffectReport, error) {
	args := m.Called(ctx, userID, in)
	return args.Get(0).(usecase.OrderOutput), args.Get(1).(usecase.EffectReport), args.Error(2)
}

func (m *OrderServiceMock) ListMyOrders(ctx context.Context, userID int64, page, limit int) (usecase.OrderListOutput, error) {
	args := m.Called(ctx, userID, page, limit)
	return args.Get(0).(usecase.OrderListOutput), args.Error(1)
}

func (m *OrderServiceMock) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (usecase.OrderOutput, error) {
	args := m.Called(ctx, userID, orderID)
	return args.Get(0).(usecase.OrderOutput), args.Error(1)
}

func (m *OrderServiceMock) GetMyOrderStatus(ctx context.Context, userID int64, orderID int64) (usecase.OrderStatusOutput, error) {
	args := m.Called(ctx, userID, orderID)
	return args.Get(0).(usecase.OrderStatusOutput), args.Error(1)
}

func (m *OrderServiceMock) CancelMyOrder(ctx context.Context, userID int64, orderID int64) (usecase.OrderOutput, usecase.EffectReport, error) {
	args := m.Called(ctx, userID, orderID)
	return args.Get(0).(usecase.OrderOutput), args.Get(1).(usecase.EffectReport), args.Error(2)
}

type AdminOrderServiceMock struct{ mock.Mock }

func (m *AdminOrderServiceMock) List(ctx context.Context, f repository.AdminOrderListFilter) (usecase.OrderListOutput, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(usecase.OrderListOutput), args.Error(1)
}

func (m *AdminOrderServiceMock) Get(ctx context.Context, orderID int64) (usecase.OrderOutput, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(usecase.OrderOutput), args.Error(1)
}

func (m *AdminOrderServiceMock) UpdateStatus(ctx context.Context, actor int64, orderID int64, in usecase.AdminUpdateOrderStatusInput) (usecase.OrderOutput, usecase.EffectReport, error) {
	args := m.Called(ctx, actor, orderID, in)
	return args.Get(0).(usecase.OrderOutput), args.Get(1).(usecase.EffectReport), args.Error(2)
}

func (m *AdminOrderServiceMock) Delete(ctx context.Context, actor int64, orderID int64) (usecase.EffectReport, error) {
	args := m.Called(ctx, actor, orderID)
	return args.Get(0).(usecase.EffectReport), args.Error(1)
}

type AuthServiceMock struct{ mock.Mock }

func (m *AuthServiceMock) Register(ctx context.Context, in usecase.RegisterInput) (usecase.UserDTO, usecase.EffectReport, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(usecase.UserDTO), args.Get(1).(usecase.EffectReport), args.Error(2)
}

func (m *AuthServiceMock) VerifyEmail(ctx context.Context, userID int64, token string) (usecase.EffectReport, error) {
	args := m.Called(ctx, userID, token)
	return args.Get(0).(usecase.EffectReport), args.Error(1)
}

func (m *AuthServiceMock) VerifyPhone(ctx context.Context, email string, code string) error {
	return m.Called(ctx, email, code).Error(0)
}

func (m *AuthServiceMock) Login(ctx context.Context, email string, password string) (usecase.LoginResult, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(usecase.LoginResult), args.Error(1)
}

func (m *AuthServiceMock) RequestPasswordReset(ctx context.Context, email string) (usecase.EffectReport, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(usecase.EffectReport), args.Error(1)
}

func (m *AuthServiceMock) ResetPassword(ctx context.Context, token string, newPassword string) (usecase.EffectReport, error) {
	args := m.Called(ctx, token, newPassword)
	return args.Get(0).(usecase.EffectReport), args.Error(1)
}

type ProductReaderMock struct{ mock.Mock }

func (m *ProductReaderMock) ListPublicProducts(ctx context.Context, in usecase.ListProductsInput) (usecase.ProductListOutput, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(usecase.ProductListOutput), args.Error(1)
}

func (m *ProductReaderMock) GetProductDetail(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Product), args.Error(1)
}

type PaymentServiceMock struct{ mock.Mock }

func (m *PaymentServiceMock) Checkout(ctx context.Context, items []payment.Item, currency string) (string, error) {
	args := m.Called(ctx, items, currency)
	return args.String(0), args.Error(1)
}
