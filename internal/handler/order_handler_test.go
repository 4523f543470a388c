package handler_test

import (
	"errors"
	"net/http"
	"testing"

	"uptech/internal/handler"
	"uptech/internal/repository"
	"uptech/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestOrderHandler_Create(t *testing.T) {
	a := newTestAPI()
	uc := new(OrderServiceMock)
	handler.NewOrderHandler(uc).RegisterRoutes(a.api, a.cfg, a.users())

	var rep usecase.EffectReport
	rep.Add(usecase.EffectEmail, "a@example.com", errors.New("smtp down"))

	uc.On("PlaceOrder", mock.Anything, int64(7), usecase.PlaceOrderInput{
		Items:          []usecase.PlaceOrderItem{{ProductID: 1, Quantity: 2}},
		IdempotencyKey: "key-1",
	}).Return(usecase.OrderOutput{ID: 10, UserID: 7}, rep, nil)

	body := map[string]any{"items": []map[string]int64{{"productId": 1, "quantity": 2}}}
	rec := a.do(t, http.MethodPost, "/api/user/orders", body, asUser(t, 7), withHeader(handler.HeaderIdempotencyKey, "key-1"))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "1", rec.Header().Get(handler.HeaderEffectFailures))
	assert.Equal(t, int64(10), decode[usecase.OrderOutput](t, rec).ID)
}

func TestOrderHandler_ReadsAndCancel(t *testing.T) {
	a := newTestAPI()
	uc := new(OrderServiceMock)
	handler.NewOrderHandler(uc).RegisterRoutes(a.api, a.cfg, a.users())

	uc.On("GetMyOrderDetail", mock.Anything, int64(7), int64(99)).
		Return(usecase.OrderOutput{}, usecase.NewHTTPError(http.StatusNotFound, "order not found"))
	uc.On("GetMyOrderStatus", mock.Anything, int64(7), int64(10)).
		Return(usecase.OrderStatusOutput{OrderID: 10, DeliveryStatus: "Processing"}, nil)
	uc.On("CancelMyOrder", mock.Anything, int64(7), int64(10)).
		Return(usecase.OrderOutput{ID: 10, DeliveryStatus: "Cancelled"}, usecase.EffectReport{}, nil)
	uc.On("ListMyOrders", mock.Anything, int64(7), 2, 5).Return(usecase.OrderListOutput{Page: 2, Limit: 5}, nil)

	rec := a.do(t, http.MethodGet, "/api/user/orders/99", nil, asUser(t, 7))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/user/orders/abc", nil, asUser(t, 7))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/user/orders/10/status", nil, asUser(t, 7))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Processing", decode[usecase.OrderStatusOutput](t, rec).DeliveryStatus)

	rec = a.do(t, http.MethodPut, "/api/user/orders/10/cancel", nil, asUser(t, 7))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(handler.HeaderEffectFailures))
	assert.Equal(t, "Cancelled", decode[usecase.OrderOutput](t, rec).DeliveryStatus)

	rec = a.do(t, http.MethodGet, "/api/user/orders?page=2&limit=5", nil, asUser(t, 7))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/user/orders?page=x", nil, asUser(t, 7))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminOrderHandler(t *testing.T) {
	a := newTestAPI()
	uc := new(AdminOrderServiceMock)
	handler.NewAdminOrderHandler(uc).RegisterRoutes(a.api, a.cfg, a.users())

	t.Run("user role is forbidden", func(t *testing.T) {
		rec := a.do(t, http.MethodGet, "/api/admin/orders", nil, asUser(t, 7))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		uc.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})

	t.Run("list filters", func(t *testing.T) {
		uid, oid := int64(7), int64(10)
		uc.On("List", mock.Anything, repository.AdminOrderListFilter{
			Page: 1, Limit: 50, UserID: &uid, OrderID: &oid, DeliveryStatus: "Shipped",
		}).Return(usecase.OrderListOutput{Total: 1}, nil).Once()

		rec := a.do(t, http.MethodGet, "/api/admin/orders?userId=7&orderId=10&deliveryStatus=Shipped", nil, asAdmin(t, 1))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(1), decode[usecase.OrderListOutput](t, rec).Total)
	})

	t.Run("bad filter", func(t *testing.T) {
		rec := a.do(t, http.MethodGet, "/api/admin/orders?from=yesterday", nil, asAdmin(t, 1))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid from", decode[errBody](t, rec).Error)
	})

	t.Run("update status", func(t *testing.T) {
		var rep usecase.EffectReport
		rep.Add(usecase.EffectNotification, "user:3", errors.New("x"))
		rep.Add(usecase.EffectEvent, "order.status_changed", errors.New("y"))

		uc.On("UpdateStatus", mock.Anything, int64(1), int64(10), usecase.AdminUpdateOrderStatusInput{PaymentStatus: "Paid"}).
			Return(usecase.OrderOutput{ID: 10, PaymentStatus: "Paid"}, rep, nil).Once()

		rec := a.do(t, http.MethodPut, "/api/admin/orders/10/status", map[string]string{"paymentStatus": "Paid"}, asAdmin(t, 1))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get(handler.HeaderEffectFailures))
	})

	t.Run("delete", func(t *testing.T) {
		uc.On("Delete", mock.Anything, int64(1), int64(10)).Return(usecase.EffectReport{}, nil).Once()

		rec := a.do(t, http.MethodDelete, "/api/admin/orders/10", nil, asAdmin(t, 1))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Order deleted successfully", decode[msgBody](t, rec).Message)
	})
}
