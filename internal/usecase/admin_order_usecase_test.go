package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"uptech/internal/domain/model"
	"uptech/internal/infra/event"
	repo "uptech/internal/repository"
	"uptech/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// List / Get
// =====================

func TestAdminOrderUsecase_List_InvalidPage(t *testing.T) {
	f := newOrderFixture()

	out, err := f.adminUC().List(context.Background(), repo.AdminOrderListFilter{Page: 0, Limit: 20})
	assert.Equal(t, 0, len(out.Items))
	assertErrContains(t, err, "invalid page")
}

func TestAdminOrderUsecase_List_InvalidLimit(t *testing.T) {
	f := newOrderFixture()

	_, err := f.adminUC().List(context.Background(), repo.AdminOrderListFilter{Page: 1, Limit: 0})
	assertErrContains(t, err, "invalid limit")
}

func TestAdminOrderUsecase_List_Success(t *testing.T) {
	f := newOrderFixture()
	uid := int64(7)
	filter := repo.AdminOrderListFilter{Page: 1, Limit: 20, UserID: &uid, DeliveryStatus: "Processing"}

	f.orders.On("ListAdmin", mock.Anything, filter).Return([]model.Order{placedOrder(10, 7), placedOrder(11, 7)}, int64(2), nil)

	out, err := f.adminUC().List(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, out.Items, 2)
	assert.Equal(t, int64(2), out.Total)
	f.orders.AssertExpectations(t)
}

func TestAdminOrderUsecase_Get_NotFound(t *testing.T) {
	f := newOrderFixture()
	f.orders.On("FindByID", mock.Anything, int64(5)).Return(model.Order{}, repo.ErrNotFound)

	_, err := f.adminUC().Get(context.Background(), 5)
	assertStatus(t, err, http.StatusNotFound)
}

// =====================
// UpdateStatus
// =====================

func TestAdminOrderUsecase_UpdateStatus_SameStatusIsNoop(t *testing.T) {
	f := newOrderFixture()
	f.txOrders.On("FindByIDForUpdate", mock.Anything, int64(100)).Return(placedOrder(100, 7), nil)

	out, rep, err := f.adminUC().UpdateStatus(context.Background(), 1, 100, usecase.AdminUpdateOrderStatusInput{
		PaymentStatus: "Pending",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Failed())
	assert.Len(t, out.PaymentStatusHistory, 1)

	f.txOrders.AssertNotCalled(t, "AppendStatus", mock.Anything, mock.Anything, mock.Anything)
	f.audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.fx.notes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.fx.users.AssertNotCalled(t, "ListByRole", mock.Anything, mock.Anything)
}

func TestAdminOrderUsecase_UpdateStatus_NotifiesOwnerAndEveryAdmin(t *testing.T) {
	f := newOrderFixture()
	f.acceptEffects(7, 1, 2)

	f.txOrders.On("FindByIDForUpdate", mock.Anything, int64(100)).Return(placedOrder(100, 7), nil)
	f.txOrders.On("AppendStatus", mock.Anything, mock.Anything, mock.MatchedBy(func(e model.OrderStatusEntry) bool {
		return e.Axis == model.AxisPayment && e.Status == "Paid"
	})).Return(nil).Once()
	f.audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateOrderStatus &&
			l.ActorUserID == 1 &&
			l.ResourceID == 100 &&
			strings.Contains(l.BeforeJSON, `"payment_status":"Pending"`) &&
			strings.Contains(l.AfterJSON, `"payment_status":"Paid"`)
	})).Return(nil)

	out, rep, err := f.adminUC().UpdateStatus(context.Background(), 1, 100, usecase.AdminUpdateOrderStatusInput{
		PaymentStatus:  " Paid ",
		DeliveryStatus: "Processing",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Failed())
	assert.Equal(t, "Paid", out.PaymentStatus)
	require.Len(t, out.PaymentStatusHistory, 2)
	assert.Equal(t, "Paid", out.PaymentStatusHistory[1].Status)
	assert.Len(t, out.DeliveryStatusHistory, 1)

	notes := f.fx.notes.created()
	require.Len(t, notes, 3)
	got := map[int64]model.NotificationCategory{}
	for _, n := range notes {
		got[n.UserID] = n.Category
	}
	assert.Equal(t, map[int64]model.NotificationCategory{
		7: model.CategoryOrderUpdate,
		1: model.CategoryAdminActivity,
		2: model.CategoryAdminActivity,
	}, got)

	f.fx.mailer.AssertNumberOfCalls(t, "Send", 1)
	f.fx.events.AssertCalled(t, "PublishOrderEvent", mock.Anything, mock.MatchedBy(func(ev event.OrderEvent) bool {
		return ev.Type == event.OrderStatusChanged && ev.Axis == "payment" && ev.Status == "Paid"
	}))
	f.txOrders.AssertExpectations(t)
	f.audit.AssertExpectations(t)
}

func TestAdminOrderUsecase_UpdateStatus_CancelledIsNotTerminal(t *testing.T) {
	f := newOrderFixture()
	f.acceptEffects(7)

	o := placedOrder(100, 7)
	_, _, _ = o.Cancel(o.CreatedAt)
	f.txOrders.On("FindByIDForUpdate", mock.Anything, int64(100)).Return(o, nil)
	f.txOrders.On("AppendStatus", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	out, _, err := f.adminUC().UpdateStatus(context.Background(), 1, 100, usecase.AdminUpdateOrderStatusInput{
		DeliveryStatus: "Processing",
	})
	require.NoError(t, err)
	assert.Equal(t, "Processing", out.DeliveryStatus)
	assert.Len(t, out.DeliveryStatusHistory, 3)
}

func TestAdminOrderUsecase_UpdateStatus_Validation(t *testing.T) {
	ctx := context.Background()

	t.Run("both empty", func(t *testing.T) {
		f := newOrderFixture()
		_, _, err := f.adminUC().UpdateStatus(ctx, 1, 100, usecase.AdminUpdateOrderStatusInput{PaymentStatus: "  "})
		assertStatus(t, err, http.StatusBadRequest)
	})

	t.Run("too long", func(t *testing.T) {
		f := newOrderFixture()
		f.txOrders.On("FindByIDForUpdate", mock.Anything, int64(100)).Return(placedOrder(100, 7), nil)

		_, _, err := f.adminUC().UpdateStatus(ctx, 1, 100, usecase.AdminUpdateOrderStatusInput{
			DeliveryStatus: strings.Repeat("x", 51),
		})
		assertErrContains(t, err, "invalid status")
	})

	t.Run("not found", func(t *testing.T) {
		f := newOrderFixture()
		f.txOrders.On("FindByIDForUpdate", mock.Anything, int64(100)).Return(model.Order{}, repo.ErrNotFound)

		_, _, err := f.adminUC().UpdateStatus(ctx, 1, 100, usecase.AdminUpdateOrderStatusInput{PaymentStatus: "Paid"})
		assertStatus(t, err, http.StatusNotFound)
	})

	t.Run("append fails", func(t *testing.T) {
		f := newOrderFixture()
		f.txOrders.On("FindByIDForUpdate", mock.Anything, int64(100)).Return(placedOrder(100, 7), nil)
		f.txOrders.On("AppendStatus", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("boom"))

		_, _, err := f.adminUC().UpdateStatus(ctx, 1, 100, usecase.AdminUpdateOrderStatusInput{PaymentStatus: "Paid"})
		assertErrContains(t, err, "db error")
		f.fx.notes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestAdminOrderUsecase_UpdateStatus_AdminLookupFailureIsReported(t *testing.T) {
	f := newOrderFixture()
	f.fx.notes.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.fx.mailer.On("Send", mock.Anything, mock.Anything).Return(nil)
	f.fx.events.On("PublishOrderEvent", mock.Anything, mock.Anything).Return(nil)
	f.fx.users.On("FindByID", mock.Anything, int64(7)).Return(&model.User{ID: 7, Email: "ann@example.com"}, nil)
	f.fx.users.On("ListByRole", mock.Anything, model.RoleAdmin).Return(nil, errors.New("db down"))

	f.txOrders.On("FindByIDForUpdate", mock.Anything, int64(100)).Return(placedOrder(100, 7), nil)
	f.txOrders.On("AppendStatus", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	out, rep, err := f.adminUC().UpdateStatus(context.Background(), 1, 100, usecase.AdminUpdateOrderStatusInput{PaymentStatus: "Paid"})
	require.NoError(t, err)
	assert.Equal(t, "Paid", out.PaymentStatus)
	require.Equal(t, 1, rep.Failed())
	assert.Equal(t, "admins", rep.Failures[0].Target)
}

// =====================
// Delete
// =====================

func TestAdminOrderUsecase_Delete(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	f.acceptEffects(7, 1)

	f.txOrders.On("FindByIDForUpdate", mock.Anything, int64(100)).Return(placedOrder(100, 7), nil)
	f.txOrders.On("Delete", mock.Anything, int64(100)).Return(nil)
	f.audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionDeleteOrder && l.ResourceID == 100
	})).Return(nil)

	rep, err := f.adminUC().Delete(ctx, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Failed())

	notes := f.fx.notes.created()
	require.Len(t, notes, 2)
	assert.Equal(t, "Your order with ID 100 has been deleted by the admin.", notes[0].Message)
	assert.Equal(t, int64(1), notes[1].UserID)
	f.fx.events.AssertCalled(t, "PublishOrderEvent", mock.Anything, mock.MatchedBy(func(ev event.OrderEvent) bool {
		return ev.Type == event.OrderDeleted && ev.OrderID == 100
	}))

	// 削除後は見つからない。通知は消えない
	f.orders.On("FindByID", mock.Anything, int64(100)).Return(model.Order{}, repo.ErrNotFound)
	_, err = f.adminUC().Get(ctx, 100)
	assertStatus(t, err, http.StatusNotFound)
	f.fx.notes.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminOrderUsecase_Delete_NotFound(t *testing.T) {
	f := newOrderFixture()
	f.txOrders.On("FindByIDForUpdate", mock.Anything, int64(100)).Return(model.Order{}, repo.ErrNotFound)

	_, err := f.adminUC().Delete(context.Background(), 1, 100)
	assertStatus(t, err, http.StatusNotFound)
	f.audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestParseDateTimeRFC3339(t *testing.T) {
	ts, ok := usecase.ParseDateTimeRFC3339("2024-05-01T10:00:00Z")
	require.True(t, ok)
	assert.Equal(t, 2024, ts.Year())

	_, ok = usecase.ParseDateTimeRFC3339("2024-05-01")
	assert.False(t, ok)
	_, ok = usecase.ParseDateTimeRFC3339("")
	assert.False(t, ok)
}
