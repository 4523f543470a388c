package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"uptech/internal/domain/model"
	"uptech/internal/infra/event"
	repo "uptech/internal/repository"
)

type AdminOrderUsecase struct {
	tx      repo.TransactionManager
	orders  repo.OrderRepository
	tracker *orderTracker
}

func NewAdminOrderUsecase(tx repo.TransactionManager, orders repo.OrderRepository, notifier *Notifier) *AdminOrderUsecase {
	return &AdminOrderUsecase{
		tx:      tx,
		orders:  orders,
		tracker: &orderTracker{tx: tx, notifier: notifier, now: time.Now},
	}
}

// 空文字の軸は変更しない
type AdminUpdateOrderStatusInput struct {
	PaymentStatus  string
	DeliveryStatus string
}

// 注文一覧（userId / orderId / 状態で絞り込み）
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) (OrderListOutput, error) {
	// page/limitの最低限チェック
	if f.Page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	orders, total, err := u.orders.ListAdmin(ctx, f)
	if err != nil {
		return OrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return OrderListOutput{Items: toOrderOutputs(orders), Total: total, Page: f.Page, Limit: f.Limit}, nil
}

func (u *AdminOrderUsecase) Get(ctx context.Context, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return OrderOutput{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toOrderOutput(o), nil
}

// ステータス更新。現在と同じ軸は何もしない（履歴・通知なし）。
// 終端状態はないので Cancelled からも戻せる。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminUserID int64, orderID int64, in AdminUpdateOrderStatusInput) (OrderOutput, EffectReport, error) {
	if actorAdminUserID <= 0 {
		return OrderOutput{}, EffectReport{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, EffectReport{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var changes []statusChange
	if s := strings.TrimSpace(in.PaymentStatus); s != "" {
		changes = append(changes, statusChange{Axis: model.AxisPayment, Status: s})
	}
	if s := strings.TrimSpace(in.DeliveryStatus); s != "" {
		changes = append(changes, statusChange{Axis: model.AxisDelivery, Status: s})
	}
	if len(changes) == 0 {
		return OrderOutput{}, EffectReport{}, NewHTTPError(http.StatusBadRequest, "payment_status or delivery_status required")
	}

	o, accepted, err := u.tracker.transition(ctx, orderID, 0, actorAdminUserID, changes)
	if err != nil {
		return OrderOutput{}, EffectReport{}, err
	}

	rep := u.tracker.fanOutStatus(ctx, o, accepted)
	return toOrderOutput(o), rep, nil
}

// 物理削除。通知は注文とは別に残る。
func (u *AdminOrderUsecase) Delete(ctx context.Context, actorAdminUserID int64, orderID int64) (EffectReport, error) {
	if actorAdminUserID <= 0 {
		return EffectReport{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return EffectReport{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var deleted model.Order
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.Orders().Delete(ctx, orderID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "order not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := recordAudit(ctx, r.AuditLogs(), auditEntry{
			Actor:    actorAdminUserID,
			Action:   model.AuditActionDeleteOrder,
			Resource: model.AuditResourceOrder,
			ID:       orderID,
			Before:   statusSnapshot(o),
		}, u.tracker.now()); err != nil {
			return err
		}

		deleted = o
		return nil
	})
	if err != nil {
		return EffectReport{}, err
	}

	var rep EffectReport
	n := u.tracker.notifier
	n.Notify(ctx, &rep, deleted.UserID, model.NotificationTypeOrder, model.CategoryOrderUpdate,
		fmt.Sprintf("Your order with ID %d has been deleted by the admin.", deleted.ID))
	n.NotifyAdmins(ctx, &rep, fmt.Sprintf("Order with ID %d has been deleted.", deleted.ID))
	n.Publish(ctx, &rep, event.OrderEvent{
		Type:       event.OrderDeleted,
		OrderID:    deleted.ID,
		UserID:     deleted.UserID,
		OccurredAt: u.tracker.now(),
	})
	return rep, nil
}

// 期間パラメータ（RFC3339）。handlerで使う
func ParseDateTimeRFC3339(s string) (*time.Time, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, false
	}
	return &t, true
}
