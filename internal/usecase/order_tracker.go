package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"uptech/internal/domain/model"
	"uptech/internal/infra/event"
	repo "uptech/internal/repository"

	"github.com/shopspring/decimal"
)

type OrderItemOutput struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"product_name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type StatusEntryOutput struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type OrderOutput struct {
	ID                    int64               `json:"id"`
	UserID                int64               `json:"user_id"`
	Items                 []OrderItemOutput   `json:"items"`
	TotalAmount           decimal.Decimal     `json:"total_amount"`
	PaymentStatus         string              `json:"payment_status"`
	DeliveryStatus        string              `json:"delivery_status"`
	PaymentStatusHistory  []StatusEntryOutput `json:"payment_status_history"`
	DeliveryStatusHistory []StatusEntryOutput `json:"delivery_status_history"`
	CreatedAt             time.Time           `json:"created_at"`
	UpdatedAt             time.Time           `json:"updated_at"`
}

type OrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// 軸ごとの変更要求
type statusChange struct {
	Axis   model.StatusAxis
	Status string
}

// 状態遷移と通知の共通処理（ユーザーのキャンセル・管理者の更新で共有）
type orderTracker struct {
	tx       repo.TransactionManager
	notifier *Notifier
	now      func() time.Time
}

// 行ロックを取って遷移を適用する。
// ownerID > 0 なら本人の注文以外は404。actorAdminID > 0 なら監査ログを残す。
func (t *orderTracker) transition(
	ctx context.Context,
	orderID int64,
	ownerID int64,
	actorAdminID int64,
	changes []statusChange,
) (model.Order, []model.OrderStatusEntry, error) {
	var (
		order    model.Order
		accepted []model.OrderStatusEntry
	)

	err := t.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		// 他人の注文は「存在しない扱い」
		if ownerID > 0 && o.UserID != ownerID {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}

		before := statusSnapshot(o)
		now := t.now()
		for _, ch := range changes {
			entry, changed, err := o.SetStatus(ch.Axis, ch.Status, now)
			if err != nil {
				return NewHTTPError(http.StatusBadRequest, "invalid status")
			}
			if !changed {
				continue
			}
			if err := r.Orders().AppendStatus(ctx, o, entry); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			accepted = append(accepted, entry)
		}

		if actorAdminID > 0 && len(accepted) > 0 {
			if err := recordAudit(ctx, r.AuditLogs(), auditEntry{
				Actor:    actorAdminID,
				Action:   model.AuditActionUpdateOrderStatus,
				Resource: model.AuditResourceOrder,
				ID:       o.ID,
				Before:   before,
				After:    statusSnapshot(o),
			}, now); err != nil {
				return err
			}
		}

		order = o
		return nil
	})
	if err != nil {
		return model.Order{}, nil, err
	}
	return order, accepted, nil
}

// 受理された遷移ごとに: 本人へ orderUpdate、管理者全員へ adminActivity、本人へメール、イベント
func (t *orderTracker) fanOutStatus(ctx context.Context, o model.Order, accepted []model.OrderStatusEntry) EffectReport {
	var rep EffectReport
	for _, e := range accepted {
		t.notifier.Notify(ctx, &rep, o.UserID, model.NotificationTypeOrder, model.CategoryOrderUpdate,
			fmt.Sprintf("Your order %d %s status has been updated to %s.", o.ID, e.Axis, e.Status))
		t.notifier.NotifyAdmins(ctx, &rep,
			fmt.Sprintf("Order %d %s status updated to %s.", o.ID, e.Axis, e.Status))

		entry := e
		t.notifier.EmailUser(ctx, &rep, o.UserID, "Order Status Update - UpTech", "orderStatusUpdate", func(u *model.User) any {
			return map[string]any{
				"Name":    u.FirstName,
				"OrderID": o.ID,
				"Axis":    string(entry.Axis),
				"Status":  entry.Status,
			}
		})

		t.notifier.Publish(ctx, &rep, event.OrderEvent{
			Type:       event.OrderStatusChanged,
			OrderID:    o.ID,
			UserID:     o.UserID,
			Axis:       string(e.Axis),
			Status:     e.Status,
			OccurredAt: e.Timestamp,
		})
	}
	return rep
}

func statusSnapshot(o model.Order) map[string]string {
	return map[string]string{
		"payment_status":  o.PaymentStatus,
		"delivery_status": o.DeliveryStatus,
	}
}

func toOrderOutput(o model.Order) OrderOutput {
	items := make([]OrderItemOutput, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			UnitPrice: it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal(),
		})
	}
	return OrderOutput{
		ID:                    o.ID,
		UserID:                o.UserID,
		Items:                 items,
		TotalAmount:           o.TotalAmount,
		PaymentStatus:         o.PaymentStatus,
		DeliveryStatus:        o.DeliveryStatus,
		PaymentStatusHistory:  toHistoryOutput(o.History(model.AxisPayment)),
		DeliveryStatusHistory: toHistoryOutput(o.History(model.AxisDelivery)),
		CreatedAt:             o.CreatedAt,
		UpdatedAt:             o.UpdatedAt,
	}
}

func toHistoryOutput(entries []model.OrderStatusEntry) []StatusEntryOutput {
	out := make([]StatusEntryOutput, 0, len(entries))
	for _, e := range entries {
		out = append(out, StatusEntryOutput{Status: e.Status, Timestamp: e.Timestamp})
	}
	return out
}

func toOrderOutputs(orders []model.Order) []OrderOutput {
	outs := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		outs = append(outs, toOrderOutput(o))
	}
	return outs
}
