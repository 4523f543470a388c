package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// 支払い・配送の2軸で状態を持つ
type StatusAxis string

const (
	AxisPayment  StatusAxis = "payment"
	AxisDelivery StatusAxis = "delivery"
)

const (
	PaymentStatusPending     = "Pending"
	DeliveryStatusProcessing = "Processing"
	DeliveryStatusCancelled  = "Cancelled"

	maxStatusLen = 50
)

type Order struct {
	ID             int64              `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         int64              `gorm:"not null;index;uniqueIndex:idx_orders_user_idem" json:"user_id"`
	Items          []OrderItem        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount    decimal.Decimal    `gorm:"type:numeric(14,2);not null" json:"total_amount"`
	PaymentStatus  string             `gorm:"type:varchar(50);not null;index" json:"payment_status"`
	DeliveryStatus string             `gorm:"type:varchar(50);not null;index" json:"delivery_status"`
	StatusHistory  []OrderStatusEntry `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"-"`
	IdempotencyKey *string            `gorm:"type:varchar(255);uniqueIndex:idx_orders_user_idem" json:"-"`
	CreatedAt      time.Time          `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time          `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 注文作成。合計はスナップショット価格からここで1回だけ計算する。
func NewOrder(userID int64, items []OrderItem, now time.Time) (Order, error) {
	if len(items) == 0 {
		return Order{}, ErrEmptyOrder
	}

	total := decimal.Zero
	for _, it := range items {
		if it.Quantity < 1 {
			return Order{}, ErrInvalidQuantity
		}
		total = total.Add(it.Subtotal())
	}

	return Order{
		UserID:         userID,
		Items:          items,
		TotalAmount:    total,
		PaymentStatus:  PaymentStatusPending,
		DeliveryStatus: DeliveryStatusProcessing,
		StatusHistory: []OrderStatusEntry{
			{Axis: AxisPayment, Status: PaymentStatusPending, Timestamp: now},
			{Axis: AxisDelivery, Status: DeliveryStatusProcessing, Timestamp: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (o *Order) CurrentStatus(axis StatusAxis) string {
	if axis == AxisPayment {
		return o.PaymentStatus
	}
	return o.DeliveryStatus
}

// 状態遷移。現在と同じなら何もしない（changed=false）。
// 終端状態はないので Cancelled からも遷移できる。
func (o *Order) SetStatus(axis StatusAxis, status string, now time.Time) (OrderStatusEntry, bool, error) {
	if axis != AxisPayment && axis != AxisDelivery {
		return OrderStatusEntry{}, false, ErrInvalidStatusAxis
	}
	status = strings.TrimSpace(status)
	if status == "" || len(status) > maxStatusLen {
		return OrderStatusEntry{}, false, ErrInvalidStatus
	}
	if o.CurrentStatus(axis) == status {
		return OrderStatusEntry{}, false, nil
	}

	entry := OrderStatusEntry{OrderID: o.ID, Axis: axis, Status: status, Timestamp: now}
	o.StatusHistory = append(o.StatusHistory, entry)
	if axis == AxisPayment {
		o.PaymentStatus = status
	} else {
		o.DeliveryStatus = status
	}
	o.UpdatedAt = now
	return entry, true, nil
}

// 配送軸を Cancelled にする
func (o *Order) Cancel(now time.Time) (OrderStatusEntry, bool, error) {
	return o.SetStatus(AxisDelivery, DeliveryStatusCancelled, now)
}

// 軸ごとの履歴（受理順）
func (o *Order) History(axis StatusAxis) []OrderStatusEntry {
	out := make([]OrderStatusEntry, 0, len(o.StatusHistory))
	for _, h := range o.StatusHistory {
		if h.Axis == axis {
			out = append(out, h)
		}
	}
	return out
}
