package repository

import (
	"context"
	"time"

	"uptech/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page           int
	Limit          int
	OrderID        *int64
	UserID         *int64
	PaymentStatus  string
	DeliveryStatus string
	From           *time.Time
	To             *time.Time
}

type OrderRepository interface {
	// 明細・履歴込み
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)

	// 明細・初期履歴も一緒に作る
	Create(ctx context.Context, order *model.Order) error

	// 現在ステータス列の更新と履歴1件の追記
	AppendStatus(ctx context.Context, order model.Order, entry model.OrderStatusEntry) error

	// 物理削除
	Delete(ctx context.Context, orderID int64) error

	//検索（同じキーなら同じ結果を返す）
	FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error)
	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
}
