package repository

import (
	"context"
	"errors"

	"uptech/internal/domain/model"
	repo "uptech/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

// 明細・履歴は受理順
func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") })
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	return r.find(r.db.WithContext(ctx), orderID)
}

// 行ロック付き。ステータス更新を注文ごとに直列化する
func (r *OrderGormRepository) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), orderID)
}

func (r *OrderGormRepository) find(q *gorm.DB, orderID int64) (model.Order, error) {
	var o model.Order
	err := withDetails(q).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	uid := userID
	return r.list(ctx, repo.AdminOrderListFilter{Page: page, Limit: limit, UserID: &uid})
}

// 注文・明細・初期履歴を1回で作る（gormのassociation保存）
func (r *OrderGormRepository) Create(ctx context.Context, order *model.Order) error {
	err := r.db.WithContext(ctx).Create(order).Error
	return mapDuplicate(err)
}

func (r *OrderGormRepository) AppendStatus(ctx context.Context, order model.Order, entry model.OrderStatusEntry) error {
	column := "delivery_status"
	if entry.Axis == model.AxisPayment {
		column = "payment_status"
	}

	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			column:       entry.Status,
			"updated_at": entry.Timestamp,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}

	entry.ID = 0
	entry.OrderID = order.ID
	return r.db.WithContext(ctx).Create(&entry).Error
}

// 明細・履歴はFKのCASCADEで消える
func (r *OrderGormRepository) Delete(ctx context.Context, orderID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Order{}, orderID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *OrderGormRepository) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error) {
	var o model.Order
	err := withDetails(r.db.WithContext(ctx)).
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		First(&o).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, false, nil
	}
	if err != nil {
		return model.Order{}, false, err
	}
	return o, true, nil
}

func (r *OrderGormRepository) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}
	return r.list(ctx, f)
}

// 新しい順。totalは絞り込み後の件数
func (r *OrderGormRepository) list(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{}).Scopes(orderFilter(f))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := []model.Order{}
	if err := withDetails(q).Scopes(paginate(f.Page, f.Limit)).Order("id desc").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func orderFilter(f repo.AdminOrderListFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.OrderID != nil {
			db = db.Where("id = ?", *f.OrderID)
		}
		if f.UserID != nil {
			db = db.Where("user_id = ?", *f.UserID)
		}
		if f.PaymentStatus != "" {
			db = db.Where("payment_status = ?", f.PaymentStatus)
		}
		if f.DeliveryStatus != "" {
			db = db.Where("delivery_status = ?", f.DeliveryStatus)
		}
		if f.From != nil {
			db = db.Where("created_at >= ?", *f.From)
		}
		if f.To != nil {
			db = db.Where("created_at <= ?", *f.To)
		}
		return db
	}
}
