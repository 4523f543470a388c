package repository

import (
	"context"
	"errors"

	"uptech/internal/domain/model"
	repo "uptech/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// ユーザーのカートを明細込みで取得
func (r *CartGormRepository) FindByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	return r.find(r.db.WithContext(ctx), userID)
}

// 行ロック付き。Tx内で呼ぶ前提
func (r *CartGormRepository) FindByUserIDForUpdate(ctx context.Context, userID int64) (model.Cart, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), userID)
}

func (r *CartGormRepository) find(q *gorm.DB, userID int64) (model.Cart, error) {
	var cart model.Cart

	err := q.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Where("user_id = ?", userID).
		First(&cart).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Cart{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

// カート本体（合計）を保存し、明細は丸ごと置き換える
func (r *CartGormRepository) Save(ctx context.Context, cart *model.Cart) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := cart.Items

		if cart.ID == 0 {
			// 明細は下で入れるのでここでは作らない
			if err := tx.Omit("Items").Create(cart).Error; err != nil {
				return err
			}
		} else {
			res := tx.Model(&model.Cart{}).
				Where("id = ?", cart.ID).
				Updates(map[string]interface{}{
					"total_quantity": cart.TotalQuantity,
					"total_amount":   cart.TotalAmount,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return repo.ErrNotFound
			}
		}

		//cart_itemsを全削除して入れ直す
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			cart.Items = []model.CartItem{}
			return nil
		}

		fresh := make([]model.CartItem, 0, len(items))
		for _, it := range items {
			fresh = append(fresh, model.CartItem{CartID: cart.ID, ProductID: it.ProductID, Quantity: it.Quantity})
		}
		if err := tx.Create(&fresh).Error; err != nil {
			return err
		}
		cart.Items = fresh
		return nil
	})
	return mapDuplicate(err)
}
