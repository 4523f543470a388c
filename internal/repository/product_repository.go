package repository

import (
	"context"

	"uptech/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 一覧・検索
type ProductListQuery struct {
	Page       int
	Limit      int
	Q          string
	Category   string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	IsFeatured *bool
	Sort       string

	// 管理画面は非公開も含める
	IncludeInactive bool
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	// 見つかったものだけ返す（欠けはusecase側で判定）
	FindByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id int64) error
}
