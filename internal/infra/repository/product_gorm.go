package repository

import (
	"context"
	"errors"
	"strings"

	"uptech/internal/domain/model"
	repo "uptech/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 並び順。未知の値は新着順
var productOrders = map[string][]string{
	"price_asc":  {"price asc", "id asc"},
	"price_desc": {"price desc", "id desc"},
	"name_asc":   {"name asc", "id asc"},
	"newest":     {"created_at desc", "id desc"},
}

func (r *ProductGormRepository) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	base := r.db.WithContext(ctx).Model(&model.Product{}).Scopes(productFilter(q))

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := productOrders[q.Sort]
	if !ok {
		order = productOrders["newest"]
	}

	products := []model.Product{}
	page := base.Scopes(paginate(q.Page, q.Limit))
	for _, o := range order {
		page = page.Order(o)
	}
	if err := page.Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// 公開側は is_active のみ。削除済みはgormが除外する
func productFilter(q repo.ProductListQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !q.IncludeInactive {
			db = db.Where("is_active = ?", true)
		}
		if s := strings.TrimSpace(q.Q); s != "" {
			db = db.Where("name ILIKE ?", "%"+s+"%")
		}
		if c := strings.TrimSpace(q.Category); c != "" {
			db = db.Where("category ILIKE ?", "%"+c+"%")
		}
		if q.MinPrice != nil {
			db = db.Where("price >= ?", *q.MinPrice)
		}
		if q.MaxPrice != nil {
			db = db.Where("price <= ?", *q.MaxPrice)
		}
		if q.IsFeatured != nil {
			db = db.Where("is_featured = ?", *q.IsFeatured)
		}
		return db
	}
}

func paginate(page, limit int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * limit).Limit(limit)
	}
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 複数IDをまとめて取得（カート再計算・注文作成用）
func (r *ProductGormRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	out := make(map[int64]model.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var list []model.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	for _, p := range list {
		out[p.ID] = p
	}
	return out, nil
}

// 商品の作成
func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 商品の更新
func (r *ProductGormRepository) Update(ctx context.Context, p model.Product) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"category":    p.Category,
		"stock":       p.Stock,
		"is_featured": p.IsFeatured,
		"image_url":   p.ImageURL,
		"is_active":   p.IsActive,
		"updated_at":  p.UpdatedAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 商品削除（論理削除）
func (r *ProductGormRepository) SoftDelete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
