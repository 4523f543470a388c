package repository

import (
	"context"

	repo "uptech/internal/repository"

	"gorm.io/gorm"
)

// 同じtxを共有するrepo群。使う分だけ作る
type gormTxRepos struct {
	tx *gorm.DB
}

func (r gormTxRepos) Orders() repo.OrderRepository       { return NewOrderGormRepository(r.tx) }
func (r gormTxRepos) Carts() repo.CartRepository         { return NewCartGormRepository(r.tx) }
func (r gormTxRepos) Products() repo.ProductRepository   { return NewProductGormRepository(r.tx) }
func (r gormTxRepos) AuditLogs() repo.AuditLogRepository { return NewAuditLogGormRepository(r.tx) }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(gormTxRepos{tx: tx})
	})
}
