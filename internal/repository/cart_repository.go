package repository

import (
	"context"

	"uptech/internal/domain/model"
)

type CartRepository interface {
	// 明細込みで取得。無ければ ErrNotFound
	FindByUserID(ctx context.Context, userID int64) (model.Cart, error)

	// Tx内で行ロックを取って取得（同一カートへの更新を直列化）
	FindByUserIDForUpdate(ctx context.Context, userID int64) (model.Cart, error)

	// 合計と明細をまとめて保存（明細は置き換え）
	Save(ctx context.Context, cart *model.Cart) error
}
