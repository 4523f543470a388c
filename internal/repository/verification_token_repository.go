package repository

import (
	"context"
	"time"

	"uptech/internal/domain/model"
)

// メール確認・SMSコード・パスワード再設定トークン
type VerificationTokenRepository interface {
	Create(ctx context.Context, token *model.VerificationToken) error
	// 無ければ ErrNotFound
	FindByHash(ctx context.Context, purpose model.TokenPurpose, tokenHash string) (*model.VerificationToken, error)
	// 使用済みにする。既に使用済みなら ErrNotFound
	MarkUsed(ctx context.Context, tokenID string, usedAt time.Time) error
	// 同じ目的の古いトークンをまとめて消す
	DeleteByUser(ctx context.Context, userID int64, purpose model.TokenPurpose) error
}
