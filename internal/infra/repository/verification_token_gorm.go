package repository

import (
	"context"
	"errors"
	"time"

	"uptech/internal/domain/model"
	repo "uptech/internal/repository"

	"gorm.io/gorm"
)

type verificationTokenGormRepository struct {
	db *gorm.DB //DB接続（GORM）
}

// GORM実装
func NewVerificationTokenRepository(db *gorm.DB) repo.VerificationTokenRepository {
	return &verificationTokenGormRepository{db: db}
}

func (r *verificationTokenGormRepository) Create(ctx context.Context, token *model.VerificationToken) error {
	//タイムアウトやキャンセルをDB処理に伝える
	return r.db.WithContext(ctx).Create(token).Error
}

// 目的 + token_hash で1件検索します。
func (r *verificationTokenGormRepository) FindByHash(ctx context.Context, purpose model.TokenPurpose, tokenHash string) (*model.VerificationToken, error) {
	var token model.VerificationToken

	err := r.db.WithContext(ctx).
		Where("purpose = ? AND token_hash = ?", purpose, tokenHash).
		First(&token).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrNotFound
		}
		return nil, err
	}

	return &token, nil
}

// used_at をセットして「使用済み」にします。
func (r *verificationTokenGormRepository) MarkUsed(ctx context.Context, tokenID string, usedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.VerificationToken{}).
		Where("id = ? AND used_at IS NULL", tokenID).
		Update("used_at", &usedAt)

	if result.Error != nil {
		return result.Error
	}

	// 更新件数が0なら「すでに使用済み/存在しない」
	if result.RowsAffected == 0 {
		return repo.ErrNotFound
	}

	return nil
}

func (r *verificationTokenGormRepository) DeleteByUser(ctx context.Context, userID int64, purpose model.TokenPurpose) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND purpose = ?", userID, purpose).
		Delete(&model.VerificationToken{}).Error
}
