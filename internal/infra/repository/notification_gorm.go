package repository

import (
	"context"
	"errors"

	"uptech/internal/domain/model"
	repo "uptech/internal/repository"

	"gorm.io/gorm"
)

type notificationGormRepository struct {
	db *gorm.DB
}

func NewNotificationGormRepository(db *gorm.DB) repo.NotificationRepository {
	return &notificationGormRepository{db: db}
}

func (r *notificationGormRepository) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// 新しい順
func (r *notificationGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Notification, error) {
	var list []model.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&list).Error
	if err != nil {
		return []model.Notification{}, err
	}
	return list, nil
}

// 他人の通知は「存在しない扱い」
func (r *notificationGormRepository) MarkRead(ctx context.Context, userID int64, id int64) (model.Notification, error) {
	var n model.Notification

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&n).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repo.ErrNotFound
			}
			return err
		}
		if n.Status == model.NotificationRead {
			return nil
		}
		n.Status = model.NotificationRead
		return tx.Model(&model.Notification{}).Where("id = ?", n.ID).Update("status", model.NotificationRead).Error
	})
	if err != nil {
		return model.Notification{}, err
	}
	return n, nil
}

func (r *notificationGormRepository) Delete(ctx context.Context, userID int64, id int64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
