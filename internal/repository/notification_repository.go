package repository

import (
	"context"

	"uptech/internal/domain/model"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	// 新しい順
	ListByUserID(ctx context.Context, userID int64) ([]model.Notification, error)
	// 本人のものだけ。それ以外は ErrNotFound
	MarkRead(ctx context.Context, userID int64, notificationID int64) (model.Notification, error)
	Delete(ctx context.Context, userID int64, notificationID int64) error
}
