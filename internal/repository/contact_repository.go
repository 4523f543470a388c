package repository

import (
	"context"

	"uptech/internal/domain/model"
)

// お問い合わせ
type ContactRepository interface {
	Create(ctx context.Context, m *model.ContactMessage) error
	List(ctx context.Context) ([]model.ContactMessage, error)
	FindByID(ctx context.Context, id int64) (model.ContactMessage, error)
	Delete(ctx context.Context, id int64) error
}
