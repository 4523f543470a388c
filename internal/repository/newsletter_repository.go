package repository

import (
	"context"

	"uptech/internal/domain/model"
)

type NewsletterRepository interface {
	// 無ければ (nil, nil)
	FindByEmail(ctx context.Context, email string) (*model.NewsletterSubscriber, error)
	Create(ctx context.Context, s *model.NewsletterSubscriber) error
	Update(ctx context.Context, s *model.NewsletterSubscriber) error
	ListSubscribed(ctx context.Context) ([]model.NewsletterSubscriber, error)
}
