package repository

import (
	"context"
	"errors"

	"uptech/internal/domain/model"
	repo "uptech/internal/repository"

	"gorm.io/gorm"
)

type newsletterGormRepository struct {
	db *gorm.DB
}

func NewNewsletterGormRepository(db *gorm.DB) repo.NewsletterRepository {
	return &newsletterGormRepository{db: db}
}

func (r *newsletterGormRepository) FindByEmail(ctx context.Context, email string) (*model.NewsletterSubscriber, error) {
	var s model.NewsletterSubscriber
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *newsletterGormRepository) Create(ctx context.Context, s *model.NewsletterSubscriber) error {
	err := r.db.WithContext(ctx).Create(s).Error
	return mapDuplicate(err)
}

func (r *newsletterGormRepository) Update(ctx context.Context, s *model.NewsletterSubscriber) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *newsletterGormRepository) ListSubscribed(ctx context.Context) ([]model.NewsletterSubscriber, error) {
	var list []model.NewsletterSubscriber
	err := r.db.WithContext(ctx).
		Where("status = ?", model.Subscribed).
		Order("id asc").
		Find(&list).Error
	return list, err
}
