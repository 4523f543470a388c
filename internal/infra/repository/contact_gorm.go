package repository

import (
	"context"
	"errors"

	"uptech/internal/domain/model"
	repo "uptech/internal/repository"

	"gorm.io/gorm"
)

type contactGormRepository struct {
	db *gorm.DB
}

func NewContactGormRepository(db *gorm.DB) repo.ContactRepository {
	return &contactGormRepository{db: db}
}

func (r *contactGormRepository) Create(ctx context.Context, m *model.ContactMessage) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *contactGormRepository) List(ctx context.Context) ([]model.ContactMessage, error) {
	var list []model.ContactMessage
	if err := r.db.WithContext(ctx).Order("created_at desc, id desc").Find(&list).Error; err != nil {
		return []model.ContactMessage{}, err
	}
	return list, nil
}

func (r *contactGormRepository) FindByID(ctx context.Context, id int64) (model.ContactMessage, error) {
	var m model.ContactMessage
	err := r.db.WithContext(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ContactMessage{}, repo.ErrNotFound
	}
	if err != nil {
		return model.ContactMessage{}, err
	}
	return m, nil
}

func (r *contactGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.ContactMessage{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
