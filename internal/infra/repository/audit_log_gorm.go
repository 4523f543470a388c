package repository

import (
	"context"
	"fmt"

	"uptech/internal/domain/model"
	repo "uptech/internal/repository"

	"gorm.io/gorm"
)

type AuditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) *AuditLogGormRepository {
	return &AuditLogGormRepository{db: db}
}

func (r *AuditLogGormRepository) Create(ctx context.Context, log model.AuditLog) error {
	if err := r.db.WithContext(ctx).Create(&log).Error; err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}

func (r *AuditLogGormRepository) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, int64, error) {
	q := auditScope(r.db.WithContext(ctx).Model(&model.AuditLog{}), f)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	logs := []model.AuditLog{}
	err := q.Order("id DESC").Limit(f.Limit).Offset(f.Offset).Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func auditScope(q *gorm.DB, f repo.AuditLogFilter) *gorm.DB {
	eq := []struct {
		col string
		set bool
		val any
	}{
		{"actor_user_id", f.Actor != nil, f.Actor},
		{"action", f.Action != nil, f.Action},
		{"resource_type", f.ResourceType != nil, f.ResourceType},
		{"resource_id", f.ResourceID != nil, f.ResourceID},
	}
	for _, c := range eq {
		if c.set {
			q = q.Where(c.col+" = ?", c.val)
		}
	}

	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}
	return q
}
