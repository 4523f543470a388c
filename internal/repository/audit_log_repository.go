package repository

import (
	"context"
	"time"

	"uptech/internal/domain/model"
)

// nilの項目は絞り込まない
type AuditLogFilter struct {
	Actor        *int64
	Action       *model.AuditAction
	ResourceType *model.AuditResourceType
	ResourceID   *int64
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error

	// 新しい順。totalはlimit/offset適用前の件数
	List(ctx context.Context, f AuditLogFilter) ([]model.AuditLog, int64, error)
}
